// Package auth отвечает за вход сотрудников, выпуск и проверку JWT
// и создание начального администратора.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/parish-calendar/internal/access"
	"github.com/magabrotheeeer/parish-calendar/internal/lib/jwt"
	"github.com/magabrotheeeer/parish-calendar/internal/lib/password"
	"github.com/magabrotheeeer/parish-calendar/internal/models"
	"github.com/magabrotheeeer/parish-calendar/internal/storage/repository"
)

var (
	// ErrInvalidCredentials: неверная почта или пароль.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnavailable: хранилище профилей не настроено.
	ErrUnavailable = errors.New("profile storage unavailable")
)

// ProfileRepository описывает контракт хранилища профилей, нужный для входа.
type ProfileRepository interface {
	// Ready сообщает, настроено ли хранилище.
	Ready() bool
	// CreateProfile сохраняет профиль и возвращает его ID.
	CreateProfile(ctx context.Context, p models.Profile) (string, error)
	// GetProfileByEmail возвращает профиль по почте или repository.ErrProfileNotFound.
	GetProfileByEmail(ctx context.Context, email string) (*models.Profile, error)
}

// AuthService выпускает и проверяет токены сессии.
type AuthService struct {
	profiles ProfileRepository
	jwtMaker jwt.Maker
	log      *slog.Logger
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(profiles ProfileRepository, jwtMaker jwt.Maker, log *slog.Logger) *AuthService {
	return &AuthService{
		profiles: profiles,
		jwtMaker: jwtMaker,
		log:      log,
	}
}

// Login проверяет пароль и выпускает JWT. Возвращает токен и субъекта сессии.
func (s *AuthService) Login(ctx context.Context, email, rawPassword string) (string, *access.Subject, error) {
	const op = "auth.Login"
	if s.profiles == nil || !s.profiles.Ready() {
		return "", nil, fmt.Errorf("%s: %w", op, ErrUnavailable)
	}

	p, err := s.profiles.GetProfileByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, repository.ErrProfileNotFound) {
		return "", nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := password.CompareHash(p.PasswordHash, rawPassword); err != nil {
		if errors.Is(err, password.ErrMismatch) {
			return "", nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}

	token, err := s.jwtMaker.GenerateToken(p.ID, p.Name, p.Role)
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}
	return token, &access.Subject{ID: p.ID, Name: p.Name, Role: p.Role}, nil
}

// ValidateToken проверяет JWT и возвращает субъекта сессии.
func (s *AuthService) ValidateToken(_ context.Context, token string) (*access.Subject, error) {
	const op = "auth.ValidateToken"
	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &access.Subject{
		ID:   claims.Subject,
		Name: claims.Name,
		Role: claims.Role,
	}, nil
}

// EnsureAdmin создаёт администратора с данной почтой, если такого профиля ещё нет.
// Существующий профиль не изменяется. Пустая почта отключает создание.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, rawPassword, name string) (bool, error) {
	const op = "auth.EnsureAdmin"
	email = strings.TrimSpace(email)
	if email == "" {
		return false, nil
	}
	if rawPassword == "" {
		return false, fmt.Errorf("%s: empty password for %s", op, email)
	}
	if s.profiles == nil || !s.profiles.Ready() {
		return false, fmt.Errorf("%s: %w", op, ErrUnavailable)
	}

	_, err := s.profiles.GetProfileByEmail(ctx, email)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, repository.ErrProfileNotFound) {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	id, err := s.profiles.CreateProfile(ctx, models.Profile{
		Name:         strings.TrimSpace(name),
		Email:        email,
		Role:         string(access.RoleAdmin),
		PasswordHash: hashed,
	})
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("created initial administrator", slog.String("id", id), slog.String("email", email))
	return true, nil
}
