// Package profiles управляет ролями и именами сотрудников прихода.
package profiles

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/parish-calendar/internal/access"
	"github.com/magabrotheeeer/parish-calendar/internal/models"
)

// ErrUnavailable: хранилище профилей не настроено.
var ErrUnavailable = errors.New("profile storage unavailable")

// Repository описывает операции хранилища над профилями.
type Repository interface {
	Ready() bool
	ListProfiles(ctx context.Context) ([]*models.Profile, error)
	UpdateProfile(ctx context.Context, id, name, role string) (*models.Profile, error)
}

// Service: управление профилями.
type Service struct {
	repo Repository
	log  *slog.Logger
}

// NewService создаёт сервис профилей.
func NewService(repo Repository, log *slog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

func (s *Service) ready() bool {
	return s.repo != nil && s.repo.Ready()
}

// List возвращает все профили по имени.
func (s *Service) List(ctx context.Context) ([]*models.Profile, error) {
	const op = "profiles.List"
	if !s.ready() {
		return nil, fmt.Errorf("%s: %w", op, ErrUnavailable)
	}
	list, err := s.repo.ListProfiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return list, nil
}

// Update меняет имя и роль профиля. Имя обрезается по краям, роль должна входить в закрытый набор.
func (s *Service) Update(ctx context.Context, id string, upd models.ProfileUpdate) (*models.Profile, error) {
	const op = "profiles.Update"
	role, err := access.ParseRole(upd.Role)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !s.ready() {
		return nil, fmt.Errorf("%s: %w", op, ErrUnavailable)
	}

	p, err := s.repo.UpdateProfile(ctx, id, strings.TrimSpace(upd.Name), string(role))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("profile updated", slog.String("id", id), slog.String("role", p.Role))
	return p, nil
}
