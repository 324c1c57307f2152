package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/parish-calendar/internal/models"
)

const profileColumns = `id, name, email, role, password_hash`

func scanProfile(row rowScanner) (*models.Profile, error) {
	p := &models.Profile{}
	var name sql.NullString
	if err := row.Scan(&p.ID, &name, &p.Email, &p.Role, &p.PasswordHash); err != nil {
		return nil, err
	}
	p.Name = name.String
	return p, nil
}

// CreateProfile сохраняет новый профиль и возвращает его ID.
func (s *Storage) CreateProfile(ctx context.Context, p models.Profile) (string, error) {
	const op = "storage.CreateProfile"
	if !s.Ready() {
		return "", fmt.Errorf("%s: %w", op, ErrNotConfigured)
	}
	if err := checkCtx(ctx, op); err != nil {
		return "", err
	}

	var newID string
	query := `INSERT INTO profiles (name, email, role, password_hash)
			  VALUES ($1, $2, $3, $4)
			  RETURNING id`
	if err := s.DB.QueryRowContext(ctx, query,
		nullableString(p.Name), p.Email, p.Role, p.PasswordHash).Scan(&newID); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetProfileByEmail возвращает профиль по электронной почте.
func (s *Storage) GetProfileByEmail(ctx context.Context, email string) (*models.Profile, error) {
	const op = "storage.GetProfileByEmail"
	if !s.Ready() {
		return nil, fmt.Errorf("%s: %w", op, ErrNotConfigured)
	}
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT ` + profileColumns + ` FROM profiles WHERE lower(email) = lower($1)`
	p, err := scanProfile(s.DB.QueryRowContext(ctx, query, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrProfileNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// ListProfiles возвращает все профили, упорядоченные по имени.
func (s *Storage) ListProfiles(ctx context.Context) ([]*models.Profile, error) {
	const op = "storage.ListProfiles"
	if !s.Ready() {
		return nil, fmt.Errorf("%s: %w", op, ErrNotConfigured)
	}
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	rows, err := s.DB.QueryContext(ctx, `SELECT `+profileColumns+` FROM profiles ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := []*models.Profile{}
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdateProfile меняет имя и роль профиля. Пустое имя сохраняется как NULL.
func (s *Storage) UpdateProfile(ctx context.Context, id, name, role string) (*models.Profile, error) {
	const op = "storage.UpdateProfile"
	if !s.Ready() {
		return nil, fmt.Errorf("%s: %w", op, ErrNotConfigured)
	}
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `UPDATE profiles
			  SET name = $1, role = $2, updated_at = now()
			  WHERE id = $3
			  RETURNING ` + profileColumns
	p, err := scanProfile(s.DB.QueryRowContext(ctx, query, nullableString(name), role, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrProfileNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
