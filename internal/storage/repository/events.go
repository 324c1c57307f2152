package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/parish-calendar/internal/models"
)

const eventColumns = `id, title, "date", "time", location, community, category, recurrence, description`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (models.Event, error) {
	var e models.Event
	var recurrence string
	err := row.Scan(&e.ID, &e.Title, &e.Date, &e.Time, &e.Location,
		&e.Community, &e.Category, &recurrence, &e.Description)
	e.Recurrence = models.Recurrence(recurrence)
	return e, err
}

// ListEvents возвращает все события, упорядоченные по дате по возрастанию.
func (s *Storage) ListEvents(ctx context.Context) ([]models.Event, error) {
	const op = "storage.ListEvents"
	if !s.Ready() {
		return nil, fmt.Errorf("%s: %w", op, ErrNotConfigured)
	}
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT ` + eventColumns + `
			  FROM events
			  ORDER BY "date" ASC, "time" ASC`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := []models.Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

const insertEventQuery = `INSERT INTO events (title, "date", "time", location, community, category, recurrence, description)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			  RETURNING ` + eventColumns

// InsertEvent вставляет событие и возвращает запись с присвоенным идентификатором.
func (s *Storage) InsertEvent(ctx context.Context, e models.Event) (models.Event, error) {
	const op = "storage.InsertEvent"
	if !s.Ready() {
		return models.Event{}, fmt.Errorf("%s: %w", op, ErrNotConfigured)
	}
	if err := checkCtx(ctx, op); err != nil {
		return models.Event{}, err
	}

	row := s.DB.QueryRowContext(ctx, insertEventQuery,
		e.Title, e.Date, e.Time, e.Location, e.Community, e.Category, string(e.Recurrence), e.Description)
	inserted, err := scanEvent(row)
	if err != nil {
		return models.Event{}, fmt.Errorf("%s: %w", op, err)
	}
	return inserted, nil
}

// InsertEvents вставляет набор событий в одной транзакции.
// При ошибке любой вставки транзакция откатывается и ничего не сохраняется.
func (s *Storage) InsertEvents(ctx context.Context, events []models.Event) ([]models.Event, error) {
	const op = "storage.InsertEvents"
	if !s.Ready() {
		return nil, fmt.Errorf("%s: %w", op, ErrNotConfigured)
	}
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	stmt, err := tx.PrepareContext(ctx, insertEventQuery)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = stmt.Close()
	}()

	inserted := make([]models.Event, 0, len(events))
	for _, e := range events {
		row := stmt.QueryRowContext(ctx,
			e.Title, e.Date, e.Time, e.Location, e.Community, e.Category, string(e.Recurrence), e.Description)
		got, err := scanEvent(row)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		inserted = append(inserted, got)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return inserted, nil
}

// UpdateEvent обновляет все поля события по идентификатору и возвращает новую запись.
func (s *Storage) UpdateEvent(ctx context.Context, id string, e models.Event) (models.Event, error) {
	const op = "storage.UpdateEvent"
	if !s.Ready() {
		return models.Event{}, fmt.Errorf("%s: %w", op, ErrNotConfigured)
	}
	if err := checkCtx(ctx, op); err != nil {
		return models.Event{}, err
	}

	query := `UPDATE events
			  SET title = $1, "date" = $2, "time" = $3, location = $4, community = $5,
			      category = $6, recurrence = $7, description = $8, updated_at = now()
			  WHERE id = $9
			  RETURNING ` + eventColumns
	row := s.DB.QueryRowContext(ctx, query,
		e.Title, e.Date, e.Time, e.Location, e.Community, e.Category, string(e.Recurrence), e.Description, id)
	updated, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Event{}, fmt.Errorf("%s: %w", op, ErrEventNotFound)
	}
	if err != nil {
		return models.Event{}, fmt.Errorf("%s: %w", op, err)
	}
	return updated, nil
}

// DeleteEvent удаляет событие по идентификатору и возвращает количество удалённых строк.
// Удаление отсутствующей записи не ошибка.
func (s *Storage) DeleteEvent(ctx context.Context, id string) (int, error) {
	const op = "storage.DeleteEvent"
	if !s.Ready() {
		return 0, fmt.Errorf("%s: %w", op, ErrNotConfigured)
	}
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}

	result, err := s.DB.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}
