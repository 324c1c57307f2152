// Package repository реализует удалённое хранилище календаря на основе PostgreSQL:
// таблицу событий и таблицу профилей сотрудников. Предоставляет методы
// чтения, вставки (в том числе пакетной), обновления и удаления записей.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	// Регистрация драйвера pgx для использования с database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"
)

var (
	// ErrNotConfigured возвращается при обращении к хранилищу без подключения.
	ErrNotConfigured = errors.New("remote storage is not configured")
	// ErrEventNotFound: события с таким идентификатором нет.
	ErrEventNotFound = errors.New("event not found")
	// ErrProfileNotFound: профиля с таким идентификатором или почтой нет.
	ErrProfileNotFound = errors.New("profile not found")
)

// Storage инкапсулирует соединение с базой данных PostgreSQL.
// Нулевой DB означает, что удалённое хранилище не настроено.
type Storage struct {
	DB *sql.DB
}

// Open создаёт пул соединений без проверки доступности сервера.
// Недоступность обнаруживается при первых запросах.
func Open(storageConnectionString string) (*Storage, error) {
	const op = "storage.Open"

	db, err := sql.Open("pgx", storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Storage{DB: db}, nil
}

// New создаёт подключение к PostgreSQL и проверяет его.
func New(storageConnectionString string) (*Storage, error) {
	const op = "storage.New"

	s, err := Open(storageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = s.DB.PingContext(context.Background()); err != nil {
		_ = s.DB.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s, nil
}

// Ready сообщает, настроено ли удалённое хранилище.
func (s *Storage) Ready() bool {
	return s != nil && s.DB != nil
}

// Ping проверяет доступность сервера.
func (s *Storage) Ping(ctx context.Context) error {
	if !s.Ready() {
		return ErrNotConfigured
	}
	return s.DB.PingContext(ctx)
}

// Close закрывает пул соединений.
func (s *Storage) Close() error {
	if !s.Ready() {
		return nil
	}
	return s.DB.Close()
}

// CheckDatabaseReady проверяет наличие таблиц календаря.
func CheckDatabaseReady(ctx context.Context, storage *Storage) error {
	if !storage.Ready() {
		return ErrNotConfigured
	}
	for _, table := range []string{"events", "profiles"} {
		var exists bool
		err := storage.DB.QueryRowContext(ctx, `SELECT EXISTS (
			SELECT FROM information_schema.tables
			WHERE table_name = $1
		)`, table).Scan(&exists)
		if err != nil {
			return fmt.Errorf("required table %s query error: %w", table, err)
		}
		if !exists {
			return fmt.Errorf("required table %s missing", table)
		}
	}
	return nil
}

func checkCtx(ctx context.Context, op string) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
		return nil
	}
}
