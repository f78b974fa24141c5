package db

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// Доменные ошибки хранилища. Обработчики сравнивают через errors.Is.
var (
	ErrNotFound        = errors.New("запись не найдена")
	ErrDuplicate       = errors.New("запись уже существует")
	ErrGradedImmutable = errors.New("оценённую работу нельзя изменять или удалять")
)

// StorageError — сбой самого хранилища (соединение, SQL), в отличие от
// доменных ошибок выше. Тесты и API проверяют вид ошибки, а не текст.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return fmt.Sprintf("storage %s: %v", e.Op, e.Err) }
func (e *StorageError) Unwrap() error { return e.Err }

// wrapErr переводит ошибки database/sql и postgres в доменные виды.
func wrapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicate
	}
	return &StorageError{Op: op, Err: err}
}
