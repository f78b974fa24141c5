package db

import (
	"context"
	"database/sql"

	"github.com/Spok95/school-management-api/internal/models"
)

func GetUserByEmail(ctx context.Context, database *sql.DB, email string) (*models.User, error) {
	row := database.QueryRowContext(ctx, `
		SELECT id, first_name, last_name, email, password_hash, role, is_active, created_at
		FROM users WHERE email = $1`, email)

	var u models.User
	if err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt); err != nil {
		return nil, wrapErr("users.by_email", err)
	}
	return &u, nil
}

func GetUserByID(ctx context.Context, database *sql.DB, id int64) (*models.User, error) {
	row := database.QueryRowContext(ctx, `
		SELECT id, first_name, last_name, email, password_hash, role, is_active, created_at
		FROM users WHERE id = $1`, id)

	var u models.User
	if err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt); err != nil {
		return nil, wrapErr("users.by_id", err)
	}
	return &u, nil
}

// EnsureAdmin создаёт администратора при первом запуске, если его ещё нет.
func EnsureAdmin(ctx context.Context, database *sql.DB, email, passwordHash string) error {
	_, err := database.ExecContext(ctx, `
		INSERT INTO users (first_name, last_name, email, password_hash, role)
		VALUES ('System', 'Admin', $1, $2, $3)
		ON CONFLICT (email) DO NOTHING`,
		email, passwordHash, models.RoleAdmin)
	if err != nil {
		return wrapErr("users.ensure_admin", err)
	}
	return nil
}
