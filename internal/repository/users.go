package repository

import (
	"context"

	"github.com/FaridaNelson/sp-server/internal/model"
)

const userColumns = `id, name, email, password_hash, roles, teacher_id, student_id, parent_id, status, deleted_at, created_at, updated_at`

func (s *Store) CreateUser(ctx context.Context, user model.User) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO users (id, name, email, password_hash, roles, teacher_id, student_id, parent_id, status, created_at, updated_at)
		VALUES ($1, $2, lower($3), $4, $5, $6, $7, $8, $9, $10, $11)
	`, user.ID, user.Name, user.Email, user.PasswordHash, user.Roles,
		user.TeacherID, user.StudentID, user.ParentID, user.Status,
		user.CreatedAt, user.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE lower(email) = lower($1) AND deleted_at IS NULL
	`, email)
	return scanUser(row)
}

func (s *Store) GetUserByID(ctx context.Context, userID string) (model.User, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE id = $1 AND deleted_at IS NULL
	`, userID)
	return scanUser(row)
}

type row interface {
	Scan(dest ...any) error
}

func scanUser(r row) (model.User, error) {
	var user model.User
	err := r.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Roles,
		&user.TeacherID,
		&user.StudentID,
		&user.ParentID,
		&user.Status,
		&user.DeletedAt,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	return user, err
}
