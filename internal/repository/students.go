package repository

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/FaridaNelson/sp-server/internal/model"
)

const studentColumns = `id, teacher_id, name, email, instrument, grade, parent_name, parent_email, invite_code, progress_items, created_at, updated_at`

func (s *Store) CreateStudent(ctx context.Context, student model.Student) error {
	items, err := json.Marshal(student.ProgressItems)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO students (id, teacher_id, name, email, instrument, grade, parent_name, parent_email, invite_code, progress_items, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, student.ID, student.TeacherID, student.Name, student.Email,
		student.Instrument, student.Grade, student.ParentName, student.ParentEmail,
		student.InviteCode, items, student.CreatedAt, student.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

func (s *Store) ListStudentsByTeacher(ctx context.Context, teacherID string) ([]model.Student, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+studentColumns+`
		FROM students
		WHERE teacher_id = $1
		ORDER BY created_at ASC
	`, teacherID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var students []model.Student
	for rows.Next() {
		student, err := scanStudent(rows)
		if err != nil {
			return nil, err
		}
		students = append(students, student)
	}
	return students, rows.Err()
}

// GetStudent looks a student up by id alone. Admin-only path; everyone
// else goes through GetStudentForTeacher.
func (s *Store) GetStudent(ctx context.Context, studentID string) (model.Student, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+studentColumns+`
		FROM students
		WHERE id = $1
	`, studentID)
	return scanStudent(row)
}

// GetStudentForTeacher returns pgx.ErrNoRows for another teacher's
// student, same as for a missing one.
func (s *Store) GetStudentForTeacher(ctx context.Context, studentID, teacherID string) (model.Student, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+studentColumns+`
		FROM students
		WHERE id = $1 AND teacher_id = $2
	`, studentID, teacherID)
	return scanStudent(row)
}

func (s *Store) GetStudentByInviteCode(ctx context.Context, code string) (model.Student, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+studentColumns+`
		FROM students
		WHERE invite_code = $1
	`, strings.ToUpper(strings.TrimSpace(code)))
	return scanStudent(row)
}

// UpdateProgressItems replaces the cached progress items. Scoped to the
// owning teacher unless teacherID is empty (admin path).
func (s *Store) UpdateProgressItems(ctx context.Context, studentID, teacherID string, items []model.ProgressItem) error {
	payload, err := json.Marshal(items)
	if err != nil {
		return err
	}

	var tag pgconn.CommandTag
	if teacherID == "" {
		tag, err = s.pool.Exec(ctx, `
			UPDATE students SET progress_items = $2, updated_at = $3 WHERE id = $1
		`, studentID, payload, time.Now().UTC())
	} else {
		tag, err = s.pool.Exec(ctx, `
			UPDATE students SET progress_items = $3, updated_at = $4 WHERE id = $1 AND teacher_id = $2
		`, studentID, teacherID, payload, time.Now().UTC())
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanStudent(r row) (model.Student, error) {
	var (
		student model.Student
		items   []byte
	)
	err := r.Scan(
		&student.ID,
		&student.TeacherID,
		&student.Name,
		&student.Email,
		&student.Instrument,
		&student.Grade,
		&student.ParentName,
		&student.ParentEmail,
		&student.InviteCode,
		&items,
		&student.CreatedAt,
		&student.UpdatedAt,
	)
	if err != nil {
		return student, err
	}
	if len(items) > 0 {
		if err := json.Unmarshal(items, &student.ProgressItems); err != nil {
			return student, err
		}
	}
	return student, nil
}
