package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/FaridaNelson/sp-server/internal/model"
)

const scoreColumns = `id, teacher_id, student_id, lesson_date, element_id, element_label, score, tempo_current, tempo_goal, dynamics, articulation, created_at`

// InsertScoreEntries appends a batch atomically: either every entry is
// written or none are.
func (s *Store) InsertScoreEntries(ctx context.Context, entries []model.ScoreEntry) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, entry := range entries {
		_, err := tx.Exec(ctx, `
			INSERT INTO score_entries (id, teacher_id, student_id, lesson_date, element_id, element_label, score, tempo_current, tempo_goal, dynamics, articulation, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		`, entry.ID, entry.TeacherID, entry.StudentID, entry.LessonDate,
			entry.ElementID, entry.ElementLabel, entry.Score,
			entry.TempoCurrent, entry.TempoGoal, entry.Dynamics,
			entry.Articulation, entry.CreatedAt)
		if err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// ListScoreEntries returns one history page, newest first, plus the
// total entry count for the student.
func (s *Store) ListScoreEntries(ctx context.Context, studentID, teacherID string, limit, offset int) ([]model.ScoreEntry, int, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+scoreColumns+`
		FROM score_entries
		WHERE student_id = $1 AND teacher_id = $2
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`, studentID, teacherID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var entries []model.ScoreEntry
	for rows.Next() {
		var entry model.ScoreEntry
		err := rows.Scan(
			&entry.ID,
			&entry.TeacherID,
			&entry.StudentID,
			&entry.LessonDate,
			&entry.ElementID,
			&entry.ElementLabel,
			&entry.Score,
			&entry.TempoCurrent,
			&entry.TempoGoal,
			&entry.Dynamics,
			&entry.Articulation,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, 0, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int
	err = s.pool.QueryRow(ctx, `
		SELECT count(*) FROM score_entries WHERE student_id = $1 AND teacher_id = $2
	`, studentID, teacherID).Scan(&total)
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}
