package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/legacybuilder/backend/core/score"
)

const scoreColumns = "id, student_id, subject, score, updated_at"

type scoreRow struct {
	ID        string    `db:"id"`
	StudentID string    `db:"student_id"`
	Subject   string    `db:"subject"`
	Score     int       `db:"score"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (row scoreRow) entry() score.Entry {
	return score.Entry{
		ID:        row.ID,
		StudentID: row.StudentID,
		Subject:   row.Subject,
		Score:     row.Score,
		UpdatedAt: row.UpdatedAt,
	}
}

type scoreRepository struct {
	db *sqlx.DB
}

var _ score.Repository = (*scoreRepository)(nil) // interface compliance check

func NewScoreRepository(db *sql.DB) *scoreRepository {
	return &scoreRepository{db: sqlx.NewDb(db, "postgres")}
}

func (repo scoreRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return score.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo scoreRepository) CreateEntries(ctx context.Context, entries ...score.Entry) ([]score.Entry, error) {
	query := `
INSERT INTO score_board (id, student_id, subject, score, updated_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (student_id, subject) DO NOTHING`

	created := make([]score.Entry, 0, len(entries))
	for _, entry := range entries {
		entry.ID = uuid.New().String()
		if entry.UpdatedAt.IsZero() {
			entry.UpdatedAt = time.Now().UTC()
		}
		if _, err := repo.db.ExecContext(ctx, query, entry.ID, entry.StudentID, entry.Subject, entry.Score, entry.UpdatedAt); err != nil {
			return nil, errors.Wrap(err, "inserting score entry")
		}
		created = append(created, entry)
	}
	return created, nil
}

func (repo scoreRepository) GetEntry(ctx context.Context, studentID, subject string) (score.Entry, error) {
	var row scoreRow
	query := `SELECT ` + scoreColumns + ` FROM score_board WHERE student_id = $1 AND subject = $2`
	if err := repo.db.GetContext(ctx, &row, query, studentID, subject); err != nil {
		return score.Entry{}, repo.trapNoRowsErr(err, "finding score entry")
	}
	return row.entry(), nil
}

func (repo scoreRepository) QueryEntriesByStudent(ctx context.Context, studentID string) ([]score.Entry, error) {
	var rows []scoreRow
	query := `SELECT ` + scoreColumns + ` FROM score_board WHERE student_id = $1 ORDER BY subject ASC`
	if err := repo.db.SelectContext(ctx, &rows, query, studentID); err != nil {
		return nil, errors.Wrap(err, "querying score entries")
	}

	entries := make([]score.Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, row.entry())
	}
	return entries, nil
}

func (repo scoreRepository) UpdateEntryScore(ctx context.Context, studentID, subject string, scr int) (score.Entry, error) {
	var row scoreRow
	query := `
UPDATE score_board
SET score = $3, updated_at = $4
WHERE student_id = $1 AND subject = $2
RETURNING ` + scoreColumns
	if err := repo.db.GetContext(ctx, &row, query, studentID, subject, scr, time.Now().UTC()); err != nil {
		return score.Entry{}, repo.trapNoRowsErr(err, "updating score entry")
	}
	return row.entry(), nil
}

func (repo scoreRepository) DeleteEntry(ctx context.Context, studentID, subject string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM score_board WHERE student_id = $1 AND subject = $2`, studentID, subject)
	if err != nil {
		return errors.Wrap(err, "deleting score entry")
	}
	if cnt, err := res.RowsAffected(); err == nil && cnt == 0 {
		return score.ErrNotFound
	}
	return nil
}
