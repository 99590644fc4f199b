package sqlxrepos

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/legacybuilder/backend/core"
	"github.com/legacybuilder/backend/core/student"
)

const studentColumns = "id, name, email, plan, subjects, is_verified, password_hash, last_login, created_at, updated_at"

// columns a client may sort on
var studentOrderColumns = map[string]bool{
	"name":        true,
	"email":       true,
	"plan":        true,
	"is_verified": true,
	"last_login":  true,
	"created_at":  true,
	"updated_at":  true,
}

// orderClause renders an ORDER BY list. Field names come straight from the
// query string and get interpolated, so anything off the whitelist is dropped.
func orderClause(ordering []core.DBOrdering, allowed map[string]bool) string {
	cols := make([]string, 0, len(ordering))
	for _, ord := range ordering {
		if !allowed[ord.Field] {
			continue
		}
		cols = append(cols, ord.String())
	}
	if len(cols) == 0 {
		return ""
	}
	return " ORDER BY " + strings.Join(cols, ", ")
}

type studentRow struct {
	ID           string         `db:"id"`
	Name         string         `db:"name"`
	Email        string         `db:"email"`
	Plan         string         `db:"plan"`
	Subjects     pq.StringArray `db:"subjects"`
	IsVerified   bool           `db:"is_verified"`
	PasswordHash []byte         `db:"password_hash"`
	LastLogin    null.Time      `db:"last_login"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

func (row studentRow) student() student.Student {
	return student.Student{
		ID:           row.ID,
		Name:         row.Name,
		Email:        row.Email,
		Plan:         row.Plan,
		Subjects:     row.Subjects,
		IsVerified:   row.IsVerified,
		PasswordHash: row.PasswordHash,
		LastLogin:    row.LastLogin.Time,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
}

type studentRepository struct {
	db *sqlx.DB
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *sql.DB) *studentRepository {
	return &studentRepository{db: sqlx.NewDb(db, "postgres")}
}

// trapNoRowsErr maps psql "no rows" err to student.ErrNotFound
func (repo studentRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return student.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo studentRepository) CheckEmailUniqueness(ctx context.Context, email string, excluded ...student.Student) error {
	query := `SELECT EXISTS (SELECT 1 FROM student WHERE email = $1`
	args := []interface{}{email}
	if len(excluded) > 0 {
		ids := make([]string, 0, len(excluded))
		for _, std := range excluded {
			ids = append(ids, std.ID)
		}
		query += ` AND id != ALL($2)`
		args = append(args, pq.Array(ids))
	}
	query += `)`

	var exists bool
	if err := repo.db.GetContext(ctx, &exists, query, args...); err != nil {
		return errors.Wrap(err, "checking student uniqueness")
	}
	if exists {
		return student.ErrEmailExists
	}
	return nil
}

func (repo studentRepository) CreateStudent(ctx context.Context, std student.Student) (student.Student, error) {
	std.ID = uuid.New().String()

	query := `
INSERT INTO student (id, name, email, plan, subjects, is_verified, password_hash, last_login, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := repo.db.ExecContext(ctx, query,
		std.ID, std.Name, std.Email, std.Plan, pq.StringArray(std.Subjects), std.IsVerified,
		std.PasswordHash, null.NewTime(std.LastLogin, !std.LastLogin.IsZero()), std.CreatedAt, std.UpdatedAt,
	)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "inserting student")
	}
	return std, nil
}

func (repo studentRepository) GetStudent(ctx context.Context, filter student.GetFilter) (student.Student, error) {
	var row studentRow

	if filter.ID != "" {
		if _, err := uuid.Parse(filter.ID); err != nil {
			return student.Student{}, student.ErrNotFound
		}
		query := `SELECT ` + studentColumns + ` FROM student WHERE id = $1`
		if err := repo.db.GetContext(ctx, &row, query, filter.ID); err != nil {
			return student.Student{}, repo.trapNoRowsErr(err, "finding student by ID")
		}
		return row.student(), nil
	}

	query := `SELECT ` + studentColumns + ` FROM student WHERE email = $1`
	if err := repo.db.GetContext(ctx, &row, query, filter.Email); err != nil {
		return student.Student{}, repo.trapNoRowsErr(err, "finding student by email")
	}
	return row.student(), nil
}

func (repo studentRepository) QueryStudents(ctx context.Context, filter *student.QueryFilter, ordering []core.DBOrdering) ([]student.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM student`
	var conds []string
	var args []interface{}

	arg := func(val interface{}) string {
		args = append(args, val)
		return "$" + strconv.Itoa(len(args))
	}

	if filter != nil {
		if filter.Search != "" {
			val := "%" + filter.Search + "%"
			conds = append(conds, "(name ILIKE "+arg(val)+" OR email ILIKE "+arg(val)+")")
		}
		if filter.Plan != "" {
			conds = append(conds, "plan = "+arg(filter.Plan))
		}
		if filter.Subject != "" {
			conds = append(conds, arg(filter.Subject)+" = ANY(subjects)")
		}
		if filter.IsVerified != nil {
			conds = append(conds, "is_verified = "+arg(*filter.IsVerified))
		}
		if !filter.CreatedFrom.IsZero() {
			conds = append(conds, "created_at >= "+arg(filter.CreatedFrom.UTC()))
		}
		if !filter.CreatedTo.IsZero() {
			conds = append(conds, "created_at <= "+arg(filter.CreatedTo.UTC()))
		}
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	query += orderClause(ordering, studentOrderColumns)

	var rows []studentRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying students")
	}

	students := make([]student.Student, 0, len(rows))
	for _, row := range rows {
		students = append(students, row.student())
	}
	return students, nil
}

func (repo studentRepository) UpdateStudent(ctx context.Context, std student.Student, isVerified *bool) (student.Student, error) {
	if isVerified != nil {
		std.IsVerified = *isVerified
	}

	query := `
UPDATE student
SET name = $2, email = $3, plan = $4, subjects = $5, is_verified = $6, password_hash = $7, last_login = $8, updated_at = $9
WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, query,
		std.ID, std.Name, std.Email, std.Plan, pq.StringArray(std.Subjects), std.IsVerified,
		std.PasswordHash, null.NewTime(std.LastLogin, !std.LastLogin.IsZero()), std.UpdatedAt,
	)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "updating student")
	}
	if cnt, err := res.RowsAffected(); err == nil && cnt == 0 {
		return student.Student{}, student.ErrNotFound
	}
	return std, nil
}

func (repo studentRepository) DeleteStudentsByID(ctx context.Context, ids ...string) (int, error) {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM student WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return 0, errors.Wrap(err, "deleting students")
	}
	cnt, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "deleting students")
	}
	return int(cnt), nil
}
