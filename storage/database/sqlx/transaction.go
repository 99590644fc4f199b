package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/legacybuilder/backend/core/payment"
)

const transactionColumns = "id, provider, reference, name, email, amount, currency, plan, status, payment_date, created_at, updated_at"

type transactionRow struct {
	ID          string    `db:"id"`
	Provider    string    `db:"provider"`
	Reference   string    `db:"reference"`
	Name        string    `db:"name"`
	Email       string    `db:"email"`
	Amount      float64   `db:"amount"`
	Currency    string    `db:"currency"`
	Plan        string    `db:"plan"`
	Status      string    `db:"status"`
	PaymentDate null.Time `db:"payment_date"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (row transactionRow) transaction() payment.Transaction {
	return payment.Transaction{
		ID:          row.ID,
		Provider:    row.Provider,
		Reference:   row.Reference,
		Name:        row.Name,
		Email:       row.Email,
		Amount:      row.Amount,
		Currency:    row.Currency,
		Plan:        row.Plan,
		Status:      row.Status,
		PaymentDate: row.PaymentDate,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}

type transactionRepository struct {
	db *sqlx.DB
}

var _ payment.Repository = (*transactionRepository)(nil) // interface compliance check

func NewTransactionRepository(db *sql.DB) *transactionRepository {
	return &transactionRepository{db: sqlx.NewDb(db, "postgres")}
}

func (repo transactionRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return payment.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo transactionRepository) CreateTransaction(ctx context.Context, txn payment.Transaction) (payment.Transaction, error) {
	txn.ID = uuid.New().String()

	query := `
INSERT INTO payment_transaction (id, provider, reference, name, email, amount, currency, plan, status, payment_date, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := repo.db.ExecContext(ctx, query,
		txn.ID, txn.Provider, txn.Reference, txn.Name, txn.Email, txn.Amount, txn.Currency,
		txn.Plan, txn.Status, txn.PaymentDate, txn.CreatedAt, txn.UpdatedAt,
	)
	if err != nil {
		return payment.Transaction{}, errors.Wrap(err, "inserting transaction")
	}
	return txn, nil
}

func (repo transactionRepository) GetTransaction(ctx context.Context, reference string) (payment.Transaction, error) {
	var row transactionRow
	query := `SELECT ` + transactionColumns + ` FROM payment_transaction WHERE reference = $1`
	if err := repo.db.GetContext(ctx, &row, query, reference); err != nil {
		return payment.Transaction{}, repo.trapNoRowsErr(err, "finding transaction")
	}
	return row.transaction(), nil
}

func (repo transactionRepository) QueryTransactionsByEmail(ctx context.Context, email string) ([]payment.Transaction, error) {
	var rows []transactionRow
	query := `SELECT ` + transactionColumns + ` FROM payment_transaction WHERE email = $1 ORDER BY created_at DESC`
	if err := repo.db.SelectContext(ctx, &rows, query, email); err != nil {
		return nil, errors.Wrap(err, "querying transactions")
	}

	txns := make([]payment.Transaction, 0, len(rows))
	for _, row := range rows {
		txns = append(txns, row.transaction())
	}
	return txns, nil
}

// SettleTransaction relies on the WHERE status = 'Pending' guard so that
// concurrent verifications settle a transaction at most once.
func (repo transactionRepository) SettleTransaction(ctx context.Context, reference, status string, paymentDate time.Time) (payment.Transaction, bool, error) {
	var row transactionRow
	query := `
UPDATE payment_transaction
SET status = $2, payment_date = $3, updated_at = $4
WHERE reference = $1 AND status = 'Pending'
RETURNING ` + transactionColumns
	err := repo.db.GetContext(ctx, &row, query, reference, status, null.TimeFrom(paymentDate.UTC()), time.Now().UTC())
	if err == nil {
		return row.transaction(), true, nil
	}
	if err != sql.ErrNoRows {
		return payment.Transaction{}, false, errors.Wrap(err, "settling transaction")
	}

	// no pending row; either already settled or unknown reference
	txn, err := repo.GetTransaction(ctx, reference)
	if err != nil {
		return payment.Transaction{}, false, err
	}
	return txn, false, nil
}
