package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"

	"github.com/legacybuilder/backend/core/payment"
)

type transactionRepository struct {
	db *transactionTable
}

var _ payment.Repository = (*transactionRepository)(nil) // interface compliance check

func NewTransactionRepository(db *DB) *transactionRepository {
	return &transactionRepository{db: db.transaction}
}

func (repo *transactionRepository) CreateTransaction(_ context.Context, txn payment.Transaction) (payment.Transaction, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	txn.ID = uuid.New().String()
	repo.db.table[txn.Reference] = &txn
	return txn, nil
}

func (repo *transactionRepository) GetTransaction(_ context.Context, reference string) (payment.Transaction, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if txn, ok := repo.db.table[reference]; ok {
		return *txn, nil
	}
	return payment.Transaction{}, payment.ErrNotFound
}

func (repo *transactionRepository) QueryTransactionsByEmail(_ context.Context, email string) ([]payment.Transaction, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	txns := make([]payment.Transaction, 0)
	for _, txn := range repo.db.table {
		if txn.Email == email {
			txns = append(txns, *txn)
		}
	}
	sort.Slice(txns, func(i, j int) bool { return txns[i].CreatedAt.After(txns[j].CreatedAt) })
	return txns, nil
}

func (repo *transactionRepository) SettleTransaction(_ context.Context, reference, status string, paymentDate time.Time) (payment.Transaction, bool, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	txn, ok := repo.db.table[reference]
	if !ok {
		return payment.Transaction{}, false, payment.ErrNotFound
	}
	if !txn.IsPending() {
		return *txn, false, nil
	}

	txn.Status = status
	txn.PaymentDate = null.TimeFrom(paymentDate.UTC())
	txn.UpdatedAt = time.Now().UTC()
	return *txn, true, nil
}
