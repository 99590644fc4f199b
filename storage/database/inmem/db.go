package inmemdb

import (
	"sync"

	"github.com/legacybuilder/backend/core/payment"
	"github.com/legacybuilder/backend/core/score"
	"github.com/legacybuilder/backend/core/student"
)

type (
	DB struct {
		student     *studentTable
		score       *scoreTable
		transaction *transactionTable
	}

	studentTable struct {
		sync.RWMutex
		table map[string]*student.Student
	}

	scoreTable struct {
		sync.RWMutex
		table map[string]*score.Entry // keyed by studentID + "/" + subject
	}

	transactionTable struct {
		sync.RWMutex
		table map[string]*payment.Transaction // keyed by reference
	}
)

func Open() (*DB, error) {
	db := &DB{
		student:     &studentTable{table: make(map[string]*student.Student)},
		score:       &scoreTable{table: make(map[string]*score.Entry)},
		transaction: &transactionTable{table: make(map[string]*payment.Transaction)},
	}
	return db, nil
}
