package testutil

import (
	"context"
	"net/mail"
	"testing"
	"time"

	"github.com/legacybuilder/backend/core"
	"github.com/legacybuilder/backend/core/payment"
	"github.com/legacybuilder/backend/core/student"
)

// NewConfig returns a self-contained test configuration.
func NewConfig() *core.Config {
	return &core.Config{
		TestMode:                  true,
		Env:                       "TEST",
		AppName:                   "LegacyBuilder",
		SecretKey:                 "secret",
		FrontendBaseURL:           "https://legacy-builder.test",
		DefaultFromEmail:          mail.Address{Name: "LegacyBuilder", Address: "noreply@legacy-builder.test"},
		VerificationTimeoutDelta:  24 * time.Hour,
		PasswordResetTimeoutDelta: 15 * time.Minute,
		Server: core.ServerConfig{
			Host:                      "127.0.0.1",
			Port:                      "8000",
			JWTExpirationDelta:        time.Hour,
			JWTRefreshExpirationDelta: 30 * time.Minute,
		},
	}
}

func CreateStudent(
	t *testing.T,
	repo student.Repository,
	name, email, pwd string,
	subjects []string,
	verified bool,
	createdAt ...time.Time,
) student.Student {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	std := student.Student{
		Name:       name,
		Email:      email,
		Plan:       student.PlanFreemium,
		Subjects:   subjects,
		IsVerified: verified,
		CreatedAt:  tstamp,
		UpdatedAt:  tstamp,
	}
	if pwd != "" {
		if err := std.SetPassword(pwd); err != nil {
			t.Fatalf("CreateStudent(): %v", err)
		}
	}
	std, err := repo.CreateStudent(context.Background(), std)
	if err != nil {
		t.Fatalf("CreateStudent(): %v", err)
	}
	return std
}

func CreateTransaction(
	t *testing.T,
	repo payment.Repository,
	provider, reference, name, email string,
	amount float64,
	plan string,
) payment.Transaction {
	t.Helper()

	now := time.Now().UTC()
	txn, err := repo.CreateTransaction(context.Background(), payment.Transaction{
		Provider:  provider,
		Reference: reference,
		Name:      name,
		Email:     email,
		Amount:    amount,
		Currency:  payment.Currency,
		Plan:      plan,
		Status:    payment.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateTransaction(): %v", err)
	}
	return txn
}
