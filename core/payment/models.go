package payment

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/legacybuilder/backend/core"
)

// Providers
const (
	ProviderKora     = "kora"
	ProviderPaystack = "paystack"
)

// Transaction statuses
const (
	StatusPending = "Pending"
	StatusSuccess = "Success"
	StatusFailed  = "Failed"
)

// Currency is the only settlement currency supported.
const Currency = "NGN"

type Transaction struct {
	ID          string    `json:"id"`
	Provider    string    `json:"provider"`
	Reference   string    `json:"reference"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Amount      float64   `json:"amount"`
	Currency    string    `json:"currency"`
	Plan        string    `json:"plan"`
	Status      string    `json:"status"`
	PaymentDate null.Time `json:"payment_date"`
	CreatedAt   time.Time `json:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at"` // UTC
}

func (t *Transaction) IsPending() bool { return t.Status == StatusPending }

// InitiatePayment contains information needed to start a checkout.
type InitiatePayment struct {
	Name   string  `json:"name" validate:"required"`
	Email  string  `json:"email" validate:"required,email"`
	Amount float64 `json:"amount" validate:"required,gt=0"`
	Plan   string  `json:"plan" validate:"required,plan"`
}

func (ip *InitiatePayment) Validate(validate *validator.Validate) error {
	ip.Name = core.CleanString(ip.Name)
	ip.Email = core.CleanString(ip.Email, true /* lower */)
	return validate.Struct(ip)
}

// Checkout is what the client needs to send the payer to the gateway.
type Checkout struct {
	Reference   string `json:"reference"`
	CheckoutURL string `json:"checkout_url"`
	RedirectURL string `json:"redirect_url,omitempty"`
}

// Lookup is a gateway's view of a charge.
type Lookup struct {
	Reference string
	Status    string // raw provider status
	PaidAt    time.Time
}
