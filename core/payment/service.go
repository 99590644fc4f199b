package payment

import (
	"context"
	crand "crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"net/mail"
	"strings"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/legacybuilder/backend/core"
	"github.com/legacybuilder/backend/core/student"
)

var (
	// errors
	ErrNotFound        = errors.New("payment not found")
	ErrUnknownProvider = errors.New("unknown payment provider")
	ErrGateway         = errors.New("payment gateway error")
)

const (
	referencePrefix = "LB-C5-"
	referenceLen    = 12
	refAlphabet     = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

type (
	// Gateway talks to one payment provider.
	Gateway interface {
		Provider() string
		// Initialize opens a charge. The returned Checkout carries the final
		// reference: some providers take ours, others assign their own.
		Initialize(ctx context.Context, txn Transaction) (Checkout, error)
		Lookup(ctx context.Context, reference string) (Lookup, error)
	}

	Repository interface {
		CreateTransaction(ctx context.Context, txn Transaction) (Transaction, error)
		GetTransaction(ctx context.Context, reference string) (Transaction, error)
		QueryTransactionsByEmail(ctx context.Context, email string) ([]Transaction, error)
		// SettleTransaction conditionally moves a Pending transaction to
		// status. The bool reports whether the transition happened on this
		// call; a settled transaction is returned unchanged.
		SettleTransaction(ctx context.Context, reference, status string, paymentDate time.Time) (Transaction, bool, error)
	}

	// Receipt is the outcome of a verification call.
	Receipt struct {
		Transaction Transaction      `json:"payment"`
		Student     *student.Student `json:"student,omitempty"`
		Verified    bool             `json:"verified"`
	}

	Service interface {
		Initiate(ctx context.Context, provider string, ip InitiatePayment) (Checkout, error)
		Verify(ctx context.Context, provider, reference string) (Receipt, error)
		GetByReference(ctx context.Context, reference string) (Transaction, error)
		QueryByEmail(ctx context.Context, email string) ([]Transaction, error)
	}

	// Reconciler drives checkouts through the gateways and settles them
	// against the student's plan.
	Reconciler struct {
		repo       Repository
		gateways   map[string]Gateway
		studentSvc student.Service
		mailSvc    core.EmailService
		conf       *core.Config
	}
)

var _ Service = (*Reconciler)(nil)

func NewReconciler(repo Repository, studentSvc student.Service, mailSvc core.EmailService, conf *core.Config, gateways ...Gateway) *Reconciler {
	gws := make(map[string]Gateway, len(gateways))
	for _, gw := range gateways {
		gws[gw.Provider()] = gw
	}
	return &Reconciler{
		repo:       repo,
		gateways:   gws,
		studentSvc: studentSvc,
		mailSvc:    mailSvc,
		conf:       conf,
	}
}

func (svc *Reconciler) Initiate(ctx context.Context, provider string, ip InitiatePayment) (Checkout, error) {
	gw, ok := svc.gateways[provider]
	if !ok {
		return Checkout{}, ErrUnknownProvider
	}

	ref, err := newReference()
	if err != nil {
		return Checkout{}, err
	}

	now := time.Now().UTC()
	txn := Transaction{
		Provider:    provider,
		Reference:   ref,
		Name:        ip.Name,
		Email:       ip.Email,
		Amount:      ip.Amount,
		Currency:    Currency,
		Plan:        ip.Plan,
		Status:      StatusPending,
		PaymentDate: null.TimeFrom(now),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	checkout, err := gw.Initialize(ctx, txn)
	if err != nil {
		return Checkout{}, err
	}
	txn.Reference = checkout.Reference

	if _, err = svc.repo.CreateTransaction(ctx, txn); err != nil {
		return Checkout{}, err
	}
	return checkout, nil
}

// Verify settles a transaction against the gateway's view of the charge.
// A successful settlement upgrades the student's plan and emails a receipt;
// re-verifying a settled transaction changes nothing.
func (svc *Reconciler) Verify(ctx context.Context, provider, reference string) (Receipt, error) {
	gw, ok := svc.gateways[provider]
	if !ok {
		return Receipt{}, ErrUnknownProvider
	}

	if _, err := svc.repo.GetTransaction(ctx, reference); err != nil {
		return Receipt{}, err
	}

	lookup, err := gw.Lookup(ctx, reference)
	if err != nil {
		return Receipt{}, err
	}

	status := StatusFailed
	if strings.EqualFold(lookup.Status, "success") {
		status = StatusSuccess
	}
	paidAt := lookup.PaidAt
	if paidAt.IsZero() {
		paidAt = time.Now().UTC()
	}

	txn, transitioned, err := svc.repo.SettleTransaction(ctx, reference, status, paidAt)
	if err != nil {
		return Receipt{}, err
	}

	receipt := Receipt{Transaction: txn, Verified: txn.Status == StatusSuccess}
	if status == StatusSuccess && transitioned {
		std, err := svc.studentSvc.UpdatePlan(ctx, txn.Email, txn.Plan)
		if err != nil {
			return receipt, err
		}
		receipt.Student = &std
		svc.sendReceiptMail(std, txn)
	}
	return receipt, nil
}

func (svc *Reconciler) GetByReference(ctx context.Context, reference string) (Transaction, error) {
	return svc.repo.GetTransaction(ctx, reference)
}

func (svc *Reconciler) QueryByEmail(ctx context.Context, email string) ([]Transaction, error) {
	return svc.repo.QueryTransactionsByEmail(ctx, core.CleanString(email, true /* lower */))
}

func (svc *Reconciler) sendReceiptMail(std student.Student, txn Transaction) {
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: std.Name, Address: std.Email}},
		Subject:      "Payment received",
		TemplateName: "payment-receipt",
		TemplateData: receiptMailData{
			Name:      std.Name,
			Amount:    fmt.Sprintf("%.2f", txn.Amount),
			Provider:  txn.Provider,
			Plan:      std.Plan,
			Reference: txn.Reference,
		},
	})
}

type receiptMailData struct {
	Name      string
	Amount    string
	Provider  string
	Plan      string
	Reference string
}

// newReference mints a "LB-C5-" prefixed reference with 12 random alphanumerics.
func newReference() (string, error) {
	var b strings.Builder
	b.WriteString(referencePrefix)
	max := big.NewInt(int64(len(refAlphabet)))
	for i := 0; i < referenceLen; i++ {
		n, err := crand.Int(crand.Reader, max)
		if err != nil {
			return "", err
		}
		b.WriteByte(refAlphabet[n.Int64()])
	}
	return b.String(), nil
}
