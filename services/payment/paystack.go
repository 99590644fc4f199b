package paymentsvc

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"github.com/legacybuilder/backend/core"
	"github.com/legacybuilder/backend/core/payment"
)

type paystackGateway struct {
	baseURL   string
	secretKey string
	http      *http.Client
}

var _ payment.Gateway = (*paystackGateway)(nil)

func NewPaystackGateway(conf *core.Config) *paystackGateway {
	return &paystackGateway{
		baseURL:   conf.Paystack.BaseURL,
		secretKey: conf.Paystack.SecretKey,
		http:      &http.Client{Timeout: gatewayTimeout},
	}
}

func (g *paystackGateway) Provider() string { return payment.ProviderPaystack }

func (g *paystackGateway) Initialize(ctx context.Context, txn payment.Transaction) (payment.Checkout, error) {
	reqBody := struct {
		Email    string `json:"email"`
		Amount   int64  `json:"amount"` // kobo
		Metadata struct {
			Name string `json:"name"`
			Plan string `json:"plan"`
		} `json:"metadata"`
	}{
		Email:  txn.Email,
		Amount: int64(math.Round(txn.Amount * 100)),
	}
	reqBody.Metadata.Name = txn.Name
	reqBody.Metadata.Plan = txn.Plan

	var resBody struct {
		Data struct {
			AuthorizationURL string `json:"authorization_url"`
			Reference        string `json:"reference"`
		} `json:"data"`
	}
	if err := g.do(ctx, http.MethodPost, "/transaction/initialize", reqBody, &resBody); err != nil {
		return payment.Checkout{}, err
	}
	if resBody.Data.Reference == "" {
		return payment.Checkout{}, errors.Wrap(payment.ErrGateway, "paystack: no reference returned")
	}

	// paystack assigns its own reference
	return payment.Checkout{
		Reference:   resBody.Data.Reference,
		CheckoutURL: resBody.Data.AuthorizationURL,
	}, nil
}

func (g *paystackGateway) Lookup(ctx context.Context, reference string) (payment.Lookup, error) {
	var resBody struct {
		Data struct {
			Reference string `json:"reference"`
			Status    string `json:"status"`
			PaidAt    string `json:"paid_at"`
		} `json:"data"`
	}
	if err := g.do(ctx, http.MethodGet, "/transaction/verify/"+reference, nil, &resBody); err != nil {
		return payment.Lookup{}, err
	}

	lookup := payment.Lookup{Reference: reference, Status: resBody.Data.Status}
	if resBody.Data.PaidAt != "" {
		if paidAt, err := time.Parse(time.RFC3339, resBody.Data.PaidAt); err == nil {
			lookup.PaidAt = paidAt
		}
	}
	return lookup, nil
}

func (g *paystackGateway) do(ctx context.Context, method, path string, reqBody, resBody interface{}) error {
	body := new(bytes.Buffer)
	if reqBody != nil {
		if err := json.NewEncoder(body).Encode(reqBody); err != nil {
			return errors.Wrap(err, "encoding paystack request")
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, body)
	if err != nil {
		return errors.Wrap(err, "building paystack request")
	}
	req.Header.Set("Authorization", "Bearer "+g.secretKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := g.http.Do(req)
	if err != nil {
		return errors.Wrap(err, "calling paystack")
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		return errors.Wrapf(payment.ErrGateway, "paystack: unexpected status %d", res.StatusCode)
	}
	return errors.Wrap(json.NewDecoder(res.Body).Decode(resBody), "decoding paystack response")
}
