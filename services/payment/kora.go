// Package paymentsvc implements the payment gateways.
package paymentsvc

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"github.com/legacybuilder/backend/core"
	"github.com/legacybuilder/backend/core/payment"
)

// gatewayTimeout bounds every call to a payment provider.
const gatewayTimeout = 10 * time.Second

type koraGateway struct {
	baseURL     string
	secretKey   string
	redirectURL string
	http        *http.Client
}

var _ payment.Gateway = (*koraGateway)(nil)

func NewKoraGateway(conf *core.Config) *koraGateway {
	return &koraGateway{
		baseURL:     conf.Kora.BaseURL,
		secretKey:   conf.Kora.SecretKey,
		redirectURL: conf.FrontendBaseURL + "/verifyingPayment",
		http:        &http.Client{Timeout: gatewayTimeout},
	}
}

func (g *koraGateway) Provider() string { return payment.ProviderKora }

func (g *koraGateway) Initialize(ctx context.Context, txn payment.Transaction) (payment.Checkout, error) {
	reqBody := struct {
		Amount   float64 `json:"amount"`
		Currency string  `json:"currency"`
		Reference string `json:"reference"`
		Customer struct {
			Name  string `json:"name"`
			Email string `json:"email"`
		} `json:"customer"`
		RedirectURL string `json:"redirect_url"`
	}{
		Amount:      txn.Amount,
		Currency:    txn.Currency,
		Reference:   txn.Reference,
		RedirectURL: g.redirectURL,
	}
	reqBody.Customer.Name = txn.Name
	reqBody.Customer.Email = txn.Email

	var resBody struct {
		Data struct {
			Reference   string `json:"reference"`
			CheckoutURL string `json:"checkout_url"`
		} `json:"data"`
	}
	if err := g.do(ctx, http.MethodPost, "/merchant/api/v1/charges/initialize", reqBody, &resBody); err != nil {
		return payment.Checkout{}, err
	}

	ref := resBody.Data.Reference
	if ref == "" {
		ref = txn.Reference
	}
	return payment.Checkout{
		Reference:   ref,
		CheckoutURL: resBody.Data.CheckoutURL,
		RedirectURL: g.redirectURL,
	}, nil
}

func (g *koraGateway) Lookup(ctx context.Context, reference string) (payment.Lookup, error) {
	var resBody struct {
		Data struct {
			Reference string `json:"reference"`
			Status    string `json:"status"`
		} `json:"data"`
	}
	if err := g.do(ctx, http.MethodGet, "/merchant/api/v1/charges/"+reference, nil, &resBody); err != nil {
		return payment.Lookup{}, err
	}
	if resBody.Data.Status == "" {
		return payment.Lookup{}, errors.Wrap(payment.ErrGateway, "kora: no data returned")
	}
	return payment.Lookup{Reference: reference, Status: resBody.Data.Status}, nil
}

func (g *koraGateway) do(ctx context.Context, method, path string, reqBody, resBody interface{}) error {
	body := new(bytes.Buffer)
	if reqBody != nil {
		if err := json.NewEncoder(body).Encode(reqBody); err != nil {
			return errors.Wrap(err, "encoding kora request")
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, body)
	if err != nil {
		return errors.Wrap(err, "building kora request")
	}
	req.Header.Set("Authorization", "Bearer "+g.secretKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := g.http.Do(req)
	if err != nil {
		return errors.Wrap(err, "calling kora")
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		return errors.Wrapf(payment.ErrGateway, "kora: unexpected status %d", res.StatusCode)
	}
	return errors.Wrap(json.NewDecoder(res.Body).Decode(resBody), "decoding kora response")
}
