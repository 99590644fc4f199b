package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/legacybuilder/backend/core"
	"github.com/legacybuilder/backend/core/payment"
	"github.com/legacybuilder/backend/core/student"
)

type paymentApi struct {
	svc      payment.Service
	validate *validator.Validate
}

func registerPaymentAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := paymentApi{svc: deps.PaymentSvc, validate: deps.Validate}

	pg := g.Group("/payments")

	// the frontend drives checkout and lands back on verify; neither
	// call carries a session
	pg.POST("/:provider/initialize", api.initialize)
	pg.GET("/:provider/verify", api.verify)

	pg.GET("", api.history, jwt)
}

func (api *paymentApi) initialize(ctx echo.Context) error {
	var data payment.InitiatePayment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to InitiatePayment")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	checkout, err := api.svc.Initiate(ctx.Request().Context(), ctx.Param("provider"), data)
	if err != nil {
		return api.trapErr(err, "initializing payment")
	}
	return ctx.JSON(http.StatusOK, InitializeResponse{Message: "Payment initialized successfully", Data: checkout})
}

func (api *paymentApi) verify(ctx echo.Context) error {
	reference := core.CleanString(ctx.QueryParam("reference"))
	if reference == "" {
		return core.NewValidationError(nil, core.FieldError{Field: "reference", Error: "reference is required"})
	}

	receipt, err := api.svc.Verify(ctx.Request().Context(), ctx.Param("provider"), reference)
	if err != nil {
		return api.trapErr(err, "verifying payment")
	}

	message := "Payment Verification Failed"
	if receipt.Verified {
		message = "Payment Verified Successfully"
	}
	return ctx.JSON(http.StatusOK, VerifyResponse{Message: message, Data: receipt})
}

func (api *paymentApi) history(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	txns, err := api.svc.QueryByEmail(ctx.Request().Context(), claims.Email)
	if err != nil {
		return errors.Wrap(err, "querying payments")
	}
	if txns == nil {
		txns = []payment.Transaction{}
	}
	return ctx.JSON(http.StatusOK, txns)
}

func (api *paymentApi) trapErr(err error, msg string) error {
	switch errors.Cause(err) {
	// a plan upgrade can find the account gone by the time verify lands
	case payment.ErrUnknownProvider, payment.ErrNotFound, student.ErrNotFound:
		return errHttpNotFound
	case payment.ErrGateway:
		return errBadGateway
	}
	return errors.Wrap(err, msg)
}

type (
	InitializeResponse struct {
		Message string           `json:"message"`
		Data    payment.Checkout `json:"data"`
	}

	VerifyResponse struct {
		Message string          `json:"message"`
		Data    payment.Receipt `json:"data"`
	}
)
