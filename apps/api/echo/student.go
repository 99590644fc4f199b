package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/legacybuilder/backend/core"
	"github.com/legacybuilder/backend/core/score"
	"github.com/legacybuilder/backend/core/student"
)

var errStdNotFoundInCtx = errors.New("student object not found in echo.Context")

type studentApi struct {
	svc        student.Service
	scoreSvc   score.Service
	conf       *core.Config
	validate   *validator.Validate
	translator ut.Translator
}

func registerStudentAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := studentApi{
		svc:        deps.StudentSvc,
		scoreSvc:   deps.ScoreSvc,
		conf:       deps.Conf,
		validate:   deps.Validate,
		translator: deps.Translator,
	}

	sg := g.Group("/students")

	// un-authed endpoints
	// TODO: rate limit `/password-reset` & `/password-reset-confirm`
	sg.POST("", api.register)
	sg.GET("/verify", api.verifyEmail)
	sg.POST("/login", api.login)
	sg.POST("/password-reset", api.resetPassword)
	sg.POST("/password-reset-confirm", api.confirmPasswordReset)

	// authed endpoints. jwt is applied per route: a bare sub-group would
	// register catch-alls on "/students" and shadow the open routes above.
	sg.POST("/token-refresh", api.refreshToken, jwt)
	sg.POST("/logout", api.logout, jwt)
	sg.GET("", api.query, jwt)
	sg.GET("/scores", api.scoreBoard, jwt)
	sg.GET("/scores/:subject", api.subjectScore, jwt)
	sg.PUT("/scores/:subject", api.recordScore, jwt)

	// detail endpoints
	dg := sg.Group("/:id", jwt, ctxStudentMiddleware(api.svc))
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy)
	dg.POST("/change-password", api.changePassword)
	dg.POST("/subjects", api.addSubject)
	dg.DELETE("/subjects/:subject", api.removeSubject)
}

// Handlers

func (api *studentApi) register(ctx echo.Context) error {
	var data student.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}
	if err := data.Validate(api.validate, api.svc); err != nil {
		return err
	}

	std, err := api.svc.Register(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "registering student")
	}

	return ctx.JSON(http.StatusCreated, std)
}

func (api *studentApi) verifyEmail(ctx echo.Context) error {
	var data student.VerifyStudentEmail
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to VerifyStudentEmail")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	if _, err := api.svc.VerifyEmail(ctx.Request().Context(), data); err != nil {
		if errors.Cause(err) == student.ErrAlreadyVerified {
			return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Email address already verified."})
		}
		if errors.Cause(err) == student.ErrNotFound {
			return errHttpNotFound
		}
		return err
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Email address verified."})
}

func (api *studentApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	claims, err := authenticate(ctx, data.Email, data.Password, api.svc, api.conf)
	if err != nil {
		return err
	}
	token, err := GenerateToken(claims, api.conf)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}

	return ctx.JSON(http.StatusOK, LoginResponse{Token: token})
}

func (api *studentApi) logout(ctx echo.Context) error {
	// tokens are stateless; the client drops theirs
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Logged out."})
}

func (api *studentApi) resetPassword(ctx echo.Context) error {
	var data PasswordResetRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to PasswordResetRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	if err := api.svc.RequestPasswordReset(ctx.Request().Context(), data.Email); !(err == nil || errors.Cause(err) == student.ErrNotFound) {
		// do not return errors to attackers
		ctx.Logger().Errorf("%+v", errors.Wrap(err, "requesting password reset"))
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{
		Success: "If the email address supplied is associated with an active account on this system, " +
			"an email will arrive in your inbox shortly with instructions to reset your password.",
	})
}

func (api *studentApi) confirmPasswordReset(ctx echo.Context) error {
	var data student.ResetStudentPassword
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ResetStudentPassword")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	if err := api.svc.ResetPassword(ctx.Request().Context(), data); err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "resetting password")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Password has been reset with the new password."})
}

func (api *studentApi) query(ctx echo.Context) error {
	filter := new(student.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []student.Student{})
	}
	filter.Clean()
	ordering := new(Ordering)
	ordering.Bind(ctx)

	students, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	if students == nil {
		students = []student.Student{}
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *studentApi) retrieve(ctx echo.Context) error {
	std, ok := ctx.Get("object").(student.Student)
	if !ok {
		return errors.Wrap(errStdNotFoundInCtx, "retrieving object from context")
	}
	return ctx.JSON(http.StatusOK, std)
}

func (api *studentApi) update(ctx echo.Context) error {
	std, ok := ctx.Get("object").(student.Student)
	if !ok {
		return errors.Wrap(errStdNotFoundInCtx, "retrieving object from context")
	}

	var data student.UpdateStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateStudent")
	}
	if err := data.Validate(std, api.validate, api.svc); err != nil {
		return err
	}

	std, err := api.svc.Update(ctx.Request().Context(), std.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating student")
	}

	return ctx.JSON(http.StatusOK, std)
}

func (api *studentApi) destroy(ctx echo.Context) error {
	std, ok := ctx.Get("object").(student.Student)
	if !ok {
		return errors.Wrap(errStdNotFoundInCtx, "retrieving object from context")
	}

	if err := api.svc.Delete(ctx.Request().Context(), std.ID); err != nil {
		return errors.Wrap(err, "deleting student")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *studentApi) changePassword(ctx echo.Context) error {
	std, ok := ctx.Get("object").(student.Student)
	if !ok {
		return errors.Wrap(errStdNotFoundInCtx, "retrieving object from context")
	}

	var data student.ChangeStudentPassword
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ChangeStudentPassword")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	if _, err := api.svc.ChangePassword(ctx.Request().Context(), std.ID, data); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Password changed."})
}

func (api *studentApi) addSubject(ctx echo.Context) error {
	std, ok := ctx.Get("object").(student.Student)
	if !ok {
		return errors.Wrap(errStdNotFoundInCtx, "retrieving object from context")
	}

	var data SubjectRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SubjectRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	std, err := api.svc.AddSubject(ctx.Request().Context(), std.ID, data.Subject)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, std)
}

func (api *studentApi) removeSubject(ctx echo.Context) error {
	std, ok := ctx.Get("object").(student.Student)
	if !ok {
		return errors.Wrap(errStdNotFoundInCtx, "retrieving object from context")
	}

	std, err := api.svc.RemoveSubject(ctx.Request().Context(), std.ID, ctx.Param("subject"))
	if err != nil {
		if errors.Cause(err) == student.ErrNotEnrolled {
			return core.NewValidationError(err, core.FieldError{Field: "subject", Error: err.Error()})
		}
		return err
	}
	return ctx.JSON(http.StatusOK, std)
}

func (api *studentApi) scoreBoard(ctx echo.Context) error {
	std, err := getContextStudent(ctx, api.svc)
	if err != nil {
		return errors.Wrap(err, "getting context student")
	}

	entries, err := api.scoreSvc.Board(ctx.Request().Context(), std.ID)
	if err != nil {
		return errors.Wrap(err, "querying score board")
	}
	if entries == nil {
		entries = []score.Entry{}
	}
	return ctx.JSON(http.StatusOK, entries)
}

func (api *studentApi) subjectScore(ctx echo.Context) error {
	std, err := getContextStudent(ctx, api.svc)
	if err != nil {
		return errors.Wrap(err, "getting context student")
	}

	entry, err := api.scoreSvc.SubjectEntry(ctx.Request().Context(), std.ID, ctx.Param("subject"))
	if err != nil {
		if errors.Cause(err) == score.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding score entry")
	}
	return ctx.JSON(http.StatusOK, entry)
}

func (api *studentApi) recordScore(ctx echo.Context) error {
	std, err := getContextStudent(ctx, api.svc)
	if err != nil {
		return errors.Wrap(err, "getting context student")
	}

	var data RecordScoreRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to RecordScoreRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	entry, err := api.scoreSvc.Record(ctx.Request().Context(), std.ID, ctx.Param("subject"), data.Score)
	if err != nil {
		if errors.Cause(err) == score.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "recording score")
	}
	return ctx.JSON(http.StatusOK, entry)
}

func (api *studentApi) refreshToken(ctx echo.Context) error {
	token, err := refreshToken(ctx, api.svc, api.conf)
	if err != nil {
		return errors.Wrap(err, "refreshing token")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token})
}

type (
	LoginRequest struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	LoginResponse struct {
		Token string `json:"token"`
	}

	PasswordResetRequest struct {
		Email string `json:"email" validate:"required,email"`
	}

	SuccessResponse struct {
		Success string `json:"success"`
	}

	SubjectRequest struct {
		Subject string `json:"subject" validate:"required,subject"`
	}

	RecordScoreRequest struct {
		Score int `json:"score" validate:"gte=0,lte=100"`
	}
)

func (lr *LoginRequest) Validate(validate *validator.Validate) error {
	lr.Email = core.CleanString(lr.Email, true /* lower */)
	return validate.Struct(lr)
}

func (pr *PasswordResetRequest) Validate(validate *validator.Validate) error {
	pr.Email = core.CleanString(pr.Email, true /* lower */)
	return validate.Struct(pr)
}

func (sr *SubjectRequest) Validate(validate *validator.Validate) error {
	sr.Subject = core.CleanString(sr.Subject)
	return validate.Struct(sr)
}

func (rr *RecordScoreRequest) Validate(validate *validator.Validate) error {
	return validate.Struct(rr)
}
