package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/legacybuilder/backend/core"
	"github.com/legacybuilder/backend/core/exam"
)

var errQuestionBankDown = echo.NewHTTPError(http.StatusBadGateway, "question service unavailable")

type examApi struct {
	svc exam.Service
}

func registerExamAPI(g *echo.Group, deps ServerDeps) {
	api := examApi{svc: deps.ExamSvc}

	g.GET("/fetch-questions/:year/:subject", api.yearQuestions)
	g.GET("/mock-questions/:subject", api.mockExam)
}

func (api *examApi) yearQuestions(ctx echo.Context) error {
	year, err := strconv.Atoi(ctx.Param("year"))
	if err != nil {
		return core.NewValidationError(nil, core.FieldError{Field: "year", Error: "invalid year"})
	}

	doc, err := api.svc.YearQuestions(ctx.Request().Context(), year, ctx.Param("subject"))
	if err != nil {
		switch errors.Cause(err) {
		case exam.ErrYearNotFound:
			return echo.NewHTTPError(http.StatusNotFound, exam.ErrYearNotFound.Error())
		case exam.ErrUpstream:
			return errQuestionBankDown
		}
		return errors.Wrap(err, "fetching year questions")
	}

	return ctx.JSON(http.StatusOK, YearQuestionsResponse{
		Success:        true,
		Data:           doc.Questions,
		TotalQuestions: len(doc.Questions),
		Year:           doc.Year,
	})
}

func (api *examApi) mockExam(ctx echo.Context) error {
	paper, err := api.svc.MockExam(ctx.Request().Context(), ctx.Param("subject"))
	if err != nil {
		if errors.Cause(err) == exam.ErrNoYears {
			return echo.NewHTTPError(http.StatusNotFound, exam.ErrNoYears.Error())
		}
		return errors.Wrap(err, "assembling mock exam")
	}

	return ctx.JSON(http.StatusOK, MockExamResponse{
		Success:        true,
		Data:           paper.Questions,
		TotalQuestions: len(paper.Questions),
		Years:          paper.Years,
	})
}

type (
	YearQuestionsResponse struct {
		Success        bool            `json:"success"`
		Data           []exam.Question `json:"data"`
		TotalQuestions int             `json:"totalQuestions"`
		Year           int             `json:"year"`
	}

	MockExamResponse struct {
		Success        bool            `json:"success"`
		Data           []exam.Question `json:"data"`
		TotalQuestions int             `json:"totalQuestions"`
		Years          []int           `json:"years"`
	}
)
