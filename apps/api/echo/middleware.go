package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/legacybuilder/backend/core/student"
)

// ctxStudentMiddleware restricts detail endpoints to the authenticated
// student's own record and stashes it in the context.
func ctxStudentMiddleware(svc student.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			ctxStd, err := getContextStudent(ctx, svc)
			if err != nil {
				return errors.Wrap(err, "getting context student")
			}

			if ctx.Param("id") == ctxStd.ID {
				ctx.Set("object", ctxStd)
				return next(ctx)
			}
			return errHttpNotFound
		}
	}
}
