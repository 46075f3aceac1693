package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/tsongo/darasa/core"
	"github.com/tsongo/darasa/core/account"
	"github.com/tsongo/darasa/core/assignment"
	"github.com/tsongo/darasa/core/catalog"
	"github.com/tsongo/darasa/core/resource"
)

var (
	errUnauthorized  = echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	errHttpForbidden = echo.NewHTTPError(http.StatusForbidden, "permission denied")
	errHttpNotFound  = echo.NewHTTPError(http.StatusNotFound, "not found")
)

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr == middleware.ErrJWTMissing {
				code = http.StatusUnauthorized
				message = origErr.Message
				break
			}
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = origErr.Message
		case validator.ValidationErrors:
			fldErrs := make(map[string]string, len(origErr))
			for _, vErr := range origErr {
				fldErrs[vErr.Field()] = vErr.Translate(core.Translator)
			}
			code = http.StatusBadRequest
			message = fldErrs
		case *core.ValidationError:
			if origErr.Fields != nil {
				fldErrs := make(map[string]string, len(origErr.Fields))
				for _, fErr := range origErr.Fields {
					fldErrs[fErr.Field] = fErr.Error
				}
				message = fldErrs
			} else {
				message = origErr.Error()
			}
			code = http.StatusBadRequest
		case *core.PartialFailure:
			// a physical write landed but a dependent one did not;
			// the stored data needs reconciliation
			code = http.StatusInternalServerError
			message = "incomplete write; data reconciliation needed"
			logger.Error(origErr.Error(), origErr)
		default:
			code, message = mapDomainError(origErr)
			if code == http.StatusInternalServerError {
				var acct account.Account
				if claims, cErr := getContextClaims(ctx); cErr == nil {
					acct.ID = claims.Subject
					acct.Handle = claims.Handle
				}
				logger.Error(message.(string), errors.Wrap(err, message.(string)), acct)

				// shutting down...
				if core.IsShutdown(err) {
					signalShutdown()
				}
			}
		}

		if ctx.Echo().Debug {
			message = err.Error()
		} else if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}

func mapDomainError(err error) (int, interface{}) {
	switch err {
	case core.ErrNotFound, account.ErrProfileMissing, assignment.ErrSubmissionNotFound:
		return http.StatusNotFound, err.Error()
	case account.ErrInvalidCredentials:
		return http.StatusUnauthorized, err.Error()
	case account.ErrDuplicateHandle,
		catalog.ErrAlreadyEnrolled,
		catalog.ErrNotEnrolled,
		resource.ErrDuplicateName:
		return http.StatusConflict, err.Error()
	case assignment.ErrInvalidScore:
		return http.StatusBadRequest, err.Error()
	}
	// any other error is a server error; ErrCounterUnderflow lands here
	// since it means the stored counter is corrupt
	return http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)
}
