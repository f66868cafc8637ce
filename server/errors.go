package server

import (
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"

	"github.com/streamhub/streamhub/auth"
)

// ErrNotOwner guards every mutation against users that did not create
// the resource.
var ErrNotOwner = errors.New("you do not own this resource", errors.CategoryAuthz).
	WithCode(errors.CodeForbidden).
	WithTextCode("NOT_OWNER")

// ErrorHandler turns any error a handler returns into the JSON error
// envelope. Rich errors keep their category's status; everything else
// is a 500 with a generic message.
func ErrorHandler(logger auth.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status, message, details := classify(err)

		if status >= http.StatusInternalServerError {
			logger.Error("request failed: %s %s: %v", c.Method(), c.Path(), err)

			var richErr *errors.Error
			if errors.As(err, &richErr) && len(richErr.Metadata) > 0 {
				logger.Error("error metadata: %s", print.MaybePrettyJSON(richErr.Metadata))
			}
		}

		return c.Status(status).JSON(ErrorResponse{
			StatusCode: status,
			Message:    message,
			Success:    false,
			Errors:     details,
		})
	}
}

func classify(err error) (int, string, []string) {
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		details := make([]string, 0, len(verrs))
		for field, ferr := range verrs {
			details = append(details, field+": "+ferr.Error())
		}
		return http.StatusBadRequest, "request validation failed", details
	}

	var ferr *fiber.Error
	if errors.As(err, &ferr) {
		return ferr.Code, ferr.Message, []string{}
	}

	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		richErr = errors.Wrap(err, errors.CategoryInternal, "An unexpected server error occurred").
			WithCode(errors.CodeInternal)
	}

	return statusFor(richErr), richErr.Message, []string{}
}

func statusFor(err *errors.Error) int {
	switch err.Category {
	case errors.CategoryValidation, errors.CategoryBadInput:
		return http.StatusBadRequest
	case errors.CategoryAuth:
		return http.StatusUnauthorized
	case errors.CategoryAuthz:
		return http.StatusForbidden
	case errors.CategoryNotFound:
		return http.StatusNotFound
	case errors.CategoryConflict:
		return http.StatusConflict
	case errors.CategoryRateLimit:
		return http.StatusTooManyRequests
	}

	if err.Code > 0 {
		return err.Code
	}

	return http.StatusInternalServerError
}
