package accounts

import (
	stderrors "errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
)

type errorPayload struct {
	Code     int            `json:"code"`
	TextCode string         `json:"text_code,omitempty"`
	Message  string         `json:"message"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// ErrorHandler renders errors as JSON. Rich errors keep their message and
// metadata, anything else is reported as an internal error without detail.
func ErrorHandler(logger Logger) fiber.ErrorHandler {
	logger = normalizeLogger(logger)

	return func(c *fiber.Ctx, err error) error {
		var fiberErr *fiber.Error
		if stderrors.As(err, &fiberErr) {
			return c.Status(fiberErr.Code).JSON(fiber.Map{
				"error": errorPayload{Code: fiberErr.Code, Message: fiberErr.Message},
			})
		}

		var richErr *errors.Error
		if !errors.As(err, &richErr) {
			richErr = errors.Wrap(err, errors.CategoryInternal, "An unexpected server error occurred").
				WithCode(errors.CodeInternal)
		}

		status := StatusFor(richErr)
		if status >= http.StatusInternalServerError {
			logger.Error("%s %s failed: %v details=%s", c.Method(), c.Path(), err, print.MaybePrettyJSON(richErr.Metadata))
			return c.Status(status).JSON(fiber.Map{
				"error": errorPayload{Code: status, Message: "internal server error"},
			})
		}

		logger.Debug("%s %s rejected: %s category=%v details=%s",
			c.Method(), c.Path(), richErr.Message, richErr.Category, print.MaybePrettyJSON(richErr.Metadata))

		return c.Status(status).JSON(fiber.Map{
			"error": errorPayload{
				Code:     status,
				TextCode: richErr.TextCode,
				Message:  richErr.Message,
				Metadata: richErr.Metadata,
			},
		})
	}
}

// StatusFor picks the HTTP status for a rich error, preferring its code
func StatusFor(richErr *errors.Error) int {
	if richErr == nil {
		return http.StatusInternalServerError
	}
	if richErr.Code >= 400 && richErr.Code < 600 {
		return richErr.Code
	}

	switch richErr.Category {
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
	case errors.CategoryOperation:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
