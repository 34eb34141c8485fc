package serverutils

import (
	"errors"

	"swappay-be/internal/pkg/apperror"
	"swappay-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware turns any error returned by a handler into a BaseResponse.
// Internal and unknown errors are logged, since their cause never reaches the client.
func ErrorHandlerMiddleware(log logger.ILogger) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}
		return writeError(ctx, err, log)
	}
}

func logFailure(log logger.ILogger, ctx *fiber.Ctx, err error) {
	log.Error("HTTP", "Request failed", map[string]interface{}{
		"method": ctx.Method(),
		"path":   ctx.Path(),
		"error":  err.Error(),
	})
}

// writeError maps err onto a status code. Unknown errors become a generic 500.
func writeError(ctx *fiber.Ctx, err error, log logger.ILogger) error {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		if appErr.Kind == apperror.KindInternal {
			logFailure(log, ctx, err)
		}
		status := apperror.HTTPStatus(appErr.Kind)
		return ctx.Status(status).JSON(ErrorResponse(status, string(appErr.Kind), appErr.Message))
	}

	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return ctx.Status(fiber.StatusBadRequest).JSON(&BaseResponse[map[string]string]{
			Success:   false,
			Code:      fiber.StatusBadRequest,
			Message:   "Validation failed",
			ErrorKind: string(apperror.KindValidationFailed),
			Data:      validationErr.Fields,
		})
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		kind := ""
		if fiberErr.Code == fiber.StatusBadRequest {
			kind = string(apperror.KindValidationFailed)
		}
		return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Code, kind, fiberErr.Message))
	}

	logFailure(log, ctx, err)
	return ctx.Status(fiber.StatusInternalServerError).
		JSON(ErrorResponse(fiber.StatusInternalServerError, string(apperror.KindInternal), "Internal server error"))
}
