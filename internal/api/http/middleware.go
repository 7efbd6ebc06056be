package http

import (
	"context"
	"errors"
	"runtime/debug"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/tablepos/internal/api/dto"
	"github.com/spec-kit/tablepos/internal/observability"
	"github.com/spec-kit/tablepos/internal/repository"
	"github.com/spec-kit/tablepos/internal/service"
)

// RegisterMiddlewares attaches global middlewares such as error handling and logging.
func RegisterMiddlewares(app *fiber.App, logger *zap.Logger, metrics *observability.Metrics, timeout time.Duration) {
	app.Use(observability.RequestLogger(logger, metrics))
	if timeout > 0 {
		app.Use(requestTimeoutMiddleware(timeout))
	}
	app.Use(errorHandlingMiddleware(logger, metrics))
}

func requestTimeoutMiddleware(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

func errorHandlingMiddleware(logger *zap.Logger, metrics *observability.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
				err = errors.New("panic")
			}
			if err != nil {
				status, body := toErrorBody(err)
				metrics.RecordError(c.Path(), c.Method(), body.Error.Code)
				if status >= fiber.StatusInternalServerError {
					logger.Error("request failed", zap.Error(err))
				}
				c.Status(status)
				_ = c.JSON(body)
				err = nil
			}
		}()
		return c.Next()
	}
}

func toErrorBody(err error) (int, dto.ErrorBody) {
	var (
		fiberErr *fiber.Error
		validErr *service.ValidationError
	)
	switch {
	case errors.As(err, &fiberErr):
		return fiberErr.Code, errorBody(codeForStatus(fiberErr.Code), fiberErr.Message)
	case errors.As(err, &validErr):
		return fiber.StatusBadRequest, errorBody("VALIDATION_ERROR", validErr.Message)
	case errors.Is(err, repository.ErrNotFound):
		return fiber.StatusNotFound, errorBody("NOT_FOUND", "resource not found")
	case errors.Is(err, repository.ErrDuplicate):
		return fiber.StatusConflict, errorBody("CONFLICT", "resource already exists")
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrInvalidToken):
		return fiber.StatusUnauthorized, errorBody("UNAUTHORIZED", err.Error())
	case errors.Is(err, service.ErrAccountDisabled):
		return fiber.StatusForbidden, errorBody("FORBIDDEN", err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return fiber.StatusGatewayTimeout, errorBody("TIMEOUT", "request timed out")
	default:
		return fiber.StatusInternalServerError, errorBody("INTERNAL", "internal server error")
	}
}

func codeForStatus(status int) string {
	switch status {
	case fiber.StatusBadRequest:
		return "BAD_REQUEST"
	case fiber.StatusUnauthorized:
		return "UNAUTHORIZED"
	case fiber.StatusForbidden:
		return "FORBIDDEN"
	case fiber.StatusNotFound:
		return "NOT_FOUND"
	case fiber.StatusConflict:
		return "CONFLICT"
	}
	if status >= fiber.StatusInternalServerError {
		return "INTERNAL"
	}
	return "REQUEST_FAILED"
}

func errorBody(code, message string) dto.ErrorBody {
	return dto.ErrorBody{Error: dto.ErrorDetail{Code: code, Message: message}}
}
