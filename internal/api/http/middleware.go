package http

import (
	"context"
	"errors"
	"runtime/debug"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/incident-intake/internal/api/dto"
	"github.com/spec-kit/incident-intake/internal/observability"
	apperrors "github.com/spec-kit/incident-intake/pkg/util"
)

// CORS values sent on every response.
const (
	corsAllowOrigin  = "*"
	corsAllowMethods = "GET, POST, OPTIONS"
	corsAllowHeaders = "Content-Type"
)

// RegisterMiddlewares attaches global middlewares such as CORS, error handling and logging.
func RegisterMiddlewares(app *fiber.App, logger *zap.Logger, metrics *observability.Metrics, timeout time.Duration) {
	app.Use(corsMiddleware())
	if timeout > 0 {
		app.Use(requestTimeoutMiddleware(timeout))
	}
	app.Use(observability.RequestLogger(logger, metrics))
	app.Use(errorHandlingMiddleware(logger, metrics))
}

// corsMiddleware answers every OPTIONS request itself with 200 and no body.
func corsMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderAccessControlAllowOrigin, corsAllowOrigin)
		c.Set(fiber.HeaderAccessControlAllowMethods, corsAllowMethods)
		c.Set(fiber.HeaderAccessControlAllowHeaders, corsAllowHeaders)

		if c.Method() == fiber.MethodOptions {
			c.Status(fiber.StatusOK)
			return nil
		}
		return c.Next()
	}
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
				err = apperrors.NewInternalError(nil)
			}
			if err != nil {
				domainErr := toDomainError(err)
				metrics.RecordError(observability.RouteLabel(c, domainErr.HTTPStatus), c.Method(), domainErr.Code)
				if domainErr.HTTPStatus >= fiber.StatusInternalServerError {
					logger.Error("request failed", zap.Error(domainErr))
				} else {
					logger.Debug("request rejected", zap.String("code", domainErr.Code), zap.Error(domainErr))
				}
				err = writeError(c, domainErr)
			}
		}()
		return c.Next()
	}
}

// ErrorHandler is the fiber fallback for errors raised outside the middleware chain.
func ErrorHandler(c *fiber.Ctx, err error) error {
	return writeError(c, toDomainError(err))
}

func writeError(c *fiber.Ctx, domainErr *apperrors.DomainError) error {
	return c.Status(domainErr.HTTPStatus).JSON(dto.ErrorResponse{
		Success: false,
		Message: domainErr.Message,
	})
}

func toDomainError(err error) *apperrors.DomainError {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		switch fiberErr.Code {
		case fiber.StatusNotFound:
			return apperrors.ToDomainError(apperrors.NewNotFound(fiberErr.Message))
		case fiber.StatusMethodNotAllowed:
			return apperrors.ToDomainError(apperrors.NewMethodNotAllowed(fiberErr.Message))
		default:
			return apperrors.NewDomainError("HTTP_ERROR", fiberErr.Message, fiberErr.Code)
		}
	}
	return apperrors.ToDomainError(err)
}
