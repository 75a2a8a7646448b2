package httpinterface

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
	"github.com/stellrflow/anchord/internal/core/application"
)

func requestLogger(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()

	status := c.Response().StatusCode()
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		status = fiberErr.Code
	}

	entry := log.WithFields(log.Fields{
		"method":  c.Method(),
		"path":    c.Path(),
		"status":  status,
		"latency": time.Since(start).String(),
	})
	if status >= fiber.StatusInternalServerError {
		entry.Warn("http: request failed")
	} else {
		entry.Debug("http: request served")
	}
	return err
}

// errorHandler renders every error returned by handlers and middlewares with
// the same shape of a failed ramp result.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "internal error"
	kind := application.KindSettlementFailure

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code = fiberErr.Code
		message = fiberErr.Message
		switch {
		case code == fiber.StatusNotFound:
			kind = application.KindNotFound
		case code < fiber.StatusInternalServerError:
			kind = application.KindValidationFailure
		}
	} else {
		log.WithError(err).Warn("http: unexpected error")
	}

	return c.Status(code).JSON(errorResponse{
		Success: false,
		Message: message,
		Kind:    string(kind),
	})
}
