package http

import (
	"errors"
	"net/http"

	"hako/internal/core/domain/services"
	"hako/internal/pkg/errs"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// statusOf maps an application error to its HTTP status.
func statusOf(err error) int {
	switch {
	case errors.Is(err, errs.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, errs.ErrAccessDenied):
		return http.StatusForbidden
	case errors.Is(err, errs.ErrObjectNotFound):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrRuleViolated):
		return http.StatusUnprocessableEntity
	case errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValueIsOutOfRange):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// errorBody builds the response body of err. Internal errors never leak their message.
func errorBody(status int, err error) Error {
	body := Error{Code: status, Message: err.Error()}
	if status == http.StatusInternalServerError {
		body.Message = "internal error"
		return body
	}

	var conflict *services.LockerConflictError
	if errors.As(err, &conflict) {
		body.Lockers = conflict.Lockers
	}
	var rule *errs.RuleViolatedError
	if errors.As(err, &rule) {
		body.Rule = rule.Rule
	}
	return body
}

func (s *Server) fail(ctx echo.Context, operation string, err error) error {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed",
			zap.String("operation", operation),
			zap.String("path", ctx.Request().URL.Path),
			zap.Error(err),
		)
	} else {
		s.logger.Debug("request rejected",
			zap.String("operation", operation),
			zap.Int("status", status),
			zap.Error(err),
		)
	}
	return ctx.JSON(status, errorBody(status, err))
}

func badRequest(ctx echo.Context, message string) error {
	return ctx.JSON(http.StatusBadRequest, Error{Code: http.StatusBadRequest, Message: message})
}
