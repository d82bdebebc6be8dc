package domain

import (
	"errors"
	"fmt"
)

// AppError is the base domain error type.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Cause   error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Cause }

// Is matches on Code so errors.Is(err, ErrInsufficientPoints()) works through wrapping.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Error codes.
const (
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeForbidden          = "FORBIDDEN"
	CodeNotFound           = "NOT_FOUND"
	CodeValidation         = "VALIDATION_ERROR"
	CodeConflict           = "CONFLICT"
	CodeInsufficientPoints = "INSUFFICIENT_POINTS"
	CodePrizeUnavailable   = "PRIZE_UNAVAILABLE"
	CodeTournamentFull     = "TOURNAMENT_FULL"
	CodeRegistrationClosed = "REGISTRATION_CLOSED"
	CodeAlreadyJoined      = "ALREADY_JOINED"
	CodeAccountLocked      = "ACCOUNT_LOCKED"
	CodeRateLimited        = "RATE_LIMITED"
	CodeInternal           = "INTERNAL_ERROR"
)

// Standard domain error constructors.

func ErrNotFound(entity, id string) *AppError {
	return &AppError{Code: CodeNotFound, Message: fmt.Sprintf("%s %s not found", entity, id), Status: 404}
}

func ErrConflict(msg string) *AppError {
	return &AppError{Code: CodeConflict, Message: msg, Status: 409}
}

func ErrValidation(msg string) *AppError {
	return &AppError{Code: CodeValidation, Message: msg, Status: 400}
}

func ErrUnauthorized(msg string) *AppError {
	return &AppError{Code: CodeUnauthorized, Message: msg, Status: 401}
}

func ErrForbidden(msg string) *AppError {
	return &AppError{Code: CodeForbidden, Message: msg, Status: 403}
}

func ErrInsufficientPoints() *AppError {
	return &AppError{Code: CodeInsufficientPoints, Message: "insufficient points", Status: 400}
}

func ErrPrizeUnavailable(msg string) *AppError {
	return &AppError{Code: CodePrizeUnavailable, Message: msg, Status: 409}
}

func ErrTournamentFull() *AppError {
	return &AppError{Code: CodeTournamentFull, Message: "tournament is full", Status: 409}
}

func ErrRegistrationClosed() *AppError {
	return &AppError{Code: CodeRegistrationClosed, Message: "tournament registration is closed", Status: 409}
}

func ErrAlreadyJoined() *AppError {
	return &AppError{Code: CodeAlreadyJoined, Message: "already joined this tournament", Status: 409}
}

func ErrAccountLocked(msg string) *AppError {
	return &AppError{Code: CodeAccountLocked, Message: msg, Status: 429}
}

func ErrRateLimited(msg string) *AppError {
	return &AppError{Code: CodeRateLimited, Message: msg, Status: 429}
}

func ErrInternal(msg string, cause error) *AppError {
	return &AppError{Code: CodeInternal, Message: msg, Status: 500, Cause: cause}
}

// AsAppError returns the first AppError in err's chain, or nil.
func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// Classify keeps domain errors as they are and turns anything else into INTERNAL_ERROR.
func Classify(err error, msg string) error {
	if err == nil {
		return nil
	}
	if AsAppError(err) != nil {
		return err
	}
	return ErrInternal(msg, err)
}
