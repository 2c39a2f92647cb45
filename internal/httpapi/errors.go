package httpapi

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/joelkehle/startup-valuation/internal/service"
	"github.com/joelkehle/startup-valuation/internal/store"
)

const (
	CodeValidation   = "validation"
	CodeUnauthorized = "unauthorized"
	CodeForbidden    = "forbidden"
	CodeNotFound     = "not_found"
	CodeIntegrity    = "integrity"
	CodeUnavailable  = "unavailable"
	CodeInternal     = "internal"
)

type Error struct {
	Code    string
	Message string
	Status  int
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func statusForCode(code string) int {
	switch code {
	case CodeValidation:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeIntegrity:
		return http.StatusConflict
	case CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func newError(code, message string) *Error {
	return &Error{Code: code, Message: message, Status: statusForCode(code)}
}

// toAPIError maps service and store errors onto API error codes.
func toAPIError(err error) *Error {
	var apiErr *Error
	var verrs validator.ValidationErrors
	switch {
	case errors.As(err, &apiErr):
		return apiErr
	case errors.As(err, &verrs):
		return newError(CodeValidation, validationMessage(verrs))
	case errors.Is(err, service.ErrInvalidStage):
		return newError(CodeValidation, err.Error())
	case errors.Is(err, service.ErrOwnerMissing):
		return newError(CodeUnauthorized, err.Error())
	case errors.Is(err, service.ErrForbidden):
		return newError(CodeForbidden, err.Error())
	case errors.Is(err, store.ErrNotFound):
		return newError(CodeNotFound, err.Error())
	case errors.Is(err, store.ErrIntegrity):
		return newError(CodeIntegrity, err.Error())
	case errors.Is(err, service.ErrNoRenderer):
		return newError(CodeUnavailable, err.Error())
	default:
		return newError(CodeInternal, err.Error())
	}
}

func validationMessage(verrs validator.ValidationErrors) string {
	if len(verrs) == 0 {
		return "invalid request"
	}
	fe := verrs[0]
	if fe.Param() != "" {
		return fmt.Sprintf("%s failed %s=%s", fe.Field(), fe.Tag(), fe.Param())
	}
	return fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
}
