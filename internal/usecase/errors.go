package usecase

import (
	"errors"
	"net/http"
	"time"

	"github.com/xavierca1/lead-roulette/internal/entity"
)

// DomainError é recusa de regra de negócio: o cliente pode corrigir ou esperar.
type DomainError struct {
	Code       string
	Message    string
	Status     int
	RetryAfter time.Duration
	Details    any
	Err        error
}

func (e *DomainError) Error() string {
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

func IsDomainError(err error) bool {
	var de *DomainError
	return errors.As(err, &de)
}

// TechnicalError é falha nossa ou de colaborador (banco, fila, CRM).
type TechnicalError struct {
	Code    string
	Message string
	Err     error
}

func (e *TechnicalError) Error() string {
	return e.Message
}

func (e *TechnicalError) Unwrap() error {
	return e.Err
}

func IsTechnicalError(err error) bool {
	var te *TechnicalError
	return errors.As(err, &te)
}

// Temporary indica que a mesma requisição pode dar certo mais tarde.
func (e *TechnicalError) Temporary() bool {
	return e.Code == CodeTemporaryFailure
}

const (
	CodeValidation       = "VALIDATION_ERROR"
	CodeProofRequired    = "PROOF_REQUIRED"
	CodeOutOfRange       = "OUT_OF_RANGE"
	CodeInvalidCode      = "INVALID_CODE"
	CodeAlreadyPresent   = "ALREADY_PRESENT"
	CodeNotPresent       = "NOT_PRESENT"
	CodeNotAssigned      = "NOT_ASSIGNED"
	CodeAlreadyCaptured  = "ALREADY_CAPTURED"
	CodeRateLimited      = "RATE_LIMIT_EXCEEDED"
	CodeStoreNotFound    = "STORE_NOT_FOUND"
	CodeLeadNotFound     = "LEAD_NOT_FOUND"
	CodeInvalidTier      = "INVALID_TIER"
	CodeTemporaryFailure = "TEMPORARY_FAILURE"
	CodeInternal         = "INTERNAL_ERROR"
)

// FromEngineError traduz os erros tipados do engine para o vocabulário da API.
func FromEngineError(err error) error {
	if err == nil {
		return nil
	}

	var (
		outOfRange *entity.OutOfRangeError
		badCode    *entity.InvalidCodeError
		present    *entity.AlreadyPresentError
		notPresent *entity.NotPresentError
		notAssign  *entity.NotAssignedError
		captured   *entity.AlreadyCapturedError
		limited    *entity.RateLimitExceededError
		transient  *entity.TransientError
	)

	switch {
	case errors.As(err, &limited):
		return &DomainError{Code: CodeRateLimited, Message: err.Error(), Status: http.StatusTooManyRequests, RetryAfter: limited.RetryAfter, Err: err}
	case errors.As(err, &outOfRange):
		return &DomainError{Code: CodeOutOfRange, Message: err.Error(), Status: http.StatusForbidden, Details: map[string]float64{"distance": outOfRange.Distance, "radius": outOfRange.Radius}, Err: err}
	case errors.As(err, &badCode):
		return &DomainError{Code: CodeInvalidCode, Message: err.Error(), Status: http.StatusForbidden, Err: err}
	case errors.Is(err, entity.ErrCheckinProofNeeded):
		return &DomainError{Code: CodeProofRequired, Message: err.Error(), Status: http.StatusBadRequest, Err: err}
	case errors.As(err, &present):
		return &DomainError{Code: CodeAlreadyPresent, Message: err.Error(), Status: http.StatusConflict, Err: err}
	case errors.As(err, &notPresent):
		return &DomainError{Code: CodeNotPresent, Message: err.Error(), Status: http.StatusConflict, Err: err}
	case errors.As(err, &notAssign):
		return &DomainError{Code: CodeNotAssigned, Message: err.Error(), Status: http.StatusConflict, Err: err}
	case errors.As(err, &captured):
		return &DomainError{Code: CodeAlreadyCaptured, Message: err.Error(), Status: http.StatusConflict, Err: err}
	case errors.Is(err, entity.ErrStoreNotFound):
		return &DomainError{Code: CodeStoreNotFound, Message: err.Error(), Status: http.StatusNotFound, Err: err}
	case errors.Is(err, entity.ErrLeadNotFound):
		return &DomainError{Code: CodeLeadNotFound, Message: err.Error(), Status: http.StatusNotFound, Err: err}
	case errors.Is(err, entity.ErrInvalidTier):
		return &DomainError{Code: CodeInvalidTier, Message: err.Error(), Status: http.StatusForbidden, Err: err}
	case errors.As(err, &transient):
		return &TechnicalError{Code: CodeTemporaryFailure, Message: "serviço temporariamente indisponível, tente novamente", Err: err}
	}

	var de *DomainError
	var te *TechnicalError
	if errors.As(err, &de) || errors.As(err, &te) {
		return err
	}
	return &TechnicalError{Code: CodeInternal, Message: "erro interno", Err: err}
}
