package usecase

import "errors"

const (
	CodeValidation           = "VALIDATION_ERROR"
	CodeLeadNotFound         = "LEAD_NOT_FOUND"
	CodeLeadAlreadyExists    = "LEAD_ALREADY_EXISTS"
	CodeCompanyNotFound      = "COMPANY_NOT_FOUND"
	CodeCompanyAlreadyExists = "COMPANY_ALREADY_EXISTS"
	CodeRecalculationRunning = "RECALCULATION_IN_PROGRESS"
	CodeDatabase             = "DATABASE_ERROR"
	CodeLock                 = "LOCK_ERROR"
	CodeQueue                = "QUEUE_ERROR"
)

// DomainError is a caller mistake or a business rule refusal (4xx).
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func IsDomainError(err error) bool {
	var de *DomainError
	return errors.As(err, &de)
}

// TechnicalError is an infrastructure failure (5xx).
type TechnicalError struct {
	Code    string
	Message string
	Err     error
}

func (e *TechnicalError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *TechnicalError) Unwrap() error {
	return e.Err
}

func IsTechnicalError(err error) bool {
	var te *TechnicalError
	return errors.As(err, &te)
}

func databaseError(msg string, err error) error {
	return &TechnicalError{Code: CodeDatabase, Message: msg, Err: err}
}
