package usecase

import (
	"errors"
	"fmt"
)

type ErrorKind int

const (
	KindValidation ErrorKind = iota + 1
	KindConflict
	KindNotFound
)

const (
	CodeValidation    = "VALIDATION_ERROR"
	CodeDuplicateData = "DUPLICATE_DATA"
	CodeEmailExists   = "EMAIL_ALREADY_EXISTS"
	CodeLeadNotFound  = "LEAD_NOT_FOUND"
	CodeInternal      = "INTERNAL_SERVER_ERROR"
	CodeDatabase      = "DATABASE_ERROR"
)

// DomainError é um erro esperado, devolvido com todos os detalhes para quem chamou.
type DomainError struct {
	Kind    ErrorKind
	Code    string
	Message string
	Fields  []ValidationError
	Data    any
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

func IsDomainError(err error) bool {
	var de *DomainError
	return errors.As(err, &de)
}

func AsDomainError(err error) (*DomainError, bool) {
	var de *DomainError
	ok := errors.As(err, &de)
	return de, ok
}

// TechnicalError é falha inesperada (banco fora, bug). A mensagem não vai para o cliente em produção.
type TechnicalError struct {
	Code    string
	Message string
	Err     error
}

func (e *TechnicalError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
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

func newValidationError(fields []ValidationError) *DomainError {
	return &DomainError{
		Kind:    KindValidation,
		Code:    CodeValidation,
		Message: "Dados inválidos",
		Fields:  fields,
	}
}

func newNotFoundError(id string) *DomainError {
	return &DomainError{
		Kind:    KindNotFound,
		Code:    CodeLeadNotFound,
		Message: "Lead não encontrado",
		Data:    map[string]string{"id": id},
	}
}

func newDatabaseError(op string, err error) *TechnicalError {
	return &TechnicalError{
		Code:    CodeDatabase,
		Message: "falha ao " + op,
		Err:     err,
	}
}
