package apierror

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Kind classifies where an error came from. Handlers only look at Code(),
// services use Kind() to decide whether an error is fatal to a request.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConfiguration
	KindDelivery
	KindPersistence
	KindAuthorization
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConfiguration:
		return "configuration"
	case KindDelivery:
		return "delivery"
	case KindPersistence:
		return "persistence"
	case KindAuthorization:
		return "authorization"
	case KindNotFound:
		return "not_found"
	default:
		return "internal"
	}
}

type ErrorResponse interface {
	error
	Code() int
	Kind() Kind
}

type SimpleError struct {
	code    int
	kind    Kind
	Message string
}

func (e *SimpleError) Error() string { return e.Message }
func (e *SimpleError) Code() int     { return e.code }
func (e *SimpleError) Kind() Kind    { return e.kind }

// MarshalJSON renders the body every failing endpoint returns.
func (e *SimpleError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}{Success: false, Error: e.Message})
}

func New(code int, kind Kind, message string) *SimpleError {
	return &SimpleError{code: code, kind: kind, Message: message}
}

func NewSimple(code int, message string) *SimpleError {
	return New(code, KindInternal, message)
}

func NewValidation(message string) *SimpleError {
	return New(http.StatusBadRequest, KindValidation, message)
}

func NewConfiguration(message string) *SimpleError {
	return New(http.StatusInternalServerError, KindConfiguration, message)
}

func NewDelivery(message string) *SimpleError {
	if strings.TrimSpace(message) == "" {
		message = "Failed to send message"
	}
	return New(http.StatusInternalServerError, KindDelivery, message)
}

func NewPersistence(err error) *SimpleError {
	return New(http.StatusInternalServerError, KindPersistence, err.Error())
}

func NewMissingParamError(param string) *SimpleError {
	return NewValidation(fmt.Sprintf("Missing required parameter: %s", param))
}

var (
	InternalServerError = NewSimple(http.StatusInternalServerError, "Internal server error")
	MalformedBodyError  = NewValidation("Malformed request body")

	InvalidSubmissionError = NewValidation("Invalid submission. Please fill required fields and agree.")

	AdminSecretNotConfiguredError = NewConfiguration("ADMIN_SECRET not configured on server")
	UnauthorizedError             = New(http.StatusUnauthorized, KindAuthorization, "Unauthorized")

	DatabaseNotFoundError = New(http.StatusNotFound, KindNotFound, "Database file not found")

	TooManyRequestsError = NewSimple(http.StatusTooManyRequests, "Too many requests, please try again later.")
)

// FromValidationError turns a validator failure into a 400. The public
// message stays generic; the offending fields are kept for logs.
func FromValidationError(err error) ErrorResponse {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return InvalidSubmissionError
	}

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
	}
	return &FieldError{SimpleError: *InvalidSubmissionError, Fields: fields}
}

// FieldError is a validation failure that remembers which fields failed.
type FieldError struct {
	SimpleError
	Fields []string
}

func (e *FieldError) MarshalJSON() ([]byte, error) {
	return e.SimpleError.MarshalJSON()
}
