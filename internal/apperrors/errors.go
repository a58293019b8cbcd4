package apperrors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrForbidden indicates the caller may not act on the resource.
var ErrForbidden = errors.New("forbidden")

// ErrConflict indicates the resource is in a state that does not allow the operation.
var ErrConflict = errors.New("conflict")

// ErrInternal is returned when a lower layer failed in a way the caller cannot act on.
var ErrInternal = errors.New("internal error")

// ErrMisconfigured marks setup defects (missing user on a resolver, no default import account).
// These terminate the calling operation; they are never user input problems.
var ErrMisconfigured = errors.New("misconfigured")

// ErrArithmetic marks malformed numeric input (zero import amounts, division by zero).
var ErrArithmetic = errors.New("arithmetic error")

// AppError carries an HTTP-ish status code alongside the wrapped cause.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError wraps err with a code and message.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewNotFoundError returns an AppError that matches ErrNotFound.
func NewNotFoundError(message string) *AppError {
	return &AppError{Code: 404, Message: message, Err: ErrNotFound}
}

// MessageBag collects per-field business-rule messages.
type MessageBag map[string][]string

// NewMessageBag returns an empty bag.
func NewMessageBag() MessageBag {
	return MessageBag{}
}

// Add appends a message for field.
func (b MessageBag) Add(field, message string) {
	b[field] = append(b[field], message)
}

// Has reports whether field carries at least one message.
func (b MessageBag) Has(field string) bool {
	return len(b[field]) > 0
}

// First returns the first message for field, or "".
func (b MessageBag) First(field string) string {
	if msgs := b[field]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

// IsEmpty reports whether the bag has no messages.
func (b MessageBag) IsEmpty() bool {
	for _, msgs := range b {
		if len(msgs) > 0 {
			return false
		}
	}
	return true
}

// Merge copies every message of other into b.
func (b MessageBag) Merge(other MessageBag) {
	for field, msgs := range other {
		b[field] = append(b[field], msgs...)
	}
}

// Fields returns the fields carrying messages, sorted.
func (b MessageBag) Fields() []string {
	fields := make([]string, 0, len(b))
	for field, msgs := range b {
		if len(msgs) > 0 {
			fields = append(fields, field)
		}
	}
	sort.Strings(fields)
	return fields
}

// ValidationError is the typed outcome for expected, recoverable business-rule failures.
// Operations returning it have not mutated anything.
type ValidationError struct {
	Messages MessageBag
}

// NewValidationError builds a ValidationError with a single message.
func NewValidationError(field, message string) *ValidationError {
	bag := NewMessageBag()
	bag.Add(field, message)
	return &ValidationError{Messages: bag}
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Messages))
	for _, field := range e.Messages.Fields() {
		parts = append(parts, field+": "+strings.Join(e.Messages[field], "; "))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// BagOrNil returns a ValidationError for a non-empty bag, nil otherwise.
func BagOrNil(bag MessageBag) error {
	if bag.IsEmpty() {
		return nil
	}
	return &ValidationError{Messages: bag}
}

// MessagesOf extracts the MessageBag from err, if err is a ValidationError.
func MessagesOf(err error) (MessageBag, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Messages, true
	}
	return nil, false
}
