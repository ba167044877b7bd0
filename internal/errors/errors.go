package errors

import (
	"errors"
	"fmt"
)

type ValidationDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ValidationError struct {
	Message string
	Details []ValidationDetail
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(message string, details ...ValidationDetail) *ValidationError {
	return &ValidationError{
		Message: message,
		Details: details,
	}
}

func IsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	return e.Message
}

func NewNotFoundError(message string) *NotFoundError {
	return &NotFoundError{Message: message}
}

func IsNotFoundError(err error) (*NotFoundError, bool) {
	var nfe *NotFoundError
	if errors.As(err, &nfe) {
		return nfe, true
	}
	return nil, false
}

// ConflictError reports a status compare-and-set that lost: the record
// exists but is no longer in the expected state.
type ConflictError struct {
	Message       string
	CurrentStatus string
}

func (e *ConflictError) Error() string {
	return e.Message
}

func NewConflictError(message string, currentStatus string) *ConflictError {
	return &ConflictError{
		Message:       message,
		CurrentStatus: currentStatus,
	}
}

func IsConflictError(err error) (*ConflictError, bool) {
	var ce *ConflictError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

type ForbiddenError struct {
	Message string
}

func (e *ForbiddenError) Error() string {
	return e.Message
}

func NewForbiddenError(message string) *ForbiddenError {
	return &ForbiddenError{Message: message}
}

func IsForbiddenError(err error) (*ForbiddenError, bool) {
	var fe *ForbiddenError
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

// StorageError means the quote store medium could not be read or written.
type StorageError struct {
	Op    string
	Cause error
}

func (e *StorageError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("storage %s: %v", e.Op, e.Cause)
	}
	return "storage " + e.Op
}

func (e *StorageError) Unwrap() error {
	return e.Cause
}

func NewStorageError(op string, cause error) *StorageError {
	return &StorageError{
		Op:    op,
		Cause: cause,
	}
}

func IsStorageError(err error) (*StorageError, bool) {
	var se *StorageError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// DeliveryError is returned once the notification gateway has exhausted its
// retries. Code, Response and ResponseCode describe the last failed attempt.
type DeliveryError struct {
	Attempts     int
	Code         string
	Response     string
	ResponseCode int
	Cause        error
}

func (e *DeliveryError) Error() string {
	msg := fmt.Sprintf("delivery failed after %d attempt(s)", e.Attempts)
	if e.Code != "" {
		msg += " [" + e.Code + "]"
	}
	if e.ResponseCode != 0 {
		msg += fmt.Sprintf(" %d %s", e.ResponseCode, e.Response)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *DeliveryError) Unwrap() error {
	return e.Cause
}

func IsDeliveryError(err error) (*DeliveryError, bool) {
	var de *DeliveryError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// NotificationFailedError is returned by intake when the operator copy could
// not be delivered. DevisNumber is kept so the lead can be reconciled by hand.
type NotificationFailedError struct {
	DevisNumber string
	Cause       error
}

func (e *NotificationFailedError) Error() string {
	return fmt.Sprintf("devis %s: operator notification failed: %v", e.DevisNumber, e.Cause)
}

func (e *NotificationFailedError) Unwrap() error {
	return e.Cause
}

func NewNotificationFailedError(devisNumber string, cause error) *NotificationFailedError {
	return &NotificationFailedError{
		DevisNumber: devisNumber,
		Cause:       cause,
	}
}

func IsNotificationFailedError(err error) (*NotificationFailedError, bool) {
	var nfe *NotificationFailedError
	if errors.As(err, &nfe) {
		return nfe, true
	}
	return nil, false
}

type InternalError struct {
	Message string
	Cause   error
}

func (e *InternalError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *InternalError) Unwrap() error {
	return e.Cause
}

func NewInternalError(message string, cause error) *InternalError {
	return &InternalError{
		Message: message,
		Cause:   cause,
	}
}
