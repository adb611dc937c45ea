// Package apperr defines the error kinds shared by the engines, the data
// facade and the HTTP handlers.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind groups errors by how a caller should react to them.
type Kind int

const (
	Internal Kind = iota
	Config
	Validation
	Authorization
	Conflict
	NotFound
	Transient
)

func (k Kind) String() string {
	switch k {
	case Config:
		return "config"
	case Validation:
		return "validation"
	case Authorization:
		return "authorization"
	case Conflict:
		return "conflict"
	case NotFound:
		return "not_found"
	case Transient:
		return "transient"
	default:
		return "internal"
	}
}

// Error is a classified application error. Two errors are considered equal by
// errors.Is when their codes match, so sentinels survive wrapping and With.
type Error struct {
	Kind Kind
	Code string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// With returns a copy carrying a more specific message.
func (e *Error) With(format string, args ...any) *Error {
	cp := *e
	cp.Msg = fmt.Sprintf(format, args...)
	return &cp
}

// Wrap returns a copy that wraps cause.
func (e *Error) Wrap(cause error) *Error {
	cp := *e
	cp.Err = cause
	return &cp
}

func New(kind Kind, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, Msg: msg}
}

var (
	ErrConfig        = New(Config, "config", "invalid configuration")
	ErrNotConfigured = New(Config, "not_configured", "backend is not configured")

	ErrInvalidInput         = New(Validation, "invalid_input", "invalid input")
	ErrInvalidGigKind       = New(Validation, "invalid_gig_kind", "bids can only be placed on request gigs")
	ErrSelfBidding          = New(Validation, "self_bidding", "you cannot bid on your own gig")
	ErrInvalidAmount        = New(Validation, "invalid_amount", "amount must be positive")
	ErrInvalidDeliveryDays  = New(Validation, "invalid_delivery_days", "delivery days must be positive")
	ErrSelfPurchase         = New(Validation, "self_purchase", "you cannot order your own gig")
	ErrGigInactive          = New(Validation, "gig_inactive", "gig is not active")
	ErrInvalidPaymentMethod = New(Validation, "invalid_payment_method", "unsupported payment method")
	ErrInsufficientFunds    = New(Validation, "insufficient_funds", "insufficient wallet balance")
	ErrInvalidRating        = New(Validation, "invalid_rating", "rating must be between 1 and 5")
	ErrInvalidEmailDomain   = New(Validation, "invalid_email_domain", "please use your college email address (.edu)")

	ErrUnauthorized = New(Authorization, "unauthorized", "not allowed")

	ErrNotPending      = New(Conflict, "not_pending", "not pending")
	ErrAlreadyTerminal = New(Conflict, "already_terminal", "already resolved")
	ErrNotInProgress   = New(Conflict, "not_in_progress", "order is not in progress")
	ErrTerminalState   = New(Conflict, "terminal_state", "order is already closed")
	ErrNotCompleted    = New(Conflict, "not_completed", "order is not completed")
	ErrAlreadyReviewed = New(Conflict, "already_reviewed", "order already reviewed")

	ErrNotFound = New(NotFound, "not_found", "not found")

	ErrTransient = New(Transient, "transient", "backend temporarily unavailable")
)

// KindOf reports the kind of the first *Error in err's chain, or Internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// CodeOf reports the code of the first *Error in err's chain, or "internal".
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return "internal"
}

// IsTransient reports whether err is worth retrying by the caller.
func IsTransient(err error) bool {
	return KindOf(err) == Transient
}

// HTTPStatus maps err to a response status.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case Validation:
		return http.StatusBadRequest
	case Authorization:
		return http.StatusForbidden
	case Conflict:
		return http.StatusConflict
	case NotFound:
		return http.StatusNotFound
	case Transient:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the message safe to show to an API client.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != Internal {
		return e.Msg
	}
	return "internal error"
}
