package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Kind classifies failures so the HTTP layer can map them without
// inspecting driver errors.
type Kind string

const (
	KindNotFound            Kind = "not_found"
	KindConstraintViolation Kind = "constraint_violation"
	KindDuplicateKey        Kind = "duplicate_key"
	KindConnectivity        Kind = "connectivity"
	KindConfiguration       Kind = "configuration"
	KindInvalidKeyFormat    Kind = "invalid_key_format"
	KindInvalidArgument     Kind = "invalid_argument"
	KindRateLimited         Kind = "rate_limited"
	KindInternal            Kind = "internal"
)

var (
	ErrNotFound            = stderrors.New("not found")
	ErrConstraintViolation = stderrors.New("constraint violation")
	ErrDuplicateKey        = stderrors.New("duplicate key")
	ErrConnectivity        = stderrors.New("store unreachable")
	ErrConfiguration       = stderrors.New("configuration error")
	ErrInvalidKeyFormat    = stderrors.New("invalid key format")
	ErrInvalidArgument     = stderrors.New("invalid argument")
	ErrRateLimited         = stderrors.New("rate limited")
)

var sentinels = map[Kind]error{
	KindNotFound:            ErrNotFound,
	KindConstraintViolation: ErrConstraintViolation,
	KindDuplicateKey:        ErrDuplicateKey,
	KindConnectivity:        ErrConnectivity,
	KindConfiguration:       ErrConfiguration,
	KindInvalidKeyFormat:    ErrInvalidKeyFormat,
	KindInvalidArgument:     ErrInvalidArgument,
	KindRateLimited:         ErrRateLimited,
}

// Error carries a kind and the operation that failed. Cause is the
// original error, reachable through errors.Is / errors.As.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	op := strings.TrimSpace(e.Op)
	msg := strings.TrimSpace(e.Message)
	switch {
	case op != "" && msg != "":
		return fmt.Sprintf("%s: %s (%s)", op, msg, e.Kind)
	case op != "":
		return fmt.Sprintf("%s (%s)", op, e.Kind)
	case msg != "":
		return fmt.Sprintf("%s (%s)", msg, e.Kind)
	default:
		return string(e.Kind)
	}
}

func (e *Error) Unwrap() error { return e.Cause }

// Is lets errors.Is(err, ErrNotFound) match any *Error of that kind.
func (e *Error) Is(target error) bool {
	if e == nil {
		return false
	}
	s, ok := sentinels[e.Kind]
	return ok && s == target
}

func New(kind Kind, op, message string) error {
	return &Error{Kind: kind, Op: strings.TrimSpace(op), Message: strings.TrimSpace(message)}
}

// Wrap annotates err with a kind and operation. Returns nil for nil err.
func Wrap(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: strings.TrimSpace(op), Message: err.Error(), Cause: err}
}

func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// KindOf returns the kind of the outermost *Error in err's chain, or
// KindInternal when there is none.
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	for kind, s := range sentinels {
		if stderrors.Is(err, s) {
			return kind
		}
	}
	return KindInternal
}
