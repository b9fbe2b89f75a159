package registry

import (
	"errors"
	"fmt"
)

// Kind classifies a registry error so callers can branch without
// parsing message text.
type Kind int

const (
	KindUnknownChain Kind = iota + 1
	KindAgentNotFound
	KindFeedbackNotFound
	KindInvalidValue
	KindInvalidCredential
	KindNoCredential
	KindInsufficientFunds
	KindNotOriginalReviewer
	KindAlreadyRevoked
	KindChainUnavailable
	KindTransactionReverted
	KindTimedOut
)

func (k Kind) String() string {
	switch k {
	case KindUnknownChain:
		return "unknown chain"
	case KindAgentNotFound:
		return "agent not found"
	case KindFeedbackNotFound:
		return "feedback not found"
	case KindInvalidValue:
		return "invalid value"
	case KindInvalidCredential:
		return "invalid credential"
	case KindNoCredential:
		return "no credential"
	case KindInsufficientFunds:
		return "insufficient funds"
	case KindNotOriginalReviewer:
		return "not original reviewer"
	case KindAlreadyRevoked:
		return "already revoked"
	case KindChainUnavailable:
		return "chain unavailable"
	case KindTransactionReverted:
		return "transaction reverted"
	case KindTimedOut:
		return "timed out"
	default:
		return "unknown error"
	}
}

// Error is a structured registry error: a kind plus the chain, agent
// and feedback index it concerns, where known.
type Error struct {
	Kind  Kind
	Chain string
	Agent string
	Index uint64 // meaningful only for feedback-level kinds
	Err   error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Agent != "" {
		msg = fmt.Sprintf("agent %s: %s", e.Agent, msg)
	}
	if e.Chain != "" {
		msg = fmt.Sprintf("%s: %s", e.Chain, msg)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind reports whether err carries the given kind anywhere in its
// chain.
func IsKind(err error, k Kind) bool {
	var re *Error
	return errors.As(err, &re) && re.Kind == k
}

// ErrKind extracts the kind from err, or zero if err is not a registry
// error.
func ErrKind(err error) Kind {
	var re *Error
	if errors.As(err, &re) {
		return re.Kind
	}
	return 0
}
