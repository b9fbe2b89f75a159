package registry

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/openclaw/agentrep/internal/codec"
	"github.com/openclaw/agentrep/internal/validation"
)

// AgentRef is an agent identifier as entered by the caller: either the
// numeric registry id or the agent's address. Both forms resolve
// through the Identity Registry before any reputation operation runs.
type AgentRef struct {
	ID      *big.Int       // set for the numeric form
	Address common.Address // set for the address form
	input   string
}

// ParseAgentRef accepts a decimal agent id or a 0x-prefixed address.
func ParseAgentRef(s string) (AgentRef, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		if err := validation.ValidateAddress(s); err != nil {
			return AgentRef{}, fmt.Errorf("invalid agent reference %q: %w", s, err)
		}
		return AgentRef{Address: common.HexToAddress(s), input: s}, nil
	}

	id, ok := new(big.Int).SetString(s, 10)
	if !ok || id.Sign() < 0 {
		return AgentRef{}, fmt.Errorf("invalid agent reference %q: want a decimal id or 0x address", s)
	}
	return AgentRef{ID: id, input: s}, nil
}

func (r AgentRef) String() string {
	return r.input
}

// byAddress reports whether the reference was given in address form.
func (r AgentRef) byAddress() bool {
	return r.ID == nil
}

// FeedbackEntry is one reviewer's submission about an agent. Entries
// are immutable on chain except for the revoked flag, which only moves
// false to true.
type FeedbackEntry struct {
	From    common.Address
	Value   codec.Value
	Tags    []string
	Revoked bool
	Index   uint64
}

// Summary is the derived per-chain reputation of an agent, recomputed
// from current chain state on every query. Aggregate and Average are
// exact decimal strings computed over non-revoked entries; Average is
// rounded to codec.MaxDecimals digits when the division is not exact.
type Summary struct {
	Chain         string
	Agent         string
	ReviewerCount int
	FeedbackCount int
	Aggregate     string
	Average       string
}

// LookupResult is a summary plus the ordered entries behind it. Entry
// order follows the on-chain reviewer list, then each reviewer's
// indexes ascending.
type LookupResult struct {
	Summary   Summary
	Entries   []FeedbackEntry
	TagCounts map[string]int
}

// TxState tracks a write operation. Once Submitted the transaction is
// irrevocable; the terminal states are Confirmed, Reverted or TimedOut.
type TxState int

const (
	TxUnsubmitted TxState = iota
	TxSigned
	TxSubmitted
	TxConfirmed
	TxReverted
	TxTimedOut
)

func (s TxState) String() string {
	switch s {
	case TxUnsubmitted:
		return "unsubmitted"
	case TxSigned:
		return "signed"
	case TxSubmitted:
		return "submitted"
	case TxConfirmed:
		return "confirmed"
	case TxReverted:
		return "reverted"
	case TxTimedOut:
		return "timed out"
	default:
		return "unknown"
	}
}

// Receipt is the outcome of a write operation.
type Receipt struct {
	TxHash      common.Hash
	State       TxState
	GasUsed     uint64
	GasPrice    *big.Int
	Cost        *big.Int // GasUsed * GasPrice, in wei
	BlockNumber uint64
}

// ratDecimal renders a power-of-ten rational as a decimal string,
// trimming the trailing fractional zeros FloatString pads with.
func ratDecimal(r *big.Rat) string {
	s := r.FloatString(codec.MaxDecimals)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "" || s == "-" {
		return "0"
	}
	return s
}
