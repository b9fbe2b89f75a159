// Package registry implements typed access to the ERC-8004 Identity
// and Reputation Registry contract pair, per chain and across chains.
package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"golang.org/x/time/rate"

	"github.com/openclaw/agentrep/internal/chains"
	"github.com/openclaw/agentrep/internal/codec"
	"github.com/openclaw/agentrep/internal/validation"
	"github.com/openclaw/agentrep/internal/wallet"
)

const (
	defaultCallTimeout    = 15 * time.Second
	defaultReceiptTimeout = 120 * time.Second
	defaultPollInterval   = 2 * time.Second

	// Public RPC endpoints throttle aggressively; entry-by-entry reads
	// go through a token bucket so a busy agent doesn't trip them.
	defaultCallsPerSecond = 10
	defaultBurst          = 5

	// Transient RPC failures are retried this many times on the read
	// path. Writes are never retried.
	defaultMaxRetries = 2
)

// Client is typed read/write access to the registry pair on one chain.
// Every operation dials its own connection and releases it before
// returning.
type Client struct {
	chain          chains.Descriptor
	dial           DialFunc
	log            *slog.Logger
	limiter        *rate.Limiter
	callTimeout    time.Duration
	receiptTimeout time.Duration
	pollInterval   time.Duration
	maxRetries     uint64
}

// Option configures a Client.
type Option func(*Client)

// WithDialer sets a custom backend dialer.
func WithDialer(d DialFunc) Option {
	return func(c *Client) { c.dial = d }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithCallTimeout bounds each RPC round-trip.
func WithCallTimeout(d time.Duration) Option {
	return func(c *Client) { c.callTimeout = d }
}

// WithReceiptTimeout bounds how long a write waits for its receipt.
func WithReceiptTimeout(d time.Duration) Option {
	return func(c *Client) { c.receiptTimeout = d }
}

// WithPollInterval sets the receipt polling cadence.
func WithPollInterval(d time.Duration) Option {
	return func(c *Client) { c.pollInterval = d }
}

// WithRateLimit overrides the per-client RPC token bucket.
func WithRateLimit(callsPerSecond float64, burst int) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Limit(callsPerSecond), burst) }
}

// New creates a client for one chain.
func New(chain chains.Descriptor, opts ...Option) *Client {
	c := &Client{
		chain:          chain,
		dial:           Dial,
		log:            slog.Default(),
		limiter:        rate.NewLimiter(rate.Limit(defaultCallsPerSecond), defaultBurst),
		callTimeout:    defaultCallTimeout,
		receiptTimeout: defaultReceiptTimeout,
		pollInterval:   defaultPollInterval,
		maxRetries:     defaultMaxRetries,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Chain returns the descriptor this client talks to.
func (c *Client) Chain() chains.Descriptor {
	return c.chain
}

// Lookup resolves the agent and reads its full feedback set, deriving
// the reputation summary from non-revoked entries.
func (c *Client) Lookup(ctx context.Context, ref AgentRef) (*LookupResult, error) {
	backend, err := c.dial(ctx, c.chain.RPCURL)
	if err != nil {
		return nil, c.rpcErr(ref, err)
	}
	defer backend.Close()

	agent, err := c.resolveAgent(ctx, backend, ref)
	if err != nil {
		return nil, err
	}

	reviewers, err := c.getClients(ctx, backend, agent, ref)
	if err != nil {
		return nil, err
	}

	var entries []FeedbackEntry
	for _, reviewer := range reviewers {
		count, err := c.lastIndex(ctx, backend, agent, reviewer, ref)
		if err != nil {
			return nil, err
		}
		for i := uint64(0); i < count; i++ {
			entry, err := c.readEntry(ctx, backend, agent, reviewer, i, ref)
			if err != nil {
				return nil, err
			}
			entries = append(entries, entry)
		}
	}

	sum := new(big.Rat)
	active := 0
	tagCounts := make(map[string]int)
	for _, e := range entries {
		if e.Revoked {
			continue
		}
		active++
		sum.Add(sum, valueRat(e.Value))
		for _, t := range e.Tags {
			tagCounts[t]++
		}
	}

	summary := Summary{
		Chain:         c.chain.Key,
		Agent:         ref.String(),
		ReviewerCount: len(reviewers),
		FeedbackCount: active,
		Aggregate:     "0",
		Average:       "0",
	}
	if active > 0 {
		summary.Aggregate = ratDecimal(sum)
		summary.Average = ratDecimal(new(big.Rat).Quo(sum, big.NewRat(int64(active), 1)))
	}

	return &LookupResult{Summary: summary, Entries: entries, TagCounts: tagCounts}, nil
}

// ListClients returns the addresses that gave feedback to the agent,
// in insertion order of their first feedback.
func (c *Client) ListClients(ctx context.Context, ref AgentRef) ([]common.Address, error) {
	backend, err := c.dial(ctx, c.chain.RPCURL)
	if err != nil {
		return nil, c.rpcErr(ref, err)
	}
	defer backend.Close()

	agent, err := c.resolveAgent(ctx, backend, ref)
	if err != nil {
		return nil, err
	}
	return c.getClients(ctx, backend, agent, ref)
}

// ReadFeedback reads one entry by reviewer and index.
func (c *Client) ReadFeedback(ctx context.Context, ref AgentRef, reviewer common.Address, index uint64) (*FeedbackEntry, error) {
	backend, err := c.dial(ctx, c.chain.RPCURL)
	if err != nil {
		return nil, c.rpcErr(ref, err)
	}
	defer backend.Close()

	agent, err := c.resolveAgent(ctx, backend, ref)
	if err != nil {
		return nil, err
	}

	count, err := c.lastIndex(ctx, backend, agent, reviewer, ref)
	if err != nil {
		return nil, err
	}
	if index >= count {
		return nil, c.feedbackErr(KindFeedbackNotFound, ref, index,
			fmt.Errorf("reviewer %s has %d entries", reviewer, count))
	}

	entry, err := c.readEntry(ctx, backend, agent, reviewer, index, ref)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// ResponseCount returns how many responses the agent has appended to
// one feedback entry.
func (c *Client) ResponseCount(ctx context.Context, ref AgentRef, reviewer common.Address, index uint64) (uint64, error) {
	backend, err := c.dial(ctx, c.chain.RPCURL)
	if err != nil {
		return 0, c.rpcErr(ref, err)
	}
	defer backend.Close()

	agent, err := c.resolveAgent(ctx, backend, ref)
	if err != nil {
		return 0, err
	}

	out, err := c.call(ctx, backend, ReputationRegistryAddress, reputationABI, "getResponseCount", agent, reviewer, index)
	if err != nil {
		return 0, c.readErr(ref, err)
	}
	return out[0].(uint64), nil
}

// GiveFeedback validates, signs and submits a feedback entry. The
// value must sit inside the protocol range before anything touches the
// network; a call guaranteed to revert is never submitted.
func (c *Client) GiveFeedback(ctx context.Context, ref AgentRef, value codec.Value, tags []string, cred *wallet.Credential) (*Receipt, error) {
	if err := validation.ValidateTags(tags); err != nil {
		return nil, &Error{Kind: KindInvalidValue, Chain: c.chain.Key, Agent: ref.String(), Err: err}
	}
	if !value.InRange() {
		return nil, &Error{
			Kind: KindInvalidValue, Chain: c.chain.Key, Agent: ref.String(),
			Err: fmt.Errorf("%w: %s is outside 0-100", codec.ErrInvalidValue, value),
		}
	}

	backend, err := c.dial(ctx, c.chain.RPCURL)
	if err != nil {
		return nil, c.rpcErr(ref, err)
	}
	defer backend.Close()

	agent, err := c.resolveAgent(ctx, backend, ref)
	if err != nil {
		return nil, err
	}

	var tag1, tag2 [codec.TagWidth]byte
	if len(tags) > 0 {
		tag1 = codec.EncodeTag(tags[0])
	}
	if len(tags) > 1 {
		tag2 = codec.EncodeTag(tags[1])
	}

	input, err := reputationABI.Pack("giveFeedback", agent, value.Raw, value.Decimals, tag1, tag2)
	if err != nil {
		return nil, fmt.Errorf("packing giveFeedback: %w", err)
	}
	return c.submit(ctx, backend, cred, ref, input, KindTransactionReverted)
}

// RevokeFeedback marks one of the credential's own entries as revoked.
// Revoking an already-revoked entry reports AlreadyRevoked instead of
// silently succeeding.
func (c *Client) RevokeFeedback(ctx context.Context, ref AgentRef, index uint64, cred *wallet.Credential) (*Receipt, error) {
	backend, err := c.dial(ctx, c.chain.RPCURL)
	if err != nil {
		return nil, c.rpcErr(ref, err)
	}
	defer backend.Close()

	agent, err := c.resolveAgent(ctx, backend, ref)
	if err != nil {
		return nil, err
	}

	count, err := c.lastIndex(ctx, backend, agent, cred.Address, ref)
	if err != nil {
		return nil, err
	}
	if index >= count {
		return nil, c.feedbackErr(KindFeedbackNotFound, ref, index,
			fmt.Errorf("%s has %d entries for this agent", cred.Address, count))
	}

	entry, err := c.readEntry(ctx, backend, agent, cred.Address, index, ref)
	if err != nil {
		return nil, err
	}
	if entry.Revoked {
		return nil, c.feedbackErr(KindAlreadyRevoked, ref, index, nil)
	}

	input, err := reputationABI.Pack("revokeFeedback", agent, index)
	if err != nil {
		return nil, fmt.Errorf("packing revokeFeedback: %w", err)
	}
	// The contract enforces authorship; a revert here means the entry
	// is not the caller's.
	return c.submit(ctx, backend, cred, ref, input, KindNotOriginalReviewer)
}

// AppendResponse appends the agent's response to one feedback entry.
func (c *Client) AppendResponse(ctx context.Context, ref AgentRef, reviewer common.Address, index uint64, response string, cred *wallet.Credential) (*Receipt, error) {
	backend, err := c.dial(ctx, c.chain.RPCURL)
	if err != nil {
		return nil, c.rpcErr(ref, err)
	}
	defer backend.Close()

	agent, err := c.resolveAgent(ctx, backend, ref)
	if err != nil {
		return nil, err
	}

	count, err := c.lastIndex(ctx, backend, agent, reviewer, ref)
	if err != nil {
		return nil, err
	}
	if index >= count {
		return nil, c.feedbackErr(KindFeedbackNotFound, ref, index,
			fmt.Errorf("reviewer %s has %d entries", reviewer, count))
	}

	input, err := reputationABI.Pack("appendResponse", agent, reviewer, index, response)
	if err != nil {
		return nil, fmt.Errorf("packing appendResponse: %w", err)
	}
	return c.submit(ctx, backend, cred, ref, input, KindTransactionReverted)
}

// resolveAgent resolves an AgentRef through the Identity Registry. An
// unregistered identity fails here so no reputation operation proceeds
// against it.
func (c *Client) resolveAgent(ctx context.Context, backend Backend, ref AgentRef) (common.Address, error) {
	var (
		out []any
		err error
	)
	if ref.byAddress() {
		out, err = c.call(ctx, backend, IdentityRegistryAddress, identityABI, "resolveByAddress", ref.Address)
	} else {
		out, err = c.call(ctx, backend, IdentityRegistryAddress, identityABI, "getAgent", ref.ID)
	}
	if err != nil {
		if isRevert(err) {
			return common.Address{}, &Error{Kind: KindAgentNotFound, Chain: c.chain.Key, Agent: ref.String(), Err: err}
		}
		return common.Address{}, c.rpcErr(ref, err)
	}

	id := out[0].(*big.Int)
	addr := out[2].(common.Address)
	if id.Sign() == 0 || addr == (common.Address{}) {
		return common.Address{}, &Error{Kind: KindAgentNotFound, Chain: c.chain.Key, Agent: ref.String()}
	}
	return addr, nil
}

func (c *Client) getClients(ctx context.Context, backend Backend, agent common.Address, ref AgentRef) ([]common.Address, error) {
	out, err := c.call(ctx, backend, ReputationRegistryAddress, reputationABI, "getClients", agent)
	if err != nil {
		return nil, c.readErr(ref, err)
	}
	return out[0].([]common.Address), nil
}

func (c *Client) lastIndex(ctx context.Context, backend Backend, agent, reviewer common.Address, ref AgentRef) (uint64, error) {
	out, err := c.call(ctx, backend, ReputationRegistryAddress, reputationABI, "getLastIndex", agent, reviewer)
	if err != nil {
		return 0, c.readErr(ref, err)
	}
	return out[0].(uint64), nil
}

func (c *Client) readEntry(ctx context.Context, backend Backend, agent, reviewer common.Address, index uint64, ref AgentRef) (FeedbackEntry, error) {
	out, err := c.call(ctx, backend, ReputationRegistryAddress, reputationABI, "readFeedback", agent, reviewer, index)
	if err != nil {
		if isRevert(err) {
			return FeedbackEntry{}, c.feedbackErr(KindFeedbackNotFound, ref, index, err)
		}
		return FeedbackEntry{}, c.rpcErr(ref, err)
	}

	entry := FeedbackEntry{
		From:    reviewer,
		Value:   codec.Value{Raw: out[0].(uint64), Decimals: out[1].(uint8)},
		Revoked: out[4].(bool),
		Index:   index,
	}
	for _, raw := range [][codec.TagWidth]byte{out[2].([32]byte), out[3].([32]byte)} {
		if tag := codec.DecodeTag(raw); tag != "" {
			entry.Tags = append(entry.Tags, tag)
		}
	}
	return entry, nil
}

// call packs, executes and unpacks one read-only contract call,
// retrying transient transport failures with exponential backoff.
// Reverts are permanent and surface to the caller for classification.
func (c *Client) call(ctx context.Context, backend Backend, to common.Address, contractABI abi.ABI, method string, args ...any) ([]any, error) {
	input, err := contractABI.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("packing %s: %w", method, err)
	}

	var output []byte
	op := func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}
		callCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
		defer cancel()
		out, err := backend.CallContract(callCtx, ethereum.CallMsg{To: &to, Data: input}, nil)
		if err != nil {
			if isRevert(err) {
				return backoff.Permanent(err)
			}
			c.log.Debug("rpc call failed, retrying",
				"chain", c.chain.Key, "method", method, "error", err)
			return err
		}
		output = out
		return nil
	}

	bo := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.maxRetries), ctx)
	if err := backoff.Retry(op, bo); err != nil {
		return nil, err
	}
	return contractABI.Unpack(method, output)
}

// submit drives a write through its full lifecycle: estimate, balance
// check, sign, send, then poll for the receipt. The credential's key
// material is destroyed as soon as the transaction is submitted. There
// is no resubmission on revert: the cause is a logic failure, and
// resubmitting risks duplicate intent.
func (c *Client) submit(ctx context.Context, backend Backend, cred *wallet.Credential, ref AgentRef, input []byte, revertKind Kind) (*Receipt, error) {
	nonce, err := backend.PendingNonceAt(ctx, cred.Address)
	if err != nil {
		return nil, c.rpcErr(ref, err)
	}
	gasPrice, err := backend.SuggestGasPrice(ctx)
	if err != nil {
		return nil, c.rpcErr(ref, err)
	}

	gas, err := backend.EstimateGas(ctx, ethereum.CallMsg{
		From:     cred.Address,
		To:       &ReputationRegistryAddress,
		GasPrice: gasPrice,
		Data:     input,
	})
	if err != nil {
		if isRevert(err) {
			return nil, &Error{Kind: revertKind, Chain: c.chain.Key, Agent: ref.String(), Err: err}
		}
		return nil, c.rpcErr(ref, err)
	}

	need := new(big.Int).Mul(gasPrice, new(big.Int).SetUint64(gas))
	balance, err := backend.BalanceAt(ctx, cred.Address, nil)
	if err != nil {
		return nil, c.rpcErr(ref, err)
	}
	if balance.Cmp(need) < 0 {
		return nil, &Error{
			Kind: KindInsufficientFunds, Chain: c.chain.Key, Agent: ref.String(),
			Err: fmt.Errorf("balance %s wei, need %s wei for gas", balance, need),
		}
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		GasPrice: gasPrice,
		Gas:      gas,
		To:       &ReputationRegistryAddress,
		Data:     input,
	})
	signed, err := cred.SignTx(tx, new(big.Int).SetUint64(c.chain.ChainID))
	if err != nil {
		return nil, &Error{Kind: KindInvalidCredential, Chain: c.chain.Key, Agent: ref.String(), Err: err}
	}

	sendCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()
	if err := backend.SendTransaction(sendCtx, signed); err != nil {
		if isRevert(err) {
			return nil, &Error{Kind: revertKind, Chain: c.chain.Key, Agent: ref.String(), Err: err}
		}
		return nil, c.rpcErr(ref, err)
	}

	// Submitted: the key has done its job.
	cred.Destroy()
	c.log.Info("transaction submitted",
		"chain", c.chain.Key, "agent", ref.String(), "tx", signed.Hash().Hex())

	return c.waitReceipt(ctx, backend, ref, signed.Hash(), gasPrice)
}

// waitReceipt polls until the transaction is mined or the receipt
// timeout elapses.
func (c *Client) waitReceipt(ctx context.Context, backend Backend, ref AgentRef, hash common.Hash, gasPrice *big.Int) (*Receipt, error) {
	deadline := time.NewTimer(c.receiptTimeout)
	defer deadline.Stop()
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		r, err := backend.TransactionReceipt(ctx, hash)
		if err == nil && r != nil {
			rec := &Receipt{
				TxHash:   hash,
				GasUsed:  r.GasUsed,
				GasPrice: gasPrice,
				Cost:     new(big.Int).Mul(gasPrice, new(big.Int).SetUint64(r.GasUsed)),
			}
			if r.BlockNumber != nil {
				rec.BlockNumber = r.BlockNumber.Uint64()
			}
			if r.Status == types.ReceiptStatusSuccessful {
				rec.State = TxConfirmed
				return rec, nil
			}
			rec.State = TxReverted
			return rec, &Error{
				Kind: KindTransactionReverted, Chain: c.chain.Key, Agent: ref.String(),
				Err: fmt.Errorf("transaction %s reverted on chain", hash.Hex()),
			}
		}
		// Not mined yet (or a transient fetch failure): keep polling
		// until the deadline.

		select {
		case <-ticker.C:
		case <-deadline.C:
			rec := &Receipt{TxHash: hash, State: TxTimedOut, GasPrice: gasPrice}
			return rec, &Error{
				Kind: KindTimedOut, Chain: c.chain.Key, Agent: ref.String(),
				Err: fmt.Errorf("no receipt for %s after %s", hash.Hex(), c.receiptTimeout),
			}
		case <-ctx.Done():
			rec := &Receipt{TxHash: hash, State: TxTimedOut, GasPrice: gasPrice}
			return rec, &Error{Kind: KindTimedOut, Chain: c.chain.Key, Agent: ref.String(), Err: ctx.Err()}
		}
	}
}

// readErr classifies an error from a read-path contract call. Reverts
// on reads against a registered agent indicate missing feedback state.
func (c *Client) readErr(ref AgentRef, err error) error {
	if isRevert(err) {
		return &Error{Kind: KindFeedbackNotFound, Chain: c.chain.Key, Agent: ref.String(), Err: err}
	}
	return c.rpcErr(ref, err)
}

// rpcErr classifies a transport-level failure.
func (c *Client) rpcErr(ref AgentRef, err error) error {
	kind := KindChainUnavailable
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		kind = KindTimedOut
	}
	return &Error{Kind: kind, Chain: c.chain.Key, Agent: ref.String(), Err: err}
}

func (c *Client) feedbackErr(kind Kind, ref AgentRef, index uint64, err error) error {
	return &Error{Kind: kind, Chain: c.chain.Key, Agent: ref.String(), Index: index, Err: err}
}

// isRevert reports whether an RPC error is the node telling us the
// call reverted, as opposed to a transport failure.
func isRevert(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "revert") || strings.Contains(msg, "execution error")
}

// valueRat converts a fixed-point value into an exact rational.
func valueRat(v codec.Value) *big.Rat {
	den := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(v.Decimals)), nil)
	return new(big.Rat).SetFrac(new(big.Int).SetUint64(v.Raw), den)
}
