package registry

import (
	"context"
	"sync"

	"github.com/openclaw/agentrep/internal/chains"
)

// Aggregator fans a read-only lookup out across configured chains.
// Chains fail independently: one unreachable endpoint never hides the
// others' results.
type Aggregator struct {
	registry *chains.Registry
	opts     []Option
}

// NewAggregator creates an aggregator over the chain table. The
// options are applied to every per-chain client it builds.
func NewAggregator(reg *chains.Registry, opts ...Option) *Aggregator {
	return &Aggregator{registry: reg, opts: opts}
}

// ChainResult is one chain's outcome: a summary or a typed error,
// never both.
type ChainResult struct {
	Chain   chains.Descriptor
	Summary *Summary
	Err     error
}

// QueryAll looks the agent up on every requested chain (all configured
// chains when keys is nil) and returns one result per chain in the
// registry's deterministic order, regardless of which query finished
// first.
//
// Unknown keys fail the whole call before any network traffic;
// per-chain network failures are reported in that chain's slot.
func (a *Aggregator) QueryAll(ctx context.Context, ref AgentRef, keys []string) ([]ChainResult, error) {
	var descs []chains.Descriptor
	if keys == nil {
		descs = a.registry.All()
	} else {
		requested := make(map[string]bool, len(keys))
		for _, key := range keys {
			if key == "" {
				return nil, &Error{Kind: KindUnknownChain, Chain: key, Agent: ref.String(), Err: chains.ErrUnknownChain}
			}
			if _, err := a.registry.Resolve(key); err != nil {
				return nil, &Error{Kind: KindUnknownChain, Chain: key, Agent: ref.String(), Err: err}
			}
			requested[key] = true
		}
		// Subsets are reordered into table order so output stays
		// reproducible whatever order the caller listed them in.
		for _, d := range a.registry.All() {
			if requested[d.Key] {
				descs = append(descs, d)
			}
		}
	}

	// One indexed slot per chain: the join preserves table order no
	// matter the completion order.
	results := make([]ChainResult, len(descs))
	var wg sync.WaitGroup
	for i, d := range descs {
		wg.Add(1)
		go func(i int, d chains.Descriptor) {
			defer wg.Done()
			client := New(d, a.opts...)
			res, err := client.Lookup(ctx, ref)
			if err != nil {
				results[i] = ChainResult{Chain: d, Err: err}
				return
			}
			results[i] = ChainResult{Chain: d, Summary: &res.Summary}
		}(i, d)
	}
	wg.Wait()

	return results, nil
}
