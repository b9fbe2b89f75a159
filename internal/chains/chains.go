// Package chains holds the static table of supported chains and the
// lookup logic shared by every command.
package chains

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// ErrUnknownChain is returned when a chain key is not in the table.
var ErrUnknownChain = errors.New("unknown chain")

// Descriptor describes one supported chain. Descriptors are immutable
// once the Registry is built.
type Descriptor struct {
	Key         string
	ChainID     uint64
	RPCURL      string
	DisplayName string
	Symbol      string
	IsDefault   bool
}

// Registry is the process-wide chain table. It is constructed once at
// startup and passed by reference into every component that needs it.
type Registry struct {
	order []string
	byKey map[string]Descriptor
}

// builtin is the fixed set of chains the registry contracts are deployed
// on. Order matters: All() and the multi-chain fan-out follow it.
var builtin = []Descriptor{
	{Key: "base", ChainID: 8453, RPCURL: "https://mainnet.base.org", DisplayName: "Base", Symbol: "ETH", IsDefault: true},
	{Key: "ethereum", ChainID: 1, RPCURL: "https://eth.llamarpc.com", DisplayName: "Ethereum", Symbol: "ETH"},
	{Key: "polygon", ChainID: 137, RPCURL: "https://polygon-rpc.com", DisplayName: "Polygon", Symbol: "MATIC"},
	{Key: "monad", ChainID: 143, RPCURL: "https://rpc.monad.xyz", DisplayName: "Monad", Symbol: "MON"},
	{Key: "bnb", ChainID: 56, RPCURL: "https://bsc-rpc.publicnode.com", DisplayName: "BNB Chain", Symbol: "BNB"},
}

// NewRegistry builds a registry from the built-in chain table.
func NewRegistry() *Registry {
	return newRegistry(builtin)
}

func newRegistry(descs []Descriptor) *Registry {
	r := &Registry{byKey: make(map[string]Descriptor, len(descs))}
	for _, d := range descs {
		r.order = append(r.order, d.Key)
		r.byKey[d.Key] = d
	}
	return r
}

// endpointOverride is one entry in the optional TOML override file.
type endpointOverride struct {
	RPC string `toml:"rpc"`
}

type overrideFile struct {
	Chains map[string]endpointOverride `toml:"chains"`
}

// Load builds a registry from the built-in table with RPC endpoints
// overridden from the TOML file at path. An empty path returns the
// built-in table unchanged. Override keys must name known chains.
func Load(path string) (*Registry, error) {
	if path == "" {
		return NewRegistry(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading chain config: %w", err)
	}

	var f overrideFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing chain config: %w", err)
	}

	descs := make([]Descriptor, len(builtin))
	copy(descs, builtin)

	known := make(map[string]int, len(descs))
	for i, d := range descs {
		known[d.Key] = i
	}

	for key, o := range f.Chains {
		i, ok := known[key]
		if !ok {
			return nil, fmt.Errorf("%w: %q in %s", ErrUnknownChain, key, path)
		}
		if o.RPC != "" {
			descs[i].RPCURL = o.RPC
		}
	}

	return newRegistry(descs), nil
}

// Resolve returns the descriptor for key, or the default descriptor when
// key is empty.
func (r *Registry) Resolve(key string) (Descriptor, error) {
	if key == "" {
		return r.Default(), nil
	}
	d, ok := r.byKey[key]
	if !ok {
		return Descriptor{}, fmt.Errorf("%w: %q (supported: %s)", ErrUnknownChain, key, r.Keys())
	}
	return d, nil
}

// Default returns the descriptor flagged as the default chain.
func (r *Registry) Default() Descriptor {
	for _, key := range r.order {
		if d := r.byKey[key]; d.IsDefault {
			return d
		}
	}
	// The built-in table always carries a default; a custom table that
	// lost it falls back to the first entry.
	return r.byKey[r.order[0]]
}

// All returns every descriptor in table order. The order is stable so
// multi-chain output is reproducible across runs.
func (r *Registry) All() []Descriptor {
	out := make([]Descriptor, 0, len(r.order))
	for _, key := range r.order {
		out = append(out, r.byKey[key])
	}
	return out
}

// Keys returns the supported chain keys in table order.
func (r *Registry) Keys() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}
