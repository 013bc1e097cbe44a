package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/sonr-io/motr-gateway/core/kv"
	"github.com/sonr-io/motr-gateway/core/logger"
)

// Key prefixes of the chain and asset registries.
const (
	ChainKeyPrefix = "chain:"
	AssetKeyPrefix = "asset:"
)

// Registry reads chain descriptors and their asset lists from the KV store.
// Values are opaque JSON documents returned as stored.
type Registry struct {
	chains *kv.Namespace
	assets *kv.Namespace
}

// ChainInfo is the detail view of one chain. Either side may be null.
type ChainInfo struct {
	Chain  json.RawMessage `json:"chain"`
	Assets json.RawMessage `json:"assets"`
}

// Seed is the REGISTRY_SEED_FILE document: chain and asset documents keyed by chain id.
type Seed struct {
	Chains map[string]json.RawMessage `json:"chains"`
	Assets map[string]json.RawMessage `json:"assets"`
}

func NewRegistry(store kv.Store) *Registry {
	return &Registry{
		chains: kv.NewNamespace(store, ChainKeyPrefix),
		assets: kv.NewNamespace(store, AssetKeyPrefix),
	}
}

// Chains lists registered chain ids in lexical order.
func (r *Registry) Chains(ctx context.Context) ([]string, error) {
	return r.chains.Keys(ctx, "")
}

// Chain returns the chain and asset documents for id. ErrChainNotFound is
// returned only when both are absent.
func (r *Registry) Chain(ctx context.Context, id string) (ChainInfo, error) {
	chain, err := r.lookup(ctx, r.chains, id)
	if err != nil {
		return ChainInfo{}, err
	}
	assets, err := r.lookup(ctx, r.assets, id)
	if err != nil {
		return ChainInfo{}, err
	}
	if chain == nil && assets == nil {
		return ChainInfo{}, ErrChainNotFound
	}
	return ChainInfo{Chain: chain, Assets: assets}, nil
}

func (r *Registry) lookup(ctx context.Context, ns *kv.Namespace, id string) (json.RawMessage, error) {
	raw, err := ns.Get(ctx, id)
	switch {
	case errors.Is(err, kv.ErrNotFound):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("registry lookup %q: %w", id, err)
	}
	if !json.Valid(raw) {
		return nil, fmt.Errorf("registry lookup %q: %w", id, kv.ErrDecode)
	}
	return raw, nil
}

// Load writes every document of seed without expiry, replacing existing ones.
func (r *Registry) Load(ctx context.Context, seed Seed) error {
	for id, doc := range seed.Chains {
		if err := r.chains.Put(ctx, id, doc, 0); err != nil {
			return fmt.Errorf("chain %q: %w", id, err)
		}
	}
	for id, doc := range seed.Assets {
		if err := r.assets.Put(ctx, id, doc, 0); err != nil {
			return fmt.Errorf("assets %q: %w", id, err)
		}
	}
	return nil
}

// ReadSeed parses a registry seed file.
func ReadSeed(path string) (Seed, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Seed{}, err
	}
	var seed Seed
	if err := json.Unmarshal(raw, &seed); err != nil {
		return Seed{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return seed, nil
}

func (a *App) setupRegistry(ctx context.Context) error {
	a.registry = NewRegistry(a.store)
	path := a.config.RegistrySeedFile
	if path == "" {
		return nil
	}

	seed, err := ReadSeed(path)
	if err != nil {
		return errors.Join(ErrRegistrySeed, err)
	}
	if err := a.registry.Load(ctx, seed); err != nil {
		return errors.Join(ErrRegistrySeed, err)
	}
	a.logger.InfoContext(ctx, "chain registry seeded",
		logger.Component("registry"),
		logger.Action("seed"),
		slog.Int("chains", len(seed.Chains)),
		slog.Int("assets", len(seed.Assets)))
	return nil
}
