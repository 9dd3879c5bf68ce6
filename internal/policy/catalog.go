package policy

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/BenAnderson8181/BusApp/internal/domain"
	"github.com/BenAnderson8181/BusApp/internal/infra"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ErrCatalogNotLoaded is returned until the first successful Refresh.
var ErrCatalogNotLoaded = errors.New("policy catalog not loaded")

type Repository interface {
	ListPolicies(ctx context.Context) ([]domain.Policy, error)
}

// Bindings is an immutable kind <-> policy id mapping taken from one catalog load.
type Bindings struct {
	byKind map[domain.PolicyKind]string
	byID   map[string]domain.PolicyKind
}

// NewBindings binds kinds to ids directly. Used by tests and by Refresh.
func NewBindings(ids map[domain.PolicyKind]string) Bindings {
	b := Bindings{
		byKind: make(map[domain.PolicyKind]string, len(ids)),
		byID:   make(map[string]domain.PolicyKind, len(ids)),
	}
	for k, id := range ids {
		b.byKind[k] = id
		b.byID[id] = k
	}
	return b
}

func (b Bindings) ID(kind domain.PolicyKind) (string, bool) {
	id, ok := b.byKind[kind]
	return id, ok
}

func (b Bindings) KindOf(policyID string) (domain.PolicyKind, bool) {
	k, ok := b.byID[policyID]
	return k, ok
}

// Signed projects ledger rows onto kinds. Rows for policies outside the
// known kinds are ignored, as are unsigned rows.
func (b Bindings) Signed(ledger []domain.UserPolicy) SignedSet {
	set := make(SignedSet, len(ledger))
	for _, up := range ledger {
		if !up.Signed {
			continue
		}
		if k, ok := b.byID[up.PolicyID]; ok {
			set[k] = true
		}
	}
	return set
}

// Catalog is the in-memory snapshot of the policies table.
// Reads never touch Postgres; Refresh swaps the snapshot atomically.
type Catalog struct {
	mu       sync.RWMutex
	policies []domain.Policy
	bindings Bindings
	loaded   bool

	repo   Repository
	rdb    *redis.Client
	logger *zap.Logger
}

func NewCatalog(repo Repository, rdb *redis.Client, logger *zap.Logger) *Catalog {
	return &Catalog{
		repo:   repo,
		rdb:    rdb,
		logger: logger.Named("catalog"),
	}
}

// Refresh reloads the catalog. Every known kind must be present; otherwise the
// previous snapshot is kept and a not-found misconfiguration error is returned.
func (c *Catalog) Refresh(ctx context.Context) error {
	rows, err := c.repo.ListPolicies(ctx)
	if err != nil {
		return domain.Retrieval("load policy catalog", err)
	}

	ids := make(map[domain.PolicyKind]string, len(rows))
	policies := make([]domain.Policy, 0, len(rows))
	for _, p := range rows {
		if k, ok := domain.KindForTitle(p.Title); ok {
			p.Kind = k
			ids[k] = p.ID
		}
		policies = append(policies, p)
	}

	for _, k := range domain.AllPolicyKinds() {
		if _, ok := ids[k]; !ok {
			return domain.NotFound("load policy catalog", fmt.Sprintf("no policy bound to kind %q", k))
		}
	}

	c.mu.Lock()
	c.policies = policies
	c.bindings = NewBindings(ids)
	c.loaded = true
	c.mu.Unlock()

	c.logger.Info("policy catalog refreshed", zap.Int("count", len(policies)))
	return nil
}

// Bindings returns the current kind bindings.
func (c *Catalog) Bindings(_ context.Context) (Bindings, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.loaded {
		return Bindings{}, domain.Retrieval("policy bindings", ErrCatalogNotLoaded)
	}
	return c.bindings, nil
}

// Policies returns a copy of the catalog.
func (c *Catalog) Policies(_ context.Context) ([]domain.Policy, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.loaded {
		return nil, domain.Retrieval("list policies", ErrCatalogNotLoaded)
	}
	out := make([]domain.Policy, len(c.policies))
	copy(out, c.policies)
	return out, nil
}

// StartListener reloads the catalog whenever a refresh is broadcast. Blocks until ctx is done.
func (c *Catalog) StartListener(ctx context.Context) {
	reload := func() error { return c.Refresh(ctx) }
	infra.ListenResilient(ctx, c.rdb, c.logger, infra.RedisChanCatalogRefresh, reload, func(string) {
		if err := reload(); err != nil {
			c.logger.Error("catalog refresh failed", zap.Error(err))
		}
	})
}

// Broadcast asks every instance, this one included, to reload.
// Without Redis only the local snapshot is refreshed.
func (c *Catalog) Broadcast(ctx context.Context) error {
	if c.rdb == nil {
		return c.Refresh(ctx)
	}
	if err := c.rdb.Publish(ctx, infra.RedisChanCatalogRefresh, "refresh").Err(); err != nil {
		return fmt.Errorf("publish catalog refresh: %w", err)
	}
	return nil
}
