package gate

import (
	"context"
	"strings"

	"github.com/BenAnderson8181/BusApp/internal/domain"
	"github.com/BenAnderson8181/BusApp/internal/metrics"
	"github.com/BenAnderson8181/BusApp/internal/policy"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type AccountResolver interface {
	// Resolve returns (nil, nil) when no account is bound to externalID.
	Resolve(ctx context.Context, externalID string) (*domain.Account, error)
}

type BindingSource interface {
	Bindings(ctx context.Context) (policy.Bindings, error)
}

type LedgerReader interface {
	// ListByExternalID returns an empty ledger for an unknown identity.
	ListByExternalID(ctx context.Context, externalID string) ([]domain.UserPolicy, error)
}

// Evaluator runs the gate lookups for one identity and feeds them to Evaluate.
type Evaluator struct {
	accounts AccountResolver
	catalog  BindingSource
	ledger   LedgerReader
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

func NewEvaluator(accounts AccountResolver, catalog BindingSource, ledger LedgerReader, m *metrics.Metrics, logger *zap.Logger) *Evaluator {
	if m == nil {
		m = metrics.New(nil)
	}
	return &Evaluator{
		accounts: accounts,
		catalog:  catalog,
		ledger:   ledger,
		metrics:  m,
		logger:   logger.Named("gate"),
	}
}

// Next returns the destination for externalID entering through entry.
// The three lookups run concurrently; the first failure cancels the rest and
// no decision is produced.
func (e *Evaluator) Next(ctx context.Context, externalID string, entry Entry) (Decision, error) {
	if strings.TrimSpace(externalID) == "" {
		return Decision{}, domain.Invalid("external_id", "required")
	}
	if !entry.Valid() {
		return Decision{}, domain.Invalid("entry", "must be customer or company")
	}

	var (
		account  *domain.Account
		bindings policy.Bindings
		ledger   []domain.UserPolicy
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a, err := e.accounts.Resolve(gctx, externalID)
		if err != nil {
			return domain.Retrieval("resolve account", err)
		}
		account = a
		return nil
	})
	g.Go(func() error {
		b, err := e.catalog.Bindings(gctx)
		if err != nil {
			return domain.Retrieval("policy bindings", err)
		}
		bindings = b
		return nil
	})
	g.Go(func() error {
		l, err := e.ledger.ListByExternalID(gctx, externalID)
		if err != nil {
			return domain.Retrieval("list user policies", err)
		}
		ledger = l
		return nil
	})

	if err := g.Wait(); err != nil {
		e.metrics.GateFailures.Inc()
		e.logger.Error("gate lookup failed", zap.String("external_id", externalID), zap.Error(err))
		return Decision{}, err
	}

	d := Evaluate(Input{
		Entry:   entry,
		Account: account,
		Signed:  bindings.Signed(ledger),
	})

	e.metrics.GateDecisions.WithLabelValues(string(entry), string(d.Destination)).Inc()
	e.logger.Debug("gate decision",
		zap.String("external_id", externalID),
		zap.String("entry", string(entry)),
		zap.String("destination", string(d.Destination)))

	return d, nil
}
