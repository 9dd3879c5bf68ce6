package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/BenAnderson8181/BusApp/internal/audit"
	"github.com/BenAnderson8181/BusApp/internal/domain"
	"github.com/BenAnderson8181/BusApp/internal/infra"
	"github.com/BenAnderson8181/BusApp/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"go.uber.org/zap"
)

func newLedger(t *testing.T) (*LedgerService, *memStore, *fakeTrail, *metrics.Metrics) {
	t.Helper()
	store := newMemStore()
	store.addAccount(domain.Account{ID: "u1", ExternalID: "ext-1", UserType: typeCustomer})
	trail := &fakeTrail{}
	m := metrics.New(nil)
	return NewLedgerService(store, store, fakeBindings{}, trail, m, zap.NewNop()), store, trail, m
}

func counterValue(c prometheus.Counter) float64 {
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		return -1
	}
	return m.GetCounter().GetValue()
}

func signature() string {
	return "data:image/png;base64," + strings.Repeat("A", MinSignatureLength)
}

func TestUpsertUserPolicyIdempotent(t *testing.T) {
	svc, store, trail, m := newLedger(t)
	ctx := infra.WithTraceID(context.Background(), "trace-1")

	first, err := svc.UpsertUserPolicy(ctx, "ext-1", UserPolicyInput{UserID: "u1", PolicyID: "p-esig", Signed: true})
	if err != nil {
		t.Fatal(err)
	}
	second, err := svc.UpsertUserPolicy(ctx, "ext-1", UserPolicyInput{UserID: "u1", PolicyID: "p-esig", Signed: true})
	if err != nil {
		t.Fatal(err)
	}
	if first.ID != second.ID || len(store.ledger) != 1 {
		t.Fatalf("expected a single ledger row, got %d (ids %s, %s)", len(store.ledger), first.ID, second.ID)
	}
	if first.Rejected {
		t.Fatal("rejected must default to false")
	}

	if len(trail.events) != 2 {
		t.Fatalf("expected 2 consent events, got %d", len(trail.events))
	}
	e := trail.events[0]
	if e.TraceID != "trace-1" || e.ActorID != "ext-1" || e.PolicyKind != string(domain.KindESignature) || e.Record != audit.RecordUserPolicy {
		t.Fatalf("unexpected consent event %+v", e)
	}
	if got := counterValue(m.LedgerWrites.WithLabelValues("user_policy", "ok")); got != 2 {
		t.Fatalf("ledger ok writes = %v", got)
	}
}

func TestUpsertUserPolicyRejectedFlag(t *testing.T) {
	svc, _, _, _ := newLedger(t)
	yes := true
	up, err := svc.UpsertUserPolicy(context.Background(), "ext-1", UserPolicyInput{UserID: "u1", PolicyID: "p-consumer", Rejected: &yes})
	if err != nil {
		t.Fatal(err)
	}
	if !up.Rejected || up.Signed {
		t.Fatalf("unexpected row %+v", up)
	}
}

func TestUpsertUserPolicyFailures(t *testing.T) {
	svc, store, trail, m := newLedger(t)
	ctx := context.Background()

	if _, err := svc.UpsertUserPolicy(ctx, "ext-1", UserPolicyInput{UserID: "u1"}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("missing policy id: %v", err)
	}
	if _, err := svc.UpsertUserPolicy(ctx, "ext-1", UserPolicyInput{UserID: "u-missing", PolicyID: "p-esig"}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("missing user: %v", err)
	}

	store.failWrites = errors.New("connection reset")
	up, err := svc.UpsertUserPolicy(ctx, "ext-1", UserPolicyInput{UserID: "u1", PolicyID: "p-esig", Signed: true})
	if up != nil || !errors.Is(err, domain.ErrPersistence) {
		t.Fatalf("expected persistence failure, got (%v, %v)", up, err)
	}
	if len(trail.events) != 0 {
		t.Fatal("failed write must not be audited")
	}
	if got := counterValue(m.LedgerWrites.WithLabelValues("user_policy", "error")); got != 1 {
		t.Fatalf("ledger error writes = %v", got)
	}
}

func TestListUserPoliciesQuery(t *testing.T) {
	svc, _, _, _ := newLedger(t)
	ctx := context.Background()
	if _, err := svc.UpsertUserPolicy(ctx, "ext-1", UserPolicyInput{UserID: "u1", PolicyID: "p-esig", Signed: true}); err != nil {
		t.Fatal(err)
	}

	byID, err := svc.ListUserPolicies(ctx, "ext-1", ListQuery{UserID: "u1"})
	if err != nil || len(byID) != 1 {
		t.Fatalf("by user id: %v, %d rows", err, len(byID))
	}
	byExt, err := svc.ListUserPolicies(ctx, "ext-1", ListQuery{ExternalID: "ext-1"})
	if err != nil || len(byExt) != 1 {
		t.Fatalf("by external id: %v, %d rows", err, len(byExt))
	}

	for name, q := range map[string]ListQuery{
		"neither": {},
		"both":    {UserID: "u1", ExternalID: "ext-1"},
	} {
		if _, err := svc.ListUserPolicies(ctx, "ext-1", q); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("%s: expected validation error, got %v", name, err)
		}
	}
	if _, err := svc.ListUserPolicies(ctx, "ext-1", ListQuery{ExternalID: "ext-unknown"}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("unresolvable external id: %v", err)
	}
}

func TestUserSignature(t *testing.T) {
	svc, store, trail, _ := newLedger(t)
	ctx := context.Background()

	if _, err := svc.UpsertUserSignature(ctx, "ext-1", SignatureInput{UserID: "u1", Signature: "data:image/png;base64,AAAA"}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("short signature: %v", err)
	}
	if _, err := svc.UpsertUserSignature(ctx, "ext-1", SignatureInput{UserID: "u1", Signature: strings.Repeat("x", MinSignatureLength)}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("non image signature: %v", err)
	}
	if _, err := svc.UpsertUserSignature(ctx, "ext-1", SignatureInput{UserID: "u-missing", Signature: signature()}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("missing user: %v", err)
	}

	if _, err := svc.LoadUserSignature(ctx, "ext-1", ListQuery{UserID: "u1"}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("no signature yet: %v", err)
	}

	first, err := svc.UpsertUserSignature(ctx, "ext-1", SignatureInput{UserID: "u1", Signature: signature()})
	if err != nil {
		t.Fatal(err)
	}
	second, err := svc.UpsertUserSignature(ctx, "ext-1", SignatureInput{UserID: "u1", Signature: signature() + "B"})
	if err != nil {
		t.Fatal(err)
	}
	if first.ID != second.ID || len(store.signatures) != 1 {
		t.Fatal("signature must be unique per user")
	}

	got, err := svc.LoadUserSignature(ctx, "ext-1", ListQuery{ExternalID: "ext-1"})
	if err != nil || !strings.HasSuffix(got.Signature, "B") {
		t.Fatalf("load: %v", err)
	}

	e := trail.events[len(trail.events)-1]
	if e.Record != audit.RecordSignature || e.Digest != audit.Digest(signature()+"B") {
		t.Fatalf("unexpected signature event %+v", e)
	}
	if strings.Contains(e.Digest, "data:image") {
		t.Fatal("signature leaked into the trail")
	}
}

func TestLedgerIsScopedToCaller(t *testing.T) {
	svc, store, trail, _ := newLedger(t)
	store.addAccount(domain.Account{ID: "u2", ExternalID: "ext-2", UserType: typeCustomer})
	store.addAccount(domain.Account{ID: "u9", ExternalID: "ext-root", UserType: typeAdministrator})
	ctx := context.Background()

	if _, err := svc.UpsertUserPolicy(ctx, "ext-2", UserPolicyInput{UserID: "u1", PolicyID: "p-esig", Signed: true}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("foreign policy upsert: %v", err)
	}
	if _, err := svc.UpsertUserSignature(ctx, "ext-2", SignatureInput{UserID: "u1", Signature: signature()}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("foreign signature upsert: %v", err)
	}
	if len(store.ledger) != 0 || len(store.signatures) != 0 || len(trail.events) != 0 {
		t.Fatal("foreign write reached the ledger")
	}
	if _, err := svc.UpsertUserPolicy(ctx, "ext-unknown", UserPolicyInput{UserID: "u1", PolicyID: "p-esig"}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("caller without account: %v", err)
	}

	if _, err := svc.UpsertUserPolicy(ctx, "ext-root", UserPolicyInput{UserID: "u1", PolicyID: "p-esig", Signed: true}); err != nil {
		t.Fatalf("administrator upsert: %v", err)
	}
	if _, err := svc.UpsertUserSignature(ctx, "ext-1", SignatureInput{UserID: "u1", Signature: signature()}); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.ListUserPolicies(ctx, "ext-2", ListQuery{UserID: "u1"}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("foreign list by user id: %v", err)
	}
	if _, err := svc.ListUserPolicies(ctx, "ext-2", ListQuery{ExternalID: "ext-1"}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("foreign list by external id: %v", err)
	}
	if _, err := svc.LoadUserSignature(ctx, "ext-2", ListQuery{UserID: "u1"}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("foreign signature load: %v", err)
	}

	rows, err := svc.ListUserPolicies(ctx, "ext-root", ListQuery{UserID: "u1"})
	if err != nil || len(rows) != 1 {
		t.Fatalf("administrator list: %v, %d rows", err, len(rows))
	}
	if _, err := svc.LoadUserSignature(ctx, "ext-root", ListQuery{ExternalID: "ext-1"}); err != nil {
		t.Fatalf("administrator load: %v", err)
	}
	if _, err := svc.UpsertUserPolicy(ctx, "ext-root", UserPolicyInput{UserID: "u-missing", PolicyID: "p-esig"}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("administrator on missing user: %v", err)
	}
}
