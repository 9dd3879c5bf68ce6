package service

import (
	"context"

	"github.com/BenAnderson8181/BusApp/internal/audit"
	"github.com/BenAnderson8181/BusApp/internal/domain"
	"github.com/BenAnderson8181/BusApp/internal/infra"
	"github.com/BenAnderson8181/BusApp/internal/metrics"
	"github.com/BenAnderson8181/BusApp/internal/policy"
	"go.uber.org/zap"
)

// MinSignatureLength rejects blank or truncated canvas exports. It matches
// the min tag on SignatureInput.Signature.
const MinSignatureLength = 2000

type LedgerRepository interface {
	UpsertUserPolicy(ctx context.Context, up *domain.UserPolicy) error
	ListUserPolicies(ctx context.Context, userID string) ([]domain.UserPolicy, error)
	UpsertUserSignature(ctx context.Context, s *domain.UserSignature) error
	FindUserSignature(ctx context.Context, userID string) (*domain.UserSignature, error)
}

// UserLookup resolves the two ways a caller may name a user.
type UserLookup interface {
	FindAccountByID(ctx context.Context, id string) (*domain.Account, error)
	FindAccountByExternalID(ctx context.Context, externalID string) (*domain.Account, error)
}

type BindingSource interface {
	Bindings(ctx context.Context) (policy.Bindings, error)
}

// ListQuery names a user by internal id or by external identity, never both.
// Callers may only name themselves unless they are administrators.
type ListQuery struct {
	UserID     string
	ExternalID string
}

type UserPolicyInput struct {
	UserID   string `json:"user_id" validate:"required"`
	PolicyID string `json:"policy_id" validate:"required"`
	Signed   bool   `json:"signed"`
	Rejected *bool  `json:"rejected,omitempty"`
}

type SignatureInput struct {
	UserID    string `json:"user_id" validate:"required"`
	Signature string `json:"signature" validate:"required,min=2000,startswith=data:image/"`
}

// LedgerService owns the user-policy ledger and user signatures.
type LedgerService struct {
	repo    LedgerRepository
	users   UserLookup
	catalog BindingSource
	trail   audit.Recorder
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func NewLedgerService(repo LedgerRepository, users UserLookup, catalog BindingSource, trail audit.Recorder, m *metrics.Metrics, logger *zap.Logger) *LedgerService {
	if m == nil {
		m = metrics.New(nil)
	}
	return &LedgerService{
		repo:    repo,
		users:   users,
		catalog: catalog,
		trail:   trail,
		metrics: m,
		logger:  logger.Named("ledger"),
	}
}

// resolveUserID turns a ListQuery into an internal user id the caller may read.
// An external id nobody is bound to is NotFound rather than an empty result.
func (s *LedgerService) resolveUserID(ctx context.Context, op, actor string, q ListQuery) (string, error) {
	hasUser, hasExternal := q.UserID != "", q.ExternalID != ""
	if hasUser == hasExternal {
		return "", domain.Invalid("user_id", "exactly one of user_id or external_id is required")
	}
	caller, err := s.caller(ctx, op, actor)
	if err != nil {
		return "", err
	}
	userID := q.UserID
	if hasExternal {
		a, err := s.users.FindAccountByExternalID(ctx, q.ExternalID)
		if err != nil {
			return "", domain.Retrieval(op, err)
		}
		if a == nil {
			return "", domain.NotFound(op, "no account for external id")
		}
		userID = a.ID
	}
	if err := requireSelf(caller, op, userID); err != nil {
		return "", err
	}
	return userID, nil
}

// caller resolves the acting identity to its account.
func (s *LedgerService) caller(ctx context.Context, op, actor string) (*domain.Account, error) {
	a, err := s.users.FindAccountByExternalID(ctx, actor)
	if err != nil {
		return nil, domain.Retrieval(op, err)
	}
	if a == nil {
		return nil, domain.NotFound(op, "no account for identity")
	}
	return a, nil
}

// requireUser checks that userID exists and that the actor may write for it.
func (s *LedgerService) requireUser(ctx context.Context, op, actor, userID string) error {
	caller, err := s.caller(ctx, op, actor)
	if err != nil {
		return err
	}
	if err := requireSelf(caller, op, userID); err != nil {
		return err
	}
	if caller.ID == userID {
		return nil
	}
	a, err := s.users.FindAccountByID(ctx, userID)
	if err != nil {
		return domain.Retrieval(op, err)
	}
	if a == nil {
		return domain.NotFound(op, "user "+userID)
	}
	return nil
}

// UpsertUserPolicy records that a user signed (or declined) a policy.
// Repeated submissions for the same user and policy update the one row.
func (s *LedgerService) UpsertUserPolicy(ctx context.Context, actor string, in UserPolicyInput) (*domain.UserPolicy, error) {
	const op = "upsert user policy"

	if err := check(in); err != nil {
		return nil, err
	}
	if err := s.requireUser(ctx, op, actor, in.UserID); err != nil {
		return nil, err
	}

	up := &domain.UserPolicy{
		UserID:   in.UserID,
		PolicyID: in.PolicyID,
		Signed:   in.Signed,
	}
	if in.Rejected != nil {
		up.Rejected = *in.Rejected
	}

	if err := s.repo.UpsertUserPolicy(ctx, up); err != nil {
		s.metrics.LedgerWrites.WithLabelValues(string(audit.RecordUserPolicy), "error").Inc()
		s.logger.Error("ledger write failed",
			zap.String("user_id", up.UserID),
			zap.String("policy_id", up.PolicyID),
			zap.Error(err))
		return nil, domain.Persistence(op, err)
	}
	s.metrics.LedgerWrites.WithLabelValues(string(audit.RecordUserPolicy), "ok").Inc()

	s.trail.Record(audit.ConsentEvent{
		TraceID:    infra.TraceID(ctx),
		UserID:     up.UserID,
		ActorID:    actor,
		Record:     audit.RecordUserPolicy,
		PolicyID:   up.PolicyID,
		PolicyKind: string(s.kindOf(ctx, up.PolicyID)),
		Signed:     up.Signed,
		Rejected:   up.Rejected,
	})
	return up, nil
}

// kindOf is best effort; an unbound policy is recorded without a kind.
func (s *LedgerService) kindOf(ctx context.Context, policyID string) domain.PolicyKind {
	b, err := s.catalog.Bindings(ctx)
	if err != nil {
		return ""
	}
	k, _ := b.KindOf(policyID)
	return k
}

func (s *LedgerService) ListUserPolicies(ctx context.Context, actor string, q ListQuery) ([]domain.UserPolicy, error) {
	const op = "list user policies"
	userID, err := s.resolveUserID(ctx, op, actor, q)
	if err != nil {
		return nil, err
	}
	out, err := s.repo.ListUserPolicies(ctx, userID)
	if err != nil {
		return nil, domain.Retrieval(op, err)
	}
	return out, nil
}

// UpsertUserSignature stores the user's drawn signature, one per user.
func (s *LedgerService) UpsertUserSignature(ctx context.Context, actor string, in SignatureInput) (*domain.UserSignature, error) {
	const op = "upsert user signature"

	if err := check(in); err != nil {
		return nil, err
	}
	if err := s.requireUser(ctx, op, actor, in.UserID); err != nil {
		return nil, err
	}

	sig := &domain.UserSignature{UserID: in.UserID, Signature: in.Signature}
	if err := s.repo.UpsertUserSignature(ctx, sig); err != nil {
		s.metrics.LedgerWrites.WithLabelValues(string(audit.RecordSignature), "error").Inc()
		s.logger.Error("signature write failed", zap.String("user_id", in.UserID), zap.Error(err))
		return nil, domain.Persistence(op, err)
	}
	s.metrics.LedgerWrites.WithLabelValues(string(audit.RecordSignature), "ok").Inc()

	s.trail.Record(audit.ConsentEvent{
		TraceID: infra.TraceID(ctx),
		UserID:  sig.UserID,
		ActorID: actor,
		Record:  audit.RecordSignature,
		Signed:  true,
		Digest:  audit.Digest(sig.Signature),
	})
	return sig, nil
}

func (s *LedgerService) LoadUserSignature(ctx context.Context, actor string, q ListQuery) (*domain.UserSignature, error) {
	const op = "load user signature"
	userID, err := s.resolveUserID(ctx, op, actor, q)
	if err != nil {
		return nil, err
	}
	sig, err := s.repo.FindUserSignature(ctx, userID)
	if err != nil {
		return nil, domain.Retrieval(op, err)
	}
	if sig == nil {
		return nil, domain.NotFound(op, "no signature for user")
	}
	return sig, nil
}
