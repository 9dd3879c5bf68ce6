package postgres

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/BenAnderson8181/BusApp/internal/audit"
	"github.com/BenAnderson8181/BusApp/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// fakeRow scans fixed values, or returns err.
type fakeRow struct {
	vals []any
	err  error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	for i, d := range dest {
		if i >= len(r.vals) {
			break
		}
		switch p := d.(type) {
		case *string:
			*p = r.vals[i].(string)
		case *time.Time:
			*p = r.vals[i].(time.Time)
		case *bool:
			*p = r.vals[i].(bool)
		}
	}
	return nil
}

// ledgerDB emulates the unique (user_id, policy_id) upsert.
type ledgerDB struct {
	rows    map[string]string // user|policy -> id
	queries []string
	args    [][]any
	tag     string
	rowErr  error
}

func (db *ledgerDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	db.queries = append(db.queries, sql)
	db.args = append(db.args, args)
	return pgconn.NewCommandTag(db.tag), nil
}

func (db *ledgerDB) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("not used")
}

func (db *ledgerDB) Begin(context.Context) (pgx.Tx, error) {
	return nil, errors.New("not used")
}

func (db *ledgerDB) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	db.queries = append(db.queries, sql)
	db.args = append(db.args, args)
	if db.rowErr != nil {
		return fakeRow{err: db.rowErr}
	}
	if strings.Contains(sql, "INSERT INTO user_policies") {
		key := args[1].(string) + "|" + args[2].(string)
		id, ok := db.rows[key]
		if !ok {
			id = args[0].(string)
			db.rows[key] = id
		}
		return fakeRow{vals: []any{id, time.Unix(0, 0), time.Now()}}
	}
	return fakeRow{err: pgx.ErrNoRows}
}

func TestUpsertUserPolicyIsKeyedOnUserAndPolicy(t *testing.T) {
	if !strings.Contains(upsertUserPolicySQL, "ON CONFLICT (user_id, policy_id) DO UPDATE") {
		t.Fatal("ledger upsert must target the (user_id, policy_id) unique key")
	}

	db := &ledgerDB{rows: map[string]string{}}
	r := NewRepo(db)

	first := &domain.UserPolicy{UserID: "u1", PolicyID: "p1", Signed: false}
	second := &domain.UserPolicy{UserID: "u1", PolicyID: "p1", Signed: true}
	if err := r.UpsertUserPolicy(context.Background(), first); err != nil {
		t.Fatal(err)
	}
	if err := r.UpsertUserPolicy(context.Background(), second); err != nil {
		t.Fatal(err)
	}

	if len(db.rows) != 1 {
		t.Fatalf("expected one ledger row, got %d", len(db.rows))
	}
	if first.ID == "" || first.ID != second.ID {
		t.Fatalf("second upsert must return the first row: %q vs %q", first.ID, second.ID)
	}
	if db.args[1][3] != true || db.args[1][4] != false {
		t.Fatalf("unexpected upsert args %v", db.args[1])
	}
}

func TestUpsertSignatureIsKeyedOnUser(t *testing.T) {
	if !strings.Contains(upsertSignatureSQL, "ON CONFLICT (user_id) DO UPDATE") {
		t.Fatal("signature upsert must target the user_id unique key")
	}
}

func TestFindAccountAbsentIsNotAnError(t *testing.T) {
	r := NewRepo(&ledgerDB{rows: map[string]string{}})
	a, err := r.FindAccountByExternalID(context.Background(), "ext-unknown")
	if err != nil || a != nil {
		t.Fatalf("expected (nil, nil), got (%v, %v)", a, err)
	}
}

func TestFindAccountFailureIsWrapped(t *testing.T) {
	boom := errors.New("conn refused")
	r := NewRepo(&ledgerDB{rowErr: boom})
	_, err := r.FindAccountByExternalID(context.Background(), "ext-1")
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped cause, got %v", err)
	}
}

func TestUpdateMissingRowIsNotFound(t *testing.T) {
	r := NewRepo(&ledgerDB{tag: "UPDATE 0"})
	err := r.SetAccountCompany(context.Background(), "u-missing", "c1")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	r = NewRepo(&ledgerDB{tag: "UPDATE 1"})
	if err := r.InactivateCompany(context.Background(), "c1"); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestBuildConsentInsert(t *testing.T) {
	now := time.Now()
	q, vals := buildConsentInsert([]audit.ConsentEvent{
		{ID: "e1", UserID: "u1", Record: audit.RecordUserPolicy, PolicyID: "p1", Signed: true, Timestamp: now},
		{ID: "e2", UserID: "u1", Record: audit.RecordSignature, Digest: "abc", Timestamp: now},
	})
	if len(vals) != 2*consentEventColumns {
		t.Fatalf("expected %d args, got %d", 2*consentEventColumns, len(vals))
	}
	if !strings.Contains(q, "($12, $13,") || !strings.HasSuffix(q, "$22) ON CONFLICT (id) DO NOTHING") {
		t.Fatalf("unexpected placeholders: %s", q)
	}
	if vals[4] != "user_policy" || vals[15] != "signature" {
		t.Fatalf("unexpected record values %v %v", vals[4], vals[15])
	}
}

func TestWriteBatchEmpty(t *testing.T) {
	db := &ledgerDB{}
	if err := NewRepo(db).WriteBatch(context.Background(), nil); err != nil {
		t.Fatal(err)
	}
	if len(db.queries) != 0 {
		t.Fatal("empty batch must not hit the database")
	}
}

// txDB hands out transactions and keeps only what they commit.
type txDB struct {
	ledgerDB
	companies map[string]bool
	attachTag string
	commits   int
	rollbacks int
}

func (db *txDB) Begin(context.Context) (pgx.Tx, error) {
	return &fakeTx{db: db, pending: map[string]bool{}}, nil
}

type fakeTx struct {
	pgx.Tx
	db      *txDB
	pending map[string]bool
	done    bool
}

func (tx *fakeTx) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	if strings.Contains(sql, "INSERT INTO companies") {
		tx.pending[args[0].(string)] = true
		return fakeRow{vals: []any{true, time.Now(), time.Now()}}
	}
	return fakeRow{err: pgx.ErrNoRows}
}

func (tx *fakeTx) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(tx.db.attachTag), nil
}

func (tx *fakeTx) Commit(context.Context) error {
	if tx.done {
		return pgx.ErrTxClosed
	}
	tx.done = true
	for id := range tx.pending {
		tx.db.companies[id] = true
	}
	tx.db.commits++
	return nil
}

func (tx *fakeTx) Rollback(context.Context) error {
	if tx.done {
		return pgx.ErrTxClosed
	}
	tx.done = true
	tx.db.rollbacks++
	return nil
}

func TestCreateCompanyForAccountRollsBackFailedAttach(t *testing.T) {
	db := &txDB{companies: map[string]bool{}, attachTag: "UPDATE 0"}
	r := NewRepo(db)
	ctx := context.Background()

	for range 2 {
		err := r.CreateCompanyForAccount(ctx, &domain.Company{Name: "Wasatch Coaches"}, "u-missing")
		if !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected attach failure, got %v", err)
		}
	}
	if len(db.companies) != 0 || db.commits != 0 || db.rollbacks != 2 {
		t.Fatalf("companies=%d commits=%d rollbacks=%d", len(db.companies), db.commits, db.rollbacks)
	}

	db.attachTag = "UPDATE 1"
	c := &domain.Company{Name: "Wasatch Coaches"}
	if err := r.CreateCompanyForAccount(ctx, c, "u1"); err != nil {
		t.Fatal(err)
	}
	if !db.companies[c.ID] || db.commits != 1 || !c.IsActive {
		t.Fatalf("company not committed: %+v", db.companies)
	}
}
