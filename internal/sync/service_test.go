package sync

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/gestpos/gestsync/internal/domain"
	"github.com/gestpos/gestsync/internal/extdb"
	"github.com/gestpos/gestsync/internal/store"
	"github.com/gestpos/gestsync/internal/tablename"
)

// fakeSession serves canned rows instead of a live external database.
type fakeSession struct {
	result    *extdb.Result
	err       error
	lastQuery string
	closed    bool
}

func (f *fakeSession) Execute(_ context.Context, query string, _ ...any) (*extdb.Result, error) {
	f.lastQuery = query
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeSession) Close() error {
	f.closed = true
	return nil
}

func newTestService(t *testing.T, session *fakeSession) (*Service, *store.Store) {
	t.Helper()
	st, err := store.Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("store.Open() error = %v", err)
	}
	t.Cleanup(func() { st.Close() })

	svc := New(st, "SCARL")
	svc.dial = func(ctx context.Context, p extdb.ConnParams) (querySession, error) {
		return session, nil
	}
	return svc, st
}

func testConfig() *domain.ExternalDBConfig {
	return &domain.ExternalDBConfig{
		ID:       "cfg-1",
		Name:     "legacy",
		Server:   "legacy-host",
		Database: "AHR",
		Username: "sa",
		Password: "secret",
	}
}

func seedConfig(t *testing.T, st *store.Store) *domain.ExternalDBConfig {
	t.Helper()
	cfg, err := st.CreateConfig(context.Background(), domain.ExternalDBConfig{
		Name: "legacy", Server: "legacy-host", Database: "AHR",
		Username: "sa", Password: "secret",
	})
	if err != nil {
		t.Fatalf("CreateConfig() error = %v", err)
	}
	return cfg
}

func customerRows() *extdb.Result {
	return &extdb.Result{
		Rows: []extdb.Row{
			{"ANCODICE": "C001", "ANDESCRI": "Mario Rossi", "ANTIPCON": "C", "ANLOCALI": "Milano"},
			{"ANCODICE": "C002", "ANDESCRI": "Ditta Bianchi", "ANTIPCON": "C"},
		},
		RowCount: 2,
		Command:  "SELECT",
	}
}

func TestSyncCustomers_Idempotent(t *testing.T) {
	session := &fakeSession{result: customerRows()}
	svc, st := newTestService(t, session)
	cfg := seedConfig(t, st)
	ctx := context.Background()

	first := svc.SyncCustomers(ctx, cfg, "", "")
	if !first.Success || first.UpdatedCount != 2 || first.ImportedCount != 0 {
		t.Fatalf("first sync = %+v, want success with updatedCount=2, importedCount=0", first)
	}
	rowsAfterFirst, err := st.ListCustomers(ctx)
	if err != nil {
		t.Fatalf("ListCustomers() error = %v", err)
	}

	second := svc.SyncCustomers(ctx, cfg, "", "")
	if !second.Success || second.UpdatedCount != 2 {
		t.Fatalf("second sync = %+v, want identical success", second)
	}
	rowsAfterSecond, _ := st.ListCustomers(ctx)

	if !reflect.DeepEqual(rowsAfterFirst, rowsAfterSecond) {
		t.Errorf("second run changed rows:\n first = %+v\nsecond = %+v", rowsAfterFirst, rowsAfterSecond)
	}
	if !session.closed {
		t.Error("external session was not closed")
	}
}

// An empty natural key never reaches the store, and the rest of the batch is
// still processed.
func TestSyncCustomers_EmptyKeySkipped(t *testing.T) {
	session := &fakeSession{result: &extdb.Result{
		Rows: []extdb.Row{
			{"ANCODICE": "C001", "ANDESCRI": "Mario Rossi", "ANTIPCON": "C"},
			{"ANCODICE": "", "ANDESCRI": "Invalid", "ANTIPCON": "C"},
		},
		RowCount: 2,
		Command:  "SELECT",
	}}
	svc, st := newTestService(t, session)
	cfg := seedConfig(t, st)
	ctx := context.Background()

	result := svc.SyncCustomers(ctx, cfg, "", "")
	if !result.Success {
		t.Fatalf("sync = %+v, want success", result)
	}
	if result.UpdatedCount != 1 {
		t.Errorf("UpdatedCount = %d, want 1 (invalid record skipped)", result.UpdatedCount)
	}

	customers, _ := st.ListCustomers(ctx)
	if len(customers) != 1 || customers[0].Code != "C001" {
		t.Errorf("local customers = %+v, want exactly [C001]", customers)
	}
}

func TestSyncProducts_CompanyCodeDefaults(t *testing.T) {
	session := &fakeSession{result: &extdb.Result{Command: "SELECT"}}
	svc, st := newTestService(t, session)
	cfg := seedConfig(t, st)

	result := svc.SyncProducts(context.Background(), cfg, "", "")
	if !result.Success {
		t.Fatalf("sync = %+v, want soft success on empty table", result)
	}
	if result.UpdatedCount != 0 || result.ImportedCount != 0 {
		t.Errorf("counts = %+v, want zeros", result)
	}
	if result.Error == "" || !strings.Contains(result.Error, "C3EXPPOS") {
		t.Errorf("Error = %q, want informational message naming the table", result.Error)
	}
	if !strings.Contains(session.lastQuery, "FROM C3EXPPOS") {
		t.Errorf("query = %q, want default products table", session.lastQuery)
	}
}

func TestSyncCustomers_TableOverride(t *testing.T) {
	session := &fakeSession{result: customerRows()}
	svc, st := newTestService(t, session)
	cfg := seedConfig(t, st)

	result := svc.SyncCustomers(context.Background(), cfg, "ACME", "{companyCode}_ANAG")
	if !result.Success {
		t.Fatalf("sync = %+v, want success", result)
	}
	if !strings.Contains(session.lastQuery, "FROM ACME_ANAG") {
		t.Errorf("query = %q, want override pattern applied with request company code", session.lastQuery)
	}
}

func TestSync_ExtractionFailure(t *testing.T) {
	session := &fakeSession{err: errors.New("login failed for user 'sa'")}
	svc, st := newTestService(t, session)
	cfg := seedConfig(t, st)
	ctx := context.Background()

	result := svc.SyncPaymentMethods(ctx, cfg, "", "")
	if result.Success {
		t.Fatalf("sync = %+v, want failure on query error", result)
	}
	if !strings.Contains(result.Error, "login failed") {
		t.Errorf("Error = %q, want underlying message surfaced", result.Error)
	}

	// lastSync must not advance on a failed sync.
	got, _ := st.GetConfig(ctx, cfg.ID)
	if got.LastSync != nil {
		t.Errorf("LastSync = %v, want nil after failure", got.LastSync)
	}

	runs, _ := st.ListRuns(ctx, 10)
	if len(runs) != 1 || runs[0].Status != "failure" {
		t.Errorf("runs = %+v, want one failure entry", runs)
	}
}

func TestSync_SuccessTouchesLastSyncAndHistory(t *testing.T) {
	session := &fakeSession{result: customerRows()}
	svc, st := newTestService(t, session)
	cfg := seedConfig(t, st)
	ctx := context.Background()

	if result := svc.SyncCustomers(ctx, cfg, "", ""); !result.Success {
		t.Fatalf("sync = %+v, want success", result)
	}

	got, _ := st.GetConfig(ctx, cfg.ID)
	if got.LastSync == nil {
		t.Error("LastSync not updated after successful sync")
	}

	runs, _ := st.ListRuns(ctx, 10)
	if len(runs) != 1 {
		t.Fatalf("got %d runs, want 1", len(runs))
	}
	if runs[0].Domain != "customers" || runs[0].Status != "success" ||
		runs[0].Extracted != 2 || runs[0].Updated != 2 {
		t.Errorf("run = %+v, want customers/success 2/2", runs[0])
	}
}

type captureSink struct{ runs []domain.SyncRun }

func (c *captureSink) Publish(_ context.Context, run domain.SyncRun) error {
	c.runs = append(c.runs, run)
	return nil
}

func TestSync_SinksReceiveOutcome(t *testing.T) {
	session := &fakeSession{result: customerRows()}
	svc, st := newTestService(t, session)
	sink := &captureSink{}
	svc.sinks = []ResultSink{sink}
	cfg := seedConfig(t, st)

	svc.SyncCustomers(context.Background(), cfg, "", "")
	if len(sink.runs) != 1 || sink.runs[0].Domain != "customers" {
		t.Fatalf("sink runs = %+v, want one customers entry", sink.runs)
	}
}

func TestTestConnection_UsesProbe(t *testing.T) {
	svc, _ := newTestService(t, &fakeSession{})
	var seen extdb.ConnParams
	svc.probe = func(_ context.Context, p extdb.ConnParams) bool {
		seen = p
		return true
	}

	if !svc.TestConnection(context.Background(), testConfig()) {
		t.Error("TestConnection() = false, want probe result")
	}
	if seen.Server != "legacy-host" || seen.Database != "AHR" {
		t.Errorf("probe params = %+v, want config connection fields", seen)
	}
}

// Per-record upsert failures degrade the counts but never the outcome.
func TestReconcile_FailureIsolation(t *testing.T) {
	records := []string{"a", "b", "c", "d"}
	failing := "c"

	stats := reconcile(context.Background(), tablename.Customers, records,
		func(r string) string { return r },
		func(_ context.Context, r string) error {
			if r == failing {
				return errors.New("constraint violation")
			}
			return nil
		})

	if stats.processed != 3 {
		t.Errorf("processed = %d, want 3", stats.processed)
	}
	if stats.failed != 1 {
		t.Errorf("failed = %d, want 1", stats.failed)
	}
	if stats.skipped != 0 {
		t.Errorf("skipped = %d, want 0", stats.skipped)
	}
}

func TestReconcile_EmptyKeyCounted(t *testing.T) {
	records := []string{"a", "", "b"}
	calls := 0

	stats := reconcile(context.Background(), tablename.Products, records,
		func(r string) string { return r },
		func(_ context.Context, _ string) error {
			calls++
			return nil
		})

	if stats.processed != 2 || stats.skipped != 1 {
		t.Errorf("stats = %+v, want 2 processed / 1 skipped", stats)
	}
	if calls != 2 {
		t.Errorf("upsert called %d times, want 2 (keyless record never reaches the store)", calls)
	}
}
