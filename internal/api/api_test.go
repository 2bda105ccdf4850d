package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gestpos/gestsync/internal/domain"
	"github.com/gestpos/gestsync/internal/store"
	"github.com/gestpos/gestsync/internal/sync"
)

// fakeSyncer records calls and returns canned results.
type fakeSyncer struct {
	probeResult bool
	result      sync.Result
	lastCfg     *domain.ExternalDBConfig
	lastCompany string
	lastTable   string
	lastDomain  string
}

func (f *fakeSyncer) TestConnection(_ context.Context, cfg *domain.ExternalDBConfig) bool {
	f.lastCfg = cfg
	return f.probeResult
}

func (f *fakeSyncer) record(dom string, cfg *domain.ExternalDBConfig, company, table string) sync.Result {
	f.lastDomain = dom
	f.lastCfg = cfg
	f.lastCompany = company
	f.lastTable = table
	return f.result
}

func (f *fakeSyncer) SyncProducts(_ context.Context, cfg *domain.ExternalDBConfig, company, table string) sync.Result {
	return f.record("products", cfg, company, table)
}

func (f *fakeSyncer) SyncCustomers(_ context.Context, cfg *domain.ExternalDBConfig, company, table string) sync.Result {
	return f.record("customers", cfg, company, table)
}

func (f *fakeSyncer) SyncPaymentMethods(_ context.Context, cfg *domain.ExternalDBConfig, company, table string) sync.Result {
	return f.record("paymentMethods", cfg, company, table)
}

func newTestRouter(t *testing.T) (http.Handler, *store.Store, *fakeSyncer) {
	t.Helper()
	st, err := store.Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("store.Open() error = %v", err)
	}
	t.Cleanup(func() { st.Close() })

	syncer := &fakeSyncer{probeResult: true, result: sync.Result{Success: true, UpdatedCount: 3}}
	return NewRouter(st, syncer), st, syncer
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rw := httptest.NewRecorder()
	router.ServeHTTP(rw, req)
	return rw
}

func decodeConfig(t *testing.T, rw *httptest.ResponseRecorder) domain.ExternalDBConfig {
	t.Helper()
	var cfg domain.ExternalDBConfig
	if err := json.Unmarshal(rw.Body.Bytes(), &cfg); err != nil {
		t.Fatalf("decode config: %v (body %s)", err, rw.Body.String())
	}
	return cfg
}

func configBody() map[string]any {
	return map[string]any{
		"name":     "legacy",
		"server":   "legacy-host",
		"database": "AHR",
		"username": "sa",
		"password": "secret",
	}
}

func TestHealthz(t *testing.T) {
	router, _, _ := newTestRouter(t)
	rw := doJSON(t, router, http.MethodGet, "/healthz", nil)
	if rw.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rw.Code)
	}
	if !strings.Contains(rw.Body.String(), `"status":"ok"`) {
		t.Errorf("body = %s", rw.Body.String())
	}
}

func TestConfigLifecycle(t *testing.T) {
	router, _, _ := newTestRouter(t)

	// Create: never active on creation.
	rw := doJSON(t, router, http.MethodPost, "/api/admin/external-databases/", configBody())
	if rw.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rw.Code, rw.Body.String())
	}
	created := decodeConfig(t, rw)
	if created.ID == "" || created.IsActive {
		t.Fatalf("created = %+v, want id assigned and inactive", created)
	}

	// Update.
	body := configBody()
	body["name"] = "legacy-renamed"
	rw = doJSON(t, router, http.MethodPut, "/api/admin/external-databases/"+created.ID, body)
	if rw.Code != http.StatusOK {
		t.Fatalf("update status = %d, body %s", rw.Code, rw.Body.String())
	}
	if got := decodeConfig(t, rw); got.Name != "legacy-renamed" {
		t.Errorf("updated name = %q", got.Name)
	}

	// Activate.
	rw = doJSON(t, router, http.MethodPost, "/api/admin/external-databases/"+created.ID+"/activate", nil)
	if rw.Code != http.StatusOK {
		t.Fatalf("activate status = %d, body %s", rw.Code, rw.Body.String())
	}
	if got := decodeConfig(t, rw); !got.IsActive {
		t.Errorf("activated config = %+v, want IsActive", got)
	}

	// Deleting the active configuration is refused.
	rw = doJSON(t, router, http.MethodDelete, "/api/admin/external-databases/"+created.ID, nil)
	if rw.Code != http.StatusConflict {
		t.Fatalf("delete-active status = %d, want 409", rw.Code)
	}

	// List.
	rw = doJSON(t, router, http.MethodGet, "/api/admin/external-databases/", nil)
	var configs []domain.ExternalDBConfig
	if err := json.Unmarshal(rw.Body.Bytes(), &configs); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(configs) != 1 {
		t.Errorf("got %d configs, want 1", len(configs))
	}
}

func TestCreateConfig_Validation(t *testing.T) {
	router, _, _ := newTestRouter(t)

	body := configBody()
	delete(body, "server")
	rw := doJSON(t, router, http.MethodPost, "/api/admin/external-databases/", body)
	if rw.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rw.Code)
	}
	if !strings.Contains(rw.Body.String(), "server is required") {
		t.Errorf("body = %s", rw.Body.String())
	}
}

func TestUpdateConfig_NotFound(t *testing.T) {
	router, _, _ := newTestRouter(t)
	rw := doJSON(t, router, http.MethodPut, "/api/admin/external-databases/nope", configBody())
	if rw.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rw.Code)
	}
}

func TestTestConnection_Inline(t *testing.T) {
	router, _, syncer := newTestRouter(t)

	rw := doJSON(t, router, http.MethodPost, "/api/admin/test-connection", map[string]any{
		"server":   "legacy-host",
		"database": "AHR",
		"username": "sa",
		"password": "secret",
	})
	if rw.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rw.Code, rw.Body.String())
	}
	if !strings.Contains(rw.Body.String(), `"success":true`) {
		t.Errorf("body = %s", rw.Body.String())
	}
	if syncer.lastCfg == nil || syncer.lastCfg.Server != "legacy-host" {
		t.Errorf("probed config = %+v", syncer.lastCfg)
	}

	// Missing server/database.
	rw = doJSON(t, router, http.MethodPost, "/api/admin/test-connection", map[string]any{})
	if rw.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rw.Code)
	}
}

func TestTestConnection_SavedConfig(t *testing.T) {
	router, st, _ := newTestRouter(t)
	cfg, err := st.CreateConfig(context.Background(), domain.ExternalDBConfig{
		Name: "legacy", Server: "legacy-host", Database: "AHR",
	})
	if err != nil {
		t.Fatalf("CreateConfig: %v", err)
	}

	rw := doJSON(t, router, http.MethodPost, "/api/admin/test-connection", map[string]any{"configId": cfg.ID})
	if rw.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rw.Code, rw.Body.String())
	}

	rw = doJSON(t, router, http.MethodPost, "/api/admin/test-connection", map[string]any{"configId": "nope"})
	if rw.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rw.Code)
	}
}

func TestSyncNow_NoActiveConfig(t *testing.T) {
	router, _, _ := newTestRouter(t)
	rw := doJSON(t, router, http.MethodPost, "/api/admin/sync/products-now", nil)
	if rw.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409 without active config", rw.Code)
	}
}

func TestSyncNow_RunsAgainstActiveConfig(t *testing.T) {
	router, st, syncer := newTestRouter(t)
	cfg, _ := st.CreateConfig(context.Background(), domain.ExternalDBConfig{
		Name: "legacy", Server: "legacy-host", Database: "AHR",
	})
	if err := st.SetActive(context.Background(), cfg.ID); err != nil {
		t.Fatalf("SetActive: %v", err)
	}

	rw := doJSON(t, router, http.MethodPost, "/api/admin/sync/customers-now", map[string]any{
		"companyCode": "ACME",
		"tableName":   "{companyCode}_ANAG",
	})
	if rw.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rw.Code, rw.Body.String())
	}

	var result sync.Result
	if err := json.Unmarshal(rw.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if !result.Success || result.UpdatedCount != 3 {
		t.Errorf("result = %+v", result)
	}
	if syncer.lastDomain != "customers" || syncer.lastCompany != "ACME" || syncer.lastTable != "{companyCode}_ANAG" {
		t.Errorf("sync called with domain=%q company=%q table=%q", syncer.lastDomain, syncer.lastCompany, syncer.lastTable)
	}

	// Empty body is accepted.
	rw = doJSON(t, router, http.MethodPost, "/api/admin/sync/payment-methods-now", nil)
	if rw.Code != http.StatusOK {
		t.Fatalf("empty-body status = %d", rw.Code)
	}
	if syncer.lastDomain != "paymentMethods" {
		t.Errorf("domain = %q, want paymentMethods", syncer.lastDomain)
	}
}

func TestSyncNow_FailureStillHTTP200(t *testing.T) {
	router, st, syncer := newTestRouter(t)
	syncer.result = sync.Result{Success: false, Error: "login failed"}
	cfg, _ := st.CreateConfig(context.Background(), domain.ExternalDBConfig{
		Name: "legacy", Server: "legacy-host", Database: "AHR",
	})
	st.SetActive(context.Background(), cfg.ID)

	rw := doJSON(t, router, http.MethodPost, "/api/admin/sync/products-now", nil)
	if rw.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 with failure body", rw.Code)
	}
	if !strings.Contains(rw.Body.String(), `"success":false`) {
		t.Errorf("body = %s", rw.Body.String())
	}
}

func TestListRuns(t *testing.T) {
	router, st, _ := newTestRouter(t)
	if _, err := st.RecordRun(context.Background(), domain.SyncRun{
		Domain: "products", ConfigID: "cfg-1", Status: "success",
	}); err != nil {
		t.Fatalf("RecordRun: %v", err)
	}

	rw := doJSON(t, router, http.MethodGet, "/api/admin/sync/runs", nil)
	if rw.Code != http.StatusOK {
		t.Fatalf("status = %d", rw.Code)
	}
	var runs []domain.SyncRun
	if err := json.Unmarshal(rw.Body.Bytes(), &runs); err != nil {
		t.Fatalf("decode runs: %v", err)
	}
	if len(runs) != 1 || runs[0].Domain != "products" {
		t.Errorf("runs = %+v", runs)
	}

	rw = doJSON(t, router, http.MethodGet, "/api/admin/sync/runs?limit=abc", nil)
	if rw.Code != http.StatusBadRequest {
		t.Errorf("bad limit status = %d, want 400", rw.Code)
	}
}

func TestExportProducts(t *testing.T) {
	router, st, _ := newTestRouter(t)
	if err := st.UpsertProduct(context.Background(), domain.Product{
		Code: "P001", Description: "Espresso beans", Price: "12.50", VATRate: "10",
	}); err != nil {
		t.Fatalf("UpsertProduct: %v", err)
	}

	rw := doJSON(t, router, http.MethodGet, "/api/admin/export/products.xlsx", nil)
	if rw.Code != http.StatusOK {
		t.Fatalf("status = %d", rw.Code)
	}
	if got := rw.Header().Get("Content-Type"); got != xlsxContentType {
		t.Errorf("Content-Type = %q", got)
	}
	if rw.Body.Len() == 0 {
		t.Error("empty workbook body")
	}
}
