// Package sync orchestrates the three extraction+reconciliation pipelines
// against the external gestionale: resolve the source table, open a
// transient connection, extract and map the rows, and upsert them into the
// local store with per-record failure isolation.
package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/gestpos/gestsync/internal/domain"
	"github.com/gestpos/gestsync/internal/extdb"
	"github.com/gestpos/gestsync/internal/extract"
	"github.com/gestpos/gestsync/internal/store"
	"github.com/gestpos/gestsync/internal/tablename"
)

// Result is the externally observed outcome of one domain sync, serialized
// as-is by the admin endpoints. ImportedCount is always zero: the engine
// does not distinguish true inserts from updates and reports every
// successfully processed record under UpdatedCount. Error doubles as an
// informational message on the soft zero-rows condition (Success stays
// true there).
type Result struct {
	Success       bool   `json:"success"`
	ImportedCount int    `json:"importedCount"`
	UpdatedCount  int    `json:"updatedCount"`
	Error         string `json:"error,omitempty"`
}

// querySession is the slice of an extdb.Session the pipelines use.
type querySession interface {
	extract.Querier
	Close() error
}

// Dialer opens a session to the external database. Swapped out in tests.
type Dialer func(ctx context.Context, p extdb.ConnParams) (querySession, error)

// ResultSink receives the record of a finished sync run (Redis state
// publication, message-bus notification). Sinks are best-effort: a sink
// error is logged, never surfaced to the sync caller.
type ResultSink interface {
	Publish(ctx context.Context, run domain.SyncRun) error
}

// Service runs sync operations for one local store.
type Service struct {
	store              *store.Store
	dial               Dialer
	probe              func(ctx context.Context, p extdb.ConnParams) bool
	sinks              []ResultSink
	defaultCompanyCode string
}

// New builds a Service with the real external-database transport.
func New(st *store.Store, defaultCompanyCode string, sinks ...ResultSink) *Service {
	return &Service{
		store: st,
		dial: func(ctx context.Context, p extdb.ConnParams) (querySession, error) {
			return extdb.Open(ctx, p)
		},
		probe:              extdb.Test,
		sinks:              sinks,
		defaultCompanyCode: defaultCompanyCode,
	}
}

// TestConnection reports whether the configuration can reach its external
// database. Never returns an error: any failure is false.
func (s *Service) TestConnection(ctx context.Context, cfg *domain.ExternalDBConfig) bool {
	return s.probe(ctx, connParams(cfg))
}

// SyncProducts extracts not-yet-imported articles for the company and
// reconciles them into the local catalog.
func (s *Service) SyncProducts(ctx context.Context, cfg *domain.ExternalDBConfig, companyCode, tableOverride string) Result {
	companyCode = s.companyCode(cfg, companyCode)
	return s.run(ctx, cfg, tablename.Products, companyCode,
		override(tableOverride, cfg.Options.SyncTableNames.Products),
		func(ctx context.Context, q extract.Querier, table tablename.Table) (int, reconcileStats, error) {
			products, err := extract.Products(ctx, q, table, companyCode)
			if err != nil {
				return 0, reconcileStats{}, err
			}
			stats := reconcile(ctx, tablename.Products, products,
				func(p domain.Product) string { return p.Code },
				s.store.UpsertProduct)
			return len(products), stats, nil
		})
}

// SyncCustomers extracts customer-type account rows and reconciles them
// into the local registry.
func (s *Service) SyncCustomers(ctx context.Context, cfg *domain.ExternalDBConfig, companyCode, tableOverride string) Result {
	return s.run(ctx, cfg, tablename.Customers, s.companyCode(cfg, companyCode),
		override(tableOverride, cfg.Options.SyncTableNames.Customers),
		func(ctx context.Context, q extract.Querier, table tablename.Table) (int, reconcileStats, error) {
			customers, err := extract.Customers(ctx, q, table)
			if err != nil {
				return 0, reconcileStats{}, err
			}
			stats := reconcile(ctx, tablename.Customers, customers,
				func(c domain.Customer) string { return c.Code },
				s.store.UpsertCustomer)
			return len(customers), stats, nil
		})
}

// SyncPaymentMethods extracts the tender table and reconciles it into the
// local payment methods.
func (s *Service) SyncPaymentMethods(ctx context.Context, cfg *domain.ExternalDBConfig, companyCode, tableOverride string) Result {
	return s.run(ctx, cfg, tablename.PaymentMethods, s.companyCode(cfg, companyCode),
		override(tableOverride, cfg.Options.SyncTableNames.PaymentMethods),
		func(ctx context.Context, q extract.Querier, table tablename.Table) (int, reconcileStats, error) {
			methods, err := extract.PaymentMethods(ctx, q, table)
			if err != nil {
				return 0, reconcileStats{}, err
			}
			stats := reconcile(ctx, tablename.PaymentMethods, methods,
				func(m domain.PaymentMethod) string { return m.Code },
				s.store.UpsertPaymentMethod)
			return len(methods), stats, nil
		})
}

// pipeline extracts and reconciles one domain over an open session,
// returning the extracted row count alongside the reconcile stats.
type pipeline func(ctx context.Context, q extract.Querier, table tablename.Table) (int, reconcileStats, error)

// run is the shared skeleton of every domain sync: resolve, dial, extract,
// reconcile, then record the outcome. Extraction-level failures (connection,
// query, resolution) produce Success=false; record-level failures inside the
// reconcile loop never do.
func (s *Service) run(ctx context.Context, cfg *domain.ExternalDBConfig,
	dom tablename.Domain, companyCode, tableOverride string, p pipeline) Result {

	started := time.Now().UTC()

	table, err := tablename.Resolve(dom, companyCode, tableOverride)
	if err != nil {
		return s.finish(ctx, cfg, dom, started, 0, reconcileStats{}, err)
	}

	session, err := s.dial(ctx, connParams(cfg))
	if err != nil {
		return s.finish(ctx, cfg, dom, started, 0, reconcileStats{}, err)
	}
	defer session.Close()

	extracted, stats, err := p(ctx, session, table)
	if err != nil {
		return s.finish(ctx, cfg, dom, started, 0, reconcileStats{}, err)
	}

	result := s.finish(ctx, cfg, dom, started, extracted, stats, nil)
	if extracted == 0 {
		result.Error = fmt.Sprintf("no %s rows to import from %s", dom, table.Name())
	}
	return result
}

// finish records the run, updates lastSync on success, fans the outcome out
// to the sinks and builds the Result. Bookkeeping failures are logged, never
// propagated: the sync outcome is already decided by this point.
func (s *Service) finish(ctx context.Context, cfg *domain.ExternalDBConfig,
	dom tablename.Domain, started time.Time, extracted int, stats reconcileStats, syncErr error) Result {

	finished := time.Now().UTC()
	run := domain.SyncRun{
		Domain:     string(dom),
		ConfigID:   cfg.ID,
		Status:     "success",
		Extracted:  extracted,
		Updated:    stats.processed,
		Skipped:    stats.skipped + stats.failed,
		StartedAt:  started,
		FinishedAt: &finished,
	}

	result := Result{Success: true, UpdatedCount: stats.processed}
	if syncErr != nil {
		run.Status = "failure"
		run.Error = syncErr.Error()
		result = Result{Success: false, Error: syncErr.Error()}
	}

	runsTotal.WithLabelValues(string(dom), run.Status).Inc()

	if syncErr == nil {
		if err := s.store.TouchLastSync(ctx, cfg.ID, finished); err != nil {
			log.Error().Err(err).Str("config", cfg.ID).Msg("lastSync update failed")
		}
	}
	if _, err := s.store.RecordRun(ctx, run); err != nil {
		log.Error().Err(err).Str("domain", string(dom)).Msg("sync run bookkeeping failed")
	}
	for _, sink := range s.sinks {
		if err := sink.Publish(ctx, run); err != nil {
			log.Warn().Err(err).Str("domain", string(dom)).Msg("result publication failed")
		}
	}

	evt := log.Info()
	if syncErr != nil {
		evt = log.Error().Err(syncErr)
	}
	evt.Str("domain", string(dom)).
		Int("extracted", extracted).
		Int("updated", stats.processed).
		Int("skipped", stats.skipped+stats.failed).
		Dur("took", finished.Sub(started)).
		Msg("sync finished")

	return result
}

// companyCode picks the effective company code: explicit request value, then
// the configuration's default, then the service-wide default.
func (s *Service) companyCode(cfg *domain.ExternalDBConfig, requested string) string {
	if requested != "" {
		return requested
	}
	if cfg.Options.DefaultCompanyCodeForSync != "" {
		return cfg.Options.DefaultCompanyCodeForSync
	}
	return s.defaultCompanyCode
}

func override(requestOverride, configOverride string) string {
	if requestOverride != "" {
		return requestOverride
	}
	return configOverride
}

func connParams(cfg *domain.ExternalDBConfig) extdb.ConnParams {
	return extdb.ConnParams{
		Driver:                 cfg.Driver,
		Server:                 cfg.Server,
		Port:                   cfg.Options.Port,
		Database:               cfg.Database,
		Username:               cfg.Username,
		Password:               cfg.Password,
		Encrypt:                cfg.Options.Encrypt,
		TrustServerCertificate: cfg.Options.TrustServerCertificate,
	}
}
