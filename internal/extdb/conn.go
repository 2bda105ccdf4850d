// Package extdb owns every interaction with the external gestionale
// database: opening transient connections, running extraction queries, and
// the connectivity probe used by the admin UI.
//
// Connections are opened fresh per operation and closed on every exit path.
// There is no pooling and no retry: a failed open surfaces the transport
// error to the caller after a single attempt.
package extdb

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strconv"
	"time"

	_ "github.com/denisenkom/go-mssqldb" // MS SQL Server driver
)

const (
	// DefaultPort is the standard MS SQL Server listener port.
	DefaultPort = 1433

	// DialTimeout bounds the TCP/login handshake.
	DialTimeout = 30 * time.Second

	// QueryTimeout bounds any single statement issued over a session.
	QueryTimeout = 30 * time.Second
)

// ConnParams are the connection parameters for one external database.
// No defaults are substituted for credentials; the caller supplies them
// exactly as stored in the configuration.
type ConnParams struct {
	Driver   string // informational only, the transport is always MS SQL Server
	Server   string
	Port     int
	Database string
	Username string
	Password string

	// Encrypt and TrustServerCertificate default to true when nil: the
	// legacy servers ship self-signed certificates, so transport encryption
	// is requested but chain validation is bypassed. Set explicitly in the
	// configuration options to tighten this.
	Encrypt                *bool
	TrustServerCertificate *bool
}

// Session is an open connection to the external database. It is valid for a
// single sync or probe operation and must be closed by the caller.
type Session struct {
	db *sql.DB
}

// Open connects to the external database described by p and verifies the
// connection with a ping. On any failure the underlying transport error is
// returned unwrapped in meaning: there is no retry.
func Open(ctx context.Context, p ConnParams) (*Session, error) {
	if p.Server == "" {
		return nil, fmt.Errorf("extdb: server is required")
	}
	if p.Database == "" {
		return nil, fmt.Errorf("extdb: database is required")
	}

	db, err := sql.Open("mssql", buildDSN(p))
	if err != nil {
		return nil, fmt.Errorf("extdb: open: %w", err)
	}

	// One operation, one connection. Pooling would keep sockets open on the
	// legacy server long after the sync request has finished.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(0)

	pingCtx, cancel := context.WithTimeout(ctx, DialTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("extdb: connect to %s/%s: %w", p.Server, p.Database, err)
	}

	return &Session{db: db}, nil
}

// Close releases the session. Safe to call on every exit path.
func (s *Session) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// buildDSN assembles a sqlserver:// connection string. Credentials are URL
// escaped, so passwords with reserved characters survive intact.
func buildDSN(p ConnParams) string {
	port := p.Port
	if port == 0 {
		port = DefaultPort
	}

	q := url.Values{}
	q.Set("database", p.Database)
	q.Set("encrypt", strconv.FormatBool(boolOrDefault(p.Encrypt, true)))
	q.Set("TrustServerCertificate", strconv.FormatBool(boolOrDefault(p.TrustServerCertificate, true)))
	q.Set("dial timeout", strconv.Itoa(int(DialTimeout.Seconds())))

	u := url.URL{
		Scheme:   "sqlserver",
		User:     url.UserPassword(p.Username, p.Password),
		Host:     fmt.Sprintf("%s:%d", p.Server, port),
		RawQuery: q.Encode(),
	}
	return u.String()
}

func boolOrDefault(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}
