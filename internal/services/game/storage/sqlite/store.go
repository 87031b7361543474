package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	apperrors "github.com/cleka/colossus-titan-sub015/internal/platform/errors"
	"github.com/cleka/colossus-titan-sub015/internal/platform/storage/sqlitemigrate"
	"github.com/cleka/colossus-titan-sub015/internal/services/game/storage/integrity"
	"github.com/cleka/colossus-titan-sub015/internal/services/game/storage/sqlite/migrations"
)

const tracerName = "github.com/cleka/colossus-titan-sub015/storage/sqlite"

var (
	// ErrStoreNotConfigured indicates a nil or closed store.
	ErrStoreNotConfigured = errors.New("storage is not configured")
	// ErrKeyringRequired indicates an event append or read without a keyring.
	ErrKeyringRequired = errors.New("event integrity keyring is required")
	// ErrGameIDRequired indicates a missing game id.
	ErrGameIDRequired = errors.New("game id is required")
	// ErrChainBroken indicates a stored event whose hash, link or signature
	// does not verify.
	ErrChainBroken = apperrors.New(apperrors.CodeChainBroken, "event chain broken")
)

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Store is a SQLite-backed history store. It implements the engine journal,
// the replay event source and the replay checkpoint store.
type Store struct {
	sqlDB   *sql.DB
	keyring *integrity.Keyring
	tracer  trace.Tracer
	now     func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithTracer overrides the tracer used for append spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(s *Store) { s.tracer = tracer }
}

// WithClock overrides the clock used for recorded_at and updated_at columns.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Open opens the history store at path and applies pending migrations.
func Open(path string, keyring *integrity.Keyring, opts ...Option) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	if keyring == nil {
		return nil, ErrKeyringRequired
	}

	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlitemigrate.Apply(context.Background(), sqlDB, migrations.HistoryFS, "history"); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	store := &Store{sqlDB: sqlDB, keyring: keyring}
	for _, opt := range opts {
		if opt != nil {
			opt(store)
		}
	}
	if store.tracer == nil {
		store.tracer = otel.Tracer(tracerName)
	}
	if store.now == nil {
		store.now = time.Now
	}
	return store, nil
}

// Close closes the underlying SQLite database. It is nil-safe.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) begin(ctx context.Context, gameID string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if s == nil || s.sqlDB == nil {
		return "", ErrStoreNotConfigured
	}
	gameID = strings.TrimSpace(gameID)
	if gameID == "" {
		return "", ErrGameIDRequired
	}
	return gameID, nil
}

func isConstraintError(err error) bool {
	var sqliteErr *msqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	code := sqliteErr.Code()
	return code == sqlite3lib.SQLITE_CONSTRAINT || code == sqlite3lib.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY
}
