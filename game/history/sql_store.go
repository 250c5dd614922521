package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

const schema = `CREATE TABLE IF NOT EXISTS match_history (
	history_id TEXT PRIMARY KEY,
	game_id TEXT NOT NULL UNIQUE,
	attempts INTEGER NOT NULL,
	hints_given INTEGER NOT NULL,
	min_range INTEGER NOT NULL,
	max_range INTEGER NOT NULL,
	elapsed_ms BIGINT NOT NULL,
	difficulty_rating INTEGER,
	saved_at BIGINT NOT NULL
)`

const savedAtIndex = `CREATE INDEX IF NOT EXISTS idx_match_history_saved_at ON match_history (saved_at)`

const selectColumns = `history_id, game_id, attempts, hints_given, min_range, max_range, elapsed_ms, difficulty_rating, saved_at`

// SQLStore keeps records in PostgreSQL or SQLite
type SQLStore struct {
	db     *sql.DB
	driver string
}

// DriverForDSN picks postgres for postgres:// URLs and sqlite3 otherwise.
// A sqlite:// prefix is stripped from the returned DSN.
func DriverForDSN(dsn string) (driver, cleaned string) {
	lower := strings.ToLower(dsn)
	switch {
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"):
		return DriverPostgres, dsn
	case strings.HasPrefix(lower, "sqlite://"):
		return DriverSQLite, dsn[len("sqlite://"):]
	default:
		return DriverSQLite, dsn
	}
}

// OpenSQLStore opens the database behind dsn and applies the schema
func OpenSQLStore(ctx context.Context, dsn string) (*SQLStore, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("DATABASE_URL is required for sql history store")
	}

	driver, cleaned := DriverForDSN(dsn)
	if driver == DriverSQLite && cleaned != ":memory:" && !strings.Contains(cleaned, "?") {
		cleaned += "?_busy_timeout=5000&_journal_mode=WAL"
	}

	db, err := sql.Open(driver, cleaned)
	if err != nil {
		return nil, err
	}
	if driver == DriverSQLite {
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(16)
		db.SetMaxIdleConns(8)
		db.SetConnMaxLifetime(30 * time.Minute)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, err
	}

	store, err := NewSQLStore(ctx, db, driver)
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// NewSQLStore wraps an open database and applies the schema
func NewSQLStore(ctx context.Context, db *sql.DB, driver string) (*SQLStore, error) {
	s := &SQLStore{db: db, driver: driver}
	for _, stmt := range []string{schema, savedAtIndex} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return nil, fmt.Errorf("migrate match_history: %w", err)
		}
	}
	return s, nil
}

func (s *SQLStore) Insert(ctx context.Context, rec *MatchRecord) error {
	if rec.GameID == "" {
		return ErrInvalidGameID
	}

	var rating any
	if rec.DifficultyRating != nil {
		rating = *rec.DifficultyRating
	}

	q := s.rebind(`INSERT INTO match_history (` + selectColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (game_id) DO NOTHING`)
	res, err := s.db.ExecContext(ctx, q,
		rec.HistoryID, rec.GameID, rec.Attempts, rec.HintsGiven,
		rec.MinRange, rec.MaxRange, rec.ElapsedMs, rating, rec.SavedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("insert match_history: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert match_history: %w", err)
	}
	if n == 0 {
		return ErrAlreadyRecorded
	}
	return nil
}

func (s *SQLStore) Get(ctx context.Context, gameID string) (*MatchRecord, error) {
	q := s.rebind(`SELECT ` + selectColumns + ` FROM match_history WHERE game_id = ?`)
	rec, err := scanRecord(s.db.QueryRowContext(ctx, q, gameID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select match_history: %w", err)
	}
	return rec, nil
}

func (s *SQLStore) List(ctx context.Context, limit int) ([]*MatchRecord, error) {
	if limit <= 0 {
		limit = MaxListLimit
	}
	q := s.rebind(`SELECT ` + selectColumns + ` FROM match_history ORDER BY saved_at DESC, game_id ASC LIMIT ?`)
	rows, err := s.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("list match_history: %w", err)
	}
	defer rows.Close()

	out := []*MatchRecord{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan match_history: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *SQLStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*MatchRecord, error) {
	var (
		rec     MatchRecord
		rating  sql.NullInt64
		savedAt int64
	)
	err := row.Scan(&rec.HistoryID, &rec.GameID, &rec.Attempts, &rec.HintsGiven,
		&rec.MinRange, &rec.MaxRange, &rec.ElapsedMs, &rating, &savedAt)
	if err != nil {
		return nil, err
	}
	if rating.Valid {
		v := int(rating.Int64)
		rec.DifficultyRating = &v
	}
	rec.SavedAt = time.UnixMilli(savedAt).UTC()
	return &rec, nil
}

// rebind rewrites ? placeholders to $n for postgres
func (s *SQLStore) rebind(q string) string {
	if s.driver != DriverPostgres {
		return q
	}
	var b strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
