// Package store persists estimate reports. The report is kept as JSON next
// to a few columns used for listing and lookup.
package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"sitecost/core/output"
	"sitecost/internal/errors"
	"sitecost/internal/logging"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Driver names accepted by Open
const (
	DriverSQLite   = "sqlite"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

// Summary is a listing row
type Summary struct {
	ID               string    `json:"id"`
	InputHash        string    `json:"inputHash"`
	ProjectType      string    `json:"projectType"`
	Tier             string    `json:"tier"`
	Currency         string    `json:"currency"`
	TotalCost        string    `json:"totalCost"`
	RateTableVersion string    `json:"rateTableVersion"`
	CreatedAt        time.Time `json:"createdAt"`
}

// Store reads and writes estimates
type Store struct {
	db     *sql.DB
	driver string
	now    func() time.Time
}

// Open connects to the database and applies pending migrations
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	var dialect string
	switch driver {
	case DriverSQLite, "":
		driver, dialect = DriverSQLite, "sqlite3"
	case DriverMySQL:
		dialect = "mysql"
	case DriverPostgres:
		dialect = "postgres"
	default:
		return nil, errors.Newf(errors.TypeConfig, "unsupported storage driver %q", driver)
	}

	if driver == DriverSQLite && dsn != ":memory:" && !strings.HasPrefix(dsn, "file:") {
		if err := os.MkdirAll(filepath.Dir(dsn), 0755); err != nil {
			return nil, errors.Wrap(errors.TypeConfig, "create database directory", err)
		}
	}

	if driver == DriverMySQL {
		var err error
		if dsn, err = mysqlDSN(dsn); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, errors.Wrap(errors.TypeConfig, "open database", err)
	}

	if driver == DriverSQLite {
		if _, err := db.ExecContext(ctx, `
			PRAGMA journal_mode = WAL;
			PRAGMA busy_timeout = 5000;
		`); err != nil {
			db.Close()
			return nil, errors.Wrap(errors.TypeConfig, "set sqlite pragmas", err)
		}
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.Wrap(errors.TypeConfig, "ping database", err)
	}

	if err := migrate(ctx, db, dialect); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, driver: driver, now: time.Now}, nil
}

// mysqlDSN forces DATETIME columns to scan into time.Time in UTC
func mysqlDSN(dsn string) (string, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", errors.Wrap(errors.TypeConfig, "parse mysql dsn", err)
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	return cfg.FormatDSN(), nil
}

// goose keeps its base FS, dialect and logger in package globals
var migrateMu sync.Mutex

func migrate(ctx context.Context, db *sql.DB, dialect string) error {
	migrateMu.Lock()
	defer migrateMu.Unlock()

	goose.SetBaseFS(migrations)
	defer goose.SetBaseFS(nil)
	sugar := logging.Sugar
	if sugar == nil {
		sugar = logging.OrDefault(nil).Sugar()
	}
	goose.SetLogger(gooseLogger{sugar})

	if err := goose.SetDialect(dialect); err != nil {
		return errors.Wrap(errors.TypeConfig, "set goose dialect", err)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return errors.Wrap(errors.TypeInternal, "run goose up migrations", err)
	}
	return nil
}

// gooseLogger sends migration progress to the debug log
type gooseLogger struct {
	s *zap.SugaredLogger
}

func (l gooseLogger) Printf(format string, v ...interface{}) {
	l.s.Debugf(strings.TrimSpace(format), v...)
}

func (l gooseLogger) Fatalf(format string, v ...interface{}) {
	l.s.Fatalf(format, v...)
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// Save stores a report under its ID
func (s *Store) Save(ctx context.Context, report *output.Report) error {
	data, err := json.Marshal(report)
	if err != nil {
		return errors.Internal("encode report", err)
	}

	_, err = s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO estimates (id, input_hash, project_type, tier, currency, total_cost, rate_table_version, report_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		report.ID,
		report.InputHash,
		string(report.Input.ProjectType),
		string(report.Input.Tier),
		string(report.Result.Currency),
		report.Result.TotalCost.String(),
		report.RateTableVersion,
		string(data),
		s.now().UTC(),
	)
	if err != nil {
		return errors.Internal("insert estimate", err).WithContext("id", report.ID)
	}
	return nil
}

// Get loads a report by ID
func (s *Store) Get(ctx context.Context, id string) (*output.Report, error) {
	var data string
	err := s.db.QueryRowContext(ctx, s.rebind(`SELECT report_json FROM estimates WHERE id = ?`), id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.NotFound("estimate", id)
	}
	if err != nil {
		return nil, errors.Internal("query estimate", err).WithContext("id", id)
	}

	var report output.Report
	if err := json.Unmarshal([]byte(data), &report); err != nil {
		return nil, errors.Internal("decode stored report", err).WithContext("id", id)
	}
	return &report, nil
}

// List returns the most recent estimates first. A non-empty inputHash
// restricts the listing to estimates of that input.
func (s *Store) List(ctx context.Context, inputHash string, limit int) ([]Summary, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT id, input_hash, project_type, tier, currency, total_cost, rate_table_version, created_at FROM estimates`
	args := []interface{}{}
	if inputHash != "" {
		query += ` WHERE input_hash = ?`
		args = append(args, inputHash)
	}
	query += ` ORDER BY created_at DESC, id LIMIT ` + strconv.Itoa(limit)

	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, errors.Internal("list estimates", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var sum Summary
		if err := rows.Scan(&sum.ID, &sum.InputHash, &sum.ProjectType, &sum.Tier, &sum.Currency, &sum.TotalCost, &sum.RateTableVersion, &sum.CreatedAt); err != nil {
			return nil, errors.Internal("scan estimate", err)
		}
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Internal("iterate estimates", err)
	}
	return out, nil
}

// rebind rewrites ? placeholders to $n for postgres
func (s *Store) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
