package export

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/jrwynneiii/tetrasweep/detect"

	// Blind import support for sqlite3 used by OpenSQLite.
	_ "github.com/mattn/go-sqlite3"
)

const (
	DialectSQLite = "sqlite"
	DialectMySQL  = "mysql"
)

const (
	sqliteCreateTableTmpl = `CREATE TABLE IF NOT EXISTS detections (
		"ID"           INTEGER NOT NULL PRIMARY KEY AUTOINCREMENT,
		"RunID"        TEXT NOT NULL,
		"Mode"         TEXT NOT NULL,
		"EntryID"      INTEGER,
		"Frequency"    INTEGER,
		"Strength"     REAL,
		"SampleCount"  INTEGER,
		"Durations"    TEXT
	);`
	mysqlCreateTableTmpl = `CREATE TABLE IF NOT EXISTS detections (
		ID           BIGINT NOT NULL PRIMARY KEY AUTO_INCREMENT,
		RunID        VARCHAR(36) NOT NULL,
		Mode         VARCHAR(16) NOT NULL,
		EntryID      INTEGER,
		Frequency    BIGINT UNSIGNED,
		Strength     DOUBLE,
		SampleCount  INTEGER,
		Durations    TEXT
	);`
	insertDetectionTmpl = `INSERT INTO detections (
		RunID,
		Mode,
		EntryID,
		Frequency,
		Strength,
		SampleCount,
		Durations
	) VALUES (?, ?, ?, ?, ?, ?, ?);`
)

// SQL stores every detection of a result in one transaction, tagged with
// RunID. An empty RunID is replaced by a fresh UUID on the first write.
type SQL struct {
	DB       *sql.DB
	Dialect  string
	RunID    string
	Coalesce bool
}

func (s *SQL) Write(ctx context.Context, res *detect.Result) error {
	if s.RunID == "" {
		s.RunID = uuid.NewString()
	}
	if err := s.createTableIfNotExists(ctx); err != nil {
		return &Error{Sink: s.Dialect, Err: fmt.Errorf("unable to create table: %w", err)}
	}
	if err := s.insert(ctx, res); err != nil {
		return &Error{Sink: s.Dialect, Err: err}
	}
	log.Infof("Stored %d detections in %s as run %s", len(res.Detections()), s.Dialect, s.RunID)
	return nil
}

func (s *SQL) createTableIfNotExists(ctx context.Context) error {
	tmpl := sqliteCreateTableTmpl
	if s.Dialect == DialectMySQL {
		tmpl = mysqlCreateTableTmpl
	}
	_, err := s.DB.ExecContext(ctx, tmpl)
	return err
}

func (s *SQL) insert(ctx context.Context, res *detect.Result) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	statement, err := tx.PrepareContext(ctx, insertDetectionTmpl)
	if err != nil {
		return err
	}
	defer statement.Close()

	for _, e := range res.Detections() {
		d := e.Detection
		if _, err := statement.ExecContext(ctx, s.RunID, res.Mode.String(), e.ID, d.Frequency, d.Strength, d.SampleCount, d.Durations(s.Coalesce)); err != nil {
			return fmt.Errorf("unable to store detection %d: %w", e.ID, err)
		}
	}
	return tx.Commit()
}

// OpenSQLite opens the database file at path. SQLite allows a single writer,
// so the pool is limited to one connection.
func OpenSQLite(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("unable to open sqlite DB %q: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	return db, nil
}

type MySQLOptions struct {
	Addr     string
	User     string
	Password string
	DBName   string
}

func OpenMySQL(opts MySQLOptions) (*sql.DB, error) {
	cfg := mysql.NewConfig()
	cfg.User = opts.User
	cfg.Passwd = opts.Password
	cfg.Net = "tcp"
	cfg.Addr = opts.Addr
	cfg.DBName = opts.DBName

	db, err := sql.Open("mysql", cfg.FormatDSN())
	if err != nil {
		return nil, fmt.Errorf("unable to open MySQL DB %q: %w", opts.Addr, err)
	}
	db.SetConnMaxLifetime(3 * time.Minute)
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	return db, nil
}
