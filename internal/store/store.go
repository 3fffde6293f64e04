// Package store keeps consulted clauses in SQLite so predicates can be
// listed and looked up across files.
package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/hornlang/horn/horn"
)

// ErrNotFound is returned when a source has never been consulted.
var ErrNotFound = errors.New("not found")

type Config struct {
	Path string
}

// Consult records one load of a source.
type Consult struct {
	ID        string
	Source    string
	CreatedAt time.Time
	// Clauses counts the stored clauses. Clauses whose head is not callable
	// are skipped.
	Clauses int
}

type PredicateRow struct {
	Indicator horn.Indicator
	Clauses   int
	Sources   int
}

type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open creates the database file and its directory when missing.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Path == "" {
		return nil, errors.New("store path is empty")
	}
	dsn := ":memory:"
	if cfg.Path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
			return nil, errors.Wrap(err, "create store directory")
		}
		dsn = cfg.Path + "?_journal_mode=WAL&_synchronous=NORMAL"
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open store")
	}
	if cfg.Path == ":memory:" {
		// each connection would get its own empty database
		db.SetMaxOpenConns(1)
	}
	s := &Store{db: db, now: time.Now}
	if err := s.initSchema(ctx); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "initialize store schema")
	}
	return s, nil
}

func (s *Store) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS consults (
		id TEXT PRIMARY KEY,
		source TEXT NOT NULL UNIQUE,
		created_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS clauses (
		consult_id TEXT NOT NULL,
		ordinal INTEGER NOT NULL,
		functor TEXT NOT NULL,
		arity INTEGER NOT NULL,
		text TEXT NOT NULL,
		body_len INTEGER NOT NULL,
		PRIMARY KEY (consult_id, ordinal)
	);

	CREATE INDEX IF NOT EXISTS idx_clauses_indicator ON clauses(functor, arity);
	`
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// SaveConsult stores clauses under source, replacing whatever an earlier
// consult of the same source left behind.
func (s *Store) SaveConsult(ctx context.Context, source string, clauses []horn.Clause) (Consult, error) {
	consult := Consult{
		ID:        uuid.NewString(),
		Source:    source,
		CreatedAt: s.now().UTC(),
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Consult{}, errors.Wrap(err, "begin consult")
	}
	defer tx.Rollback()

	if err := forget(ctx, tx, source); err != nil {
		return Consult{}, err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO consults (id, source, created_at) VALUES (?, ?, ?)`,
		consult.ID, consult.Source, consult.CreatedAt,
	); err != nil {
		return Consult{}, errors.Wrapf(err, "insert consult %s", source)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO clauses (consult_id, ordinal, functor, arity, text, body_len) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return Consult{}, errors.Wrap(err, "prepare clause insert")
	}
	defer stmt.Close()
	for i, clause := range clauses {
		ind, ok := horn.IndicatorOf(clause.Head)
		if !ok {
			continue
		}
		if _, err := stmt.ExecContext(ctx, consult.ID, i, ind.Name, ind.Arity, clause.String(), len(clause.Body)); err != nil {
			return Consult{}, errors.Wrapf(err, "insert clause %d of %s", i, source)
		}
		consult.Clauses++
	}

	if err := tx.Commit(); err != nil {
		return Consult{}, errors.Wrap(err, "commit consult")
	}
	return consult, nil
}

// Forget drops everything stored for source.
func (s *Store) Forget(ctx context.Context, source string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin forget")
	}
	defer tx.Rollback()
	if err := forget(ctx, tx, source); err != nil {
		return err
	}
	return errors.Wrap(tx.Commit(), "commit forget")
}

func forget(ctx context.Context, tx *sql.Tx, source string) error {
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM clauses WHERE consult_id IN (SELECT id FROM consults WHERE source = ?)`, source,
	); err != nil {
		return errors.Wrapf(err, "delete clauses of %s", source)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM consults WHERE source = ?`, source); err != nil {
		return errors.Wrapf(err, "delete consult %s", source)
	}
	return nil
}

// Consult returns the latest consult of source.
func (s *Store) Consult(ctx context.Context, source string) (Consult, error) {
	var c Consult
	err := s.db.QueryRowContext(ctx, `
		SELECT s.id, s.source, s.created_at, COUNT(c.ordinal)
		FROM consults s LEFT JOIN clauses c ON c.consult_id = s.id
		WHERE s.source = ?
		GROUP BY s.id`, source,
	).Scan(&c.ID, &c.Source, &c.CreatedAt, &c.Clauses)
	if err == sql.ErrNoRows {
		return Consult{}, errors.Wrapf(ErrNotFound, "consult %s", source)
	}
	if err != nil {
		return Consult{}, errors.Wrapf(err, "load consult %s", source)
	}
	return c, nil
}

// Predicates lists every stored predicate ordered by name and arity.
func (s *Store) Predicates(ctx context.Context) ([]PredicateRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT functor, arity, COUNT(*), COUNT(DISTINCT consult_id)
		FROM clauses
		GROUP BY functor, arity
		ORDER BY functor, arity`)
	if err != nil {
		return nil, errors.Wrap(err, "query predicates")
	}
	defer rows.Close()

	var preds []PredicateRow
	for rows.Next() {
		var p PredicateRow
		if err := rows.Scan(&p.Indicator.Name, &p.Indicator.Arity, &p.Clauses, &p.Sources); err != nil {
			return nil, errors.Wrap(err, "scan predicate")
		}
		preds = append(preds, p)
	}
	return preds, errors.Wrap(rows.Err(), "iterate predicates")
}

// Clauses returns the rendered clauses of ind in consult order, then
// source order within a consult.
func (s *Store) Clauses(ctx context.Context, ind horn.Indicator) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.text
		FROM clauses c JOIN consults s ON s.id = c.consult_id
		WHERE c.functor = ? AND c.arity = ?
		ORDER BY s.rowid, c.ordinal`, ind.Name, ind.Arity)
	if err != nil {
		return nil, errors.Wrapf(err, "query clauses of %s", ind)
	}
	defer rows.Close()

	var texts []string
	for rows.Next() {
		var text string
		if err := rows.Scan(&text); err != nil {
			return nil, errors.Wrap(err, "scan clause")
		}
		texts = append(texts, text)
	}
	return texts, errors.Wrap(rows.Err(), "iterate clauses")
}

func (s *Store) Close() error {
	return s.db.Close()
}
