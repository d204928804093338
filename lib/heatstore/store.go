package heatstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"pgptimes-backend/lib/scrapers/clubspeed"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

// Store keeps one JSON document per session, addressable by heat
// number, plus the backfill cursor. Concurrent writers against the
// same database are not supported; serialize runs externally.
type Store struct {
	db *sql.DB
}

func NewStore(database *sql.DB) Store {
	return Store{db: database}
}

func (s Store) Put(ctx context.Context, record clubspeed.SessionRecord) error {
	document, err := json.Marshal(record)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO heat (heat_no, document) VALUES (?, ?)`,
		record.SessionID, string(document),
	)
	return err
}

func (s Store) Get(ctx context.Context, heatNo int) (clubspeed.SessionRecord, bool, error) {
	var document string
	err := s.db.QueryRowContext(ctx,
		`SELECT document FROM heat WHERE heat_no = ?`, heatNo,
	).Scan(&document)
	if errors.Is(err, sql.ErrNoRows) {
		return clubspeed.SessionRecord{}, false, nil
	}
	if err != nil {
		return clubspeed.SessionRecord{}, false, err
	}

	var record clubspeed.SessionRecord
	err = json.Unmarshal([]byte(document), &record)
	if err != nil {
		return clubspeed.SessionRecord{}, false, err
	}
	return record, true, nil
}

// List returns every persisted session ordered by heat number.
func (s Store) List(ctx context.Context) ([]clubspeed.SessionRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT document FROM heat ORDER BY heat_no ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []clubspeed.SessionRecord
	for rows.Next() {
		var document string
		if err := rows.Scan(&document); err != nil {
			return nil, err
		}
		var record clubspeed.SessionRecord
		if err := json.Unmarshal([]byte(document), &record); err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func (s Store) LastHeat(ctx context.Context) (int, bool, error) {
	var lastHeat int
	err := s.db.QueryRowContext(ctx,
		`SELECT last_heat FROM cursor WHERE id = 0`,
	).Scan(&lastHeat)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return lastHeat, true, nil
}

func (s Store) SetLastHeat(ctx context.Context, heatNo int) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO cursor (id, last_heat) VALUES (0, ?)`, heatNo)
	return err
}
