package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"efi-app/internal/model"
)

type dialect struct {
	name string
	// numbered placeholders ($1, $2, ...) instead of ?
	numbered bool
	// docColumn reads the JSON document column as text.
	docColumn string
}

var (
	postgresDialect = dialect{name: "postgres", numbered: true, docColumn: "doc::text"}
	sqliteDialect   = dialect{name: "sqlite", docColumn: "doc"}
)

func (d dialect) rebind(query string) string {
	if !d.numbered {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// sqlStore keeps each document as JSON next to the columns it is looked up by.
type sqlStore struct {
	db *sql.DB
	d  dialect
}

func (s *sqlStore) GetLatest(ctx context.Context, competitionID int) (model.Latest, bool, error) {
	var doc string
	err := s.db.QueryRowContext(ctx,
		s.d.rebind(`SELECT `+s.d.docColumn+` FROM latest WHERE competition_id = ?`), competitionID,
	).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Latest{}, false, nil
	}
	if err != nil {
		return model.Latest{}, false, fmt.Errorf("get latest: %w", err)
	}
	var l model.Latest
	if err := json.Unmarshal([]byte(doc), &l); err != nil {
		return model.Latest{}, false, fmt.Errorf("decode latest: %w", err)
	}
	return l, true, nil
}

func (s *sqlStore) GetTable(ctx context.Context, competitionID, season, matchweek int) (model.Table, bool, error) {
	var doc string
	err := s.db.QueryRowContext(ctx,
		s.d.rebind(`SELECT `+s.d.docColumn+` FROM standings WHERE competition_id = ? AND season = ? AND matchweek = ?`),
		competitionID, season, matchweek,
	).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Table{}, false, nil
	}
	if err != nil {
		return model.Table{}, false, fmt.Errorf("get table: %w", err)
	}
	var t model.Table
	if err := json.Unmarshal([]byte(doc), &t); err != nil {
		return model.Table{}, false, fmt.Errorf("decode table: %w", err)
	}
	return t, true, nil
}

func (s *sqlStore) ListScores(ctx context.Context, competitionID, season, matchweek int) ([]model.MatchEvent, error) {
	rows, err := s.db.QueryContext(ctx,
		s.d.rebind(`SELECT `+s.d.docColumn+` FROM scores
WHERE competition_id = ? AND season = ? AND (matchweek = ? OR display_with_matchweek = ?)
ORDER BY kickoff, id`),
		competitionID, season, matchweek, matchweek,
	)
	if err != nil {
		return nil, fmt.Errorf("list scores: %w", err)
	}
	defer rows.Close()

	out := []model.MatchEvent{}
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan score: %w", err)
		}
		var m model.MatchEvent
		if err := json.Unmarshal([]byte(doc), &m); err != nil {
			return nil, fmt.Errorf("decode score: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list scores: %w", err)
	}
	return out, nil
}

func (s *sqlStore) PutLatest(ctx context.Context, latest model.Latest) error {
	doc, err := json.Marshal(latest)
	if err != nil {
		return fmt.Errorf("encode latest: %w", err)
	}
	_, err = s.db.ExecContext(ctx, s.d.rebind(`
INSERT INTO latest (competition_id, doc) VALUES (?, ?)
ON CONFLICT (competition_id) DO UPDATE SET doc = excluded.doc, updated_at = CURRENT_TIMESTAMP`),
		latest.CompetitionID, string(doc),
	)
	if err != nil {
		return fmt.Errorf("put latest: %w", err)
	}
	return nil
}

func (s *sqlStore) PutTable(ctx context.Context, table model.Table) error {
	doc, err := json.Marshal(table)
	if err != nil {
		return fmt.Errorf("encode table: %w", err)
	}
	_, err = s.db.ExecContext(ctx, s.d.rebind(`
INSERT INTO standings (competition_id, season, matchweek, doc) VALUES (?, ?, ?, ?)
ON CONFLICT (competition_id, season, matchweek) DO UPDATE SET doc = excluded.doc, updated_at = CURRENT_TIMESTAMP`),
		table.CompetitionID, table.Season, table.Matchweek, string(doc),
	)
	if err != nil {
		return fmt.Errorf("put table: %w", err)
	}
	return nil
}

func (s *sqlStore) PutScores(ctx context.Context, matches []model.MatchEvent) error {
	if err := validateScores(matches); err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin scores tx: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, s.d.rebind(`
INSERT INTO scores (competition_id, season, id, matchweek, display_with_matchweek, kickoff, doc)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (competition_id, season, id) DO UPDATE SET
  matchweek = excluded.matchweek,
  display_with_matchweek = excluded.display_with_matchweek,
  kickoff = excluded.kickoff,
  doc = excluded.doc`))
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare scores: %w", err)
	}
	defer stmt.Close()

	for _, m := range matches {
		doc, err := json.Marshal(m)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("encode match %d: %w", m.ID, err)
		}
		var display sql.NullInt64
		if m.DisplayWithMatchweek != 0 {
			display = sql.NullInt64{Int64: int64(m.DisplayWithMatchweek), Valid: true}
		}
		if _, err := stmt.ExecContext(ctx,
			m.CompetitionID, m.Season, m.ID, m.Matchweek, display, m.Time.UnixMilli(), string(doc),
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("put match %d: %w", m.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit scores tx: %w", err)
	}
	return nil
}

func (s *sqlStore) Close() error {
	return s.db.Close()
}
