package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/toolscout-core/server/internal/agent/model"
	logx "github.com/toolscout-core/server/pkg/logger"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS tools (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	category    TEXT NOT NULL DEFAULT '',
	price_tier  TEXT NOT NULL DEFAULT '',
	tags        TEXT NOT NULL DEFAULT '',
	has_api     INTEGER NOT NULL DEFAULT 0,
	url         TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_tools_category ON tools(category);
`

// SQL is a catalog backed by a SQLite database.
type SQL struct {
	db *sql.DB
}

// OpenSQL opens (or creates) the catalog database at dsn.
// ":memory:" keeps a single connection so every query sees the same database.
func OpenSQL(ctx context.Context, dsn string) (*SQL, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open catalog db: %w", err)
	}
	if strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory") {
		db.SetMaxOpenConns(1)
	}
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("create catalog schema: %w", err)
	}
	return &SQL{db: db}, nil
}

func (s *SQL) Close() error {
	return s.db.Close()
}

// Seed upserts items in one transaction.
func (s *SQL) Seed(ctx context.Context, items []model.CandidateItem) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO tools
		(id, name, description, category, price_tier, tags, has_api, url)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare seed: %w", err)
	}
	defer stmt.Close()

	for _, it := range items {
		hasAPI := 0
		if it.HasAPI {
			hasAPI = 1
		}
		if _, err := stmt.ExecContext(ctx, it.ID, it.Name, it.Description, it.Category,
			it.PriceTier, encodeTags(it.Tags), hasAPI, it.URL); err != nil {
			return fmt.Errorf("seed %s: %w", it.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed: %w", err)
	}
	logx.Debug().Int("items", len(items)).Msg("Catalog seeded")
	return nil
}

// Count returns the number of catalog rows.
func (s *SQL) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tools`).Scan(&n)
	return n, err
}

func (s *SQL) Search(ctx context.Context, f model.CatalogFilter) ([]model.CandidateItem, error) {
	query, args := buildQuery(f)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query catalog: %w", err)
	}
	defer rows.Close()

	out := []model.CandidateItem{}
	for rows.Next() {
		var (
			it     model.CandidateItem
			tags   string
			hasAPI int
		)
		if err := rows.Scan(&it.ID, &it.Name, &it.Description, &it.Category,
			&it.PriceTier, &tags, &hasAPI, &it.URL); err != nil {
			return nil, fmt.Errorf("scan catalog row: %w", err)
		}
		it.Tags = decodeTags(tags)
		it.HasAPI = hasAPI != 0
		out = append(out, it)
	}
	return out, rows.Err()
}

func buildQuery(f model.CatalogFilter) (string, []any) {
	var (
		where []string
		args  []any
	)

	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		where = append(where, `(lower(name) LIKE ? OR lower(description) LIKE ? OR instr(?, lower(name)) > 0)`)
		args = append(args, "%"+q+"%", "%"+q+"%", q)
	}

	categories := f.Categories
	if f.Category != "" {
		categories = append([]string{f.Category}, categories...)
	}
	if len(categories) > 0 {
		ors := make([]string, len(categories))
		for i, c := range categories {
			ors[i] = `lower(category) LIKE ?`
			args = append(args, "%"+strings.ToLower(c)+"%")
		}
		where = append(where, "("+strings.Join(ors, " OR ")+")")
	}

	if tiers := priceTiers(f.Price); tiers != nil {
		where = append(where, `price_tier IN (`+placeholders(len(tiers))+`)`)
		for _, t := range tiers {
			args = append(args, t)
		}
	}

	if len(f.Features) > 0 {
		ors := make([]string, 0, len(f.Features))
		for _, feat := range f.Features {
			if feat == "api" {
				ors = append(ors, `has_api = 1`)
			}
			ors = append(ors, `tags LIKE ?`)
			args = append(args, "%,"+feat+",%")
		}
		where = append(where, "("+strings.Join(ors, " OR ")+")")
	}

	query := `SELECT id, name, description, category, price_tier, tags, has_api, url FROM tools`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}
	return query, args
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

// Tags are stored as ",a,b," so a single LIKE matches whole tags.
func encodeTags(tags []string) string {
	if len(tags) == 0 {
		return ""
	}
	return "," + strings.Join(tags, ",") + ","
}

func decodeTags(s string) []string {
	s = strings.Trim(s, ",")
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

var _ model.Catalog = (*SQL)(nil)
