package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"oap_import/internal/domain"
)

type rawItemRow struct {
	CampusID string `db:"campus_id"`
	DocKey   string `db:"doc_key"`
	Updated  int64  `db:"updated"`
	ItemData string `db:"item_data"`
}

func (r rawItemRow) item() (*domain.RawItem, error) {
	var item domain.RawItem
	if err := json.Unmarshal([]byte(r.ItemData), &item); err != nil {
		return nil, fmt.Errorf("decode raw item %s: %w", r.CampusID, err)
	}
	return &item, nil
}

// RawItemStore holds the latest version of every harvested record, keyed by
// its primary identifier.
type RawItemStore struct {
	db *sqlx.DB
}

func NewRawItemStore(db *sqlx.DB) *RawItemStore {
	return &RawItemStore{db: db}
}

// Upsert stores item unless a version at least as new is already present.
// It reports whether a row was written.
func (s *RawItemStore) Upsert(ctx context.Context, item *domain.RawItem) (bool, error) {
	key, err := item.PrimaryID()
	if err != nil {
		return false, err
	}
	data, err := json.Marshal(item)
	if err != nil {
		return false, fmt.Errorf("encode raw item %s: %w", key.Key(), err)
	}

	exec := GetExecutor(ctx, s.db)
	query := exec.Rebind(`
		INSERT INTO raw_items (campus_id, doc_key, updated, item_data)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (campus_id) DO UPDATE SET
			doc_key = excluded.doc_key,
			updated = excluded.updated,
			item_data = excluded.item_data
		WHERE raw_items.updated < excluded.updated`)

	res, err := exec.ExecContext(ctx, query, key.Key(), item.DocKey, toMicros(item.Updated), string(data))
	if err != nil {
		return false, fmt.Errorf("upsert raw item %s: %w", key.Key(), err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Get returns the stored item, or nil when there is none.
func (s *RawItemStore) Get(ctx context.Context, key string) (*domain.RawItem, error) {
	exec := GetExecutor(ctx, s.db)
	var row rawItemRow
	err := sqlx.GetContext(ctx, exec, &row,
		exec.Rebind(`SELECT campus_id, doc_key, updated, item_data FROM raw_items WHERE campus_id = ?`), key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get raw item %s: %w", key, err)
	}
	return row.item()
}

// GetMany returns the stored items for the given keys; missing keys are
// absent from the map.
func (s *RawItemStore) GetMany(ctx context.Context, keys []string) (map[string]*domain.RawItem, error) {
	out := make(map[string]*domain.RawItem, len(keys))
	exec := GetExecutor(ctx, s.db)
	for _, chunk := range chunks(keys) {
		query, args, err := sqlx.In(`SELECT campus_id, doc_key, updated, item_data FROM raw_items WHERE campus_id IN (?)`, chunk)
		if err != nil {
			return nil, err
		}
		var rows []rawItemRow
		if err := sqlx.SelectContext(ctx, exec, &rows, exec.Rebind(query), args...); err != nil {
			return nil, fmt.Errorf("get raw items: %w", err)
		}
		for _, row := range rows {
			item, err := row.item()
			if err != nil {
				return nil, err
			}
			out[row.CampusID] = item
		}
	}
	return out, nil
}

// All loads the whole corpus in key order.
func (s *RawItemStore) All(ctx context.Context) ([]*domain.RawItem, error) {
	exec := GetExecutor(ctx, s.db)
	rows, err := exec.QueryxContext(ctx, `SELECT campus_id, doc_key, updated, item_data FROM raw_items ORDER BY campus_id`)
	if err != nil {
		return nil, fmt.Errorf("load raw items: %w", err)
	}
	defer rows.Close()

	var items []*domain.RawItem
	for rows.Next() {
		var row rawItemRow
		if err := rows.StructScan(&row); err != nil {
			return nil, err
		}
		item, err := row.item()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// FindBySuffix returns the keys of items whose identifier value is value,
// whatever the scheme.
func (s *RawItemStore) FindBySuffix(ctx context.Context, value string) ([]string, error) {
	exec := GetExecutor(ctx, s.db)
	var keys []string
	err := sqlx.SelectContext(ctx, exec, &keys,
		exec.Rebind(`SELECT campus_id FROM raw_items WHERE campus_id LIKE ? ESCAPE '\' ORDER BY campus_id`), suffixPattern(value))
	if err != nil {
		return nil, fmt.Errorf("find raw items: %w", err)
	}
	return keys, nil
}

// suffixPattern matches keys ending in "::"+value, with LIKE wildcards in
// value taken literally.
func suffixPattern(value string) string {
	return "%::" + likeEscaper.Replace(value)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (s *RawItemStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &n, `SELECT COUNT(*) FROM raw_items`); err != nil {
		return 0, fmt.Errorf("count raw items: %w", err)
	}
	return n, nil
}
