package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/jmoiron/sqlx"

	"oap_import/internal/domain"
)

// AssociationStore maps campus identifiers to OAP identifiers and keeps what
// was last sent to the remote system for each OAP identifier.
//
// Both pipeline stages share one store; every call holds the mutex for its
// whole duration and no transaction outlives a call.
type AssociationStore struct {
	mu sync.Mutex
	db *sqlx.DB
}

func NewAssociationStore(db *sqlx.DB) *AssociationStore {
	return &AssociationStore{db: db}
}

type associationRow struct {
	CampusID string `db:"campus_id"`
	OAPID    string `db:"oap_id"`
	Updated  int64  `db:"updated"`
}

func (r associationRow) association() domain.Association {
	return domain.Association{CampusID: r.CampusID, OAPID: r.OAPID, Updated: fromMicros(r.Updated)}
}

// Lookup returns the associations of the given campus identifier keys.
func (s *AssociationStore) Lookup(ctx context.Context, campusIDs []string) ([]domain.Association, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.Association
	for _, chunk := range chunks(campusIDs) {
		query, args, err := sqlx.In(`SELECT campus_id, oap_id, updated FROM ids WHERE campus_id IN (?)`, chunk)
		if err != nil {
			return nil, err
		}
		var rows []associationRow
		if err := sqlx.SelectContext(ctx, s.db, &rows, s.db.Rebind(query), args...); err != nil {
			return nil, fmt.Errorf("lookup associations: %w", err)
		}
		for _, row := range rows {
			out = append(out, row.association())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CampusID < out[j].CampusID })
	return out, nil
}

// ByOAPID returns every campus identifier associated with oapID.
func (s *AssociationStore) ByOAPID(ctx context.Context, oapID string) ([]domain.Association, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rows []associationRow
	err := sqlx.SelectContext(ctx, s.db, &rows,
		s.db.Rebind(`SELECT campus_id, oap_id, updated FROM ids WHERE oap_id = ? ORDER BY campus_id`), oapID)
	if err != nil {
		return nil, fmt.Errorf("associations of %s: %w", oapID, err)
	}
	out := make([]domain.Association, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.association())
	}
	return out, nil
}

// FindCampusIDs returns associated campus identifier keys whose value is value.
func (s *AssociationStore) FindCampusIDs(ctx context.Context, value string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var keys []string
	err := sqlx.SelectContext(ctx, s.db, &keys,
		s.db.Rebind(`SELECT campus_id FROM ids WHERE campus_id LIKE ? ESCAPE '\' ORDER BY campus_id`), suffixPattern(value))
	if err != nil {
		return nil, fmt.Errorf("find campus ids: %w", err)
	}
	return keys, nil
}

// Associate sets the OAP identifier of a campus identifier.
func (s *AssociationStore) Associate(ctx context.Context, a domain.Association) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, s.db.Rebind(`
		INSERT INTO ids (campus_id, oap_id, updated) VALUES (?, ?, ?)
		ON CONFLICT (campus_id) DO UPDATE SET
			oap_id = excluded.oap_id,
			updated = excluded.updated`),
		a.CampusID, a.OAPID, toMicros(a.Updated))
	if err != nil {
		return fmt.Errorf("associate %s: %w", a.CampusID, err)
	}
	return nil
}

type syncStateRow struct {
	OAPID   string `db:"oap_id"`
	Updated int64  `db:"updated"`
	Hash    string `db:"hash"`
	Users   string `db:"oap_users"`
}

// GetSyncState returns the stored state, or an empty state for an OAP
// identifier never sent.
func (s *AssociationStore) GetSyncState(ctx context.Context, oapID string) (*domain.SyncState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var row syncStateRow
	err := sqlx.GetContext(ctx, s.db, &row,
		s.db.Rebind(`SELECT oap_id, updated, hash, oap_users FROM oap_hashes WHERE oap_id = ?`), oapID)
	if errors.Is(err, sql.ErrNoRows) {
		return &domain.SyncState{OAPID: oapID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get sync state %s: %w", oapID, err)
	}

	state := &domain.SyncState{OAPID: row.OAPID, Hash: row.Hash, Updated: fromMicros(row.Updated)}
	if row.Users != "" {
		if err := json.Unmarshal([]byte(row.Users), &state.Users); err != nil {
			return nil, fmt.Errorf("decode users of %s: %w", oapID, err)
		}
	}
	sort.Strings(state.Users)
	return state, nil
}

func (s *AssociationStore) UpdateSyncState(ctx context.Context, state *domain.SyncState) error {
	users := state.Users
	if users == nil {
		users = []string{}
	}
	data, err := json.Marshal(users)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.ExecContext(ctx, s.db.Rebind(`
		INSERT INTO oap_hashes (oap_id, updated, hash, oap_users) VALUES (?, ?, ?, ?)
		ON CONFLICT (oap_id) DO UPDATE SET
			updated = excluded.updated,
			hash = excluded.hash,
			oap_users = excluded.oap_users`),
		state.OAPID, toMicros(state.Updated), state.Hash, string(data))
	if err != nil {
		return fmt.Errorf("update sync state %s: %w", state.OAPID, err)
	}
	return nil
}

// RecordPub links a remote publication id to an OAP identifier.
func (s *AssociationStore) RecordPub(ctx context.Context, pubID, oapID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, s.db.Rebind(`
		INSERT INTO pubs (pub_id, oap_id) VALUES (?, ?)
		ON CONFLICT (pub_id) DO UPDATE SET oap_id = excluded.oap_id`),
		pubID, oapID)
	if err != nil {
		return fmt.Errorf("record pub %s: %w", pubID, err)
	}
	return nil
}

// OAPIDForPub returns "" when the publication id is unknown.
func (s *AssociationStore) OAPIDForPub(ctx context.Context, pubID string) (string, error) {
	return s.lookupString(ctx, `SELECT oap_id FROM pubs WHERE pub_id = ?`, pubID)
}

// PubIDFor returns "" when the OAP identifier was never accepted remotely.
func (s *AssociationStore) PubIDFor(ctx context.Context, oapID string) (string, error) {
	return s.lookupString(ctx, `SELECT pub_id FROM pubs WHERE oap_id = ? ORDER BY pub_id LIMIT 1`, oapID)
}

func (s *AssociationStore) lookupString(ctx context.Context, query string, arg any) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var v string
	err := sqlx.GetContext(ctx, s.db, &v, s.db.Rebind(query), arg)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("lookup %v: %w", arg, err)
	}
	return v, nil
}

func (s *AssociationStore) RecordFlags(ctx context.Context, flags domain.JoinFlags) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, s.db.Rebind(`
		INSERT INTO oap_flags (oap_id, is_joined, is_compat) VALUES (?, ?, ?)
		ON CONFLICT (oap_id) DO UPDATE SET
			is_joined = excluded.is_joined,
			is_compat = excluded.is_compat`),
		flags.OAPID, flags.Joined, flags.Compatible)
	if err != nil {
		return fmt.Errorf("record flags %s: %w", flags.OAPID, err)
	}
	return nil
}

// GetFlags returns nil when no flags were recorded.
func (s *AssociationStore) GetFlags(ctx context.Context, oapID string) (*domain.JoinFlags, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var row struct {
		OAPID      string `db:"oap_id"`
		Joined     bool   `db:"is_joined"`
		Compatible bool   `db:"is_compat"`
	}
	err := sqlx.GetContext(ctx, s.db, &row,
		s.db.Rebind(`SELECT oap_id, is_joined, is_compat FROM oap_flags WHERE oap_id = ?`), oapID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get flags %s: %w", oapID, err)
	}
	return &domain.JoinFlags{OAPID: row.OAPID, Joined: row.Joined, Compatible: row.Compatible}, nil
}
