package service

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oap_import/internal/config"
	"oap_import/internal/domain"
	"oap_import/internal/identity"
	"oap_import/internal/storage/sqlstore"
)

type countingMinter struct {
	mu sync.Mutex
	n  int
}

func (m *countingMinter) Mint(context.Context, map[string]string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.n++
	return fmt.Sprintf("ark:/99999/fk4%03d", m.n), nil
}

type recordingRemote struct {
	mu    sync.Mutex
	puts  map[string]int
	links []string
}

func (r *recordingRemote) PutRecord(_ context.Context, oapID string, _ *domain.ExportRecord) (*domain.PutResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.puts[oapID]++
	return &domain.PutResult{PubID: "pub-" + oapID}, nil
}

func (r *recordingRemote) PostRelationship(_ context.Context, oapID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.links = append(r.links, oapID+"->"+userID)
	return nil
}

func (r *recordingRemote) totalPuts() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	total := 0
	for _, n := range r.puts {
		total += n
	}
	return total
}

// TestSync_RerunIsStable runs the full pipeline twice against real stores.
func TestSync_RerunIsStable(t *testing.T) {
	ctx := context.Background()
	db, err := sqlstore.Open(ctx, sqlstore.DriverSQLite, filepath.Join(t.TempDir(), "oap.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, sqlstore.Migrate(ctx, db))

	items := sqlstore.NewRawItemStore(db)
	users := sqlstore.NewUserStore(db)
	assocs := sqlstore.NewAssociationStore(db)

	corpus := []*domain.RawItem{
		rawItem("ucla", "1", "Quantum entanglement of the photon", "Smith, J|j.smith@ucla.edu"),
		rawItem("uci", "9", "Quantum entanglement of the photon", "Smith, J|"),
		rawItem("ucsf", "5", "An unrelated study of mice", "Lee, K|k.lee@ucsf.edu"),
		rawItem("ucsf", "6", "A paper nobody here wrote", "Nobody, N|n@elsewhere.org"),
	}
	for _, it := range corpus {
		_, err := items.Upsert(ctx, it)
		require.NoError(t, err)
	}
	_, _, err = users.Upsert(ctx, "j.smith@ucla.edu", "1001")
	require.NoError(t, err)
	_, _, err = users.Upsert(ctx, "k.lee@ucsf.edu", "3003")
	require.NoError(t, err)

	minter := &countingMinter{}
	remote := &recordingRemote{puts: make(map[string]int)}
	resolver := identity.NewResolver(assocs, minter, zerolog.Nop())
	svc := NewSyncService(items, users, resolver, assocs, remote, nil, zerolog.Nop(), config.SyncConfig{QueueSize: 1})

	first, err := svc.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, first.Groups)
	assert.Equal(t, 1, first.Skipped)
	assert.Equal(t, 2, first.Put)
	assert.Equal(t, 2, first.Relationships)
	assert.Equal(t, 2, minter.n)

	second, err := svc.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Put)
	assert.Equal(t, 2, second.Unchanged)
	assert.Equal(t, 0, second.Relationships)
	assert.Equal(t, 2, minter.n, "no new identifiers on rerun")
	assert.Equal(t, 2, remote.totalPuts())

	ucla, err := assocs.Lookup(ctx, []string{"c-ucla-id::1", "c-uci-id::9"})
	require.NoError(t, err)
	require.Len(t, ucla, 2)
	assert.Equal(t, ucla[0].OAPID, ucla[1].OAPID)

	pubID, err := assocs.PubIDFor(ctx, ucla[0].OAPID)
	require.NoError(t, err)
	assert.Equal(t, "pub-"+ucla[0].OAPID, pubID)
}
