// Package identity assigns OAP identifiers to publication groups.
package identity

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"oap_import/internal/domain"
	"oap_import/internal/normalize"
)

// ERC placeholder for a value that is not available.
const unavailable = "(:unav)"

type AssociationStore interface {
	Lookup(ctx context.Context, campusIDs []string) ([]domain.Association, error)
	Associate(ctx context.Context, a domain.Association) error
}

type Minter interface {
	Mint(ctx context.Context, metadata map[string]string) (string, error)
}

type Resolver struct {
	store  AssociationStore
	minter Minter
	log    zerolog.Logger
	now    func() time.Time
}

func NewResolver(store AssociationStore, minter Minter, log zerolog.Logger) *Resolver {
	return &Resolver{
		store:  store,
		minter: minter,
		log:    log.With().Str("component", "identity").Logger(),
		now:    time.Now,
	}
}

// WithClock replaces the time source; used by tests.
func (r *Resolver) WithClock(now func() time.Time) *Resolver {
	r.now = now
	return r
}

// Resolve returns the OAP identifier of the group whose identifiers are ids.
//
// The newest existing association of any campus id wins. When there is none
// a new identifier is minted from best's metadata. Afterwards every campus
// id of the group points at the result.
func (r *Resolver) Resolve(ctx context.Context, ids []domain.Identifier, best *domain.RawItem) (string, error) {
	var campusKeys []string
	for _, id := range ids {
		if id.IsCampus() {
			campusKeys = append(campusKeys, id.Key())
		}
	}
	if len(campusKeys) == 0 {
		return "", domain.ErrNoCampusID
	}

	existing, err := r.store.Lookup(ctx, campusKeys)
	if err != nil {
		return "", fmt.Errorf("lookup associations: %w", err)
	}

	oapID := newest(existing)
	if oapID == "" {
		oapID, err = r.minter.Mint(ctx, r.metadata(best))
		if err != nil {
			return "", fmt.Errorf("mint oap id for %s: %w", campusKeys[0], err)
		}
		r.log.Info().Str("oap_id", oapID).Strs("campus_ids", campusKeys).Msg("minted oap id")
	} else if conflicting(existing) {
		r.log.Warn().
			Str("oap_id", oapID).
			Interface("associations", existing).
			Msg("campus ids of one group map to different oap ids, keeping the newest")
	}

	current := make(map[string]string, len(existing))
	for _, a := range existing {
		current[a.CampusID] = a.OAPID
	}
	now := r.now().UTC()
	for _, key := range campusKeys {
		old, ok := current[key]
		if ok && old == oapID {
			continue
		}
		if ok {
			r.log.Warn().Str("campus_id", key).Str("old", old).Str("new", oapID).Msg("changing oap id association")
		}
		if err := r.store.Associate(ctx, domain.Association{CampusID: key, OAPID: oapID, Updated: now}); err != nil {
			return "", fmt.Errorf("associate %s: %w", key, err)
		}
	}
	return oapID, nil
}

// newest returns the OAP id of the latest association. Equal timestamps
// keep the first, and associations arrive sorted by campus id.
func newest(assocs []domain.Association) string {
	var best *domain.Association
	for i := range assocs {
		if best == nil || assocs[i].Updated.After(best.Updated) {
			best = &assocs[i]
		}
	}
	if best == nil {
		return ""
	}
	return best.OAPID
}

func conflicting(assocs []domain.Association) bool {
	for _, a := range assocs[1:] {
		if a.OAPID != assocs[0].OAPID {
			return true
		}
	}
	return false
}

func (r *Resolver) metadata(best *domain.RawItem) map[string]string {
	var names []string
	for _, author := range best.Authors {
		last, _, _ := strings.Cut(domain.AuthorName(author), ",")
		if last = strings.TrimSpace(normalize.ERC(last)); last != "" {
			names = append(names, last)
		}
	}
	who := strings.Join(names, "; ")
	if who == "" {
		who = unavailable
	}
	what := normalize.ERC(best.Title)
	if what == "" {
		what = unavailable
	}
	return map[string]string{
		"erc.who":  who,
		"erc.what": what,
		"erc.when": r.now().UTC().Format(time.RFC3339),
	}
}
