package main

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"oap_import/internal/domain"
	"oap_import/internal/storage/sqlstore"
)

// arkPrefix is prepended to bare OAP identifiers such as "p4abc123".
const arkPrefix = "ark:/13030/"

func init() {
	rootCmd.AddCommand(findCmd)
}

var findCmd = &cobra.Command{
	Use:   "find <id>...",
	Short: "Show what the local database knows about an identifier",
	Long: `Show what the local database knows about an identifier.

An id may be an OAP identifier (with or without the ark:/13030/ prefix), a
publication id of the research-information system, or a campus id, either
in "scheme::value" form or as a bare value of any campus.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runFind,
}

// Match describes one OAP publication, or one stored item not synced yet.
type Match struct {
	OAPID      string   `json:"oap_id,omitempty"`
	PubID      string   `json:"pub_id,omitempty"`
	CampusIDs  []string `json:"campus_ids"`
	Titles     []string `json:"titles,omitempty"`
	Users      []string `json:"users,omitempty"`
	Joined     *bool    `json:"joined,omitempty"`
	Compatible *bool    `json:"compatible,omitempty"`
}

type FindResult struct {
	Query   string  `json:"query"`
	Matches []Match `json:"matches"`
}

type finder struct {
	items  *sqlstore.RawItemStore
	assocs *sqlstore.AssociationStore
}

func runFind(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	f := &finder{items: a.items, assocs: a.assocs}
	results := make([]FindResult, 0, len(args))
	for _, query := range args {
		res, err := f.find(ctx, query)
		if err != nil {
			return err
		}
		results = append(results, *res)
	}
	return printJSON(cmd.OutOrStdout(), results)
}

func (f *finder) find(ctx context.Context, query string) (*FindResult, error) {
	query = strings.TrimSpace(query)
	res := &FindResult{Query: query, Matches: []Match{}}

	oapIDs, err := f.oapIDs(ctx, query)
	if err != nil {
		return nil, err
	}
	for _, oapID := range oapIDs {
		m, err := f.describe(ctx, oapID)
		if err != nil {
			return nil, err
		}
		res.Matches = append(res.Matches, *m)
	}
	if len(res.Matches) > 0 {
		return res, nil
	}

	// Stored but never associated, e.g. a group without known users.
	keys, err := f.campusKeys(ctx, query, f.items.FindBySuffix)
	if err != nil {
		return nil, err
	}
	for _, key := range keys {
		item, err := f.items.Get(ctx, key)
		if err != nil {
			return nil, err
		}
		m := Match{CampusIDs: []string{key}}
		if item != nil {
			m.Titles = []string{item.Title}
		}
		res.Matches = append(res.Matches, m)
	}
	return res, nil
}

// oapIDs resolves query to the OAP identifiers it may refer to.
func (f *finder) oapIDs(ctx context.Context, query string) ([]string, error) {
	for _, candidate := range []string{query, arkPrefix + query} {
		assocs, err := f.assocs.ByOAPID(ctx, candidate)
		if err != nil {
			return nil, err
		}
		if len(assocs) > 0 {
			return []string{candidate}, nil
		}
	}

	oapID, err := f.assocs.OAPIDForPub(ctx, query)
	if err != nil {
		return nil, err
	}
	if oapID != "" {
		return []string{oapID}, nil
	}

	keys, err := f.campusKeys(ctx, query, f.assocs.FindCampusIDs)
	if err != nil || len(keys) == 0 {
		return nil, err
	}
	assocs, err := f.assocs.Lookup(ctx, keys)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	var out []string
	for _, a := range assocs {
		if _, ok := seen[a.OAPID]; !ok {
			seen[a.OAPID] = struct{}{}
			out = append(out, a.OAPID)
		}
	}
	return out, nil
}

// campusKeys accepts a full "scheme::value" key as is and otherwise searches
// every scheme for the bare value.
func (f *finder) campusKeys(ctx context.Context, query string, bySuffix func(context.Context, string) ([]string, error)) ([]string, error) {
	if id, ok := domain.ParseIdentifierKey(query); ok {
		keys, err := bySuffix(ctx, id.Value)
		if err != nil {
			return nil, err
		}
		if slices.Contains(keys, query) {
			return []string{query}, nil
		}
		return nil, nil
	}
	if len(query) < 5 {
		return nil, nil
	}
	return bySuffix(ctx, query)
}

func (f *finder) describe(ctx context.Context, oapID string) (*Match, error) {
	m := &Match{OAPID: oapID}

	assocs, err := f.assocs.ByOAPID(ctx, oapID)
	if err != nil {
		return nil, err
	}
	for _, a := range assocs {
		m.CampusIDs = append(m.CampusIDs, a.CampusID)
	}

	items, err := f.items.GetMany(ctx, m.CampusIDs)
	if err != nil {
		return nil, err
	}
	for _, key := range m.CampusIDs {
		if item, ok := items[key]; ok {
			m.Titles = append(m.Titles, item.Title)
		}
	}

	if m.PubID, err = f.assocs.PubIDFor(ctx, oapID); err != nil {
		return nil, err
	}

	flags, err := f.assocs.GetFlags(ctx, oapID)
	if err != nil {
		return nil, err
	}
	if flags != nil {
		m.Joined, m.Compatible = &flags.Joined, &flags.Compatible
	}

	state, err := f.assocs.GetSyncState(ctx, oapID)
	if err != nil {
		return nil, fmt.Errorf("describe %s: %w", oapID, err)
	}
	m.Users = state.Users
	return m, nil
}
