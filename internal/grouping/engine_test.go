package grouping

import (
	"fmt"
	"math/rand/v2"
	"sort"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oap_import/internal/domain"
	"oap_import/internal/normalize"
)

func item(campusID, title, date string, authors []string, ids ...domain.Identifier) *domain.RawItem {
	return &domain.RawItem{
		TypeName: "journal-article",
		Title:    title,
		DocKey:   normalize.DocKey(title),
		Date:     date,
		Authors:  authors,
		IDs:      append([]domain.Identifier{{Scheme: "c-ucla-id", Value: campusID}}, ids...),
	}
}

func doi(v string) domain.Identifier {
	return domain.Identifier{Scheme: "doi", Value: v}
}

// memberSets renders groups as sorted sets of member keys for order-free comparison.
func memberSets(pubs []*domain.OAPub) []string {
	var out []string
	for _, p := range pubs {
		var keys []string
		for _, it := range p.Items {
			keys = append(keys, it.PrimaryKey())
		}
		sort.Strings(keys)
		out = append(out, strings.Join(keys, ","))
	}
	sort.Strings(out)
	return out
}

func TestGroup_OverlappingAuthorsMerge(t *testing.T) {
	a := item("1", "Quantum Entanglement of the Photon", "2014-00-00", []string{"Smith, J|", "Jones, A|"})
	b := item("2", "quantum entanglement photon", "2014-00-00", []string{"Jones, A|", "Garcia, M|"})
	require.Equal(t, "quantum entanglement photon", a.DocKey)
	require.Equal(t, a.DocKey, b.DocKey)

	pubs := Group([]*domain.RawItem{a, b}, zerolog.Nop())
	require.Len(t, pubs, 1)
	assert.ElementsMatch(t, []*domain.RawItem{a, b}, pubs[0].Items)
}

func TestGroup_ConflictingDOIsNeverMerge(t *testing.T) {
	a := item("1", "Quantum entanglement photon", "", []string{"Smith, J|"}, doi("10.1/a"))
	b := item("2", "Quantum entanglement photon", "", []string{"Smith, J|"}, doi("10.1/b"))

	pubs := Group([]*domain.RawItem{a, b}, zerolog.Nop())
	assert.Len(t, pubs, 2)
}

func TestGroup_UnattributedSeedKeepsItsDOI(t *testing.T) {
	a := item("1", "Quantum entanglement photon", "", nil, doi("10.1/a"))
	b := item("2", "Quantum entanglement photon", "", []string{"Smith, J|"}, doi("10.1/b"))

	pubs := Group([]*domain.RawItem{b, a}, zerolog.Nop())
	require.Len(t, pubs, 2)
	for _, p := range pubs {
		assert.Len(t, p.Items, 1)
	}
}

func TestGroup_SeriesTitleSingletons(t *testing.T) {
	var items []*domain.RawItem
	for i := range 6 {
		items = append(items, item(fmt.Sprint(i), "Masthead", "2015-01-00", []string{"Editor, A|"}))
	}

	pubs := Group(items, zerolog.Nop())
	require.Len(t, pubs, 6)
	for _, p := range pubs {
		assert.Len(t, p.Items, 1)
	}
}

func TestGroup_ManyDatesSingletons(t *testing.T) {
	var items []*domain.RawItem
	for i := range 5 {
		items = append(items, item(fmt.Sprint(i), "Notes from the field", fmt.Sprintf("201%d-00-00", i), []string{"Doe, J|"}))
	}

	assert.Len(t, Group(items, zerolog.Nop()), 5)
	assert.Len(t, Group(items[:4], zerolog.Nop()), 1)
}

func TestGroup_GreedyNotTransitive(t *testing.T) {
	// b overlaps both, but a and c share no author: the seed a absorbs b, and
	// c no longer fits the group.
	a := item("1", "Shared title here", "", []string{"Alpha, A|"})
	b := item("2", "Shared title here", "", []string{"Alpha, A|", "Gamma, C|"})
	c := item("3", "Shared title here", "", []string{"Gamma, C|"})

	assert.Equal(t, []string{"c-ucla-id::1,c-ucla-id::2", "c-ucla-id::3"},
		memberSets(Group([]*domain.RawItem{c, b, a}, zerolog.Nop())))
}

func TestGroup_StableUnderShuffle(t *testing.T) {
	var items []*domain.RawItem
	authors := [][]string{
		{"Smith, J|"}, {"Smith, J|", "Jones, A|"}, {"Jones, A|"}, {"Garcia, M|"}, {}, {"Lee, K|", "Smith, J|"},
	}
	titles := []string{"Quantum entanglement photon", "Masthead", "On graphs", "Editorial", "On Graphs!"}
	n := 0
	for _, title := range titles {
		for _, auth := range authors {
			n++
			var ids []domain.Identifier
			if n%4 == 0 {
				ids = append(ids, doi(fmt.Sprintf("10.1/%d", n%3)))
			}
			items = append(items, item(fmt.Sprintf("%03d", n), title, fmt.Sprintf("20%02d-00-00", n%3), auth, ids...))
		}
	}

	want := memberSets(Group(items, zerolog.Nop()))
	rng := rand.New(rand.NewPCG(1, 2))
	for range 20 {
		shuffled := append([]*domain.RawItem(nil), items...)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		assert.Equal(t, want, memberSets(Group(shuffled, zerolog.Nop())))
	}
}

func TestGroup_EmptyDocKeySingletons(t *testing.T) {
	a := item("1", "?!", "", []string{"Smith, J|"})
	b := item("2", "...", "", []string{"Smith, J|"})
	require.Empty(t, a.DocKey)
	assert.Len(t, Group([]*domain.RawItem{a, b}, zerolog.Nop()), 2)
}

func TestEngine_TitleCount(t *testing.T) {
	e := NewEngine([]*domain.RawItem{
		item("1", "Masthead", "", nil),
		item("2", "Masthead", "", nil),
		item("3", "Other", "", nil),
	}, zerolog.Nop())
	assert.Equal(t, 2, e.TitleCount("Masthead"))
	assert.Equal(t, 0, e.TitleCount("Missing"))
}
