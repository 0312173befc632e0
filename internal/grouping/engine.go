// Package grouping clusters raw items from different sources into
// publication groups.
package grouping

import (
	"sort"

	"github.com/rs/zerolog"

	"oap_import/internal/domain"
)

// A bucket spanning this many distinct dates is a recurring column, not one
// publication.
const seriesDateCount = 5

// Engine groups one corpus. It holds the per-run title counts and the author
// fingerprint cache, so a new Engine is built for every run.
type Engine struct {
	items        []*domain.RawItem
	titleCounts  map[string]int
	fingerprints map[*domain.RawItem]Fingerprint
	log          zerolog.Logger
}

func NewEngine(items []*domain.RawItem, log zerolog.Logger) *Engine {
	e := &Engine{
		items:        items,
		titleCounts:  make(map[string]int),
		fingerprints: make(map[*domain.RawItem]Fingerprint, len(items)),
		log:          log.With().Str("component", "grouping").Logger(),
	}
	for _, item := range items {
		e.titleCounts[item.Title]++
	}
	return e
}

// TitleCount is the number of items in the corpus with exactly this title.
func (e *Engine) TitleCount(title string) int {
	return e.titleCounts[title]
}

func (e *Engine) fingerprint(item *domain.RawItem) Fingerprint {
	fp, ok := e.fingerprints[item]
	if !ok {
		fp = FingerprintOf(item)
		e.fingerprints[item] = fp
	}
	return fp
}

// Compatible is the package-level Compatible with cached fingerprints.
func (e *Engine) Compatible(group []*domain.RawItem, cand *domain.RawItem) bool {
	return compatible(group, cand, e.fingerprint, e.log)
}

// Group partitions the corpus. Buckets are visited in document-key order and
// items inside a bucket in primary-key order, so the result does not depend
// on the order items were loaded in.
func (e *Engine) Group() []*domain.OAPub {
	buckets := make(map[string][]*domain.RawItem)
	for _, item := range e.items {
		buckets[item.DocKey] = append(buckets[item.DocKey], item)
	}
	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var pubs []*domain.OAPub
	for _, key := range keys {
		items := buckets[key]
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].PrimaryKey() < items[j].PrimaryKey()
		})

		if e.singletons(key, items) {
			for _, item := range items {
				pubs = append(pubs, &domain.OAPub{Items: []*domain.RawItem{item}})
			}
			continue
		}
		pubs = append(pubs, e.cluster(items)...)
	}

	e.log.Debug().Int("items", len(e.items)).Int("buckets", len(keys)).Int("groups", len(pubs)).Msg("grouped corpus")
	return pubs
}

func (e *Engine) singletons(key string, items []*domain.RawItem) bool {
	// Titles made only of punctuation share the empty key without being related.
	if len(items) == 1 || key == "" {
		return true
	}
	dates := make(map[string]struct{})
	for _, item := range items {
		dates[item.Date] = struct{}{}
	}
	if len(dates) >= seriesDateCount {
		e.log.Debug().Str("doc_key", key).Int("dates", len(dates)).Msg("probable series")
		return true
	}
	return IsSeriesTitle(items[0].Title, e.titleCounts[items[0].Title])
}

// cluster grows a group from the first remaining item, absorbing every later
// item compatible with the group as it stands, then repeats on what is left.
func (e *Engine) cluster(items []*domain.RawItem) []*domain.OAPub {
	var pubs []*domain.OAPub
	remaining := items
	for len(remaining) > 0 {
		group := []*domain.RawItem{remaining[0]}
		var rest []*domain.RawItem
		for _, cand := range remaining[1:] {
			if e.Compatible(group, cand) {
				group = append(group, cand)
			} else {
				rest = append(rest, cand)
			}
		}
		pubs = append(pubs, &domain.OAPub{Items: group})
		remaining = rest
	}
	return pubs
}

// Group is a one-shot NewEngine(items, log).Group().
func Group(items []*domain.RawItem, log zerolog.Logger) []*domain.OAPub {
	return NewEngine(items, log).Group()
}
