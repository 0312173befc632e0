package domain

import (
	"strings"
	"unicode/utf8"

	"oap_import/internal/normalize"
)

// OAPub is a group of raw items believed to be the same publication.
type OAPub struct {
	Items      []*RawItem
	UserEmails []string // sorted
	UserIDs    []string // sorted proprietary ids
}

// Identifiers is the de-duplicated union of the members' ids, sorted.
func (p *OAPub) Identifiers() []Identifier {
	seen := make(map[Identifier]struct{})
	var out []Identifier
	for _, item := range p.Items {
		for _, id := range item.IDs {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	SortIdentifiers(out)
	return out
}

// CampusIDs returns the campus ids of all members, de-duplicated and sorted.
func (p *OAPub) CampusIDs() []Identifier {
	var out []Identifier
	for _, id := range p.Identifiers() {
		if id.IsCampus() {
			out = append(out, id)
		}
	}
	return out
}

// HasCampus reports whether any member carries an id of the given campus.
func (p *OAPub) HasCampus(campus string) bool {
	scheme := CampusScheme(campus)
	for _, id := range p.Identifiers() {
		if id.Scheme == scheme {
			return true
		}
	}
	return false
}

// AuthorEmails returns the distinct author e-mails across all members.
func (p *OAPub) AuthorEmails() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, item := range p.Items {
		for _, email := range item.AuthorEmails() {
			if _, ok := seen[email]; ok {
				continue
			}
			seen[email] = struct{}{}
			out = append(out, email)
		}
	}
	return out
}

// Best picks the member with the longest normalized descriptive string, a
// proxy for the most complete metadata. Ties go to the member with more
// identifiers, then to the smallest primary key, so the choice does not
// depend on member order.
func (p *OAPub) Best() *RawItem {
	var best *RawItem
	bestLen := -1
	for _, item := range p.Items {
		n := utf8.RuneCountInString(descriptiveString(item))
		if best == nil || n > bestLen || (n == bestLen && preferOnTie(item, best)) {
			best, bestLen = item, n
		}
	}
	return best
}

func preferOnTie(a, b *RawItem) bool {
	if len(a.IDs) != len(b.IDs) {
		return len(a.IDs) > len(b.IDs)
	}
	return a.PrimaryKey() < b.PrimaryKey()
}

func descriptiveString(item *RawItem) string {
	parts := []string{item.Title, item.Date, strings.Join(item.Authors, ";"), item.Journal, item.Volume, item.Issue}
	return normalize.Normalize(strings.Join(parts, " "))
}
