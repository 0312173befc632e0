package feed

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/antchfx/xmlquery"

	"oap_import/internal/domain"
	"oap_import/internal/normalize"
)

var pageRangeRe = regexp.MustCompile(`(\d+)\s*-\s*(\d+)`)

// TextAt returns the inner text of the first node matching path under node.
func TextAt(node *xmlquery.Node, path string) (string, bool) {
	if node == nil {
		return "", false
	}
	found := xmlquery.FindOne(node, path)
	if found == nil {
		return "", false
	}
	return found.InnerText(), true
}

func textOrEmpty(node *xmlquery.Node, path string) string {
	s, _ := TextAt(node, path)
	return s
}

// ParseNative converts a <native> element into a raw item. It does not
// validate the result; callers that store items call Validate themselves.
func ParseNative(native *xmlquery.Node, typeName string, updated time.Time, campuses []string) *domain.RawItem {
	title := normalize.Normalize(textOrEmpty(native, "field[@name='title']/text"))
	item := &domain.RawItem{
		TypeName: typeName,
		Title:    title,
		DocKey:   normalize.DocKey(title),
		Updated:  updated,
		Authors:  parsePeople(xmlquery.Find(native, "field[@name='authors']/people/person")),
		Date:     parseDate(xmlquery.FindOne(native, "field[@name='publication-date']/date")),
		IDs:      parseIdentifiers(native, campuses),
		Journal:  normalize.Normalize(textOrEmpty(native, "field[@name='journal']/text")),
		Volume:   normalize.Normalize(textOrEmpty(native, "field[@name='volume']/text")),
		Issue:    normalize.Normalize(textOrEmpty(native, "field[@name='issue']/text")),
	}

	other := &domain.OtherInfo{
		Abstract:           normalize.Normalize(textOrEmpty(native, "field[@name='abstract']/text")),
		Publisher:          normalize.Normalize(textOrEmpty(native, "field[@name='publisher']/text")),
		PlaceOfPublication: normalize.Normalize(textOrEmpty(native, "field[@name='place-of-publication']/text")),
		NameOfConference:   normalize.Normalize(textOrEmpty(native, "field[@name='name-of-conference']/text")),
		ParentTitle:        normalize.Normalize(textOrEmpty(native, "field[@name='parent-title']/text")),
		Pagination:         parsePagination(textOrEmpty(native, "field[@name='pagination']/text")),
	}
	if lname, ok := TextAt(native, "field[@name='editors']//person/last-name"); ok && strings.TrimSpace(lname) != "" {
		other.Editors = parsePeople(xmlquery.Find(native, "field[@name='editors']//person"))
	}
	if !other.IsEmpty() {
		item.Other = other
	}
	return item
}

func parsePeople(people []*xmlquery.Node) []string {
	var out []string
	for _, person := range people {
		out = append(out, domain.FormatAuthor(
			normalize.Normalize(textOrEmpty(person, "last-name")),
			normalize.Normalize(textOrEmpty(person, "initials")),
			normalize.Normalize(textOrEmpty(person, "email-address")),
		))
	}
	return out
}

func parseDate(date *xmlquery.Node) string {
	if date == nil {
		return ""
	}
	part := func(name string, width int) string {
		v := strings.TrimSpace(textOrEmpty(date, name))
		if v == "" {
			v = "0"
		}
		if len(v) < width {
			v = strings.Repeat("0", width-len(v)) + v
		}
		return v
	}
	return fmt.Sprintf("%s-%s-%s", part("year", 4), part("month", 2), part("day", 2))
}

func parseIdentifiers(native *xmlquery.Node, campuses []string) []domain.Identifier {
	var ids []domain.Identifier
	for _, campus := range campuses {
		scheme := domain.CampusScheme(campus)
		if v, ok := TextAt(native, "field[@name='"+scheme+"']/text"); ok {
			ids = append(ids, domain.Identifier{Scheme: scheme, Value: normalize.Identifier(v)})
		}
	}

	doi, ok := TextAt(native, "doi/text")
	if !ok {
		doi, ok = TextAt(native, "field[@name='doi']/text")
	}
	if ok {
		ids = append(ids, domain.Identifier{Scheme: domain.DOIScheme, Value: normalize.Identifier(doi)})
	}

	for _, ident := range xmlquery.Find(native, "field[@name='external-identifiers']/identifiers/identifier") {
		scheme := strings.ToLower(strings.TrimSpace(ident.SelectAttr("scheme")))
		if scheme == "" {
			continue
		}
		ids = append(ids, domain.Identifier{Scheme: scheme, Value: normalize.Identifier(ident.InnerText())})
	}
	return ids
}

// parsePagination reads "213-230", and also the abbreviated "213-30".
func parsePagination(text string) *domain.Pagination {
	m := pageRangeRe.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return nil
	}
	first, last := m[1], m[2]
	if len(last) < len(first) {
		last = first[:len(first)-len(last)] + last
	}
	return &domain.Pagination{Begin: first, End: last}
}
