package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

const (
	// ElementsScheme is the identifier scheme of records harvested from the
	// research-information system itself.
	ElementsScheme = "elements"
	DOIScheme      = "doi"

	campusPrefix = "c-"
	keySep       = "::"
)

var (
	ErrNoTitle         = errors.New("record has no title")
	ErrNoCampusID      = errors.New("record has no campus identifier")
	ErrAmbiguousID     = errors.New("record has several campus identifiers and no elements identifier")
	ErrUnknownItemType = errors.New("unknown item type")
)

// Identifier is one (scheme, value) pair attached to a record.
type Identifier struct {
	Scheme string `json:"scheme"`
	Value  string `json:"value"`
}

// IsCampus reports whether the scheme is a campus-of-origin scheme (c-<campus>-id).
func (i Identifier) IsCampus() bool {
	return strings.HasPrefix(i.Scheme, campusPrefix)
}

// Key is the "scheme::value" form used as a database key.
func (i Identifier) Key() string {
	return i.Scheme + keySep + i.Value
}

// ParseIdentifierKey splits a "scheme::value" key.
func ParseIdentifierKey(key string) (Identifier, bool) {
	scheme, value, ok := strings.Cut(key, keySep)
	if !ok || scheme == "" {
		return Identifier{}, false
	}
	return Identifier{Scheme: scheme, Value: value}, true
}

// CampusScheme returns the identifier scheme for a campus name.
func CampusScheme(campus string) string {
	return campusPrefix + campus + "-id"
}

type Pagination struct {
	Begin string `json:"begin"`
	End   string `json:"end"`
}

// OtherInfo holds the less common fields, mostly present for books, chapters
// and conference items.
type OtherInfo struct {
	Abstract           string      `json:"abstract,omitempty"`
	Editors            []string    `json:"editors,omitempty"`
	Publisher          string      `json:"publisher,omitempty"`
	PlaceOfPublication string      `json:"place_of_publication,omitempty"`
	Pagination         *Pagination `json:"pagination,omitempty"`
	NameOfConference   string      `json:"name_of_conference,omitempty"`
	ParentTitle        string      `json:"parent_title,omitempty"`
}

func (o *OtherInfo) IsEmpty() bool {
	return o == nil || (o.Abstract == "" && len(o.Editors) == 0 && o.Publisher == "" &&
		o.PlaceOfPublication == "" && o.Pagination == nil && o.NameOfConference == "" && o.ParentTitle == "")
}

// RawItem is one bibliographic record from one source.
type RawItem struct {
	TypeName string       `json:"type_name"`
	Title    string       `json:"title"`
	DocKey   string       `json:"doc_key"`
	Updated  time.Time    `json:"updated"`
	Authors  []string     `json:"authors"` // "last, initials|email", order is significant
	Date     string       `json:"date,omitempty"`
	IDs      []Identifier `json:"ids"`
	Journal  string       `json:"journal,omitempty"`
	Volume   string       `json:"volume,omitempty"`
	Issue    string       `json:"issue,omitempty"`
	Other    *OtherInfo   `json:"other,omitempty"`
}

func (r *RawItem) CampusIDs() []Identifier {
	var out []Identifier
	for _, id := range r.IDs {
		if id.IsCampus() {
			out = append(out, id)
		}
	}
	return out
}

// PrimaryID is the identifier the item is stored under: its elements id when it
// came from the research-information system, otherwise its only campus id.
func (r *RawItem) PrimaryID() (Identifier, error) {
	for _, id := range r.IDs {
		if id.Scheme == ElementsScheme {
			return id, nil
		}
	}
	campus := r.CampusIDs()
	switch len(campus) {
	case 0:
		return Identifier{}, ErrNoCampusID
	case 1:
		return campus[0], nil
	default:
		return Identifier{}, ErrAmbiguousID
	}
}

// PrimaryKey is PrimaryID().Key(), or "" when the item has no usable primary id.
func (r *RawItem) PrimaryKey() string {
	id, err := r.PrimaryID()
	if err != nil {
		return ""
	}
	return id.Key()
}

// Validate checks the invariants every stored item must satisfy.
func (r *RawItem) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return ErrNoTitle
	}
	if len(r.CampusIDs()) == 0 {
		return ErrNoCampusID
	}
	if _, err := r.PrimaryID(); err != nil {
		return err
	}
	if _, ok := TypeID(r.TypeName); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownItemType, r.TypeName)
	}
	return nil
}

// AuthorEmails returns the lower-cased, non-empty e-mail parts of the authors.
func (r *RawItem) AuthorEmails() []string {
	var out []string
	for _, a := range r.Authors {
		if email := AuthorEmail(a); email != "" {
			out = append(out, email)
		}
	}
	return out
}

// AuthorName returns the "last, initials" part of an author string.
func AuthorName(author string) string {
	name, _, _ := strings.Cut(author, "|")
	return name
}

// AuthorEmail returns the lower-cased e-mail part of an author string.
func AuthorEmail(author string) string {
	_, email, _ := strings.Cut(author, "|")
	return strings.ToLower(strings.TrimSpace(email))
}

// FormatAuthor builds the "last, initials|email" form.
func FormatAuthor(last, initials, email string) string {
	return last + ", " + initials + "|" + email
}

// SortIdentifiers orders ids by scheme then value.
func SortIdentifiers(ids []Identifier) {
	sort.Slice(ids, func(i, j int) bool {
		if ids[i].Scheme != ids[j].Scheme {
			return ids[i].Scheme < ids[j].Scheme
		}
		return ids[i].Value < ids[j].Value
	})
}

// Elements type ids.
var typeNames = map[int]string{
	2:  "book",
	3:  "chapter",
	4:  "conference",
	5:  "journal-article",
	6:  "patent",
	7:  "report",
	8:  "software",
	9:  "performance",
	10: "composition",
	11: "design",
	12: "artefact",
	13: "exhibition",
	14: "other",
	15: "internet-publication",
	16: "scholarly-edition",
	17: "poster",
	18: "thesis",
	22: "dataset",
	50: "figure",
	51: "fileset",
	52: "media",
	53: "presentation",
}

var typeIDs = func() map[string]int {
	m := make(map[string]int, len(typeNames))
	for id, name := range typeNames {
		m[name] = id
	}
	return m
}()

func TypeName(id int) (string, bool) {
	name, ok := typeNames[id]
	return name, ok
}

func TypeID(name string) (int, bool) {
	id, ok := typeIDs[name]
	return id, ok
}
