package elements

import (
	"encoding/xml"
	"fmt"
	"strings"

	"oap_import/internal/domain"
)

const apiNamespace = "http://www.symplectic.co.uk/publications/api"

type importRecord struct {
	XMLName xml.Name `xml:"import-record"`
	Xmlns   string   `xml:"xmlns,attr"`
	TypeID  int      `xml:"type-id,attr"`
	Native  native   `xml:"native"`
}

type native struct {
	Fields []field `xml:"field"`
}

type field struct {
	Name        string       `xml:"name,attr"`
	Text        string       `xml:"text,omitempty"`
	People      *people      `xml:"people,omitempty"`
	Date        *date        `xml:"date,omitempty"`
	Identifiers *identifiers `xml:"identifiers,omitempty"`
}

type people struct {
	Persons []person `xml:"person"`
}

type person struct {
	LastName string `xml:"last-name"`
	Initials string `xml:"initials,omitempty"`
	Email    string `xml:"email-address,omitempty"`
}

type date struct {
	Year  string `xml:"year,omitempty"`
	Month string `xml:"month,omitempty"`
	Day   string `xml:"day,omitempty"`
}

type identifiers struct {
	Items []identifier `xml:"identifier"`
}

type identifier struct {
	Scheme string `xml:"scheme,attr"`
	Value  string `xml:",chardata"`
}

type importRelationship struct {
	XMLName    xml.Name `xml:"import-relationship"`
	Xmlns      string   `xml:"xmlns,attr"`
	FromObject string   `xml:"from-object"`
	ToObject   string   `xml:"to-object"`
	TypeName   string   `xml:"type-name"`
}

func textField(name, value string) []field {
	if value == "" {
		return nil
	}
	return []field{{Name: name, Text: value}}
}

func peopleField(name string, authors []string) []field {
	if len(authors) == 0 {
		return nil
	}
	p := &people{}
	for _, a := range authors {
		last, initials, _ := strings.Cut(domain.AuthorName(a), ",")
		p.Persons = append(p.Persons, person{
			LastName: strings.TrimSpace(last),
			Initials: strings.TrimSpace(initials),
			Email:    domain.AuthorEmail(a),
		})
	}
	return []field{{Name: name, People: p}}
}

// dateField turns "2014-03-00" into year and month; zero parts are unknown.
func dateField(value string) []field {
	parts := strings.SplitN(value, "-", 3)
	if value == "" || len(parts) != 3 {
		return nil
	}
	known := func(s string) string {
		if strings.Trim(s, "0") == "" {
			return ""
		}
		return s
	}
	d := &date{Year: known(parts[0]), Month: known(parts[1]), Day: known(parts[2])}
	if d.Year == "" {
		return nil
	}
	return []field{{Name: "publication-date", Date: d}}
}

// encodeRecord renders rec as an import-record. Campus ids and the first DOI
// get their own fields, every other id goes into external-identifiers.
func encodeRecord(rec *domain.ExportRecord) ([]byte, error) {
	typeID, ok := domain.TypeID(rec.TypeName)
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownItemType, rec.TypeName)
	}

	var fields []field
	fields = append(fields, textField("title", rec.Title)...)
	fields = append(fields, peopleField("authors", rec.Authors)...)
	fields = append(fields, dateField(rec.Date)...)

	var external []identifier
	hasDOI := false
	for _, id := range rec.IDs {
		switch {
		case id.Scheme == domain.DOIScheme:
			if !hasDOI {
				fields = append(fields, textField(id.Scheme, id.Value)...)
				hasDOI = true
			}
		case id.IsCampus():
			fields = append(fields, textField(id.Scheme, id.Value)...)
		case id.Scheme == domain.ElementsScheme:
			// Elements' own ids are not re-imported.
		default:
			external = append(external, identifier{Scheme: id.Scheme, Value: id.Value})
		}
	}
	if len(external) > 0 {
		fields = append(fields, field{Name: "external-identifiers", Identifiers: &identifiers{Items: external}})
	}

	fields = append(fields, textField("journal", rec.Journal)...)
	fields = append(fields, textField("volume", rec.Volume)...)
	fields = append(fields, textField("issue", rec.Issue)...)

	if o := rec.Other; o != nil {
		fields = append(fields, textField("abstract", o.Abstract)...)
		fields = append(fields, peopleField("editors", o.Editors)...)
		fields = append(fields, textField("publisher", o.Publisher)...)
		fields = append(fields, textField("place-of-publication", o.PlaceOfPublication)...)
		fields = append(fields, textField("name-of-conference", o.NameOfConference)...)
		fields = append(fields, textField("parent-title", o.ParentTitle)...)
		if o.Pagination != nil {
			fields = append(fields, textField("pagination", o.Pagination.Begin+"-"+o.Pagination.End)...)
		}
	}

	body, err := xml.Marshal(importRecord{Xmlns: apiNamespace, TypeID: typeID, Native: native{Fields: fields}})
	if err != nil {
		return nil, fmt.Errorf("encode import record: %w", err)
	}
	return append([]byte(xml.Header), body...), nil
}

func encodeRelationship(source, oapID, userID string) ([]byte, error) {
	body, err := xml.Marshal(importRelationship{
		Xmlns:      apiNamespace,
		FromObject: fmt.Sprintf("publication(source-%s,pid-%s)", source, oapID),
		ToObject:   fmt.Sprintf("user(pid-%s)", userID),
		TypeName:   "publication-user-authorship",
	})
	if err != nil {
		return nil, fmt.Errorf("encode import relationship: %w", err)
	}
	return append([]byte(xml.Header), body...), nil
}
