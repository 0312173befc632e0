package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewExportRecord_OneDOI(t *testing.T) {
	ucla := Identifier{Scheme: "c-ucla-id", Value: "1"}
	uci := Identifier{Scheme: "c-uci-id", Value: "2"}
	ids := []Identifier{ucla, uci, {Scheme: DOIScheme, Value: "10.1/a"}, {Scheme: DOIScheme, Value: "10.1/b"}}

	best := &RawItem{TypeName: "journal-article", Title: "T", IDs: []Identifier{uci, {Scheme: DOIScheme, Value: "10.1/b"}}}
	rec := NewExportRecord(best, ids)
	assert.Equal(t, []Identifier{ucla, uci, {Scheme: DOIScheme, Value: "10.1/b"}}, rec.IDs)

	unattributed := &RawItem{TypeName: "journal-article", Title: "T", IDs: []Identifier{ucla}}
	rec = NewExportRecord(unattributed, ids)
	assert.Equal(t, []Identifier{ucla, uci, {Scheme: DOIScheme, Value: "10.1/a"}}, rec.IDs)
}
