package ingest

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"oap_import/internal/domain"
)

func TestMergeAuthors(t *testing.T) {
	tests := []struct {
		name   string
		dst    []string
		src    []string
		want   []string
		merged int
	}{
		{
			name:   "eight letter key",
			dst:    []string{"Smithson, JR|", "Smith, J|"},
			src:    []string{"Smith, J|js@ucla.edu"},
			want:   []string{"Smithson, JR|", "Smith, J|js@ucla.edu"},
			merged: 1,
		},
		{
			name:   "four letter fallback",
			dst:    []string{"Jones, Alice|"},
			src:    []string{"Jones, A B|aj@uci.edu"},
			want:   []string{"Jones, A B|aj@uci.edu"},
			merged: 1,
		},
		{
			name:   "accents ignored",
			dst:    []string{"Müller, H|"},
			src:    []string{"Muller, H|hm@ucsf.edu"},
			want:   []string{"Muller, H|hm@ucsf.edu"},
			merged: 1,
		},
		{
			name:   "email already present",
			dst:    []string{"Lee, K|KLee@ucla.edu"},
			src:    []string{"Lee, K|klee@ucla.edu"},
			want:   []string{"Lee, K|KLee@ucla.edu"},
			merged: 0,
		},
		{
			name:   "destination author already has an email",
			dst:    []string{"Lee, K|other@ucla.edu"},
			src:    []string{"Lee, K|klee@ucla.edu"},
			want:   []string{"Lee, K|other@ucla.edu"},
			merged: 0,
		},
		{
			name:   "no match",
			dst:    []string{"Nguyen, T|"},
			src:    []string{"Garcia, M|mg@uci.edu", "Nguyen, T|"},
			want:   []string{"Nguyen, T|"},
			merged: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dst := &domain.RawItem{Authors: append([]string(nil), tt.dst...)}
			src := &domain.RawItem{Authors: tt.src}
			assert.Equal(t, tt.merged, MergeAuthors(dst, src, zerolog.Nop()))
			assert.Equal(t, tt.want, dst.Authors)
		})
	}
}
