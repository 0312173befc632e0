package grouping

import (
	"github.com/rs/zerolog"

	"oap_import/internal/domain"
	"oap_import/internal/normalize"
)

// Fingerprint is the set of 4-letter author keys of an item.
type Fingerprint map[string]struct{}

// FingerprintOf computes the author fingerprint of item. Authors whose key
// is empty contribute nothing.
func FingerprintOf(item *domain.RawItem) Fingerprint {
	fp := make(Fingerprint, len(item.Authors))
	for _, author := range item.Authors {
		if key := normalize.AuthorKey(author); key != "" {
			fp[key] = struct{}{}
		}
	}
	return fp
}

func (f Fingerprint) Intersects(other Fingerprint) bool {
	small, big := f, other
	if len(big) < len(small) {
		small, big = big, small
	}
	for k := range small {
		if _, ok := big[k]; ok {
			return true
		}
	}
	return false
}

// Compatible reports whether cand may join group. It computes fingerprints
// on the fly; the grouping engine uses its cached variant.
func Compatible(group []*domain.RawItem, cand *domain.RawItem) bool {
	return compatible(group, cand, FingerprintOf, zerolog.Nop())
}

// compatible implements the test shared by Compatible and the engine.
//
// A candidate with no author keys is a wildcard. Otherwise, for every member
// that has author keys, the type must match and the fingerprints must
// overlap. Non-campus ids of the candidate must agree with the ids of every
// member, attributed or not; campus ids are expected to differ and are
// ignored.
func compatible(group []*domain.RawItem, cand *domain.RawItem, fingerprint func(*domain.RawItem) Fingerprint, log zerolog.Logger) bool {
	candFP := fingerprint(cand)
	if len(candFP) == 0 {
		return true
	}

	ids := make(map[string]string)
	for _, member := range group {
		for _, id := range member.IDs {
			ids[id.Scheme] = id.Value
		}
		memberFP := fingerprint(member)
		if len(memberFP) == 0 {
			continue
		}
		if member.TypeName != cand.TypeName || !memberFP.Intersects(candFP) {
			return false
		}
	}

	for _, id := range cand.IDs {
		if id.IsCampus() {
			continue
		}
		if v, ok := ids[id.Scheme]; ok && v != id.Value {
			log.Debug().
				Str("scheme", id.Scheme).
				Str("candidate", id.Value).
				Str("group", v).
				Msg("identifier mismatch")
			return false
		}
	}
	return true
}
