package ingest

import (
	"github.com/rs/zerolog"

	"oap_import/internal/domain"
	"oap_import/internal/normalize"
)

// Merge key lengths, tried in order.
var mergeKeyLengths = []int{8, 4}

// MergeAuthors copies e-mail bearing authors of src over the matching
// e-mail-less authors of dst. An author matches when its surname and
// initials key agrees on 8 letters, or failing that on 4. It returns how
// many authors were copied; e-mails with no match are logged and dropped.
func MergeAuthors(dst, src *domain.RawItem, log zerolog.Logger) int {
	have := make(map[string]struct{}, len(dst.Authors))
	for _, email := range dst.AuthorEmails() {
		have[email] = struct{}{}
	}

	merged := 0
	for _, author := range src.Authors {
		email := domain.AuthorEmail(author)
		if email == "" {
			continue
		}
		if _, ok := have[email]; ok {
			continue
		}
		i := matchAuthor(dst.Authors, author)
		if i < 0 {
			log.Warn().
				Str("campus_id", dst.PrimaryKey()).
				Str("author", author).
				Strs("authors", dst.Authors).
				Msg("no author to carry e-mail over to")
			continue
		}
		dst.Authors[i] = author
		have[email] = struct{}{}
		merged++
	}
	return merged
}

func matchAuthor(authors []string, author string) int {
	for _, n := range mergeKeyLengths {
		key := normalize.AuthorMergeKey(author, n)
		if key == "" {
			continue
		}
		for i, a := range authors {
			if domain.AuthorEmail(a) == "" && normalize.AuthorMergeKey(a, n) == key {
				return i
			}
		}
	}
	return -1
}
