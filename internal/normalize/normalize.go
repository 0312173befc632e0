// Package normalize turns noisy bibliographic field values into comparable keys.
package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	ltRe         = regexp.MustCompile(`&lt[;,]`)
	gtRe         = regexp.MustCompile(`&gt[;,]`)
	tagRe        = regexp.MustCompile(`<[^>]+>`)
	entityRe     = regexp.MustCompile(`&(#[0-9]+|#[xX][0-9a-fA-F]+|\w+)[;,]`)
	whitespaceRe = regexp.MustCompile(`\s+`)
	nonAlnumRe   = regexp.MustCompile(`[^a-z0-9 ]`)
	nonAlphaRe   = regexp.MustCompile(`[^a-z]`)

	doiURLRe       = regexp.MustCompile(`^https?://(dx\.)?doi\.org/`)
	idPrefixRe     = regexp.MustCompile(`^(doi(\.org)?|pmid|pmcid):\s*`)
	trailingDotsRe = regexp.MustCompile(`\.+$`)
)

// Letters that NFD does not decompose into a base letter plus a mark.
var letterReplacer = strings.NewReplacer(
	"ł", "l", "Ł", "L", "ø", "o", "Ø", "O", "đ", "d", "Đ", "D",
	"ð", "d", "Ð", "D", "ħ", "h", "Ħ", "H", "ı", "i", "ŀ", "l", "Ŀ", "L",
	"ŉ", "n", "ŋ", "n", "Ŋ", "N", "ſ", "s", "ŧ", "t", "Ŧ", "T", "ĸ", "k",
	"ß", "ss", "æ", "ae", "Æ", "AE", "œ", "oe", "Œ", "OE", "þ", "th", "Þ", "Th",
)

var namedEntities = map[string]string{
	"amp":  "&",
	"quot": `"`,
	"apos": "'",
	"nbsp": " ",
}

// Common English stop words, dropped from document keys.
var stopWords = func() map[string]struct{} {
	words := strings.Fields("a an the of and to in that was his he it with is for as had you not be her on at by which have or " +
		"from this him but all she they were my are me one their so an said them we who would been will no when")
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}()

// Transliterate removes accents, leaving the base letters.
func Transliterate(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return letterReplacer.Replace(out)
}

// Normalize strips markup, decodes character references, removes the "|"
// field separator and collapses whitespace. Accents are kept.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	s = ltRe.ReplaceAllString(s, "<")
	s = gtRe.ReplaceAllString(s, ">")
	s = tagRe.ReplaceAllString(s, " ")
	s = strings.ReplaceAll(s, `\n`, " ")
	s = entityRe.ReplaceAllStringFunc(s, decodeEntity)
	s = strings.ReplaceAll(s, "|", "")
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

func decodeEntity(ref string) string {
	body := ref[1 : len(ref)-1]
	if !strings.HasPrefix(body, "#") {
		return namedEntities[body]
	}
	var (
		n   uint64
		err error
	)
	if len(body) > 1 && (body[1] == 'x' || body[1] == 'X') {
		n, err = strconv.ParseUint(body[2:], 16, 32)
	} else {
		n, err = strconv.ParseUint(body[1:], 10, 32)
	}
	if err != nil {
		return ""
	}
	r := rune(n)
	if !utf8.ValidRune(r) || unicode.IsControl(r) {
		return ""
	}
	return string(r)
}

// Identifier canonicalizes identifier values: DOIs, PubMed ids and the like.
func Identifier(s string) string {
	t := strings.ToLower(strings.TrimSpace(s))
	t = doiURLRe.ReplaceAllString(t, "")
	t = idPrefixRe.ReplaceAllString(t, "")
	t = trailingDotsRe.ReplaceAllString(t, "")
	t = unwrap(t, "[", "]")
	t = unwrap(t, `"`, `"`)
	return strings.TrimSpace(t)
}

func unwrap(s, open, close string) string {
	if len(s) >= len(open)+len(close) && strings.HasPrefix(s, open) && strings.HasSuffix(s, close) {
		return s[len(open) : len(s)-len(close)]
	}
	return s
}

// FilterTitle splits a title into the words used for its document key.
//
// Stop words and punctuation are dropped. When that leaves less than half of
// the title (all stop words, or a non-Latin script), the plain lower-cased
// words are used instead so the key never collapses to nothing.
func FilterTitle(title string) []string {
	normalized := Normalize(title)
	cleaned := nonAlnumRe.ReplaceAllString(strings.ToLower(Transliterate(normalized)), " ")

	var key []string
	for _, w := range strings.Fields(cleaned) {
		if _, stop := stopWords[w]; !stop {
			key = append(key, w)
		}
	}
	if utf8.RuneCountInString(strings.Join(key, " ")) >= utf8.RuneCountInString(normalized)/2 {
		return key
	}
	return strings.Fields(strings.ToLower(normalized))
}

// DocKey is the space-joined FilterTitle.
func DocKey(title string) string {
	return strings.Join(FilterTitle(title), " ")
}

// AuthorKey is the 4-letter surname-first key used for author fingerprints.
func AuthorKey(author string) string {
	return AuthorMergeKey(author, 4)
}

// AuthorMergeKey is the first n letters of the author's "last, initials"
// with accents removed and everything but a-z dropped.
func AuthorMergeKey(author string, n int) string {
	name, _, _ := strings.Cut(author, "|")
	s := nonAlphaRe.ReplaceAllString(strings.ToLower(Transliterate(Normalize(name))), "")
	if len(s) > n {
		s = s[:n]
	}
	return s
}

// ERC folds text to ASCII for identifier metadata; anything left outside
// ASCII becomes ".".
func ERC(s string) string {
	folded := Transliterate(Normalize(s))
	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if r > unicode.MaxASCII {
			b.WriteByte('.')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
