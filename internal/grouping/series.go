package grouping

import (
	"regexp"
	"strings"
)

// Recurring non-article titles: issue furniture that must never be merged
// across issues even though the titles and often the authors are identical.
var seriesTitles = []string{
	"About the Contributors",
	"Acknowledg(e?)ments",
	"Advertisement(s?)",
	"Author's Biographies",
	"(Back|End|Front) (Cover|Matter)",
	"(Books )?noted with interest",
	"Books Received",
	"Brief Notes on Recent Publications",
	"Call for Papers",
	"Conference Program",
	"Contents",
	"Contributors",
	"Cover",
	"(Editor's|Editors|Editors'|President's) (Introduction|Message|Note|Page)",
	"Editorial",
	"Editorial Notes",
	"Foreword",
	"(Forward |Reprise )?Editor's Note",
	"Full Issue",
	"Introduction",
	"Job announcements",
	"Letter from the Editors",
	"Legislative Update",
	"Masthead",
	"New Titles",
	"Preface",
	"Publications Received",
	"Review",
	"(The )?Table of Contents",
	"Thanks to reviewers",
	"Untitled",
	"Upcoming events",

	// Specific to the campus repository.
	"Beyond the Frontier II",
	"Conceiving a Courtyard",
	"Environmental Information Sources",
	"Índice",
	"Lider/ Poems",
	"Summary of the Research Progress Meeting",
	"Three pieces",
	"Two Poems",
	"UCLA French Department Dissertation Abstracts",
	"UCLA French Department Publications and Dissertations",
}

var (
	seriesTitleRe = regexp.MustCompile("^(?:" + strings.ToLower(strings.Join(seriesTitles, "|")) + ")$")
	bracketsRe    = regexp.MustCompile(`^[\[(]|[\])]$`)
	spacesRe      = regexp.MustCompile(`\s\s+`)
)

// IsSeriesTitle reports whether title is a known recurring title. A title
// that occurs only once in the corpus (count 1) is never a series title.
func IsSeriesTitle(title string, count int) bool {
	if count == 1 {
		return false
	}
	t := strings.ToLower(title)
	t = bracketsRe.ReplaceAllString(t, "")
	t = spacesRe.ReplaceAllString(t, " ")
	t = strings.ReplaceAll(t, "’", "'")
	return seriesTitleRe.MatchString(strings.TrimSpace(t))
}
