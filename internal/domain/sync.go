package domain

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"sort"
	"time"
)

// Association links one campus identifier key to an OAP identifier.
type Association struct {
	CampusID string
	OAPID    string
	Updated  time.Time
}

// SyncState is what was last pushed to the remote system for an OAP id.
type SyncState struct {
	OAPID   string
	Hash    string
	Users   []string // proprietary ids already linked, sorted
	Updated time.Time
}

func (s *SyncState) HasUser(userID string) bool {
	i := sort.SearchStrings(s.Users, userID)
	return i < len(s.Users) && s.Users[i] == userID
}

func (s *SyncState) AddUser(userID string) {
	if s.HasUser(userID) {
		return
	}
	s.Users = append(s.Users, userID)
	sort.Strings(s.Users)
}

// JoinFlags records whether the remote system joined our record to one from
// another source, and whether that record looked like the same publication.
type JoinFlags struct {
	OAPID      string
	Joined     bool
	Compatible bool
}

// ExportRecord is the canonical record pushed to the remote system.
type ExportRecord struct {
	TypeName string       `json:"type_name"`
	Title    string       `json:"title"`
	Authors  []string     `json:"authors"`
	Date     string       `json:"date,omitempty"`
	IDs      []Identifier `json:"ids"`
	Journal  string       `json:"journal,omitempty"`
	Volume   string       `json:"volume,omitempty"`
	Issue    string       `json:"issue,omitempty"`
	Other    *OtherInfo   `json:"other,omitempty"`
}

// NewExportRecord combines the best record's descriptive fields with every
// identifier of the group. A group carries one DOI: the best record's, or
// failing that the smallest one in ids.
func NewExportRecord(best *RawItem, ids []Identifier) *ExportRecord {
	rec := &ExportRecord{
		TypeName: best.TypeName,
		Title:    best.Title,
		Authors:  append([]string(nil), best.Authors...),
		Date:     best.Date,
		IDs:      withOneDOI(ids, best),
		Journal:  best.Journal,
		Volume:   best.Volume,
		Issue:    best.Issue,
	}
	if !best.Other.IsEmpty() {
		other := *best.Other
		rec.Other = &other
	}
	return rec
}

func withOneDOI(ids []Identifier, best *RawItem) []Identifier {
	doi := ""
	for _, id := range best.IDs {
		if id.Scheme == DOIScheme {
			doi = id.Value
			break
		}
	}
	if doi == "" {
		for _, id := range ids {
			if id.Scheme == DOIScheme && (doi == "" || id.Value < doi) {
				doi = id.Value
			}
		}
	}

	out := make([]Identifier, 0, len(ids))
	for _, id := range ids {
		if id.Scheme == DOIScheme && id.Value != doi {
			continue
		}
		out = append(out, id)
	}
	return out
}

// ContentHash is the hex SHA-1 of the record's JSON encoding.
func (r *ExportRecord) ContentHash() string {
	data, err := json.Marshal(r)
	if err != nil {
		// Only plain strings and slices are marshaled.
		panic(err)
	}
	sum := sha1.Sum(data)
	return hex.EncodeToString(sum[:])
}

// PutResult is the remote system's answer to a record PUT.
type PutResult struct {
	PubID   string
	Foreign []*RawItem // records from other sources the remote joined ours to
}

func (r *PutResult) Joined() bool {
	return len(r.Foreign) > 0
}

// SyncEvent is published after a group was written to the remote system.
type SyncEvent struct {
	OAPID      string    `json:"oap_id"`
	PubID      string    `json:"pub_id,omitempty"`
	CampusIDs  []string  `json:"campus_ids"`
	Users      []string  `json:"users"`
	Put        bool      `json:"put"`
	NewUsers   int       `json:"new_users"`
	Joined     bool      `json:"joined"`
	Compatible bool      `json:"compatible"`
	Timestamp  time.Time `json:"timestamp"`
}

// RunStats holds statistics about one sync run.
type RunStats struct {
	RunID         string        `json:"run_id"`
	Items         int           `json:"items"`
	Groups        int           `json:"groups"`
	Skipped       int           `json:"skipped"` // groups with no known user or filtered out
	Queued        int           `json:"queued"`
	Resolved      int           `json:"resolved"`
	Put           int           `json:"put"`
	Unchanged     int           `json:"unchanged"`
	Relationships int           `json:"relationships"`
	Joined        int           `json:"joined"`
	Incompatible  int           `json:"incompatible"`
	Published     int           `json:"published"`
	Duration      time.Duration `json:"duration"`
}

// IngestStats holds statistics about one feed ingestion.
type IngestStats struct {
	Read      int           `json:"read"`
	Stored    int           `json:"stored"`
	Unchanged int           `json:"unchanged"`
	Merged    int           `json:"merged"`
	Skipped   int           `json:"skipped"`
	Duration  time.Duration `json:"duration"`
}
