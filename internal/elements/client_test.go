package elements

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/antchfx/xmlquery"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oap_import/internal/domain"
	"oap_import/internal/feed"
)

var campuses = []string{"eschol", "ucla", "uci", "ucsf"}

func newTestClient(url string) *Client {
	return NewClient(Config{
		BaseURL:     url,
		Source:      "oap",
		Username:    "user",
		Password:    "pass",
		MaxAttempts: 3,
		RetryDelay:  time.Millisecond,
		Campuses:    campuses,
	}, zerolog.Nop())
}

func exportRecord() *domain.ExportRecord {
	return &domain.ExportRecord{
		TypeName: "journal-article",
		Title:    "Quantum entanglement of the photon",
		Authors:  []string{"Smith, J|j.smith@ucla.edu", "Jones, AB|"},
		Date:     "2014-03-00",
		IDs: []domain.Identifier{
			{Scheme: "c-ucla-id", Value: "123"},
			{Scheme: "c-uci-id", Value: "9"},
			{Scheme: "doi", Value: "10.1/x"},
			{Scheme: "pmid", Value: "555"},
		},
		Journal: "Physical Review",
		Volume:  "12",
		Other:   &domain.OtherInfo{Publisher: "APS", Pagination: &domain.Pagination{Begin: "213", End: "223"}},
	}
}

const joinedResponse = `<?xml version="1.0" encoding="utf-8"?>
<api:response xmlns:api="http://www.symplectic.co.uk/publications/api">
  <api:result>
    <api:object category="publication" id="4711" type="journal-article">
      <api:records>
        <api:record source-name="oap" id-at-source="ark:/13030/p4abc">
          <api:native><api:field name="title"><api:text>Ours</api:text></api:field></api:native>
        </api:record>
        <api:record source-name="pubmed">
          <api:native>
            <api:field name="title"><api:text>Quantum entanglement of the photon.</api:text></api:field>
            <api:field name="authors"><api:people>
              <api:person><api:last-name>Smith</api:last-name><api:initials>J</api:initials></api:person>
            </api:people></api:field>
            <api:field name="doi"><api:text>10.1/x</api:text></api:field>
          </api:native>
        </api:record>
      </api:records>
    </api:object>
  </api:result>
</api:response>`

func TestPutRecord_Joined(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/records/oap/ark:%2F13030%2Fp4abc", r.URL.EscapedPath())
		user, pass, _ := r.BasicAuth()
		assert.Equal(t, "user", user)
		assert.Equal(t, "pass", pass)

		doc, err := xmlquery.Parse(r.Body)
		if assert.NoError(t, err) {
			rec := xmlquery.FindOne(doc, "import-record")
			if assert.NotNil(t, rec) {
				assert.Equal(t, "5", rec.SelectAttr("type-id"))
			}
		}

		_, _ = io.WriteString(w, joinedResponse)
	}))
	defer srv.Close()

	res, err := newTestClient(srv.URL).PutRecord(context.Background(), "ark:/13030/p4abc", exportRecord())
	require.NoError(t, err)
	assert.Equal(t, "4711", res.PubID)
	require.True(t, res.Joined())
	require.Len(t, res.Foreign, 1)
	assert.Equal(t, "journal-article", res.Foreign[0].TypeName)
	assert.Equal(t, []string{"Smith, J|"}, res.Foreign[0].Authors)
	assert.Equal(t, []domain.Identifier{{Scheme: "doi", Value: "10.1/x"}}, res.Foreign[0].IDs)
}

func TestPutRecord_NotJoined(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `<response><object category="publication" id="1"><records><record source-name="oap"/></records></object></response>`)
	}))
	defer srv.Close()

	res, err := newTestClient(srv.URL).PutRecord(context.Background(), "ark:/1/a", exportRecord())
	require.NoError(t, err)
	assert.Equal(t, "1", res.PubID)
	assert.False(t, res.Joined())
}

func TestPutRecord_RetriesConflicts(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch calls.Add(1) {
		case 1:
			w.WriteHeader(http.StatusConflict)
		case 2:
			w.WriteHeader(http.StatusGatewayTimeout)
		default:
			_, _ = io.WriteString(w, `<response><object category="publication" id="7"/></response>`)
		}
	}))
	defer srv.Close()

	res, err := newTestClient(srv.URL).PutRecord(context.Background(), "ark:/1/a", exportRecord())
	require.NoError(t, err)
	assert.Equal(t, "7", res.PubID)
	assert.Equal(t, int32(3), calls.Load())
}

func TestPutRecord_RetriesExhausted(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusConflict)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).PutRecord(context.Background(), "ark:/1/a", exportRecord())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 3 attempts")
	assert.Equal(t, int32(3), calls.Load())
}

func TestPutRecord_FatalStatus(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, "invalid field 'title'")
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).PutRecord(context.Background(), "ark:/1/a", exportRecord())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "invalid field 'title'", apiErr.Message)
	assert.False(t, IsRetryable(err))
	assert.Equal(t, int32(1), calls.Load())
}

func TestPutRecord_BadResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `<response/>`)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).PutRecord(context.Background(), "ark:/1/a", exportRecord())
	assert.ErrorIs(t, err, ErrInvalidResponse)
}

func TestPostRelationship(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/relationships", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		assert.Contains(t, string(body), "<from-object>publication(source-oap,pid-ark:/1/a)</from-object>")
		assert.Contains(t, string(body), "<to-object>user(pid-1001)</to-object>")
		assert.Contains(t, string(body), "<type-name>publication-user-authorship</type-name>")
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	assert.NoError(t, newTestClient(srv.URL).PostRelationship(context.Background(), "ark:/1/a", "1001"))
}

func TestPostRelationship_Unauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	err := newTestClient(srv.URL).PostRelationship(context.Background(), "ark:/1/a", "1001")
	assert.True(t, IsAuthError(err))
}

func TestEncodeRecord_ReadsBackAsNative(t *testing.T) {
	body, err := encodeRecord(exportRecord())
	require.NoError(t, err)

	doc, err := xmlquery.Parse(strings.NewReader(string(body)))
	require.NoError(t, err)
	native := xmlquery.FindOne(doc, "import-record/native")
	require.NotNil(t, native)

	item := feed.ParseNative(native, "journal-article", time.Time{}, campuses)
	want := exportRecord()
	assert.Equal(t, want.Title, item.Title)
	assert.Equal(t, want.Authors, item.Authors)
	assert.Equal(t, want.Date, item.Date)
	assert.ElementsMatch(t, want.IDs, item.IDs)
	assert.Equal(t, want.Journal, item.Journal)
	assert.Equal(t, want.Volume, item.Volume)
	assert.Equal(t, want.Other, item.Other)
}

func TestEncodeRecord_WritesOneDOI(t *testing.T) {
	rec := exportRecord()
	rec.IDs = append(rec.IDs, domain.Identifier{Scheme: domain.DOIScheme, Value: "10.1/y"})
	body, err := encodeRecord(rec)
	require.NoError(t, err)

	doc, err := xmlquery.Parse(strings.NewReader(string(body)))
	require.NoError(t, err)
	dois := xmlquery.Find(doc, "//field[@name='doi']")
	require.Len(t, dois, 1)
	assert.Equal(t, "10.1/x", strings.TrimSpace(dois[0].InnerText()))
}

func TestEncodeRecord_UnknownType(t *testing.T) {
	rec := exportRecord()
	rec.TypeName = "pamphlet"
	_, err := encodeRecord(rec)
	assert.ErrorIs(t, err, domain.ErrUnknownItemType)
}
