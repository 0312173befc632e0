// Package feed reads the XML record feeds produced by the harvesters.
package feed

import (
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/antchfx/xmlquery"

	"oap_import/internal/domain"
)

// DataError reports a record that cannot be used. Readers return it for the
// record and stay usable, so callers log it and move on.
type DataError struct {
	Record int    // 1-based position in the feed
	ID     string // primary identifier key, when known
	Err    error
}

func (e *DataError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("record %d (%s): %v", e.Record, e.ID, e.Err)
	}
	return fmt.Sprintf("record %d: %v", e.Record, e.Err)
}

func (e *DataError) Unwrap() error {
	return e.Err
}

// IsDataError reports whether err is, or wraps, a *DataError.
func IsDataError(err error) bool {
	var de *DataError
	return errors.As(err, &de)
}

var (
	errNoNative   = errors.New("import-record has no native element")
	errNoType     = errors.New("import-record has no type")
	errBadUpdated = errors.New("import-record has a missing or malformed updated timestamp")
)

// Reader streams raw items out of an import-record feed, one record subtree
// at a time.
type Reader struct {
	parser   *xmlquery.StreamParser
	closer   io.Closer
	campuses []string
	n        int
}

// NewReader reads <import-record> elements from r. Campus identifiers are
// looked up for each of the given campuses.
func NewReader(r io.Reader, campuses []string) (*Reader, error) {
	p, err := xmlquery.CreateStreamParser(r, "//import-record")
	if err != nil {
		return nil, fmt.Errorf("create stream parser: %w", err)
	}
	return &Reader{parser: p, campuses: campuses}, nil
}

// Open opens a feed file, decompressing it when the name ends in ".gz".
func Open(path string, campuses []string) (*Reader, error) {
	rc, err := openFile(path)
	if err != nil {
		return nil, err
	}
	r, err := NewReader(rc, campuses)
	if err != nil {
		rc.Close()
		return nil, err
	}
	r.closer = rc
	return r, nil
}

// Next returns the next valid item, io.EOF after the last record, or a
// *DataError for a record that must be skipped.
func (r *Reader) Next() (*domain.RawItem, error) {
	node, err := r.parser.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("read record %d: %w", r.n+1, err)
	}
	r.n++

	item, err := r.parseRecord(node)
	if err != nil {
		return nil, &DataError{Record: r.n, Err: err}
	}
	if err := item.Validate(); err != nil {
		return nil, &DataError{Record: r.n, ID: item.PrimaryKey(), Err: err}
	}
	return item, nil
}

func (r *Reader) parseRecord(record *xmlquery.Node) (*domain.RawItem, error) {
	typeName, err := recordType(record)
	if err != nil {
		return nil, err
	}
	updated, err := time.Parse(time.RFC3339, strings.TrimSpace(record.SelectAttr("updated")))
	if err != nil {
		return nil, errBadUpdated
	}
	native := xmlquery.FindOne(record, "native")
	if native == nil {
		return nil, errNoNative
	}
	return ParseNative(native, typeName, updated.UTC(), r.campuses), nil
}

// recordType accepts either a numeric type-id or a type name.
func recordType(record *xmlquery.Node) (string, error) {
	if id := strings.TrimSpace(record.SelectAttr("type-id")); id != "" {
		n, err := strconv.Atoi(id)
		if err != nil {
			return "", fmt.Errorf("%w: type-id %q", domain.ErrUnknownItemType, id)
		}
		name, ok := domain.TypeName(n)
		if !ok {
			return "", fmt.Errorf("%w: type-id %d", domain.ErrUnknownItemType, n)
		}
		return name, nil
	}
	name := strings.TrimSpace(record.SelectAttr("type"))
	if name == "" {
		return "", errNoType
	}
	if _, ok := domain.TypeID(name); !ok {
		return "", fmt.Errorf("%w: %q", domain.ErrUnknownItemType, name)
	}
	return name, nil
}

// Records reports how many records have been read so far.
func (r *Reader) Records() int {
	return r.n
}

func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

type gzipFile struct {
	*gzip.Reader
	f *os.File
}

func (g *gzipFile) Close() error {
	gerr := g.Reader.Close()
	if err := g.f.Close(); err != nil {
		return err
	}
	return gerr
}

func openFile(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open feed: %w", err)
	}
	if !strings.HasSuffix(path, ".gz") {
		return f, nil
	}
	zr, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("open gzip feed %s: %w", path, err)
	}
	return &gzipFile{Reader: zr, f: f}, nil
}
