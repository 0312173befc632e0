package feed

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/antchfx/xmlquery"
)

// User is one entry of the user directory feed.
type User struct {
	Email         string
	ProprietaryID string
}

var (
	errNoEmail  = errors.New("user record has no email field")
	errNoPropID = errors.New("user record has no proprietary id field")
)

// UserReader streams <record> entries of a user directory export.
type UserReader struct {
	parser *xmlquery.StreamParser
	closer io.Closer
	n      int
}

func NewUserReader(r io.Reader) (*UserReader, error) {
	p, err := xmlquery.CreateStreamParser(r, "//record")
	if err != nil {
		return nil, fmt.Errorf("create stream parser: %w", err)
	}
	return &UserReader{parser: p}, nil
}

// OpenUsers opens a user directory file, decompressing ".gz" files.
func OpenUsers(path string) (*UserReader, error) {
	rc, err := openFile(path)
	if err != nil {
		return nil, err
	}
	r, err := NewUserReader(rc)
	if err != nil {
		rc.Close()
		return nil, err
	}
	r.closer = rc
	return r, nil
}

// Next returns the next user, io.EOF at the end or a *DataError.
func (r *UserReader) Next() (*User, error) {
	node, err := r.parser.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("read user record %d: %w", r.n+1, err)
	}
	r.n++

	email, ok := TextAt(node, "field[@name='[Email]']")
	email = strings.ToLower(strings.TrimSpace(email))
	if !ok || email == "" {
		return nil, &DataError{Record: r.n, Err: errNoEmail}
	}
	propID, ok := TextAt(node, "field[@name='[Proprietary_ID]']")
	propID = strings.TrimSpace(propID)
	if !ok || propID == "" {
		return nil, &DataError{Record: r.n, ID: email, Err: errNoPropID}
	}
	return &User{Email: email, ProprietaryID: propID}, nil
}

func (r *UserReader) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}
