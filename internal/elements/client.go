// Package elements talks to the Symplectic Elements import API.
package elements

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/antchfx/xmlquery"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"oap_import/internal/domain"
	"oap_import/internal/feed"
)

const (
	DefaultTimeout     = 5 * time.Minute
	DefaultMaxAttempts = 5
	DefaultRetryDelay  = 30 * time.Second

	maxErrorBody = 4 * 1024
)

type Config struct {
	BaseURL     string
	Source      string // our data source name in Elements, e.g. "oap"
	Username    string
	Password    string
	Timeout     time.Duration
	MaxAttempts int
	RetryDelay  time.Duration
	RateLimit   float64 // requests per second; 0 means unlimited
	Campuses    []string
}

// Client is a rate-limited client for record and relationship imports.
type Client struct {
	httpClient  *http.Client
	limiter     *rate.Limiter
	baseURL     string
	source      string
	username    string
	password    string
	maxAttempts int
	retryDelay  time.Duration
	campuses    []string
	log         zerolog.Logger
}

func NewClient(cfg Config, log zerolog.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	return &Client{
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		limiter:     rate.NewLimiter(limit, 1),
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		source:      cfg.Source,
		username:    cfg.Username,
		password:    cfg.Password,
		maxAttempts: cfg.MaxAttempts,
		retryDelay:  cfg.RetryDelay,
		campuses:    cfg.Campuses,
		log:         log.With().Str("component", "elements").Logger(),
	}
}

// PutRecord imports rec as our source's record for oapID.
//
// When Elements matched the record to an existing publication, the result
// carries that publication's records from other sources.
func (c *Client) PutRecord(ctx context.Context, oapID string, rec *domain.ExportRecord) (*domain.PutResult, error) {
	body, err := encodeRecord(rec)
	if err != nil {
		return nil, err
	}
	path := "/records/" + url.PathEscape(c.source) + "/" + url.PathEscape(oapID)
	resp, err := c.do(ctx, http.MethodPut, path, body)
	if err != nil {
		return nil, fmt.Errorf("put record %s: %w", oapID, err)
	}
	result, err := c.parsePutResponse(resp, rec.TypeName)
	if err != nil {
		return nil, fmt.Errorf("put record %s: %w", oapID, err)
	}
	return result, nil
}

// PostRelationship links the publication of oapID to a user.
func (c *Client) PostRelationship(ctx context.Context, oapID, userID string) error {
	body, err := encodeRelationship(c.source, oapID, userID)
	if err != nil {
		return err
	}
	if _, err := c.do(ctx, http.MethodPost, "/relationships", body); err != nil {
		return fmt.Errorf("link %s to user %s: %w", oapID, userID, err)
	}
	return nil
}

func (c *Client) parsePutResponse(body []byte, typeName string) (*domain.PutResult, error) {
	doc, err := xmlquery.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	pub := xmlquery.FindOne(doc, "//object[@category='publication']")
	if pub == nil {
		return nil, fmt.Errorf("%w: no publication object", ErrInvalidResponse)
	}
	result := &domain.PutResult{PubID: pub.SelectAttr("id")}
	if result.PubID == "" {
		return nil, fmt.Errorf("%w: publication object has no id", ErrInvalidResponse)
	}

	if t := pub.SelectAttr("type"); t != "" {
		if _, ok := domain.TypeID(t); ok {
			typeName = t
		}
	}
	for _, record := range xmlquery.Find(pub, "records/record") {
		if record.SelectAttr("source-name") == c.source {
			continue
		}
		native := xmlquery.FindOne(record, "native")
		if native == nil {
			continue
		}
		result.Foreign = append(result.Foreign, feed.ParseNative(native, typeName, time.Time{}, c.campuses))
	}
	return result, nil
}

// do sends one request, retrying conflicts and gateway timeouts after a
// fixed delay.
func (c *Client) do(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	var (
		resp []byte
		err  error
	)
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		resp, err = c.doRequest(ctx, method, path, body)
		if err == nil {
			return resp, nil
		}
		if !IsRetryable(err) {
			return nil, err
		}
		if attempt == c.maxAttempts {
			break
		}

		c.log.Warn().
			Str("method", method).
			Str("path", path).
			Int("attempt", attempt).
			Dur("delay", c.retryDelay).
			Err(err).
			Msg("request failed, retrying")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.retryDelay):
		}
	}

	return nil, fmt.Errorf("after %d attempts: %w", c.maxAttempts, err)
}

func (c *Client) doRequest(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.SetBasicAuth(c.username, c.password)
	req.Header.Set("Content-Type", "text/xml; charset=UTF-8")
	req.Header.Set("User-Agent", "oapsync/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Method:     method,
			Path:       path,
			Message:    strings.TrimSpace(string(msg)),
		}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return data, nil
}
