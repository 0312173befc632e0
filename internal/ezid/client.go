// Package ezid mints persistent identifiers through the EZID API.
package ezid

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"
)

const (
	DefaultBaseURL = "https://ezid.cdlib.org"
	DefaultTimeout = 30 * time.Second

	// Response bodies are a few short ANVL lines.
	maxResponseBytes = 64 * 1024
)

var ErrInvalidResponse = errors.New("invalid response from EZID")

// MintError reports a refused mint request.
type MintError struct {
	StatusCode int
	Message    string
}

func (e *MintError) Error() string {
	return fmt.Sprintf("EZID mint failed (status %d): %s", e.StatusCode, e.Message)
}

func IsMintError(err error) bool {
	var me *MintError
	return errors.As(err, &me)
}

type Config struct {
	BaseURL  string
	Shoulder string // e.g. "ark:/99999/fk4"
	Username string
	Password string
	Timeout  time.Duration
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	shoulder   string
	username   string
	password   string
}

func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		shoulder:   cfg.Shoulder,
		username:   cfg.Username,
		password:   cfg.Password,
	}
}

// Mint creates a new identifier on the configured shoulder carrying the
// given metadata and returns it.
func (c *Client) Mint(ctx context.Context, metadata map[string]string) (string, error) {
	url := c.baseURL + "/shoulder/" + c.shoulder
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(EncodeANVL(metadata)))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.SetBasicAuth(c.username, c.password)
	req.Header.Set("Content-Type", "text/plain; charset=UTF-8")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	status, value := parseStatusLine(body)
	switch {
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		msg := value
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return "", &MintError{StatusCode: resp.StatusCode, Message: msg}
	case status == "error":
		return "", &MintError{StatusCode: resp.StatusCode, Message: value}
	case status != "success":
		return "", fmt.Errorf("%w: %q", ErrInvalidResponse, firstLine(body))
	}

	// "success: ark:/99999/fk4abc | doi:10.5072/..." lists secondary ids after a bar.
	id, _, _ := strings.Cut(value, "|")
	id = strings.TrimSpace(id)
	if id == "" {
		return "", fmt.Errorf("%w: no identifier in %q", ErrInvalidResponse, firstLine(body))
	}
	return id, nil
}

func parseStatusLine(body []byte) (status, value string) {
	key, value, ok := strings.Cut(firstLine(body), ":")
	if !ok {
		return "", ""
	}
	return strings.TrimSpace(key), strings.TrimSpace(value)
}

func firstLine(body []byte) string {
	sc := bufio.NewScanner(bytes.NewReader(body))
	if sc.Scan() {
		return sc.Text()
	}
	return ""
}

var anvlEscaper = strings.NewReplacer("%", "%25", "\n", "%0A", "\r", "%0D")

// EncodeANVL renders metadata as "key: value" lines in key order. Keys also
// have ":" escaped.
func EncodeANVL(metadata map[string]string) string {
	keys := make([]string, 0, len(metadata))
	for k := range metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(strings.ReplaceAll(anvlEscaper.Replace(k), ":", "%3A"))
		b.WriteString(": ")
		b.WriteString(anvlEscaper.Replace(metadata[k]))
		b.WriteString("\n")
	}
	return b.String()
}
