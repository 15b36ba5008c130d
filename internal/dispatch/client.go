// Package dispatch sends search queries to the price-search service.
package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"github.com/dillkhalifa/price-sniffer/internal/common"
	"github.com/dillkhalifa/price-sniffer/internal/model"
)

// SearchPath is the service endpoint for price searches.
const SearchPath = "/api/search"

// DefaultFileName is used for image parts that carry no name.
const DefaultFileName = "upload"

// maxErrorBody bounds how much of a failed response is kept.
const maxErrorBody = 4 << 10

// Dispatcher performs one exchange with the price-search service.
type Dispatcher interface {
	Dispatch(ctx context.Context, query model.SearchQuery) (*model.SearchResult, error)
}

// StatusError is returned when the service answers with a non-2xx status.
type StatusError struct {
	Body string
	Code int
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("price service returned status %d", e.Code)
	}
	return fmt.Sprintf("price service returned status %d: %s", e.Code, e.Body)
}

// Unwrap lets errors.Is match common.ErrServerStatus.
func (e *StatusError) Unwrap() error {
	return common.ErrServerStatus
}

// Config configures a Client.
type Config struct {
	HTTPClient *http.Client
	Logger     *slog.Logger
	BaseURL    string
	Timeout    time.Duration // zero means no deadline
}

// Client implements Dispatcher over HTTP. It holds no per-request state.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	endpoint   string
	timeout    time.Duration
}

// NewClient creates a client for the service at cfg.BaseURL.
func NewClient(cfg Config) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("%w: base URL is required", common.ErrMissingConfig)
	}
	if cfg.Timeout < 0 {
		return nil, fmt.Errorf("%w: timeout cannot be negative", common.ErrInvalidConfig)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 2,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		httpClient: httpClient,
		logger:     logger,
		endpoint:   base + SearchPath,
		timeout:    cfg.Timeout,
	}, nil
}

// Endpoint returns the full search URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Dispatch sends query as a multipart POST and decodes the response.
func (c *Client) Dispatch(ctx context.Context, query model.SearchQuery) (*model.SearchResult, error) {
	if query.IsEmpty() {
		return nil, common.ErrEmptyQuery
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	body, contentType, err := encodeQuery(query)
	if err != nil {
		return nil, fmt.Errorf("failed to encode query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	c.logger.Debug("dispatching search",
		"endpoint", c.endpoint,
		"has_text", query.HasText(),
		"has_image", query.HasImage())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		err = transportError(ctx, err)
		c.logger.Debug("search failed", "kind", common.Classify(err), "error", err, "elapsed", time.Since(start))
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	result, err := decodeResponse(resp)
	if err != nil {
		if ctx.Err() != nil {
			err = transportError(ctx, err)
		}
		c.logger.Debug("search failed",
			"status", resp.StatusCode,
			"kind", common.Classify(err),
			"error", err,
			"elapsed", time.Since(start))
		return nil, err
	}

	c.logger.Debug("search completed",
		"status", resp.StatusCode,
		"items", len(result.Items),
		"elapsed", time.Since(start))

	return result, nil
}

// encodeQuery writes the multipart form body for query.
func encodeQuery(query model.SearchQuery) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if query.HasText() {
		if err := w.WriteField("query", query.Text); err != nil {
			return nil, "", err
		}
	}

	if query.HasImage() {
		name := query.Image.Name
		if name == "" {
			name = DefaultFileName
		}

		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, name))
		h.Set("Content-Type", mimetype.Detect(query.Image.Data).String())

		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(query.Image.Data); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

// decodeResponse maps a raw response to a result or a classified error.
func decodeResponse(resp *http.Response) (*model.SearchResult, error) {
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %w", common.ErrTransport, err)
	}

	// The shape check runs on the raw object so a missing key is told
	// apart from a present but empty one.
	var shape map[string]json.RawMessage
	if err := json.Unmarshal(data, &shape); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrDecode, err)
	}
	for _, key := range []string{"items", "stats"} {
		raw, ok := shape[key]
		if !ok || string(raw) == "null" {
			return nil, fmt.Errorf("%w: missing %q", common.ErrDecode, key)
		}
	}

	var result model.SearchResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrDecode, err)
	}
	if result.Items == nil {
		result.Items = []model.Item{}
	}

	return &result, nil
}

// transportError classifies a failed round trip.
func transportError(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.Canceled) {
		return fmt.Errorf("%w: %w", common.ErrCanceled, err)
	}
	return fmt.Errorf("%w: %w", common.ErrTransport, err)
}

var _ Dispatcher = (*Client)(nil)
