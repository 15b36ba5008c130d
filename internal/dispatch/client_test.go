package dispatch

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dillkhalifa/price-sniffer/internal/common"
	"github.com/dillkhalifa/price-sniffer/internal/model"
)

const scenarioA = `{
  "query": "sony wh-1000xm5",
  "items": [
    {"merchant": "A", "title": "Sony WH-1000XM5", "price": 279.99, "formatted_price": "$279.99", "image_url": null, "link": "https://a.example/p"},
    {"merchant": "B", "title": "Sony WH-1000XM5", "price": 299.00, "formatted_price": "$299.00", "image_url": "https://b.example/i.png", "link": "https://b.example/p"}
  ],
  "stats": {"min_price": 279.99, "avg_price": 289.50}
}`

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	c, err := NewClient(Config{BaseURL: baseURL, Logger: quietLogger()})
	require.NoError(t, err)
	return c
}

func TestNewClient(t *testing.T) {
	tests := []struct {
		wantErr  error
		name     string
		baseURL  string
		endpoint string
		timeout  time.Duration
	}{
		{name: "plain", baseURL: "http://localhost:8000", endpoint: "http://localhost:8000/api/search"},
		{name: "trailing slash", baseURL: "http://localhost:8000/", endpoint: "http://localhost:8000/api/search"},
		{name: "missing", baseURL: "  ", wantErr: common.ErrMissingConfig},
		{name: "negative timeout", baseURL: "http://x", timeout: -time.Second, wantErr: common.ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewClient(Config{BaseURL: tt.baseURL, Timeout: tt.timeout})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.endpoint, c.Endpoint())
		})
	}
}

func TestClient_DispatchTextQuery(t *testing.T) {
	var (
		gotMethod, gotPath, gotQuery string
		gotFile                      bool
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		assert.NoError(t, r.ParseMultipartForm(1<<20))
		gotQuery = r.FormValue("query")
		_, _, err := r.FormFile("file")
		gotFile = err == nil
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, scenarioA)
	}))
	defer srv.Close()

	result, err := newTestClient(t, srv.URL).Dispatch(context.Background(), model.SearchQuery{Text: "sony wh-1000xm5"})

	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, SearchPath, gotPath)
	assert.Equal(t, "sony wh-1000xm5", gotQuery)
	assert.False(t, gotFile)

	require.Len(t, result.Items, 2)
	assert.Equal(t, "A", result.Items[0].Merchant)
	assert.Nil(t, result.Items[0].ImageURL)
	assert.Equal(t, model.PlaceholderImageURL, result.Items[0].DisplayImageURL())
	assert.InDelta(t, 279.99, result.Stats.MinPrice, 0.001)
	assert.InDelta(t, 289.50, result.Stats.AvgPrice, 0.001)
}

func TestClient_DispatchImageQuery(t *testing.T) {
	tests := []struct {
		name         string
		image        *model.Image
		text         string
		wantFilename string
		wantType     string
		wantQuery    bool
	}{
		{
			name:         "named png",
			image:        &model.Image{Name: "shoe.png", Data: pngHeader},
			wantFilename: "shoe.png",
			wantType:     "image/png",
		},
		{
			name:         "unnamed defaults to upload",
			image:        &model.Image{Data: []byte("not really an image")},
			wantFilename: DefaultFileName,
			wantType:     "text/plain; charset=utf-8",
		},
		{
			name:         "text and image together",
			image:        &model.Image{Name: "shoe.png", Data: pngHeader},
			text:         "red",
			wantFilename: "shoe.png",
			wantType:     "image/png",
			wantQuery:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var (
				filename, partType, query string
				data                      []byte
			)
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.NoError(t, r.ParseMultipartForm(1<<20))
				query = r.FormValue("query")
				f, hdr, err := r.FormFile("file")
				if !assert.NoError(t, err) {
					return
				}
				defer func() { _ = f.Close() }()
				filename = hdr.Filename
				partType = hdr.Header.Get("Content-Type")
				data, _ = io.ReadAll(f)
				_, _ = io.WriteString(w, `{"query":"x","items":[],"stats":{"min_price":0,"avg_price":0}}`)
			}))
			defer srv.Close()

			_, err := newTestClient(t, srv.URL).Dispatch(context.Background(), model.SearchQuery{Text: tt.text, Image: tt.image})

			require.NoError(t, err)
			assert.Equal(t, tt.wantFilename, filename)
			assert.Equal(t, tt.wantType, partType)
			assert.Equal(t, tt.image.Data, data)
			if tt.wantQuery {
				assert.Equal(t, tt.text, query)
			} else {
				assert.Empty(t, query)
			}
		})
	}
}

func TestClient_DispatchFailures(t *testing.T) {
	tests := []struct {
		wantErr  error
		name     string
		body     string
		wantKind common.FailureKind
		status   int
	}{
		{
			name:     "server error",
			status:   http.StatusInternalServerError,
			body:     `{"detail":"scraper crashed"}`,
			wantErr:  common.ErrServerStatus,
			wantKind: common.FailureServer,
		},
		{
			name:     "bad request",
			status:   http.StatusBadRequest,
			body:     `{"detail":"Please provide query."}`,
			wantErr:  common.ErrServerStatus,
			wantKind: common.FailureServer,
		},
		{
			name:     "not json",
			status:   http.StatusOK,
			body:     `<html>oops</html>`,
			wantErr:  common.ErrDecode,
			wantKind: common.FailureDecode,
		},
		{
			name:     "missing stats",
			status:   http.StatusOK,
			body:     `{"query":"x","items":[]}`,
			wantErr:  common.ErrDecode,
			wantKind: common.FailureDecode,
		},
		{
			name:     "null items",
			status:   http.StatusOK,
			body:     `{"query":"x","items":null,"stats":{}}`,
			wantErr:  common.ErrDecode,
			wantKind: common.FailureDecode,
		},
		{
			name:     "array body",
			status:   http.StatusOK,
			body:     `[]`,
			wantErr:  common.ErrDecode,
			wantKind: common.FailureDecode,
		},
		{
			name:     "wrong item type",
			status:   http.StatusOK,
			body:     `{"query":"x","items":[{"price":"cheap"}],"stats":{}}`,
			wantErr:  common.ErrDecode,
			wantKind: common.FailureDecode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			result, err := newTestClient(t, srv.URL).Dispatch(context.Background(), model.SearchQuery{Text: "laptop"})

			assert.Nil(t, result)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.wantKind, common.Classify(err))
		})
	}
}

func TestClient_StatusErrorCarriesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv.URL).Dispatch(context.Background(), model.SearchQuery{Text: "laptop"})

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusBadGateway, statusErr.Code)
	assert.Equal(t, "boom", statusErr.Body)
	assert.Contains(t, err.Error(), "502")
}

func TestClient_EmptyItemsSucceed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"query":"unobtainium","items":[],"stats":{"min_price":0,"avg_price":0}}`)
	}))
	defer srv.Close()

	result, err := newTestClient(t, srv.URL).Dispatch(context.Background(), model.SearchQuery{Text: "unobtainium"})

	require.NoError(t, err)
	assert.NotNil(t, result.Items)
	assert.Empty(t, result.Items)
}

func TestClient_Unreachable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	_, err = newTestClient(t, "http://"+addr).Dispatch(context.Background(), model.SearchQuery{Text: "laptop"})

	assert.ErrorIs(t, err, common.ErrTransport)
	assert.Equal(t, common.FailureTransport, common.Classify(err))
}

func TestClient_EmptyQuery(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		called = true
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv.URL).Dispatch(context.Background(), model.SearchQuery{Text: " "})

	assert.ErrorIs(t, err, common.ErrEmptyQuery)
	assert.False(t, called)
}

func TestClient_Canceled(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := newTestClient(t, srv.URL).Dispatch(ctx, model.SearchQuery{Text: "laptop"})

	assert.ErrorIs(t, err, common.ErrCanceled)
	assert.Equal(t, common.FailureCanceled, common.Classify(err))
}

func TestClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer srv.Close()
	defer close(release)

	c, err := NewClient(Config{BaseURL: srv.URL, Timeout: 20 * time.Millisecond, Logger: quietLogger()})
	require.NoError(t, err)

	_, err = c.Dispatch(context.Background(), model.SearchQuery{Text: "laptop"})

	assert.ErrorIs(t, err, common.ErrTransport)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
