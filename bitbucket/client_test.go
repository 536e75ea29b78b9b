package bitbucket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestClient wires a client to an httptest server, presenting the
// server under a /rest base URL.
func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(server.URL+"/rest", "test-token", zerolog.Nop())
	require.NoError(t, err)
	return client, server
}

func TestNewClient(t *testing.T) {
	logger := zerolog.Nop()

	tests := []struct {
		name      string
		serverURL string
		token     string
		wantBase  string
		wantErr   error
	}{
		{
			name:      "valid config",
			serverURL: "https://bitbucket.example.com/bitbucket/rest",
			token:     "test-token",
			wantBase:  "https://bitbucket.example.com/bitbucket/rest",
		},
		{
			name:      "trailing slashes stripped",
			serverURL: "https://bitbucket.example.com/rest///",
			token:     "test-token",
			wantBase:  "https://bitbucket.example.com/rest",
		},
		{
			name:      "missing rest suffix",
			serverURL: "https://bitbucket.example.com",
			token:     "test-token",
			wantErr:   ErrInvalidServerURL,
		},
		{
			name:      "suffix must be a path segment",
			serverURL: "https://bitbucket.example.com/unrest",
			token:     "test-token",
			wantErr:   ErrInvalidServerURL,
		},
		{
			name:      "missing token",
			serverURL: "https://bitbucket.example.com/rest",
			token:     "",
			wantErr:   ErrMissingToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(tt.serverURL, tt.token, logger)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantBase, client.baseURL)
		})
	}
}

func TestAPIRoot(t *testing.T) {
	client, err := NewClient("https://host/bitbucket/rest/", "test-token", zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, "https://host/bitbucket/rest/api/latest", client.apiRoot())
}

func TestClientOptions(t *testing.T) {
	logger := zerolog.Nop()

	t.Run("with timeout", func(t *testing.T) {
		client, err := NewClient("https://host/rest", "test-token", logger, WithTimeout(5*time.Second))
		require.NoError(t, err)
		assert.Equal(t, 5*time.Second, client.httpClient.Timeout)
	})

	t.Run("with page size", func(t *testing.T) {
		client, err := NewClient("https://host/rest", "test-token", logger, WithPageSize(25))
		require.NoError(t, err)
		assert.Equal(t, 25, client.pageSize)
	})

	t.Run("non-positive page size ignored", func(t *testing.T) {
		client, err := NewClient("https://host/rest", "test-token", logger, WithPageSize(0))
		require.NoError(t, err)
		assert.Equal(t, defaultPageSize, client.pageSize)
	})

	t.Run("with custom http client", func(t *testing.T) {
		custom := &http.Client{Timeout: 10 * time.Second}
		client, err := NewClient("https://host/rest", "test-token", logger, WithHTTPClient(custom))
		require.NoError(t, err)
		assert.Equal(t, custom, client.httpClient)
	})
}

func TestRequestHeaders(t *testing.T) {
	t.Run("GET without body", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/rest/api/latest/projects/PRJ/repos/app/pull-requests/7", r.URL.Path)
			assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
			assert.Equal(t, "application/json;charset=UTF-8", r.Header.Get("Accept"))
			assert.Empty(t, r.Header.Get("Content-Type"))
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"id": 7}`))
		}))

		resp, err := client.Request(context.Background(), http.MethodGet,
			"/projects/PRJ/repos/app/pull-requests/7", nil, nil)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"id": float64(7)}, resp)
	})

	t.Run("POST with JSON body", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, map[string]any{"text": "hello"}, body)

			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"id": 1}`))
		}))

		_, err := client.Request(context.Background(), http.MethodPost, "path", nil, map[string]any{"text": "hello"})
		require.NoError(t, err)
	})

	t.Run("query parameters encoded", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "OPEN", r.URL.Query().Get("state"))
			assert.Equal(t, "INCOMING", r.URL.Query().Get("direction"))
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{}`))
		}))

		params := url.Values{}
		params.Set("state", "OPEN")
		params.Set("direction", "INCOMING")
		_, err := client.Request(context.Background(), http.MethodGet, "path", params, nil)
		require.NoError(t, err)
	})
}

func TestRequestSuccessBodies(t *testing.T) {
	t.Run("empty body returns empty map", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}))

		resp, err := client.Request(context.Background(), http.MethodGet, "path", nil, nil)
		require.NoError(t, err)
		assert.Empty(t, resp)
		assert.NotNil(t, resp)
	})

	t.Run("json body decoded", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json;charset=UTF-8")
			w.Write([]byte(`{"id": 3, "title": "fix"}`))
		}))

		resp, err := client.Request(context.Background(), http.MethodGet, "path", nil, nil)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"id": float64(3), "title": "fix"}, resp)
	})

	t.Run("non-json body wrapped as raw", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/plain")
			w.Write([]byte("pong"))
		}))

		resp, err := client.Request(context.Background(), http.MethodGet, "path", nil, nil)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"raw": "pong"}, resp)
	})
}

func TestRequestErrorClassification(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
	}{
		{
			name:        "errors array shape",
			status:      http.StatusBadRequest,
			body:        `{"errors":[{"message":"branch not found"}]}`,
			wantMessage: "branch not found",
		},
		{
			name:        "message shape",
			status:      http.StatusNotFound,
			body:        `{"message":"no such repository"}`,
			wantMessage: "no such repository",
		},
		{
			name:        "errors array preferred over message",
			status:      http.StatusConflict,
			body:        `{"errors":[{"message":"from errors"}],"message":"from message"}`,
			wantMessage: "from errors",
		},
		{
			name:        "unparsable body yields empty message",
			status:      http.StatusInternalServerError,
			body:        "<html>Internal Server Error</html>",
			wantMessage: "",
		},
		{
			name:        "empty body yields empty message",
			status:      http.StatusBadGateway,
			body:        "",
			wantMessage: "",
		},
		{
			name:        "empty errors array falls back to nothing",
			status:      http.StatusForbidden,
			body:        `{"errors":[]}`,
			wantMessage: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))

			_, err := client.Request(context.Background(), http.MethodGet, "some/path", nil, nil)
			require.Error(t, err)

			var reqErr *RequestError
			require.ErrorAs(t, err, &reqErr)
			assert.Equal(t, tt.status, reqErr.StatusCode)
			assert.Equal(t, http.MethodGet, reqErr.Method)
			assert.Equal(t, tt.wantMessage, reqErr.Message)
			assert.False(t, reqErr.IsTransport())
		})
	}
}

func TestRequestTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client, err := NewClient(server.URL+"/rest", "test-token", zerolog.Nop())
	require.NoError(t, err)
	server.Close()

	_, err = client.Request(context.Background(), http.MethodGet, "path", nil, nil)
	require.Error(t, err)

	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.True(t, reqErr.IsTransport())
	assert.Equal(t, 0, reqErr.StatusCode)
	assert.Error(t, reqErr.Unwrap())
}

func TestRequestTimeout(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	WithTimeout(20 * time.Millisecond)(client)

	_, err := client.Request(context.Background(), http.MethodGet, "path", nil, nil)
	require.Error(t, err)

	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.True(t, reqErr.IsTransport())
}

func TestRequestError(t *testing.T) {
	t.Run("error message with detail", func(t *testing.T) {
		err := &RequestError{
			StatusCode: 404,
			Method:     "GET",
			URL:        "https://host/rest/api/latest/x",
			Message:    "not here",
		}
		assert.Equal(t, "HTTP 404 for GET https://host/rest/api/latest/x: not here", err.Error())
	})

	t.Run("error message without detail", func(t *testing.T) {
		err := &RequestError{StatusCode: 500, Method: "POST", URL: "https://host/x"}
		assert.Equal(t, "HTTP 500 for POST https://host/x", err.Error())
	})

	t.Run("IsNotFound", func(t *testing.T) {
		assert.True(t, (&RequestError{StatusCode: 404}).IsNotFound())
		assert.False(t, (&RequestError{StatusCode: 500}).IsNotFound())
	})

	t.Run("IsUnauthorized", func(t *testing.T) {
		tests := []struct {
			code     int
			expected bool
		}{
			{401, true},
			{403, true},
			{404, false},
			{500, false},
		}
		for _, tt := range tests {
			assert.Equal(t, tt.expected, (&RequestError{StatusCode: tt.code}).IsUnauthorized())
		}
	})
}
