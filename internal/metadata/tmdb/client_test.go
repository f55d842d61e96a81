package tmdb

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := New(Config{
		APIKey:       "secret-key",
		BaseURL:      server.URL + "/3",
		ImageBaseURL: "https://image.tmdb.org/t/p/w500",
		Timeout:      2 * time.Second,
	}, slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError})))
	require.NoError(t, err)
	t.Cleanup(client.Close)

	return client
}

func TestClient_GetMovie(t *testing.T) {
	var gotPath, gotKey string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("api_key")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": 19995, "title": "Avatar", "poster_path": "/kyeqWdyUXW608qlYkRqosgbbJyK.jpg", "budget": 237000000}`))
	})

	movie, err := client.GetMovie(context.Background(), 19995)
	require.NoError(t, err)

	assert.Equal(t, "/3/movie/19995", gotPath)
	assert.Equal(t, "secret-key", gotKey)
	assert.Equal(t, 19995, movie.ID)
	assert.Equal(t, "Avatar", movie.Title)
	assert.Equal(t, "/kyeqWdyUXW608qlYkRqosgbbJyK.jpg", movie.PosterPath)
}

func TestClient_GetMovie_Errors(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		body       string
		wantErr    error
	}{
		{name: "not found", statusCode: http.StatusNotFound, body: `{"status_code": 34}`, wantErr: ErrNotFound},
		{name: "bad key", statusCode: http.StatusUnauthorized, body: `{"status_code": 7}`, wantErr: ErrUnauthorized},
		{name: "rate limited", statusCode: http.StatusTooManyRequests, wantErr: ErrRateLimited},
		{name: "server error", statusCode: http.StatusBadGateway, wantErr: ErrServer},
		{name: "other status", statusCode: http.StatusTeapot, body: "short and stout", wantErr: ErrUnexpectedStatus},
		{name: "malformed body", statusCode: http.StatusOK, body: `{"poster_path": 42`, wantErr: ErrDecode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
				w.Write([]byte(tt.body))
			})

			_, err := client.GetMovie(context.Background(), 550)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.statusCode, StatusOf(err))

			var tmdbErr *Error
			require.True(t, errors.As(err, &tmdbErr))
			assert.Equal(t, "getMovie", tmdbErr.Op)
			assert.Equal(t, 550, tmdbErr.MovieID)
		})
	}
}

func TestClient_GetMovie_NetworkErrorRedactsKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	base := server.URL
	server.Close()

	client, err := New(Config{APIKey: "secret-key", BaseURL: base, ImageBaseURL: "https://img.test"},
		slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	defer client.Close()

	_, err = client.GetMovie(context.Background(), 1)
	require.Error(t, err)
	assert.Zero(t, StatusOf(err))
	assert.NotContains(t, err.Error(), "secret-key")
	assert.Contains(t, err.Error(), "REDACTED")
}

func TestClient_GetMovie_ContextDeadline(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.GetMovie(ctx, 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClient_ImageURL(t *testing.T) {
	client, err := New(Config{BaseURL: "https://api.themoviedb.org/3", ImageBaseURL: "https://image.tmdb.org/t/p/w500/"},
		slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	defer client.Close()

	assert.Equal(t, "https://image.tmdb.org/t/p/w500/abc.jpg", client.ImageURL("/abc.jpg"))
	assert.Equal(t, "https://image.tmdb.org/t/p/w500/abc.jpg", client.ImageURL("abc.jpg"))
}

func TestRedact(t *testing.T) {
	client, err := New(Config{APIKey: "k", BaseURL: "https://api.themoviedb.org/3"}, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	defer client.Close()

	u := *client.baseURL
	u.RawQuery = "api_key=k&language=en"
	got := redact(u)
	assert.True(t, strings.Contains(got, "api_key=REDACTED"))
	assert.Contains(t, got, "language=en")
}
