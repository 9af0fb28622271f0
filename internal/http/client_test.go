package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_FetchSetsDefaultUserAgent(t *testing.T) {
	var gotUA, gotCookie string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotCookie = r.Header.Get("Cookie")
		_, _ = w.Write([]byte("<html>ok</html>"))
	}))
	defer srv.Close()

	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	req.Header.Set("Cookie", "a=1")

	body, err := NewClient(5*time.Second).Fetch(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "<html>ok</html>", body)
	assert.Equal(t, DefaultUserAgent, gotUA)
	assert.Equal(t, "a=1", gotCookie)
}

func TestClient_FetchKeepsProviderUserAgent(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
	}))
	defer srv.Close()

	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	req.Header.Set("User-Agent", "Mozilla/5.0")

	_, err = NewClient(5*time.Second).Fetch(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "Mozilla/5.0", gotUA)
}

func TestClient_FetchStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)

	_, err = NewClient(5*time.Second).Fetch(context.Background(), req)
	require.Error(t, err)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
}

func TestClient_DownloadFile(t *testing.T) {
	payload := strings.Repeat("x", 4096)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(payload))
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "cover.jpg")
	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)

	var last int64
	err = NewClient(5*time.Second).DownloadFile(context.Background(), req, dest, func(written, total int64) {
		last = written
	})
	require.NoError(t, err)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, payload, string(data))
	assert.Equal(t, int64(len(payload)), last)
}

func TestClient_DownloadFileFailureLeavesNoFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "broken.jpg")
	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)

	err = NewClient(5*time.Second).DownloadFile(context.Background(), req, dest, nil)
	require.Error(t, err)
	assert.NoFileExists(t, dest)
	assert.NoFileExists(t, dest+".part")
}

func TestClient_DownloadFileKeepsExistingOnFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "p1.jpg")
	require.NoError(t, os.WriteFile(dest, []byte("old"), 0644))
	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)

	require.Error(t, NewClient(5*time.Second).DownloadFile(context.Background(), req, dest, nil))
	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "old", string(data))
}

func TestLoadCookie(t *testing.T) {
	dir := t.TempDir()
	lower := filepath.Join(dir, "lower.json")
	require.NoError(t, os.WriteFile(lower, []byte(`[{"name":"a","value":"1"},{"name":"b","value":"2"}]`), 0644))
	upper := filepath.Join(dir, "upper.json")
	require.NoError(t, os.WriteFile(upper, []byte(`[{"Name":"sid","Value":"xyz","Domain":".linovelib.com"}]`), 0644))
	empty := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(empty, []byte(`[]`), 0644))
	broken := filepath.Join(dir, "broken.json")
	require.NoError(t, os.WriteFile(broken, []byte(`{`), 0644))

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "empty", input: "", want: ""},
		{name: "literal", input: "a=1; b=2", want: "a=1; b=2"},
		{name: "lower case file", input: lower, want: "a=1; b=2"},
		{name: "upper case file", input: upper, want: "sid=xyz"},
		{name: "empty file", input: empty, wantErr: true},
		{name: "broken file", input: broken, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LoadCookie(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
