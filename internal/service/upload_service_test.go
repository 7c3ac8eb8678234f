package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/AmonApolonio/lookchat/internal/config"
	"github.com/AmonApolonio/lookchat/internal/domain"
)

func uploadConfig(url string) *config.Config {
	return &config.Config{
		Backend: config.BackendConfig{
			UploadURL: url,
			Username:  "svc",
			Password:  "secret",
		},
	}
}

func TestUploadMultipartHappyPath(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		require.NoError(t, req.ParseMultipartForm(32<<20))
		assert.Equal(t, "upload-file", req.FormValue("type"))
		assert.NotEmpty(t, req.FormValue("fileName"))

		file, _, err := req.FormFile("file")
		require.NoError(t, err)
		defer file.Close()

		_ = json.NewEncoder(w).Encode(map[string]string{
			"image_url": "https://cdn.example/foto.png",
		})
	}))
	defer backend.Close()

	s := NewUploadService(uploadConfig(backend.URL), zap.NewNop())
	url, storedName, err := s.Upload(context.Background(), "foto.png", "image/png", []byte("png-bytes"))

	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/foto.png", url)
	assert.Regexp(t, regexp.MustCompile(`^foto_\d+_[a-z0-9]{13}\.png$`), storedName)
}

func TestUploadFallsBackToBase64Once(t *testing.T) {
	var calls int32
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		if n == 1 {
			// Older workflow deployments reject multipart.
			http.Error(w, "unsupported media type", http.StatusUnsupportedMediaType)
			return
		}

		var body map[string]string
		require.NoError(t, json.NewDecoder(req.Body).Decode(&body))
		assert.Equal(t, "upload-file", body["type"])
		assert.Equal(t, "image/jpeg", body["mimeType"])

		raw, err := base64.StdEncoding.DecodeString(body["file"])
		require.NoError(t, err)
		assert.Equal(t, []byte("jpeg-bytes"), raw)

		_ = json.NewEncoder(w).Encode(map[string]string{
			"image_url": "https://cdn.example/fallback.jpg",
		})
	}))
	defer backend.Close()

	s := NewUploadService(uploadConfig(backend.URL), zap.NewNop())
	url, _, err := s.Upload(context.Background(), "foto.jpg", "image/jpeg", []byte("jpeg-bytes"))

	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/fallback.jpg", url)
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestUploadBothEncodingsRejected(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "no", http.StatusForbidden)
	}))
	defer backend.Close()

	s := NewUploadService(uploadConfig(backend.URL), zap.NewNop())
	_, _, err := s.Upload(context.Background(), "foto.png", "image/png", []byte("x"))

	var upstream *domain.UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, http.StatusForbidden, upstream.Status)
}

func TestUploadMissingImageURL(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}))
	defer backend.Close()

	s := NewUploadService(uploadConfig(backend.URL), zap.NewNop())
	_, _, err := s.Upload(context.Background(), "foto.png", "image/png", []byte("x"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "image URL")
}

func TestUploadUnconfigured(t *testing.T) {
	s := NewUploadService(&config.Config{}, zap.NewNop())

	_, _, err := s.Upload(context.Background(), "foto.png", "image/png", []byte("x"))

	assert.ErrorIs(t, err, domain.ErrNotConfigured)
}

func TestStorageFileName(t *testing.T) {
	tests := []struct {
		original string
		pattern  string
	}{
		{"foto.png", `^foto_\d+_[a-z0-9]{13}\.png$`},
		{"minha foto.jpeg", `^minha foto_\d+_[a-z0-9]{13}\.jpeg$`},
		{"semextensao", `^semextensao_\d+_[a-z0-9]{13}\.jpg$`},
		{"", `^upload_\d+_[a-z0-9]{13}\.jpg$`},
	}

	for _, tt := range tests {
		assert.Regexp(t, regexp.MustCompile(tt.pattern), storageFileName(tt.original), "original=%q", tt.original)
	}
}
