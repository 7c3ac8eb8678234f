package chat

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/AmonApolonio/lookchat/internal/config"
	"github.com/AmonApolonio/lookchat/internal/service"
)

func testConfig() *config.Config {
	return &config.Config{
		Backend: config.BackendConfig{
			Username:    "svc",
			Password:    "secret",
			ClienteNome: "Loja Teste",
			ClienteID:   42,
		},
	}
}

func newTestRouter(cfg *config.Config) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()

	h := NewHandler(
		service.NewDispatchService(cfg, logger),
		service.NewUploadService(cfg, logger),
		service.NewProductService(cfg, logger),
		logger,
	)

	r := gin.New()
	h.RegisterRoutes(r.Group("/api"))
	return r
}

func postJSON(r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSendMessageValidation(t *testing.T) {
	r := newTestRouter(testConfig())

	tests := []struct {
		name string
		body string
	}{
		{"empty body", `{}`},
		{"missing chatId", `{"message": "oi"}`},
		{"missing message", `{"chatId": "c1"}`},
		{"malformed", `{`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(r, "/api/send-message", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestSendMessageUnconfiguredBackend(t *testing.T) {
	// No dispatch URL configured: the handler must answer 500, not panic
	// or leak the dispatch attempt.
	r := newTestRouter(&config.Config{})

	w := postJSON(r, "/api/send-message", `{"message": "oi", "chatId": "c1"}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "server configuration error")
}

func TestSendMessageForwardsToBackend(t *testing.T) {
	var got map[string]any
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		user, pass, ok := req.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "svc", user)
		assert.Equal(t, "secret", pass)
		require.NoError(t, json.NewDecoder(req.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer backend.Close()

	cfg := testConfig()
	cfg.Backend.DispatchURL = backend.URL
	r := newTestRouter(cfg)

	w := postJSON(r, "/api/send-message",
		`{"message": "quero um look", "chatId": "c1", "filesUrl": ["https://cdn/x.png"]}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "quero um look", got["mensagem"])
	assert.Equal(t, "c1", got["chat_id"])
	assert.Equal(t, "Loja Teste", got["cliente_nome"])
	assert.EqualValues(t, 42, got["cliente_id"])
	assert.Equal(t, []any{"https://cdn/x.png"}, got["files-url"])
}

func TestSendMessagePropagatesUpstreamStatus(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer backend.Close()

	cfg := testConfig()
	cfg.Backend.DispatchURL = backend.URL
	r := newTestRouter(cfg)

	w := postJSON(r, "/api/send-message", `{"message": "oi", "chatId": "c1"}`)

	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func multipartUpload(t *testing.T, fileName, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="file"; filename="`+fileName+`"`)
	header.Set("Content-Type", contentType)
	part, err := w.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	return &buf, w.FormDataContentType()
}

func TestUploadPhotoRejectsMissingFile(t *testing.T) {
	r := newTestRouter(testConfig())

	w := postJSON(r, "/api/upload-photo", `{}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "no file provided")
}

func TestUploadPhotoRejectsNonImage(t *testing.T) {
	r := newTestRouter(testConfig())

	body, contentType := multipartUpload(t, "doc.pdf", "application/pdf", []byte("%PDF"))
	req := httptest.NewRequest(http.MethodPost, "/api/upload-photo", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "only image files")
}

func TestUploadPhotoRejectsOversizedBeforeUpstream(t *testing.T) {
	upstreamHit := false
	backend := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		upstreamHit = true
	}))
	defer backend.Close()

	cfg := testConfig()
	cfg.Backend.UploadURL = backend.URL
	r := newTestRouter(cfg)

	body, contentType := multipartUpload(t, "big.png", "image/png", make([]byte, MaxUploadSize+1))
	req := httptest.NewRequest(http.MethodPost, "/api/upload-photo", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "10MB")
	assert.False(t, upstreamHit, "oversized files must be rejected locally")
}

func TestUploadPhotoReturnsStorageURL(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		_, _, ok := req.BasicAuth()
		assert.True(t, ok)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"image_url": "https://cdn.example/stored.png",
		})
	}))
	defer backend.Close()

	cfg := testConfig()
	cfg.Backend.UploadURL = backend.URL
	r := newTestRouter(cfg)

	body, contentType := multipartUpload(t, "foto.png", "image/png", []byte("png-bytes"))
	req := httptest.NewRequest(http.MethodPost, "/api/upload-photo", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success  bool   `json:"success"`
		ImageURL string `json:"image_url"`
		FileName string `json:"fileName"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "https://cdn.example/stored.png", resp.ImageURL)
	assert.True(t, strings.HasPrefix(resp.FileName, "foto_"))
	assert.True(t, strings.HasSuffix(resp.FileName, ".png"))
}

func TestProductDetailsValidation(t *testing.T) {
	r := newTestRouter(testConfig())

	w := postJSON(r, "/api/product-details", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "pageToken is required")
}

func TestProductDetailsUnconfiguredKey(t *testing.T) {
	r := newTestRouter(testConfig())

	w := postJSON(r, "/api/product-details", `{"pageToken": "tok"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "server configuration error")
}
