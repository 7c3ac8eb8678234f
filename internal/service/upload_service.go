package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"mime/multipart"
	"net/http"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/AmonApolonio/lookchat/internal/config"
	"github.com/AmonApolonio/lookchat/internal/domain"
)

// UploadService pushes image files to the storage backend and returns the
// public URL it assigns. The backend accepts two encodings depending on
// which workflow version is deployed, so a failed multipart attempt is
// retried once as base64 JSON.
type UploadService struct {
	cfg        *config.Config
	httpClient *http.Client
	logger     *zap.Logger
}

// NewUploadService creates a new upload service.
func NewUploadService(cfg *config.Config, logger *zap.Logger) *UploadService {
	return &UploadService{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		logger:     logger,
	}
}

// uploadAck is the storage backend's answer; only image_url matters.
type uploadAck struct {
	ImageURL string `json:"image_url"`
}

// Upload stores the file bytes and returns the public image URL. The
// originalName is only used to derive the stored filename; a timestamped
// random suffix avoids collisions on the storage side.
func (s *UploadService) Upload(ctx context.Context, originalName, mimeType string, data []byte) (url, storedName string, err error) {
	if !s.cfg.UploadConfigured() {
		return "", "", domain.ErrNotConfigured
	}

	storedName = storageFileName(originalName)

	resp, err := s.uploadMultipart(ctx, storedName, data)
	if err != nil {
		return "", "", err
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		s.logger.Warn("multipart upload rejected, retrying as base64 JSON",
			zap.Int("status", resp.StatusCode),
			zap.String("file", storedName),
		)
		resp, err = s.uploadBase64(ctx, storedName, mimeType, data)
		if err != nil {
			return "", "", err
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", "", fmt.Errorf("read upload response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", "", &domain.UpstreamError{Status: resp.StatusCode, Body: string(body)}
	}

	var ack uploadAck
	if err := json.Unmarshal(body, &ack); err != nil {
		return "", "", fmt.Errorf("upload service returned invalid response: %w", err)
	}
	if ack.ImageURL == "" {
		return "", "", fmt.Errorf("upload service did not return an image URL")
	}

	s.logger.Info("file uploaded",
		zap.String("file", storedName),
		zap.Int("size", len(data)),
	)
	return ack.ImageURL, storedName, nil
}

func (s *UploadService) uploadMultipart(ctx context.Context, fileName string, data []byte) (*http.Response, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("file", fileName)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("write form file: %w", err)
	}
	_ = w.WriteField("type", "upload-file")
	_ = w.WriteField("fileName", fileName)
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.Backend.UploadURL, &buf)
	if err != nil {
		return nil, fmt.Errorf("create upload request: %w", err)
	}
	req.SetBasicAuth(s.cfg.Backend.Username, s.cfg.Backend.Password)
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("multipart upload: %w", err)
	}
	return resp, nil
}

func (s *UploadService) uploadBase64(ctx context.Context, fileName, mimeType string, data []byte) (*http.Response, error) {
	body, err := json.Marshal(map[string]string{
		"type":     "upload-file",
		"fileName": fileName,
		"file":     base64.StdEncoding.EncodeToString(data),
		"mimeType": mimeType,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal base64 upload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.Backend.UploadURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create upload request: %w", err)
	}
	req.SetBasicAuth(s.cfg.Backend.Username, s.cfg.Backend.Password)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("base64 upload: %w", err)
	}
	return resp, nil
}

const fileNameAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// storageFileName derives a collision-resistant name from the original:
// <base>_<unix-millis>_<random>.<ext>.
func storageFileName(original string) string {
	ext := strings.TrimPrefix(path.Ext(original), ".")
	if ext == "" {
		ext = "jpg"
	}
	base := strings.TrimSuffix(path.Base(original), path.Ext(original))
	if base == "" || base == "." {
		base = "upload"
	}

	suffix := make([]byte, 13)
	for i := range suffix {
		suffix[i] = fileNameAlphabet[rand.Intn(len(fileNameAlphabet))]
	}

	return fmt.Sprintf("%s_%d_%s.%s", base, time.Now().UnixMilli(), suffix, ext)
}
