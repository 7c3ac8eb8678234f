package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/AmonApolonio/lookchat/internal/config"
	"github.com/AmonApolonio/lookchat/internal/domain"
)

// OutgoingMessage is one user turn handed off to the AI workflow backend.
type OutgoingMessage struct {
	Message  string
	ChatID   string
	FilesURL []string
}

// DispatchService forwards user turns to the AI workflow backend. The call
// is fire-and-forget from the conversation's point of view: the AI answers
// later through the webhook, never on this request.
type DispatchService struct {
	cfg        *config.Config
	httpClient *http.Client
	logger     *zap.Logger
}

// NewDispatchService creates a new dispatch service.
func NewDispatchService(cfg *config.Config, logger *zap.Logger) *DispatchService {
	return &DispatchService{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}
}

// Send delivers the message to the backend workflow. Returns
// domain.ErrNotConfigured when backend settings are missing and a
// *domain.UpstreamError carrying the backend's status on non-2xx answers.
func (s *DispatchService) Send(ctx context.Context, msg OutgoingMessage) error {
	if !s.cfg.DispatchConfigured() {
		return domain.ErrNotConfigured
	}

	body := map[string]any{
		"cliente_nome": s.cfg.Backend.ClienteNome,
		"cliente_id":   s.cfg.Backend.ClienteID,
		"chat_id":      msg.ChatID,
		"mensagem":     msg.Message,
	}
	if len(msg.FilesURL) > 0 {
		body["files-url"] = msg.FilesURL
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal dispatch payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.Backend.DispatchURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create dispatch request: %w", err)
	}
	req.SetBasicAuth(s.cfg.Backend.Username, s.cfg.Backend.Password)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("dispatch request: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		s.logger.Error("backend rejected dispatch",
			zap.Int("status", resp.StatusCode),
			zap.String("chat_id", msg.ChatID),
		)
		return &domain.UpstreamError{Status: resp.StatusCode, Body: string(respBody)}
	}

	s.logger.Info("message dispatched to AI backend",
		zap.String("chat_id", msg.ChatID),
		zap.Int("files", len(msg.FilesURL)),
	)
	return nil
}
