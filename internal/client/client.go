// Package client provides a typed HTTP client for the lookchat server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"time"

	"github.com/AmonApolonio/lookchat/internal/domain"
)

// Client calls the lookchat server's chat endpoints.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a new client. If baseURL is empty, uses the
// LOOKCHAT_SERVER_URL env var or defaults to localhost:8080.
func New(baseURL string) *Client {
	if baseURL == "" {
		baseURL = os.Getenv("LOOKCHAT_SERVER_URL")
	}
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 90 * time.Second,
		},
	}
}

// pollResponse mirrors the poll endpoint's envelope.
type pollResponse struct {
	Success     bool            `json:"success"`
	HasResponse bool            `json:"hasResponse"`
	Data        *domain.Payload `json:"data"`
}

// CheckResponse polls for an undelivered AI payload for the conversation.
// The returned payload is consumed server-side: a second call will not see
// it again.
func (c *Client) CheckResponse(ctx context.Context, chatID string) (*domain.Payload, bool, error) {
	endpoint := fmt.Sprintf("%s/api/check-ai-response?chatId=%s", c.baseURL, url.QueryEscape(chatID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, false, fmt.Errorf("create poll request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, false, fmt.Errorf("poll request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, false, fmt.Errorf("read poll response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, false, fmt.Errorf("poll failed: %s - %s", resp.Status, string(body))
	}

	var pr pollResponse
	if err := json.Unmarshal(body, &pr); err != nil {
		return nil, false, fmt.Errorf("unmarshal poll response: %w", err)
	}

	if !pr.Success || !pr.HasResponse || pr.Data == nil {
		return nil, false, nil
	}
	return pr.Data, true, nil
}

// SendMessage dispatches one user turn, with optional attachment URLs.
func (c *Client) SendMessage(ctx context.Context, message, chatID string, filesURL []string) error {
	payload := map[string]any{
		"message": message,
		"chatId":  chatID,
	}
	if len(filesURL) > 0 {
		payload["filesUrl"] = filesURL
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal send request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/send-message", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create send request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("send failed: %s - %s", resp.Status, string(respBody))
	}
	return nil
}

// uploadResponse mirrors the upload endpoint's answer.
type uploadResponse struct {
	Success  bool   `json:"success"`
	ImageURL string `json:"image_url"`
	FileName string `json:"fileName"`
}

// UploadPhoto uploads an image and returns its public URL.
func (c *Client) UploadPhoto(ctx context.Context, fileName, mimeType string, data []byte) (string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, fileName))
	header.Set("Content-Type", mimeType)
	part, err := w.CreatePart(header)
	if err != nil {
		return "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("write form file: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/upload-photo", &buf)
	if err != nil {
		return "", fmt.Errorf("create upload request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read upload response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("upload failed: %s - %s", resp.Status, string(body))
	}

	var ur uploadResponse
	if err := json.Unmarshal(body, &ur); err != nil {
		return "", fmt.Errorf("unmarshal upload response: %w", err)
	}
	if ur.ImageURL == "" {
		return "", fmt.Errorf("upload response missing image URL")
	}
	return ur.ImageURL, nil
}

// ProductDetails fetches product details for an opaque page token.
func (c *Client) ProductDetails(ctx context.Context, pageToken string) (map[string]any, error) {
	body, err := json.Marshal(map[string]string{"pageToken": pageToken})
	if err != nil {
		return nil, fmt.Errorf("marshal product request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/product-details", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create product request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("product request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read product response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("product lookup failed: %s - %s", resp.Status, string(respBody))
	}

	var data map[string]any
	if err := json.Unmarshal(respBody, &data); err != nil {
		return nil, fmt.Errorf("unmarshal product response: %w", err)
	}
	return data, nil
}
