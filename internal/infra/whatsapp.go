package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// GraphMessageRequest is the outbound payload for a templated text message.
type GraphMessageRequest struct {
	MessagingProduct string    `json:"messaging_product"`
	To               string    `json:"to"`
	Type             string    `json:"type"`
	Text             GraphText `json:"text"`
}

type GraphText struct {
	Body string `json:"body"`
}

// GraphMessageResponse is the (partial) Cloud API response.
type GraphMessageResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
	Error *GraphError `json:"error,omitempty"`
}

type GraphError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    int    `json:"code"`
}

// GraphClient talks to the WhatsApp Cloud API (Meta Graph). One client is
// shared by all tenants; the per-integration access token travels per call.
type GraphClient struct {
	baseURL    string
	apiVersion string
	httpClient *http.Client
}

func NewGraphClient(baseURL, apiVersion string) *GraphClient {
	return &GraphClient{
		baseURL:    baseURL,
		apiVersion: apiVersion,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// SendText posts a plain text message from phoneNumberID to the customer.
func (c *GraphClient) SendText(ctx context.Context, phoneNumberID, accessToken, to, body string) (string, error) {
	payload := GraphMessageRequest{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "text",
		Text:             GraphText{Body: body},
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("whatsapp: marshal payload: %w", err)
	}

	url := fmt.Sprintf("%s/%s/%s/messages", c.baseURL, c.apiVersion, phoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("whatsapp: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("whatsapp: graph unreachable: %w", err)
	}
	defer resp.Body.Close()

	var result GraphMessageResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("whatsapp: decode response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if result.Error != nil {
			return "", fmt.Errorf("whatsapp: graph error %d: %s", result.Error.Code, result.Error.Message)
		}
		return "", fmt.Errorf("whatsapp: graph returned %d", resp.StatusCode)
	}
	if len(result.Messages) == 0 {
		return "", fmt.Errorf("whatsapp: graph accepted without message id")
	}
	return result.Messages[0].ID, nil
}
