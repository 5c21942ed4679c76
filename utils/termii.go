package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dorcasbeulah27/PowerOil-Backend/config"
)

const TermiiDefaultURL = "https://v3.api.termii.com/api/sms/send"

// TermiiError represents a non-success answer from the Termii API
type TermiiError struct {
	Message  string
	HTTPCode int
}

func (e *TermiiError) Error() string {
	return fmt.Sprintf("termii error [%d]: %s", e.HTTPCode, e.Message)
}

type TermiiSMSRequest struct {
	To      string `json:"to"`
	From    string `json:"from"`
	SMS     string `json:"sms"`
	Type    string `json:"type"`
	Channel string `json:"channel"`
	APIKey  string `json:"api_key"`
}

type TermiiSMSResponse struct {
	Code      string  `json:"code"`
	MessageID string  `json:"message_id"`
	Message   string  `json:"message"`
	Balance   float64 `json:"balance"`
	User      string  `json:"user"`
}

// TermiiClient sends plain SMS through Termii
type TermiiClient struct {
	cfg        config.TermiiConfig
	httpClient *http.Client
}

func NewTermiiClient(cfg config.TermiiConfig) *TermiiClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = TermiiDefaultURL
	}
	if cfg.Channel == "" {
		cfg.Channel = "dnd"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &TermiiClient{cfg: cfg, httpClient: &http.Client{Timeout: timeout}}
}

// Enabled reports whether an API key is configured
func (c *TermiiClient) Enabled() bool {
	return c != nil && c.cfg.APIKey != ""
}

// Send delivers message to phone, formatting the number for Nigeria first
func (c *TermiiClient) Send(ctx context.Context, phone, message string) error {
	if !c.Enabled() {
		return fmt.Errorf("TERMII_API_KEY not set")
	}

	reqBody := TermiiSMSRequest{
		To:      FormatNigerianPhone(phone),
		From:    c.cfg.SenderID,
		SMS:     message,
		Type:    "plain",
		Channel: c.cfg.Channel,
		APIKey:  c.cfg.APIKey,
	}
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var termiiResp TermiiSMSResponse
		msg := strings.TrimSpace(string(body))
		if json.Unmarshal(body, &termiiResp) == nil && termiiResp.Message != "" {
			msg = termiiResp.Message
		}
		return &TermiiError{Message: msg, HTTPCode: resp.StatusCode}
	}
	return nil
}

// FormatNigerianPhone converts local and +234 numbers into the 234XXXXXXXXXX form Termii expects
func FormatNigerianPhone(phone string) string {
	p := NormalizePhoneInput(phone)
	switch {
	case strings.HasPrefix(p, "+234"):
		return p[1:]
	case strings.HasPrefix(p, "234"):
		return p
	case strings.HasPrefix(p, "0"):
		return "234" + p[1:]
	default:
		return "234" + p
	}
}
