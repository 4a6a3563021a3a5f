package functions

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// SmsClient invokes the platform's "send verification code" function. The
// function owns delivery; this client only hands it a phone number and code.
type SmsClient struct {
	url        string
	httpClient *http.Client
}

func NewSmsClient(url string) *SmsClient {
	return &SmsClient{
		url: url,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type sendCodeRequest struct {
	Phone string `json:"phone"`
	Code  string `json:"code"`
}

func (c *SmsClient) SendCode(ctx context.Context, phone, code string) error {
	if c.url == "" {
		return fmt.Errorf("sms function URL is not configured")
	}

	body, err := json.Marshal(sendCodeRequest{Phone: phone, Code: code})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("sms function returned status %d", resp.StatusCode)
	}

	return nil
}
