package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

type Client struct {
	BaseURL    string
	UserID     string
	HTTPClient *http.Client
}

func (c *Client) Get(endpoint string, query url.Values, out any) ([]byte, error) {
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	return c.sendRequest(http.MethodGet, endpoint, nil, out)
}

func (c *Client) Post(endpoint string, payload, out any) ([]byte, error) {
	return c.sendRequest(http.MethodPost, endpoint, payload, out)
}

// sendRequest returns the raw body and, when out is non-nil, decodes it into out.
func (c *Client) sendRequest(method, endpoint string, payload, out any) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		jsonBytes, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewBuffer(jsonBytes)
	}

	req, err := http.NewRequest(method, c.BaseURL+endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", c.UserID)

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 300 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error != "" {
			return nil, fmt.Errorf("%s %s: %d: %s", method, endpoint, resp.StatusCode, apiErr.Error)
		}
		return nil, fmt.Errorf("%s %s: %d", method, endpoint, resp.StatusCode)
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return nil, fmt.Errorf("decode response: %w", err)
		}
	}
	return respBody, nil
}
