package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"petcare-inventory-api/internal/model"
)

// apiClient calls the inventory API with the session token.
type apiClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func newAPIClient(s session) *apiClient {
	return &apiClient{
		baseURL:    strings.TrimRight(s.BaseURL, "/"),
		token:      s.Token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type apiEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *apiClient) listItems(ctx context.Context) ([]model.InventoryItem, error) {
	var items []model.InventoryItem
	err := c.getData(ctx, "/api/v1/inventory", &items)
	return items, err
}

func (c *apiClient) searchItems(ctx context.Context, query string) ([]model.InventoryItem, error) {
	var items []model.InventoryItem
	err := c.getData(ctx, "/api/v1/inventory/search?q="+url.QueryEscape(query), &items)
	return items, err
}

func (c *apiClient) uploadPhoto(ctx context.Context, fileName string, data []byte) (string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filepath.Base(fileName))
	if err != nil {
		return "", err
	}
	if _, err := part.Write(data); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/api/v1/photos", &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusCreated {
		return "", responseError(resp.StatusCode, raw)
	}

	var out struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("decoding upload response: %w", err)
	}
	return out.URL, nil
}

func (c *apiClient) getData(ctx context.Context, path string, dst any) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return responseError(resp.StatusCode, raw)
	}

	var env apiEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return json.Unmarshal(env.Data, dst)
}

func (c *apiClient) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// responseError turns a failed response into a readable error.
func responseError(status int, raw []byte) error {
	var env apiEnvelope
	if json.Unmarshal(raw, &env) == nil && env.Error != nil {
		return fmt.Errorf("server returned %d: %s", status, env.Error.Message)
	}

	var dup struct {
		Duplicate bool   `json:"duplicate"`
		Message   string `json:"message"`
	}
	if json.Unmarshal(raw, &dup) == nil && dup.Message != "" {
		return fmt.Errorf("server returned %d: %s", status, dup.Message)
	}
	return fmt.Errorf("server returned %d", status)
}
