// Package crm fetches a customer's recent support exchanges from the CRM.
package crm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hyperjump/hanashi/internal/models"
)

// Client calls the CRM message API. Unconfigured credentials degrade to an
// empty result, never an error, per the collaborator contract.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a CRM client. Empty baseURL or apiKey yields an
// unconfigured client.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Configured reports whether credentials are present.
func (c *Client) Configured() bool { return c.baseURL != "" && c.apiKey != "" }

type messageRecord struct {
	Subject   string `json:"subject"`
	Body      string `json:"body"`
	Timestamp string `json:"timestamp"`
	Direction string `json:"direction"`
}

// FindRecentMessages returns the customer's recent messages, newest first,
// or nothing when the email is unknown or the client is unconfigured.
func (c *Client) FindRecentMessages(ctx context.Context, email string) ([]models.CRMMessage, error) {
	if !c.Configured() {
		return nil, nil
	}
	u := c.baseURL + "/api/messages?email=" + url.QueryEscape(email)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("crm lookup: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("crm lookup: status %d: %s", resp.StatusCode, string(body))
	}
	var payload struct {
		Messages []messageRecord `json:"messages"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("crm decode: %w", err)
	}
	messages := make([]models.CRMMessage, 0, len(payload.Messages))
	for _, m := range payload.Messages {
		ts, err := time.Parse(time.RFC3339, m.Timestamp)
		if err != nil {
			ts = time.Time{}
		}
		messages = append(messages, models.CRMMessage{
			Subject:   m.Subject,
			Body:      m.Body,
			Timestamp: ts,
			Direction: m.Direction,
		})
	}
	return messages, nil
}
