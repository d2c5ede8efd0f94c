// Package orders looks up storefront orders by number or customer email.
package orders

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
	"go.uber.org/zap"
)

const tokenExpiryMargin = 2 * time.Minute

// Client calls the storefront order API with a lazily refreshed bearer
// token. An unconfigured client degrades to "order absent" instead of
// erroring, per the collaborator contract.
type Client struct {
	baseURL      string
	clientID     string
	clientSecret string
	httpClient   *http.Client
	tokens       *tokenCache
	logger       *zap.Logger
}

// NewClient creates an order-lookup client. Empty credentials yield an
// unconfigured client.
func NewClient(baseURL, clientID, clientSecret string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		clientID:     clientID,
		clientSecret: clientSecret,
		httpClient:   &http.Client{Timeout: timeout},
		tokens:       newTokenCache(tokenExpiryMargin),
		logger:       logger,
	}
}

// Configured reports whether credentials are present.
func (c *Client) Configured() bool {
	return c.baseURL != "" && c.clientID != "" && c.clientSecret != ""
}

type orderRecord struct {
	Number            string `json:"number"`
	FulfillmentStatus string `json:"fulfillment_status"`
	TotalPrice        string `json:"total_price"`
	Currency          string `json:"currency"`
	CreatedAt         string `json:"created_at"`
}

// FindOrder resolves an order number or email to the most recent matching
// order, or nil when nothing matches or the client is unconfigured.
func (c *Client) FindOrder(ctx context.Context, query string) (*models.Order, error) {
	if !c.Configured() {
		return nil, nil
	}
	token, err := c.tokens.get(func() (string, time.Time, error) { return c.fetchToken(ctx) })
	if err != nil {
		return nil, fmt.Errorf("order token: %w", err)
	}

	u := c.baseURL + "/api/orders?query=" + url.QueryEscape(query)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("order lookup: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("order lookup: status %d: %s", resp.StatusCode, string(body))
	}

	var payload struct {
		Orders []orderRecord `json:"orders"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("order decode: %w", err)
	}
	if len(payload.Orders) == 0 {
		return nil, nil
	}
	return toOrder(payload.Orders[0]), nil
}

func toOrder(r orderRecord) *models.Order {
	created, err := time.Parse(time.RFC3339, r.CreatedAt)
	if err != nil {
		created = time.Time{}
	}
	status := models.FulfillmentStatus(r.FulfillmentStatus)
	switch status {
	case models.FulfillmentFulfilled, models.FulfillmentPartial, models.FulfillmentRestocked:
	default:
		status = models.FulfillmentUnfulfilled
	}
	return &models.Order{
		Number:            r.Number,
		FulfillmentStatus: status,
		Total:             r.TotalPrice,
		Currency:          r.Currency,
		CreatedAt:         created,
	}
}

// fetchToken exchanges client credentials for a bearer token.
func (c *Client) fetchToken(ctx context.Context) (string, time.Time, error) {
	form := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {c.clientID},
		"client_secret": {c.clientSecret},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/oauth/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", time.Time{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", time.Time{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", time.Time{}, fmt.Errorf("token endpoint: status %d: %s", resp.StatusCode, string(body))
	}
	var payload struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", time.Time{}, fmt.Errorf("token decode: %w", err)
	}
	if payload.AccessToken == "" {
		return "", time.Time{}, fmt.Errorf("token endpoint returned empty token")
	}
	c.logger.Debug("order access token refreshed", zap.Int("expires_in", payload.ExpiresIn))
	return payload.AccessToken, time.Now().Add(time.Duration(payload.ExpiresIn) * time.Second), nil
}
