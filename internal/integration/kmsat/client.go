package kmsat

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/tombee/kmsat/internal/operation/api"
)

// Client names, used as the transport name in metrics and logs.
const (
	AccountClientName    = "account"
	UserEventsClientName = "user_events"
)

// AccountClient reads the KMSAT Reporting API. Its base URL already ends in /v1.
type AccountClient struct {
	*api.BaseClient
}

// NewAccountClient creates a Reporting API client.
func NewAccountClient(config *api.ClientConfig) *AccountClient {
	return &AccountClient{BaseClient: api.NewBaseClient(AccountClientName, config)}
}

// GetAccountInfo returns GET /account. A nil result means the server
// answered 200 with an empty or null body.
func (c *AccountClient) GetAccountInfo(ctx context.Context) (json.RawMessage, error) {
	return getJSON(ctx, c.BaseClient, "/account", nil)
}

// GetAccountRiskScoreHistory returns GET /account/risk_score_history.
func (c *AccountClient) GetAccountRiskScoreHistory(ctx context.Context) (json.RawMessage, error) {
	return getJSON(ctx, c.BaseClient, "/account/risk_score_history", nil)
}

// UserEventClient reads the KMSAT User Events API.
type UserEventClient struct {
	*api.BaseClient
}

// NewUserEventClient creates a User Events API client.
func NewUserEventClient(config *api.ClientConfig) *UserEventClient {
	return &UserEventClient{BaseClient: api.NewBaseClient(UserEventsClientName, config)}
}

// ListUserEvents returns one page of GET /events filtered by query.
func (c *UserEventClient) ListUserEvents(ctx context.Context, query EventQuery, page, pageSize int) (json.RawMessage, error) {
	return getJSON(ctx, c.BaseClient, "/events", query.Values(page, pageSize))
}

// getJSON issues a GET and returns the body verbatim. Only 200 is success.
func getJSON(ctx context.Context, c *api.BaseClient, path string, query url.Values) (json.RawMessage, error) {
	resp, err := c.Get(ctx, path, query)
	if err != nil {
		return nil, ParseError(err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Reason:     reasonPhrase(resp.StatusCode, resp.Status),
			Body:       string(resp.Body),
		}
	}

	var raw json.RawMessage
	if err := c.ParseJSONResponse(resp, &raw); err != nil {
		return nil, err
	}

	if len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, nil
	}
	return raw, nil
}
