package api

import (
	"context"
	"encoding/json"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/kmsat/internal/operation/transport"
)

type fakeTransport struct {
	requests []*transport.Request
	resp     *transport.Response
	err      error
}

func (f *fakeTransport) Execute(ctx context.Context, req *transport.Request) (*transport.Response, error) {
	f.requests = append(f.requests, req)
	return f.resp, f.err
}

func (f *fakeTransport) Name() string { return "fake" }

func TestBaseClient_BuildURL(t *testing.T) {
	c := NewBaseClient("account", &ClientConfig{BaseURL: "https://us.api.knowbe4.com/v1/"})

	tests := []struct {
		name string
		path string
		want string
	}{
		{name: "plain path", path: "/account", want: "https://us.api.knowbe4.com/v1/account"},
		{name: "no leading slash", path: "account/risk_score_history", want: "https://us.api.knowbe4.com/v1/account/risk_score_history"},
		{name: "braces are literal", path: "/users/{id}", want: "https://us.api.knowbe4.com/v1/users/{id}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.BuildURL(tt.path))
		})
	}
}

func TestBaseClient_BuildQueryString(t *testing.T) {
	c := NewBaseClient("user_events", &ClientConfig{BaseURL: "https://api.events.knowbe4.com"})

	assert.Equal(t, "", c.BuildQueryString(nil))
	assert.Equal(t, "", c.BuildQueryString(url.Values{"event_type": {""}}))
	assert.Equal(t, "?event_type=phishing&page=1",
		c.BuildQueryString(url.Values{"event_type": {"phishing"}, "source": {""}, "page": {"1"}}))
}

func TestBaseClient_Get(t *testing.T) {
	ft := &fakeTransport{resp: &transport.Response{StatusCode: 200, Body: []byte(`{}`)}}
	c := NewBaseClient("user_events", &ClientConfig{Transport: ft, BaseURL: "https://api.events.knowbe4.com"})

	_, err := c.Get(context.Background(), "/events", url.Values{"per_page": {"100"}})
	require.NoError(t, err)

	require.Len(t, ft.requests, 1)
	assert.Equal(t, "GET", ft.requests[0].Method)
	assert.Equal(t, "https://api.events.knowbe4.com/events?per_page=100", ft.requests[0].URL)
	assert.Equal(t, "/events", ft.requests[0].Endpoint)
}

func TestBaseClient_ParseJSONResponse(t *testing.T) {
	c := NewBaseClient("account", &ClientConfig{BaseURL: "https://x"})

	var v interface{}
	require.NoError(t, c.ParseJSONResponse(&transport.Response{Body: []byte(`{"current_risk_score": 12.30}`)}, &v))
	m := v.(map[string]interface{})
	assert.Equal(t, json.Number("12.30"), m["current_risk_score"])

	var empty interface{}
	require.NoError(t, c.ParseJSONResponse(&transport.Response{Body: []byte("  ")}, &empty))
	assert.Nil(t, empty)

	var bad interface{}
	err := c.ParseJSONResponse(&transport.Response{Body: []byte(`<html>`)}, &bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "account")

	for _, body := range []string{`{} trailing`, `{"a":1}{"b":2}`, `null 1`} {
		var raw json.RawMessage
		err := c.ParseJSONResponse(&transport.Response{Body: []byte(body)}, &raw)
		require.Error(t, err, body)
		assert.Contains(t, err.Error(), "unexpected data after top-level value")
	}

	var padded json.RawMessage
	require.NoError(t, c.ParseJSONResponse(&transport.Response{Body: []byte("{\"a\":1}\n  \n")}, &padded))
	assert.JSONEq(t, `{"a":1}`, string(padded))
}
