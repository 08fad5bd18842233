package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const shopifyHTTPTimeout = 60 * time.Second

// graphqlRequest is the envelope POSTed to the Admin GraphQL endpoint.
type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

// graphqlResponse is the envelope Shopify answers with.
type graphqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []GraphQLError  `json:"errors,omitempty"`
}

// UserError is the userErrors entry most Shopify mutations carry.
type UserError struct {
	Field   []string `json:"field"`
	Message string   `json:"message"`
	Code    string   `json:"code,omitempty"`
}

// PageInfo carries Shopify's connection pagination cursor.
type PageInfo struct {
	HasNextPage bool   `json:"hasNextPage"`
	EndCursor   string `json:"endCursor"`
}

// ShopifyClient is a thin authenticated wrapper around the Admin GraphQL
// API: request/response, throttling backoff, and cursor pagination. It
// keeps no state beyond the endpoint and access token.
type ShopifyClient struct {
	endpoint    string
	accessToken string
	httpClient  *http.Client
	retry       RetryPolicy
	verbose     bool
}

// ShopifyOption customizes the client.
type ShopifyOption func(*ShopifyClient)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) ShopifyOption {
	return func(c *ShopifyClient) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithRetryPolicy overrides the throttling retry policy.
func WithRetryPolicy(policy RetryPolicy) ShopifyOption {
	return func(c *ShopifyClient) {
		c.retry = policy
	}
}

// WithEndpoint overrides the GraphQL endpoint (used by tests).
func WithEndpoint(endpoint string) ShopifyOption {
	return func(c *ShopifyClient) {
		c.endpoint = endpoint
	}
}

// NewShopifyClient builds a client for the configured shop. The access
// token must already be validated (Config.RequireShopify).
func NewShopifyClient(config *Config, options ...ShopifyOption) *ShopifyClient {
	client := &ShopifyClient{
		endpoint:    config.ShopifyEndpoint(),
		accessToken: config.ShopifyAccessToken,
		httpClient:  &http.Client{Timeout: shopifyHTTPTimeout},
		retry:       DefaultShopifyRetry(),
		verbose:     config.Verbose,
	}
	for _, option := range options {
		option(client)
	}
	return client
}

// Query sends a GraphQL query or mutation and returns the raw data
// payload. GraphQL errors and non-2xx statuses surface as *APIError;
// throttling errors are retried per the client's policy.
func (c *ShopifyClient) Query(ctx context.Context, query string, variables map[string]any) (json.RawMessage, error) {
	var data json.RawMessage
	err := c.retry.Do(ctx, func() error {
		var qerr error
		data, qerr = c.queryOnce(ctx, query, variables)
		return qerr
	})
	return data, err
}

func (c *ShopifyClient) queryOnce(ctx context.Context, query string, variables map[string]any) (json.RawMessage, error) {
	payload, err := json.Marshal(graphqlRequest{Query: query, Variables: variables})
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Shopify-Access-Token", c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{StatusCode: resp.StatusCode}
	}

	var parsed graphqlResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	if len(parsed.Errors) > 0 {
		return nil, &APIError{StatusCode: resp.StatusCode, Errors: parsed.Errors}
	}
	return parsed.Data, nil
}

// Paginate repeatedly runs query, feeding the previous page's end cursor
// into the $cursor variable, until page reports no next page. The page
// callback receives the raw data payload of each response.
func (c *ShopifyClient) Paginate(ctx context.Context, query string, variables map[string]any, page func(data json.RawMessage) (PageInfo, error)) error {
	if variables == nil {
		variables = map[string]any{}
	}
	for {
		data, err := c.Query(ctx, query, variables)
		if err != nil {
			return err
		}
		info, err := page(data)
		if err != nil {
			return err
		}
		if !info.HasNextPage {
			return nil
		}
		variables["cursor"] = info.EndCursor
	}
}

// checkUserErrors turns a non-empty userErrors list into an *APIError.
func checkUserErrors(op string, userErrors []UserError) error {
	if len(userErrors) == 0 {
		return nil
	}
	ge := make([]GraphQLError, 0, len(userErrors))
	for _, ue := range userErrors {
		e := GraphQLError{Message: fmt.Sprintf("%s: %s", op, ue.Message)}
		e.Extensions.Code = ue.Code
		ge = append(ge, e)
	}
	return &APIError{StatusCode: http.StatusOK, Errors: ge}
}
