package pms

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/citrus-hotelmate/ibe-v2-sub001/internal/logctx"
	"github.com/citrus-hotelmate/ibe-v2-sub001/internal/model"
	"github.com/citrus-hotelmate/ibe-v2-sub001/internal/ports"
)

const (
	DefaultRefreshPath     = "/api/auth/refresh"
	DefaultCredentialsPath = "/api/hotels/{hotelId}/payment-gateway"
	DefaultPromotionsPath  = "/api/hotels/{hotelId}/promotions"

	requestIDHeader = "X-Request-Id"
)

var ErrEmptyRefreshResponse = errors.New("refresh response has no tokens")

// StatusError is a non-2xx answer from an authorized PMS call.
type StatusError struct {
	Status int
	Path   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("pms %s answered %d", e.Path, e.Status)
}

type Config struct {
	BaseURL         string
	RefreshPath     string
	CredentialsPath string
	PromotionsPath  string
	Timeout         time.Duration
}

type ClientOption func(*Client)

// Client talks to the property-management API. It has no session of its
// own; see Authorized for bearer-token calls.
type Client struct {
	rest   *resty.Client
	config Config
}

func NewClient(config Config, opts ...ClientOption) *Client {
	if config.RefreshPath == "" {
		config.RefreshPath = DefaultRefreshPath
	}
	if config.CredentialsPath == "" {
		config.CredentialsPath = DefaultCredentialsPath
	}
	if config.PromotionsPath == "" {
		config.PromotionsPath = DefaultPromotionsPath
	}

	rest := resty.New().
		SetBaseURL(config.BaseURL).
		SetHeader("Accept", "application/json")
	if config.Timeout > 0 {
		rest.SetTimeout(config.Timeout)
	}

	client := &Client{rest: rest, config: config}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// WithRESTClient replaces the underlying resty client. Base URL and timeout
// from Config are applied on top.
func WithRESTClient(rest *resty.Client) ClientOption {
	return func(c *Client) {
		c.rest = rest.SetBaseURL(c.config.BaseURL)
		if c.config.Timeout > 0 {
			c.rest.SetTimeout(c.config.Timeout)
		}
	}
}

// WithRequestLogging logs every call with the logger from the request
// context. Bodies and headers are never logged.
func WithRequestLogging() ClientOption {
	return func(c *Client) {
		c.rest.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			if id, ok := logctx.RequestID(req.Context()); ok {
				req.SetHeader(requestIDHeader, id)
			}
			return nil
		})

		c.rest.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
			ctx := resp.Request.Context()
			level := slog.LevelDebug
			if resp.StatusCode() >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			logctx.From(ctx).LogAttrs(ctx, level, "pms call completed",
				slog.String("method", resp.Request.Method),
				slog.String("path", resp.Request.RawRequest.URL.Path),
				slog.Int("status", resp.StatusCode()),
				slog.Duration("dur", resp.Time()),
			)
			return nil
		})

		c.rest.OnError(func(req *resty.Request, err error) {
			ctx := req.Context()
			logctx.From(ctx).LogAttrs(ctx, slog.LevelError, "pms call failed",
				slog.String("method", req.Method),
				slog.String("url", req.URL),
				slog.Any("err", err),
			)
		})
	}
}

type tokenPairBody struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// RefreshTokens posts the current pair to the refresh endpoint.
// Any non-2xx status is a *model.RefreshFailedError.
func (c *Client) RefreshTokens(ctx context.Context, pair model.TokenPair) (*model.TokenPair, error) {
	const op = "pms.Client.RefreshTokens"

	var body tokenPairBody
	resp, err := c.rest.R().
		SetContext(ctx).
		SetBody(tokenPairBody{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken}).
		SetResult(&body).
		Post(c.config.RefreshPath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !resp.IsSuccess() {
		return nil, &model.RefreshFailedError{Status: resp.StatusCode()}
	}
	if body.AccessToken == "" || body.RefreshToken == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrEmptyRefreshResponse)
	}

	return &model.TokenPair{AccessToken: body.AccessToken, RefreshToken: body.RefreshToken}, nil
}

// Authorized returns a view of the client that sends the bearer token from tokens.
func (c *Client) Authorized(tokens ports.TokenSourceInterface) *AuthorizedClient {
	return &AuthorizedClient{client: c, tokens: tokens}
}

type AuthorizedClient struct {
	client *Client
	tokens ports.TokenSourceInterface
}

// FetchPaymentCredentials returns the gateway credential records of a hotel.
// A 404 is reported as an empty list.
func (a *AuthorizedClient) FetchPaymentCredentials(ctx context.Context, hotelID int) ([]model.GatewayCredential, error) {
	const op = "pms.AuthorizedClient.FetchPaymentCredentials"

	var records []model.GatewayCredential
	err := a.do(ctx, a.client.config.CredentialsPath, hotelParams(hotelID), &records)
	var statusErr *StatusError
	if errors.As(err, &statusErr) && statusErr.Status == http.StatusNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return records, nil
}

func (a *AuthorizedClient) FetchPromotions(ctx context.Context, hotelID int) ([]model.PromotionRule, error) {
	const op = "pms.AuthorizedClient.FetchPromotions"

	var rules []model.PromotionRule
	err := a.do(ctx, a.client.config.PromotionsPath, hotelParams(hotelID), &rules)
	var statusErr *StatusError
	if errors.As(err, &statusErr) && statusErr.Status == http.StatusNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return rules, nil
}

// Fetch performs an authorized GET of an arbitrary PMS path and returns the raw body.
func (a *AuthorizedClient) Fetch(ctx context.Context, path string) ([]byte, error) {
	const op = "pms.AuthorizedClient.Fetch"

	resp, err := a.get(ctx, path, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return resp.Body(), nil
}

func (a *AuthorizedClient) do(ctx context.Context, path string, params map[string]string, result interface{}) error {
	_, err := a.get(ctx, path, params, result)
	return err
}

// get sends the request with the current token. A 401 triggers one explicit
// refresh and a single retry with the new token.
func (a *AuthorizedClient) get(ctx context.Context, path string, params map[string]string, result interface{}) (*resty.Response, error) {
	token, err := a.tokens.GetToken(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := a.request(ctx, token, params, result).Get(path)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode() == http.StatusUnauthorized {
		logctx.From(ctx).Debug("pms rejected access token, refreshing", slog.String("path", path))

		token, err = a.tokens.Refresh(ctx)
		if err != nil {
			return nil, err
		}
		resp, err = a.request(ctx, token, params, result).Get(path)
		if err != nil {
			return nil, err
		}
	}

	if !resp.IsSuccess() {
		return nil, &StatusError{Status: resp.StatusCode(), Path: path}
	}
	return resp, nil
}

func (a *AuthorizedClient) request(ctx context.Context, token string, params map[string]string, result interface{}) *resty.Request {
	req := a.client.rest.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetPathParams(params)
	if result != nil {
		req.SetResult(result)
	}
	return req
}

func hotelParams(hotelID int) map[string]string {
	return map[string]string{"hotelId": strconv.Itoa(hotelID)}
}
