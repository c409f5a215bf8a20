// Package projectclient talks to the projects API (GET /api/projects and
// friends) with pacing, per-request timeouts and transient retry.
package projectclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/projecthubv3/projecthub-backend/config"
	"github.com/projecthubv3/projecthub-backend/internal/logging"
	"github.com/projecthubv3/projecthub-backend/internal/projects/domain"
)

const (
	headerRequestID = "X-Request-Id"
	bodyLimit       = 4096
	projectsPath    = "/api/projects"
)

type Options struct {
	BaseURL      string
	Timeout      time.Duration
	MaxRetries   int
	RatePerSec   float64
	Burst        int
	RetryInitial time.Duration
	RetryMax     time.Duration
	HTTPClient   *http.Client
	Log          *zap.Logger
}

// Client implements the lister used by the controller.
type Client struct {
	baseURL      string
	http         *http.Client
	limiter      *rate.Limiter
	maxRetries   int
	retryInitial time.Duration
	retryMax     time.Duration
	log          *zap.Logger
}

func New(opt Options) *Client {
	if opt.BaseURL == "" {
		opt.BaseURL = "http://localhost:8080"
	}
	if opt.Timeout <= 0 {
		opt.Timeout = 5 * time.Second
	}
	if opt.MaxRetries < 0 {
		opt.MaxRetries = 0
	}
	if opt.RetryInitial <= 0 {
		opt.RetryInitial = 200 * time.Millisecond
	}
	if opt.RetryMax <= 0 {
		opt.RetryMax = 2 * time.Second
	}
	if opt.Log == nil {
		opt.Log = zap.NewNop()
	}

	httpClient := opt.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if httpClient.Timeout == 0 {
		clone := *httpClient
		clone.Timeout = opt.Timeout
		httpClient = &clone
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if opt.RatePerSec > 0 {
		limiter = rate.NewLimiter(rate.Limit(opt.RatePerSec), max(opt.Burst, 1))
	}

	return &Client{
		baseURL:      strings.TrimRight(opt.BaseURL, "/"),
		http:         httpClient,
		limiter:      limiter,
		maxRetries:   opt.MaxRetries,
		retryInitial: opt.RetryInitial,
		retryMax:     opt.RetryMax,
		log:          opt.Log,
	}
}

// NewFromConfig builds a client from the CLI configuration.
func NewFromConfig(cfg config.ClientConfig, log *zap.Logger) *Client {
	return New(Options{
		BaseURL:      cfg.BaseURL,
		Timeout:      cfg.Timeout,
		MaxRetries:   cfg.MaxRetries,
		RatePerSec:   cfg.RatePerSec,
		Burst:        cfg.RateBurst,
		RetryInitial: cfg.RetryInitial,
		RetryMax:     cfg.RetryMax,
		Log:          log,
	})
}

// List fetches one page. Every query parameter is sent, empty ones included.
func (c *Client) List(ctx context.Context, q domain.ListQuery) (domain.ListResult, error) {
	u, err := c.endpoint(projectsPath)
	if err != nil {
		return domain.ListResult{}, err
	}
	u.RawQuery = q.Values().Encode()

	var res domain.ListResult
	if err := c.do(ctx, "list_projects", http.MethodGet, u.String(), &res); err != nil {
		return domain.ListResult{}, err
	}
	if err := validateList(q, &res); err != nil {
		return domain.ListResult{}, &DecodeError{Err: err}
	}
	return res, nil
}

func (c *Client) GetProject(ctx context.Context, id string) (*domain.Project, error) {
	u, err := c.endpoint(projectsPath + "/" + url.PathEscape(id))
	if err != nil {
		return nil, err
	}
	var p domain.Project
	if err := c.do(ctx, "get_project", http.MethodGet, u.String(), &p); err != nil {
		return nil, err
	}
	if p.ID == "" {
		return nil, &DecodeError{Err: errors.New("project without id")}
	}
	return &p, nil
}

// DeleteProject is not retried on failure; a repeated delete would report 404.
func (c *Client) DeleteProject(ctx context.Context, id string) error {
	u, err := c.endpoint(projectsPath + "/" + url.PathEscape(id))
	if err != nil {
		return err
	}
	ctx, rid := c.requestContext(ctx)
	_, err = c.attempt(ctx, rid, http.MethodDelete, u.String(), nil)
	if err != nil {
		logging.FromContext(ctx, c.log).LogError("delete_project", err)
	}
	return err
}

// CreateProject runs step 0 on the server. Like DeleteProject it is not
// retried: a repeated create would report 409.
func (c *Client) CreateProject(ctx context.Context, in domain.NewProject) (*domain.Project, error) {
	u, err := c.endpoint(projectsPath + "/step0")
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("projects api: encode project: %w", err)
	}

	ctx, rid := c.requestContext(ctx)
	body, err := c.attempt(ctx, rid, http.MethodPost, u.String(), bytes.NewReader(payload))
	if err != nil {
		logging.FromContext(ctx, c.log).LogError("create_project", err)
		return nil, err
	}

	var res struct {
		ProjectID string          `json:"projectId"`
		Project   *domain.Project `json:"project"`
	}
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, &DecodeError{Err: err}
	}
	if res.Project == nil || res.Project.ID == "" || res.Project.ID != res.ProjectID {
		return nil, &DecodeError{Err: errors.New("create response without project")}
	}
	return res.Project, nil
}

func (c *Client) endpoint(path string) (*url.URL, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("projects api: base url: %w", err)
	}
	u.Path = strings.TrimRight(u.Path, "/") + path
	return u, nil
}

func (c *Client) requestContext(ctx context.Context) (context.Context, string) {
	rid := logging.RequestID(ctx)
	if rid == "" {
		rid = uuid.NewString()
		ctx = logging.WithRequestID(ctx, rid)
	}
	return ctx, rid
}

// do runs a GET-like call with retry on transient failures and decodes
// the JSON body into out.
func (c *Client) do(ctx context.Context, op, method, target string, out any) error {
	ctx, rid := c.requestContext(ctx)
	logger := logging.FromContext(ctx, c.log)

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.retryInitial
	bo.MaxInterval = c.retryMax

	body, err := backoff.Retry(ctx, func() ([]byte, error) {
		b, err := c.attempt(ctx, rid, method, target, nil)
		if err != nil && !IsTransient(err) {
			return nil, backoff.Permanent(err)
		}
		return b, err
	},
		backoff.WithBackOff(bo),
		backoff.WithMaxTries(uint(c.maxRetries)+1),
		backoff.WithNotify(func(err error, next time.Duration) {
			logger.LogWarnf(op, "retrying in %s: %v", next, err)
		}),
	)
	if err != nil {
		var perm *backoff.PermanentError
		if errors.As(err, &perm) {
			err = perm.Err
		}
		if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, ctxErr) {
			err = &TransportError{Op: op, Err: ctxErr}
		}
		logger.LogDebugf(op, "request failed: %v", err)
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &DecodeError{Err: err}
	}
	return nil
}

// attempt performs one paced HTTP exchange and returns the body of a 2xx response.
func (c *Client) attempt(ctx context.Context, rid, method, target string, payload io.Reader) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &TransportError{Op: "rate limit", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, method, target, payload)
	if err != nil {
		return nil, fmt.Errorf("projects api: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(headerRequestID, rid)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &TransportError{Op: method + " " + req.URL.Path, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, bodyLimit))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(excerpt))}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: "read body", Err: err}
	}
	return body, nil
}

func validateList(q domain.ListQuery, res *domain.ListResult) error {
	switch {
	case res.Projects == nil:
		return errors.New("missing projects list")
	case res.Total < 0 || res.TotalPages < 0:
		return fmt.Errorf("negative totals (total=%d totalPages=%d)", res.Total, res.TotalPages)
	case res.Page != q.Page:
		return fmt.Errorf("page mismatch: asked %d, got %d", q.Page, res.Page)
	case res.Limit != q.PageSize:
		return fmt.Errorf("limit mismatch: asked %d, got %d", q.PageSize, res.Limit)
	case len(res.Projects) > res.Limit:
		return fmt.Errorf("page holds %d projects, limit is %d", len(res.Projects), res.Limit)
	}
	if res.ProjectTypes == nil {
		res.ProjectTypes = []string{}
	}
	return nil
}
