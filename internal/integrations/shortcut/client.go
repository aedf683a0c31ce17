package shortcut

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"shortcutreport/internal/domain"
)

const (
	DefaultBaseURL  = "https://api.app.shortcut.com"
	DefaultMaxPages = 10
	DefaultPageSize = 25

	maxResultsExceededCode = "maximum-results-exceeded"
)

// ErrMaxResultsExceeded is reported when a search matches more stories than
// the API is willing to page through.
var ErrMaxResultsExceeded = errors.New("shortcut: maximum results exceeded")

// APIError is returned for any non-2xx response.
type APIError struct {
	StatusCode int
	Code       string
	Body       string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("Shortcut API returned %d (%s): %s", e.StatusCode, e.Code, e.Body)
	}
	return fmt.Sprintf("Shortcut API returned %d: %s", e.StatusCode, e.Body)
}

func (e *APIError) Is(target error) bool {
	return target == ErrMaxResultsExceeded && e.Code == maxResultsExceededCode
}

type Client struct {
	baseURL    string
	token      string
	pageSize   int
	maxPages   int
	httpClient *http.Client
	logf       func(string, ...any)
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.httpClient = c }
}

func WithPageSize(n int) Option {
	return func(cl *Client) { cl.pageSize = n }
}

func WithMaxPages(n int) Option {
	return func(cl *Client) {
		if n > 0 {
			cl.maxPages = n
		}
	}
}

func WithLogger(logf func(string, ...any)) Option {
	return func(cl *Client) { cl.logf = logf }
}

func NewClient(baseURL, token string, opts ...Option) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		pageSize:   DefaultPageSize,
		maxPages:   DefaultMaxPages,
		httpClient: http.DefaultClient,
		logf:       log.Printf,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SearchStories runs a story search and follows the "next" cursor for at most
// maxPages pages. Results beyond that are silently left out. Any failure
// discards what was collected so far.
func (c *Client) SearchStories(ctx context.Context, query string) ([]domain.Item, error) {
	var items []domain.Item
	err := c.search(ctx, "stories", query, true, func(body []byte) (string, int, error) {
		var page searchResponse[storyResponse]
		if err := json.Unmarshal(body, &page); err != nil {
			return "", 0, err
		}
		for _, s := range page.Data {
			items = append(items, s.toItem())
		}
		return page.Next, len(page.Data), nil
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (c *Client) SearchEpics(ctx context.Context, query string) ([]domain.Epic, error) {
	var epics []domain.Epic
	err := c.search(ctx, "epics", query, false, func(body []byte) (string, int, error) {
		var page searchResponse[epicResponse]
		if err := json.Unmarshal(body, &page); err != nil {
			return "", 0, err
		}
		for _, e := range page.Data {
			epics = append(epics, e.toEpic())
		}
		return page.Next, len(page.Data), nil
	})
	if err != nil {
		return nil, err
	}
	return epics, nil
}

func (c *Client) search(ctx context.Context, entity, query string, fullDetail bool, decode func([]byte) (string, int, error)) error {
	params := url.Values{}
	params.Set("query", query)
	if fullDetail {
		params.Set("detail", "full")
	}
	if c.pageSize > 0 {
		params.Set("page_size", strconv.Itoa(c.pageSize))
	}
	next := "/api/v3/search/" + entity + "?" + params.Encode()

	for page := 1; next != "" && page <= c.maxPages; page++ {
		body, err := c.get(ctx, next)
		if err != nil {
			return fmt.Errorf("searching %s query=%q page=%d: %w", entity, query, page, err)
		}
		cursor, found, err := decode(body)
		if err != nil {
			return fmt.Errorf("parsing %s page %d: %w", entity, page, err)
		}
		c.logf("shortcut search %s page=%d found=%d query=%q", entity, page, found, query)
		next = cursor
	}
	if next != "" {
		c.logf("shortcut search %s stopped at %d pages, results truncated query=%q", entity, c.maxPages, query)
	}
	return nil
}

// GetMemberName looks up a member's display name. A profile without a name
// yields domain.UnknownUser.
func (c *Client) GetMemberName(ctx context.Context, memberID string) (string, error) {
	body, err := c.get(ctx, "/api/v3/members/"+url.PathEscape(memberID))
	if err != nil {
		return "", err
	}
	var member memberResponse
	if err := json.Unmarshal(body, &member); err != nil {
		return "", fmt.Errorf("parsing member %s: %w", memberID, err)
	}
	if member.Profile.Name == nil {
		return domain.UnknownUser, nil
	}
	return *member.Profile.Name, nil
}

func (c *Client) get(ctx context.Context, pathOrURL string) ([]byte, error) {
	reqURL, err := c.resolve(pathOrURL)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Shortcut-Token", c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
		var parsed errorResponse
		if json.Unmarshal(body, &parsed) == nil {
			apiErr.Code = parsed.Error
		}
		return nil, apiErr
	}
	return body, nil
}

// resolve turns a path or cursor into a URL on the configured API host. An
// absolute URL pointing at any other host is rebased onto baseURL so the
// token is only ever sent to the API.
func (c *Client) resolve(pathOrURL string) (string, error) {
	if !strings.HasPrefix(pathOrURL, "http://") && !strings.HasPrefix(pathOrURL, "https://") {
		return c.baseURL + pathOrURL, nil
	}
	u, err := url.Parse(pathOrURL)
	if err != nil {
		return "", fmt.Errorf("parsing next url: %w", err)
	}
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("parsing base url: %w", err)
	}
	if u.Scheme == base.Scheme && u.Host == base.Host {
		return pathOrURL, nil
	}
	c.logf("shortcut next url host=%s differs from base host=%s, rebasing", u.Host, base.Host)
	return c.baseURL + u.RequestURI(), nil
}
