// Package rest implements service.Backend against the taskd HTTP API.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"taskman/internal/backend/apierr"
	"taskman/internal/service"
)

// DefaultTimeout bounds every API call when no timeout is configured.
const DefaultTimeout = 10 * time.Second

// Client implements service.Backend over HTTP+JSON.
type Client struct {
	baseURL string
	authed  *http.Client // adds the session bearer token
	anon    *http.Client // login and register
	timeout time.Duration
}

// New creates a client for the server at baseURL. The bearer credential is
// pulled from src on every task request.
func New(baseURL string, src oauth2.TokenSource, timeout time.Duration) *Client {
	return NewWithHTTPClient(baseURL, &http.Client{}, src, timeout)
}

// NewWithHTTPClient creates a client on top of a custom HTTP client (for testing).
func NewWithHTTPClient(baseURL string, base *http.Client, src oauth2.TokenSource, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		authed: &http.Client{
			Transport: &oauth2.Transport{Source: src, Base: base.Transport},
			Jar:       base.Jar,
		},
		anon:    base,
		timeout: timeout,
	}
}

// taskDTO is the wire form of a task.
type taskDTO struct {
	ID          int64  `json:"id,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
}

type credentialsDTO struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenDTO struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in,omitempty"`
}

// List returns all tasks of the logged-in user in server order.
func (c *Client) List(ctx context.Context) ([]service.Task, error) {
	var items []taskDTO
	if err := c.do(ctx, c.authed, http.MethodGet, "/tasks", nil, &items); err != nil {
		return nil, apierr.Wrap("list tasks", err)
	}

	result := make([]service.Task, 0, len(items))
	for _, item := range items {
		result = append(result, service.Task{
			ID:          strconv.FormatInt(item.ID, 10),
			Title:       item.Title,
			Description: item.Description,
			Completed:   item.Completed,
		})
	}
	return result, nil
}

// Create adds a task; the server assigns the id.
func (c *Client) Create(ctx context.Context, title, description string) error {
	body := taskDTO{Title: title, Description: description, Completed: false}
	if err := c.do(ctx, c.authed, http.MethodPost, "/tasks", body, nil); err != nil {
		return apierr.Wrap("create task", err)
	}
	return nil
}

// Update sends the full record of t.
func (c *Client) Update(ctx context.Context, t service.Task) error {
	body := taskDTO{Title: t.Title, Description: t.Description, Completed: t.Completed}
	if err := c.do(ctx, c.authed, http.MethodPut, taskPath(t.ID), body, nil); err != nil {
		return apierr.Wrap("update task", err)
	}
	return nil
}

// Delete removes the task with id.
func (c *Client) Delete(ctx context.Context, id string) error {
	if err := c.do(ctx, c.authed, http.MethodDelete, taskPath(id), nil, nil); err != nil {
		return apierr.Wrap("delete task", err)
	}
	return nil
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, creds service.Credentials) (*oauth2.Token, error) {
	var resp tokenDTO
	body := credentialsDTO{Username: creds.Username, Password: creds.Password}
	if err := c.do(ctx, c.anon, http.MethodPost, "/login", body, &resp); err != nil {
		return nil, apierr.Wrap("login", err)
	}
	if resp.Token == "" {
		return nil, apierr.Wrap("login", fmt.Errorf("%w: empty token in response", service.ErrUnauthorized))
	}

	token := &oauth2.Token{AccessToken: resp.Token, TokenType: "Bearer"}
	if resp.ExpiresIn > 0 {
		token.Expiry = time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second)
	}
	return token, nil
}

// Register creates a user account.
func (c *Client) Register(ctx context.Context, creds service.Credentials) error {
	body := credentialsDTO{Username: creds.Username, Password: creds.Password}
	if err := c.do(ctx, c.anon, http.MethodPost, "/register", body, nil); err != nil {
		return apierr.Wrap("register", err)
	}
	return nil
}

// do performs one JSON round trip bounded by the client timeout.
// in and out may be nil.
func (c *Client) do(ctx context.Context, hc *http.Client, method, path string, in, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := hc.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if err := apierr.Check(res); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func taskPath(id string) string {
	return "/tasks/" + url.PathEscape(id)
}

var _ service.Backend = (*Client)(nil)
