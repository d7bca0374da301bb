// Package googletasks implements service.Backend on the user's default Google Tasks list.
package googletasks

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/option"
	tasks "google.golang.org/api/tasks/v1"

	"taskman/internal/backend/apierr"
	"taskman/internal/service"
)

const (
	// DefaultListID is the special ID for the default list.
	DefaultListID = "@default"

	// PageSize is the number of tasks per page.
	PageSize = 100

	// DefaultTimeout bounds every API call when no timeout is configured.
	DefaultTimeout = 10 * time.Second

	statusCompleted   = "completed"
	statusNeedsAction = "needsAction"
)

// Client implements service.Backend using the Google Tasks API.
// Login runs the browser flow; Register is not supported.
type Client struct {
	svc         *tasks.Service
	oauthConfig *oauth2.Config
	prompt      io.Writer
	timeout     time.Duration
}

// New creates a client that authenticates with the token held by store,
// refreshing it through oauthConfig. Login prints the consent URL to prompt.
func New(ctx context.Context, oauthConfig *oauth2.Config, store CredentialStore, prompt io.Writer, timeout time.Duration) (*Client, error) {
	src := &sessionSource{ctx: ctx, cfg: oauthConfig, store: store}
	httpClient := oauth2.NewClient(ctx, src)

	svc, err := tasks.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create tasks service: %w", err)
	}
	return newClient(svc, oauthConfig, prompt, timeout), nil
}

// NewWithHTTPClient creates a client with a custom HTTP client and endpoint (for testing).
func NewWithHTTPClient(ctx context.Context, httpClient *http.Client, endpoint string, timeout time.Duration) (*Client, error) {
	svc, err := tasks.NewService(ctx, option.WithHTTPClient(httpClient), option.WithEndpoint(endpoint))
	if err != nil {
		return nil, err
	}
	return newClient(svc, nil, io.Discard, timeout), nil
}

func newClient(svc *tasks.Service, oauthConfig *oauth2.Config, prompt io.Writer, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if prompt == nil {
		prompt = io.Discard
	}
	return &Client{svc: svc, oauthConfig: oauthConfig, prompt: prompt, timeout: timeout}
}

// List returns every task of the default list, completed and hidden ones included.
func (c *Client) List(ctx context.Context) ([]service.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	result := []service.Task{}
	err := c.svc.Tasks.List(DefaultListID).
		MaxResults(PageSize).
		ShowCompleted(true).
		ShowHidden(true).
		ShowDeleted(false).
		Pages(ctx, func(resp *tasks.Tasks) error {
			for _, item := range resp.Items {
				result = append(result, fromAPI(item))
			}
			return nil
		})
	if err != nil {
		return nil, apierr.Wrap("list tasks", err)
	}
	return result, nil
}

// Create inserts a task at the top of the default list.
func (c *Client) Create(ctx context.Context, title, description string) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	_, err := c.svc.Tasks.Insert(DefaultListID, &tasks.Task{
		Title:  title,
		Notes:  description,
		Status: statusNeedsAction,
	}).Context(ctx).Do()
	if err != nil {
		return apierr.Wrap("create task", err)
	}
	return nil
}

// Update replaces title, notes and status of the task.
func (c *Client) Update(ctx context.Context, t service.Task) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	_, err := c.svc.Tasks.Update(DefaultListID, t.ID, toAPI(t)).Context(ctx).Do()
	if err != nil {
		return apierr.Wrap("update task "+t.ID, err)
	}
	return nil
}

// Delete deletes a task.
func (c *Client) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.svc.Tasks.Delete(DefaultListID, id).Context(ctx).Do(); err != nil {
		return apierr.Wrap("delete task "+id, err)
	}
	return nil
}

// Login runs the Google consent flow. Google accounts have no password
// here, so creds is ignored.
func (c *Client) Login(ctx context.Context, _ service.Credentials) (*oauth2.Token, error) {
	if c.oauthConfig == nil {
		return nil, fmt.Errorf("login: %w", service.ErrUnsupported)
	}
	token, err := browserLogin(ctx, c.oauthConfig, c.prompt)
	if err != nil {
		return nil, fmt.Errorf("login: %w: %w", service.ErrUnauthorized, err)
	}
	return token, nil
}

// Register is not available: Google accounts are created by Google.
func (c *Client) Register(ctx context.Context, creds service.Credentials) error {
	return fmt.Errorf("register: %w", service.ErrUnsupported)
}

func fromAPI(item *tasks.Task) service.Task {
	return service.Task{
		ID:          item.Id,
		Title:       item.Title,
		Description: item.Notes,
		Completed:   item.Status == statusCompleted,
	}
}

func toAPI(t service.Task) *tasks.Task {
	item := &tasks.Task{
		Id:              t.ID,
		Title:           t.Title,
		Notes:           t.Description,
		Status:          statusNeedsAction,
		ForceSendFields: []string{"Notes"},
	}
	if t.Completed {
		item.Status = statusCompleted
	} else {
		// Reopening needs the completion date cleared.
		item.NullFields = []string{"Completed"}
	}
	return item
}

var _ service.Backend = (*Client)(nil)
