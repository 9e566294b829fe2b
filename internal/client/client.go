// Package client talks to the timer daemon's HTTP API.
package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"pomodoro/timer/internal/model"
	"pomodoro/timer/internal/service"
)

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func New(baseURL, token string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// APIError is an error response from the daemon.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (%d %s)", e.Message, e.Status, e.Code)
}

type stateEnvelope struct {
	State service.StateView `json:"state"`
}

func (c *Client) State(ctx context.Context) (*service.StateView, error) {
	return c.state(ctx, http.MethodGet, "/api/timer/state", nil)
}

func (c *Client) Start(ctx context.Context) (*service.StateView, error) {
	return c.state(ctx, http.MethodPost, "/api/timer/start", nil)
}

func (c *Client) Stop(ctx context.Context) (*service.StateView, error) {
	return c.state(ctx, http.MethodPost, "/api/timer/stop", nil)
}

func (c *Client) Reset(ctx context.Context) (*service.StateView, error) {
	return c.state(ctx, http.MethodPost, "/api/timer/reset", nil)
}

func (c *Client) SetMode(ctx context.Context, mode string) (*service.StateView, error) {
	return c.state(ctx, http.MethodPost, "/api/timer/mode", map[string]string{"mode": mode})
}

func (c *Client) SetPhase(ctx context.Context, phase string) (*service.StateView, error) {
	return c.state(ctx, http.MethodPost, "/api/timer/phase", map[string]string{"phase": phase})
}

func (c *Client) state(ctx context.Context, method, path string, body interface{}) (*service.StateView, error) {
	var out stateEnvelope
	if err := c.do(ctx, method, path, body, &out); err != nil {
		return nil, err
	}
	return &out.State, nil
}

func (c *Client) History(ctx context.Context, limit int) ([]model.SessionRecord, error) {
	var out struct {
		Sessions []model.SessionRecord `json:"sessions"`
	}
	path := "/api/sessions?" + url.Values{"limit": {strconv.Itoa(limit)}}.Encode()
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Sessions, nil
}

func (c *Client) Stats(ctx context.Context) (*service.StatsView, error) {
	var out service.StatsView
	if err := c.do(ctx, http.MethodGet, "/api/stats", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Tasks(ctx context.Context) ([]model.TaskGroup, error) {
	var out struct {
		Tasks []model.TaskGroup `json:"tasks"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/tasks", nil, &out); err != nil {
		return nil, err
	}
	return out.Tasks, nil
}

type taskEnvelope struct {
	Task model.Task `json:"task"`
}

func (c *Client) CreateTask(ctx context.Context, name string, parentID *string) (*model.Task, error) {
	var out taskEnvelope
	body := map[string]interface{}{"name": name}
	if parentID != nil {
		body["parentId"] = *parentID
	}
	if err := c.do(ctx, http.MethodPost, "/api/tasks", body, &out); err != nil {
		return nil, err
	}
	return &out.Task, nil
}

func (c *Client) RenameTask(ctx context.Context, id, name string) (*model.Task, error) {
	var out taskEnvelope
	if err := c.do(ctx, http.MethodPut, "/api/tasks/"+url.PathEscape(id), map[string]string{"name": name}, &out); err != nil {
		return nil, err
	}
	return &out.Task, nil
}

func (c *Client) AdvanceTask(ctx context.Context, id string) (*model.Task, error) {
	var out taskEnvelope
	if err := c.do(ctx, http.MethodPost, "/api/tasks/"+url.PathEscape(id)+"/advance", nil, &out); err != nil {
		return nil, err
	}
	return &out.Task, nil
}

func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/tasks/"+url.PathEscape(id), nil, nil)
}

// Login exchanges the owner password for a bearer token.
func (c *Client) Login(ctx context.Context, password string) (*service.AuthResult, error) {
	var out service.AuthResult
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", map[string]string{"password": password}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var envelope struct {
			Error APIError `json:"error"`
		}
		apiErr := &envelope.Error
		if jsonErr := json.Unmarshal(raw, &envelope); jsonErr != nil || apiErr.Code == "" {
			apiErr.Code = "http_error"
			apiErr.Message = strings.TrimSpace(string(raw))
			if apiErr.Message == "" {
				apiErr.Message = http.StatusText(resp.StatusCode)
			}
		}
		apiErr.Status = resp.StatusCode
		return apiErr
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
