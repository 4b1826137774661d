package erpnext

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// Envelope is the unwrapped backend response: Data carries the payload
// (the body's data field when present, otherwise the whole body),
// Message the backend's optional status text.
type Envelope struct {
	Data    any `json:"data"`
	Message any `json:"message,omitempty"`
}

// LoginResult describes a successful backend authentication.
type LoginResult struct {
	User      string `json:"user"`
	FullName  string `json:"full_name"`
	Message   string `json:"message"`
	HomePage  string `json:"home_page"`
	APIKey    string `json:"api_key,omitempty"`
	APISecret string `json:"api_secret,omitempty"`
}

// Client issues operations against one ERPNext instance. It keeps no
// state beyond configuration; every call round-trips.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient constructs a Client. Timeouts are enforced per request via
// context so the probe and auth paths can run shorter than CRUD.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:        cfg.withDefaults(),
		httpClient: &http.Client{},
		logger:     logger,
	}
}

// BaseURL exposes the configured backend address for health reporting.
func (c *Client) BaseURL() string {
	return c.cfg.BaseURL
}

// Do translates the operation, performs the backend call and unwraps
// the envelope. All failures come back as *Error.
func (c *Client) Do(ctx context.Context, op Operation) (Envelope, error) {
	plan, err := op.translate(c.cfg)
	if err != nil {
		return Envelope{}, err
	}
	return c.execute(ctx, plan, c.cfg.Timeout)
}

func (c *Client) execute(ctx context.Context, plan requestPlan, timeout time.Duration) (Envelope, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	target := c.cfg.BaseURL + plan.path
	if enc := plan.query.Encode(); enc != "" {
		target += "?" + enc
	}

	var payload io.Reader
	if plan.body != nil {
		raw, err := json.Marshal(plan.body)
		if err != nil {
			return Envelope{}, &Error{Message: fmt.Sprintf("encode request: %v", err)}
		}
		payload = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, plan.httpMethod, target, payload)
	if err != nil {
		return Envelope{}, &Error{Message: fmt.Sprintf("build request: %v", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	c.setAuthHeader(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("erpnext request failed",
			slog.String("method", plan.httpMethod),
			slog.String("path", plan.path),
			slog.Any("error", err))
		return Envelope{}, NormalizeError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Envelope{}, NormalizeError(err)
	}

	var body map[string]any
	if len(raw) > 0 {
		// Non-JSON bodies (proxy error pages and the like) fall back
		// to the raw text as the failure message.
		if err := json.Unmarshal(raw, &body); err != nil && resp.StatusCode >= 400 {
			return Envelope{}, &Error{Message: http.StatusText(resp.StatusCode), StatusCode: resp.StatusCode}
		}
	}

	if resp.StatusCode >= 400 {
		return Envelope{}, newBackendError(resp.StatusCode, body)
	}

	if body == nil {
		return Envelope{}, nil
	}
	env := Envelope{Message: body["message"]}
	if data, ok := body["data"]; ok && data != nil {
		env.Data = data
	} else {
		env.Data = body
	}
	return env, nil
}

// setAuthHeader injects the token header when a key pair is present,
// else falls back to basic auth, else leaves the request bare for the
// backend to reject.
func (c *Client) setAuthHeader(req *http.Request) {
	if c.cfg.APIKey != "" && c.cfg.APISecret != "" {
		req.Header.Set("Authorization", "token "+c.cfg.APIKey+":"+c.cfg.APISecret)
		return
	}
	if c.cfg.Username != "" && c.cfg.Password != "" {
		cred := base64.StdEncoding.EncodeToString([]byte(c.cfg.Username + ":" + c.cfg.Password))
		req.Header.Set("Authorization", "Basic "+cred)
	}
}

// ListParams narrows a get_list call.
type ListParams struct {
	Filters         map[string]any
	Fields          []string
	LimitStart      int
	LimitPageLength int
	OrderBy         string
}

// GetList fetches a page of documents for a doctype.
func (c *Client) GetList(ctx context.Context, doctype string, params ListParams) ([]map[string]any, error) {
	if params.LimitPageLength <= 0 {
		params.LimitPageLength = 20
	}
	if params.OrderBy == "" {
		params.OrderBy = "modified desc"
	}
	env, err := c.Do(ctx, Operation{
		Doctype:         doctype,
		Method:          VerbGetList,
		Filters:         params.Filters,
		Fields:          params.Fields,
		LimitStart:      intPtr(params.LimitStart),
		LimitPageLength: intPtr(params.LimitPageLength),
		OrderBy:         params.OrderBy,
	})
	if err != nil {
		return nil, err
	}
	return toRecords(env.Data), nil
}

// GetDoc fetches a single document, nil when the backend has none.
func (c *Client) GetDoc(ctx context.Context, doctype, name string, fields []string) (map[string]any, error) {
	env, err := c.Do(ctx, Operation{Doctype: doctype, Method: VerbGetDoc, Name: name, Fields: fields})
	if err != nil {
		return nil, err
	}
	rec, _ := env.Data.(map[string]any)
	return rec, nil
}

// Create inserts a document; data is forwarded verbatim.
func (c *Client) Create(ctx context.Context, doctype string, data map[string]any) (map[string]any, error) {
	env, err := c.Do(ctx, Operation{Doctype: doctype, Method: VerbCreate, Data: data})
	if err != nil {
		return nil, err
	}
	rec, _ := env.Data.(map[string]any)
	return rec, nil
}

// Update modifies an existing document.
func (c *Client) Update(ctx context.Context, doctype, name string, data map[string]any) (map[string]any, error) {
	env, err := c.Do(ctx, Operation{Doctype: doctype, Method: VerbUpdate, Name: name, Data: data})
	if err != nil {
		return nil, err
	}
	rec, _ := env.Data.(map[string]any)
	return rec, nil
}

// Delete removes a document by name.
func (c *Client) Delete(ctx context.Context, doctype, name string) error {
	_, err := c.Do(ctx, Operation{Doctype: doctype, Method: VerbDelete, Name: name})
	return err
}

// GetCount returns the number of documents matching the filters.
func (c *Client) GetCount(ctx context.Context, doctype string, filters map[string]any) (int, error) {
	env, err := c.Do(ctx, Operation{Doctype: doctype, Method: VerbGetCount, Filters: filters})
	if err != nil {
		return 0, err
	}
	if n, ok := env.Data.(float64); ok {
		return int(n), nil
	}
	if m, ok := env.Message.(float64); ok {
		return int(m), nil
	}
	return 0, nil
}

// CallMethod invokes an arbitrary whitelisted backend method.
func (c *Client) CallMethod(ctx context.Context, method string, args map[string]any) (any, error) {
	env, err := c.Do(ctx, Operation{Method: VerbCallMethod, MethodName: method, Args: args})
	if err != nil {
		return nil, err
	}
	return env.Data, nil
}

// Search runs the backend link search for a doctype. Link search
// responses carry their hits under the message key, so the data field
// is only consulted when it actually holds a list.
func (c *Client) Search(ctx context.Context, doctype, query string, filters map[string]any) ([]map[string]any, error) {
	env, err := c.Do(ctx, Operation{Doctype: doctype, Method: VerbSearch, Query: query, Filters: filters})
	if err != nil {
		return nil, err
	}
	if _, ok := env.Data.([]any); ok {
		return toRecords(env.Data), nil
	}
	return toRecords(env.Message), nil
}

// Ping probes backend reachability with the short probe timeout.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.execute(ctx, requestPlan{httpMethod: http.MethodGet, path: "/api/method/ping", query: url.Values{}}, c.cfg.ProbeTimeout)
	return err
}

// Login validates credentials against the backend. With a configured
// API key pair the pair is validated via get_logged_user and handed to
// the session; otherwise the username/password login method is used.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	if c.cfg.APIKey != "" && c.cfg.APISecret != "" {
		env, err := c.execute(ctx, requestPlan{
			httpMethod: http.MethodPost,
			path:       "/api/method/frappe.auth.get_logged_user",
			query:      url.Values{},
			body:       map[string]any{},
		}, c.cfg.AuthTimeout)
		if err != nil {
			return nil, err
		}
		fullName := username
		if info, ok := env.Data.(map[string]any); ok {
			if fn, ok := info["full_name"].(string); ok && fn != "" {
				fullName = fn
			}
		}
		return &LoginResult{
			User:      username,
			FullName:  fullName,
			Message:   "Login successful",
			HomePage:  "/app",
			APIKey:    c.cfg.APIKey,
			APISecret: c.cfg.APISecret,
		}, nil
	}

	env, err := c.execute(ctx, requestPlan{
		httpMethod: http.MethodPost,
		path:       "/api/method/login",
		query:      url.Values{},
		body:       map[string]any{"usr": username, "pwd": password},
	}, c.cfg.AuthTimeout)
	if err != nil {
		return nil, err
	}

	body, _ := env.Data.(map[string]any)
	msg, _ := env.Message.(string)
	if msg == "" {
		if m, ok := body["message"].(string); ok {
			msg = m
		}
	}
	if msg != "Logged In" {
		return nil, &Error{Message: "Invalid credentials", StatusCode: http.StatusUnauthorized}
	}
	result := &LoginResult{User: username, FullName: username, Message: msg, HomePage: "/app"}
	if fn, ok := body["full_name"].(string); ok && fn != "" {
		result.FullName = fn
	}
	if hp, ok := body["home_page"].(string); ok && hp != "" {
		result.HomePage = hp
	}
	return result, nil
}

// Logout notifies the backend. Callers treat it as best-effort.
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.CallMethod(ctx, "logout", nil)
	return err
}

// GetUserInfo fetches the backend User document, nil when unavailable.
func (c *Client) GetUserInfo(ctx context.Context, username string) map[string]any {
	doc, err := c.GetDoc(ctx, "User", username, nil)
	if err != nil {
		c.logger.Debug("user info lookup failed", slog.String("user", username), slog.Any("error", err))
		return nil
	}
	return doc
}

func toRecords(data any) []map[string]any {
	items, ok := data.([]any)
	if !ok {
		return []map[string]any{}
	}
	records := make([]map[string]any, 0, len(items))
	for _, item := range items {
		if rec, ok := item.(map[string]any); ok {
			records = append(records, rec)
		}
	}
	return records
}
