package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/notesapp/notes/pkg/domain"
)

// DefaultBaseURL is used when no API URL is configured.
const DefaultBaseURL = "http://localhost:5000/api"

// Operation names carried in RequestError.Op.
const (
	OpLogin  = "login"
	OpSignup = "signup"
	OpList   = "list"
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
)

var defaultMessages = map[string]string{
	OpLogin:  MsgLoginFailed,
	OpSignup: MsgSignupFailed,
	OpList:   MsgFetchFailed,
	OpCreate: MsgCreateFailed,
	OpUpdate: MsgUpdateFailed,
	OpDelete: MsgDeleteFailed,
}

// Client is the notes API client. It holds no credentials; each
// authenticated call takes the bearer token explicitly.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// New creates a new API client. An empty baseURL means DefaultBaseURL.
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// --- Auth ---

// Login exchanges credentials for a session token.
func (c *Client) Login(ctx context.Context, creds domain.Credentials) (*domain.AuthResponse, error) {
	creds.Name = ""
	var resp domain.AuthResponse
	if err := c.doRequest(ctx, OpLogin, http.MethodPost, "/auth/login", "", creds, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Signup registers a new account and returns its session token.
func (c *Client) Signup(ctx context.Context, creds domain.Credentials) (*domain.AuthResponse, error) {
	var resp domain.AuthResponse
	if err := c.doRequest(ctx, OpSignup, http.MethodPost, "/auth/signup", "", creds, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// --- Notes ---

// ListNotes fetches every note owned by the token's user.
func (c *Client) ListNotes(ctx context.Context, token string) ([]domain.Note, error) {
	var notes []domain.Note
	if err := c.doRequest(ctx, OpList, http.MethodGet, "/notes", token, nil, &notes); err != nil {
		return nil, err
	}
	if notes == nil {
		notes = []domain.Note{}
	}
	return notes, nil
}

// CreateNote creates a note and returns the server's copy.
func (c *Client) CreateNote(ctx context.Context, token string, in domain.NoteInput) (*domain.Note, error) {
	var created domain.Note
	if err := c.doRequest(ctx, OpCreate, http.MethodPost, "/notes", token, in, &created); err != nil {
		return nil, err
	}
	if created.ID == "" {
		return nil, missingID(OpCreate)
	}
	return &created, nil
}

// UpdateNote replaces the title and content of note id.
func (c *Client) UpdateNote(ctx context.Context, token, id string, in domain.NoteInput) (*domain.Note, error) {
	var updated domain.Note
	if err := c.doRequest(ctx, OpUpdate, http.MethodPut, "/notes/"+url.PathEscape(id), token, in, &updated); err != nil {
		return nil, err
	}
	if updated.ID == "" {
		return nil, missingID(OpUpdate)
	}
	return &updated, nil
}

// DeleteNote deletes note id.
func (c *Client) DeleteNote(ctx context.Context, token, id string) error {
	return c.doRequest(ctx, OpDelete, http.MethodDelete, "/notes/"+url.PathEscape(id), token, nil, nil)
}

// missingID reports a decoded note without an id, e.g. a null or {} body.
func missingID(op string) error {
	return &RequestError{Op: op, Kind: KindDecode, Message: defaultMessages[op], Err: ErrMissingID}
}

func (c *Client) doRequest(ctx context.Context, op, method, path, token string, body any, out any) error {
	fail := func(kind ErrorKind, status int, msg string, err error) error {
		if msg == "" {
			msg = defaultMessages[op]
		}
		return &RequestError{Op: op, Kind: kind, StatusCode: status, Message: msg, Err: err}
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fail(KindTransport, 0, "", fmt.Errorf("marshal body: %w", err))
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fail(KindTransport, 0, "", fmt.Errorf("create request: %w", err))
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	reqID := uuid.NewString()
	req.Header.Set("X-Request-ID", reqID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("request failed", "op", op, "method", method, "path", path, "request_id", reqID, "err", err)
		return fail(KindTransport, 0, "", fmt.Errorf("do request: %w", err))
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	c.logger.Debug("request",
		"op", op,
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"request_id", reqID,
		"duration", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // 1 MB max error body
		if readErr != nil {
			return fail(KindResponse, resp.StatusCode, "", fmt.Errorf("read error body: %w", readErr))
		}
		return fail(KindResponse, resp.StatusCode, apiMessage(respBody), nil)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fail(KindDecode, 0, "", fmt.Errorf("decode response: %w", err))
		}
	}
	return nil
}

// apiMessage pulls a human message from a JSON error body. The API uses
// "message"; "error" is accepted as well.
func apiMessage(body []byte) string {
	var apiErr struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(body, &apiErr) != nil {
		return ""
	}
	if m := strings.TrimSpace(apiErr.Message); m != "" {
		return m
	}
	return strings.TrimSpace(apiErr.Error)
}
