package gateway

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
	"sync"
	"time"

	"github.com/inkwell-notes/inkwell/internal/client/models"
	"github.com/inkwell-notes/inkwell/internal/common"
	"github.com/inkwell-notes/inkwell/internal/logging"
)

// DefaultCallTimeout bounds every push and pull; expiry is classified as a
// transient network failure.
const DefaultCallTimeout = 10 * time.Second

// RESTGateway talks to the hosted database's row-level REST API
// (PostgREST-style filters: user_id=eq.X, updated_at=gt.N).
type RESTGateway struct {
	baseURL     string
	apiKey      string
	accessToken string
	httpClient  *http.Client
	callTimeout time.Duration
	log         logging.Logger

	capsOnce sync.Once
	caps     Capabilities
	capsErr  error
}

// Option customizes a RESTGateway.
type Option func(*RESTGateway)

// WithHTTPClient replaces the underlying HTTP client (used in tests).
func WithHTTPClient(c *http.Client) Option {
	return func(g *RESTGateway) { g.httpClient = c }
}

// WithCallTimeout overrides the per-call timeout.
func WithCallTimeout(d time.Duration) Option {
	return func(g *RESTGateway) { g.callTimeout = d }
}

// NewRESTGateway returns a gateway for the hosted database at baseURL.
// The access token authenticates row-level access for the current session.
func NewRESTGateway(baseURL, apiKey, accessToken string, log logging.Logger, opts ...Option) *RESTGateway {
	g := &RESTGateway{
		baseURL:     strings.TrimRight(baseURL, "/"),
		apiKey:      apiKey,
		accessToken: accessToken,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		callTimeout: DefaultCallTimeout,
		log:         log,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// restNote is the wire representation of a pulled note row.
type restNote struct {
	ID         string  `json:"id"`
	UserID     string  `json:"user_id"`
	Title      string  `json:"title"`
	Content    string  `json:"content"`
	FolderID   *string `json:"folder_id"`
	IsArchived *bool   `json:"is_archived"`
	CreatedAt  int64   `json:"created_at"`
	UpdatedAt  int64   `json:"updated_at"`
}

// pushBody builds the request body for an insert or update. Capability-gated
// columns are emitted only when the remote schema has them, but folder_id is
// always present when supported: an explicit null is what moves a note back
// to unfiled.
func pushBody(n models.Note, caps Capabilities) map[string]any {
	body := map[string]any{
		"user_id":    n.UserID,
		"title":      n.Title,
		"content":    n.Content,
		"created_at": n.CreatedAt,
		"updated_at": n.UpdatedAt,
	}
	if caps.Folders {
		body["folder_id"] = n.FolderID
	}
	if caps.ArchivedFilter {
		body["is_archived"] = n.IsArchived
	}
	return body
}

func (r restNote) toModel() models.Note {
	n := models.Note{
		ID:        r.ID,
		UserID:    r.UserID,
		Title:     r.Title,
		Content:   r.Content,
		FolderID:  r.FolderID,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	if r.IsArchived != nil {
		n.IsArchived = *r.IsArchived
	}
	return n
}

// PullSince returns remote rows with updated_at strictly after cursor,
// newest first, and the next cursor (the highest updated_at seen).
func (g *RESTGateway) PullSince(ctx context.Context, userID string, cursor int64) ([]models.Note, int64, error) {
	q := url.Values{}
	q.Set("user_id", "eq."+userID)
	q.Set("updated_at", fmt.Sprintf("gt.%d", cursor))
	q.Set("order", "updated_at.desc")

	body, _, err := g.do(ctx, http.MethodGet, "/rest/v1/notes?"+q.Encode(), nil, nil)
	if err != nil {
		return nil, cursor, err
	}

	var rows []restNote
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, cursor, fmt.Errorf("failed to decode pulled rows: %w", err)
	}

	next := cursor
	result := make([]models.Note, 0, len(rows))
	for _, row := range rows {
		n := row.toModel()
		if n.UpdatedAt > next {
			next = n.UpdatedAt
		}
		result = append(result, n)
	}
	return result, next, nil
}

// Push applies one operation and returns the canonical row. Delete returns
// (nil, nil) on success.
func (g *RESTGateway) Push(ctx context.Context, op models.Operation, n models.Note) (*models.Note, error) {
	caps, err := g.Capabilities(ctx)
	if err != nil {
		return nil, err
	}

	switch op {
	case models.OpCreate:
		return g.insert(ctx, n, caps)
	case models.OpUpdate, models.OpArchive, models.OpRestore:
		return g.update(ctx, n, caps)
	case models.OpDelete:
		return nil, g.remove(ctx, n)
	default:
		return nil, fmt.Errorf("unsupported operation %q", op)
	}
}

func (g *RESTGateway) insert(ctx context.Context, n models.Note, caps Capabilities) (*models.Note, error) {
	// The server assigns the canonical id; the client-generated one is
	// never sent upstream.
	body, _, err := g.do(ctx, http.MethodPost, "/rest/v1/notes", pushBody(n, caps),
		map[string]string{"Prefer": "return=representation"})
	if err != nil {
		return nil, err
	}
	return decodeSingleRow(body)
}

func (g *RESTGateway) update(ctx context.Context, n models.Note, caps Capabilities) (*models.Note, error) {
	q := url.Values{}
	q.Set("id", "eq."+n.ID)
	q.Set("user_id", "eq."+n.UserID)

	body, _, err := g.do(ctx, http.MethodPatch, "/rest/v1/notes?"+q.Encode(), pushBody(n, caps),
		map[string]string{"Prefer": "return=representation"})
	if err != nil {
		return nil, err
	}

	row, err := decodeSingleRow(body)
	if errors.Is(err, common.ErrNotFound) {
		// Zero matched rows: the entity was deleted remotely.
		return nil, ErrNotFound
	}
	return row, err
}

func (g *RESTGateway) remove(ctx context.Context, n models.Note) error {
	q := url.Values{}
	q.Set("id", "eq."+n.ID)
	q.Set("user_id", "eq."+n.UserID)

	body, _, err := g.do(ctx, http.MethodDelete, "/rest/v1/notes?"+q.Encode(), nil,
		map[string]string{"Prefer": "return=representation"})
	if err != nil {
		return err
	}

	if _, err := decodeSingleRow(body); errors.Is(err, common.ErrNotFound) {
		return ErrNotFound
	}
	return nil
}

// Capabilities probes the remote schema once per session. A column probe
// that the remote rejects with a schema error means the column is missing
// and the matching feature degrades client-side.
func (g *RESTGateway) Capabilities(ctx context.Context) (Capabilities, error) {
	g.capsOnce.Do(func() {
		caps := Capabilities{}

		ok, err := g.probeColumn(ctx, "is_archived")
		if err != nil {
			g.capsErr = err
			return
		}
		caps.ArchivedFilter = ok

		ok, err = g.probeColumn(ctx, "folder_id")
		if err != nil {
			g.capsErr = err
			return
		}
		caps.Folders = ok

		g.caps = caps
		if g.log != nil {
			g.log.Info(ctx, "negotiated remote capabilities",
				"archived_filter", caps.ArchivedFilter, "folders", caps.Folders)
		}
	})
	return g.caps, g.capsErr
}

func (g *RESTGateway) probeColumn(ctx context.Context, column string) (bool, error) {
	q := url.Values{}
	q.Set("select", column)
	q.Set("limit", "1")

	_, status, err := g.do(ctx, http.MethodGet, "/rest/v1/notes?"+q.Encode(), nil, nil)
	if err != nil {
		var rejected *RejectedError
		if errors.As(err, &rejected) {
			// Schema error: the column does not exist remotely.
			return false, nil
		}
		return false, err
	}
	return status == http.StatusOK || status == http.StatusPartialContent, nil
}

// Ping probes reachability. Any HTTP response counts as reachable; only
// transport failures mean the remote store cannot be reached.
func (g *RESTGateway) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, g.callTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, g.baseURL+"/rest/v1/", nil)
	if err != nil {
		return err
	}
	g.setHeaders(req)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return ErrNetworkUnavailable
	}
	defer resp.Body.Close()
	return nil
}

// do executes one bounded call and classifies the response into the gateway
// error taxonomy.
func (g *RESTGateway) do(ctx context.Context, method, path string, payload any, headers map[string]string) ([]byte, int, error) {
	ctx, cancel := context.WithTimeout(ctx, g.callTimeout)
	defer cancel()

	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, reqBody)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build request: %w", err)
	}
	g.setHeaders(req)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		// Transport errors and timeouts are transient by definition here.
		return nil, 0, ErrNetworkUnavailable
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, ErrNetworkUnavailable
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return body, resp.StatusCode, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, resp.StatusCode, ErrNotFound
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, resp.StatusCode, ErrNetworkUnavailable
	default:
		return nil, resp.StatusCode, &RejectedError{Reason: rejectReason(body, resp.StatusCode)}
	}
}

func (g *RESTGateway) setHeaders(req *http.Request) {
	req.Header.Set(common.APIKeyHeaderName, g.apiKey)
	req.Header.Set(common.AuthorizationHeaderName, "Bearer "+g.accessToken)
}

func decodeSingleRow(body []byte) (*models.Note, error) {
	var rows []restNote
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode row: %w", err)
	}
	if len(rows) == 0 {
		return nil, common.ErrNotFound
	}
	n := rows[0].toModel()
	return &n, nil
}

func rejectReason(body []byte, status int) string {
	var msg struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &msg); err == nil && msg.Message != "" {
		return msg.Message
	}
	return fmt.Sprintf("status %d", status)
}
