package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/Iron-Ham/rebuttal/internal/debate"
	"github.com/Iron-Ham/rebuttal/internal/errors"
	"github.com/Iron-Ham/rebuttal/internal/logging"
)

// DefaultTimeout bounds a single request when Options.Timeout is zero.
const DefaultTimeout = 15 * time.Second

// RequestIDHeader carries the per-request correlation ID.
const RequestIDHeader = "X-Request-ID"

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 4 << 20

// Options configures a Client.
type Options struct {
	BaseURL    string
	Token      string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *logging.Logger
}

// Client talks to the debate backend. It is safe for concurrent use.
type Client struct {
	baseURL  *url.URL
	token    string
	claims   *TokenClaims
	http     *http.Client
	logger   *logging.Logger
	validate *validator.Validate
}

var _ debate.Backend = (*Client)(nil)

// New creates a Client. A token that parses as a JWT and has already expired
// is rejected with errors.ErrUnauthorized; opaque tokens are passed through.
func New(opts Options) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, errors.NewValidationError(fmt.Sprintf("invalid API base URL %q", opts.BaseURL)).
			WithField("api.base_url")
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.NopLogger()
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	c := &Client{
		baseURL:  u,
		token:    opts.Token,
		http:     httpClient,
		logger:   logger,
		validate: newValidator(),
	}

	if opts.Token != "" {
		claims, err := ParseTokenClaims(opts.Token)
		switch {
		case err != nil:
			logger.Debug("token is not a JWT; sending as-is")
		case claims.Expired(time.Now()):
			return nil, errors.Wrapf(errors.ErrUnauthorized, "token expired at %s", claims.ExpiresAt.Format(time.RFC3339))
		default:
			c.claims = &claims
		}
	}
	return c, nil
}

// Claims returns the parsed token claims, if the token was a JWT.
func (c *Client) Claims() (TokenClaims, bool) {
	if c.claims == nil {
		return TokenClaims{}, false
	}
	return *c.claims, true
}

func assignmentPath(id string, suffix string) string {
	p := "/api/debates/assignments/" + url.PathEscape(id)
	if suffix != "" {
		p += "/" + suffix
	}
	return p
}

// GetAssignment fetches assignment metadata.
func (c *Client) GetAssignment(ctx context.Context, assignmentID string) (debate.Assignment, error) {
	body, err := c.do(ctx, http.MethodGet, assignmentPath(assignmentID, ""), nil)
	if err != nil {
		return debate.Assignment{}, missingAssignment(err, assignmentID)
	}
	a := normalizeAssignment(asObject(body))
	if a.ID == "" {
		a.ID = assignmentID
	}
	return a, nil
}

// GetProgress fetches, and on first access initializes, the student's progress.
func (c *Client) GetProgress(ctx context.Context, assignmentID string) (debate.Progress, error) {
	body, err := c.do(ctx, http.MethodGet, assignmentPath(assignmentID, "progress"), nil)
	if err != nil {
		return debate.Progress{}, missingAssignment(err, assignmentID)
	}
	return normalizeProgress(asObject(body))
}

// SelectPosition sends the student's side for the current debate.
func (c *Client) SelectPosition(ctx context.Context, assignmentID string, position debate.Position) error {
	req := positionRequest{Position: string(position)}
	if err := c.validateRequest(req); err != nil {
		return err
	}
	_, err := c.do(ctx, http.MethodPost, assignmentPath(assignmentID, "position"), req)
	return err
}

// SubmitPost sends a statement. A moderation hold is reported both as
// PostReceipt.Flagged and, for error responses, as errors.ErrContentFlagged.
func (c *Client) SubmitPost(ctx context.Context, assignmentID string, post debate.PostSubmission) (debate.PostReceipt, error) {
	req := postRequest{
		Content:   post.Content,
		WordCount: post.WordCount,
		Technique: string(post.Technique),
	}
	if err := c.validateRequest(req); err != nil {
		return debate.PostReceipt{}, err
	}
	body, err := c.do(ctx, http.MethodPost, assignmentPath(assignmentID, "posts"), req)
	if err != nil {
		return debate.PostReceipt{}, err
	}
	return normalizeReceipt(asObject(body)), nil
}

// SubmitChallenge sends a fallacy or appeal challenge against an AI post.
func (c *Client) SubmitChallenge(ctx context.Context, assignmentID string, ch debate.ChallengeSubmission) (debate.ChallengeResult, error) {
	req := challengeRequest{
		PostID:         ch.PostID,
		ChallengeType:  string(ch.Kind),
		ChallengeValue: ch.Key,
	}
	if err := c.validateRequest(req); err != nil {
		return debate.ChallengeResult{}, err
	}
	body, err := c.do(ctx, http.MethodPost, assignmentPath(assignmentID, "challenges"), req)
	if err != nil {
		return debate.ChallengeResult{}, err
	}
	return normalizeChallengeResult(asObject(body)), nil
}

// Advance moves past a completed debate.
func (c *Client) Advance(ctx context.Context, assignmentID string) (debate.AdvanceResult, error) {
	body, err := c.do(ctx, http.MethodPost, assignmentPath(assignmentID, "advance"), nil)
	if err != nil {
		return debate.AdvanceResult{}, err
	}
	return normalizeAdvance(asObject(body)), nil
}

// GetScore fetches the final assignment score.
func (c *Client) GetScore(ctx context.Context, assignmentID string) (debate.AssignmentScore, error) {
	body, err := c.do(ctx, http.MethodGet, assignmentPath(assignmentID, "score"), nil)
	if err != nil {
		return debate.AssignmentScore{}, err
	}
	s := normalizeScore(asObject(body))
	if s.AssignmentID == "" {
		s.AssignmentID = assignmentID
	}
	return s, nil
}

// missingAssignment turns a 404 on an assignment route into a NotFoundError
// that still unwraps to the APIError.
func missingAssignment(err error, assignmentID string) error {
	if !errors.Is(err, errors.ErrNotFound) {
		return err
	}
	return errors.NewNotFoundError("assignment", assignmentID).WithCause(err)
}

// do sends one request and decodes the JSON response. An empty 2xx body
// decodes to nil.
func (c *Client) do(ctx context.Context, method, path string, reqBody any) (any, error) {
	endpoint := method + " " + path
	requestID := uuid.NewString()
	logger := c.logger.With("endpoint", endpoint, "request_id", requestID)

	var body io.Reader
	if reqBody != nil {
		data, err := json.Marshal(reqBody)
		if err != nil {
			return nil, errors.Wrapf(err, "encode %s", endpoint)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, body)
	if err != nil {
		return nil, errors.Wrapf(err, "build %s", endpoint)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, requestID)
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, c.transportError(ctx, endpoint, requestID, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, c.transportError(ctx, endpoint, requestID, err)
	}
	logger.Debug("api response", "status", resp.StatusCode, "duration", time.Since(start).String())

	var decoded any
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, &decoded); err != nil && resp.StatusCode < 300 {
			return nil, errors.NewAPIError(resp.StatusCode, "unreadable response").
				WithEndpoint(endpoint).
				WithRequestID(requestID).
				WithCause(fmt.Errorf("%w: %v", errors.ErrBadResponse, err))
		}
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return decoded, nil
	}

	obj := asObject(decoded)
	msg := errorMessage(obj)
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	apiErr := errors.NewAPIError(resp.StatusCode, msg).
		WithEndpoint(endpoint).
		WithCode(errorCode(obj)).
		WithRequestID(requestID)
	if isFlaggedBody(obj) {
		apiErr = apiErr.WithCause(errors.ErrContentFlagged)
	}
	logger.Warn("api error", "status", resp.StatusCode, "message", msg)
	return nil, apiErr
}

// transportError classifies a failure that produced no HTTP response.
func (c *Client) transportError(ctx context.Context, endpoint, requestID string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return errors.NewTimeoutError(endpoint, c.http.Timeout).WithCause(ctxErr)
		}
		return fmt.Errorf("%w: %s: %w", errors.ErrCanceled, endpoint, ctxErr)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return errors.NewTimeoutError(endpoint, c.http.Timeout).WithCause(err)
	}
	return errors.NewAPIError(0, "request failed").
		WithEndpoint(endpoint).
		WithRequestID(requestID).
		WithCause(err)
}
