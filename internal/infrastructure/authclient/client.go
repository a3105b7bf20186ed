// Package authclient is the HTTP gateway to the external authentication
// service. It is the only package that talks to that service over the network.
package authclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/99minutos/account-service/internal/core/domain"
	"github.com/99minutos/account-service/internal/core/ports"
	"github.com/99minutos/account-service/internal/core/session"
	"github.com/99minutos/account-service/internal/metrics"
	"github.com/99minutos/account-service/pkg/logger"
)

const (
	HeaderRequestingApp = "X-Requesting-App"
	HeaderRequestID     = "X-Request-Id"

	defaultTimeout = 10 * time.Second
	maxBodyBytes   = 1 << 20
)

const (
	opRegister       = "register"
	opConfirm        = "confirm"
	opUnlock         = "unlock"
	opReset          = "reset"
	opUpdatePassword = "update_password"
	opGenerateToken  = "generate_token"
	opRefresh        = "refresh"
	opGetAccount     = "get_account"
)

var bcryptHash = regexp.MustCompile(`^\$2[abxy]?\$\d{2}\$[./A-Za-z0-9]{53}$`)

// Config holds the connection settings for the auth service.
type Config struct {
	BaseURL string
	AppID   string
	Timeout time.Duration
}

// Client implements ports.AuthGateway over HTTP/JSON.
type Client struct {
	baseURL    string
	appID      string
	httpClient *http.Client
	validate   *validator.Validate
	log        zerolog.Logger
}

var _ ports.AuthGateway = (*Client)(nil)

func New(cfg Config, log zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		appID:      cfg.AppID,
		httpClient: &http.Client{Timeout: timeout},
		validate:   validator.New(),
		log:        log.With().Str("component", "authclient").Logger(),
	}
}

// ── Wire bodies ───────────────────────────────────────────────────────────────

type registerBody struct {
	Login    string `json:"login"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type codeBody struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type emailBody struct {
	Email string `json:"email"`
}

type passwordBody struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

type credentialsBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type errorBody struct {
	Type string `json:"type"`
}

// ── Operations ────────────────────────────────────────────────────────────────

func (c *Client) RegisterUser(ctx context.Context, in ports.RemoteRegistration) (domain.AuthOutcome, error) {
	if !c.validEmail(in.Email) {
		return c.shortCircuit(opRegister, domain.ResultInvalidEmail), nil
	}
	if !validHash(in.Password) {
		return c.shortCircuit(opRegister, domain.ResultInvalidPassword), nil
	}
	return c.outcome(ctx, request{
		op:     opRegister,
		method: http.MethodPost,
		path:   "/auth/register",
		body:   registerBody{Login: in.Login, Email: in.Email, Password: in.Password},
	})
}

func (c *Client) ConfirmAccount(ctx context.Context, in domain.ConfirmationRequest) (domain.AuthOutcome, error) {
	if !c.validEmail(in.Email) {
		return c.shortCircuit(opConfirm, domain.ResultInvalidEmail), nil
	}
	return c.outcome(ctx, request{
		op:     opConfirm,
		method: http.MethodPost,
		path:   "/auth/confirm",
		body:   codeBody{Email: in.Email, Code: in.Code},
	})
}

func (c *Client) UnlockAccount(ctx context.Context, in domain.ConfirmationRequest) (domain.AuthOutcome, error) {
	if !c.validEmail(in.Email) {
		return c.shortCircuit(opUnlock, domain.ResultInvalidEmail), nil
	}
	return c.outcome(ctx, request{
		op:     opUnlock,
		method: http.MethodPatch,
		path:   "/auth/unlock",
		body:   codeBody{Email: in.Email, Code: in.Code},
	})
}

func (c *Client) ResetPassword(ctx context.Context, in domain.PasswordResetRequest) (domain.AuthOutcome, error) {
	if !c.validEmail(in.Email) {
		return c.shortCircuit(opReset, domain.ResultInvalidEmail), nil
	}
	return c.outcome(ctx, request{
		op:     opReset,
		method: http.MethodPost,
		path:   "/auth/reset",
		body:   emailBody{Email: in.Email},
	})
}

func (c *Client) UpdatePassword(ctx context.Context, bearer string, in domain.PasswordUpdateRequest) (domain.AuthOutcome, error) {
	if bearer == "" {
		return c.shortCircuit(opUpdatePassword, domain.ResultBadRequestInstance), nil
	}
	return c.outcome(ctx, request{
		op:     opUpdatePassword,
		method: http.MethodPatch,
		path:   "/auth/password",
		bearer: bearer,
		body:   passwordBody{OldPassword: in.OldPassword, NewPassword: in.NewPassword},
	})
}

func (c *Client) GenerateToken(ctx context.Context, in domain.AuthByEmailRequest) (*domain.TokenGrant, error) {
	if !c.validEmail(in.Email) {
		return &domain.TokenGrant{Outcome: c.shortCircuit(opGenerateToken, domain.ResultInvalidEmail)}, nil
	}
	return c.grant(ctx, request{
		op:     opGenerateToken,
		method: http.MethodPost,
		path:   "/auth/token",
		body:   credentialsBody{Email: in.Email, Password: in.Password},
	})
}

func (c *Client) RefreshAccess(ctx context.Context, refreshToken string) (*domain.TokenGrant, error) {
	if refreshToken == "" {
		return &domain.TokenGrant{Outcome: c.shortCircuit(opRefresh, domain.ResultBadRequestInstance)}, nil
	}
	return c.grant(ctx, request{
		op:     opRefresh,
		method: http.MethodPost,
		path:   "/auth/refresh",
		cookie: (&http.Cookie{Name: domain.CookieRefreshToken, Value: refreshToken}).String(),
	})
}

func (c *Client) GetAccount(ctx context.Context, login, email string) (*domain.RemoteAccount, error) {
	q := url.Values{}
	q.Set("login", login)
	q.Set("email", email)

	resp, err := c.do(ctx, request{
		op:     opGetAccount,
		method: http.MethodGet,
		path:   "/accounts",
		query:  q,
	})
	if err != nil {
		return nil, err
	}

	var account domain.RemoteAccount
	if err := json.Unmarshal(resp.body, &account); err != nil || account.ID == 0 {
		return nil, c.malformed(opGetAccount, err)
	}
	metrics.AuthRequestsTotal.WithLabelValues(opGetAccount, "ok").Inc()
	return &account, nil
}

// ── Plumbing ──────────────────────────────────────────────────────────────────

type request struct {
	op     string
	method string
	path   string
	query  url.Values
	body   any
	bearer string
	cookie string
}

type response struct {
	status int
	header http.Header
	body   []byte
}

// outcome performs the request and decodes an AuthOutcome body.
func (c *Client) outcome(ctx context.Context, r request) (domain.AuthOutcome, error) {
	resp, err := c.do(ctx, r)
	if err != nil {
		return domain.AuthOutcome{}, err
	}
	out, err := c.decodeOutcome(r.op, resp.body)
	if err != nil {
		return domain.AuthOutcome{}, err
	}
	metrics.AuthRequestsTotal.WithLabelValues(r.op, resultLabel(out)).Inc()
	return out, nil
}

// grant performs a token-issuing request. Session cookies are only read from
// successful outcomes and both must be present.
func (c *Client) grant(ctx context.Context, r request) (*domain.TokenGrant, error) {
	resp, err := c.do(ctx, r)
	if err != nil {
		return nil, err
	}
	out, err := c.decodeOutcome(r.op, resp.body)
	if err != nil {
		return nil, err
	}
	if !out.Success {
		metrics.AuthRequestsTotal.WithLabelValues(r.op, resultLabel(out)).Inc()
		return &domain.TokenGrant{Outcome: out}, nil
	}

	cookies, err := session.Extract(resp.header.Values("Set-Cookie"))
	if err == nil {
		err = session.ValidateRequired(cookies, domain.SessionCookieNames...)
	}
	if err != nil {
		label := "missing_cookie"
		if errors.Is(err, domain.ErrMalformedResponse) {
			label = "decode_error"
		}
		metrics.AuthRequestsTotal.WithLabelValues(r.op, label).Inc()
		c.log.Error().Err(err).Str("operation", r.op).Msg("auth service response lacks usable session cookies")
		return nil, fmt.Errorf("%s: %w", r.op, err)
	}

	metrics.AuthRequestsTotal.WithLabelValues(r.op, "ok").Inc()
	return &domain.TokenGrant{Outcome: out, Cookies: cookies}, nil
}

// do sends the request and returns the body of a 2xx response. Transport
// failures and non-2xx statuses are returned as errors.
func (c *Client) do(ctx context.Context, r request) (*response, error) {
	endpoint := c.baseURL + r.path
	if len(r.query) > 0 {
		endpoint += "?" + r.query.Encode()
	}

	var body io.Reader
	if r.body != nil {
		payload, err := json.Marshal(r.body)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, endpoint, body)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(HeaderRequestingApp, c.appID)
	requestID := logger.RequestID(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	req.Header.Set(HeaderRequestID, requestID)
	if r.bearer != "" {
		req.Header.Set("Authorization", "Bearer "+r.bearer)
	}
	if r.cookie != "" {
		req.Header.Set("Cookie", r.cookie)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.AuthRequestDuration.WithLabelValues(r.op).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.AuthRequestsTotal.WithLabelValues(r.op, "transport_error").Inc()
		c.log.Error().Err(err).Str("operation", r.op).Str(logger.FieldRequestID, requestID).Msg("auth service unreachable")
		return nil, fmt.Errorf("%s: %w: %w", r.op, domain.ErrAuthTransport, errors.WithStack(err))
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		metrics.AuthRequestsTotal.WithLabelValues(r.op, "transport_error").Inc()
		return nil, fmt.Errorf("%s: %w: %w", r.op, domain.ErrAuthTransport, errors.WithStack(err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var eb errorBody
		_ = json.Unmarshal(payload, &eb)
		metrics.AuthRequestsTotal.WithLabelValues(r.op, "status_error").Inc()
		c.log.Warn().
			Str("operation", r.op).
			Int("status", resp.StatusCode).
			Str("reason", eb.Type).
			Str(logger.FieldRequestID, requestID).
			Msg("auth service returned non-success status")
		return nil, &domain.RemoteStatusError{Operation: r.op, StatusCode: resp.StatusCode, Reason: eb.Type}
	}

	return &response{status: resp.StatusCode, header: resp.Header, body: payload}, nil
}

func (c *Client) decodeOutcome(op string, body []byte) (domain.AuthOutcome, error) {
	var raw struct {
		Success *bool                 `json:"success"`
		Type    domain.AuthResultType `json:"type"`
	}
	if err := json.Unmarshal(body, &raw); err != nil || raw.Success == nil {
		return domain.AuthOutcome{}, c.malformed(op, err)
	}
	return domain.AuthOutcome{Success: *raw.Success, Type: raw.Type}.Normalize(), nil
}

func (c *Client) malformed(op string, cause error) error {
	metrics.AuthRequestsTotal.WithLabelValues(op, "decode_error").Inc()
	c.log.Error().Err(cause).Str("operation", op).Msg("malformed auth service response")
	if cause == nil {
		return fmt.Errorf("%s: %w", op, domain.ErrMalformedResponse)
	}
	return fmt.Errorf("%s: %w: %w", op, domain.ErrMalformedResponse, cause)
}

func (c *Client) shortCircuit(op string, reason domain.AuthResultType) domain.AuthOutcome {
	metrics.AuthRequestsTotal.WithLabelValues(op, "short_circuit").Inc()
	return domain.Failed(reason)
}

func (c *Client) validEmail(email string) bool {
	return c.validate.Var(email, "required,email") == nil
}

func validHash(hash string) bool {
	if !bcryptHash.MatchString(hash) {
		return false
	}
	_, err := bcrypt.Cost([]byte(hash))
	return err == nil
}

func resultLabel(o domain.AuthOutcome) string {
	if o.Success {
		return "ok"
	}
	return "rejected"
}
