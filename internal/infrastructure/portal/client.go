package portal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/lakowalski/luxmedhunter/internal/domain/entity"
	"github.com/lakowalski/luxmedhunter/internal/domain/gateway"
	"github.com/lakowalski/luxmedhunter/pkg/jwt"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	loginPath          = "/Account/LogIn"
	forgeryTokenPath   = "/NewPortal/security/getforgerytoken"
	termsSearchPath    = "/NewPortal/terms/index"
	lockTermPath       = "/NewPortal/reservation/lockterm"
	confirmPath        = "/NewPortal/reservation/confirm"
	changeTermPath     = "/NewPortal/reservation/changeterm"
	recentSearchesPath = "/NewPortal/terms/recentSearchParameters"

	// used when the portal token carries no readable expiry
	fallbackSessionTTL = 10 * time.Minute
)

// Config tunes the LuxMed portal client
type Config struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	LanguageID        int
	AllowRescheduling bool
}

// Client is the LuxMed patient portal implementation of gateway.PortalClient.
// Every outgoing request waits on one shared rate limiter.
type Client struct {
	cfg      Config
	limiter  *rate.Limiter
	log      *logrus.Logger
	location *time.Location
	now      func() time.Time

	mu      sync.Mutex
	clients map[string]*http.Client
	terms   map[string]map[string]term
}

func NewClient(cfg Config, log *logrus.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 1
	}
	if cfg.Burst < 1 {
		cfg.Burst = 1
	}
	if cfg.LanguageID == 0 {
		cfg.LanguageID = 10
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return &Client{
		cfg:      cfg,
		limiter:  rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		log:      log,
		location: time.Local,
		now:      time.Now,
		clients:  make(map[string]*http.Client),
		terms:    make(map[string]map[string]term),
	}
}

var _ gateway.PortalClient = (*Client)(nil)

type tokenResponse struct {
	Token string `json:"token"`
}

// Authenticate logs in, fetches the XSRF token and reads the bearer token expiry
func (c *Client) Authenticate(ctx context.Context, credentials entity.Credentials) (*gateway.Session, error) {
	c.log.Infof("Logging in to portal as %s", credentials.UserID)

	session := &gateway.Session{UserID: credentials.UserID}
	payload := map[string]string{
		"login":    credentials.UserID,
		"password": credentials.Password,
	}

	var login tokenResponse
	if err := c.do(ctx, session, http.MethodPost, loginPath, nil, payload, &login); err != nil {
		var se *statusError
		if errors.As(err, &se) && se.code >= 400 && se.code < 500 {
			return nil, fmt.Errorf("%w: login rejected with status %d", entity.ErrAuthenticationFailed, se.code)
		}
		return nil, err
	}
	if login.Token == "" {
		return nil, fmt.Errorf("%w: token not received", entity.ErrAuthenticationFailed)
	}
	session.Token = login.Token

	var xsrf tokenResponse
	if err := c.do(ctx, session, http.MethodGet, forgeryTokenPath, nil, nil, &xsrf); err != nil {
		return nil, err
	}
	if xsrf.Token == "" {
		return nil, fmt.Errorf("%w: XSRF token not received", entity.ErrPortalUnavailable)
	}
	session.XSRFToken = xsrf.Token

	expiresAt, err := jwt.ExpirationTime(login.Token)
	if err != nil {
		c.log.Warnf("Cannot read portal token expiry, assuming %s: %+v", fallbackSessionTTL, err)
		expiresAt = c.now().Add(fallbackSessionTTL)
	}
	session.ExpiresAt = expiresAt

	c.log.Infof("Login successful, token expires at %s", expiresAt.Format(time.RFC3339))
	return session, nil
}

type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status code: %d", e.code)
}

// do sends one JSON request and decodes the JSON answer into out.
// Failures are classified with the entity sentinel errors.
func (c *Client) do(ctx context.Context, session *gateway.Session, method, path string, query url.Values, body, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: rate limiter: %v", entity.ErrPortalUnavailable, err)
	}

	u := c.cfg.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if session.Token != "" {
		req.Header.Set("Authorization-Token", "Bearer "+session.Token)
	}
	if session.XSRFToken != "" {
		req.Header.Set("XSRF-TOKEN", session.XSRFToken)
	}

	resp, err := c.httpClient(session.UserID).Do(req)
	if err != nil {
		c.log.Warnf("Portal request %s %s failed: %+v", method, path, err)
		return fmt.Errorf("%w: %s %s: %v", entity.ErrPortalUnavailable, method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read %s: %v", entity.ErrPortalUnavailable, path, err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		if path != loginPath {
			return fmt.Errorf("%w: %s returned %d", entity.ErrAuthenticationFailed, path, resp.StatusCode)
		}
		return &statusError{code: resp.StatusCode, body: string(data)}
	case resp.StatusCode == http.StatusConflict && path != loginPath:
		return fmt.Errorf("%w: %s returned %d", entity.ErrBookingConflict, path, resp.StatusCode)
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: %s returned %d", entity.ErrPortalUnavailable, path, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		if path == loginPath {
			return &statusError{code: resp.StatusCode, body: string(data)}
		}
		return fmt.Errorf("%w: %s returned %d", entity.ErrPortalUnavailable, path, resp.StatusCode)
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: decode %s: %v", entity.ErrPortalUnavailable, path, err)
	}
	return nil
}

// httpClient keeps one cookie jar per portal account
func (c *Client) httpClient(userID string) *http.Client {
	c.mu.Lock()
	defer c.mu.Unlock()

	if hc, ok := c.clients[userID]; ok {
		return hc
	}
	jar, _ := cookiejar.New(nil)
	hc := &http.Client{Timeout: c.cfg.Timeout, Jar: jar}
	c.clients[userID] = hc
	return hc
}
