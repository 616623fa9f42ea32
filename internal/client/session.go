// Package client is the Go counterpart of the web front end's session
// handling: it keeps the token pair in memory and on disk, attaches the
// bearer token to every call, refreshes the access token once on 401 and
// treats logout as a purely local operation.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/omkarr10/Vagabond/internal/dto"
)

// APIError is a non-2xx response from the server
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d %s: %s", e.Status, e.Code, e.Message)
}

// ErrNotLoggedIn is returned by calls that need a session when none exists
var ErrNotLoggedIn = errors.New("not logged in")

// Config holds client configuration
type Config struct {
	BaseURL   string
	TokenFile string
	Timeout   time.Duration
}

// Session is an authenticated connection to the server. It is safe for
// concurrent use; a 401 seen by many goroutines at once triggers exactly one
// refresh call.
type Session struct {
	baseURL string
	http    *http.Client // bearer-injecting transport
	plain   *http.Client // auth endpoints, no token handling
	store   *Store

	mu    sync.RWMutex
	creds *Credentials
}

// New creates a session. Saved credentials are loaded if present but not
// validated; call Restore to verify them against the server.
func New(cfg Config) (*Session, error) {
	store, err := NewStore(cfg.TokenFile)
	if err != nil {
		return nil, err
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 90 * time.Second
	}

	s := &Session{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		plain:   &http.Client{Timeout: timeout},
		store:   store,
	}
	s.http = &http.Client{
		Timeout:   timeout,
		Transport: newAuthTransport(nil, s),
	}

	creds, err := store.Load()
	if err != nil {
		return nil, err
	}
	s.creds = creds

	return s, nil
}

// accessToken implements tokenSource
func (s *Session) accessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.creds == nil {
		return ""
	}
	return s.creds.AccessToken
}

// refresh implements tokenSource. It exchanges the stored refresh token for
// a new access token and persists the result. The refresh token itself is
// not rotated by the server.
func (s *Session) refresh() error {
	s.mu.RLock()
	var refreshToken string
	if s.creds != nil {
		refreshToken = s.creds.RefreshToken
	}
	s.mu.RUnlock()

	if refreshToken == "" {
		return ErrNotLoggedIn
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var result dto.RefreshResponse
	err := s.call(ctx, s.plain, http.MethodPost, "/api/auth/refresh",
		dto.RefreshTokenRequest{RefreshToken: refreshToken}, &result)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.creds == nil {
		return ErrNotLoggedIn
	}
	s.creds.AccessToken = result.AccessToken
	return s.store.Save(s.creds)
}

// Register creates an account and starts a session with the issued tokens
func (s *Session) Register(ctx context.Context, username, email, password string) (*Profile, error) {
	var result dto.AuthResponse
	err := s.call(ctx, s.plain, http.MethodPost, "/api/auth/register",
		dto.RegisterRequest{Username: username, Email: email, Password: password}, &result)
	if err != nil {
		return nil, err
	}
	return s.adopt(&result)
}

// Login authenticates and starts a session with the issued tokens
func (s *Session) Login(ctx context.Context, username, password string) (*Profile, error) {
	var result dto.AuthResponse
	err := s.call(ctx, s.plain, http.MethodPost, "/api/auth/login",
		dto.LoginRequest{Username: username, Password: password}, &result)
	if err != nil {
		return nil, err
	}
	return s.adopt(&result)
}

func (s *Session) adopt(auth *dto.AuthResponse) (*Profile, error) {
	creds := &Credentials{
		AccessToken:  auth.AccessToken,
		RefreshToken: auth.RefreshToken,
		User: Profile{
			ID:       auth.User.ID,
			Username: auth.User.Username,
			Email:    auth.User.Email,
			Role:     auth.User.Role,
		},
	}

	s.mu.Lock()
	s.creds = creds
	err := s.store.Save(creds)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	profile := creds.User
	return &profile, nil
}

// Restore validates saved credentials against the server. It calls the
// profile endpoint, falls back to one refresh attempt on 401, and wipes the
// saved session when neither works. A nil profile with nil error means no
// usable session exists.
func (s *Session) Restore(ctx context.Context) (*Profile, error) {
	s.mu.RLock()
	loaded := s.creds != nil
	s.mu.RUnlock()
	if !loaded {
		return nil, nil
	}

	user, err := s.Me(ctx)
	if err == nil {
		return &Profile{ID: user.ID, Username: user.Username, Email: user.Email, Role: user.Role}, nil
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return nil, err
	}
	if apiErr.Status >= 500 {
		return nil, err
	}

	// The transport already burned its one refresh attempt; a 4xx here
	// means the stored session is dead.
	if err := s.Logout(); err != nil {
		return nil, err
	}
	return nil, nil
}

// Me fetches the authenticated user's profile
func (s *Session) Me(ctx context.Context) (*dto.UserResponse, error) {
	if s.accessToken() == "" {
		return nil, ErrNotLoggedIn
	}
	var result dto.UserResponse
	if err := s.call(ctx, s.http, http.MethodGet, "/api/auth/me", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Generate requests a new itinerary
func (s *Session) Generate(ctx context.Context, req *dto.GenerateItineraryRequest) (*dto.ItineraryResponse, error) {
	if s.accessToken() == "" {
		return nil, ErrNotLoggedIn
	}
	var result dto.ItineraryResponse
	if err := s.call(ctx, s.http, http.MethodPost, "/api/itineraries/generate", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Itineraries lists the user's itineraries, newest first
func (s *Session) Itineraries(ctx context.Context) ([]dto.ItineraryResponse, error) {
	if s.accessToken() == "" {
		return nil, ErrNotLoggedIn
	}
	var result []dto.ItineraryResponse
	if err := s.call(ctx, s.http, http.MethodGet, "/api/itineraries", nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// Itinerary fetches a single itinerary by ID
func (s *Session) Itinerary(ctx context.Context, id string) (*dto.ItineraryResponse, error) {
	if s.accessToken() == "" {
		return nil, ErrNotLoggedIn
	}
	var result dto.ItineraryResponse
	if err := s.call(ctx, s.http, http.MethodGet, "/api/itineraries/"+id, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// DeleteItinerary removes an itinerary by ID
func (s *Session) DeleteItinerary(ctx context.Context, id string) error {
	if s.accessToken() == "" {
		return ErrNotLoggedIn
	}
	return s.call(ctx, s.http, http.MethodDelete, "/api/itineraries/"+id, nil, nil)
}

// Logout discards the session locally. The server keeps no session state,
// so there is nothing to revoke; already-issued tokens simply age out.
func (s *Session) Logout() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds = nil
	return s.store.Clear()
}

// Close releases idle connections. The session can no longer be used.
func (s *Session) Close() {
	s.http.CloseIdleConnections()
	s.plain.CloseIdleConnections()
}

// Profile returns the cached profile from login time, nil when logged out
func (s *Session) Profile() *Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.creds == nil {
		return nil
	}
	profile := s.creds.User
	return &profile
}

type apiEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// call issues one JSON request and decodes the response envelope into out
func (s *Session) call(ctx context.Context, httpClient *http.Client, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var env apiEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	if resp.StatusCode >= 400 || !env.Success {
		apiErr := &APIError{Status: resp.StatusCode, Code: "UNKNOWN", Message: "request failed"}
		if env.Error != nil {
			apiErr.Code = env.Error.Code
			apiErr.Message = env.Error.Message
		}
		return apiErr
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode response data: %w", err)
		}
	}
	return nil
}
