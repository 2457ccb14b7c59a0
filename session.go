package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

const backendHTTPTimeout = 30 * time.Second

var backendHTTPClient = &http.Client{
	Timeout: backendHTTPTimeout,
}

// ErrUnauthorized is returned when the backend rejects the bearer token.
var ErrUnauthorized = errors.New("backend: unauthorized")

type loginResponse struct {
	AccessToken string `json:"access_token"`
}

// Session holds the bearer token for the backend API. It is created by an
// explicit login and injected into the client; there is no ambient token
// lookup.
type Session struct {
	baseURL  string
	username string
	password string

	mu    sync.Mutex
	token string
}

// NewSession logs in to the backend and returns an authenticated session.
func NewSession(baseURL, username, password string) (*Session, error) {
	s := &Session{baseURL: baseURL, username: username, password: password}
	if err := s.login(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Session) login() error {
	payload, err := json.Marshal(map[string]string{
		"username": s.username,
		"password": s.password,
	})
	if err != nil {
		return fmt.Errorf("encoding login request: %w", err)
	}

	resp, err := backendHTTPClient.Post(s.baseURL+"/auth/login", "application/json", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("login request: %w", err)
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return fmt.Errorf("reading login response: %w", err)
	}
	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("login returned %d: %s", resp.StatusCode, string(body))
	}

	var lr loginResponse
	if err := json.Unmarshal(body, &lr); err != nil {
		return fmt.Errorf("parsing login response: %w", err)
	}
	if lr.AccessToken == "" {
		return fmt.Errorf("login response missing access_token")
	}

	s.mu.Lock()
	s.token = lr.AccessToken
	s.mu.Unlock()
	return nil
}

// Logout clears the token. Subsequent requests fail with ErrUnauthorized
// until Relogin succeeds.
func (s *Session) Logout() {
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()
}

// Relogin re-authenticates with the stored credentials. Used once after a
// 401 before surfacing the failure.
func (s *Session) Relogin() error {
	return s.login()
}

func (s *Session) bearer() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// do executes an authenticated request and returns the response body.
// Non-2xx statuses are errors; 401 maps to ErrUnauthorized.
func (s *Session) do(method, url string, payload any) ([]byte, error) {
	token := s.bearer()
	if token == "" {
		return nil, ErrUnauthorized
	}

	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encoding request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := backendHTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, ErrUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("backend returned %d: %s", resp.StatusCode, string(body))
	}
	return body, nil
}
