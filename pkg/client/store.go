package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// Store persists the session credentials (bearer token and cookies) between
// runs. The file is readable by the owner only.
type Store struct {
	path string
}

type storedSession struct {
	Token   string         `json:"token,omitempty"`
	Cookies []storedCookie `json:"cookies,omitempty"`
}

type storedCookie struct {
	Name     string     `json:"name"`
	Value    string     `json:"value"`
	Path     string     `json:"path,omitempty"`
	Expires  *time.Time `json:"expires,omitempty"`
	Secure   bool       `json:"secure,omitempty"`
	HttpOnly bool       `json:"http_only,omitempty"`
}

// expired reports whether c carries an expiry that has passed.
func (c storedCookie) expired(now time.Time) bool {
	return c.Expires != nil && !c.Expires.After(now)
}

// NewStore returns a store backed by the file at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the persisted session. A missing file is not an error. Cookies
// whose expiry has passed are dropped.
func (s *Store) Load() (string, []*http.Cookie, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil, nil
	}
	if err != nil {
		return "", nil, fmt.Errorf("read session: %w", err)
	}
	var ss storedSession
	if err := json.Unmarshal(data, &ss); err != nil {
		return "", nil, fmt.Errorf("decode session: %w", err)
	}
	now := time.Now()
	cookies := make([]*http.Cookie, 0, len(ss.Cookies))
	for _, c := range ss.Cookies {
		if c.expired(now) {
			continue
		}
		hc := &http.Cookie{Name: c.Name, Value: c.Value, Path: c.Path, Secure: c.Secure, HttpOnly: c.HttpOnly}
		if hc.Path == "" {
			hc.Path = "/"
		}
		if c.Expires != nil {
			hc.Expires = *c.Expires
		}
		cookies = append(cookies, hc)
	}
	return ss.Token, cookies, nil
}

// Save overwrites the persisted session. Session cookies (no expiry) are
// kept until logout.
func (s *Store) Save(token string, cookies []*http.Cookie) error {
	ss := storedSession{Token: token}
	now := time.Now()
	for _, c := range cookies {
		sc := storedCookie{Name: c.Name, Value: c.Value, Path: c.Path, Secure: c.Secure, HttpOnly: c.HttpOnly}
		if !c.Expires.IsZero() {
			exp := c.Expires.UTC()
			sc.Expires = &exp
		}
		if sc.expired(now) {
			continue
		}
		ss.Cookies = append(ss.Cookies, sc)
	}
	data, err := json.MarshalIndent(ss, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// Clear removes the persisted session. Removing a missing file succeeds.
func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}

// Exists reports whether a persisted session file is present.
func (s *Store) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}
