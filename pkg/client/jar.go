package client

import (
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"
	"time"

	"golang.org/x/net/publicsuffix"
)

// resettableJar is a cookie jar that can be emptied in place, so a logout does
// not have to swap the jar under an in-flight request. It also remembers the
// attributes of the cookies it was given, which cookiejar.Jar does not hand
// back, so they survive a save and reload.
type resettableJar struct {
	mu   sync.RWMutex
	jar  *cookiejar.Jar
	meta map[string]*http.Cookie
}

func newResettableJar() (*resettableJar, error) {
	j, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, err
	}
	return &resettableJar{jar: j, meta: make(map[string]*http.Cookie)}, nil
}

func (r *resettableJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jar.SetCookies(u, cookies)
	now := time.Now()
	for _, c := range cookies {
		if c.MaxAge < 0 || (!c.Expires.IsZero() && c.Expires.Before(now)) {
			delete(r.meta, c.Name)
			continue
		}
		cp := *c
		if cp.MaxAge > 0 {
			cp.Expires = now.Add(time.Duration(cp.MaxAge) * time.Second)
			cp.MaxAge = 0
		}
		r.meta[c.Name] = &cp
	}
}

func (r *resettableJar) Cookies(u *url.URL) []*http.Cookie {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.jar.Cookies(u)
}

// snapshot returns the cookies the jar would send to u, with the path,
// expiry and flags they were set with.
func (r *resettableJar) snapshot(u *url.URL) []*http.Cookie {
	r.mu.RLock()
	defer r.mu.RUnlock()
	live := r.jar.Cookies(u)
	out := make([]*http.Cookie, 0, len(live))
	for _, c := range live {
		if m, ok := r.meta[c.Name]; ok && m.Value == c.Value {
			cp := *m
			out = append(out, &cp)
			continue
		}
		out = append(out, &http.Cookie{Name: c.Name, Value: c.Value})
	}
	return out
}

func (r *resettableJar) reset() error {
	j, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.jar = j
	r.meta = make(map[string]*http.Cookie)
	r.mu.Unlock()
	return nil
}
