// Package browser hands URLs to the desktop's default browser.
package browser

import (
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
)

// start launches the opener without waiting for it. Tests replace it.
var start = func(name string, args ...string) error {
	return exec.Command(name, args...).Start()
}

// Open opens an http or https URL in the user's default browser. Other
// schemes are refused so a server-supplied link cannot launch a file or
// custom handler.
func Open(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("browser.Open: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("browser.Open: refusing non-web URL %q", rawURL)
	}
	name, args, err := command(runtime.GOOS, u.String())
	if err != nil {
		return err
	}
	return start(name, args...)
}

func command(goos, target string) (string, []string, error) {
	switch goos {
	case "darwin":
		return "open", []string{target}, nil
	case "linux", "freebsd", "openbsd":
		return "xdg-open", []string{target}, nil
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", target}, nil
	default:
		return "", nil, fmt.Errorf("browser.Open: unsupported OS: %s", goos)
	}
}
