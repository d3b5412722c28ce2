// Package browser launches the web dashboard in the user's browser.
package browser

import (
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
)

// launch starts the platform opener. Replaced in tests.
var launch = func(name string, args ...string) error {
	return exec.Command(name, args...).Start()
}

// Open opens rawURL in the user's default browser. Only http and https
// URLs are accepted.
func Open(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("browser.Open: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("browser.Open: unsupported scheme %q", u.Scheme)
	}
	target := u.String()

	switch runtime.GOOS {
	case "darwin":
		return launch("open", target)
	case "linux":
		return launch("xdg-open", target)
	case "windows":
		return launch("rundll32", "url.dll,FileProtocolHandler", target)
	default:
		return fmt.Errorf("browser.Open: unsupported OS: %s", runtime.GOOS)
	}
}
