package hub

import (
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
	"strings"
)

// ResolveURL turns an artifact link from the upload response (usually
// "/invoices/<name>.pdf") into an absolute URL on the endpoint.
func (c *Client) ResolveURL(link string) (string, error) {
	ref, err := url.Parse(link)
	if err != nil {
		return "", fmt.Errorf("parse link %q: %w", link, err)
	}
	if ref.IsAbs() {
		return ref.String(), nil
	}
	base := *c.base
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}
	// A root-relative link keeps any path prefix the endpoint was mounted under.
	ref.Path = strings.TrimPrefix(ref.Path, "/")
	return base.ResolveReference(ref).String(), nil
}

// OpenInBrowser resolves link and opens it in the user's default browser.
func (c *Client) OpenInBrowser(link string) error {
	u, err := c.ResolveURL(link)
	if err != nil {
		return err
	}
	return OpenBrowser(u)
}

func OpenBrowser(url string) error {
	var cmd string
	var args []string

	switch runtime.GOOS {
	case "darwin":
		cmd = "open"
		args = []string{url}
	case "linux":
		cmd = "xdg-open"
		args = []string{url}
	case "windows":
		cmd = "rundll32"
		args = []string{"url.dll,FileProtocolHandler", url}
	default:
		return fmt.Errorf("unsupported platform %s", runtime.GOOS)
	}

	// Validate URL scheme to prevent command injection
	lower := strings.ToLower(url)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		return fmt.Errorf("refusing to open non-HTTP URL: %s", url)
	}

	return exec.Command(cmd, args...).Start()
}
