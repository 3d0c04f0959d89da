// Package host provides a platform host for running the shell from a
// terminal: notices and shares are printed, URLs open in the system browser.
package host

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"

	"github.com/pkg/browser"

	"github.com/sw33tLie/appshell/pkg/platforms"
)

// ErrUnsupportedScheme is returned for URLs that are not http or https.
var ErrUnsupportedScheme = errors.New("unsupported URL scheme")

// Terminal is a platforms.Host backed by a terminal.
type Terminal struct {
	platform string
	// OpenBrowser opens URLs in the system browser; otherwise they are only printed.
	openBrowser bool

	mu  sync.Mutex
	out io.Writer
}

// NewTerminal returns a host that reports itself as platform and writes to out.
func NewTerminal(platform string, out io.Writer, openBrowser bool) *Terminal {
	return &Terminal{platform: platform, out: out, openBrowser: openBrowser}
}

func (t *Terminal) Name() string { return t.platform }

func (t *Terminal) OpenURL(_ context.Context, target string) error {
	u, err := url.Parse(target)
	if err != nil {
		return err
	}
	if scheme := strings.ToLower(u.Scheme); scheme != "http" && scheme != "https" {
		return fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}
	t.printf("Open: %s\n", target)
	if !t.openBrowser {
		return nil
	}
	return browser.OpenURL(target)
}

func (t *Terminal) Share(_ context.Context, c platforms.ShareContent) error {
	if c.URL != "" {
		t.printf("Share: %s (%s)\n", c.Message, c.URL)
	} else {
		t.printf("Share: %s\n", c.Message)
	}
	return nil
}

func (t *Terminal) Notify(title, message string) {
	t.printf("[%s] %s\n", title, message)
}

func (t *Terminal) printf(format string, args ...interface{}) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.out, format, args...)
}
