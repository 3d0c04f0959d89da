// Package console drives a running shell from line-oriented input, standing
// in for the screens and the webview: each line is a bridge message, a deep
// link, a navigation request or a screen action.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sw33tLie/appshell/pkg/api"
	"github.com/sw33tLie/appshell/pkg/bridge"
	"github.com/sw33tLie/appshell/pkg/deeplink"
	"github.com/sw33tLie/appshell/pkg/navigation"
	"github.com/sw33tLie/appshell/pkg/platforms"
	"github.com/sw33tLie/appshell/pkg/router"
)

const help = `Commands:
  {"command": ...}        post a bridge message from the web content
  link <url>              deliver an activation URL
  nav <url>               ask to load a URL inside the Main screen
  onboard                 finish onboarding
  login <email> <pass>    submit the login form
  state                   print the current screen and session
  quit                    exit`

// Console executes commands against a running shell.
type Console struct {
	Router     *router.Router
	Dispatcher *bridge.Dispatcher
	Policy     *navigation.Policy
	Backend    api.Backend
	Host       platforms.Host
	Out        io.Writer
	Log        platforms.Logger
}

// MaxLine bounds one input line. Longer lines are skipped.
const MaxLine = 1 << 20

var errLineTooLong = errors.New("line too long")

// Run executes lines from in until EOF, "quit" or ctx is done.
func (c *Console) Run(ctx context.Context, in io.Reader) error {
	r := bufio.NewReader(in)
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		line, err := readLine(r, MaxLine)
		if errors.Is(err, errLineTooLong) {
			c.Log.Warnf("[Console] Skipped a line over %d bytes", MaxLine)
			c.printf("line too long, skipped\n")
			continue
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if !c.Exec(ctx, line) {
			return nil
		}
	}
}

// readLine returns the next line without its terminator. A line over max
// bytes is consumed and reported as errLineTooLong.
func readLine(r *bufio.Reader, max int) (string, error) {
	var (
		buf     []byte
		tooLong bool
		started bool
	)
	for {
		chunk, isPrefix, err := r.ReadLine()
		if err == io.EOF && started {
			break
		}
		if err != nil {
			return "", err
		}
		started = true
		if !tooLong {
			if len(buf)+len(chunk) > max {
				tooLong, buf = true, nil
			} else {
				buf = append(buf, chunk...)
			}
		}
		if !isPrefix {
			break
		}
	}
	if tooLong {
		return "", errLineTooLong
	}
	return string(buf), nil
}

// Exec runs one line. It returns false when the console should stop.
func (c *Console) Exec(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return true
	}
	if strings.HasPrefix(line, "{") {
		c.Dispatcher.Handle(ctx, []byte(line))
		return true
	}

	fields := strings.Fields(line)
	switch fields[0] {
	case "link":
		if len(fields) < 2 {
			c.printf("usage: link <url>\n")
			return true
		}
		c.link(strings.TrimSpace(strings.TrimPrefix(line, "link")))
	case "nav":
		if len(fields) != 2 {
			c.printf("usage: nav <url>\n")
			return true
		}
		c.navigate(fields[1])
	case "onboard":
		if err := c.Router.CompleteOnboarding(); err != nil {
			c.printf("%v\n", err)
		}
	case "login":
		if len(fields) != 3 {
			c.printf("usage: login <email> <password>\n")
			return true
		}
		c.login(ctx, fields[1], fields[2])
	case "state":
		c.printState()
	case "help":
		c.printf("%s\n", help)
	case "quit", "exit":
		return false
	default:
		c.printf("unknown command %q, try \"help\"\n", fields[0])
	}
	return true
}

func (c *Console) link(raw string) {
	c.Log.Infof("[App] Deep link detected: %s", raw)
	res, ok := deeplink.Resolve(raw)
	if !ok {
		c.Log.Debugf("[App] Deep link ignored: %s", raw)
		return
	}
	if res.Notice != "" {
		c.Host.Notify("Deep Link", res.Notice)
	}
	if !c.Router.ApplyDeepLink(res.URL) {
		c.printf("Deep link queued until the splash finishes\n")
	}
}

func (c *Console) navigate(target string) {
	v := c.Policy.Check(target)
	switch {
	case v.Allowed:
		c.printf("Load: %s\n", target)
	case v.Domain != "":
		c.printf("Blocked: leave the app for %s?\n", v.Domain)
	default:
		c.printf("Blocked: leave the app for %s?\n", target)
	}
}

func (c *Console) login(ctx context.Context, email, password string) {
	if screen := c.Router.Snapshot().Screen; screen != router.Login {
		c.printf("not on the login screen (%s)\n", screen)
		return
	}
	if err := c.Backend.Login(ctx, email, password); err != nil {
		if errors.Is(err, api.ErrInvalidCredentials) {
			c.Host.Notify("Error", "Please enter your email and password.")
			return
		}
		c.Host.Notify("Error", "Login failed, please try again.")
		c.Log.Errorf("[Login] %v", err)
		return
	}
	c.Host.Notify("Login successful", "Welcome!")
	if err := c.Router.CompleteLogin(); err != nil {
		c.printf("%v\n", err)
		return
	}
	if err := c.Backend.ExchangeToken(ctx, api.LoginInfo{"email": email}); err != nil {
		c.Log.Warnf("[Login] Token exchange failed: %v", err)
	}
}

func (c *Console) printState() {
	snap := c.Router.Snapshot()
	c.printf("screen=%s token=%t onboarded=%t", snap.Screen, snap.Session.HasValidToken, snap.Session.HasCompletedOnboarding)
	if snap.URL != "" {
		c.printf(" url=%s", snap.URL)
	}
	if snap.PendingURL != "" {
		c.printf(" pending=%s", snap.PendingURL)
	}
	c.printf("\n")
}

func (c *Console) printf(format string, args ...interface{}) {
	fmt.Fprintf(c.Out, format, args...)
}
