// Package navigation decides which page loads stay inside the Main screen.
package navigation

import (
	"net"
	"net/url"
	"strings"

	"github.com/weppos/publicsuffix-go/publicsuffix"
)

// Verdict is the outcome of a navigation check.
type Verdict struct {
	Allowed bool
	// PromptLeave is set for blocked loads; the user is asked whether to
	// leave the app.
	PromptLeave bool
	// Domain is the registrable domain of a blocked URL, for the prompt.
	Domain string
}

// Policy keeps navigation within the main URL and a set of allowed domains.
type Policy struct {
	mainURL string
	allowed []string
}

func NewPolicy(mainURL string, allowedDomains []string) *Policy {
	return &Policy{mainURL: mainURL, allowed: allowedDomains}
}

// Check decides whether target may load inside the webview. Allowed
// domains are matched as substrings of the whole URL.
func (p *Policy) Check(target string) Verdict {
	if target == p.mainURL || strings.HasPrefix(target, "about:blank") {
		return Verdict{Allowed: true}
	}
	for _, d := range p.allowed {
		if d != "" && strings.Contains(target, d) {
			return Verdict{Allowed: true}
		}
	}
	return Verdict{PromptLeave: true, Domain: registrableDomain(target)}
}

func registrableDomain(target string) string {
	u, err := url.Parse(target)
	if err != nil || u.Hostname() == "" {
		return ""
	}
	host := u.Hostname()
	if net.ParseIP(host) != nil {
		return host
	}
	domain, err := publicsuffix.Domain(host)
	if err != nil {
		return host
	}
	return domain
}
