// Package api talks to the shell's backend: version checks, onboarding
// tutorial content, app-token exchange and login. Two implementations are
// provided, a mock with fixed delays and an HTTP client.
package api

import (
	"context"
	"errors"
)

var (
	// ErrInvalidCredentials is returned by Login for a rejected email/password pair.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnexpectedStatus wraps non-2xx backend responses.
	ErrUnexpectedStatus = errors.New("unexpected status code")
)

// UpdateInfo describes the latest published version of the app.
type UpdateInfo struct {
	LatestVersion string `json:"latestVersion"`
	ForceUpdate   bool   `json:"forceUpdate"`
	StoreURL      string `json:"storeUrl"`
	Message       string `json:"message,omitempty"`
}

// TutorialItem is one onboarding page.
type TutorialItem struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	ImageRef    string `json:"image"`
}

// LoginInfo is sent along with the app token on exchange. It is empty
// before the user has logged in.
type LoginInfo map[string]string

// Backend is the set of remote calls the shell makes.
type Backend interface {
	CheckUpdate(ctx context.Context) (UpdateInfo, error)
	FetchTutorial(ctx context.Context) ([]TutorialItem, error)
	ExchangeToken(ctx context.Context, info LoginInfo) error
	Login(ctx context.Context, email, password string) error
}

// DefaultTutorial is shown whenever the tutorial fetch yields nothing.
func DefaultTutorial() []TutorialItem {
	return []TutorialItem{
		{
			ID:          1,
			Title:       "Welcome!",
			Description: "Thank you for using our app.",
			ImageRef:    "https://images.unsplash.com/photo-1596464716127-f9a87ae52620?q=80&w=1000&auto=format&fit=crop",
		},
		{
			ID:          2,
			Title:       "Handy features",
			Description: "Enjoy the best of both the web and the app.",
			ImageRef:    "https://images.unsplash.com/photo-1551288049-bebda4e38f71?q=80&w=1000&auto=format&fit=crop",
		},
		{
			ID:          3,
			Title:       "Get started",
			Description: "Start right now!",
			ImageRef:    "https://images.unsplash.com/photo-1434030216411-0b793f4b4173?q=80&w=1000&auto=format&fit=crop",
		},
	}
}

// ValidateCredentials applies the only check the login form makes: both
// fields must be filled in.
func ValidateCredentials(email, password string) error {
	if email == "" || password == "" {
		return ErrInvalidCredentials
	}
	return nil
}
