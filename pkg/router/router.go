// Package router holds the shell's screen state machine and session state.
// All mutations go through named transitions; everything else reads
// snapshots.
package router

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sw33tLie/appshell/pkg/api"
	"github.com/sw33tLie/appshell/pkg/config"
	"github.com/sw33tLie/appshell/pkg/platforms"
)

// Screen is one of the four top level screens.
type Screen string

const (
	Splash     Screen = "Splash"
	Onboarding Screen = "Onboarding"
	Login      Screen = "Login"
	Main       Screen = "Main"
)

// ErrInvalidTransition is returned when a transition does not start from
// the screen it requires.
var ErrInvalidTransition = errors.New("invalid screen transition")

// Session is the in-memory session state. It is never persisted.
type Session struct {
	HasValidToken          bool
	HasCompletedOnboarding bool
}

// Snapshot is a read-only copy of the router state.
type Snapshot struct {
	Screen  Screen
	Session Session
	// URL is what the Main screen loads; empty on other screens.
	URL      string
	Tutorial []api.TutorialItem
	// PendingURL is a deep link queued while on Splash.
	PendingURL string
}

// Router owns the current screen and the session.
type Router struct {
	requireLogin bool
	mainURL      string
	log          platforms.Logger

	mu       sync.Mutex
	screen   Screen
	url      string
	pending  string
	tutorial []api.TutorialItem
	session  Session
	subs     []chan Snapshot
}

// New returns a router on Splash with an empty session.
func New(cfg config.Config, log platforms.Logger) *Router {
	if log == nil {
		log = platforms.NopLogger{}
	}
	return &Router{
		requireLogin: cfg.RequireLogin,
		mainURL:      cfg.MainURL,
		log:          log,
		screen:       Splash,
	}
}

// ApplyGate hands over from Splash to the gating decision. A deep link
// queued during the splash takes precedence and forces Main.
func (r *Router) ApplyGate(screen Screen, tutorial []api.TutorialItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.screen != Splash {
		return fmt.Errorf("%w: gate applied on %s", ErrInvalidTransition, r.screen)
	}

	if r.pending != "" {
		r.log.Infof("[Router] Splash finished, deep link overrides %s", screen)
		r.url = r.pending
		r.pending = ""
		r.setLocked(Main)
		return nil
	}

	switch screen {
	case Onboarding:
		if len(tutorial) == 0 {
			tutorial = api.DefaultTutorial()
		}
		r.tutorial = tutorial
	case Login, Main:
	default:
		return fmt.Errorf("%w: gate cannot target %q", ErrInvalidTransition, screen)
	}
	r.log.Infof("[Router] Splash finished. Next: %s", screen)
	r.setLocked(screen)
	return nil
}

// CompleteOnboarding records onboarding as done and moves on to Login or
// Main depending on whether login is required.
func (r *Router) CompleteOnboarding() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.screen != Onboarding {
		return fmt.Errorf("%w: onboarding completed on %s", ErrInvalidTransition, r.screen)
	}
	r.session.HasCompletedOnboarding = true
	r.tutorial = nil
	if r.requireLogin {
		r.setLocked(Login)
	} else {
		r.setLocked(Main)
	}
	return nil
}

// CompleteLogin records a valid token and moves to Main.
func (r *Router) CompleteLogin() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.screen != Login {
		return fmt.Errorf("%w: login completed on %s", ErrInvalidTransition, r.screen)
	}
	r.session.HasValidToken = true
	r.setLocked(Main)
	return nil
}

// ApplyDeepLink moves to Main with url. While the splash is still deciding
// the link is queued and applied by ApplyGate; it reports whether the
// screen changed now.
func (r *Router) ApplyDeepLink(url string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.screen == Splash {
		r.log.Infof("[Router] Deep link queued until splash finishes: %s", url)
		r.pending = url
		return false
	}
	r.url = url
	r.tutorial = nil
	r.setLocked(Main)
	return true
}

// Snapshot returns a copy of the current state.
func (r *Router) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

// Subscribe returns a channel receiving a snapshot after every screen
// change. Slow subscribers miss updates rather than block transitions.
func (r *Router) Subscribe(buffer int) <-chan Snapshot {
	ch := make(chan Snapshot, buffer)
	r.mu.Lock()
	r.subs = append(r.subs, ch)
	r.mu.Unlock()
	return ch
}

// HasValidToken implements gating.SessionChecker.
func (r *Router) HasValidToken(context.Context) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.session.HasValidToken, nil
}

// HasCompletedOnboarding implements gating.SessionChecker.
func (r *Router) HasCompletedOnboarding(context.Context) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.session.HasCompletedOnboarding, nil
}

func (r *Router) setLocked(screen Screen) {
	r.screen = screen
	snap := r.snapshotLocked()
	for _, ch := range r.subs {
		select {
		case ch <- snap:
		default:
		}
	}
}

func (r *Router) snapshotLocked() Snapshot {
	snap := Snapshot{
		Screen:     r.screen,
		Session:    r.session,
		PendingURL: r.pending,
	}
	if r.screen == Main {
		snap.URL = r.url
		if snap.URL == "" {
			snap.URL = r.mainURL
		}
	}
	if len(r.tutorial) > 0 {
		snap.Tutorial = append([]api.TutorialItem(nil), r.tutorial...)
	}
	return snap
}
