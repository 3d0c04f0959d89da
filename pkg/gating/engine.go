// Package gating runs the splash-time sequence that decides the first
// screen: an update gate followed by a joint fetch of session checks,
// tutorial content and a token exchange.
package gating

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/sw33tLie/appshell/pkg/api"
	"github.com/sw33tLie/appshell/pkg/config"
	"github.com/sw33tLie/appshell/pkg/platforms"
)

// ErrAlreadyRan is returned by every Run after the first.
var ErrAlreadyRan = errors.New("gating sequence already ran")

// SessionChecker reports the current session state.
type SessionChecker interface {
	HasValidToken(ctx context.Context) (bool, error)
	HasCompletedOnboarding(ctx context.Context) (bool, error)
}

// Result is the outcome of one gating sequence.
type Result struct {
	Update UpdateOutcome
	// Decision is nil unless Update is Proceed.
	Decision *Decision
	// Degraded collects checks that failed and were replaced by defaults.
	Degraded error
	Elapsed  time.Duration
}

// Option configures an Engine.
type Option func(*Engine)

func WithLogger(l platforms.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithPrompter sets who answers update prompts. Without one every update
// is deferred with "later".
func WithPrompter(p Prompter) Option {
	return func(e *Engine) { e.prompter = p }
}

// Engine runs the gating sequence once.
type Engine struct {
	cfg      config.Config
	backend  api.Backend
	session  SessionChecker
	host     platforms.Host
	prompter Prompter
	log      platforms.Logger

	ran atomic.Bool
}

// NewEngine builds an engine. The configuration is copied.
func NewEngine(cfg config.Config, backend api.Backend, session SessionChecker, host platforms.Host, opts ...Option) *Engine {
	e := &Engine{
		cfg:      cfg,
		backend:  backend,
		session:  session,
		host:     host,
		prompter: Always(ChoiceLater),
		log:      platforms.NopLogger{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run executes the sequence. The minimum splash duration starts together
// with the update check and is part of the joint fetch, so the sequence
// lasts max(min duration, slowest check) when it proceeds.
func (e *Engine) Run(ctx context.Context) (Result, error) {
	if !e.ran.CompareAndSwap(false, true) {
		return Result{}, ErrAlreadyRan
	}

	e.log.Infof("[Splash] Starting initialization...")
	start := time.Now()
	deadline := start.Add(e.cfg.SplashMinDuration)

	outcome := e.checkUpdate(ctx)
	if outcome != Proceed {
		e.log.Infof("[Splash] Halted at update gate: %s", outcome)
		return Result{Update: outcome, Elapsed: time.Since(start)}, nil
	}

	checks, degraded := e.fetch(ctx, deadline)
	decision := Decide(e.cfg, checks)

	elapsed := time.Since(start)
	e.log.Infof("[Splash] Initialization done in %s", elapsed.Round(time.Millisecond))
	e.log.Infof("[Splash] Results - hasToken: %t, onboarded: %t, next: %s", checks.TokenValid, checks.Onboarded, decision.Screen)
	if degraded != nil {
		e.log.Warnf("[Splash] Continuing with defaults: %v", degraded)
	}

	return Result{
		Update:   Proceed,
		Decision: &decision,
		Degraded: degraded,
		Elapsed:  elapsed,
	}, nil
}

// fetch runs the five Parallel Fetch operations and waits for all of them.
// Failures are replaced by safe defaults and returned together.
func (e *Engine) fetch(ctx context.Context, deadline time.Time) (Checks, error) {
	var (
		checks Checks
		errs   *multierror.Error
		mu     sync.Mutex
		wg     sync.WaitGroup
	)
	fail := func(what string, err error) {
		mu.Lock()
		defer mu.Unlock()
		errs = multierror.Append(errs, fmt.Errorf("%s: %w", what, err))
	}

	wg.Add(5)
	go func() {
		defer wg.Done()
		time.Sleep(time.Until(deadline))
	}()
	go func() {
		defer wg.Done()
		ok, err := e.session.HasValidToken(ctx)
		if err != nil {
			fail("token check", err)
			return
		}
		mu.Lock()
		checks.TokenValid = ok
		mu.Unlock()
	}()
	go func() {
		defer wg.Done()
		ok, err := e.session.HasCompletedOnboarding(ctx)
		if err != nil {
			fail("onboarding check", err)
			return
		}
		mu.Lock()
		checks.Onboarded = ok
		mu.Unlock()
	}()
	go func() {
		defer wg.Done()
		items, err := e.backend.FetchTutorial(ctx)
		if err != nil {
			fail("tutorial fetch", err)
			return
		}
		mu.Lock()
		checks.Tutorial = items
		mu.Unlock()
	}()
	go func() {
		defer wg.Done()
		if err := e.backend.ExchangeToken(ctx, nil); err != nil {
			fail("token exchange", err)
		}
	}()
	wg.Wait()

	return checks, errs.ErrorOrNil()
}
