package gating

import (
	"github.com/sw33tLie/appshell/pkg/api"
	"github.com/sw33tLie/appshell/pkg/config"
	"github.com/sw33tLie/appshell/pkg/router"
)

// Checks are the Parallel Fetch results routing depends on.
type Checks struct {
	TokenValid bool
	Onboarded  bool
	Tutorial   []api.TutorialItem
}

// Decision is the screen the splash hands over to.
type Decision struct {
	Screen router.Screen
	// Tutorial is set only for router.Onboarding and is never empty.
	Tutorial []api.TutorialItem
}

// Decide routes from the fetched checks. It is a pure function of its inputs.
func Decide(cfg config.Config, c Checks) Decision {
	switch {
	case cfg.ShowTutorial && !c.Onboarded:
		tutorial := c.Tutorial
		if len(tutorial) == 0 {
			tutorial = api.DefaultTutorial()
		}
		return Decision{Screen: router.Onboarding, Tutorial: tutorial}
	case !c.TokenValid && cfg.RequireLogin:
		return Decision{Screen: router.Login}
	default:
		return Decision{Screen: router.Main}
	}
}
