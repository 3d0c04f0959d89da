package gating

import (
	"context"

	"github.com/sw33tLie/appshell/pkg/api"
)

// UpdateOutcome is the result of the update gate.
type UpdateOutcome int

const (
	// Proceed lets the gating sequence continue.
	Proceed UpdateOutcome = iota
	// Blocked halts the sequence: a mandatory update was declined.
	Blocked
	// DeferredToStore halts the sequence: the user went to the store.
	DeferredToStore
)

func (o UpdateOutcome) String() string {
	switch o {
	case Proceed:
		return "proceed"
	case Blocked:
		return "blocked"
	case DeferredToStore:
		return "deferred-to-store"
	default:
		return "unknown"
	}
}

// UpdateChoice is the user's answer to the update prompt.
type UpdateChoice int

const (
	ChoiceLater UpdateChoice = iota
	ChoiceStore
)

// Prompter asks the user what to do about an available update. An error
// means the prompt was dismissed without an answer.
type Prompter interface {
	PromptUpdate(ctx context.Context, info api.UpdateInfo) (UpdateChoice, error)
}

// PrompterFunc adapts a function to Prompter.
type PrompterFunc func(ctx context.Context, info api.UpdateInfo) (UpdateChoice, error)

func (f PrompterFunc) PromptUpdate(ctx context.Context, info api.UpdateInfo) (UpdateChoice, error) {
	return f(ctx, info)
}

// Always answers every prompt with choice.
func Always(choice UpdateChoice) Prompter {
	return PrompterFunc(func(context.Context, api.UpdateInfo) (UpdateChoice, error) {
		return choice, nil
	})
}

const (
	defaultUpdateMessage = "A new version is available."
	mandatoryNotice      = "This update is required."
)

// checkUpdate runs the update gate. It fails open: any error fetching or
// parsing the version proceeds.
func (e *Engine) checkUpdate(ctx context.Context) UpdateOutcome {
	e.log.Infof("[Splash] Checking for updates...")
	info, err := e.backend.CheckUpdate(ctx)
	if err != nil {
		e.log.Errorf("[Splash] Update check failed, continuing: %v", err)
		return Proceed
	}
	if info.LatestVersion == e.cfg.AppVersion {
		return Proceed
	}

	if info.Message == "" {
		info.Message = defaultUpdateMessage
	}
	e.log.Infof("[Splash] Update available: %s -> %s (force=%t)", e.cfg.AppVersion, info.LatestVersion, info.ForceUpdate)

	choice, err := e.prompter.PromptUpdate(ctx, info)
	if err != nil {
		// A dismissed prompt counts as "later".
		e.log.Debugf("[Splash] Update prompt dismissed: %v", err)
		choice = ChoiceLater
	}

	switch choice {
	case ChoiceStore:
		if info.StoreURL == "" {
			e.log.Warnf("[Splash] No store URL in update info")
		} else if err := e.host.OpenURL(ctx, info.StoreURL); err != nil {
			e.log.Errorf("[Splash] Could not open store: %v", err)
		}
		return DeferredToStore
	default:
		if info.ForceUpdate {
			e.host.Notify("Update", mandatoryNotice)
			return Blocked
		}
		return Proceed
	}
}
