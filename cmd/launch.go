package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/sw33tLie/appshell/internal/console"
	"github.com/sw33tLie/appshell/internal/host"
	"github.com/sw33tLie/appshell/internal/utils"
	"github.com/sw33tLie/appshell/pkg/api"
	"github.com/sw33tLie/appshell/pkg/bridge"
	"github.com/sw33tLie/appshell/pkg/config"
	"github.com/sw33tLie/appshell/pkg/gating"
	"github.com/sw33tLie/appshell/pkg/navigation"
	"github.com/sw33tLie/appshell/pkg/router"
)

var launchCmd = &cobra.Command{
	Use:   "launch",
	Short: "Launch the shell and drive it from stdin",
	Long: `Launch runs the splash gating sequence and then reads commands from stdin.
Lines starting with "{" are bridge messages from the web content; type "help"
for the rest.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		link, _ := cmd.Flags().GetString("link")
		choice, _ := cmd.Flags().GetString("update-choice")
		openBrowser, _ := cmd.Flags().GetBool("open-browser")

		prompter, err := prompterFor(choice)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		return launch(ctx, loadConfig(), link, prompter, openBrowser)
	},
}

func init() {
	rootCmd.AddCommand(launchCmd)
	launchCmd.Flags().String("link", "", "Activation URL delivered at cold start (e.g. myapp://webview?url=https://...)")
	launchCmd.Flags().String("update-choice", "later", "Answer to the update prompt. Available: later, store")
	launchCmd.Flags().Bool("open-browser", false, "Open external URLs in the system browser")
}

func prompterFor(choice string) (gating.Prompter, error) {
	var answer gating.UpdateChoice
	switch choice {
	case "later":
		answer = gating.ChoiceLater
	case "store":
		answer = gating.ChoiceStore
	default:
		return nil, fmt.Errorf("unknown update choice %q", choice)
	}
	return gating.PrompterFunc(func(_ context.Context, info api.UpdateInfo) (gating.UpdateChoice, error) {
		fmt.Printf("Update available: %s (answering %q)\n", info.LatestVersion, choice)
		return answer, nil
	}), nil
}

// evalSender delivers replies the way a webview host does, by evaluating a
// script in the page. The terminal has no page, so the script is printed.
func evalSender(out io.Writer) bridge.Sender {
	return bridge.ScriptSender{Eval: func(_ context.Context, js string) error {
		_, err := fmt.Fprintf(out, "Eval: %s\n", js)
		return err
	}}
}

func newBackend(cfg config.Config) api.Backend {
	if cfg.UseMockAPI {
		return api.NewMockBackend()
	}
	return api.NewHTTPBackend(cfg.APIURL, cfg.AppToken, cfg.APIRetries)
}

func launch(ctx context.Context, cfg config.Config, link string, prompter gating.Prompter, openBrowser bool) error {
	out := os.Stdout
	h := host.NewTerminal(cfg.Platform, out, openBrowser)
	rt := router.New(cfg, utils.Log)
	backend := newBackend(cfg)

	dispatcher := bridge.NewDispatcher(h, evalSender(out),
		bridge.WithLogger(utils.Log),
		bridge.WithDeviceToken(bridge.NewDeviceToken(cfg.Platform, "")),
		bridge.WithLoginHook(func(token string) {
			utils.Log.Debugf("[Bridge] Login token received (%d bytes)", len(token))
		}),
	)
	defer dispatcher.Wait()

	c := &console.Console{
		Router:     rt,
		Dispatcher: dispatcher,
		Policy:     navigation.NewPolicy(cfg.MainURL, cfg.AllowedDomains),
		Backend:    backend,
		Host:       h,
		Out:        out,
		Log:        utils.Log,
	}

	screens := rt.Subscribe(8)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case snap := <-screens:
				if snap.Screen == router.Main {
					fmt.Fprintf(out, "Screen: %s (%s)\n", snap.Screen, snap.URL)
				} else {
					fmt.Fprintf(out, "Screen: %s\n", snap.Screen)
				}
			}
		}
	}()

	if link != "" {
		c.Exec(ctx, "link "+link)
	}

	engine := gating.NewEngine(cfg, backend, rt, h,
		gating.WithLogger(utils.Log),
		gating.WithPrompter(prompter),
	)
	go func() {
		res, err := engine.Run(ctx)
		if err != nil {
			utils.Log.Error(err)
			return
		}
		if res.Update != gating.Proceed {
			fmt.Fprintf(out, "Stopped at the update gate (%s)\n", res.Update)
			return
		}
		if err := rt.ApplyGate(res.Decision.Screen, res.Decision.Tutorial); err != nil {
			utils.Log.Error(err)
		}
	}()

	if cfg.NotificationDelay > 0 {
		timer := time.AfterFunc(cfg.NotificationDelay, func() {
			h.Notify(cfg.NotificationTitle, cfg.NotificationMessage)
		})
		defer timer.Stop()
	}

	return c.Run(ctx, os.Stdin)
}
