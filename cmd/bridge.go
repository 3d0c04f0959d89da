package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/sw33tLie/appshell/internal/host"
	"github.com/sw33tLie/appshell/internal/utils"
	"github.com/sw33tLie/appshell/pkg/bridge"
)

var bridgeCmd = &cobra.Command{
	Use:   "bridge <message>",
	Short: "Dispatch one bridge message as if posted by web content",
	Example: `  appshell bridge '{"command":"SHARE","payload":{"message":"hello"}}'
  appshell bridge '{"type":"GET_DEVICE_TOKEN"}'`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		openBrowser, _ := cmd.Flags().GetBool("open-browser")
		cfg := loadConfig()

		d := bridge.NewDispatcher(host.NewTerminal(cfg.Platform, os.Stdout, openBrowser), evalSender(os.Stdout),
			bridge.WithLogger(utils.Log),
			bridge.WithDeviceToken(bridge.NewDeviceToken(cfg.Platform, "")),
		)
		d.Handle(context.Background(), []byte(args[0]))
		d.Wait()
	},
}

func init() {
	rootCmd.AddCommand(bridgeCmd)
	bridgeCmd.Flags().Bool("open-browser", false, "Open OPEN_BROWSER targets in the system browser")
}
