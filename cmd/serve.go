package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/sw33tLie/appshell/internal/host"
	"github.com/sw33tLie/appshell/internal/server"
	"github.com/sw33tLie/appshell/internal/utils"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the backend API and a browser bridge demo",
	Long: `Serve answers the backend API used when api.use_mock is false, with the
bundled fixtures, and serves a demo page whose AppBridge posts to /bridge.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		listenAddr, _ := cmd.Flags().GetString("listen")
		openBrowser, _ := cmd.Flags().GetBool("open-browser")

		cfg := loadConfig()
		s, err := server.New(cfg.AppToken, host.NewTerminal(cfg.Platform, os.Stdout, openBrowser), utils.Log)
		if err != nil {
			return err
		}
		return s.Start(listenAddr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("listen", "127.0.0.1:8080", "HTTP listen address")
	serveCmd.Flags().Bool("open-browser", false, "Open URLs requested by web content in the system browser")
}
