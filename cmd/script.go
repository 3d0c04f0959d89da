package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sw33tLie/appshell/pkg/bridge"
)

var scriptCmd = &cobra.Command{
	Use:   "script",
	Short: "Print the bridge script injected into web content",
	RunE: func(cmd *cobra.Command, args []string) error {
		endpoint, _ := cmd.Flags().GetString("endpoint")
		page, _ := cmd.Flags().GetString("page")

		post := bridge.ReactNativePost
		if endpoint != "" {
			post = bridge.FetchPost(endpoint)
		}
		script := bridge.InjectedScript(post)

		if page == "" {
			fmt.Println(script)
			return nil
		}

		f, err := os.Open(page)
		if err != nil {
			return err
		}
		defer f.Close()

		html, err := bridge.InjectScript(f, script)
		if err != nil {
			return err
		}
		fmt.Println(html)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scriptCmd)
	scriptCmd.Flags().String("endpoint", "", "Post messages to this HTTP path instead of the React Native channel")
	scriptCmd.Flags().String("page", "", "HTML file to inject the script into")
}
