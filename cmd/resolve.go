package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sw33tLie/appshell/pkg/deeplink"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <url>",
	Short: "Show where an activation URL would navigate",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		res, ok := deeplink.Resolve(args[0])
		if !ok {
			fmt.Println("ignored")
			return
		}
		fmt.Printf("Main: %s\n", res.URL)
		if res.Notice != "" {
			fmt.Printf("Notice: %s\n", res.Notice)
		}
	},
}

func init() {
	rootCmd.AddCommand(resolveCmd)
}
