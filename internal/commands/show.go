package jtlsum

import (
	"github.com/spf13/cobra"
)

// showCmd represents the 'show' command group.
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show settings",
}

func init() {
	rootCmd.AddCommand(showCmd)
}
