package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"wasteland-server/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Println(version.String())
	},
}
