package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "vaultd",
	Short: "vaultd is a multi-user secrets vault",
	Long: `A multi-user secrets vault. Credential entries are encrypted at rest,
can be shared between users at VIEW or EDIT level, and account onboarding
and resets run through emailed one-time tokens.`,
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
