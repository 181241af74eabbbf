package cmd

import (
	"github.com/spf13/cobra"

	"shieldhive/internal/auth"
)

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate a new shared server key",
	Long:  `Generate a random 64-character hex key. Set it as HIVE_SERVER_KEY on the controller and distribute it to agents.`,
	Run: func(cmd *cobra.Command, args []string) {
		key, err := auth.GenerateKey()
		if err != nil {
			cmd.Printf("Failed to generate key: %v\n", err)
			return
		}
		cmd.Println(key)
	},
}

func init() {
	rootCmd.AddCommand(keygenCmd)
}
