package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"shieldhive/pkg/api"
)

var briefCmd = &cobra.Command{
	Use:   "brief",
	Short: "Show the current fleet posture",
	Long:  `Fetch the deterministic fleet brief: threat level, recommendation, and a one-line summary of agents and tracked threats.`,
	Run: func(cmd *cobra.Command, args []string) {
		client := NewHiveClient(viper.GetString("url"), viper.GetString("key"))

		resp, err := client.FleetBrief()
		if err != nil {
			cmd.Printf("Failed to fetch brief: %v\n", err)
			return
		}

		printBrief(cmd, resp)
	},
}

func printBrief(cmd *cobra.Command, brief *api.BriefResponse) {
	cmd.Printf("%sThreat level:%s %s\n", colorDim, colorReset, colorizeLevel(brief.ThreatLevel))
	cmd.Printf("%sSummary:%s      %s\n", colorDim, colorReset, brief.Summary)
	cmd.Printf("%sAction:%s       %s\n", colorDim, colorReset, brief.Recommendation)
	if brief.Error != "" {
		cmd.Printf("%sError:%s        %s%s%s\n", colorDim, colorReset, colorRed, brief.Error, colorReset)
	}
}

func colorizeLevel(level string) string {
	switch level {
	case "CRITICAL":
		return colorRed + colorBold + level + colorReset
	case "ELEVATED":
		return colorYellow + level + colorReset
	case "LOW":
		return colorCyan + level + colorReset
	case "NOMINAL":
		return colorGreen + level + colorReset
	default:
		return level
	}
}

func init() {
	rootCmd.AddCommand(briefCmd)
}
