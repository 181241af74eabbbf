package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"shieldhive/pkg/api"
)

var threatsCmd = &cobra.Command{
	Use:   "threats",
	Short: "List recently reported threats",
	Long:  `List recently reported threat fingerprints with their report counts, last known scores, and analysis narratives.`,
	Run: func(cmd *cobra.Command, args []string) {
		client := NewHiveClient(viper.GetString("url"), viper.GetString("key"))

		resp, err := client.ListThreats()
		if err != nil {
			cmd.Printf("Failed to list threats: %v\n", err)
			return
		}

		printThreats(cmd, resp)
	},
}

func printThreats(cmd *cobra.Command, resp *api.ThreatsResponse) {
	cmd.Printf("%sTracked threats: %d%s\n", colorBold, resp.Count, colorReset)
	cmd.Println("──────────────────────────────")

	for _, t := range resp.Threats {
		cmd.Printf("%s %s%s%s %s(score %d, %d report(s))%s\n",
			scoreIcon(t.Score), colorBold, t.ThreatName, colorReset,
			colorDim, t.Score, t.ReportCount, colorReset)
		cmd.Printf("  %sHash:%s      %s\n", colorDim, colorReset, t.FileHash)
		if t.Reasons != "" {
			cmd.Printf("  %sReasons:%s   %s\n", colorDim, colorReset, t.Reasons)
		}
		cmd.Printf("  %sAnalysis:%s  %s\n", colorDim, colorReset, t.Analysis)
		cmd.Printf("  %sLast seen:%s %s\n", colorDim, colorReset, t.LastSeen)
	}
}

func scoreIcon(score int) string {
	switch {
	case score >= 70:
		return colorRed + "▲" + colorReset
	case score >= 40:
		return colorYellow + "△" + colorReset
	default:
		return colorCyan + "·" + colorReset
	}
}

func init() {
	rootCmd.AddCommand(threatsCmd)
}
