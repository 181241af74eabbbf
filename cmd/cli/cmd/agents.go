package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"shieldhive/pkg/api"
)

var agentsCmd = &cobra.Command{
	Use:   "agents",
	Short: "List registered agents",
	Long:  `List every registered agent with its masked IP, location, status, and last-seen time, most recently seen first.`,
	Run: func(cmd *cobra.Command, args []string) {
		client := NewHiveClient(viper.GetString("url"), viper.GetString("key"))

		resp, err := client.ListAgents()
		if err != nil {
			cmd.Printf("Failed to list agents: %v\n", err)
			return
		}

		printAgents(cmd, resp)
	},
}

func printAgents(cmd *cobra.Command, resp *api.AgentsResponse) {
	cmd.Printf("%sRegistered agents: %d%s\n", colorBold, resp.Count, colorReset)
	cmd.Println("──────────────────────────────")

	for _, agent := range resp.Agents {
		cmd.Printf("%s %s%s%s\n", agentStatusIcon(agent.Status), colorBold, agent.AgentID, colorReset)
		cmd.Printf("  %sAddress:%s   %s\n", colorDim, colorReset, agent.IPAddress)
		cmd.Printf("  %sLocation:%s  %s\n", colorDim, colorReset, agent.Location)
		cmd.Printf("  %sScore:%s     %d\n", colorDim, colorReset, agent.ThreatScore)
		cmd.Printf("  %sLast seen:%s %s\n", colorDim, colorReset, agent.LastSeen)
	}
}

func agentStatusIcon(status string) string {
	switch status {
	case "Online":
		return colorGreen + "●" + colorReset
	case "Offline":
		return colorRed + "○" + colorReset
	default:
		return "•"
	}
}

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorBold   = "\033[1m"
	colorDim    = "\033[2m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
)

func init() {
	rootCmd.AddCommand(agentsCmd)
}
