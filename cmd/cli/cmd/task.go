package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"shieldhive/pkg/api"
)

var (
	taskCommand string
	taskPayload string
)

var taskCmd = &cobra.Command{
	Use:   "task [agent_id]",
	Short: "Queue a command for an agent",
	Long:  `Queue a command for a specific agent. The job starts Pending and is delivered the next time the agent polls.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if taskCommand == "" {
			cmd.Println("A command is required. Use --command")
			return
		}

		client := NewHiveClient(viper.GetString("url"), viper.GetString("key"))

		resp, err := client.CreateJob(api.CreateJobRequest{
			AgentID: args[0],
			Command: taskCommand,
			Payload: taskPayload,
		})
		if err != nil {
			cmd.Printf("Failed to queue task: %v\n", err)
			return
		}

		cmd.Printf("%s✓%s Queued job %s%d%s for %s\n", colorGreen, colorReset, colorBold, resp.JobID, colorReset, args[0])
	},
}

func init() {
	taskCmd.Flags().StringVarP(&taskCommand, "command", "c", "", "Command name for the agent to execute")
	taskCmd.Flags().StringVarP(&taskPayload, "payload", "p", "", "Opaque payload passed to the command")
	rootCmd.AddCommand(taskCmd)
}
