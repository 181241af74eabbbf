package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "hivectl",
	Short: "hivectl is a command line tool for operating a Shield Hive fleet",
	Long: `hivectl is the command-line interface for the Shield Hive fleet controller.

The controller coordinates remote sentinel agents over HTTP polling: agents
heartbeat in, pull queued commands, and push results and threat sightings.
hivectl talks to the controller's operator API.

Common workflows:

  List registered agents (IPs are masked):
    hivectl agents

  Queue a command for an agent:
    hivectl task SHIELD-A1B2C3 --command scan --payload /tmp

  Review recently reported threats:
    hivectl threats

  Get the current fleet posture:
    hivectl brief

  Generate a new shared server key:
    hivectl keygen

Configuration:
  Set the API endpoint and credentials via environment variables or a config file:
    HIVECTL_URL    Controller endpoint (default: http://localhost:8080)
    HIVECTL_KEY    Shared server key, if the controller requires one`,
}

func Execute() error {
	return rootCmd.Execute()
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		// Search config in home directory with name ".hivectl"
		viper.AddConfigPath(home)
		viper.SetConfigName(".hivectl")
		viper.SetConfigType("yaml")
	}

	// Read environment variables that match "HIVECTL_VARNAME"
	viper.SetEnvPrefix("HIVECTL")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.hivectl.yaml)")

	rootCmd.PersistentFlags().String("url", "http://localhost:8080", "Hive controller URL")
	viper.BindPFlag("url", rootCmd.PersistentFlags().Lookup("url"))

	rootCmd.PersistentFlags().StringP("key", "k", "", "Shared server key for authenticated endpoints")
	viper.BindPFlag("key", rootCmd.PersistentFlags().Lookup("key"))
}
