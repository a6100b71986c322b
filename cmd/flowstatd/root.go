package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var rootCmd = &cobra.Command{
	Use:   "flowstatd",
	Short: "Run a flowstat aggregator and expose its Meters over HTTP",
}

// Execute runs rootCmd; each subcommand adds itself to rootCmd in its own
// init function. Called once from main.main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "path to a flowstatd config file (default: $HOME/.flowstatd.yaml)")
	rootCmd.PersistentFlags().Bool("verbose", false, "enable debug-level logging")
	viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

func initConfig() {
	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.SetConfigName(".flowstatd")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("FLOWSTATD")
	viper.AutomaticEnv()
	_ = viper.ReadInConfig() // absence of a config file is not fatal; flags/env/defaults carry the run
}

func newLogger() *zap.Logger {
	if viper.GetBool("verbose") {
		log, _ := zap.NewDevelopment()
		return log
	}
	log, _ := zap.NewProduction()
	return log
}
