package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mchtech/tilecache/config"
)

var configCmd = &cobra.Command{
	Use:   "config [show|init]",
	Short: "Manage tilefetch configuration",
	Long: `View and initialize tilefetch configuration.

Configuration is stored in ~/.tilecache/config.yml.

Examples:
  tilefetch config show
  tilefetch config init`,
	Args: cobra.ExactArgs(1),
	RunE: runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, args []string) error {
	switch args[0] {
	case "show":
		return showConfig()
	case "init":
		return initConfigFile()
	default:
		return fmt.Errorf("unknown action: %s (use: show, init)", args[0])
	}
}

func showConfig() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("tilefetch: load config: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func initConfigFile() error {
	cfg := config.Default()
	if err := config.Save(cfg, cfgFile); err != nil {
		return fmt.Errorf("tilefetch: create config file: %w", err)
	}
	fmt.Printf("created default configuration at %s\n", cfgFile)
	return nil
}
