// Command tilefetch drives a tilecache.Loader from the command line: fetch
// a URL through the cache and print the resulting attributes, or show and
// initialize its configuration. It has no cache-only lookup command.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mchtech/tilecache/config"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "tilefetch",
	Short: "Fetch and inspect cached HTTP artifacts",
	Long: `tilefetch drives a tilecache.Loader from the command line.

Example usage:
  tilefetch get https://example.com/tile/3/4/5.png
  tilefetch get --force https://example.com/tile/3/4/5.png
  tilefetch config show`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default $HOME/.tilecache/config.yml)")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
}

func initConfig() {
	if cfgFile == "" {
		cfgFile = config.Path()
	}
}

func loadConfig() (*config.Config, error) {
	return config.Load(cfgFile)
}
