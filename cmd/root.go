// Package cmd provides the loom command-line interface.
//
// Configuration sources, lowest to highest precedence:
//  1. .loom.yml in the working directory (or --config)
//  2. LOOM_<SECTION>_<OPTION> environment variables
//  3. command-line flags
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/loomkit/loom/internal/config"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "loom",
	Short: "An event-based markup template engine",
	Long: `Loom processes markup templates through dialect-contributed processors:
each template is parsed once into an event sequence, cached immutably, and
rewritten per request by the processor pipeline.

Quick start:
  loom render page.html --data vars.yaml    Render a template
  loom serve                                Preview templates with live reload`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default .loom.yml)")
	rootCmd.PersistentFlags().String("root", ".", "template root directory")
	rootCmd.PersistentFlags().String("mode", "html", "template mode (html, xml, text, raw)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "log format (text, json)")
	bindFlag("templates.root", rootCmd.PersistentFlags(), "root")
	bindFlag("templates.mode", rootCmd.PersistentFlags(), "mode")
	bindFlag("log.level", rootCmd.PersistentFlags(), "log-level")
	bindFlag("log.format", rootCmd.PersistentFlags(), "log-format")
}

// bindFlag binds one flag to its configuration key.
func bindFlag(key string, flags *pflag.FlagSet, name string) {
	if err := viper.BindPFlag(key, flags.Lookup(name)); err != nil {
		panic(fmt.Sprintf("binding flag %q: %v", name, err))
	}
}

func initConfig() {
	config.SetDefaults()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(".loom")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
	}

	viper.SetEnvPrefix("LOOM")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			fmt.Fprintf(os.Stderr, "warning: reading config: %v\n", err)
		}
	}
}
