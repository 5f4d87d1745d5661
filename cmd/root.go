// Package cmd provides the docmux command-line interface.
//
// Configuration sources, highest priority first:
//  1. Command-line flags (--port, --offline, ...)
//  2. DOCMUX_<SECTION>_<OPTION> environment variables (DOCMUX_SERVER_PORT)
//  3. The config file: --config, else DOCMUX_CONFIG_FILE, else .docmux.yml
//     in the working directory
//
// A .env file in the working directory is loaded into the environment
// before any of these are read. Variables already set are kept.
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/conneroisu/docmux/internal/ux"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "docmux",
	Short: "Serve many documentation projects under one home site",
	Long: `docmux aggregates independently built documentation projects under one
home site, links every project back to it, serves everything behind a single
HTTP endpoint and rebuilds projects when their sources change.

Quick Start:
  docmux init MyDocs               Create a home documentation directory
  docmux build --all               Build every project and the home site
  docmux serve                     Serve and watch the current directory
  docmux routes                    Show which URL prefix serves which build`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and runs it. Errors
// are printed here.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		ux.NewPrinter(rootCmd.ErrOrStderr()).Fail("%v", err)
	}
	return err
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is .docmux.yml, can also use DOCMUX_CONFIG_FILE env var)")
	flags.Var(newLogLevelValue("info"), "log-level", "log level (debug, info, warn, error)")
	flags.Var(newChoiceValue("text", "text", "json"), "log-format", "log format (text, json)")

	_ = viper.BindPFlag("log-level", flags.Lookup("log-level"))
	_ = viper.BindPFlag("log-format", flags.Lookup("log-format"))
}

// initConfig loads .env, then wires viper to the config file and DOCMUX_
// environment variables.
func initConfig() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintln(os.Stderr, "Ignoring .env:", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv("DOCMUX_CONFIG_FILE"); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".docmux")
	}

	viper.SetEnvPrefix("DOCMUX")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	// A missing or unreadable config file leaves the defaults in place
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
