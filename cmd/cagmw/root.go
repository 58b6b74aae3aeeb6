package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/trigoo007/cagcore/pkg/logx"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "cagmw",
	Short: "Context-augmented generation middleware, driven from a terminal",
	Long: "cagmw wires the context analysis, context management and maintenance\n" +
		"pipeline and drives it from the command line. There is no HTTP\n" +
		"server here: that remains an external collaborator.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initLogging(cmd)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML/JSON/TOML), overrides environment defaults")
	rootCmd.PersistentFlags().String("log-level", "info", "log level: trace, debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "console", "log format: console, json, cloudwatch")

	cobra.OnInitialize(loadConfigFile)

	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(maintenanceCmd)
}

// loadConfigFile loads an optional config file via viper and exports its
// keys as environment variables, so pkg/config's plain getenv-based
// loaders pick them up without a second configuration code path.
func loadConfigFile() {
	if cfgFile == "" {
		return
	}
	viper.SetConfigFile(cfgFile)
	if err := viper.ReadInConfig(); err != nil {
		fmt.Fprintf(os.Stderr, "cagmw: reading config file %s: %v\n", cfgFile, err)
		os.Exit(1)
	}
	for _, key := range viper.AllKeys() {
		envKey := strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		os.Setenv(envKey, viper.GetString(key))
	}
}

func initLogging(cmd *cobra.Command) error {
	level, _ := cmd.Flags().GetString("log-level")
	format, _ := cmd.Flags().GetString("log-format")

	cfg := logx.DefaultConfig()
	cfg.Level = logx.ParseLevel(level)
	switch logx.Format(format) {
	case logx.FormatJSON, logx.FormatCloudWatch, logx.FormatConsole:
		cfg.Format = logx.Format(format)
	default:
		return fmt.Errorf("unknown log format %q", format)
	}
	logx.SetDefaultLogger(logx.NewLogger(cfg))
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
