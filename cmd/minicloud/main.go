package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var version = "dev"

var (
	configFile      string
	verbose         bool
	serverURL       string
	metricsTextfile string
	outputJSON      bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "minicloud",
		Short: "Mini Cloud storage client",
		Long: `A terminal client for a Mini Cloud server: browse, upload, move and delete
files and folders, and manage users and plugins as an administrator.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&serverURL, "server", "s", "", "server URL (overrides config)")
	rootCmd.PersistentFlags().StringVar(&metricsTextfile, "metrics-textfile", "", "write request metrics to this file on exit")
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "print JSON instead of styled output")

	rootCmd.AddCommand(
		loginCmd(),
		registerCmd(),
		logoutCmd(),
		passwdCmd(),
		whoamiCmd(),
		lsCmd(),
		treeCmd(),
		mkdirCmd(),
		rmCmd(),
		mvCmd(),
		uploadCmd(),
		downloadCmd(),
		statsCmd(),
		adminCmd(),
		pluginsCmd(),
		configCmd(),
		themeCmd(),
		languageCmd(),
		shellCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the client version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("minicloud %s\n", version)
		},
	}
}

func setupLogger(verbose bool) *zap.Logger {
	config := zap.NewProductionConfig()
	if verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	} else {
		config.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	}

	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := config.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
