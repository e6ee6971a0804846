package cmd

import (
	"fmt"
	"os"

	"github.com/carboneio/sclone/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var configPath string

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "sclone",
	Short: "Object storage synchronization",
	Long: `sclone keeps two object storages in sync.
It supports S3-compatible endpoints, AWS S3 and OpenStack Swift, in
unidirectional (mirror) or bidirectional mode.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		// Console format with the development config for readable timestamps.
		cfg := &logger.Config{
			Level:  "debug",
			Format: "console",
		}

		l, logErr := logger.New(cfg)
		if logErr == nil {
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			fmt.Println(err)
		}
		os.Exit(1)
	}
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", ".", "config file or directory holding .env and config.yaml")
}
