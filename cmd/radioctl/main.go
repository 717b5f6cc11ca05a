// Package main is radioctl, a command line client for the radio directory.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vyrodovalexey/radiodir/internal/client"
	"github.com/vyrodovalexey/radiodir/internal/logging"
)

const (
	defaultServer = "http://localhost:3001"
	envServer     = "RADIOCTL_SERVER"
)

var (
	serverURL string
	logLevel  string
)

var rootCmd = &cobra.Command{
	Use:   "radioctl",
	Short: "radioctl - Radio station directory client",
	Long: `radioctl manages the stations of a radio directory service and
plays them from the terminal.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", serverFromEnv(),
		"directory service base URL (env "+envServer+")")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level: debug, info, warn, error")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func serverFromEnv() string {
	if v := os.Getenv(envServer); v != "" {
		return v
	}
	return defaultServer
}

// newClient builds an API client for the --server flag.
func newClient() *client.Client {
	return client.NewClient(serverURL)
}

// newLogger builds a logger writing to stderr so it does not mix with command output.
func newLogger() (*zap.Logger, error) {
	return logging.New(logging.Options{Level: logLevel, Outputs: []string{"stderr"}})
}
