// tokenbuild drives the design-token pipeline from the command line: merge
// themes, evaluate computed values, run transformers, pack and unpack
// envelopes, and rebuild on file changes.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	tokens "github.com/goliatone/go-tokens"
)

var (
	flagVerbose bool
	flagLogJSON bool

	logger *zap.SugaredLogger
)

var rootCmd = &cobra.Command{
	Use:   "tokenbuild",
	Short: "Build pipeline for layered design tokens",
	Long: `tokenbuild merges a base token store with theme overrides, evaluates
computed values, runs artifact transformers and manages serialized
token envelopes.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger = newLogger(flagVerbose, flagLogJSON)
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "tokenbuild: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&flagLogJSON, "log-json", false, "emit logs as JSON")
}

func newLogger(verbose, jsonOut bool) *zap.SugaredLogger {
	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}

	cfg := zap.NewDevelopmentConfig()
	if jsonOut {
		cfg = zap.NewProductionConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(level)

	built, err := cfg.Build()
	if err != nil {
		return zap.NewNop().Sugar()
	}
	return built.Sugar()
}

// zapAdapter exposes a zap logger through the engine's Logger interface.
type zapAdapter struct {
	sugar *zap.SugaredLogger
}

func engineLogger() tokens.Logger {
	return &zapAdapter{sugar: logger}
}

func (a *zapAdapter) Debugf(format string, args ...any) { a.sugar.Debugf(format, args...) }
func (a *zapAdapter) Infof(format string, args ...any)  { a.sugar.Infof(format, args...) }
func (a *zapAdapter) Warnf(format string, args ...any)  { a.sugar.Warnf(format, args...) }
func (a *zapAdapter) Errorf(format string, args ...any) { a.sugar.Errorf(format, args...) }
