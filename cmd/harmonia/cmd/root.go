// Copyright (c) 2024 santosr2
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package cmd

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jpetrucciani/harmonia/internal/buildinfo"
)

var (
	quietFlag     bool
	verboseFlag   bool
	workspaceFlag string
	configFlag    string
	parallelFlag  int
	noColorFlag   bool
	logLevel      = slog.LevelWarn

	rootCmd = &cobra.Command{
		Use:   "harmonia",
		Short: "Coordinate operations across a workspace of git repositories",
		Long: `harmonia is the coordination core for a workspace of interdependent git
repositories. It resolves a workspace's repos and their internal dependency
graph, selects a subset of repos to act on, and runs sync, branch, commit,
push, version bump, dependency, and merge-request operations across that
selection in dependency order, wave by wave.`,
		Version: buildinfo.Get(),
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Set log level based on flags
			if quietFlag {
				logLevel = slog.LevelError
			} else if verboseFlag {
				logLevel = slog.LevelDebug
			} else if v, ok := os.LookupEnv("HARMONIA_LOG_LEVEL"); ok {
				var lvl slog.Level
				if err := lvl.UnmarshalText([]byte(v)); err == nil {
					logLevel = lvl
				}
			}
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false, "suppress informational output (errors only)")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable verbose debug output")
	rootCmd.PersistentFlags().StringVar(&workspaceFlag, "workspace", ".", "path to the workspace root")
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "path to the workspace config file (overrides workspace discovery)")
	rootCmd.PersistentFlags().IntVar(&parallelFlag, "parallel", 0, "maximum repos processed concurrently within a wave (0 = workspace default)")
	rootCmd.PersistentFlags().BoolVar(&noColorFlag, "no-color", false, "disable ANSI color in human-readable output")
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command bound to ctx, so handlers observe
// signal-driven cancellation (main.go arms SIGINT/SIGTERM via
// signal.NotifyContext).
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// GetLogLevel returns the current log level based on flags
func GetLogLevel() slog.Level {
	return logLevel
}
