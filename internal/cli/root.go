// Package cli implements contentctl, a command line front end that runs the
// routing, scoring and synthesis pipeline in-process.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/Harshitk-cp/contentmesh/internal/bootstrap"
	"github.com/Harshitk-cp/contentmesh/internal/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type buildFunc func(ctx context.Context, logger *zap.Logger) (*bootstrap.Components, error)

type rootOptions struct {
	output  string
	verbose bool
	build   buildFunc
}

// NewRootCmd returns the contentctl root command.
func NewRootCmd() *cobra.Command {
	return newRootCmd(bootstrap.Build)
}

func newRootCmd(build buildFunc) *cobra.Command {
	opts := &rootOptions{build: build}

	rootCmd := &cobra.Command{
		Use:           "contentctl",
		Short:         "Route, score and synthesize content from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.output != "text" && opts.output != "json" {
				return fmt.Errorf("invalid output format %q: must be text or json", opts.output)
			}
			return config.Load()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.output, "output", "o", "text", "output format: text|json")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log pipeline activity to stderr")

	rootCmd.AddCommand(newRouteCmd(opts))
	rootCmd.AddCommand(newQueryCmd(opts))
	rootCmd.AddCommand(newScoreCmd(opts))
	rootCmd.AddCommand(newSourcesCmd(opts))
	rootCmd.AddCommand(newMigrateCmd(opts))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func (o *rootOptions) logger() *zap.Logger {
	if !o.verbose {
		return zap.NewNop()
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// withComponents builds the pipeline, runs fn and releases connections.
func (o *rootOptions) withComponents(cmd *cobra.Command, fn func(*bootstrap.Components) error) error {
	logger := o.logger()
	defer func() { _ = logger.Sync() }()

	c, err := o.build(cmd.Context(), logger)
	if err != nil {
		return err
	}
	defer c.Close()
	return fn(c)
}

// emit writes v as indented JSON, or calls text when the output is text.
func (o *rootOptions) emit(w io.Writer, v any, text func(io.Writer)) error {
	if o.output == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	text(w)
	return nil
}

func joinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}
