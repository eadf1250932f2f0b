package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Harshitk-cp/contentmesh/internal/bootstrap"
	"github.com/Harshitk-cp/contentmesh/internal/buildconfig"
	"github.com/Harshitk-cp/contentmesh/internal/config"
	"github.com/Harshitk-cp/contentmesh/internal/domain"
	"github.com/Harshitk-cp/contentmesh/internal/service"
	"github.com/Harshitk-cp/contentmesh/internal/store"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
)

func newRouteCmd(opts *rootOptions) *cobra.Command {
	var strategy string

	cmd := &cobra.Command{
		Use:   "route <query>",
		Short: "Show which sources a query would be sent to",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withComponents(cmd, func(c *bootstrap.Components) error {
				d, err := c.Content.Router().Route(joinArgs(args), domain.RoutingStrategy(strategy), nil)
				if err != nil {
					return err
				}
				return opts.emit(cmd.OutOrStdout(), d, func(w io.Writer) {
					fmt.Fprintf(w, "strategy:         %s\n", d.Strategy)
					fmt.Fprintf(w, "sources:          %s\n", strings.Join(d.SourcesToQuery, ", "))
					fmt.Fprintf(w, "expected quality: %.2f\n", d.ExpectedQuality)
					fmt.Fprintf(w, "reasoning:        %s\n", d.Reasoning)
				})
			})
		},
	}

	cmd.Flags().StringVarP(&strategy, "strategy", "s", "", "routing strategy (default from DEFAULT_ROUTING_STRATEGY)")
	return cmd
}

func newQueryCmd(opts *rootOptions) *cobra.Command {
	var (
		strategy string
		limit    int
		language string
	)

	cmd := &cobra.Command{
		Use:   "query <question>",
		Short: "Route a question, fetch from sources and print the synthesized answer",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit < 0 {
				return errors.New("--limit must not be negative")
			}
			return opts.withComponents(cmd, func(c *bootstrap.Components) error {
				res, err := c.Content.Query(cmd.Context(), service.QueryRequest{
					Query:    joinArgs(args),
					Strategy: domain.RoutingStrategy(strategy),
					Options:  domain.QueryOptions{Limit: limit, Language: language},
				})
				if err != nil {
					return err
				}
				return opts.emit(cmd.OutOrStdout(), res, func(w io.Writer) { printQueryResult(w, res) })
			})
		},
	}

	cmd.Flags().StringVarP(&strategy, "strategy", "s", "", "routing strategy")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum results per source")
	cmd.Flags().StringVar(&language, "language", "", "result language code")
	return cmd
}

func printQueryResult(w io.Writer, res *service.QueryResult) {
	fmt.Fprintf(w, "strategy: %s (memory hit: %t)\n", res.Decision.Strategy, res.MemoryHit)
	for _, r := range res.Reports {
		line := fmt.Sprintf("  %-8s %-8s %d results", r.SourceID, r.Status, r.ResultCount)
		if r.Error != "" {
			line += " (" + r.Error + ")"
		}
		fmt.Fprintln(w, line)
	}
	fmt.Fprintln(w)

	s := res.Synthesis
	fmt.Fprintln(w, s.AggregatedContent)
	fmt.Fprintf(w, "\nquality: %.2f\n", s.QualityScore)
	for _, c := range s.Contradictions {
		fmt.Fprintf(w, "contradiction: %s\n", c.Description)
	}
	for _, g := range s.Gaps {
		fmt.Fprintf(w, "gap: %s\n", g)
	}
	for _, r := range s.Recommendations {
		fmt.Fprintf(w, "recommendation: %s\n", r)
	}
}

func newScoreCmd(opts *rootOptions) *cobra.Command {
	var (
		sourceType string
		createdAt  string
		citations  int
		in         = service.DefaultScoreInput()
	)

	cmd := &cobra.Command{
		Use:   "score <content>",
		Short: "Score a piece of content on the seven quality factors",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			created := time.Now().UTC()
			if createdAt != "" {
				t, err := time.Parse(time.RFC3339, createdAt)
				if err != nil {
					return fmt.Errorf("invalid --created-at %q: must be RFC 3339", createdAt)
				}
				created = t
			}
			in.CitationCount = citations
			if err := in.Validate(); err != nil {
				return err
			}

			return opts.withComponents(cmd, func(c *bootstrap.Components) error {
				res := c.Scorer.ScoreContent(joinArgs(args), sourceType, created, in)
				return opts.emit(cmd.OutOrStdout(), res, func(w io.Writer) {
					fmt.Fprintf(w, "overall: %.3f (%s)\n", res.OverallScore, res.QualityLevel)
					for _, comp := range res.Components {
						fmt.Fprintf(w, "  %-13s value %.2f  weight %.2f  %s\n",
							comp.Factor, comp.Value, comp.Weight, comp.Reasoning)
					}
				})
			})
		},
	}

	cmd.Flags().StringVarP(&sourceType, "source-type", "t", string(domain.SourceTypeMemory), "source type used for reliability")
	cmd.Flags().StringVar(&createdAt, "created-at", "", "RFC 3339 creation time (default now)")
	cmd.Flags().IntVar(&citations, "citations", 0, "number of citations")
	cmd.Flags().Float64Var(&in.Relevance, "relevance", in.Relevance, "relevance between 0 and 1")
	cmd.Flags().Float64Var(&in.Completeness, "completeness", in.Completeness, "completeness between 0 and 1")
	cmd.Flags().Float64Var(&in.Accuracy, "accuracy", in.Accuracy, "accuracy between 0 and 1")
	cmd.Flags().Float64Var(&in.UserFeedback, "feedback", in.UserFeedback, "user feedback between 0 and 1")
	return cmd
}

func newSourcesCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "List registered content sources",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withComponents(cmd, func(c *bootstrap.Components) error {
				sources := c.Content.Router().Registry().List()
				return opts.emit(cmd.OutOrStdout(), sources, func(w io.Writer) {
					for _, s := range sources {
						fmt.Fprintf(w, "%-10s %-12s priority %d\n", s.ID, s.Type, s.Priority)
					}
				})
			})
		},
	}
}

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending SQL migrations to DATABASE_URL",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dbURL := config.DatabaseURL()
			if dbURL == "" {
				return errors.New("DATABASE_URL is required")
			}
			if dir == "" {
				dir = config.MigrationsPath()
			}

			pool, err := pgxpool.New(cmd.Context(), dbURL)
			if err != nil {
				return fmt.Errorf("connect to database: %w", err)
			}
			defer pool.Close()

			applied, err := store.Migrate(cmd.Context(), pool, dir)
			if err != nil {
				return err
			}
			return opts.emit(cmd.OutOrStdout(), map[string]any{"applied": applied}, func(w io.Writer) {
				if len(applied) == 0 {
					fmt.Fprintln(w, "database is up to date")
					return
				}
				for _, name := range applied {
					fmt.Fprintf(w, "applied %s\n", name)
				}
			})
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "migrations directory (default from MIGRATIONS_PATH)")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version info",
		RunE: func(cmd *cobra.Command, args []string) error {
			info := buildconfig.Get()
			fmt.Fprintf(cmd.OutOrStdout(), "contentctl %s\n", info.Version)
			fmt.Fprintf(cmd.OutOrStdout(), " - commit: %s\n", info.Commit)
			fmt.Fprintf(cmd.OutOrStdout(), " - built:  %s\n", info.BuildDate)
			return nil
		},
	}
}
