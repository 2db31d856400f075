package main

import (
	"context"
	"errors"
	"fmt"

	ingestdomain "github.com/smallbiznis/reviewvault/internal/ingest/domain"
	ingestservice "github.com/smallbiznis/reviewvault/internal/ingest/service"
	auditdomain "github.com/smallbiznis/reviewvault/internal/loadaudit/domain"
	"github.com/smallbiznis/reviewvault/internal/migration"
	reviewdomain "github.com/smallbiznis/reviewvault/internal/review/domain"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var errSchemaIncomplete = errors.New("schema_incomplete")

func newIngestCmd() *cobra.Command {
	var req ingestdomain.RunRequest
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Load new review files, quarantine bad rows and write the stage artifact",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var svc ingestdomain.Service
			return withApp(cmd.Context(), true, func(ctx context.Context) error {
				result, err := svc.Run(ctx, req)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), result)
			}, &svc)
		},
	}
	cmd.Flags().StringArrayVar(&req.Globs, "glob", nil, "file pattern to ingest, ** supported (repeatable)")
	cmd.Flags().StringVar(&req.StagePath, "stage", "", "stage artifact path")
	return cmd
}

func newSchemaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Manage the store schema",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "init",
			Short: "Create tables and views",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runVerify(cmd, true)
			},
		},
		&cobra.Command{
			Use:   "verify",
			Short: "Report foreign key enforcement, journal mode and missing objects",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runVerify(cmd, false)
			},
		},
	)
	return cmd
}

func runVerify(cmd *cobra.Command, migrate bool) error {
	var conn *gorm.DB
	return withApp(cmd.Context(), migrate, func(ctx context.Context) error {
		report, err := migration.Verify(ctx, conn)
		if err != nil {
			return err
		}
		if err := printJSON(cmd.OutOrStdout(), report); err != nil {
			return err
		}
		if !report.OK() {
			return errSchemaIncomplete
		}
		return nil
	}, &conn)
}

func newMetricsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "Manage the daily metrics summary",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "rebuild",
		Short: "Recompute metrics_summary from reviews",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var reviews reviewdomain.Service
			return withApp(cmd.Context(), true, func(ctx context.Context) error {
				n, err := reviews.RebuildMetrics(ctx)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), map[string]int64{"rows": n})
			}, &reviews)
		},
	})
	return cmd
}

func newDQCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dq",
		Short: "Offline data-quality checks",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "check <file>...",
		Short: "Validate files without loading them",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			results := make([]ingestdomain.CheckResult, 0, len(args))
			failed := false
			for _, path := range args {
				res, err := ingestservice.CheckFile(path)
				if err != nil {
					return err
				}
				if res.Invalid > 0 || !res.Expectations.Success {
					failed = true
				}
				results = append(results, res)
			}
			if err := printJSON(cmd.OutOrStdout(), results); err != nil {
				return err
			}
			if failed {
				return fmt.Errorf("data quality check failed for %d file(s)", countFailed(results))
			}
			return nil
		},
	})
	return cmd
}

func countFailed(results []ingestdomain.CheckResult) int {
	n := 0
	for _, res := range results {
		if res.Invalid > 0 || !res.Expectations.Success {
			n++
		}
	}
	return n
}

func newReviewsCmd() *cobra.Command {
	var (
		req     reviewdomain.ListReviewsRequest
		private bool
		format  string
		account string
	)
	cmd := &cobra.Command{
		Use:   "reviews",
		Short: "Query reviews by business or user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			req.Projection = reviewdomain.ProjectionPublic
			if private {
				req.Projection = reviewdomain.ProjectionPrivate
			}
			var reviews reviewdomain.Service
			return withApp(cmd.Context(), false, func(ctx context.Context) error {
				if account != "" {
					acct, err := reviews.GetUserAccount(ctx, account)
					if err != nil {
						return err
					}
					return printJSON(cmd.OutOrStdout(), acct)
				}
				views, err := reviews.ListReviews(ctx, req)
				if err != nil {
					return err
				}
				if format == "csv" {
					return printReviewsCSV(cmd.OutOrStdout(), views, req.Projection)
				}
				return printJSON(cmd.OutOrStdout(), views)
			}, &reviews)
		},
	}
	cmd.Flags().StringVar(&req.BusinessID, "business", "", "business id")
	cmd.Flags().StringVar(&req.UserID, "user", "", "user id")
	cmd.Flags().StringVar(&req.From, "from", "", "inclusive lower date bound")
	cmd.Flags().StringVar(&req.To, "to", "", "inclusive upper date bound")
	cmd.Flags().IntVar(&req.Limit, "limit", 0, "maximum rows, 0 for all")
	cmd.Flags().BoolVar(&private, "pii", false, "use the private projection with masked PII")
	cmd.Flags().StringVar(&format, "format", "json", "output format: json or csv")
	cmd.Flags().StringVar(&account, "account", "", "print the masked account of this user id")
	return cmd
}

func newStatusCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the latest load and the review count",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var audit auditdomain.Service
			return withApp(cmd.Context(), false, func(ctx context.Context) error {
				if limit > 0 {
					loads, err := audit.List(ctx, limit)
					if err != nil {
						return err
					}
					return printJSON(cmd.OutOrStdout(), loads)
				}
				summary, err := audit.LatestLoad(ctx)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), summary)
			}, &audit)
		},
	}
	cmd.Flags().IntVar(&limit, "history", 0, "list this many most recent loads instead")
	return cmd
}
