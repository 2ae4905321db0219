package main

import (
	"context"
	"encoding/json"
	"fmt"

	sqlcli "github.com/sql-trainer/backend/cli"
	"github.com/urfave/cli/v3"
)

func newCheckCatalogCommand(clictx *sqlcli.Context) *cli.Command {
	return &cli.Command{
		Name:  "check-catalog",
		Usage: "Validate the question catalog",
		Action: func(ctx context.Context, c *cli.Command) error {
			issues := clictx.CheckCatalog()
			if len(issues) == 0 {
				fmt.Println("✅ Catalog is valid!")
				return nil
			}

			for _, issue := range issues {
				fmt.Println("  -", issue)
			}

			return fmt.Errorf("catalog has %d issue(s)", len(issues))
		},
	}
}

func newListQuestionsCommand(clictx *sqlcli.Context) *cli.Command {
	return &cli.Command{
		Name:  "list-questions",
		Usage: "List the questions of one practice database",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "slug",
				Usage:    "The database slug to list questions for.",
				Required: true,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			items := clictx.ListQuestions(c.String("slug"))
			if len(items) == 0 {
				return fmt.Errorf("no questions for database %q", c.String("slug"))
			}

			for _, item := range items {
				fmt.Printf("%3d  %s\n", item.ID, item.Prompt)
			}

			return nil
		},
	}
}

func newGradeCommand(clictx *sqlcli.Context) *cli.Command {
	return &cli.Command{
		Name:  "grade",
		Usage: "Grade one query against a question's reference answer",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "slug",
				Usage:    "The database slug of the question.",
				Required: true,
			},
			&cli.IntFlag{
				Name:     "question",
				Usage:    "The id of the question.",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "query",
				Usage:    "The query to grade.",
				Required: true,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			resp, err := clictx.Grade(ctx, c.String("slug"), int(c.Int("question")), c.String("query"))
			if err != nil {
				return err
			}

			encoded, err := json.MarshalIndent(resp, "", "  ")
			if err != nil {
				return fmt.Errorf("marshal grading response: %w", err)
			}

			fmt.Println(string(encoded))
			fmt.Println()
			if resp.Valid {
				fmt.Println("✅ Verdict:", resp.Verdict)
			} else {
				fmt.Println("❌ Verdict:", resp.Verdict)
			}

			return nil
		},
	}
}

func newRerunHistoryCommand(clictx *sqlcli.Context) *cli.Command {
	return &cli.Command{
		Name:        "rerun-history",
		Usage:       "Re-grade the archived submissions with the current grading rules",
		Description: "Re-grades the latest archived grading of every distinct submission and reports verdict drift. Use --dry-run to preview without executing anything.",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Preview the submissions without re-grading them.",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return clictx.RerunHistory(ctx, c.Bool("dry-run"))
		},
	}
}

func newRootCommand(subcommands ...*cli.Command) *cli.Command {
	return &cli.Command{
		Name:     "admin-cli",
		Usage:    "A CLI tool for managing the SQL trainer instance.",
		Commands: subcommands,
	}
}
