package main

import (
	"context"
	"log"
	"os"

	sqlcli "github.com/sql-trainer/backend/cli"
	"github.com/sql-trainer/backend/internal/config"
	"github.com/sql-trainer/backend/internal/deps"
	"github.com/sql-trainer/backend/internal/grader"
	"github.com/sql-trainer/backend/internal/history"
	"github.com/sql-trainer/backend/internal/questions"
	"github.com/sql-trainer/backend/internal/sqlrunner"
)

func main() {
	cfg, err := deps.Config()
	if err != nil {
		log.Fatal(err)
	}

	catalog, err := questions.Load(cfg.CatalogPath)
	if err != nil {
		log.Fatal(err)
	}

	runner, err := newRunner(cfg)
	if err != nil {
		log.Fatal(err)
	}

	store, err := history.Open(cfg.History.Path)
	if err != nil {
		log.Fatal(err)
	}
	defer func() {
		_ = store.Close()
	}()

	// reruns never escalate to the judge or touch the cache
	c := sqlcli.NewContext(catalog, grader.New(runner, nil, nil), store)

	checkCatalogCommand := newCheckCatalogCommand(c)
	listQuestionsCommand := newListQuestionsCommand(c)
	gradeCommand := newGradeCommand(c)
	rerunHistoryCommand := newRerunHistoryCommand(c)

	rootCommand := newRootCommand(checkCatalogCommand, listQuestionsCommand, gradeCommand, rerunHistoryCommand)

	if err := rootCommand.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func newRunner(cfg config.Config) (sqlrunner.Runner, error) {
	if cfg.Runner.Mode == config.RunnerModePostgres {
		return sqlrunner.NewPgxRunner(context.Background(), cfg.Runner)
	}

	return sqlrunner.NewRPCRunner(cfg.Runner), nil
}
