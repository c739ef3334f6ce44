// Command recalculate rescores stored leads once and prints the run report.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/xavierca1/ligue-leads/internal/config"
	"github.com/xavierca1/ligue-leads/internal/infra/database"
	"github.com/xavierca1/ligue-leads/internal/infra/lock"
	"github.com/xavierca1/ligue-leads/internal/scoring"
	"github.com/xavierca1/ligue-leads/internal/usecase"
)

func main() {
	stage := flag.String("stage", "", "only rescore leads currently in this stage")
	email := flag.String("email", "", "only rescore this lead")
	limit := flag.Int("limit", 0, "rescore at most this many leads (0 = all)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewDBConnection(cfg.Database.URL)
	if err != nil {
		log.Fatalf("❌ database: %v", err)
	}
	defer db.Close()

	var runLock usecase.RunLock = lock.NewLocalLock()
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		defer rdb.Close()
		runLock = lock.NewRedisLock(rdb, "leads:recalculate", cfg.Recalculation.LockTTL)
	}

	leadRepo := database.NewLeadRepository(db)
	uc := usecase.NewRecalculateScoresUseCase(leadRepo, scoring.NewScorer(leadRepo), runLock, nil)

	out, err := uc.Execute(ctx, usecase.RecalculateInput{Stage: *stage, Email: *email, Limit: *limit})
	if err != nil {
		log.Fatalf("❌ recalculate: %v", err)
	}
	printReport(os.Stdout, out)
}

func printReport(w io.Writer, out *usecase.RecalculateOutput) {
	fmt.Fprintf(w, "run %s\n", out.RunID)
	fmt.Fprintf(w, "matched %d, updated %d, changed %d, failed %d\n", out.Matched, out.Updated, out.Changed, out.Failed)
	fmt.Fprintf(w, "leads %d, score avg %.1f min %d max %d\n",
		out.Stats.Total, out.Stats.AverageScore, out.Stats.MinScore, out.Stats.MaxScore)
	for _, s := range out.Stats.Stages {
		fmt.Fprintf(w, "  %-10s %-16s %d\n", s.Stage, s.Label, s.Count)
	}
}
