package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/dispatcher/internal/ingest"
	"github.com/ppiankov/dispatcher/internal/logger"
	"github.com/ppiankov/dispatcher/internal/model"
	"github.com/ppiankov/dispatcher/internal/score"
	"github.com/ppiankov/dispatcher/internal/worker"
)

var (
	scoreWorkers int
	scoreTimeout time.Duration
	scoreTop     int
	scoreJSON    string
	scoreSave    bool
)

// scoreCmd represents the score command
var scoreCmd = &cobra.Command{
	Use:   "score <leads-file>",
	Short: "Score and rank carrier leads from a file",
	Long: `Score reads carrier leads from a YAML or JSON file, scores every lead on
seven weighted factors in parallel, and ranks them best first.

A lead is qualified when its insurance meets the minimums, it runs at least
one target equipment type, and its total reaches the threshold.

Example:
  dispatcher score leads.yaml
  dispatcher score leads.json --workers 8 --top 20 --json ranked.json
  dispatcher score leads.yaml --save`,
	Args: cobra.ExactArgs(1),
	RunE: runScore,
}

func init() {
	rootCmd.AddCommand(scoreCmd)

	scoreCmd.Flags().IntVar(&scoreWorkers, "workers", 0, "number of concurrent workers (default: concurrency.workers)")
	scoreCmd.Flags().DurationVar(&scoreTimeout, "timeout", 5*time.Minute, "total timeout for scoring")
	scoreCmd.Flags().IntVar(&scoreTop, "top", 0, "only print the top N leads (0 prints all)")
	scoreCmd.Flags().StringVar(&scoreJSON, "json", "", "output JSON path (\"-\" for stdout)")
	scoreCmd.Flags().BoolVar(&scoreSave, "save", false, "persist scores to the configured store")
}

type scoreReport struct {
	Summary model.QualificationSummary `json:"summary"`
	Ranked  []model.RankedLead         `json:"ranked"`
	Failed  []failedLead               `json:"failed,omitempty"`
}

type failedLead struct {
	Index  int    `json:"index"`
	LeadID string `json:"lead_id"`
	Error  string `json:"error"`
}

func runScore(cmd *cobra.Command, args []string) error {
	file := args[0]
	ctx, cancel := context.WithTimeout(cmd.Context(), scoreTimeout)
	defer cancel()

	eng, cfg, err := newEngine(ctx)
	if err != nil {
		return err
	}
	workers := scoreWorkers
	if workers <= 0 {
		workers = cfg.Concurrency.Workers
	}

	printBanner("Dispatcher Lead Scoring")
	fmt.Fprintf(os.Stderr, "  Input file:   %s\n", file)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", workers)
	fmt.Fprintf(os.Stderr, "  Threshold:    %.2f\n", cfg.Qualification.Threshold)
	fmt.Fprintf(os.Stderr, "\n")

	fmt.Fprintf(os.Stderr, "⚙️  Reading leads...\n")
	leads, err := ingest.New().LoadLeads(file)
	if err != nil {
		return fmt.Errorf("load leads: %w", err)
	}
	fmt.Fprintf(os.Stderr, "✓ Loaded %d leads\n\n", len(leads))

	results := worker.NewBatchScorer(eng, workers).ScoreLeads(ctx, leads)

	report := scoreReport{Ranked: make([]model.RankedLead, 0, len(results))}
	scores := make([]model.LeadScore, 0, len(results))
	for _, r := range worker.Failed(results) {
		report.Failed = append(report.Failed, failedLead{Index: r.Index, LeadID: r.LeadID, Error: r.Error.Error()})
		fmt.Fprintf(os.Stderr, "✗ %s: %v\n", r.LeadID, r.Error)
	}
	for _, r := range results {
		if r.Error != nil {
			continue
		}
		report.Ranked = append(report.Ranked, model.RankedLead{Lead: leads[r.Index], Score: r.Score})
		scores = append(scores, r.Score)
	}
	score.SortRanked(report.Ranked)
	report.Summary = eng.Summarize(scores)

	if err := saveScores(ctx, cfg, scores); err != nil {
		return err
	}

	shown := report.Ranked
	if scoreTop > 0 && scoreTop < len(shown) {
		shown = shown[:scoreTop]
	}
	for i, rl := range shown {
		mark := "✓"
		if !rl.Score.Qualified {
			mark = "✗"
		}
		fmt.Printf("%3d. %s %.3f  %-32s %s\n", i+1, mark, rl.Score.Total, rl.Lead.CompanyName, rl.Lead.ID)
		if rl.Score.DisqualificationReason != "" {
			fmt.Printf("         %s\n", rl.Score.DisqualificationReason)
		}
	}

	sum := report.Summary
	printBanner("Scoring Complete")
	fmt.Fprintf(os.Stderr, "  Total:        %d leads\n", sum.Total)
	fmt.Fprintf(os.Stderr, "  Qualified:    %d (%.1f%%)\n", sum.Qualified, sum.QualificationRate*100)
	fmt.Fprintf(os.Stderr, "  Average:      %.3f\n", sum.AverageScore)
	fmt.Fprintf(os.Stderr, "  Top score:    %.3f\n", sum.TopScore)
	fmt.Fprintf(os.Stderr, "  Failures:     %d\n", len(report.Failed))
	fmt.Fprintf(os.Stderr, "\n")

	if scoreJSON != "" {
		if err := writeJSON(scoreJSON, report); err != nil {
			return err
		}
	}
	if len(report.Failed) > 0 {
		return fmt.Errorf("%d of %d leads failed to score", len(report.Failed), len(leads))
	}
	return nil
}

func saveScores(ctx context.Context, cfg *model.Config, scores []model.LeadScore) error {
	st, err := openStore(ctx, cfg, scoreSave)
	if err != nil || st == nil {
		return err
	}
	defer st.Close()

	for _, s := range scores {
		if err := st.SaveLeadScore(ctx, s); err != nil {
			return fmt.Errorf("save lead score %s: %w", s.LeadID, err)
		}
	}
	logger.Info(ctx, "saved lead scores", "count", len(scores), "backend", cfg.Store.Backend)
	return nil
}

var topCount int

// topCmd represents the top command
var topCmd = &cobra.Command{
	Use:   "top",
	Short: "Show the best stored lead scores",
	Long: `Top reads lead scores saved with 'dispatcher score --save'. Use the redis
store backend to keep scores between runs. 'dispatcher stored lead <id>'
prints one lead's full score.

Example:
  dispatcher top -n 10`,
	Args: cobra.NoArgs,
	RunE: runTop,
}

func init() {
	rootCmd.AddCommand(topCmd)

	topCmd.Flags().IntVarP(&topCount, "count", "n", 10, "number of leads to show")
}

func runTop(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	st, err := openStore(ctx, cfg, true)
	if err != nil {
		return err
	}
	defer st.Close()

	top, err := st.TopLeads(ctx, topCount)
	if err != nil {
		return fmt.Errorf("read top leads: %w", err)
	}
	if len(top) == 0 {
		fmt.Fprintf(os.Stderr, "No stored lead scores (backend: %s)\n", cfg.Store.Backend)
		return nil
	}
	for i, s := range top {
		fmt.Printf("%3d. %.3f  %s\n", i+1, s.Total, s.LeadID)
	}
	return nil
}
