package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/dispatcher/internal/ingest"
	"github.com/ppiankov/dispatcher/internal/model"
)

var (
	matchTimeout time.Duration
	matchTop     int
	matchJSON    string
	matchSave    bool
)

// matchCmd represents the match command
var matchCmd = &cobra.Command{
	Use:   "match <loads-file> <carriers-file>",
	Short: "Rank carriers for every load",
	Long: `Match checks each load's commodity and rate floor, then ranks the carriers
that run the required equipment and pass the eligibility rules. Loads are
processed in parallel.

Forbidden loads get no candidates. Loads needing review are ranked but
every candidate is flagged and never auto-booked.

Example:
  dispatcher match loads.yaml carriers.yaml
  dispatcher match loads.json carriers.json --top 3 --json matches.json`,
	Args: cobra.ExactArgs(2),
	RunE: runMatch,
}

func init() {
	rootCmd.AddCommand(matchCmd)

	matchCmd.Flags().DurationVar(&matchTimeout, "timeout", 2*time.Minute, "total timeout for matching")
	matchCmd.Flags().IntVar(&matchTop, "top", 3, "candidates to print per load (0 prints all)")
	matchCmd.Flags().StringVar(&matchJSON, "json", "", "output JSON path (\"-\" for stdout)")
	matchCmd.Flags().BoolVar(&matchSave, "save", false, "persist recommendations to the configured store")
}

func runMatch(cmd *cobra.Command, args []string) error {
	loadsFile, carriersFile := args[0], args[1]
	ctx, cancel := context.WithTimeout(cmd.Context(), matchTimeout)
	defer cancel()

	eng, cfg, err := newEngine(ctx)
	if err != nil {
		return err
	}

	ing := ingest.New()
	loads, err := ing.LoadLoads(loadsFile)
	if err != nil {
		return fmt.Errorf("load loads: %w", err)
	}
	carriers, err := ing.LoadCarriers(carriersFile)
	if err != nil {
		return fmt.Errorf("load carriers: %w", err)
	}

	printBanner("Dispatcher Matching")
	fmt.Fprintf(os.Stderr, "  Loads:        %d\n", len(loads))
	fmt.Fprintf(os.Stderr, "  Carriers:     %d\n", len(carriers))
	fmt.Fprintf(os.Stderr, "  Min rate:     $%.2f/mile\n", cfg.Match.MinRatePerMile)
	fmt.Fprintf(os.Stderr, "  Rules:        %d\n", len(cfg.Match.Rules))
	fmt.Fprintf(os.Stderr, "\n")

	recs, err := eng.Recommend(ctx, loads, carriers)
	if err != nil {
		return fmt.Errorf("recommend: %w", err)
	}

	rejected, unmatched := 0, 0
	for _, rec := range recs {
		printRecommendation(rec)
		switch {
		case rec.Rejected:
			rejected++
		case len(rec.Candidates) == 0:
			unmatched++
		}
	}

	if err := saveRecommendations(ctx, cfg, recs); err != nil {
		return err
	}

	printBanner("Matching Complete")
	fmt.Fprintf(os.Stderr, "  Loads:        %d\n", len(recs))
	fmt.Fprintf(os.Stderr, "  Rejected:     %d\n", rejected)
	fmt.Fprintf(os.Stderr, "  No carrier:   %d\n", unmatched)
	fmt.Fprintf(os.Stderr, "\n")

	if matchJSON != "" {
		return writeJSON(matchJSON, recs)
	}
	return nil
}

func printRecommendation(rec model.Recommendation) {
	l := rec.Load
	fmt.Printf("%s %s %s  %d mi  $%.2f  %s\n",
		statusMark(rec.Verdict.Status), l.ID, l.Lane(), l.LoadedMiles, l.Rate, l.Commodity.Name)

	if rec.Rejected {
		fmt.Printf("    rejected: %s\n", rec.Reason)
		return
	}
	if rec.Verdict.NeedsReview() {
		fmt.Printf("    needs review: %s\n", rec.Verdict.Reason)
	}
	if len(rec.Candidates) == 0 {
		fmt.Printf("    no eligible carriers\n")
		return
	}

	shown := rec.Candidates
	if matchTop > 0 && matchTop < len(shown) {
		shown = shown[:matchTop]
	}
	for i, c := range shown {
		fmt.Printf("    %d. %-20s %.3f  commission $%.2f (charity $%.2f)\n",
			i+1, c.CarrierID, c.Total, c.Commission.Amount, c.Commission.Charity)
	}
}

func saveRecommendations(ctx context.Context, cfg *model.Config, recs []model.Recommendation) error {
	st, err := openStore(ctx, cfg, matchSave)
	if err != nil || st == nil {
		return err
	}
	defer st.Close()

	for _, rec := range recs {
		if err := st.SaveMatches(ctx, rec); err != nil {
			return fmt.Errorf("save matches for %s: %w", rec.Load.ID, err)
		}
		if err := st.SaveVerdict(ctx, rec.Load.Commodity, rec.Verdict); err != nil {
			return fmt.Errorf("save verdict for %s: %w", rec.Load.ID, err)
		}
	}
	return nil
}
