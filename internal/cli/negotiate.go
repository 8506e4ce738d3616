package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

var (
	negFloor      float64
	negSoftFloor  float64
	negTarget     float64
	negRounds     int
	negInitialPct float64
	negConcession float64
	negJSON       string
)

// negotiateCmd represents the negotiate command
var negotiateCmd = &cobra.Command{
	Use:   "negotiate <offer-per-mile>",
	Short: "Simulate a rate negotiation against a broker offer",
	Long: `Negotiate runs the counter-offer state machine from a broker's opening
offer, in dollars per mile. The opening counter is the offer raised by the
initial counter percentage. Each round concedes a bounded amount and never
drops below the absolute floor.

The negotiation accepts once the offer reaches the target, and at the round
limit accepts anything at or above the soft floor. Otherwise it walks away.

Example:
  dispatcher negotiate 1.80
  dispatcher negotiate 2.40 --target 2.90 --rounds 4 --json trace.json`,
	Args: cobra.ExactArgs(1),
	RunE: runNegotiate,
}

func init() {
	rootCmd.AddCommand(negotiateCmd)

	negotiateCmd.Flags().Float64Var(&negFloor, "floor", 0, "absolute floor per mile (default: negotiation.absolute_floor)")
	negotiateCmd.Flags().Float64Var(&negSoftFloor, "soft-floor", 0, "soft floor per mile (default: negotiation.soft_floor)")
	negotiateCmd.Flags().Float64Var(&negTarget, "target", 0, "target rate per mile (default: negotiation.target)")
	negotiateCmd.Flags().IntVar(&negRounds, "rounds", 0, "maximum rounds (default: negotiation.max_rounds)")
	negotiateCmd.Flags().Float64Var(&negInitialPct, "initial-pct", 0, "opening counter percentage (default: negotiation.initial_counter_pct)")
	negotiateCmd.Flags().Float64Var(&negConcession, "concession-pct", 0, "per-round concession percentage (default: negotiation.max_concession_pct)")
	negotiateCmd.Flags().StringVar(&negJSON, "json", "", "output JSON path (\"-\" for stdout)")
}

func runNegotiate(cmd *cobra.Command, args []string) error {
	offer, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return fmt.Errorf("parse offer %q: %w", args[0], err)
	}

	eng, cfg, err := newEngine(cmd.Context())
	if err != nil {
		return err
	}

	p := cfg.Negotiation
	flags := cmd.Flags()
	if flags.Changed("floor") {
		p.AbsoluteFloor = negFloor
	}
	if flags.Changed("soft-floor") {
		p.SoftFloor = negSoftFloor
	}
	if flags.Changed("target") {
		p.Target = negTarget
	}
	if flags.Changed("rounds") {
		p.MaxRounds = negRounds
	}
	if flags.Changed("initial-pct") {
		p.InitialCounterPct = negInitialPct
	}
	if flags.Changed("concession-pct") {
		p.MaxConcessionPct = negConcession
	}

	trace, err := eng.NegotiateWith(offer, p)
	if err != nil {
		return fmt.Errorf("negotiate: %w", err)
	}

	printBanner("Rate Negotiation")
	fmt.Fprintf(os.Stderr, "  Broker offer:  $%.2f/mile\n", offer)
	fmt.Fprintf(os.Stderr, "  Floor:         $%.2f/mile\n", p.AbsoluteFloor)
	fmt.Fprintf(os.Stderr, "  Soft floor:    $%.2f/mile\n", p.SoftFloor)
	fmt.Fprintf(os.Stderr, "  Target:        $%.2f/mile\n", p.Target)
	fmt.Fprintf(os.Stderr, "  Max rounds:    %d\n", p.MaxRounds)
	fmt.Fprintf(os.Stderr, "\n")

	for _, s := range trace {
		fmt.Printf("  round %d  $%.4f  %s", s.Round, s.CurrentOffer, s.Status)
		if s.Note != "" {
			fmt.Printf("  (%s)", s.Note)
		}
		fmt.Println()
	}

	last := trace[len(trace)-1]
	fmt.Println()
	fmt.Printf("Outcome: %s at $%.2f/mile after %d rounds\n", last.Status, last.CurrentOffer, last.Round)

	if negJSON != "" {
		return writeJSON(negJSON, trace)
	}
	return nil
}
