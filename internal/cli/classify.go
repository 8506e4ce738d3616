package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ppiankov/dispatcher/internal/ingest"
	"github.com/ppiankov/dispatcher/internal/logger"
	"github.com/ppiankov/dispatcher/internal/model"
)

var (
	classifyDescription string
	classifyLoads       string
	classifyJSON        string
	classifySave        bool
)

// classifyCmd represents the classify command
var classifyCmd = &cobra.Command{
	Use:   "classify [commodity]",
	Short: "Classify a commodity or a file of loads against the compliance tables",
	Long: `Classify checks commodity text against the forbidden, review and allowed
term tables. Forbidden terms win over review terms, which win over allowed
terms. Text matching no table needs human review.

Example:
  dispatcher classify "Wine shipment, 500 cases"
  dispatcher classify "Pallets" --description "mixed consumer goods"
  dispatcher classify --loads loads.yaml --json verdicts.json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runClassify,
}

func init() {
	rootCmd.AddCommand(classifyCmd)

	classifyCmd.Flags().StringVar(&classifyDescription, "description", "", "commodity description searched with the name")
	classifyCmd.Flags().StringVar(&classifyLoads, "loads", "", "YAML or JSON file of loads to classify")
	classifyCmd.Flags().StringVar(&classifyJSON, "json", "", "output JSON path (\"-\" for stdout)")
	classifyCmd.Flags().BoolVar(&classifySave, "save", false, "persist verdicts to the configured store")
}

type loadVerdict struct {
	LoadID    string                  `json:"load_id"`
	Commodity model.CommodityRecord   `json:"commodity"`
	Verdict   model.ComplianceVerdict `json:"verdict"`
}

func runClassify(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if classifyLoads == "" && len(args) == 0 {
		return fmt.Errorf("provide a commodity or --loads file")
	}

	eng, cfg, err := newEngine(ctx)
	if err != nil {
		return err
	}
	st, err := openStore(ctx, cfg, classifySave)
	if err != nil {
		return err
	}
	if st != nil {
		defer st.Close()
	}

	var commodities []model.CommodityRecord
	var ids []string
	if len(args) == 1 {
		commodities = append(commodities, model.CommodityRecord{Name: args[0], Description: classifyDescription})
		ids = append(ids, "")
	}
	var loads []model.LoadRecord
	if classifyLoads != "" {
		loads, err = ingest.New().LoadLoads(classifyLoads)
		if err != nil {
			return fmt.Errorf("load loads: %w", err)
		}
		for _, l := range loads {
			commodities = append(commodities, l.Commodity)
			ids = append(ids, l.ID)
		}
	}

	results := make([]loadVerdict, 0, len(commodities))
	for i, c := range commodities {
		v := eng.Classify(c)
		results = append(results, loadVerdict{LoadID: ids[i], Commodity: c, Verdict: v})

		label := c.Name
		if ids[i] != "" {
			label = ids[i] + " " + c.Name
		}
		fmt.Printf("%s %-14s %s\n", statusMark(v.Status), v.Status, strings.TrimSpace(label))
		if verbose || v.Status != model.StatusAllowed {
			fmt.Printf("    %s\n", v.Reason)
		}

		if st != nil {
			if err := st.SaveVerdict(ctx, c, v); err != nil {
				logger.Warn(ctx, "save verdict failed", "commodity", c.Name, "error", err)
			}
		}
	}

	if len(loads) > 0 {
		stats := eng.LoadStats(loads)
		printBanner("Compliance Summary")
		fmt.Fprintf(os.Stderr, "  Loads:      %d\n", stats.Total)
		fmt.Fprintf(os.Stderr, "  Allowed:    %d (%.1f%%)\n", stats.Allowed, stats.AllowedRate*100)
		fmt.Fprintf(os.Stderr, "  Forbidden:  %d (%.1f%%)\n", stats.Forbidden, stats.RejectionRate*100)
		fmt.Fprintf(os.Stderr, "  Review:     %d\n", stats.ReviewNeeded)
		fmt.Fprintf(os.Stderr, "\n")
	}

	if classifyJSON != "" {
		return writeJSON(classifyJSON, results)
	}
	return nil
}
