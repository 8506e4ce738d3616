package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ppiankov/dispatcher/internal/model"
	"github.com/ppiankov/dispatcher/internal/store"
)

var storedDescription string

// storedCmd represents the stored command
var storedCmd = &cobra.Command{
	Use:   "stored",
	Short: "Read decisions saved with --save",
	Long: `Stored prints one saved decision as JSON. Lead scores come from
'dispatcher score --save', recommendations from 'dispatcher match --save' and
verdicts from either 'classify --save' or 'match --save'.

Example:
  dispatcher stored lead 6f1c2a4e-...
  dispatcher stored matches load-17
  dispatcher stored verdict "Frozen chicken" --description "palletized"`,
}

var storedLeadCmd = &cobra.Command{
	Use:   "lead <lead-id>",
	Short: "Show a lead's stored score",
	Args:  cobra.ExactArgs(1),
	RunE:  runStored(storedLead),
}

var storedMatchesCmd = &cobra.Command{
	Use:   "matches <load-id>",
	Short: "Show a load's stored recommendation",
	Args:  cobra.ExactArgs(1),
	RunE:  runStored(storedMatches),
}

var storedVerdictCmd = &cobra.Command{
	Use:   "verdict <commodity>",
	Short: "Show a commodity's stored compliance verdict",
	Args:  cobra.ExactArgs(1),
	RunE:  runStored(storedVerdict),
}

func init() {
	rootCmd.AddCommand(storedCmd)
	storedCmd.AddCommand(storedLeadCmd)
	storedCmd.AddCommand(storedMatchesCmd)
	storedCmd.AddCommand(storedVerdictCmd)

	storedVerdictCmd.Flags().StringVar(&storedDescription, "description", "", "commodity description the verdict was saved with")
}

type storedLookup func(ctx context.Context, st store.Store, key string) (any, error)

func runStored(lookup storedLookup) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
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

		v, err := lookup(ctx, st, args[0])
		if err != nil {
			return err
		}
		return writeJSON("-", v)
	}
}

func storedLead(ctx context.Context, st store.Store, id string) (any, error) {
	s, err := st.LeadScore(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("read lead score %s: %w", id, err)
	}
	return s, nil
}

func storedMatches(ctx context.Context, st store.Store, loadID string) (any, error) {
	rec, err := st.Matches(ctx, loadID)
	if err != nil {
		return nil, fmt.Errorf("read matches for load %s: %w", loadID, err)
	}
	return rec, nil
}

func storedVerdict(ctx context.Context, st store.Store, name string) (any, error) {
	c := model.CommodityRecord{Name: name, Description: storedDescription}
	v, err := st.Verdict(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("read verdict for %q: %w", name, err)
	}
	return v, nil
}
