package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/ppiankov/dispatcher/internal/model"
	"github.com/ppiankov/dispatcher/internal/store"
)

const banner = "═══════════════════════════════════════════════════════════"

func printBanner(title string) {
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "%s\n", banner)
	fmt.Fprintf(os.Stderr, "  %s\n", title)
	fmt.Fprintf(os.Stderr, "%s\n", banner)
	fmt.Fprintf(os.Stderr, "\n")
}

// writeJSON writes v as indented JSON to path, or to stdout for "-"
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	data = append(data, '\n')

	if path == "-" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Fprintf(os.Stderr, "✓ Wrote %s\n", path)
	return nil
}

// openStore opens the configured store unless persistence is switched off
func openStore(ctx context.Context, cfg *model.Config, enabled bool) (store.Store, error) {
	if !enabled {
		return nil, nil
	}
	s, err := store.New(ctx, cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return s, nil
}

func statusMark(status model.ComplianceStatus) string {
	switch status {
	case model.StatusAllowed:
		return "✓"
	case model.StatusForbidden:
		return "✗"
	default:
		return "?"
	}
}
