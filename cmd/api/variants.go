package main

import (
	"context"
	"fmt"
	"io"

	"github.com/abduss/blogd/internal/asset"
	"github.com/abduss/blogd/internal/storage"
	"github.com/spf13/cobra"
)

var regenerateAll bool

var variantsCmd = &cobra.Command{
	Use:   "variants",
	Short: "Inspect and repair derived image variants",
}

var variantsCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "List assets whose resized or thumbnail variant is missing",
	RunE: func(cmd *cobra.Command, args []string) error {
		images, err := storage.OpenImages(cmd.Context(), cfg, log)
		if err != nil {
			return err
		}
		incomplete, err := checkVariants(cmd.OutOrStdout(), images.Lifecycle)
		if err != nil {
			return err
		}
		if incomplete > 0 {
			return fmt.Errorf("%d asset(s) missing variants", incomplete)
		}
		return nil
	},
}

var variantsRegenerateCmd = &cobra.Command{
	Use:   "regenerate [name...]",
	Short: "Re-derive missing variants from the stored originals",
	Long: "Re-derive the resized and thumbnail variants of the named assets, or of every\n" +
		"asset with a missing variant when no names are given. --all regenerates every asset.",
	RunE: func(cmd *cobra.Command, args []string) error {
		images, err := storage.OpenImages(cmd.Context(), cfg, log)
		if err != nil {
			return err
		}
		return regenerateVariants(cmd.Context(), cmd.OutOrStdout(), images.Lifecycle, args, regenerateAll)
	},
}

func init() {
	variantsRegenerateCmd.Flags().BoolVar(&regenerateAll, "all", false, "regenerate every asset, not only incomplete ones")
	variantsCmd.AddCommand(variantsCheckCmd)
	variantsCmd.AddCommand(variantsRegenerateCmd)
}

// checkVariants prints one line per incomplete asset and returns how many there were.
func checkVariants(w io.Writer, lc *asset.Lifecycle) (int, error) {
	names, err := lc.Store().ListAssets()
	if err != nil {
		return 0, err
	}

	incomplete := 0
	for _, name := range names {
		report, err := lc.Inspect(name)
		if err != nil {
			fmt.Fprintf(w, "%s\tinvalid name: %v\n", name, err)
			incomplete++
			continue
		}
		if absent := report.Absent(); len(absent) > 0 {
			fmt.Fprintf(w, "%s\tmissing %v\n", name, absent)
			incomplete++
		}
	}
	fmt.Fprintf(w, "%d asset(s) checked, %d incomplete\n", len(names), incomplete)
	return incomplete, nil
}

func regenerateVariants(ctx context.Context, w io.Writer, lc *asset.Lifecycle, names []string, all bool) error {
	explicit := len(names) > 0
	if !explicit {
		listed, err := lc.Store().ListAssets()
		if err != nil {
			return err
		}
		names = listed
	}

	failed := 0
	for _, name := range names {
		if !explicit && !all {
			report, err := lc.Inspect(name)
			if err != nil || len(report.Absent()) == 0 {
				continue
			}
		}

		generated, err := lc.Regenerate(ctx, name)
		if err != nil {
			fmt.Fprintf(w, "%s\tfailed: %v\n", name, err)
			failed++
			continue
		}
		fmt.Fprintf(w, "%s\tregenerated %s, %s\n", name, generated.Resized.Path, generated.Thumbnail.Path)
	}

	if failed > 0 {
		return fmt.Errorf("%d asset(s) could not be regenerated", failed)
	}
	return nil
}
