package main

import (
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/statarb/pairscan/internal/checkpoint"
)

func newCheckpointCmd() *cobra.Command {
	var (
		flagCheckpoint string
		flagDiscard    bool
	)

	cmd := &cobra.Command{
		Use:   "checkpoint",
		Short: "Inspect or discard a scan checkpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			store := checkpoint.NewStore(flagCheckpoint)

			if flagDiscard {
				if err := store.Discard(); err != nil {
					return fmt.Errorf("discard checkpoint: %w", err)
				}
				fmt.Printf("checkpoint %s discarded\n", flagCheckpoint)
				return nil
			}

			ck, err := store.Load()
			if errors.Is(err, checkpoint.ErrCorrupt) {
				return fmt.Errorf("%w (use --discard to remove it)", err)
			}
			if err != nil {
				return err
			}
			if ck == nil {
				fmt.Printf("no checkpoint at %s\n", flagCheckpoint)
				return nil
			}

			printCheckpoint(ck)
			return nil
		},
	}

	cmd.Flags().StringVar(&flagCheckpoint, "checkpoint", "pairscan_checkpoint.json", "checkpoint file path")
	cmd.Flags().BoolVar(&flagDiscard, "discard", false, "delete the checkpoint instead of inspecting it")
	return cmd
}

func printCheckpoint(ck *checkpoint.Checkpoint) {
	fmt.Printf("run id:       %s\n", ck.RunID)
	fmt.Printf("status:       %s\n", ck.Status)
	fmt.Printf("processed:    %d / %d\n", len(ck.Processed), ck.TotalPairs)
	fmt.Printf("chunk cursor: %d\n", ck.ChunkCursor)
	fmt.Printf("scored:       %d\n", len(ck.Scored))
	fmt.Printf("created:      %s\n", ck.CreatedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Printf("updated:      %s\n", ck.UpdatedAt.Format("2006-01-02 15:04:05 MST"))

	if len(ck.Excluded) > 0 {
		fmt.Println("exclusions:")
		reasons := make([]string, 0, len(ck.Excluded))
		for r := range ck.Excluded {
			reasons = append(reasons, r)
		}
		sort.Strings(reasons)
		for _, r := range reasons {
			fmt.Printf("  %-28s %d\n", r, ck.Excluded[r])
		}
	}
}
