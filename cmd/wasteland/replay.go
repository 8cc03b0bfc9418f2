package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"wasteland-server/internal/engine"
	"wasteland-server/internal/infrastructure/storage"
)

var replayCmd = &cobra.Command{
	Use:   "replay <file>",
	Short: "Re-simulate a saved journal",
	Long: `Rebuild the world from the journal's seed and apply every recorded
action in order. The result must match the recorded session; any rejected
action means the simulation diverged.`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

func runReplay(_ *cobra.Command, args []string) error {
	bal, err := loadBalance()
	if err != nil {
		return err
	}
	journal, err := storage.Load(args[0])
	if err != nil {
		return err
	}

	s, err := engine.Replay(journal, bal)
	if err != nil {
		return err
	}

	st := s.State
	fmt.Printf("seed=%d style=%s actions=%d\n", journal.Seed, journal.Style, len(journal.Actions))
	fmt.Printf("day %d %s tick %d | HP %d/%d infection %d supplies %d | phase %s\n",
		st.Day, st.TimeOfDay, st.Tick, st.HP, st.MaxHP, st.Infection, st.Supplies, st.Phase)
	fmt.Printf("inventory: %v\n", st.Inventory)
	return nil
}
