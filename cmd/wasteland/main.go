// wasteland - хост и клиент симуляции выживания на двоих.
//
// Usage:
//
//	wasteland host            - Поднять сессию и ждать второго игрока
//	wasteland join            - Подключиться к хосту
//	wasteland gen             - Сгенерировать и нарисовать карту
//	wasteland replay <file>   - Проиграть журнал партии
//	wasteland version         - Информация о сборке
//
// Global flags:
//
//	--balance <path>  - Файл баланса (по умолчанию ~/.wasteland/configs/balance.yaml или встроенный)
//	--seed <value>    - Мастер-зерно (0 = случайное)
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"wasteland-server/internal/balance"
	"wasteland-server/pkg/logger"
)

var (
	// Global flags
	flagBalance string
	flagSeed    int64
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "wasteland",
	Short: "Wasteland - deterministic two-player survival simulation",
	Long: `Wasteland runs a host-authoritative survival simulation for two peers.

The host owns the game state; the joining peer rebuilds the world from the
seed and receives full state snapshots after every accepted action.

Examples:
  wasteland host --port 8080 --style outdoor
  wasteland join --addr ws://localhost:8080/ws --bot
  wasteland gen --seed 42 --style dungeon
  wasteland replay ./replays/replay_42_outdoor_1700000000.wlrp`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.Init()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagBalance, "balance", "", "Path to balance.yaml")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "Master seed (0 = random based on time)")

	rootCmd.AddCommand(hostCmd)
	rootCmd.AddCommand(joinCmd)
	rootCmd.AddCommand(genCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(versionCmd)
}

func loadBalance() (*balance.Config, error) {
	bal, err := balance.Load(flagBalance)
	if err != nil {
		return nil, fmt.Errorf("load balance: %w", err)
	}
	return bal, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
