package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"wasteland-server/internal/agent"
	"wasteland-server/internal/network"
	"wasteland-server/internal/server"
	"wasteland-server/pkg/api"
	"wasteland-server/pkg/logger"
)

var (
	flagAddr    string
	flagName    string
	flagJoinBot bool
	flagMoves   int
)

var joinCmd = &cobra.Command{
	Use:   "join",
	Short: "Connect to a host as the second peer",
	Long: `Connect to a running host. The world is rebuilt locally from the seed
sent in the handshake. Without --bot the command prints what happens
in the session; with --bot an autopilot plays.

Connection failures are reported and not retried.`,
	RunE: runJoin,
}

func init() {
	joinCmd.Flags().StringVar(&flagAddr, "addr", "ws://localhost:"+envOr("WL_PORT", "8080")+"/ws", "Host WebSocket address")
	joinCmd.Flags().StringVar(&flagName, "name", "", "Player name")
	joinCmd.Flags().BoolVar(&flagJoinBot, "bot", false, "Play with the autopilot")
	joinCmd.Flags().IntVar(&flagMoves, "moves", 0, "Bot action limit (0 = unlimited)")
}

func runJoin(cmd *cobra.Command, _ []string) error {
	bal, err := loadBalance()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := network.Join(ctx, server.NewDialTransport(flagAddr), bal, network.ClientOptions{Name: flagName})
	if err != nil {
		return err
	}

	runErr := make(chan error, 1)
	go func() { runErr <- client.Run(ctx) }()

	if flagJoinBot {
		bot, err := agent.NewBot("join-bot", client, bal)
		if err != nil {
			return err
		}
		bot.MaxActions = flagMoves
		if err := bot.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		stop()
		return ignoreCanceled(<-runErr)
	}

	updates := client.Updates("console")
	for {
		select {
		case err := <-runErr:
			return ignoreCanceled(err)
		case u, ok := <-updates:
			if !ok {
				return ignoreCanceled(<-runErr)
			}
			printUpdate(u)
		}
	}
}

func printUpdate(u network.Update) {
	switch u.Type {
	case api.TypeActionResult:
		if u.Narration != "" {
			fmt.Println(u.Narration)
			return
		}
		for _, ev := range u.Events {
			if ev.Text != "" {
				fmt.Println(ev.Text)
			}
		}
	case api.TypeActionReject:
		fmt.Printf("Отказ (%s): %s\n", u.Reason, u.Message)
	case api.TypeCombatStart:
		fmt.Println("== Бой ==")
	case api.TypeCombatEnd:
		if u.Combat != nil {
			fmt.Printf("== Бой окончен: %s, раундов %d ==\n", u.Combat.Outcome, u.Combat.Rounds)
		}
	case api.TypeStateSync:
		if u.State != nil {
			s := u.State.State
			fmt.Printf("[день %d, %s] HP %d/%d, заражение %d, припасы %d\n",
				s.Day, s.TimeOfDay, s.HP, s.MaxHP, s.Infection, s.Supplies)
		}
	case api.TypeError:
		logger.Log.WithField("code", u.Reason).Warn(u.Message)
	}
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
