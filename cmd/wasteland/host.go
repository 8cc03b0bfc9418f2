package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"wasteland-server/internal/agent"
	"wasteland-server/internal/domain"
	"wasteland-server/internal/engine"
	"wasteland-server/internal/infrastructure/storage"
	"wasteland-server/internal/narrative"
	"wasteland-server/internal/network"
	"wasteland-server/internal/server"
	"wasteland-server/internal/version"
	"wasteland-server/pkg/logger"
)

var (
	flagPort      string
	flagWidth     int
	flagHeight    int
	flagStyle     string
	flagHostBot   bool
	flagReplayDir string
	flagNarrate   bool
)

var hostCmd = &cobra.Command{
	Use:   "host",
	Short: "Start an authoritative session and wait for one peer",
	Long: `Start the host: generate the world, listen for exactly one peer on /ws
and apply every action authoritatively. A second connection is refused.

Environment:
  WL_PORT         - listen port (overridden by --port)
  GEMINI_API_KEY  - enables the Gemini narrator together with --narrate

The journal of accepted actions is written to --replay-dir on exit.`,
	RunE: runHost,
}

func init() {
	hostCmd.Flags().StringVar(&flagPort, "port", envOr("WL_PORT", "8080"), "HTTP port")
	hostCmd.Flags().IntVar(&flagWidth, "width", 0, "Map width (0 = default)")
	hostCmd.Flags().IntVar(&flagHeight, "height", 0, "Map height (0 = default)")
	hostCmd.Flags().StringVar(&flagStyle, "style", string(domain.StyleOutdoor), "World style: outdoor | dungeon")
	hostCmd.Flags().BoolVar(&flagHostBot, "bot", false, "Let a bot play the host's character")
	hostCmd.Flags().StringVar(&flagReplayDir, "replay-dir", "replays", "Directory for replay journals")
	hostCmd.Flags().BoolVar(&flagNarrate, "narrate", false, "Attach narration to action results")
}

func runHost(cmd *cobra.Command, _ []string) error {
	logger.Log.Info(version.String())

	bal, err := loadBalance()
	if err != nil {
		return err
	}

	cfg := engine.NewConfig()
	if flagSeed != 0 {
		cfg.Seed = flagSeed
	}
	if flagWidth > 0 {
		cfg.Width = flagWidth
	}
	if flagHeight > 0 {
		cfg.Height = flagHeight
	}
	cfg.Style = domain.Style(flagStyle)

	session, err := engine.NewSession(cfg, bal)
	if err != nil {
		return err
	}
	logger.Log.WithFields(logrus.Fields{
		"seed":       cfg.Seed,
		"session_id": session.ID,
		"style":      cfg.Style,
	}).Info("Session created")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := network.HostOptions{}
	if flagNarrate {
		opts.Narrator = newNarrator(ctx)
	}

	slot := server.NewHostSlot()
	host := network.NewHost(session, slot, opts)
	srv := server.New(slot, host, flagPort)

	go func() {
		if err := srv.Run(ctx); err != nil {
			logger.Log.WithError(err).Error("HTTP server stopped")
			stop()
		}
	}()

	if flagHostBot {
		bot, err := agent.NewBot("host-bot", host, bal)
		if err != nil {
			return err
		}
		go func() {
			if err := bot.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Log.WithError(err).Warn("Bot stopped")
			}
		}()
	}

	runErr := host.Run(ctx)
	saveJournal(session)

	if errors.Is(runErr, context.Canceled) {
		logger.Log.Info("Done.")
		return nil
	}
	return runErr
}

func newNarrator(ctx context.Context) network.Narrator {
	key := os.Getenv("GEMINI_API_KEY")
	if key == "" {
		logger.Log.Info("GEMINI_API_KEY is not set, using plain narration")
		return narrative.Plain{}
	}
	g, err := narrative.NewGemini(ctx, key, "")
	if err != nil {
		logger.Log.WithError(err).Warn("Gemini narrator unavailable, using plain narration")
		return narrative.Plain{}
	}
	return g
}

func saveJournal(session *engine.Session) {
	journal := session.Journal()
	if len(journal.Actions) == 0 {
		return
	}
	path, err := storage.NewReplayService(flagReplayDir).Save(journal)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to save replay")
		return
	}
	logger.Log.WithField("path", path).Info("Replay written")
}
