package engine

import (
	"fmt"

	"wasteland-server/internal/balance"
	"wasteland-server/internal/domain"
	"wasteland-server/pkg/logger"
)

// Replay заново проигрывает журнал на свежей сессии.
// Каждое записанное действие было принято хостом, поэтому отказ при повторе означает расхождение.
func Replay(rs *domain.ReplaySession, bal *balance.Config) (*Session, error) {
	if bal == nil {
		bal = balance.Default()
	}
	if rs.Fingerprint != 0 && rs.Fingerprint != bal.Fingerprint() {
		return nil, fmt.Errorf("%w: journal %x, local %x", ErrBalanceMismatch, rs.Fingerprint, bal.Fingerprint())
	}

	s, err := NewSession(Config{
		Seed:      rs.Seed,
		Width:     rs.Width,
		Height:    rs.Height,
		Style:     rs.Style,
		SessionID: fmt.Sprintf("replay-%d", rs.Seed),
	}, bal)
	if err != nil {
		return nil, err
	}

	log := logger.For("replay").WithField("seed", rs.Seed)
	for _, act := range rs.Actions {
		if _, err := s.Apply(domain.Command{Action: act.Action, Payload: act.Payload}); err != nil {
			log.WithError(err).WithField("seq", act.Seq).Warn("Replay diverged")
			return s, fmt.Errorf("%w at #%d (%s): %v", ErrReplayDiverged, act.Seq, act.Action, err)
		}
	}
	log.WithField("actions", len(rs.Actions)).Info("Replay finished")
	return s, nil
}
