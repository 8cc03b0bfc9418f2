// Package version описывает сборку и версию протокола синхронизации.
// Значения Build* подставляются линкером: -ldflags "-X wasteland-server/internal/version.BuildDate=...".
package version

import (
	"fmt"
	"time"

	"wasteland-server/pkg/api"
)

var (
	BuildDate   string // YYYY-MM-DD (UTC)
	BuildCommit string
	BuildBranch string
)

// Номер сборки - дни от первого релиза симуляции.
var releaseEpoch = time.Date(2026, time.October, 1, 0, 0, 0, 0, time.UTC)

// Info - то, что отдает /version и печатает `wasteland version`.
type Info struct {
	Build     int    `json:"build"`
	BuildDate string `json:"buildDate,omitempty"`
	Commit    string `json:"commit"`
	Branch    string `json:"branch"`
	Protocol  int    `json:"protocol"`
	UserAgent string `json:"userAgent"`
	Dev       bool   `json:"dev"`
}

func buildNumber(date string) (int, error) {
	if date == "" {
		return 0, fmt.Errorf("build date is not set")
	}
	t, err := time.ParseInLocation("2006-01-02", date, time.UTC)
	if err != nil {
		return 0, fmt.Errorf("invalid build date %q: %w", date, err)
	}
	if t.Before(releaseEpoch) {
		return 0, fmt.Errorf("build date %s is before %s", date, releaseEpoch.Format("2006-01-02"))
	}
	return int(t.Sub(releaseEpoch).Hours() / 24), nil
}

// Current собирает сведения о текущей сборке. Сборка без даты считается dev.
func Current() Info {
	info := Info{
		BuildDate: BuildDate,
		Commit:    coalesce(BuildCommit, "unknown"),
		Branch:    coalesce(BuildBranch, "unknown"),
		Protocol:  api.ProtocolVersion,
	}
	n, err := buildNumber(BuildDate)
	if err != nil {
		info.Dev = true
	} else {
		info.Build = n
	}
	info.UserAgent = userAgent(info)
	return info
}

// UserAgent - заголовок, с которым клиент открывает WebSocket к хосту.
func UserAgent() string {
	return Current().UserAgent
}

func userAgent(info Info) string {
	build := "dev"
	if !info.Dev {
		build = fmt.Sprintf("%d", info.Build)
	}
	return fmt.Sprintf("wasteland/%s (protocol %d)", build, info.Protocol)
}

// String - строка для логов и `wasteland version`.
func String() string {
	info := Current()
	if info.Dev {
		return fmt.Sprintf("wasteland dev build, protocol v%d", info.Protocol)
	}
	return fmt.Sprintf("wasteland build %d (%s) commit %s on %s, protocol v%d",
		info.Build, info.BuildDate, info.Commit, info.Branch, info.Protocol)
}

func coalesce(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
