package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wasteland-server/pkg/api"
)

func withBuild(t *testing.T, date, commit, branch string) {
	t.Helper()
	oldDate, oldCommit, oldBranch := BuildDate, BuildCommit, BuildBranch
	t.Cleanup(func() { BuildDate, BuildCommit, BuildBranch = oldDate, oldCommit, oldBranch })
	BuildDate, BuildCommit, BuildBranch = date, commit, branch
}

func TestBuildNumber(t *testing.T) {
	tests := []struct {
		date    string
		want    int
		wantErr bool
	}{
		{date: "2026-10-01", want: 0},
		{date: "2026-10-19", want: 18},
		{date: "2028-10-01", want: 731}, // 2028 високосный
		{date: "2026-09-30", wantErr: true},
		{date: "19.10.2026", wantErr: true},
		{date: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			got, err := buildNumber(tt.date)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCurrent_Release(t *testing.T) {
	withBuild(t, "2026-10-19", "abc123", "main")

	info := Current()
	assert.False(t, info.Dev)
	assert.Equal(t, 18, info.Build)
	assert.Equal(t, api.ProtocolVersion, info.Protocol)
	assert.Equal(t, "wasteland/18 (protocol 1)", info.UserAgent)
	assert.Equal(t, info.UserAgent, UserAgent())
	assert.Equal(t, "wasteland build 18 (2026-10-19) commit abc123 on main, protocol v1", String())
}

func TestCurrent_DevBuild(t *testing.T) {
	withBuild(t, "", "", "")

	info := Current()
	assert.True(t, info.Dev)
	assert.Zero(t, info.Build)
	assert.Equal(t, "unknown", info.Commit)
	assert.Equal(t, "wasteland/dev (protocol 1)", info.UserAgent)
	assert.Equal(t, "wasteland dev build, protocol v1", String())
}
