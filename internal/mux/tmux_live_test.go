package mux

import (
	"context"
	"os/exec"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/timvw/pane-send/internal/model"
)

// startLiveTmux starts a private tmux server whose only pane runs cat.
// The test is skipped when tmux is not installed.
func startLiveTmux(t *testing.T, session string) *Tmux {
	t.Helper()
	if _, err := exec.LookPath("tmux"); err != nil {
		t.Skip("tmux not installed")
	}
	t.Setenv("TMUX", "")
	t.Setenv("TMUX_TMPDIR", t.TempDir())

	ctx := context.Background()
	_, err := ExecRunner{}.Run(ctx, Command{
		Name: "tmux",
		Args: []string{"-f", "/dev/null", "new-session", "-d", "-s", session, "-x", "200", "-y", "50", "cat"},
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = ExecRunner{}.Run(context.Background(), Command{Name: "tmux", Args: []string{"kill-server"}})
	})
	return NewTmux()
}

func capturePane(tm *Tmux, target model.Target) []string {
	out, err := tm.query(context.Background(), "capture-pane", "-p", "-t", target.String())
	if err != nil {
		return nil
	}
	return strings.Split(out, "\n")
}

func TestLiveSendLiteralReachesPane(t *testing.T) {
	tm := startLiveTmux(t, "live")
	ctx := context.Background()
	target := model.Target{Session: "live", Window: "0", Pane: "0"}

	lines := []string{
		"it's",
		"  leading spaces",
		"int x = 1;",
		";",
		`a\;`,
		"--flag -l",
		`echo "$(whoami)" | wc`,
	}
	for _, line := range lines {
		require.NoError(t, tm.SendLiteral(ctx, target, line))
		require.NoError(t, tm.SendKey(ctx, target, "Enter"))
	}

	require.Eventually(t, func() bool {
		rows := capturePane(tm, target)
		for _, line := range lines {
			if !slices.Contains(rows, line) {
				return false
			}
		}
		return true
	}, 5*time.Second, 50*time.Millisecond)
}

func TestLiveExists(t *testing.T) {
	tm := startLiveTmux(t, "live")
	ctx := context.Background()

	require.True(t, tm.Exists(ctx, model.Target{Session: "live"}))
	require.True(t, tm.Exists(ctx, model.Target{Session: "live", Window: "0", Pane: "0"}))
	require.False(t, tm.Exists(ctx, model.Target{Session: "live", Window: "9"}))
	require.False(t, tm.Exists(ctx, model.Target{Session: "live", Window: "0", Pane: "7"}))
	require.False(t, tm.Exists(ctx, model.Target{Session: "ghost"}))
}

