package commands

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/isomerc/nicotine/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandAliases(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"f"}, "forward"},
		{[]string{"cycle-forward"}, "forward"},
		{[]string{"b"}, "backward"},
		{[]string{"cycle-backward"}, "backward"},
		{[]string{"switch", "2"}, "switch"},
		{[]string{"config", "show"}, "show"},
		{[]string{"init-config"}, "init-config"},
	}

	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			cmd, _, err := rootCmd.Find(tt.args)
			require.NoError(t, err)
			assert.Equal(t, tt.want, cmd.Name())
		})
	}
}

func TestSwitchRejectsInvalidNumber(t *testing.T) {
	assert.Error(t, runSwitch(switchCmd, []string{"0"}))
	assert.Error(t, runSwitch(switchCmd, []string{"two"}))
}

func TestFindProcessesExcludesSelf(t *testing.T) {
	comm, err := os.ReadFile(filepath.Join("/proc", "self", "comm"))
	if err != nil {
		t.Skip("no /proc")
	}

	self := os.Getpid()
	for _, pid := range findProcesses(strings.TrimSpace(string(comm))) {
		assert.NotEqual(t, self, pid)
	}
}

func TestWaitForSocket(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "present")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	assert.True(t, waitForSocket(path, 100*time.Millisecond))
	assert.False(t, waitForSocket(filepath.Join(dir, "missing"), 100*time.Millisecond))
}

func TestRefreshWithoutDaemon(t *testing.T) {
	sock := filepath.Join(t.TempDir(), "nicotine.sock")
	assert.NoError(t, requestRefresh(sock))
}

func TestDaemonLogsToFile(t *testing.T) {
	t.Cleanup(func() { logger.Init("info", false) })
	path := filepath.Join(t.TempDir(), "nicotine.log")
	require.NoError(t, os.WriteFile(path, []byte("earlier run\n"), 0644))

	f, err := logToFile(path, "info", false)
	require.NoError(t, err)
	logger.WithComponent("daemon").Info().Msg("Daemon listening")
	require.NoError(t, f.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "earlier run\n"))
	assert.Contains(t, string(data), `"component":"daemon"`)
	assert.Contains(t, string(data), "Daemon listening")
}

func TestDaemonLogFileFlag(t *testing.T) {
	assert.NotNil(t, daemonCmd.Flags().Lookup("log-file"))
}
