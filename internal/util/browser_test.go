package util

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBrowserCommand(t *testing.T) {
	t.Parallel()

	name, args := browserCommand("windows", "http://localhost:20262")
	assert.Equal(t, "rundll32", name)
	assert.Equal(t, []string{"url.dll,FileProtocolHandler", "http://localhost:20262"}, args)

	name, _ = browserCommand("darwin", "http://localhost:20262")
	assert.Equal(t, "open", name)

	name, _ = browserCommand("linux", "http://localhost:20262")
	assert.Equal(t, "xdg-open", name)
}

func TestFindAvailablePort_SkipsBusyPort(t *testing.T) {
	t.Parallel()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	busy := ln.Addr().(*net.TCPAddr).Port

	port, err := FindAvailablePort(busy, 20)
	require.NoError(t, err)
	assert.NotEqual(t, busy, port)
	assert.Greater(t, port, busy)
}
