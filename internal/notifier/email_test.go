package notifier

import (
	"context"
	"io"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmailChannel_StalledServerFailsWithinTimeout(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	// Accept the connection but never send the SMTP greeting.
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		io.Copy(io.Discard, conn)
	}()

	host, portStr, err := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	ch := NewEmailChannel(host, port, "", "", "alerts@example.com", []string{"ops@example.com"}, true)
	ch.Timeout = 200 * time.Millisecond

	start := time.Now()
	err = ch.Send(context.Background(), alertMessage())

	require.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second,
		"a stalled server must trip the connection deadline, not hang")
}
