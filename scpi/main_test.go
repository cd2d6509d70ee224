package scpi

import (
	"bufio"
	"context"
	"net"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/arloliu/go-scpi/logger"
	"github.com/stretchr/testify/require"
)

const (
	testIP      = "127.0.0.1"
	testMessage = "  *IDN?  "
	testFrame   = "*IDN?\r\n"
)

func TestMain(m *testing.M) {
	level, _ := logger.ParseLevel(os.Getenv("LOG_LEVEL"))
	logger.SetLevel(level)

	os.Exit(m.Run())
}

// newUDPReceiver listens on an ephemeral loopback port.
func newUDPReceiver(t *testing.T) (*net.UDPConn, int) {
	t.Helper()

	conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.ParseIP(testIP)})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return conn, conn.LocalAddr().(*net.UDPAddr).Port
}

func readDatagram(t *testing.T, conn *net.UDPConn) string {
	t.Helper()

	buf := make([]byte, 2048)
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	n, _, err := conn.ReadFromUDP(buf)
	require.NoError(t, err)

	return string(buf[:n])
}

// tcpReceiver accepts one connection and collects CRLF terminated lines.
type tcpReceiver struct {
	ln    net.Listener
	lines chan string
	wg    sync.WaitGroup
}

func newTCPReceiver(t *testing.T) (*tcpReceiver, int) {
	t.Helper()

	ln, err := net.Listen("tcp4", net.JoinHostPort(testIP, "0"))
	require.NoError(t, err)

	r := &tcpReceiver{ln: ln, lines: make(chan string, 128)}
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer close(r.lines)

		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		reader := bufio.NewReader(conn)
		for {
			line, err := reader.ReadString('\n')
			if err != nil {
				return
			}
			r.lines <- line
		}
	}()

	t.Cleanup(func() {
		_ = ln.Close()
		r.wg.Wait()
	})

	return r, ln.Addr().(*net.TCPAddr).Port
}

func (r *tcpReceiver) next(t *testing.T) string {
	t.Helper()

	select {
	case line, ok := <-r.lines:
		require.True(t, ok, "connection closed before a line was received")
		return line
	case <-time.After(2 * time.Second):
		require.FailNow(t, "timeout waiting for line")
		return ""
	}
}

// fakeTransport records every frame with the time Write was called.
type fakeTransport struct {
	mu     sync.Mutex
	kind   Kind
	frames []string
	stamps []time.Time
	// failAt makes the n-th write (1-based) fail; zero never fails.
	failAt int
	// afterWrite runs after each successful write with the number of frames so far.
	afterWrite func(count int)
	closed     bool
}

var errRejected = &net.OpError{Op: "write", Net: "fake", Err: os.ErrPermission}

func (f *fakeTransport) Kind() Kind { return f.kind }

func (f *fakeTransport) Write(frame []byte) (int, error) {
	now := time.Now()

	f.mu.Lock()
	if f.failAt > 0 && len(f.frames)+1 == f.failAt {
		f.mu.Unlock()
		return 0, errRejected
	}
	f.frames = append(f.frames, string(frame))
	f.stamps = append(f.stamps, now)
	count := len(f.frames)
	f.mu.Unlock()

	if f.afterWrite != nil {
		f.afterWrite(count)
	}

	return len(frame), nil
}

func (f *fakeTransport) LocalAddr() net.Addr { return &net.UDPAddr{IP: net.IPv4zero} }

func (f *fakeTransport) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true

	return nil
}

func (f *fakeTransport) sent() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]string(nil), f.frames...)
}

func newFakeSession(t *testing.T, tr *fakeTransport, opts ...SessionOption) *Session {
	t.Helper()

	cfg, err := NewSessionConfig(UnicastUDP, testIP, 5025, 0, opts...)
	require.NoError(t, err)

	return newSession(cfg, tr)
}

func newTestConfig(t *testing.T, mode Mode, port int, opts ...SessionOption) *SessionConfig {
	t.Helper()

	cfg, err := NewSessionConfig(mode, testIP, port, 0, opts...)
	require.NoError(t, err)

	return cfg
}

func withTimeout(t *testing.T, d time.Duration) context.Context {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), d)
	t.Cleanup(cancel)

	return ctx
}
