package scpi

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSendOnce_UDP(t *testing.T) {
	require := require.New(t)

	recv, port := newUDPReceiver(t)

	n, err := SendOnce(context.Background(), newTestConfig(t, UnicastUDP, port), testMessage)
	require.NoError(err)
	require.Equal(len("*IDN?")+2, n)
	require.Equal(testFrame, readDatagram(t, recv))
}

func TestSendOnce_TCP(t *testing.T) {
	require := require.New(t)

	recv, port := newTCPReceiver(t)

	n, err := SendOnce(context.Background(), newTestConfig(t, UnicastTCP, port), testMessage)
	require.NoError(err)
	require.Equal(len(testFrame), n)
	require.Equal(testFrame, recv.next(t))
}

func TestSendOnce_Errors(t *testing.T) {
	require := require.New(t)

	cfg := newTestConfig(t, MulticastTCP, 5025)
	_, err := SendOnce(context.Background(), cfg, testMessage)
	require.ErrorIs(err, ErrUnsupportedMode)

	_, err = SendOnce(context.Background(), cfg, "A\r\nB")
	require.ErrorIs(err, ErrInvalidMessage)

	_, err = SendOnce(context.Background(), nil, testMessage)
	require.ErrorIs(err, ErrSessionConfigNil)
}

func TestSendList_TCP(t *testing.T) {
	require := require.New(t)

	recv, port := newTCPReceiver(t)

	err := SendList(context.Background(), newTestConfig(t, UnicastTCP, port), []string{"*RST", " *CLS", "*IDN? "})
	require.NoError(err)
	require.Equal("*RST\r\n", recv.next(t))
	require.Equal("*CLS\r\n", recv.next(t))
	require.Equal("*IDN?\r\n", recv.next(t))
}

func TestSendList_FailFastOnInvalidMessage(t *testing.T) {
	require := require.New(t)

	recv, port := newTCPReceiver(t)

	err := SendList(context.Background(), newTestConfig(t, UnicastTCP, port), []string{"A", "B\nB", "C"})
	var msgErr *MessageError
	require.ErrorAs(err, &msgErr)
	require.Equal(2, msgErr.Index)
	require.ErrorIs(err, ErrInvalidMessage)

	require.Equal("A\r\n", recv.next(t))
	_, more := <-recv.lines
	require.False(more, "C must not be sent")
}

func TestSendRepeated_UDPCount(t *testing.T) {
	require := require.New(t)

	recv, port := newUDPReceiver(t)
	cfg := newTestConfig(t, UnicastUDP, port)

	n, err := SendRepeated(context.Background(), cfg, testMessage, Times(5))
	require.NoError(err)
	require.Equal(len(testFrame), n)

	for range 5 {
		require.Equal(testFrame, readDatagram(t, recv))
	}

	// nothing beyond the fifth datagram
	require.NoError(recv.SetReadDeadline(time.Now().Add(100 * time.Millisecond)))
	_, _, err = recv.ReadFromUDP(make([]byte, 64))
	var netErr net.Error
	require.True(errors.As(err, &netErr) && netErr.Timeout())
}

func TestSendRepeated_Zero(t *testing.T) {
	require := require.New(t)

	recv, port := newUDPReceiver(t)

	n, err := SendRepeated(context.Background(), newTestConfig(t, UnicastUDP, port), testMessage, Times(0))
	require.NoError(err)
	require.Zero(n)

	require.NoError(recv.SetReadDeadline(time.Now().Add(100 * time.Millisecond)))
	_, _, err = recv.ReadFromUDP(make([]byte, 64))
	require.Error(err)
}

func TestSendRepeated_ValidatesBeforeSocket(t *testing.T) {
	require := require.New(t)

	// MulticastTCP would fail with ErrUnsupportedMode if a socket were attempted
	cfg := newTestConfig(t, MulticastTCP, 5025)

	_, err := SendRepeated(context.Background(), cfg, testMessage, Times(-3))
	require.ErrorIs(err, ErrInvalidRepetition)
	require.NotErrorIs(err, ErrUnsupportedMode)

	_, err = SendRepeated(context.Background(), cfg, "A\nB", Times(1))
	require.ErrorIs(err, ErrInvalidMessage)

	_, err = SendRepeated(context.Background(), cfg, testMessage, Forever())
	require.ErrorIs(err, ErrUnsupportedMode)
}

func TestSendRepeated_ForeverUntilDeadline(t *testing.T) {
	require := require.New(t)

	recv, port := newUDPReceiver(t)

	ctx := withTimeout(t, 20*time.Millisecond)
	n, err := SendRepeated(ctx, newTestConfig(t, UnicastUDP, port), testMessage, Forever())
	require.ErrorIs(err, context.DeadlineExceeded)
	require.Equal(len(testFrame), n)
	require.Equal(testFrame, readDatagram(t, recv))
}

func TestSendDutyCycled_UDP(t *testing.T) {
	require := require.New(t)

	recv, port := newUDPReceiver(t)
	cfg := newTestConfig(t, UnicastUDP, port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- SendDutyCycled(ctx, cfg, NewDutyCycle("OUTP ON", "OUTP OFF", 1000, 2000))
	}()

	for i := range 6 {
		want := "OUTP ON\r\n"
		if i%2 == 1 {
			want = "OUTP OFF\r\n"
		}
		require.Equal(want, readDatagram(t, recv))
	}

	cancel()
	select {
	case err := <-errCh:
		require.ErrorIs(err, context.Canceled)
	case <-time.After(2 * time.Second):
		require.FailNow("duty cycle did not stop after cancel")
	}
}

func TestSendDutyCycled_ConstructionError(t *testing.T) {
	require := require.New(t)

	cfg, err := NewSessionConfig(MulticastUDP, "ff02::1", 5025, 0)
	require.NoError(err)

	err = SendDutyCycled(context.Background(), cfg, NewDutyCycle("A", "B", 1, 1))
	require.ErrorIs(err, ErrUnsupportedAddressFamily)
}
