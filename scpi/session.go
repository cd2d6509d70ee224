package scpi

import (
	"context"
	"net"
	"net/netip"
	"sync/atomic"
	"time"

	"github.com/arloliu/go-scpi/internal/spin"
	"github.com/arloliu/go-scpi/logger"
)

// Session couples one transport with a fixed destination. All sends on a session reuse
// the same socket.
//
// A Session is not safe for concurrent sends. Close may be called from another
// goroutine; a loop running on the session then stops with ErrSessionClosed or ErrIO.
type Session struct {
	cfg     *SessionConfig
	dst     netip.AddrPort
	tr      transport
	logger  logger.Logger
	metrics *SessionMetrics
	closed  atomic.Bool
}

// NewSession establishes the transport described by cfg and returns a Session owning it.
//
// UnicastUDP and MulticastUDP bind the wildcard address to the configured local port,
// MulticastUDP then joins the destination group. UnicastTCP connects to the destination
// and blocks until connected, the connect timeout expires or ctx is done.
// MulticastTCP always fails with ErrUnsupportedMode.
func NewSession(ctx context.Context, cfg *SessionConfig) (*Session, error) {
	if cfg == nil {
		return nil, ErrSessionConfigNil
	}

	tr, err := openTransport(ctx, cfg)
	if err != nil {
		cfg.logger.Debug("failed to establish transport",
			"mode", cfg.mode, "remote", cfg.Destination(), "local_port", cfg.localPort, "error", err)

		return nil, err
	}

	s := newSession(cfg, tr)
	s.logger.Debug("session established", "local_addr", tr.LocalAddr().String())

	return s, nil
}

func newSession(cfg *SessionConfig, tr transport) *Session {
	return &Session{
		cfg:     cfg,
		dst:     cfg.Destination(),
		tr:      tr,
		logger:  cfg.logger.With("mode", cfg.mode.String(), "remote", cfg.Destination().String()),
		metrics: newSessionMetrics(),
	}
}

// Mode returns the mode the session was created with.
func (s *Session) Mode() Mode {
	return s.cfg.mode
}

// Kind returns the transport variant of the session.
func (s *Session) Kind() Kind {
	return s.tr.Kind()
}

// Destination returns the remote address and port.
func (s *Session) Destination() netip.AddrPort {
	return s.dst
}

// LocalAddr returns the local address of the socket.
func (s *Session) LocalAddr() net.Addr {
	return s.tr.LocalAddr()
}

// Metrics returns the counters of the session.
func (s *Session) Metrics() *SessionMetrics {
	return s.metrics
}

// Close releases the socket. It is safe to call Close multiple times.
func (s *Session) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}

	s.logger.Debug("session closed",
		"sent", s.metrics.MsgSendCount.Value(), "errors", s.metrics.MsgErrCount.Value())

	return s.tr.Close()
}

// Send frames message and writes it to the destination.
//
// It returns the number of bytes transmitted, which equals the framed length:
// the trimmed message plus the two terminator bytes.
func (s *Session) Send(message string) (int, error) {
	frame, err := Frame(message)
	if err != nil {
		return 0, err
	}

	return s.write(frame)
}

// SendList sends messages in order and stops at the first failure, which is returned
// as a *MessageError. Messages sent before the failure are not rolled back.
func (s *Session) SendList(messages []string) error {
	for i, msg := range messages {
		if _, err := s.Send(msg); err != nil {
			return &MessageError{Index: i + 1, Message: msg, Err: err}
		}
	}

	return nil
}

// SendRepeated sends message according to rep and returns the byte count of the last
// successful send, zero when nothing was sent.
//
// A Forever repetition only returns when a send fails or ctx is done. There is no delay
// between sends beyond the transport's own latency.
func (s *Session) SendRepeated(ctx context.Context, message string, rep Repetition) (int, error) {
	if err := rep.validate(); err != nil {
		return 0, err
	}

	frame, err := Frame(message)
	if err != nil {
		return 0, err
	}

	done := ctx.Done()
	last := 0
	for i := 0; rep.infinite || i < rep.count; i++ {
		select {
		case <-done:
			return last, ctx.Err()
		default:
		}

		n, err := s.write(frame)
		if err != nil {
			s.logger.Error("repeated send aborted", "sent", i, "repetition", rep, "error", err)
			return last, err
		}
		last = n
	}

	return last, nil
}

// SendDutyCycled alternates between the two messages of dc: it sends the first message,
// waits until the first period has elapsed since that send began, sends the second and
// waits for the second period, then starts over.
//
// Waiting busy-spins on the monotonic clock unless WithSpinWindow was configured.
// The call does not return on success; it stops on the first send failure or when ctx
// is done, returning that error.
func (s *Session) SendDutyCycled(ctx context.Context, dc DutyCycle) error {
	firstMsg, secondMsg := dc.Messages()

	first, err := Frame(firstMsg)
	if err != nil {
		return err
	}
	second, err := Frame(secondMsg)
	if err != nil {
		return err
	}

	firstPeriod, secondPeriod := dc.Periods()
	s.logger.Debug("duty cycle started", "first_period", firstPeriod, "second_period", secondPeriod)

	done := ctx.Done()
	for {
		select {
		case <-done:
			return ctx.Err()
		default:
		}

		if err := s.sendAndWait(ctx, first, firstPeriod); err != nil {
			return err
		}
		if err := s.sendAndWait(ctx, second, secondPeriod); err != nil {
			return err
		}

		s.metrics.incDutyCycle()
	}
}

func (s *Session) sendAndWait(ctx context.Context, frame []byte, period time.Duration) error {
	start := time.Now()
	if _, err := s.write(frame); err != nil {
		s.logger.Error("duty cycle aborted", "cycles", s.metrics.DutyCycleCount.Value(), "error", err)
		return err
	}

	return spin.For(ctx, start, period, s.cfg.spinWindow)
}

func (s *Session) write(frame []byte) (int, error) {
	if s.closed.Load() {
		return 0, ErrSessionClosed
	}

	n, err := s.tr.Write(frame)
	if err != nil {
		s.metrics.incMsgErr()
		return n, wrapErr(ErrIO, err)
	}
	s.metrics.incMsgSend(n)

	return n, nil
}
