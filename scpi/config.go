package scpi

import (
	"errors"
	"fmt"
	"net/netip"
	"time"

	"github.com/arloliu/go-scpi/internal/spin"
	"github.com/arloliu/go-scpi/logger"
)

const defaultMulticastTTL = 1

// SessionConfig holds the addressing and tuning parameters of a Session.
// A config is validated when it is created, before any socket exists.
type SessionConfig struct {
	mode Mode

	// remote is the destination address, IPv4 or IPv6.
	remote netip.Addr
	// remotePort is the destination port, 1-65535.
	remotePort uint16
	// localPort is the port bound on the wildcard address, 0 picks an ephemeral port.
	// TCP sessions let the OS choose the local port.
	localPort uint16

	// connectTimeout bounds the TCP connect. Zero blocks until the OS gives up.
	connectTimeout time.Duration

	// spinWindow is the final part of a duty-cycle wait that is busy-waited.
	// spin.Pure (the default) busy-waits the whole period.
	spinWindow time.Duration

	// multicastTTL and multicastLoopback apply to MulticastUDP sockets only.
	multicastTTL      int
	multicastLoopback bool

	// reuseAddr sets SO_REUSEADDR on UDP sockets. nil means on for multicast, off otherwise.
	reuseAddr *bool

	logger logger.Logger
}

// NewSessionConfig creates a SessionConfig for the given mode and addressing.
//
// remoteAddr must be an IPv4 or IPv6 literal; a malformed address fails with
// ErrAddressParse. remotePort must be in [1, 65535] and localPort in [0, 65535].
//
// The opts parameter accepts SessionOption values, see the WithXXX functions.
func NewSessionConfig(mode Mode, remoteAddr string, remotePort int, localPort int, opts ...SessionOption) (*SessionConfig, error) {
	if mode > MulticastTCP {
		return nil, fmt.Errorf("%w: %d", ErrInvalidMode, mode)
	}

	addr, err := ParseAddr(remoteAddr)
	if err != nil {
		return nil, err
	}

	if remotePort < 1 || remotePort > 65535 {
		return nil, fmt.Errorf("%w: remote port %d not in [1, 65535]", ErrInvalidPort, remotePort)
	}
	if localPort < 0 || localPort > 65535 {
		return nil, fmt.Errorf("%w: local port %d not in [0, 65535]", ErrInvalidPort, localPort)
	}

	cfg := &SessionConfig{
		mode:              mode,
		remote:            addr,
		remotePort:        uint16(remotePort),
		localPort:         uint16(localPort),
		spinWindow:        spin.Pure,
		multicastTTL:      defaultMulticastTTL,
		multicastLoopback: true,
		logger:            logger.GetLogger(),
	}

	for _, opt := range opts {
		if err := opt.apply(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// Mode returns the configured mode.
func (cfg *SessionConfig) Mode() Mode {
	return cfg.mode
}

// Destination returns the remote address and port.
func (cfg *SessionConfig) Destination() netip.AddrPort {
	return netip.AddrPortFrom(cfg.remote, cfg.remotePort)
}

// LocalPort returns the configured local port.
func (cfg *SessionConfig) LocalPort() int {
	return int(cfg.localPort)
}

func (cfg *SessionConfig) reuseAddrEnabled() bool {
	if cfg.reuseAddr != nil {
		return *cfg.reuseAddr
	}

	return cfg.mode == MulticastUDP
}

// SessionOption represents a functional option for configuring a SessionConfig.
type SessionOption interface {
	apply(*SessionConfig) error
}

type sessionOptFunc struct {
	name      string
	applyFunc func(*SessionConfig) error
}

func (o *sessionOptFunc) apply(cfg *SessionConfig) error {
	if cfg == nil {
		return ErrSessionConfigNil
	}

	if err := o.applyFunc(cfg); err != nil {
		return fmt.Errorf("%s: %w", o.name, err)
	}

	return nil
}

func newSessionOptFunc(name string, f func(*SessionConfig) error) *sessionOptFunc {
	return &sessionOptFunc{name: name, applyFunc: f}
}

// WithLogger sets the logger used by the session. Defaults to logger.GetLogger().
func WithLogger(l logger.Logger) SessionOption {
	return newSessionOptFunc("WithLogger", func(cfg *SessionConfig) error {
		if l == nil {
			return errors.New("logger is nil")
		}
		cfg.logger = l

		return nil
	})
}

// WithConnectTimeout bounds how long a TCP connect may block.
// Zero, the default, waits until the OS gives up.
func WithConnectTimeout(d time.Duration) SessionOption {
	return newSessionOptFunc("WithConnectTimeout", func(cfg *SessionConfig) error {
		if d < 0 {
			return errors.New("connect timeout must not be negative")
		}
		cfg.connectTimeout = d

		return nil
	})
}

// WithSpinWindow enables hybrid duty-cycle waiting: sleep until the period has d left,
// then busy-wait the rest. The minimum spacing between sends is unchanged, but a
// window shorter than the OS timer slack can make individual periods overshoot.
//
// The default, spin.Pure, busy-waits the whole period and keeps one core at 100%.
func WithSpinWindow(d time.Duration) SessionOption {
	return newSessionOptFunc("WithSpinWindow", func(cfg *SessionConfig) error {
		if d < 0 {
			return errors.New("spin window must not be negative")
		}
		cfg.spinWindow = d

		return nil
	})
}

// WithMulticastTTL sets the IP TTL of outgoing multicast datagrams. Defaults to 1.
func WithMulticastTTL(ttl int) SessionOption {
	return newSessionOptFunc("WithMulticastTTL", func(cfg *SessionConfig) error {
		if ttl < 1 || ttl > 255 {
			return errors.New("multicast TTL is out of range [1, 255]")
		}
		cfg.multicastTTL = ttl

		return nil
	})
}

// WithMulticastLoopback controls whether multicast datagrams are looped back to the
// sending host. Defaults to true.
func WithMulticastLoopback(enable bool) SessionOption {
	return newSessionOptFunc("WithMulticastLoopback", func(cfg *SessionConfig) error {
		cfg.multicastLoopback = enable
		return nil
	})
}

// WithReuseAddr sets SO_REUSEADDR on the local UDP socket.
// Defaults to enabled for MulticastUDP and disabled for UnicastUDP.
func WithReuseAddr(enable bool) SessionOption {
	return newSessionOptFunc("WithReuseAddr", func(cfg *SessionConfig) error {
		cfg.reuseAddr = &enable
		return nil
	})
}
