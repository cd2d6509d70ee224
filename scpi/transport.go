package scpi

import (
	"context"
	"fmt"
	"net"
	"net/netip"

	"golang.org/x/net/ipv4"
)

// transport is the socket owned by a Session, a UDP socket or a TCP stream.
type transport interface {
	Kind() Kind
	// Write places one framed message on the wire and returns the bytes written.
	Write(frame []byte) (int, error)
	LocalAddr() net.Addr
	Close() error
}

// udpTransport is an unconnected UDP socket; every datagram is addressed to dst.
type udpTransport struct {
	conn *net.UDPConn
	dst  netip.AddrPort
}

func (t *udpTransport) Kind() Kind { return UDP }

func (t *udpTransport) Write(frame []byte) (int, error) {
	return t.conn.WriteToUDPAddrPort(frame, t.dst)
}

func (t *udpTransport) LocalAddr() net.Addr { return t.conn.LocalAddr() }

func (t *udpTransport) Close() error { return t.conn.Close() }

// tcpTransport is a connected TCP stream.
type tcpTransport struct {
	conn net.Conn
}

func (t *tcpTransport) Kind() Kind { return TCP }

// Write returns an error unless the whole frame was written.
func (t *tcpTransport) Write(frame []byte) (int, error) {
	return t.conn.Write(frame)
}

func (t *tcpTransport) LocalAddr() net.Addr { return t.conn.LocalAddr() }

func (t *tcpTransport) Close() error { return t.conn.Close() }

// openTransport establishes the socket described by cfg. On failure no socket is left open.
func openTransport(ctx context.Context, cfg *SessionConfig) (transport, error) {
	switch cfg.mode {
	case UnicastUDP:
		conn, err := listenUDP(ctx, cfg)
		if err != nil {
			return nil, err
		}

		return &udpTransport{conn: conn, dst: cfg.Destination()}, nil

	case UnicastTCP:
		return dialTCP(ctx, cfg)

	case MulticastUDP:
		return openMulticastUDP(ctx, cfg)

	case MulticastTCP:
		return nil, fmt.Errorf("%w: TCP has no multicast semantics", ErrUnsupportedMode)

	default:
		return nil, fmt.Errorf("%w: %d", ErrInvalidMode, cfg.mode)
	}
}

// listenUDP binds a UDP socket to the wildcard address of the remote's family.
func listenUDP(ctx context.Context, cfg *SessionConfig) (*net.UDPConn, error) {
	wildcard := netip.IPv4Unspecified()
	if cfg.remote.Is6() {
		wildcard = netip.IPv6Unspecified()
	}
	local := netip.AddrPortFrom(wildcard, cfg.localPort)

	lc := net.ListenConfig{}
	if cfg.reuseAddrEnabled() {
		lc.Control = reuseAddrControl
	}

	pc, err := lc.ListenPacket(ctx, UDP.Network(cfg.remote), local.String())
	if err != nil {
		return nil, wrapErr(ErrBind, err)
	}

	conn, ok := pc.(*net.UDPConn)
	if !ok {
		_ = pc.Close()
		return nil, fmt.Errorf("%w: unexpected packet conn %T", ErrBind, pc)
	}

	return conn, nil
}

func dialTCP(ctx context.Context, cfg *SessionConfig) (transport, error) {
	dialer := &net.Dialer{Timeout: cfg.connectTimeout}

	conn, err := dialer.DialContext(ctx, TCP.Network(cfg.remote), cfg.Destination().String())
	if err != nil {
		return nil, wrapErr(ErrConnect, err)
	}

	return &tcpTransport{conn: conn}, nil
}

// openMulticastUDP binds to the IPv4 wildcard address and joins the group on the
// system's default multicast interface.
func openMulticastUDP(ctx context.Context, cfg *SessionConfig) (transport, error) {
	if !cfg.remote.Is4() {
		return nil, fmt.Errorf("%w: %w: multicast requires IPv4 local and remote addresses, got %s",
			ErrUnsupportedMode, ErrUnsupportedAddressFamily, cfg.remote)
	}
	if !cfg.remote.IsMulticast() {
		return nil, fmt.Errorf("%w: %s is not a multicast group", ErrMulticastJoin, cfg.remote)
	}

	conn, err := listenUDP(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if err := setupMulticast(conn, cfg); err != nil {
		_ = conn.Close()
		return nil, wrapErr(ErrMulticastJoin, err)
	}

	return &udpTransport{conn: conn, dst: cfg.Destination()}, nil
}

func setupMulticast(conn *net.UDPConn, cfg *SessionConfig) error {
	pc := ipv4.NewPacketConn(conn)

	group := &net.UDPAddr{IP: cfg.remote.AsSlice()}
	if err := pc.JoinGroup(nil, group); err != nil {
		return err
	}
	if err := pc.SetMulticastTTL(cfg.multicastTTL); err != nil {
		return err
	}

	return pc.SetMulticastLoopback(cfg.multicastLoopback)
}
