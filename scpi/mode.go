package scpi

import (
	"fmt"
	"net/netip"
	"strings"
)

// Mode selects how a session establishes its transport.
type Mode uint8

const (
	// UnicastUDP binds a UDP socket to the wildcard address and sends datagrams to the destination.
	UnicastUDP Mode = iota
	// UnicastTCP connects a TCP stream to the destination.
	UnicastTCP
	// MulticastUDP binds a UDP socket and joins the IPv4 multicast group given by the destination.
	MulticastUDP
	// MulticastTCP has no multicast semantics; constructing a session with it always fails.
	MulticastTCP
)

// ParseMode converts the numeric mode code used by language bindings to a Mode:
// 0 = UDP, 1 = TCP, 2 = UDP multicast, 3 = TCP multicast.
func ParseMode(code int) (Mode, error) {
	if code < int(UnicastUDP) || code > int(MulticastTCP) {
		return 0, fmt.Errorf("%w: %d", ErrInvalidMode, code)
	}

	return Mode(code), nil
}

// Code returns the numeric mode code.
func (m Mode) Code() int {
	return int(m)
}

// Kind returns the transport variant the mode is built on.
func (m Mode) Kind() Kind {
	switch m {
	case UnicastTCP, MulticastTCP:
		return TCP
	default:
		return UDP
	}
}

// IsMulticast reports whether the mode addresses a multicast group.
func (m Mode) IsMulticast() bool {
	return m == MulticastUDP || m == MulticastTCP
}

func (m Mode) String() string {
	switch m {
	case UnicastUDP:
		return "udp"
	case UnicastTCP:
		return "tcp"
	case MulticastUDP:
		return "udp-multicast"
	case MulticastTCP:
		return "tcp-multicast"
	default:
		return fmt.Sprintf("Mode(%d)", uint8(m))
	}
}

// Kind is the live transport variant owned by a session.
type Kind uint8

const (
	UDP Kind = iota
	TCP
)

func (k Kind) String() string {
	if k == TCP {
		return "tcp"
	}

	return "udp"
}

// Network returns the net package network name for the kind and address family.
func (k Kind) Network(addr netip.Addr) string {
	suffix := "4"
	if addr.Is6() {
		suffix = "6"
	}

	return k.String() + suffix
}

// ParseAddr parses an IPv4 or IPv6 literal. IPv4-mapped IPv6 addresses are unmapped.
// Host names are not resolved.
func ParseAddr(s string) (netip.Addr, error) {
	addr, err := netip.ParseAddr(strings.TrimSpace(s))
	if err != nil {
		return netip.Addr{}, wrapErr(ErrAddressParse, err)
	}

	return addr.Unmap(), nil
}
