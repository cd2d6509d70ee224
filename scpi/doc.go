// Package scpi delivers SCPI instrument-control text commands to a remote endpoint
// over UDP or TCP.
//
// Every message is framed by trimming surrounding whitespace and appending a CRLF
// terminator; nothing else is added on the wire.
//
// Key Features:
//   - Four addressing modes: unicast UDP, unicast TCP, IPv4 UDP multicast, and a
//     TCP multicast placeholder that always fails with ErrUnsupportedMode.
//   - Sessions that keep one socket for many sends.
//   - Repeated sends, a fixed count or forever.
//   - Duty-cycled sends alternating two messages on microsecond periods, timed by
//     busy-waiting on the monotonic clock.
//
// Session Establishment:
//   - Create a SessionConfig with NewSessionConfig. Address and port validation happens
//     here, before any socket exists.
//   - Call NewSession to bind or connect the socket, and Close when done.
//
// The dispatch functions SendOnce, SendList, SendRepeated and SendDutyCycled build and
// discard a session per call.
//
// Language bindings can use ParseMode to map the numeric codes
// 0 (UDP), 1 (TCP), 2 (UDP multicast) and 3 (TCP multicast), and ParseAddr for
// string-form IP addresses.
//
// Usage Example:
//
//	cfg, err := scpi.NewSessionConfig(scpi.UnicastTCP, "192.168.1.70", 5025, 0,
//	    scpi.WithConnectTimeout(3*time.Second),
//	)
//	// ... handle error ...
//
//	session, err := scpi.NewSession(ctx, cfg)
//	// ... handle error ...
//	defer session.Close()
//
//	_, err = session.Send("*IDN?")
//	// ... handle error ...
//
//	// alternate between two commands every 1ms / 2ms until ctx is cancelled
//	dc := scpi.NewDutyCycle("OUTP ON", "OUTP OFF", 1000, 2000)
//	err = session.SendDutyCycled(ctx, dc)
//
// Sends, connects and duty-cycle waits block the calling goroutine. A Session must not be
// used by several goroutines at once.
package scpi
