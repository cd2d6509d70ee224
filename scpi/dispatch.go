package scpi

import "context"

// SendOnce opens a session for cfg, sends message once and closes the session.
// It returns the number of bytes transmitted.
func SendOnce(ctx context.Context, cfg *SessionConfig, message string) (int, error) {
	if _, err := Frame(message); err != nil {
		return 0, err
	}

	s, err := NewSession(ctx, cfg)
	if err != nil {
		return 0, err
	}
	defer s.Close()

	return s.Send(message)
}

// SendList opens a session for cfg and sends messages in order, stopping at the first
// failure. See Session.SendList.
func SendList(ctx context.Context, cfg *SessionConfig, messages []string) error {
	s, err := NewSession(ctx, cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	return s.SendList(messages)
}

// SendRepeated opens a session for cfg and sends message according to rep.
// It returns the byte count of the last successful send, or zero for Times(0).
//
// The repetition and the message are validated before any socket is created.
// With Forever and a context that is never done, SendRepeated returns only on error.
func SendRepeated(ctx context.Context, cfg *SessionConfig, message string, rep Repetition) (int, error) {
	if err := rep.validate(); err != nil {
		return 0, err
	}
	if _, err := Frame(message); err != nil {
		return 0, err
	}

	s, err := NewSession(ctx, cfg)
	if err != nil {
		return 0, err
	}
	defer s.Close()

	return s.SendRepeated(ctx, message, rep)
}

// SendDutyCycled opens a session for cfg and alternates the messages of dc forever.
// It returns only when a send fails or ctx is done. See Session.SendDutyCycled.
func SendDutyCycled(ctx context.Context, cfg *SessionConfig, dc DutyCycle) error {
	s, err := NewSession(ctx, cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	return s.SendDutyCycled(ctx, dc)
}
