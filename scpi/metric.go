package scpi

import "github.com/puzpuzpuz/xsync/v3"

// SessionMetrics holds counters of a session.
// They may be read from other goroutines while a send loop is running, for example as
// the value of a prometheus CounterFunc.
type SessionMetrics struct {
	// MsgSendCount is the number of messages written successfully.
	MsgSendCount *xsync.Counter
	// ByteSendCount is the number of framed bytes written successfully.
	ByteSendCount *xsync.Counter
	// MsgErrCount is the number of failed writes.
	MsgErrCount *xsync.Counter
	// DutyCycleCount is the number of completed duty cycles.
	DutyCycleCount *xsync.Counter
}

func newSessionMetrics() *SessionMetrics {
	return &SessionMetrics{
		MsgSendCount:   xsync.NewCounter(),
		ByteSendCount:  xsync.NewCounter(),
		MsgErrCount:    xsync.NewCounter(),
		DutyCycleCount: xsync.NewCounter(),
	}
}

func (m *SessionMetrics) incMsgSend(n int) {
	m.MsgSendCount.Inc()
	m.ByteSendCount.Add(int64(n))
}

func (m *SessionMetrics) incMsgErr() {
	m.MsgErrCount.Inc()
}

func (m *SessionMetrics) incDutyCycle() {
	m.DutyCycleCount.Inc()
}
