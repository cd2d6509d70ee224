package scpi

import "time"

// DutyCycle describes two messages sent alternately, each followed by its own period.
// It is an immutable value.
type DutyCycle struct {
	firstMessage  string
	secondMessage string
	firstPeriod   time.Duration
	secondPeriod  time.Duration
}

// NewDutyCycle creates a DutyCycle from two messages and their periods in microseconds.
func NewDutyCycle(firstMessage, secondMessage string, firstMicros, secondMicros uint64) DutyCycle {
	return DutyCycle{
		firstMessage:  firstMessage,
		secondMessage: secondMessage,
		firstPeriod:   microseconds(firstMicros),
		secondPeriod:  microseconds(secondMicros),
	}
}

// Messages returns the first and second message.
func (dc DutyCycle) Messages() (string, string) {
	return dc.firstMessage, dc.secondMessage
}

// Periods returns the first and second period.
func (dc DutyCycle) Periods() (time.Duration, time.Duration) {
	return dc.firstPeriod, dc.secondPeriod
}

// CycleTime returns the minimum duration of one full cycle.
func (dc DutyCycle) CycleTime() time.Duration {
	return dc.firstPeriod + dc.secondPeriod
}

const maxMicros = uint64(1<<63-1) / uint64(time.Microsecond)

// microseconds converts us to a Duration, saturating instead of overflowing.
func microseconds(us uint64) time.Duration {
	if us > maxMicros {
		us = maxMicros
	}

	return time.Duration(us) * time.Microsecond
}
