package scpi

import "fmt"

// Repetition is the policy of SendRepeated: either a fixed count or unbounded.
type Repetition struct {
	count    int
	infinite bool
}

// Times sends a message exactly n times. Times(0) sends nothing.
func Times(n int) Repetition {
	return Repetition{count: n}
}

// Forever sends a message until a send fails or the context is done.
func Forever() Repetition {
	return Repetition{infinite: true}
}

// Count returns the repetition count and false for an unbounded repetition.
func (r Repetition) Count() (int, bool) {
	if r.infinite {
		return 0, false
	}

	return r.count, true
}

// IsInfinite reports whether the repetition is unbounded.
func (r Repetition) IsInfinite() bool {
	return r.infinite
}

func (r Repetition) validate() error {
	if !r.infinite && r.count < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidRepetition, r.count)
	}

	return nil
}

func (r Repetition) String() string {
	if r.infinite {
		return "forever"
	}

	return fmt.Sprintf("%d times", r.count)
}
