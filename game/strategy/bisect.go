// Package strategy plays the guessing game by bisection.
//
// Bisect keeps the interval of secrets still consistent with every answer
// and guesses its middle. Range hints intersect the interval and a parity
// hint restricts guesses to matching numbers, so hints only ever shorten the
// game.
package strategy

import (
	"errors"
	"math/bits"

	"github.com/wricardo/mcp-training/guessgame/game/engine"
)

// ErrInconsistent is returned when answers leave no candidate
var ErrInconsistent = errors.New("answers are inconsistent: no candidate left")

// Bisect tracks the candidate interval for one game
type Bisect struct {
	low    int
	high   int
	parity string
}

// NewBisect starts with the full inclusive range
func NewBisect(minRange, maxRange int) *Bisect {
	return &Bisect{low: minRange, high: maxRange}
}

// Bounds returns the inclusive candidate interval
func (b *Bisect) Bounds() (low, high int) {
	return b.low, b.high
}

// Remaining counts the candidates left
func (b *Bisect) Remaining() int {
	if b.low > b.high {
		return 0
	}
	span := b.high - b.low + 1
	if b.parity != "" {
		return (span + 1) / 2
	}
	return span
}

// Next returns the middle candidate
func (b *Bisect) Next() (int, error) {
	if b.low > b.high {
		return 0, ErrInconsistent
	}
	mid := b.low + (b.high-b.low)/2
	if b.parity != "" && parityOf(mid) != b.parity {
		// low and high already match the parity, so a neighbour is in range
		if mid+1 <= b.high {
			mid++
		} else {
			mid--
		}
	}
	return mid, nil
}

// Observe narrows the interval with one answer
func (b *Bisect) Observe(guess int, outcome engine.Outcome, hint *engine.Hint) error {
	switch outcome {
	case engine.OutcomeLower:
		if guess+1 > b.low {
			b.low = guess + 1
		}
	case engine.OutcomeHigher:
		if guess-1 < b.high {
			b.high = guess - 1
		}
	case engine.OutcomeCorrect:
		b.low, b.high = guess, guess
	}

	if hint != nil {
		switch hint.Kind {
		case engine.HintParity:
			b.parity = hint.Parity
		case engine.HintRange:
			if hint.Bounds != nil {
				if hint.Bounds.Low > b.low {
					b.low = hint.Bounds.Low
				}
				if hint.Bounds.High < b.high {
					b.high = hint.Bounds.High
				}
			}
		}
	}

	b.alignParity()
	if b.low > b.high {
		return ErrInconsistent
	}
	return nil
}

func (b *Bisect) alignParity() {
	if b.parity == "" || b.low > b.high {
		return
	}
	if parityOf(b.low) != b.parity {
		b.low++
	}
	if parityOf(b.high) != b.parity {
		b.high--
	}
}

func parityOf(n int) string {
	if n%2 == 0 {
		return "even"
	}
	return "odd"
}

// WorstCaseAttempts is the most guesses plain bisection needs over n
// candidates, the final correct guess included.
func WorstCaseAttempts(n int) int {
	if n <= 0 {
		return 0
	}
	return bits.Len(uint(n))
}

// Play runs a full game against the engine and returns the final result
func Play(game *engine.Game, rules engine.Rules) (*engine.Result, error) {
	snap := game.Snapshot()
	b := NewBisect(snap.MinRange, snap.MaxRange)

	for {
		guess, err := b.Next()
		if err != nil {
			return nil, err
		}
		result, err := game.Evaluate(guess, rules)
		if err != nil {
			return nil, err
		}
		if result.IsCorrect {
			return result, nil
		}
		if err := b.Observe(guess, result.Outcome, result.Hint); err != nil {
			return nil, err
		}
	}
}
