package engine

import "fmt"

func parityHint(secret int) *Hint {
	parity := "odd"
	if secret%2 == 0 {
		parity = "even"
	}
	return &Hint{
		Kind:    HintParity,
		Message: fmt.Sprintf("Hint: the secret number is %s.", parity),
		Parity:  parity,
	}
}

func rangeHint(low, high int) *Hint {
	return &Hint{
		Kind:    HintRange,
		Message: fmt.Sprintf("Hint: the secret number is between %d and %d.", low, high),
		Bounds:  &HintBounds{Low: low, High: high},
	}
}

// narrowBounds scans the full history for the closest guesses strictly
// below and strictly above the secret and returns the interval between them.
// Sides without a guess fall back to the range edges. A lower guess is always
// below maxRange and an upper one above minRange, so the ±1 cannot overflow.
func narrowBounds(history []GuessRecord, secret, minRange, maxRange int) (low, high int) {
	low, high = minRange, maxRange
	for _, rec := range history {
		if rec.Guess < secret && rec.Guess >= low {
			low = rec.Guess + 1
		}
		if rec.Guess > secret && rec.Guess <= high {
			high = rec.Guess - 1
		}
	}
	return low, high
}
