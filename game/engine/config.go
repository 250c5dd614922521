package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyFinished is returned when guessing on a finished game
	ErrAlreadyFinished = errors.New("game already finished")
	// ErrOutOfRange matches every *OutOfRangeError
	ErrOutOfRange = errors.New("guess out of range")
	// ErrInvalidConfiguration is returned when the configured range cannot host a game
	ErrInvalidConfiguration = errors.New("invalid configuration")
)

// OutOfRangeError carries the bounds a rejected guess violated
type OutOfRangeError struct {
	Guess int
	Min   int
	Max   int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("guess %d out of range: must be between %d and %d", e.Guess, e.Min, e.Max)
}

// Is lets errors.Is(err, ErrOutOfRange) match
func (e *OutOfRangeError) Is(target error) bool {
	return target == ErrOutOfRange
}

// ValidateRange checks that a range can host a game
func ValidateRange(minRange, maxRange int) error {
	if minRange >= maxRange {
		return fmt.Errorf("config validation: min_range (%d) must be less than max_range (%d): %w",
			minRange, maxRange, ErrInvalidConfiguration)
	}
	return nil
}

// ValidateGameConfig validates a game configuration for correctness
func ValidateGameConfig(config *GameConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config is nil: %w", ErrInvalidConfiguration)
	}
	if err := ValidateRange(config.MinRange, config.MaxRange); err != nil {
		return err
	}
	if config.HintTriggerCount <= 0 {
		return fmt.Errorf("config validation: hint_trigger_count must be greater than 0, got %d: %w",
			config.HintTriggerCount, ErrInvalidConfiguration)
	}
	return nil
}

// hintTrigger falls back to the default for unset or nonsensical values
func (r Rules) hintTrigger() int {
	if r.HintTrigger <= 0 {
		return DefaultHintTrigger
	}
	return r.HintTrigger
}

func (r Rules) lowerMessage() string {
	if r.Messages.Lower == "" {
		return DefaultLowerMessage
	}
	return r.Messages.Lower
}

func (r Rules) higherMessage() string {
	if r.Messages.Higher == "" {
		return DefaultHigherMessage
	}
	return r.Messages.Higher
}

func (r Rules) equalMessage() string {
	if r.Messages.Equal == "" {
		return DefaultEqualMessage
	}
	return r.Messages.Equal
}

// Apply merges the patch over base and returns the result
func (p ConfigPatch) Apply(base GameConfig) GameConfig {
	out := base
	if p.MinRange != nil {
		out.MinRange = *p.MinRange
	}
	if p.MaxRange != nil {
		out.MaxRange = *p.MaxRange
	}
	if p.HintTriggerCount != nil {
		out.HintTriggerCount = *p.HintTriggerCount
	}
	if m := p.Messages; m != nil {
		if m.Lower != nil {
			out.Messages.Lower = *m.Lower
		}
		if m.Higher != nil {
			out.Messages.Higher = *m.Higher
		}
		if m.Equal != nil {
			out.Messages.Equal = *m.Equal
		}
	}
	return out
}

// IsEmpty reports whether the patch changes nothing
func (p ConfigPatch) IsEmpty() bool {
	if p.MinRange != nil || p.MaxRange != nil || p.HintTriggerCount != nil {
		return false
	}
	m := p.Messages
	return m == nil || (m.Lower == nil && m.Higher == nil && m.Equal == nil)
}
