package engine

import "time"

// Outcome is the result of comparing a guess to the secret
type Outcome string

const (
	OutcomeLower   Outcome = "lower"
	OutcomeHigher  Outcome = "higher"
	OutcomeCorrect Outcome = "correct"
)

// Status is the lifecycle state of a game
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusFinished   Status = "finished"
)

// HintKind identifies which hint was emitted
type HintKind string

const (
	HintParity HintKind = "parity"
	HintRange  HintKind = "range"
)

const (
	DefaultMinRange    = 1
	DefaultMaxRange    = 100
	DefaultHintTrigger = 5

	DefaultLowerMessage  = "Too low!"
	DefaultHigherMessage = "Too high!"
	DefaultEqualMessage  = "Congratulations, you guessed it in {attempts} attempts!"

	// AttemptsPlaceholder is replaced by the final attempt count in the equal message
	AttemptsPlaceholder = "{attempts}"
)

// Messages are the customizable feedback texts. Empty fields fall back to
// the Default*Message constants.
type Messages struct {
	Lower  string `json:"lower" yaml:"lower"`
	Higher string `json:"higher" yaml:"higher"`
	Equal  string `json:"equal" yaml:"equal"`
}

// GameConfig represents the game configuration file
type GameConfig struct {
	MinRange         int      `json:"min_range" yaml:"min_range"`
	MaxRange         int      `json:"max_range" yaml:"max_range"`
	HintTriggerCount int      `json:"hint_trigger_count" yaml:"hint_trigger_count"`
	Messages         Messages `json:"messages" yaml:"messages"`
}

// DefaultConfig returns the configuration used when none is available
func DefaultConfig() GameConfig {
	return GameConfig{
		MinRange:         DefaultMinRange,
		MaxRange:         DefaultMaxRange,
		HintTriggerCount: DefaultHintTrigger,
	}
}

// Rules returns the parts of the configuration that are read on every evaluation
func (c GameConfig) Rules() Rules {
	return Rules{HintTrigger: c.HintTriggerCount, Messages: c.Messages}
}

// Rules are re-read from configuration for each guess, so edits apply to
// games already in progress.
type Rules struct {
	HintTrigger int
	Messages    Messages
}

// GuessRecord is one entry of a game's history
type GuessRecord struct {
	Guess     int     `json:"guess"`
	Outcome   Outcome `json:"outcome"`
	Timestamp int64   `json:"timestamp"`
}

// HintBounds is the inclusive interval a narrowing hint reports
type HintBounds struct {
	Low  int `json:"low"`
	High int `json:"high"`
}

// Hint is emitted after every HintTrigger consecutive misses
type Hint struct {
	Kind    HintKind    `json:"kind"`
	Message string      `json:"message"`
	Parity  string      `json:"parity,omitempty"`
	Bounds  *HintBounds `json:"bounds,omitempty"`
}

// RangeInfo positions a guess on the game's range for display
type RangeInfo struct {
	Min             int `json:"min"`
	Max             int `json:"max"`
	PositionPercent int `json:"position_percent"`
}

// Result is returned from a successful evaluation
type Result struct {
	IsCorrect      bool          `json:"is_correct"`
	Outcome        Outcome       `json:"outcome"`
	Message        string        `json:"message"`
	AttemptCount   int           `json:"attempt_count"`
	History        []GuessRecord `json:"history"`
	Status         Status        `json:"status"`
	ElapsedSeconds *float64      `json:"elapsed_seconds,omitempty"`
	Hint           *Hint         `json:"hint,omitempty"`
	Range          RangeInfo     `json:"range"`
}

// Snapshot is the externally visible state of a game. It never carries the secret.
type Snapshot struct {
	ID           string        `json:"id"`
	MinRange     int           `json:"min_range"`
	MaxRange     int           `json:"max_range"`
	Status       Status        `json:"status"`
	StartedAt    time.Time     `json:"started_at"`
	FinishedAt   *time.Time    `json:"finished_at,omitempty"`
	AttemptCount int           `json:"attempt_count"`
	HintsGiven   int           `json:"hints_given"`
	History      []GuessRecord `json:"history"`
}

// Summary is what a finished game hands to the match history
type Summary struct {
	GameID     string
	Status     Status
	Attempts   int
	HintsGiven int
	MinRange   int
	MaxRange   int
	Elapsed    time.Duration
	FinishedAt time.Time
}

// ConfigPatch is a partial configuration update. Nil fields are left unchanged.
type ConfigPatch struct {
	MinRange         *int           `json:"min_range,omitempty"`
	MaxRange         *int           `json:"max_range,omitempty"`
	HintTriggerCount *int           `json:"hint_trigger_count,omitempty"`
	Messages         *MessagesPatch `json:"messages,omitempty"`
}

// MessagesPatch is the message part of a ConfigPatch
type MessagesPatch struct {
	Lower  *string `json:"lower,omitempty"`
	Higher *string `json:"higher,omitempty"`
	Equal  *string `json:"equal,omitempty"`
}
