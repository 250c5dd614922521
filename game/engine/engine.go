package engine

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Game is a single guessing game. The secret is fixed at creation and
// never leaves this type.
type Game struct {
	mu sync.Mutex

	id       string
	secret   int
	minRange int
	maxRange int

	attemptCount      int
	consecutiveMisses int
	hintsGiven        int
	history           []GuessRecord

	status     Status
	startedAt  time.Time
	finishedAt time.Time

	now func() time.Time
}

// Option customizes a Game at construction
type Option func(*Game)

// WithClock replaces time.Now, mostly for tests
func WithClock(now func() time.Time) Option {
	return func(g *Game) {
		if now != nil {
			g.now = now
		}
	}
}

// NewGame creates a game over [minRange, maxRange] with the given secret
func NewGame(id string, minRange, maxRange, secret int, opts ...Option) (*Game, error) {
	if err := ValidateRange(minRange, maxRange); err != nil {
		return nil, err
	}
	if secret < minRange || secret > maxRange {
		return nil, fmt.Errorf("secret outside range [%d, %d]", minRange, maxRange)
	}

	g := &Game{
		id:       id,
		secret:   secret,
		minRange: minRange,
		maxRange: maxRange,
		history:  []GuessRecord{},
		status:   StatusInProgress,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	g.startedAt = g.now()

	return g, nil
}

// ID returns the game identifier
func (g *Game) ID() string {
	return g.id
}

// IsFinished reports whether the secret has been guessed
func (g *Game) IsFinished() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.status == StatusFinished
}

// Evaluate scores one guess. Rejected guesses leave the game untouched.
func (g *Game) Evaluate(guess int, rules Rules) (*Result, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.status == StatusFinished {
		return nil, ErrAlreadyFinished
	}
	if guess < g.minRange || guess > g.maxRange {
		return nil, &OutOfRangeError{Guess: guess, Min: g.minRange, Max: g.maxRange}
	}

	now := g.now()
	g.attemptCount++

	result := &Result{}
	switch {
	case guess < g.secret:
		result.Outcome = OutcomeLower
		result.Message = rules.lowerMessage()
		g.consecutiveMisses++
	case guess > g.secret:
		result.Outcome = OutcomeHigher
		result.Message = rules.higherMessage()
		g.consecutiveMisses++
	default:
		result.Outcome = OutcomeCorrect
		result.IsCorrect = true
		g.status = StatusFinished
		g.finishedAt = now
		g.consecutiveMisses = 0
		result.Message = strings.Replace(rules.equalMessage(), AttemptsPlaceholder, strconv.Itoa(g.attemptCount), 1)
	}

	g.history = append(g.history, GuessRecord{
		Guess:     guess,
		Outcome:   result.Outcome,
		Timestamp: now.UnixMilli(),
	})

	trigger := rules.hintTrigger()
	if result.Outcome != OutcomeCorrect && g.consecutiveMisses > 0 && g.consecutiveMisses%trigger == 0 {
		g.hintsGiven++
		if g.hintsGiven == 1 {
			result.Hint = parityHint(g.secret)
		} else {
			result.Hint = rangeHint(narrowBounds(g.history, g.secret, g.minRange, g.maxRange))
		}
	}

	result.AttemptCount = g.attemptCount
	result.History = g.historyCopy()
	result.Status = g.status
	result.Range = RangeInfo{
		Min:             g.minRange,
		Max:             g.maxRange,
		PositionPercent: PositionPercent(guess, g.minRange, g.maxRange),
	}
	if g.status == StatusFinished {
		elapsed := elapsedSeconds(g.finishedAt.Sub(g.startedAt))
		result.ElapsedSeconds = &elapsed
	}

	return result, nil
}

// Snapshot returns the public state of the game
func (g *Game) Snapshot() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()

	snap := Snapshot{
		ID:           g.id,
		MinRange:     g.minRange,
		MaxRange:     g.maxRange,
		Status:       g.status,
		StartedAt:    g.startedAt,
		AttemptCount: g.attemptCount,
		HintsGiven:   g.hintsGiven,
		History:      g.historyCopy(),
	}
	if g.status == StatusFinished {
		finishedAt := g.finishedAt
		snap.FinishedAt = &finishedAt
	}
	return snap
}

// Summary returns the data recorded into match history
func (g *Game) Summary() Summary {
	g.mu.Lock()
	defer g.mu.Unlock()

	s := Summary{
		GameID:     g.id,
		Status:     g.status,
		Attempts:   g.attemptCount,
		HintsGiven: g.hintsGiven,
		MinRange:   g.minRange,
		MaxRange:   g.maxRange,
	}
	if g.status == StatusFinished {
		s.Elapsed = g.finishedAt.Sub(g.startedAt)
		s.FinishedAt = g.finishedAt
	}
	return s
}

// historyCopy must be called with g.mu held
func (g *Game) historyCopy() []GuessRecord {
	out := make([]GuessRecord, len(g.history))
	copy(out, g.history)
	return out
}

// PositionPercent projects guess onto [minRange, maxRange] as 0..100
func PositionPercent(guess, minRange, maxRange int) int {
	// float64 before subtracting: int differences overflow on extreme ranges
	return int(math.Round((float64(guess) - float64(minRange)) / (float64(maxRange) - float64(minRange)) * 100))
}

// elapsedSeconds rounds to millisecond precision
func elapsedSeconds(d time.Duration) float64 {
	return math.Round(d.Seconds()*1000) / 1000
}
