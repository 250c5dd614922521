// Command analyze prints quick, human-readable heuristics about game
// configuration files: range size, the worst-case number of guesses for a
// bisecting player, and when hints appear. With --simulate it plays every
// secret in the range against the engine and reports the attempt spread.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/urfave/cli/v3"
	"github.com/wricardo/mcp-training/guessgame/game/config"
	"github.com/wricardo/mcp-training/guessgame/game/engine"
	"github.com/wricardo/mcp-training/guessgame/game/strategy"
)

// HintStep is one scheduled hint
type HintStep struct {
	Miss int
	Kind engine.HintKind
}

// Analysis summarizes one configuration
type Analysis struct {
	MinRange     int
	MaxRange     int
	Size         int
	WorstCase    int
	HintTrigger  int
	HintSchedule []HintStep
}

// SimulationStats aggregates bisection games over many secrets
type SimulationStats struct {
	Games        int
	MinAttempts  int
	MaxAttempts  int
	MeanAttempts float64
	GamesHinted  int
}

func analyze(cfg engine.GameConfig) Analysis {
	a := Analysis{
		MinRange:    cfg.MinRange,
		MaxRange:    cfg.MaxRange,
		Size:        cfg.MaxRange - cfg.MinRange + 1,
		HintTrigger: cfg.HintTriggerCount,
	}
	a.WorstCase = strategy.WorstCaseAttempts(a.Size)

	// A bisecting player misses at most WorstCase-1 times
	for miss := a.HintTrigger; a.HintTrigger > 0 && miss < a.WorstCase; miss += a.HintTrigger {
		kind := engine.HintRange
		if len(a.HintSchedule) == 0 {
			kind = engine.HintParity
		}
		a.HintSchedule = append(a.HintSchedule, HintStep{Miss: miss, Kind: kind})
	}
	return a
}

// simulate plays up to limit secrets spread evenly over the range
func simulate(cfg engine.GameConfig, limit int) (SimulationStats, error) {
	size := cfg.MaxRange - cfg.MinRange + 1
	step := 1
	if limit > 0 && size > limit {
		step = (size + limit - 1) / limit
	}

	stats := SimulationStats{MinAttempts: -1}
	total := 0
	rules := cfg.Rules()
	for secret := cfg.MinRange; secret <= cfg.MaxRange; secret += step {
		game, err := engine.NewGame("sim", cfg.MinRange, cfg.MaxRange, secret)
		if err != nil {
			return stats, err
		}
		result, err := strategy.Play(game, rules)
		if err != nil {
			return stats, fmt.Errorf("secret %d: %w", secret, err)
		}

		attempts := result.AttemptCount
		total += attempts
		stats.Games++
		if stats.MinAttempts < 0 || attempts < stats.MinAttempts {
			stats.MinAttempts = attempts
		}
		if attempts > stats.MaxAttempts {
			stats.MaxAttempts = attempts
		}
		if game.Snapshot().HintsGiven > 0 {
			stats.GamesHinted++
		}
	}
	if stats.Games > 0 {
		stats.MeanAttempts = float64(total) / float64(stats.Games)
	}
	return stats, nil
}

func printAnalysis(w io.Writer, path string, a Analysis) {
	fmt.Fprintf(w, "\n=== Analyzing %s ===\n", path)
	fmt.Fprintf(w, "Range: %d-%d (%d numbers)\n", a.MinRange, a.MaxRange, a.Size)
	fmt.Fprintf(w, "Worst case with bisection: %d guesses\n", a.WorstCase)
	fmt.Fprintf(w, "Hint every %d misses\n", a.HintTrigger)

	if len(a.HintSchedule) == 0 {
		fmt.Fprintf(w, "⚠️  No hint before a bisecting player finishes\n")
		return
	}
	for _, step := range a.HintSchedule {
		fmt.Fprintf(w, "  after miss %d: %s hint\n", step.Miss, step.Kind)
	}
}

func printSimulation(w io.Writer, s SimulationStats, elapsed time.Duration) {
	fmt.Fprintf(w, "Simulated %d games in %s\n", s.Games, elapsed.Round(time.Millisecond))
	fmt.Fprintf(w, "  attempts: min %d, mean %.2f, max %d\n", s.MinAttempts, s.MeanAttempts, s.MaxAttempts)
	fmt.Fprintf(w, "  games with a hint: %d\n", s.GamesHinted)
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Usage:     "analyze game configuration files",
		ArgsUsage: "[config file ...]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "simulate",
				Usage: "play bisection games against the engine",
			},
			&cli.IntFlag{
				Name:  "max-games",
				Value: 10000,
				Usage: "upper bound on simulated games per config",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			w := cmd.Root().Writer
			paths := cmd.Args().Slice()
			if len(paths) == 0 {
				paths = []string{config.DefaultFileName}
			}

			for _, path := range paths {
				cfg, err := config.LoadFile(path)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}

				printAnalysis(w, path, analyze(*cfg))

				if cmd.Bool("simulate") {
					start := time.Now()
					stats, err := simulate(*cfg, int(cmd.Int("max-games")))
					if err != nil {
						return fmt.Errorf("%s: simulation failed: %w", path, err)
					}
					printSimulation(w, stats, time.Since(start))
				}
			}
			return nil
		},
	}
}

func main() {
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
