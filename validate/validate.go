// Command validate checks number guessing game configuration files. For each
// file it reports:
//   - JSON or YAML syntax errors and unknown keys
//   - Range problems (min_range must be below max_range)
//   - A hint trigger below 1
//   - An equal message without the {attempts} placeholder (warning)
//   - A hint trigger too large for hints to appear in a bisection game (warning)
//
// It exits with a non-zero status if any file is invalid.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/urfave/cli/v3"
	"github.com/wricardo/mcp-training/guessgame/game/config"
	"github.com/wricardo/mcp-training/guessgame/game/engine"
	"github.com/wricardo/mcp-training/guessgame/game/strategy"
	"gopkg.in/yaml.v3"
)

var errInvalidConfigs = errors.New("some configurations have errors")

// ValidationResult captures the outcome of validating a single file.
type ValidationResult struct {
	File     string
	Valid    bool
	Errors   []string
	Warnings []string
}

// validateConfig loads and validates a single configuration file.
func validateConfig(filePath string) ValidationResult {
	result := ValidationResult{
		File:  filepath.Base(filePath),
		Valid: true,
	}
	fail := func(format string, args ...interface{}) ValidationResult {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf(format, args...))
		return result
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return fail("Failed to read file: %v", err)
	}

	if err := decodeStrict(filePath, data); err != nil {
		return fail("Invalid %s: %v", formatName(filePath), err)
	}

	cfg, err := config.LoadFile(filePath)
	if err != nil {
		return fail("%v", err)
	}

	if !strings.Contains(cfg.Messages.Equal, engine.AttemptsPlaceholder) && cfg.Messages.Equal != "" {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("equal message has no %s placeholder", engine.AttemptsPlaceholder))
	}

	size := cfg.MaxRange - cfg.MinRange + 1
	worst := strategy.WorstCaseAttempts(size)
	if cfg.HintTriggerCount >= worst {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("hint_trigger_count %d: bisection needs at most %d guesses, so hints will rarely appear",
				cfg.HintTriggerCount, worst))
	}

	return result
}

// decodeStrict rejects keys the game does not know
func decodeStrict(path string, data []byte) error {
	var cfg engine.GameConfig
	if formatName(path) == "YAML" {
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(&cfg)
}

func formatName(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "YAML"
	}
	return "JSON"
}

// collectFiles expands directories into their config files
func collectFiles(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil || !info.IsDir() {
			files = append(files, arg)
			continue
		}
		for _, pattern := range []string{"*.json", "*.yaml", "*.yml"} {
			matches, err := filepath.Glob(filepath.Join(arg, pattern))
			if err != nil {
				return nil, err
			}
			files = append(files, matches...)
		}
	}
	sort.Strings(files)
	return files, nil
}

func printResult(w io.Writer, result ValidationResult) {
	fmt.Fprintf(w, "\n%s %s\n", strings.Repeat("=", 20), result.File)

	if result.Valid {
		fmt.Fprintln(w, "✅ VALID")
	} else {
		fmt.Fprintln(w, "❌ INVALID")
		for _, err := range result.Errors {
			fmt.Fprintln(w, "  ❌ "+err)
		}
	}
	for _, warn := range result.Warnings {
		fmt.Fprintln(w, "  ⚠️  "+warn)
	}
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "validate game configuration files",
		ArgsUsage: "[file or directory ...]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "strict",
				Usage: "treat warnings as errors",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			args := cmd.Args().Slice()
			if len(args) == 0 {
				args = []string{config.DefaultFileName}
			}

			files, err := collectFiles(args)
			if err != nil {
				return fmt.Errorf("finding config files: %w", err)
			}
			if len(files) == 0 {
				return fmt.Errorf("no config files found in %s", strings.Join(args, ", "))
			}

			allValid := true
			for _, file := range files {
				result := validateConfig(file)
				if cmd.Bool("strict") && len(result.Warnings) > 0 {
					result.Valid = false
				}
				printResult(cmd.Root().Writer, result)
				if !result.Valid {
					allValid = false
				}
			}

			fmt.Fprintf(cmd.Root().Writer, "\n%s\n", strings.Repeat("=", 40))
			if !allValid {
				fmt.Fprintln(cmd.Root().Writer, "❌ Some configurations have errors")
				return errInvalidConfigs
			}
			fmt.Fprintln(cmd.Root().Writer, "✅ All configurations are valid!")
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
