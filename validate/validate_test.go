package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTempConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func TestValidateConfig(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name         string
		file         string
		content      string
		wantValid    bool
		wantError    string
		wantWarnings int
	}{
		{
			name:      "valid json",
			file:      "good.json",
			content:   `{"min_range": 1, "max_range": 100, "hint_trigger_count": 5, "messages": {"equal": "Won in {attempts}!"}}`,
			wantValid: true,
		},
		{
			name:      "valid yaml",
			file:      "good.yaml",
			content:   "min_range: 1\nmax_range: 1000\nhint_trigger_count: 3\n",
			wantValid: true,
		},
		{
			name:      "partial file uses defaults",
			file:      "partial.json",
			content:   `{"max_range": 50}`,
			wantValid: true,
		},
		{
			name:      "malformed json",
			file:      "bad.json",
			content:   `{"min_range": 1,`,
			wantValid: false,
			wantError: "Invalid JSON",
		},
		{
			name:      "unknown json key",
			file:      "typo.json",
			content:   `{"max_rnage": 50}`,
			wantValid: false,
			wantError: "unknown field",
		},
		{
			name:      "unknown yaml key",
			file:      "typo.yml",
			content:   "hint_trigger: 3\n",
			wantValid: false,
			wantError: "Invalid YAML",
		},
		{
			name:      "inverted range",
			file:      "range.json",
			content:   `{"min_range": 10, "max_range": 5}`,
			wantValid: false,
			wantError: "invalid configuration",
		},
		{
			name:      "zero hint trigger",
			file:      "trigger.json",
			content:   `{"hint_trigger_count": 0}`,
			wantValid: false,
			wantError: "hint_trigger_count",
		},
		{
			name:         "missing placeholder warns",
			file:         "message.json",
			content:      `{"messages": {"equal": "You win!"}}`,
			wantValid:    true,
			wantWarnings: 1,
		},
		{
			name:         "hint trigger never reached warns",
			file:         "late.json",
			content:      `{"min_range": 1, "max_range": 10, "hint_trigger_count": 8}`,
			wantValid:    true,
			wantWarnings: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTempConfig(t, dir, tt.file, tt.content)
			result := validateConfig(path)

			if result.Valid != tt.wantValid {
				t.Fatalf("Expected valid=%v, got %v (errors: %v)", tt.wantValid, result.Valid, result.Errors)
			}
			if tt.wantError != "" && !strings.Contains(strings.Join(result.Errors, "\n"), tt.wantError) {
				t.Errorf("Expected error containing %q, got %v", tt.wantError, result.Errors)
			}
			if len(result.Warnings) != tt.wantWarnings {
				t.Errorf("Expected %d warnings, got %v", tt.wantWarnings, result.Warnings)
			}
		})
	}
}

func TestValidateConfig_MissingFile(t *testing.T) {
	result := validateConfig(filepath.Join(t.TempDir(), "missing.json"))
	if result.Valid {
		t.Error("Expected missing file to be invalid")
	}
	if !strings.Contains(result.Errors[0], "Failed to read file") {
		t.Errorf("Unexpected error: %v", result.Errors)
	}
}

func TestCollectFiles(t *testing.T) {
	dir := t.TempDir()
	writeTempConfig(t, dir, "a.json", "{}")
	writeTempConfig(t, dir, "b.yaml", "")
	writeTempConfig(t, dir, "notes.txt", "ignored")

	files, err := collectFiles([]string{dir, "explicit.json"})
	if err != nil {
		t.Fatalf("collectFiles failed: %v", err)
	}
	if len(files) != 3 {
		t.Fatalf("Expected 3 files, got %v", files)
	}
	for _, f := range files {
		if strings.HasSuffix(f, ".txt") {
			t.Errorf("Unexpected file %s", f)
		}
	}
}

func TestCommand(t *testing.T) {
	dir := t.TempDir()
	good := writeTempConfig(t, dir, "good.json", `{"max_range": 100}`)
	warn := writeTempConfig(t, dir, "warn.json", `{"messages": {"equal": "Done"}}`)
	bad := writeTempConfig(t, dir, "bad.json", `{"min_range": 5, "max_range": 5}`)

	tests := []struct {
		name    string
		args    []string
		wantErr bool
		wantOut string
	}{
		{"all valid", []string{"validate", good}, false, "All configurations are valid"},
		{"warning passes", []string{"validate", warn}, false, "placeholder"},
		{"strict fails on warning", []string{"validate", "--strict", warn}, true, "INVALID"},
		{"invalid file", []string{"validate", good, bad}, true, "Some configurations have errors"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			cmd := newCommand()
			cmd.Writer = &out

			err := cmd.Run(context.Background(), tt.args)
			if tt.wantErr != (err != nil) {
				t.Fatalf("Expected error=%v, got %v", tt.wantErr, err)
			}
			if err != nil && !errors.Is(err, errInvalidConfigs) {
				t.Errorf("Expected errInvalidConfigs, got %v", err)
			}
			if !strings.Contains(out.String(), tt.wantOut) {
				t.Errorf("Expected %q in output:\n%s", tt.wantOut, out.String())
			}
		})
	}
}
