// Copyright 2025 Pentora Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package format

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/vulntor/tinyevents/pkg/bench"
)

// OutputMode defines the output format for CLI commands
type OutputMode string

const (
	// ModeJSON outputs data as JSON
	ModeJSON OutputMode = "json"
	// ModeYAML outputs data as YAML
	ModeYAML OutputMode = "yaml"
	// ModeTable outputs data as an aligned table
	ModeTable OutputMode = "table"
)

// Formatter provides consistent output formatting across CLI commands
type Formatter interface {
	// PrintJSON outputs data as indented JSON to stdout
	PrintJSON(data any) error

	// PrintYAML outputs data as YAML to stdout
	PrintYAML(data any) error

	// PrintTable outputs rows as a table, or as structured records in JSON/YAML mode
	PrintTable(headers []string, rows [][]string) error

	// PrintSummary outputs a summary message (unless quiet mode)
	PrintSummary(message string) error

	// PrintError outputs an error to stderr (or a structured error to stdout)
	PrintError(err error) error

	// PrintReport renders a benchmark report
	PrintReport(r *bench.Report) error
}

type formatter struct {
	stdout io.Writer
	stderr io.Writer
	mode   OutputMode
	quiet  bool
	color  bool
}

// New creates a new Formatter
func New(stdout, stderr io.Writer, mode OutputMode, quiet, color bool) Formatter {
	return &formatter{
		stdout: stdout,
		stderr: stderr,
		mode:   mode,
		quiet:  quiet,
		color:  color,
	}
}

func (f *formatter) PrintJSON(data any) error {
	enc := json.NewEncoder(f.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func (f *formatter) PrintYAML(data any) error {
	enc := yaml.NewEncoder(f.stdout)
	enc.SetIndent(2)
	if err := enc.Encode(data); err != nil {
		return err
	}
	return enc.Close()
}

// printStructured writes data in the formatter's machine-readable mode.
func (f *formatter) printStructured(data any) error {
	if f.mode == ModeYAML {
		return f.PrintYAML(data)
	}
	return f.PrintJSON(data)
}

func (f *formatter) PrintTable(headers []string, rows [][]string) error {
	if f.mode != ModeTable {
		items := make([]map[string]string, 0, len(rows))
		for _, row := range rows {
			item := make(map[string]string)
			for i, header := range headers {
				if i < len(row) {
					item[header] = row[i]
				}
			}
			items = append(items, item)
		}
		return f.printStructured(items)
	}

	w := tabwriter.NewWriter(f.stdout, 0, 0, 2, ' ', 0)

	headerLine := make([]string, len(headers))
	for i, h := range headers {
		headerLine[i] = strings.ToUpper(h)
		if f.color {
			headerLine[i] = color.New(color.Bold).Sprint(headerLine[i])
		}
	}
	if _, err := fmt.Fprintln(w, strings.Join(headerLine, "\t")); err != nil {
		return err
	}

	for _, row := range rows {
		if _, err := fmt.Fprintln(w, strings.Join(row, "\t")); err != nil {
			return err
		}
	}

	return w.Flush()
}

func (f *formatter) PrintSummary(message string) error {
	if f.quiet {
		return nil
	}

	if f.mode != ModeTable {
		// Keep stdout machine-readable.
		_, err := fmt.Fprintln(f.stderr, message)
		return err
	}

	if f.color {
		_, err := color.New(color.FgGreen).Fprintln(f.stdout, message)
		return err
	}

	_, err := fmt.Fprintln(f.stdout, message)
	return err
}

func (f *formatter) PrintError(err error) error {
	if err == nil {
		return nil
	}

	if f.mode != ModeTable {
		return f.printStructured(map[string]any{
			"success": false,
			"error":   err.Error(),
		})
	}

	var writeErr error
	if f.color {
		_, writeErr = color.New(color.FgRed).Fprintf(f.stderr, "Error: %v\n", err)
	} else {
		_, writeErr = fmt.Fprintf(f.stderr, "Error: %v\n", err)
	}

	return writeErr
}

// ValidateMode checks if the output mode is valid
func ValidateMode(mode string) error {
	switch OutputMode(strings.ToLower(mode)) {
	case ModeJSON, ModeYAML, ModeTable:
		return nil
	default:
		return fmt.Errorf("invalid output mode: %s (must be 'table', 'json' or 'yaml')", mode)
	}
}

// ParseMode converts a string to OutputMode, defaulting to table.
func ParseMode(mode string) OutputMode {
	switch strings.ToLower(mode) {
	case "json":
		return ModeJSON
	case "yaml", "yml":
		return ModeYAML
	default:
		return ModeTable
	}
}
