// Copyright 2025 Pentora Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package format

import (
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/vulntor/tinyevents/pkg/bench"
	"github.com/vulntor/tinyevents/pkg/version"
)

var (
	bannerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("170")).
			Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("57")).Padding(0, 1)
	subtleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
)

// PrintReport renders a bench report. JSON and YAML modes emit the report as is; table mode
// prints a banner followed by a metric table and the self-check status.
func (f *formatter) PrintReport(r *bench.Report) error {
	if r == nil {
		return nil
	}
	if f.mode != ModeTable {
		return f.printStructured(r)
	}

	if !f.quiet {
		if _, err := fmt.Fprintln(f.stdout, f.banner(r)); err != nil {
			return err
		}
	}

	if err := f.PrintTable([]string{"metric", "value"}, reportRows(r)); err != nil {
		return err
	}

	if f.quiet {
		return nil
	}
	status := "✓ self-checks passed"
	style := okStyle
	if r.Failure != "" {
		status = "✗ " + r.Failure
		style = failStyle
	}
	if f.color {
		status = style.Render(status)
	}
	_, err := fmt.Fprintln(f.stdout, status)
	return err
}

func (f *formatter) banner(r *bench.Report) string {
	title := "tinyevents bench"
	run := "run " + r.RunID + " | " + version.Info()
	if !f.color {
		return title + "  " + run
	}
	return bannerStyle.Render(title) + " " + subtleStyle.Render(run)
}

func reportRows(r *bench.Report) [][]string {
	u := func(v uint64) string { return strconv.FormatUint(v, 10) }
	return [][]string{
		{"listeners", strconv.Itoa(r.Listeners)},
		{"one-shot", strconv.Itoa(r.OneShot)},
		{"frames", u(r.Frames)},
		{"immediate", u(r.Immediate)},
		{"queued", u(r.Queued)},
		{"subscribed", u(r.Stats.Subscribed)},
		{"removed", u(r.Stats.Removed)},
		{"delivered", u(r.Stats.Delivered)},
		{"skipped", u(r.Stats.Skipped)},
		{"order violations", strconv.Itoa(r.OrderViolations)},
		{"duration", r.Duration.Round(time.Microsecond).String()},
		{"events/s", strconv.FormatFloat(r.EventsPerSecond, 'f', 0, 64)},
	}
}
