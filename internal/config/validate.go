// Package config provides the configuration model and helpers for the lake
// pipelines.
//
// This file adds a lightweight linter/validator for Config values. It performs
// static checks over a decoded Config and returns a list of issues (errors and
// warnings) that callers can surface in a CLI or tests.
package config

import (
	"fmt"
	"strings"

	"lakeetl/internal/period"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a configuration warning that should be surfaced
	// to users but may not necessarily block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation/lint finding.
//
// Path is a dotted path into the config (e.g. "fact.dsn"); Message is
// human-readable.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a single
// error in contexts that expect error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether any issue is severity error.
func HasErrors(issues []Issue) bool {
	for _, i := range issues {
		if i.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Validate performs static validation of a Config. It does not mutate the
// config; callers decide whether warnings are fatal.
func Validate(c Config) []Issue {
	var issues []Issue

	if strings.TrimSpace(c.Job) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "job",
			Message:  "job must not be empty; it is used for metrics labeling and identifying runs",
		})
	}

	issues = append(issues, validateLake(c.Lake)...)
	issues = append(issues, validateControl(c.Control)...)
	issues = append(issues, validateFact(c.Fact)...)
	issues = append(issues, validateRun(c.Run)...)

	return issues
}

func validateLake(l Lake) []Issue {
	var issues []Issue
	if strings.TrimSpace(l.Bucket) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "lake.bucket",
			Message:  "lake.bucket must not be empty",
		})
	}
	if strings.TrimSpace(l.Source) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "lake.source",
			Message:  "lake.source must not be empty; it names the upstream system in bronze paths",
		})
	}
	if l.UsePathStyle && strings.TrimSpace(l.Endpoint) == "" {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "lake.use_path_style",
			Message:  "path-style addressing is set without a custom endpoint; AWS itself does not need it",
		})
	}
	return issues
}

func validateControl(c Control) []Issue {
	if strings.TrimSpace(c.DSN) == "" {
		return []Issue{{
			Severity: SeverityError,
			Path:     "control.dsn",
			Message:  "control.dsn must not be empty",
		}}
	}
	return nil
}

func validateFact(f Fact) []Issue {
	var issues []Issue
	if strings.TrimSpace(f.DSN) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "fact.dsn",
			Message:  "fact.dsn must not be empty",
		})
	}
	if strings.TrimSpace(f.Table) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "fact.table",
			Message:  "fact.table must not be empty",
		})
	}
	return issues
}

func validateRun(r Run) []Issue {
	var issues []Issue

	start, startErr := period.Parse(r.StartMonth)
	if startErr != nil {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "run.start_month",
			Message:  fmt.Sprintf("start_month must be YYYY-MM: %v", startErr),
		})
	}
	end, endErr := period.Parse(r.EndMonth)
	if endErr != nil {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "run.end_month",
			Message:  fmt.Sprintf("end_month must be YYYY-MM: %v", endErr),
		})
	}
	if startErr == nil && endErr == nil && end.Before(start) {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "run.end_month",
			Message:  fmt.Sprintf("end_month %s precedes start_month %s", end, start),
		})
	}
	if r.PollSeconds < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "run.poll_seconds",
			Message:  "poll_seconds must not be negative",
		})
	}
	return issues
}
