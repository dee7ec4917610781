// pkg/version/version.go
// Package version provides version metadata for the application.
package version

import (
	"errors"
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// These variables are typically injected at build time using -ldflags
var (
	// Version holds the current version of tinyevents.
	Version = "dev"
	// Commit holds the current version commit of tinyevents.
	Commit = "none"
	// BuildDate holds the build date of tinyevents.
	BuildDate = "unknown"
)

// ErrDevBuild is returned when a semantic version is required but the binary was built
// without one.
var ErrDevBuild = errors.New("development build has no semantic version")

// Struct returns version information in a structured format.
type Struct struct {
	Version   string `json:"version" yaml:"version"`
	Commit    string `json:"commit" yaml:"commit"`
	BuildDate string `json:"buildDate" yaml:"buildDate"`
}

// Info returns a formatted version string.
func Info() string {
	return fmt.Sprintf("tinyevents %s (commit: %s, date: %s)", Version, Commit, BuildDate)
}

// Get returns version information as a Struct.
func Get() Struct {
	return Struct{
		Version:   Version,
		Commit:    Commit,
		BuildDate: BuildDate,
	}
}

// Semver parses Version.
func Semver() (*semver.Version, error) {
	if Version == "dev" || Version == "" {
		return nil, ErrDevBuild
	}
	v, err := semver.NewVersion(Version)
	if err != nil {
		return nil, fmt.Errorf("parse version %q: %w", Version, err)
	}
	return v, nil
}

// Satisfies reports whether Version meets a constraint such as ">= 1.2, < 2".
func Satisfies(constraint string) (bool, error) {
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return false, fmt.Errorf("parse constraint %q: %w", constraint, err)
	}
	v, err := Semver()
	if err != nil {
		return false, err
	}
	return c.Check(v), nil
}
