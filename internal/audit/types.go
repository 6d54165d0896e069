package audit

import (
	"fmt"
	"strings"
)

const (
	versionSegmentSeparatorConstant = "."
	majorVersionSegmentIndex        = 0
	minorVersionSegmentIndex        = 1
	exitErrorTemplateConstant       = "audit finished with exit code %d"
)

// OutdatedPackage is a dependency for which a newer release exists.
type OutdatedPackage struct {
	Name           string
	CurrentVersion string
	LatestVersion  string
	LatestStatus   string
}

// IsMajorUpdate reports whether the first dot-separated segments differ.
func (outdatedPackage OutdatedPackage) IsMajorUpdate() bool {
	return !versionSegmentsEqual(outdatedPackage.CurrentVersion, outdatedPackage.LatestVersion, majorVersionSegmentIndex)
}

// IsMinorUpdate reports whether the first segments match and the second segments differ.
func (outdatedPackage OutdatedPackage) IsMinorUpdate() bool {
	return versionSegmentsEqual(outdatedPackage.CurrentVersion, outdatedPackage.LatestVersion, majorVersionSegmentIndex) &&
		!versionSegmentsEqual(outdatedPackage.CurrentVersion, outdatedPackage.LatestVersion, minorVersionSegmentIndex)
}

// versionSegmentsEqual compares one segment of two versions. A missing segment only equals another
// missing segment.
func versionSegmentsEqual(firstVersion string, secondVersion string, segmentIndex int) bool {
	firstSegment, firstPresent := versionSegment(firstVersion, segmentIndex)
	secondSegment, secondPresent := versionSegment(secondVersion, segmentIndex)
	if firstPresent != secondPresent {
		return false
	}
	return firstSegment == secondSegment
}

func versionSegment(version string, segmentIndex int) (string, bool) {
	segments := strings.Split(version, versionSegmentSeparatorConstant)
	if segmentIndex >= len(segments) {
		return "", false
	}
	return segments[segmentIndex], true
}

// Classification partitions declared packages by whether the sources reference them.
type Classification struct {
	UsedPackages   []string
	UnusedPackages []string
}

// AuditResult aggregates the outcome of one audit run.
type AuditResult struct {
	UsedPackages     []string
	UnusedPackages   []string
	OutdatedPackages []OutdatedPackage
}

// MajorUpdates returns the outdated packages with a major version change.
func (result AuditResult) MajorUpdates() []OutdatedPackage {
	majorUpdates := []OutdatedPackage{}
	for _, outdatedPackage := range result.OutdatedPackages {
		if outdatedPackage.IsMajorUpdate() {
			majorUpdates = append(majorUpdates, outdatedPackage)
		}
	}
	return majorUpdates
}

// MinorUpdates returns the outdated packages whose only change is a minor version change.
func (result AuditResult) MinorUpdates() []OutdatedPackage {
	minorUpdates := []OutdatedPackage{}
	for _, outdatedPackage := range result.OutdatedPackages {
		if !outdatedPackage.IsMajorUpdate() && outdatedPackage.IsMinorUpdate() {
			minorUpdates = append(minorUpdates, outdatedPackage)
		}
	}
	return minorUpdates
}

// CommandOptions captures the configurable parameters for an audit run.
type CommandOptions struct {
	ScanPath           string
	MarkdownReportPath string
	JSONReportPath     string
	YAMLReportPath     string
	OutdatedReportPath string
	Verdict            VerdictPolicy
	Limits             Limits
}

// Outcome reports the result of an audit run and the exit code it maps to.
type Outcome struct {
	Result         AuditResult
	DeclaredCount  int
	ExitCode       int
	BreachedLimit  LimitKind
	OutdatedFailed bool
}

// ExitError carries a non-zero audit exit code out of the cobra command.
type ExitError struct {
	Code int
}

// Error describes the exit code.
func (exitError ExitError) Error() string {
	return fmt.Sprintf(exitErrorTemplateConstant, exitError.Code)
}

// ExitCode returns the process exit status.
func (exitError ExitError) ExitCode() int {
	return exitError.Code
}
