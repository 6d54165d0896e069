package audit

import (
	"fmt"
	"strings"
)

const (
	outdatedPolicyNoneStringConstant  = "none"
	outdatedPolicyMinorStringConstant = "minor"
	outdatedPolicyMajorStringConstant = "major"
	unsupportedOutdatedPolicyTemplate = "unsupported outdated policy: %q"
	exitCodeSuccessConstant           = 0
	exitCodeUnusedThresholdExceeded   = 1
	exitCodeOutdatedPolicyViolated    = 2
)

// OutdatedPolicy selects which outdated packages fail an audit.
type OutdatedPolicy string

// Supported outdated policies.
const (
	OutdatedPolicyNone  OutdatedPolicy = OutdatedPolicy(outdatedPolicyNoneStringConstant)
	OutdatedPolicyMinor OutdatedPolicy = OutdatedPolicy(outdatedPolicyMinorStringConstant)
	OutdatedPolicyMajor OutdatedPolicy = OutdatedPolicy(outdatedPolicyMajorStringConstant)
)

// OutdatedPolicyChoices lists the accepted policy names.
func OutdatedPolicyChoices() []string {
	return []string{outdatedPolicyNoneStringConstant, outdatedPolicyMinorStringConstant, outdatedPolicyMajorStringConstant}
}

// ParseOutdatedPolicy converts user input into an OutdatedPolicy. Empty input selects none; unknown
// input also yields none together with an error so callers can warn.
func ParseOutdatedPolicy(rawPolicy string) (OutdatedPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(rawPolicy)) {
	case "", outdatedPolicyNoneStringConstant:
		return OutdatedPolicyNone, nil
	case outdatedPolicyMinorStringConstant:
		return OutdatedPolicyMinor, nil
	case outdatedPolicyMajorStringConstant:
		return OutdatedPolicyMajor, nil
	default:
		return OutdatedPolicyNone, fmt.Errorf(unsupportedOutdatedPolicyTemplate, rawPolicy)
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (policy *OutdatedPolicy) UnmarshalText(text []byte) error {
	parsedPolicy, parseError := ParseOutdatedPolicy(string(text))
	if parseError != nil {
		return parseError
	}
	*policy = parsedPolicy
	return nil
}

// VerdictPolicy configures how audit findings map to an exit code.
type VerdictPolicy struct {
	FailOnUnused   bool
	FailOnOutdated OutdatedPolicy
	Threshold      int
}

// ComputeExitCode returns 1 when failing on unused packages and their count exceeds the threshold,
// 2 when an outdated package violates the outdated policy, and the larger of the two when both apply.
// Any policy other than minor or major behaves as none.
func ComputeExitCode(unusedCount int, outdatedPackages []OutdatedPackage, policy VerdictPolicy) int {
	exitCode := exitCodeSuccessConstant

	if policy.FailOnUnused && unusedCount > policy.Threshold {
		exitCode = exitCodeUnusedThresholdExceeded
	}

	for _, outdatedPackage := range outdatedPackages {
		if violatesOutdatedPolicy(outdatedPackage, policy.FailOnOutdated) {
			return max(exitCode, exitCodeOutdatedPolicyViolated)
		}
	}

	return exitCode
}

func violatesOutdatedPolicy(outdatedPackage OutdatedPackage, policy OutdatedPolicy) bool {
	switch policy {
	case OutdatedPolicyMajor:
		return outdatedPackage.IsMajorUpdate()
	case OutdatedPolicyMinor:
		return outdatedPackage.IsMajorUpdate() || outdatedPackage.IsMinorUpdate()
	default:
		return false
	}
}
