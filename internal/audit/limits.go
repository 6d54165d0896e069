package audit

import "fmt"

const (
	exitCodeMaxOutdatedExceeded         = 2
	exitCodeMaxTotalPackagesExceeded    = 3
	maxOutdatedExceededTemplateConstant = "❌ Too many outdated packages: %d (max allowed: %d)"
	maxTotalExceededTemplateConstant    = "❌ Too many total packages: %d (max allowed: %d)"
)

// LimitKind names the caller-level limit an audit breached.
type LimitKind string

// Limit kinds.
const (
	LimitKindNone             LimitKind = ""
	LimitKindMaxOutdated      LimitKind = "max_outdated"
	LimitKindMaxTotalPackages LimitKind = "max_total_packages"
)

// Limits caps the outdated and total package counts. Negative values disable a limit.
type Limits struct {
	MaxOutdated      int
	MaxTotalPackages int
}

// DisabledLimits returns Limits with both caps turned off.
func DisabledLimits() Limits {
	return Limits{MaxOutdated: -1, MaxTotalPackages: -1}
}

// LimitBreach describes a breached limit.
type LimitBreach struct {
	Kind     LimitKind
	ExitCode int
	Actual   int
	Allowed  int
}

// Message renders the console notice for the breach.
func (breach LimitBreach) Message() string {
	switch breach.Kind {
	case LimitKindMaxOutdated:
		return fmt.Sprintf(maxOutdatedExceededTemplateConstant, breach.Actual, breach.Allowed)
	case LimitKindMaxTotalPackages:
		return fmt.Sprintf(maxTotalExceededTemplateConstant, breach.Actual, breach.Allowed)
	default:
		return ""
	}
}

// EvaluateLimits checks the outdated cap first (exit 2) and then the total package cap (exit 3).
// The boolean is false when no enabled limit is exceeded.
func EvaluateLimits(limits Limits, declaredCount int, outdatedCount int) (LimitBreach, bool) {
	if limits.MaxOutdated >= 0 && outdatedCount > limits.MaxOutdated {
		return LimitBreach{Kind: LimitKindMaxOutdated, ExitCode: exitCodeMaxOutdatedExceeded, Actual: outdatedCount, Allowed: limits.MaxOutdated}, true
	}
	if limits.MaxTotalPackages >= 0 && declaredCount > limits.MaxTotalPackages {
		return LimitBreach{Kind: LimitKindMaxTotalPackages, ExitCode: exitCodeMaxTotalPackagesExceeded, Actual: declaredCount, Allowed: limits.MaxTotalPackages}, true
	}
	return LimitBreach{}, false
}
