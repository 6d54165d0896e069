package analysis

import "github.com/selfphp/php-dependency-inspector/internal/report"

// CommandOptions captures the parameters of an analysis run.
type CommandOptions struct {
	ScanPath           string
	OnlyUnused         bool
	MarkdownReportPath string
}

// Result lists each declared package with its usage status in declaration order.
type Result struct {
	Packages []report.PackageUsage
}

// UsedCount returns the number of used packages.
func (result Result) UsedCount() int {
	usedCount := 0
	for _, packageUsage := range result.Packages {
		if packageUsage.Used {
			usedCount++
		}
	}
	return usedCount
}

// UnusedCount returns the number of unused packages.
func (result Result) UnusedCount() int {
	return len(result.Packages) - result.UsedCount()
}
