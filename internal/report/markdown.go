package report

import (
	"fmt"
	"strings"
)

const (
	auditReportTitleConstant          = "# Dependency Audit Report\n\n"
	auditUsedHeadingConstant          = "## ✅ Used Packages\n"
	auditUnusedHeadingConstant        = "\n## ⚠ Unused Packages\n"
	auditOutdatedHeadingConstant      = "\n## 🚫 Outdated Packages\n"
	auditOutdatedLineTemplateConstant = "- `%s` (%s → %s)\n"
	listItemTemplateConstant          = "- %s\n"
	analysisReportTitleConstant       = "# Dependency Analysis Report\n\n"
	analysisUsedHeadingConstant       = "## ✔ Used Packages\n"
	analysisUnusedHeadingConstant     = "## ⚠ Unused Packages\n"
	analysisSummarySeparatorConstant  = "\n---\n\n"
	analysisTotalTemplateConstant     = "Total: %d packages\n"
	analysisUsedTotalTemplateConstant = "✔ Used: %d\n"
	analysisUnusedTotalTemplate       = "⚠ Unused: %d\n"
	outdatedEmptyMessageConstant      = "No outdated packages found."
	outdatedTitleConstant             = "# Outdated Packages Report\n"
	outdatedTableHeaderConstant       = "| Package | Current | Latest | Status |"
	outdatedTableDividerConstant      = "|---------|---------|--------|--------|"
	outdatedTableRowTemplateConstant  = "| %s | %s | %s | %s |"
	outdatedUnknownStatusConstant     = "unknown"
	markdownLineSeparatorConstant     = "\n"
)

// RenderAuditMarkdown renders the audit document with used, unused, and outdated sections.
func RenderAuditMarkdown(document AuditDocument) string {
	var builder strings.Builder

	builder.WriteString(auditReportTitleConstant)
	builder.WriteString(auditUsedHeadingConstant)
	for _, packageName := range document.Used {
		fmt.Fprintf(&builder, listItemTemplateConstant, packageName)
	}

	builder.WriteString(auditUnusedHeadingConstant)
	for _, packageName := range document.Unused {
		fmt.Fprintf(&builder, listItemTemplateConstant, packageName)
	}

	builder.WriteString(auditOutdatedHeadingConstant)
	for _, outdatedEntry := range document.Outdated {
		fmt.Fprintf(&builder, auditOutdatedLineTemplateConstant, outdatedEntry.Name, outdatedEntry.CurrentVersion, outdatedEntry.LatestVersion)
	}

	return builder.String()
}

// RenderAnalysisMarkdown renders the analysis document. The used section is omitted when only unused
// packages were requested; the totals always count every package.
func RenderAnalysisMarkdown(document AnalysisDocument) string {
	var builder strings.Builder

	usedNames := document.UsedNames()
	unusedNames := document.UnusedNames()

	builder.WriteString(analysisReportTitleConstant)
	if !document.OnlyUnused {
		builder.WriteString(analysisUsedHeadingConstant)
		for _, packageName := range usedNames {
			fmt.Fprintf(&builder, listItemTemplateConstant, packageName)
		}
		builder.WriteString(markdownLineSeparatorConstant)
	}

	builder.WriteString(analysisUnusedHeadingConstant)
	for _, packageName := range unusedNames {
		fmt.Fprintf(&builder, listItemTemplateConstant, packageName)
	}

	builder.WriteString(analysisSummarySeparatorConstant)
	fmt.Fprintf(&builder, analysisTotalTemplateConstant, len(usedNames)+len(unusedNames))
	fmt.Fprintf(&builder, analysisUsedTotalTemplateConstant, len(usedNames))
	fmt.Fprintf(&builder, analysisUnusedTotalTemplate, len(unusedNames))

	return builder.String()
}

// RenderOutdatedMarkdown renders outdated entries as a Markdown table including the Composer status label.
func RenderOutdatedMarkdown(entries []OutdatedEntry) string {
	if len(entries) == 0 {
		return outdatedEmptyMessageConstant
	}

	lines := []string{outdatedTitleConstant, outdatedTableHeaderConstant, outdatedTableDividerConstant}
	for _, outdatedEntry := range entries {
		latestStatus := outdatedEntry.LatestStatus
		if len(strings.TrimSpace(latestStatus)) == 0 {
			latestStatus = outdatedUnknownStatusConstant
		}
		lines = append(lines, fmt.Sprintf(outdatedTableRowTemplateConstant, outdatedEntry.Name, outdatedEntry.CurrentVersion, outdatedEntry.LatestVersion, latestStatus))
	}

	return strings.Join(lines, markdownLineSeparatorConstant)
}
