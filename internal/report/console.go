package report

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
)

const (
	majorUpdatesHeadingConstant     = "\nMAJOR updates available:\n"
	minorUpdatesHeadingConstant     = "\nMINOR updates available:\n"
	updateLineTemplateConstant      = " - %s %s → %s\n"
	packageColumnHeaderConstant     = "Package"
	statusColumnHeaderConstant      = "Status"
	usedStatusLabelConstant         = "✔ used"
	unusedStatusLabelConstant       = "⚠ unused"
	analysisSummaryTemplateConstant = "\nSummary: %d used, %d unused\n"
)

// WriteUpdateListing prints the packages with major updates followed by those with minor updates.
// Empty groups are omitted.
func WriteUpdateListing(writer io.Writer, majorUpdates []OutdatedEntry, minorUpdates []OutdatedEntry) error {
	if writeError := writeUpdateGroup(writer, majorUpdatesHeadingConstant, majorUpdates); writeError != nil {
		return writeError
	}
	return writeUpdateGroup(writer, minorUpdatesHeadingConstant, minorUpdates)
}

func writeUpdateGroup(writer io.Writer, heading string, entries []OutdatedEntry) error {
	if len(entries) == 0 {
		return nil
	}
	if _, writeError := io.WriteString(writer, heading); writeError != nil {
		return writeError
	}
	for _, outdatedEntry := range entries {
		if _, writeError := fmt.Fprintf(writer, updateLineTemplateConstant, outdatedEntry.Name, outdatedEntry.CurrentVersion, outdatedEntry.LatestVersion); writeError != nil {
			return writeError
		}
	}
	return nil
}

// WriteAnalysisTable prints one row per package with its usage status. Used packages and the
// summary line are skipped when only unused packages were requested.
func WriteAnalysisTable(writer io.Writer, document AnalysisDocument) error {
	table := tablewriter.NewWriter(writer)
	table.SetHeader([]string{packageColumnHeaderConstant, statusColumnHeaderConstant})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetAutoWrapText(false)
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT})

	for _, packageUsage := range document.Packages {
		if packageUsage.Used {
			if document.OnlyUnused {
				continue
			}
			table.Append([]string{packageUsage.Name, usedStatusLabelConstant})
			continue
		}
		table.Append([]string{packageUsage.Name, unusedStatusLabelConstant})
	}

	table.Render()

	if document.OnlyUnused {
		return nil
	}
	_, writeError := fmt.Fprintf(writer, analysisSummaryTemplateConstant, len(document.UsedNames()), len(document.UnusedNames()))
	return writeError
}
