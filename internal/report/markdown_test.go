package report_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/selfphp/php-dependency-inspector/internal/report"
)

func TestRenderAuditMarkdown(testInstance *testing.T) {
	document := report.AuditDocument{
		Used:   []string{"monolog/monolog"},
		Unused: []string{"guzzlehttp/guzzle", "ramsey/uuid"},
		Outdated: []report.OutdatedEntry{
			{Name: "monolog/monolog", CurrentVersion: "2.9.1", LatestVersion: "3.5.0"},
		},
	}

	expectedMarkdown := "# Dependency Audit Report\n\n" +
		"## ✅ Used Packages\n" +
		"- monolog/monolog\n" +
		"\n## ⚠ Unused Packages\n" +
		"- guzzlehttp/guzzle\n" +
		"- ramsey/uuid\n" +
		"\n## 🚫 Outdated Packages\n" +
		"- `monolog/monolog` (2.9.1 → 3.5.0)\n"

	require.Equal(testInstance, expectedMarkdown, report.RenderAuditMarkdown(document))
}

func TestRenderAnalysisMarkdown(testInstance *testing.T) {
	packages := []report.PackageUsage{
		{Name: "monolog/monolog", Used: true},
		{Name: "guzzlehttp/guzzle", Used: false},
	}

	testCases := []struct {
		name             string
		onlyUnused       bool
		expectedMarkdown string
	}{
		{
			name: "all_packages",
			expectedMarkdown: "# Dependency Analysis Report\n\n" +
				"## ✔ Used Packages\n- monolog/monolog\n\n" +
				"## ⚠ Unused Packages\n- guzzlehttp/guzzle\n" +
				"\n---\n\nTotal: 2 packages\n✔ Used: 1\n⚠ Unused: 1\n",
		},
		{
			name:       "only_unused",
			onlyUnused: true,
			expectedMarkdown: "# Dependency Analysis Report\n\n" +
				"## ⚠ Unused Packages\n- guzzlehttp/guzzle\n" +
				"\n---\n\nTotal: 2 packages\n✔ Used: 1\n⚠ Unused: 1\n",
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf("%d_%s", testCaseIndex, testCase.name), func(testInstance *testing.T) {
			document := report.AnalysisDocument{Packages: packages, OnlyUnused: testCase.onlyUnused}
			require.Equal(testInstance, testCase.expectedMarkdown, report.RenderAnalysisMarkdown(document))
		})
	}
}

func TestRenderOutdatedMarkdown(testInstance *testing.T) {
	require.Equal(testInstance, "No outdated packages found.", report.RenderOutdatedMarkdown(nil))

	rendered := report.RenderOutdatedMarkdown([]report.OutdatedEntry{
		{Name: "monolog/monolog", CurrentVersion: "2.9.1", LatestVersion: "3.5.0", LatestStatus: "update-possible"},
		{Name: "psr/log", CurrentVersion: "1.1.4", LatestVersion: "1.1.5"},
	})

	expectedTable := "# Outdated Packages Report\n\n" +
		"| Package | Current | Latest | Status |\n" +
		"|---------|---------|--------|--------|\n" +
		"| monolog/monolog | 2.9.1 | 3.5.0 | update-possible |\n" +
		"| psr/log | 1.1.4 | 1.1.5 | unknown |"
	require.Equal(testInstance, expectedTable, rendered)
}
