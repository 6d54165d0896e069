package audit_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/selfphp/php-dependency-inspector/internal/audit"
	"github.com/selfphp/php-dependency-inspector/internal/composer"
	"github.com/selfphp/php-dependency-inspector/internal/project"
	"github.com/selfphp/php-dependency-inspector/internal/report"
	"github.com/selfphp/php-dependency-inspector/internal/usage"
)

const (
	exampleNamespaceSourceConstant = "<?php\nnamespace App\\Example;\n\nclass Greeter {}\n"
	appPackageLockConstant         = `{"packages":[{"name":"acme/app-support","version":"1.0.0","autoload":{"psr-4":{"App\\":"src/"}}}]}`
	unrelatedPackageLockConstant   = `{"packages":[{"name":"acme/unrelated","version":"1.0.0","autoload":{"psr-4":{"Unrelated\\Ns\\":"src/"}}}]}`
	outdatedPackageLockConstant    = `{"packages":[{"name":"x","version":"1.0.0","autoload":{"psr-4":{"X\\":"src/"}}}]}`
	mixedPackagesLockConstant      = `{"packages":[
		{"name":"acme/app-support","version":"1.0.0","autoload":{"psr-4":{"App\\":"src/"}}},
		{"name":"acme/unrelated","version":"1.0.0","autoload":{"psr-4":{"Unrelated\\Ns\\":"src/"}}},
		{"name":"monolog/monolog","version":"2.9.0","autoload":{"psr-4":{"Monolog\\":"src/Monolog"}}}
	]}`
	usingMonologSourceConstant = "<?php\nnamespace App;\n\nuse Monolog\\Logger;\n\n$logger = new Logger('app');\n"
)

type stubOutdatedChecker struct {
	records []composer.OutdatedRecord
	err     error
	calls   int
}

func (checker *stubOutdatedChecker) OutdatedPackages(executionContext context.Context) ([]composer.OutdatedRecord, error) {
	checker.calls++
	if checker.err != nil {
		return nil, checker.err
	}
	return checker.records, nil
}

type recordingReportWriter struct {
	files map[string][]byte
}

func (writer *recordingReportWriter) WriteFile(path string, content []byte) error {
	if writer.files == nil {
		writer.files = map[string][]byte{}
	}
	writer.files[path] = append([]byte{}, content...)
	return nil
}

type auditFixture struct {
	projectRoot string
	sourceRoot  string
}

func newAuditFixture(testInstance *testing.T, lockContent string, sources map[string]string) auditFixture {
	testInstance.Helper()

	projectRoot := testInstance.TempDir()
	sourceRoot := filepath.Join(projectRoot, "src")
	require.NoError(testInstance, os.MkdirAll(sourceRoot, 0o755))
	require.NoError(testInstance, os.WriteFile(filepath.Join(projectRoot, composer.DefaultLockFileNameConstant), []byte(lockContent), 0o644))

	for relativePath, content := range sources {
		sourcePath := filepath.Join(sourceRoot, filepath.FromSlash(relativePath))
		require.NoError(testInstance, os.MkdirAll(filepath.Dir(sourcePath), 0o755))
		require.NoError(testInstance, os.WriteFile(sourcePath, []byte(content), 0o644))
	}

	return auditFixture{projectRoot: projectRoot, sourceRoot: sourceRoot}
}

func (fixture auditFixture) newService(testInstance *testing.T, checker audit.OutdatedChecker, writer audit.ReportWriter, logger *zap.Logger, outputBuffer *bytes.Buffer, errorBuffer *bytes.Buffer) *audit.Service {
	testInstance.Helper()

	composerConfiguration := project.ComposerConfiguration{ProjectRoot: fixture.projectRoot}
	manifestLoader := project.ResolveManifestLoader(nil, composerConfiguration)
	scanner, scannerError := project.ResolveUsageScanner(nil, project.DefaultConfiguration().Scan, logger)
	require.NoError(testInstance, scannerError)

	return audit.NewService(manifestLoader, scanner, checker, writer, project.OSFileSystem{}, logger, outputBuffer, errorBuffer)
}

func TestServiceRunEndToEnd(testInstance *testing.T) {
	testCases := []struct {
		name             string
		lockContent      string
		sources          map[string]string
		outdatedRecords  []composer.OutdatedRecord
		verdict          audit.VerdictPolicy
		expectedUsed     []string
		expectedUnused   []string
		minimumExitCode  int
		expectedExitCode int
		expectedOutput   string
	}{
		{
			name:             "namespace_declaration_marks_package_used",
			lockContent:      appPackageLockConstant,
			sources:          map[string]string{"Example/Greeter.php": exampleNamespaceSourceConstant},
			verdict:          audit.VerdictPolicy{FailOnUnused: false, FailOnOutdated: audit.OutdatedPolicyNone, Threshold: 0},
			expectedUsed:     []string{"acme/app-support"},
			expectedUnused:   []string{},
			minimumExitCode:  0,
			expectedExitCode: 0,
			expectedOutput:   "",
		},
		{
			name:             "unmatched_package_fails_on_unused",
			lockContent:      unrelatedPackageLockConstant,
			sources:          map[string]string{"Example/Greeter.php": exampleNamespaceSourceConstant},
			verdict:          audit.VerdictPolicy{FailOnUnused: true, FailOnOutdated: audit.OutdatedPolicyNone, Threshold: 0},
			expectedUsed:     []string{},
			expectedUnused:   []string{"acme/unrelated"},
			minimumExitCode:  1,
			expectedExitCode: 1,
			expectedOutput:   "",
		},
		{
			name:             "major_update_fails_major_policy",
			lockContent:      outdatedPackageLockConstant,
			sources:          map[string]string{"Example/Greeter.php": exampleNamespaceSourceConstant},
			outdatedRecords:  []composer.OutdatedRecord{{Name: "x", Version: "1.0.0", Latest: "2.0.0"}},
			verdict:          audit.VerdictPolicy{FailOnOutdated: audit.OutdatedPolicyMajor},
			expectedUsed:     []string{},
			expectedUnused:   []string{"x"},
			minimumExitCode:  2,
			expectedExitCode: 2,
			expectedOutput:   "\nMAJOR updates available:\n - x 1.0.0 → 2.0.0\n",
		},
		{
			name:             "major_update_fails_minor_policy",
			lockContent:      outdatedPackageLockConstant,
			sources:          map[string]string{"Example/Greeter.php": exampleNamespaceSourceConstant},
			outdatedRecords:  []composer.OutdatedRecord{{Name: "x", Version: "1.0.0", Latest: "2.0.0"}},
			verdict:          audit.VerdictPolicy{FailOnOutdated: audit.OutdatedPolicyMinor},
			expectedUsed:     []string{},
			expectedUnused:   []string{"x"},
			minimumExitCode:  2,
			expectedExitCode: 2,
			expectedOutput:   "\nMAJOR updates available:\n - x 1.0.0 → 2.0.0\n",
		},
		{
			name:            "mixed_packages_in_declaration_order",
			lockContent:     mixedPackagesLockConstant,
			sources:         map[string]string{"Bootstrap.php": usingMonologSourceConstant},
			outdatedRecords: []composer.OutdatedRecord{{Name: "monolog/monolog", Version: "2.9.0", Latest: "2.10.0"}},
			verdict:         audit.VerdictPolicy{FailOnUnused: true, FailOnOutdated: audit.OutdatedPolicyMinor, Threshold: 0},
			expectedUsed:    []string{"acme/app-support", "monolog/monolog"},
			expectedUnused:  []string{"acme/unrelated"},
			minimumExitCode: 2,
			// unused threshold (1) and minor policy (2) combine to the larger code
			expectedExitCode: 2,
			expectedOutput:   "\nMINOR updates available:\n - monolog/monolog 2.9.0 → 2.10.0\n",
		},
	}

	for testCaseIndex, testCase := range testCases {
		testCase := testCase
		testInstance.Run(fmt.Sprintf("%d_%s", testCaseIndex, testCase.name), func(testInstance *testing.T) {
			fixture := newAuditFixture(testInstance, testCase.lockContent, testCase.sources)
			outputBuffer := &bytes.Buffer{}
			errorBuffer := &bytes.Buffer{}

			service := fixture.newService(testInstance, &stubOutdatedChecker{records: testCase.outdatedRecords}, &recordingReportWriter{}, zap.NewNop(), outputBuffer, errorBuffer)

			outcome, runError := service.Run(context.Background(), audit.CommandOptions{
				ScanPath: fixture.sourceRoot,
				Verdict:  testCase.verdict,
				Limits:   audit.DisabledLimits(),
			})
			require.NoError(testInstance, runError)
			require.Equal(testInstance, testCase.expectedUsed, outcome.Result.UsedPackages)
			require.Equal(testInstance, testCase.expectedUnused, outcome.Result.UnusedPackages)
			require.GreaterOrEqual(testInstance, outcome.ExitCode, testCase.minimumExitCode)
			require.Equal(testInstance, testCase.expectedExitCode, outcome.ExitCode)
			require.Equal(testInstance, testCase.expectedOutput, outputBuffer.String())
			require.Empty(testInstance, errorBuffer.String())
		})
	}
}

func TestServiceRunAppliesLimitsBeforeVerdict(testInstance *testing.T) {
	testCases := []struct {
		name             string
		limits           audit.Limits
		expectedExitCode int
		expectedLimit    audit.LimitKind
		expectedMessage  string
	}{
		{
			name:             "outdated_limit_checked_first",
			limits:           audit.Limits{MaxOutdated: 0, MaxTotalPackages: 1},
			expectedExitCode: 2,
			expectedLimit:    audit.LimitKindMaxOutdated,
			expectedMessage:  "❌ Too many outdated packages: 1 (max allowed: 0)\n",
		},
		{
			name:             "total_limit_checked_second",
			limits:           audit.Limits{MaxOutdated: 5, MaxTotalPackages: 2},
			expectedExitCode: 3,
			expectedLimit:    audit.LimitKindMaxTotalPackages,
			expectedMessage:  "❌ Too many total packages: 3 (max allowed: 2)\n",
		},
		{
			name:             "limits_within_bounds_fall_through_to_verdict",
			limits:           audit.Limits{MaxOutdated: 1, MaxTotalPackages: 3},
			expectedExitCode: 1,
			expectedLimit:    audit.LimitKindNone,
			expectedMessage:  "",
		},
	}

	for testCaseIndex, testCase := range testCases {
		testCase := testCase
		testInstance.Run(fmt.Sprintf("%d_%s", testCaseIndex, testCase.name), func(testInstance *testing.T) {
			fixture := newAuditFixture(testInstance, mixedPackagesLockConstant, map[string]string{"Bootstrap.php": usingMonologSourceConstant})
			outputBuffer := &bytes.Buffer{}
			errorBuffer := &bytes.Buffer{}
			checker := &stubOutdatedChecker{records: []composer.OutdatedRecord{{Name: "monolog/monolog", Version: "2.9.0", Latest: "2.9.1"}}}

			service := fixture.newService(testInstance, checker, &recordingReportWriter{}, zap.NewNop(), outputBuffer, errorBuffer)

			outcome, runError := service.Run(context.Background(), audit.CommandOptions{
				ScanPath: fixture.sourceRoot,
				Verdict:  audit.VerdictPolicy{FailOnUnused: true, FailOnOutdated: audit.OutdatedPolicyNone, Threshold: 0},
				Limits:   testCase.limits,
			})
			require.NoError(testInstance, runError)
			require.Equal(testInstance, testCase.expectedExitCode, outcome.ExitCode)
			require.Equal(testInstance, testCase.expectedLimit, outcome.BreachedLimit)
			require.Equal(testInstance, 3, outcome.DeclaredCount)
			require.Equal(testInstance, testCase.expectedMessage, outputBuffer.String())
		})
	}
}

func TestServiceRunToleratesOutdatedFailure(testInstance *testing.T) {
	fixture := newAuditFixture(testInstance, appPackageLockConstant, map[string]string{"Example/Greeter.php": exampleNamespaceSourceConstant})
	outputBuffer := &bytes.Buffer{}
	errorBuffer := &bytes.Buffer{}
	observedCore, observedLogs := observer.New(zapcore.WarnLevel)
	checker := &stubOutdatedChecker{err: errors.New("composer executable not found")}

	service := fixture.newService(testInstance, checker, &recordingReportWriter{}, zap.New(observedCore), outputBuffer, errorBuffer)

	outcome, runError := service.Run(context.Background(), audit.CommandOptions{
		ScanPath: fixture.sourceRoot,
		Verdict:  audit.VerdictPolicy{FailOnOutdated: audit.OutdatedPolicyMajor},
		Limits:   audit.Limits{MaxOutdated: 0, MaxTotalPackages: -1},
	})
	require.NoError(testInstance, runError)
	require.True(testInstance, outcome.OutdatedFailed)
	require.Empty(testInstance, outcome.Result.OutdatedPackages)
	require.Equal(testInstance, 0, outcome.ExitCode)
	require.Equal(testInstance, "⚠ Could not retrieve outdated packages: composer executable not found\n", errorBuffer.String())
	require.Equal(testInstance, 1, observedLogs.FilterMessage("outdated packages unavailable").Len())
}

func TestServiceRunWritesRequestedReports(testInstance *testing.T) {
	fixture := newAuditFixture(testInstance, mixedPackagesLockConstant, map[string]string{"Bootstrap.php": usingMonologSourceConstant})
	writer := &recordingReportWriter{}
	checker := &stubOutdatedChecker{records: []composer.OutdatedRecord{{Name: "monolog/monolog", Version: "2.9.0", Latest: "3.0.0", LatestStatus: "update-possible"}}}

	service := fixture.newService(testInstance, checker, writer, zap.NewNop(), &bytes.Buffer{}, &bytes.Buffer{})

	markdownPath := filepath.Join(fixture.projectRoot, "reports", "audit.md")
	jsonPath := filepath.Join(fixture.projectRoot, "reports", "audit.json")
	yamlPath := filepath.Join(fixture.projectRoot, "reports", "audit.yaml")
	outdatedPath := filepath.Join(fixture.projectRoot, "reports", "outdated.md")
	_, runError := service.Run(context.Background(), audit.CommandOptions{
		ScanPath:           fixture.sourceRoot,
		MarkdownReportPath: markdownPath,
		JSONReportPath:     jsonPath,
		YAMLReportPath:     yamlPath,
		OutdatedReportPath: outdatedPath,
		Limits:             audit.DisabledLimits(),
	})
	require.NoError(testInstance, runError)
	require.Len(testInstance, writer.files, 4)

	require.Contains(testInstance, string(writer.files[markdownPath]), "## ⚠ Unused Packages\n- acme/unrelated\n")
	require.Contains(testInstance, string(writer.files[markdownPath]), "- `monolog/monolog` (2.9.0 → 3.0.0)\n")

	var jsonDocument report.AuditDocument
	require.NoError(testInstance, json.Unmarshal(writer.files[jsonPath], &jsonDocument))
	require.Equal(testInstance, []string{"acme/app-support", "monolog/monolog"}, jsonDocument.Used)
	require.Equal(testInstance, []string{"acme/unrelated"}, jsonDocument.Unused)
	require.Equal(testInstance, []report.OutdatedEntry{{Name: "monolog/monolog", CurrentVersion: "2.9.0", LatestVersion: "3.0.0"}}, jsonDocument.Outdated)

	require.Contains(testInstance, string(writer.files[yamlPath]), "latestStatus: update-possible")
	require.Contains(testInstance, string(writer.files[outdatedPath]), "| monolog/monolog | 2.9.0 | 3.0.0 | update-possible |")
}

func TestServiceRunFailures(testInstance *testing.T) {
	testCases := []struct {
		name          string
		prepare       func(testInstance *testing.T) (auditFixture, string)
		expectedError error
	}{
		{
			name: "scan_path_missing",
			prepare: func(testInstance *testing.T) (auditFixture, string) {
				fixture := newAuditFixture(testInstance, appPackageLockConstant, nil)
				return fixture, filepath.Join(fixture.projectRoot, "missing")
			},
			expectedError: audit.ErrInvalidScanPath,
		},
		{
			name: "scan_path_is_file",
			prepare: func(testInstance *testing.T) (auditFixture, string) {
				fixture := newAuditFixture(testInstance, appPackageLockConstant, nil)
				return fixture, filepath.Join(fixture.projectRoot, composer.DefaultLockFileNameConstant)
			},
			expectedError: audit.ErrInvalidScanPath,
		},
		{
			name: "lock_file_missing",
			prepare: func(testInstance *testing.T) (auditFixture, string) {
				fixture := newAuditFixture(testInstance, appPackageLockConstant, nil)
				require.NoError(testInstance, os.Remove(filepath.Join(fixture.projectRoot, composer.DefaultLockFileNameConstant)))
				return fixture, fixture.sourceRoot
			},
			expectedError: composer.ErrManifestMissing,
		},
		{
			name: "lock_file_invalid",
			prepare: func(testInstance *testing.T) (auditFixture, string) {
				fixture := newAuditFixture(testInstance, "{not json", nil)
				return fixture, fixture.sourceRoot
			},
			expectedError: composer.ErrManifestInvalid,
		},
	}

	for testCaseIndex, testCase := range testCases {
		testCase := testCase
		testInstance.Run(fmt.Sprintf("%d_%s", testCaseIndex, testCase.name), func(testInstance *testing.T) {
			fixture, scanPath := testCase.prepare(testInstance)
			checker := &stubOutdatedChecker{}
			service := fixture.newService(testInstance, checker, &recordingReportWriter{}, zap.NewNop(), &bytes.Buffer{}, &bytes.Buffer{})

			_, runError := service.Run(context.Background(), audit.CommandOptions{ScanPath: scanPath, Limits: audit.DisabledLimits()})
			require.Error(testInstance, runError)
			require.ErrorIs(testInstance, runError, testCase.expectedError)
			require.Zero(testInstance, checker.calls)
		})
	}
}

func TestServiceRunAbortsOnUnreadableSourceUnderAbortPolicy(testInstance *testing.T) {
	fixture := newAuditFixture(testInstance, appPackageLockConstant, map[string]string{"Example/Greeter.php": exampleNamespaceSourceConstant})
	failingScanner := usageScannerFunc(func(root string) (usage.UsedNamespaceSet, error) {
		return nil, usage.UnreadableSourceFileError{Path: filepath.Join(root, "Broken.php"), Cause: os.ErrPermission}
	})
	manifestLoader := project.ResolveManifestLoader(nil, project.ComposerConfiguration{ProjectRoot: fixture.projectRoot})

	service := audit.NewService(manifestLoader, failingScanner, &stubOutdatedChecker{}, &recordingReportWriter{}, project.OSFileSystem{}, zap.NewNop(), &bytes.Buffer{}, &bytes.Buffer{})

	_, runError := service.Run(context.Background(), audit.CommandOptions{ScanPath: fixture.sourceRoot, Limits: audit.DisabledLimits()})
	require.Error(testInstance, runError)

	var unreadableError usage.UnreadableSourceFileError
	require.ErrorAs(testInstance, runError, &unreadableError)
	require.ErrorIs(testInstance, runError, os.ErrPermission)
}

type usageScannerFunc func(root string) (usage.UsedNamespaceSet, error)

func (scanner usageScannerFunc) Scan(root string) (usage.UsedNamespaceSet, error) {
	return scanner(root)
}
