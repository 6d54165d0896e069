package project_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/selfphp/php-dependency-inspector/internal/composer"
	"github.com/selfphp/php-dependency-inspector/internal/project"
	"github.com/selfphp/php-dependency-inspector/internal/usage"
)

const (
	projectSubtestNameTemplateConstant = "%d_%s"
	projectLockFileContentConstant     = `{"packages":[{"name":"monolog/monolog","autoload":{"psr-4":{"Monolog\\":"src/Monolog"}}}],"packages-dev":[{"name":"phpunit/phpunit","autoload":{"classmap":["src/"]}}]}`
)

func TestConfigurationSanitizeRestoresDefaults(testInstance *testing.T) {
	sanitized := project.Configuration{
		Composer: project.ComposerConfiguration{ProjectRoot: "  ", Binary: " composer ", Timeout: -time.Second},
		Scan:     project.ScanConfiguration{Pattern: " ", Exclude: []string{" vendor/** ", "", "  "}},
	}.Sanitize()

	require.Equal(testInstance, project.DefaultProjectRootConstant, sanitized.Composer.ProjectRoot)
	require.Equal(testInstance, "composer", sanitized.Composer.Binary)
	require.Equal(testInstance, time.Duration(0), sanitized.Composer.Timeout)
	require.Equal(testInstance, usage.DefaultSourcePatternConstant, sanitized.Scan.Pattern)
	require.Equal(testInstance, []string{"vendor/**"}, sanitized.Scan.Exclude)
	require.Equal(testInstance, usage.ReadFailurePolicySkip, sanitized.Scan.OnReadError)
}

func TestComposerConfigurationLockFilePath(testInstance *testing.T) {
	absoluteLockFile := filepath.Join(testInstance.TempDir(), "composer.lock")

	testCases := []struct {
		name         string
		projectRoot  string
		lockFile     string
		expectedPath string
	}{
		{name: "default_lock_file", projectRoot: "app", lockFile: "", expectedPath: filepath.Join("app", "composer.lock")},
		{name: "relative_lock_file", projectRoot: "app", lockFile: "locks/composer.lock", expectedPath: filepath.Join("app", "locks", "composer.lock")},
		{name: "absolute_lock_file", projectRoot: "app", lockFile: absoluteLockFile, expectedPath: absoluteLockFile},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(projectSubtestNameTemplateConstant, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			configuration := project.ComposerConfiguration{ProjectRoot: testCase.projectRoot, LockFile: testCase.lockFile}
			require.Equal(testInstance, testCase.expectedPath, configuration.LockFilePath())
		})
	}
}

func TestResolveManifestLoaderHonorsDevelopmentPackages(testInstance *testing.T) {
	projectRoot := testInstance.TempDir()
	require.NoError(testInstance, os.WriteFile(filepath.Join(projectRoot, "composer.lock"), []byte(projectLockFileContentConstant), 0o600))

	testCases := []struct {
		name               string
		includeDevelopment bool
		expectedNames      []string
	}{
		{name: "production_only", includeDevelopment: false, expectedNames: []string{"monolog/monolog"}},
		{name: "with_development", includeDevelopment: true, expectedNames: []string{"monolog/monolog", "phpunit/phpunit"}},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(projectSubtestNameTemplateConstant, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			configuration := project.ComposerConfiguration{ProjectRoot: projectRoot, IncludeDevelopment: testCase.includeDevelopment}.Sanitize()

			manifest, loadError := project.ResolveManifestLoader(nil, configuration).LoadPackages()
			require.NoError(testInstance, loadError)
			require.Equal(testInstance, testCase.expectedNames, manifest.Names())
		})
	}
}

func TestResolveUsageScannerRejectsInvalidPatterns(testInstance *testing.T) {
	configuration := project.ScanConfiguration{Pattern: "[", OnReadError: usage.ReadFailurePolicySkip}

	scanner, resolveError := project.ResolveUsageScanner(nil, configuration, zap.NewNop())
	require.Error(testInstance, resolveError)
	require.Nil(testInstance, scanner)
}

func TestResolveUsageScannerScansConfiguredPattern(testInstance *testing.T) {
	sourceRoot := testInstance.TempDir()
	require.NoError(testInstance, os.WriteFile(filepath.Join(sourceRoot, "index.php"), []byte("<?php\nuse Monolog\\Logger;\n"), 0o600))
	require.NoError(testInstance, os.MkdirAll(filepath.Join(sourceRoot, "vendor"), 0o755))
	require.NoError(testInstance, os.WriteFile(filepath.Join(sourceRoot, "vendor", "autoload.php"), []byte("<?php\nuse Composer\\Autoload;\n"), 0o600))

	configuration := project.DefaultConfiguration().Scan
	configuration.Exclude = []string{"vendor/**"}

	scanner, resolveError := project.ResolveUsageScanner(nil, configuration, zap.NewNop())
	require.NoError(testInstance, resolveError)

	namespaces, scanError := scanner.Scan(sourceRoot)
	require.NoError(testInstance, scanError)
	require.True(testInstance, namespaces.Contains(usage.NamespaceToken("Monolog\\Logger")))
	require.False(testInstance, namespaces.Contains(usage.NamespaceToken("Composer\\Autoload")))
}

func TestResolveOutdatedCheckerKeepsProvidedChecker(testInstance *testing.T) {
	provided := outdatedCheckerStub{}

	resolved, resolveError := project.ResolveOutdatedChecker(provided, project.DefaultConfiguration().Composer, zap.NewNop(), nil)
	require.NoError(testInstance, resolveError)
	require.Equal(testInstance, provided, resolved)

	constructed, constructError := project.ResolveOutdatedChecker(nil, project.DefaultConfiguration().Composer, zap.NewNop(), nil)
	require.NoError(testInstance, constructError)
	require.NotNil(testInstance, constructed)
}

func TestResolveDefaultsUseOperatingSystem(testInstance *testing.T) {
	require.Equal(testInstance, project.OSFileSystem{}, project.ResolveFileSystem(nil))
	require.NotNil(testInstance, project.ResolveReportWriter(nil))
}

type outdatedCheckerStub struct{}

func (outdatedCheckerStub) OutdatedPackages(context.Context) ([]composer.OutdatedRecord, error) {
	return nil, nil
}
