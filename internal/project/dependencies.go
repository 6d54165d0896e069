package project

import (
	"context"
	"io/fs"
	"os"

	"go.uber.org/zap"

	"github.com/selfphp/php-dependency-inspector/internal/composer"
	"github.com/selfphp/php-dependency-inspector/internal/execshell"
	"github.com/selfphp/php-dependency-inspector/internal/report"
	"github.com/selfphp/php-dependency-inspector/internal/usage"
)

// ManifestLoader loads the packages declared by the Composer lock file.
type ManifestLoader interface {
	LoadPackages() (composer.PackageManifest, error)
}

// UsageScanner collects the namespaces referenced by the project sources.
type UsageScanner interface {
	Scan(root string) (usage.UsedNamespaceSet, error)
}

// OutdatedChecker lists installed packages with newer releases.
type OutdatedChecker interface {
	OutdatedPackages(executionContext context.Context) ([]composer.OutdatedRecord, error)
}

// FileSystem provides the filesystem inspection required before a scan.
type FileSystem interface {
	Stat(path string) (fs.FileInfo, error)
}

// OSFileSystem implements FileSystem using the operating system primitives.
type OSFileSystem struct{}

// Stat retrieves file metadata.
func (OSFileSystem) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}

// ResolveManifestLoader returns the provided loader or a lock file loader built from the configuration.
func ResolveManifestLoader(existing ManifestLoader, configuration ComposerConfiguration) ManifestLoader {
	if existing != nil {
		return existing
	}
	return composer.NewLockFileLoader(configuration.LockFilePath(), configuration.IncludeDevelopment, composer.OSFileReader{})
}

// ResolveUsageScanner returns the provided scanner or a filesystem-backed scanner built from the configuration.
func ResolveUsageScanner(existing UsageScanner, configuration ScanConfiguration, logger *zap.Logger) (UsageScanner, error) {
	if existing != nil {
		return existing, nil
	}

	catalog, catalogError := usage.NewFilesystemCatalog([]string{configuration.Pattern}, configuration.Exclude)
	if catalogError != nil {
		return nil, catalogError
	}
	return usage.NewScanner(catalog, configuration.OnReadError, logger), nil
}

// ResolveOutdatedChecker returns the provided checker or constructs one that runs Composer through a shell executor.
func ResolveOutdatedChecker(existing OutdatedChecker, configuration ComposerConfiguration, logger *zap.Logger, observer execshell.CommandEventObserver) (OutdatedChecker, error) {
	if existing != nil {
		return existing, nil
	}

	commandRunner := execshell.NewOSCommandRunner()
	shellExecutor, creationError := execshell.NewShellExecutor(logger, commandRunner, observer)
	if creationError != nil {
		return nil, creationError
	}

	locator := composer.NewBinaryLocator(configuration.Binary, configuration.ProjectRoot)
	return composer.NewOutdatedChecker(shellExecutor, locator, configuration.ProjectRoot, configuration.Timeout)
}

// ResolveFileSystem returns the provided filesystem or an OS-backed default.
func ResolveFileSystem(existing FileSystem) FileSystem {
	if existing != nil {
		return existing
	}
	return OSFileSystem{}
}

// ResolveReportWriter returns the provided writer or an OS-backed default.
func ResolveReportWriter(existing report.FileWriter) report.FileWriter {
	if existing != nil {
		return existing
	}
	return report.OSFileWriter{}
}
