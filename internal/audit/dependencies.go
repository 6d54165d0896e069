package audit

import (
	"context"
	"io/fs"

	"github.com/selfphp/php-dependency-inspector/internal/composer"
	"github.com/selfphp/php-dependency-inspector/internal/usage"
)

// ManifestLoader loads the packages declared by the Composer lock file.
type ManifestLoader interface {
	LoadPackages() (composer.PackageManifest, error)
}

// UsageScanner collects the namespaces referenced under a source root.
type UsageScanner interface {
	Scan(root string) (usage.UsedNamespaceSet, error)
}

// OutdatedChecker lists installed packages with newer releases.
type OutdatedChecker interface {
	OutdatedPackages(executionContext context.Context) ([]composer.OutdatedRecord, error)
}

// ReportWriter persists rendered reports.
type ReportWriter interface {
	WriteFile(path string, content []byte) error
}

// FileSystem provides filesystem operations required by the audit workflow.
type FileSystem interface {
	Stat(path string) (fs.FileInfo, error)
}
