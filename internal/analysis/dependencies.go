package analysis

import (
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

// ReportWriter persists the rendered report.
type ReportWriter interface {
	WriteFile(path string, content []byte) error
}

// FileSystem validates the scan root.
type FileSystem interface {
	Stat(path string) (fs.FileInfo, error)
}
