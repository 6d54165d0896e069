package usage

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

const (
	// DefaultSourcePatternConstant selects PHP source files by base name.
	DefaultSourcePatternConstant = "*.php"

	relativePathSeparatorConstant              = '/'
	includePatternCompileErrorTemplateConstant = "invalid source pattern %q: %w"
	excludePatternCompileErrorTemplateConstant = "invalid exclude pattern %q: %w"
	sourceEnumerationErrorTemplateConstant     = "unable to enumerate source files under %s: %w"
	excludeDirectorySuffixPatternConstant      = "/**"
)

// compiledPattern keeps the original pattern text next to its matcher for diagnostics.
type compiledPattern struct {
	pattern string
	matcher glob.Glob
}

// FilesystemCatalog enumerates and reads source files from disk.
type FilesystemCatalog struct {
	includePatterns []compiledPattern
	excludePatterns []compiledPattern
}

// NewFilesystemCatalog compiles the include patterns (matched against file base names) and the
// exclude patterns (matched against root-relative, slash-separated paths).
func NewFilesystemCatalog(includePatterns []string, excludePatterns []string) (*FilesystemCatalog, error) {
	catalog := &FilesystemCatalog{}

	sanitizedIncludePatterns := sanitizePatterns(includePatterns)
	if len(sanitizedIncludePatterns) == 0 {
		sanitizedIncludePatterns = []string{DefaultSourcePatternConstant}
	}

	for _, pattern := range sanitizedIncludePatterns {
		matcher, compileError := glob.Compile(pattern)
		if compileError != nil {
			return nil, fmt.Errorf(includePatternCompileErrorTemplateConstant, pattern, compileError)
		}
		catalog.includePatterns = append(catalog.includePatterns, compiledPattern{pattern: pattern, matcher: matcher})
	}

	for _, pattern := range sanitizePatterns(excludePatterns) {
		matcher, compileError := glob.Compile(pattern, relativePathSeparatorConstant)
		if compileError != nil {
			return nil, fmt.Errorf(excludePatternCompileErrorTemplateConstant, pattern, compileError)
		}
		catalog.excludePatterns = append(catalog.excludePatterns, compiledPattern{pattern: pattern, matcher: matcher})
	}

	return catalog, nil
}

// EnumerateSourceFiles walks root recursively in lexical order and returns matching file paths.
// Unreadable subdirectories are skipped.
func (catalog *FilesystemCatalog) EnumerateSourceFiles(root string) ([]string, error) {
	var sourceFiles []string

	walkError := filepath.WalkDir(root, func(path string, directoryEntry fs.DirEntry, walkError error) error {
		if walkError != nil {
			if path == root {
				return walkError
			}
			if directoryEntry != nil && directoryEntry.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		relativePath := catalog.relativeSlashPath(root, path)

		if directoryEntry.IsDir() {
			if path != root && catalog.isExcludedDirectory(relativePath) {
				return fs.SkipDir
			}
			return nil
		}

		if !directoryEntry.Type().IsRegular() && directoryEntry.Type()&fs.ModeSymlink == 0 {
			return nil
		}

		if catalog.isExcluded(relativePath) {
			return nil
		}

		if !catalog.isIncluded(directoryEntry.Name()) {
			return nil
		}

		sourceFiles = append(sourceFiles, path)
		return nil
	})
	if walkError != nil {
		return nil, fmt.Errorf(sourceEnumerationErrorTemplateConstant, root, walkError)
	}

	return sourceFiles, nil
}

// ReadSourceFile loads the file contents.
func (catalog *FilesystemCatalog) ReadSourceFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

func (catalog *FilesystemCatalog) relativeSlashPath(root string, path string) string {
	relativePath, relativeError := filepath.Rel(root, path)
	if relativeError != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(relativePath)
}

func (catalog *FilesystemCatalog) isIncluded(baseName string) bool {
	for _, pattern := range catalog.includePatterns {
		if pattern.matcher.Match(baseName) {
			return true
		}
	}
	return false
}

func (catalog *FilesystemCatalog) isExcluded(relativePath string) bool {
	for _, pattern := range catalog.excludePatterns {
		if pattern.matcher.Match(relativePath) {
			return true
		}
	}
	return false
}

// isExcludedDirectory lets "vendor/**" prune the vendor directory itself.
func (catalog *FilesystemCatalog) isExcludedDirectory(relativePath string) bool {
	return catalog.isExcluded(relativePath) || catalog.isExcluded(relativePath+excludeDirectorySuffixPatternConstant)
}

func sanitizePatterns(rawPatterns []string) []string {
	sanitized := make([]string, 0, len(rawPatterns))
	for _, rawPattern := range rawPatterns {
		trimmedPattern := strings.TrimSpace(rawPattern)
		if len(trimmedPattern) == 0 {
			continue
		}
		sanitized = append(sanitized, trimmedPattern)
	}
	return sanitized
}
