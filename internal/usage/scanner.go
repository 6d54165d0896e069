package usage

import (
	"errors"

	"go.uber.org/zap"
)

const (
	scanSkippedFileMessageConstant = "skipping unreadable source file"
	scanCompletedMessageConstant   = "source scan completed"
	logFieldPathConstant           = "path"
	logFieldRootConstant           = "root"
	logFieldScannedFilesConstant   = "scanned_files"
	logFieldSkippedFilesConstant   = "skipped_files"
	logFieldNamespaceCountConstant = "namespace_count"
	scannerCatalogMissingMessage   = "source file catalog not configured"
)

// ErrCatalogNotConfigured indicates the scanner was built without a catalog.
var ErrCatalogNotConfigured = errors.New(scannerCatalogMissingMessage)

// SourceFileCatalog enumerates and reads the files a scan covers.
type SourceFileCatalog interface {
	EnumerateSourceFiles(root string) ([]string, error)
	ReadSourceFile(path string) ([]byte, error)
}

// Scanner builds the set of namespaces referenced by a source tree.
type Scanner struct {
	catalog           SourceFileCatalog
	readFailurePolicy ReadFailurePolicy
	logger            *zap.Logger
}

// NewScanner constructs a Scanner. A nil logger discards diagnostics.
func NewScanner(catalog SourceFileCatalog, readFailurePolicy ReadFailurePolicy, logger *zap.Logger) *Scanner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(readFailurePolicy) == 0 {
		readFailurePolicy = ReadFailurePolicySkip
	}
	return &Scanner{catalog: catalog, readFailurePolicy: readFailurePolicy, logger: logger}
}

// Scan extracts symbols from every catalogued file under root and returns the distinct tokens.
// The root is expected to be a readable directory.
func (scanner *Scanner) Scan(root string) (UsedNamespaceSet, error) {
	if scanner.catalog == nil {
		return nil, ErrCatalogNotConfigured
	}

	sourceFiles, enumerationError := scanner.catalog.EnumerateSourceFiles(root)
	if enumerationError != nil {
		return nil, enumerationError
	}

	usedNamespaces := NewUsedNamespaceSet()
	skippedFiles := 0

	for _, sourceFile := range sourceFiles {
		content, readError := scanner.catalog.ReadSourceFile(sourceFile)
		if readError != nil {
			if scanner.readFailurePolicy == ReadFailurePolicyAbort {
				return nil, UnreadableSourceFileError{Path: sourceFile, Cause: readError}
			}
			skippedFiles++
			scanner.logger.Warn(scanSkippedFileMessageConstant, zap.String(logFieldPathConstant, sourceFile), zap.Error(readError))
			continue
		}

		for _, token := range ExtractSymbols(string(content)).Tokens() {
			usedNamespaces.Add(token)
		}
	}

	scanner.logger.Debug(
		scanCompletedMessageConstant,
		zap.String(logFieldRootConstant, root),
		zap.Int(logFieldScannedFilesConstant, len(sourceFiles)-skippedFiles),
		zap.Int(logFieldSkippedFilesConstant, skippedFiles),
		zap.Int(logFieldNamespaceCountConstant, usedNamespaces.Len()),
	)

	return usedNamespaces, nil
}
