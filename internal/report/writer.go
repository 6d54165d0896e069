package report

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	reportFilePermissionsConstant      = 0o644
	reportDirectoryPermissionsConstant = 0o755
	reportWriteErrorTemplateConstant   = "unable to write report %s: %w"
)

// FileWriter persists rendered documents.
type FileWriter interface {
	WriteFile(path string, content []byte) error
}

// OSFileWriter writes reports to the local disk, creating missing parent directories.
type OSFileWriter struct{}

// WriteFile implements FileWriter.
func (OSFileWriter) WriteFile(path string, content []byte) error {
	if directoryError := os.MkdirAll(filepath.Dir(path), reportDirectoryPermissionsConstant); directoryError != nil {
		return fmt.Errorf(reportWriteErrorTemplateConstant, path, directoryError)
	}
	if writeError := os.WriteFile(path, content, reportFilePermissionsConstant); writeError != nil {
		return fmt.Errorf(reportWriteErrorTemplateConstant, path, writeError)
	}
	return nil
}
