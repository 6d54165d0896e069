package analysis

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/selfphp/php-dependency-inspector/internal/audit"
	"github.com/selfphp/php-dependency-inspector/internal/report"
)

const (
	startingMessageConstant           = "🔍 Starting dependency analysis...\n"
	reportSavedTemplateConstant       = "\nReport saved to: %s\n"
	invalidScanPathTemplateConstant   = "%w: %s"
	manifestLoadErrorTemplateConstant = "unable to load declared packages: %w"
	scanErrorTemplateConstant         = "unable to scan sources: %w"
	consoleWriteErrorTemplateConstant = "unable to write analysis listing: %w"
	reportWriteErrorTemplateConstant  = "unable to write analysis report to %s: %w"
	analysisCompletedLogMessage       = "analysis completed"
	logFieldScanPathConstant          = "scan_path"
	logFieldUsedCountConstant         = "used_packages"
	logFieldUnusedCountConstant       = "unused_packages"
	logFieldReportPathConstant        = "report_path"
)

// ErrInvalidScanPath indicates the scan root does not exist or is not a directory.
var ErrInvalidScanPath = errors.New("❌ Invalid path specified")

// Service lists declared packages with their usage status.
type Service struct {
	manifestLoader ManifestLoader
	usageScanner   UsageScanner
	reportWriter   ReportWriter
	fileSystem     FileSystem
	logger         *zap.Logger
	outputWriter   io.Writer
}

// NewService constructs a Service using the provided dependencies.
func NewService(manifestLoader ManifestLoader, usageScanner UsageScanner, reportWriter ReportWriter, fileSystem FileSystem, logger *zap.Logger, outputWriter io.Writer) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if outputWriter == nil {
		outputWriter = io.Discard
	}
	return &Service{
		manifestLoader: manifestLoader,
		usageScanner:   usageScanner,
		reportWriter:   reportWriter,
		fileSystem:     fileSystem,
		logger:         logger,
		outputWriter:   outputWriter,
	}
}

// Run prints the usage table and writes the optional Markdown report.
func (service *Service) Run(executionContext context.Context, options CommandOptions) (Result, error) {
	if _, writeError := io.WriteString(service.outputWriter, startingMessageConstant); writeError != nil {
		return Result{}, fmt.Errorf(consoleWriteErrorTemplateConstant, writeError)
	}

	if service.fileSystem != nil {
		fileInfo, statError := service.fileSystem.Stat(options.ScanPath)
		if statError != nil || !fileInfo.IsDir() {
			return Result{}, fmt.Errorf(invalidScanPathTemplateConstant, ErrInvalidScanPath, options.ScanPath)
		}
	}

	manifest, manifestError := service.manifestLoader.LoadPackages()
	if manifestError != nil {
		return Result{}, fmt.Errorf(manifestLoadErrorTemplateConstant, manifestError)
	}

	usedNamespaces, scanError := service.usageScanner.Scan(options.ScanPath)
	if scanError != nil {
		return Result{}, fmt.Errorf(scanErrorTemplateConstant, scanError)
	}

	result := Result{Packages: make([]report.PackageUsage, 0, manifest.Len())}
	for _, declaredPackage := range manifest.Packages {
		result.Packages = append(result.Packages, report.PackageUsage{
			Name: declaredPackage.Name,
			Used: audit.IsPackageUsed(declaredPackage, usedNamespaces),
		})
	}

	document := report.AnalysisDocument{Packages: result.Packages, OnlyUnused: options.OnlyUnused}
	if tableError := report.WriteAnalysisTable(service.outputWriter, document); tableError != nil {
		return Result{}, fmt.Errorf(consoleWriteErrorTemplateConstant, tableError)
	}

	if len(options.MarkdownReportPath) > 0 && service.reportWriter != nil {
		markdown := report.RenderAnalysisMarkdown(document)
		if writeError := service.reportWriter.WriteFile(options.MarkdownReportPath, []byte(markdown)); writeError != nil {
			return Result{}, fmt.Errorf(reportWriteErrorTemplateConstant, options.MarkdownReportPath, writeError)
		}
		if _, writeError := fmt.Fprintf(service.outputWriter, reportSavedTemplateConstant, options.MarkdownReportPath); writeError != nil {
			return Result{}, fmt.Errorf(consoleWriteErrorTemplateConstant, writeError)
		}
	}

	service.logger.Info(
		analysisCompletedLogMessage,
		zap.String(logFieldScanPathConstant, options.ScanPath),
		zap.Int(logFieldUsedCountConstant, result.UsedCount()),
		zap.Int(logFieldUnusedCountConstant, result.UnusedCount()),
		zap.String(logFieldReportPathConstant, options.MarkdownReportPath),
	)

	return result, nil
}
