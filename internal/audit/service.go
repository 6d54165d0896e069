package audit

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/selfphp/php-dependency-inspector/internal/composer"
	"github.com/selfphp/php-dependency-inspector/internal/report"
)

const (
	invalidScanPathTemplateConstant     = "%w: %s"
	manifestLoadErrorTemplateConstant   = "unable to load declared packages: %w"
	scanErrorTemplateConstant           = "unable to scan sources: %w"
	reportRenderErrorTemplateConstant   = "unable to render %s report: %w"
	reportWriteErrorTemplateConstant    = "unable to write %s report to %s: %w"
	consoleWriteErrorTemplateConstant   = "unable to write audit summary: %w"
	outdatedUnavailableTemplateConstant = "⚠ Could not retrieve outdated packages: %v\n"
	outdatedUnavailableLogMessage       = "outdated packages unavailable"
	limitBreachedLogMessage             = "audit limit exceeded"
	auditCompletedLogMessage            = "audit completed"
	markdownReportKindConstant          = "markdown"
	jsonReportKindConstant              = "json"
	yamlReportKindConstant              = "yaml"
	outdatedReportKindConstant          = "outdated"
	logFieldScanPathConstant            = "scan_path"
	logFieldDeclaredCountConstant       = "declared_packages"
	logFieldUsedCountConstant           = "used_packages"
	logFieldUnusedCountConstant         = "unused_packages"
	logFieldOutdatedCountConstant       = "outdated_packages"
	logFieldExitCodeConstant            = "exit_code"
	logFieldLimitConstant               = "limit"
	logFieldReportPathConstant          = "report_path"
	reportWrittenLogMessage             = "audit report written"
	lineBreakConstant                   = "\n"
)

// ErrInvalidScanPath indicates the scan root does not exist or is not a directory.
var ErrInvalidScanPath = errors.New("❌ Invalid path specified")

// Service coordinates manifest loading, source scanning, outdated checks, and reporting.
type Service struct {
	manifestLoader  ManifestLoader
	usageScanner    UsageScanner
	outdatedChecker OutdatedChecker
	reportWriter    ReportWriter
	fileSystem      FileSystem
	logger          *zap.Logger
	outputWriter    io.Writer
	errorWriter     io.Writer
}

// NewService constructs a Service using the provided dependencies.
func NewService(manifestLoader ManifestLoader, usageScanner UsageScanner, outdatedChecker OutdatedChecker, reportWriter ReportWriter, fileSystem FileSystem, logger *zap.Logger, outputWriter io.Writer, errorWriter io.Writer) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if outputWriter == nil {
		outputWriter = io.Discard
	}
	if errorWriter == nil {
		errorWriter = io.Discard
	}
	return &Service{
		manifestLoader:  manifestLoader,
		usageScanner:    usageScanner,
		outdatedChecker: outdatedChecker,
		reportWriter:    reportWriter,
		fileSystem:      fileSystem,
		logger:          logger,
		outputWriter:    outputWriter,
		errorWriter:     errorWriter,
	}
}

// Run executes the audit according to the provided options. Outdated lookup failures are reported
// and tolerated; every other failure aborts the run.
func (service *Service) Run(executionContext context.Context, options CommandOptions) (Outcome, error) {
	if validationError := service.validateScanPath(options.ScanPath); validationError != nil {
		return Outcome{}, validationError
	}

	manifest, manifestError := service.manifestLoader.LoadPackages()
	if manifestError != nil {
		return Outcome{}, fmt.Errorf(manifestLoadErrorTemplateConstant, manifestError)
	}

	usedNamespaces, scanError := service.usageScanner.Scan(options.ScanPath)
	if scanError != nil {
		return Outcome{}, fmt.Errorf(scanErrorTemplateConstant, scanError)
	}

	classification := Classify(manifest, usedNamespaces)
	outcome := Outcome{
		Result: AuditResult{
			UsedPackages:     classification.UsedPackages,
			UnusedPackages:   classification.UnusedPackages,
			OutdatedPackages: []OutdatedPackage{},
		},
		DeclaredCount: manifest.Len(),
	}

	outdatedPackages, outdatedError := service.collectOutdatedPackages(executionContext)
	if outdatedError != nil {
		fmt.Fprintf(service.errorWriter, outdatedUnavailableTemplateConstant, outdatedError)
		service.logger.Warn(outdatedUnavailableLogMessage, zap.Error(outdatedError))
		outcome.OutdatedFailed = true
	} else {
		outcome.Result.OutdatedPackages = outdatedPackages
	}

	if reportError := service.writeReports(outcome.Result, options); reportError != nil {
		return Outcome{}, reportError
	}

	if listingError := report.WriteUpdateListing(service.outputWriter, toOutdatedEntries(outcome.Result.MajorUpdates()), toOutdatedEntries(outcome.Result.MinorUpdates())); listingError != nil {
		return Outcome{}, fmt.Errorf(consoleWriteErrorTemplateConstant, listingError)
	}

	if breach, breached := EvaluateLimits(options.Limits, outcome.DeclaredCount, len(outcome.Result.OutdatedPackages)); breached {
		if _, writeError := io.WriteString(service.outputWriter, breach.Message()+lineBreakConstant); writeError != nil {
			return Outcome{}, fmt.Errorf(consoleWriteErrorTemplateConstant, writeError)
		}
		service.logger.Info(limitBreachedLogMessage, zap.String(logFieldLimitConstant, string(breach.Kind)), zap.Int(logFieldExitCodeConstant, breach.ExitCode))
		outcome.ExitCode = breach.ExitCode
		outcome.BreachedLimit = breach.Kind
	} else {
		outcome.ExitCode = ComputeExitCode(len(outcome.Result.UnusedPackages), outcome.Result.OutdatedPackages, options.Verdict)
	}

	service.logger.Info(
		auditCompletedLogMessage,
		zap.String(logFieldScanPathConstant, options.ScanPath),
		zap.Int(logFieldDeclaredCountConstant, outcome.DeclaredCount),
		zap.Int(logFieldUsedCountConstant, len(outcome.Result.UsedPackages)),
		zap.Int(logFieldUnusedCountConstant, len(outcome.Result.UnusedPackages)),
		zap.Int(logFieldOutdatedCountConstant, len(outcome.Result.OutdatedPackages)),
		zap.Int(logFieldExitCodeConstant, outcome.ExitCode),
	)

	return outcome, nil
}

func (service *Service) validateScanPath(scanPath string) error {
	if service.fileSystem == nil {
		return nil
	}
	fileInfo, statError := service.fileSystem.Stat(scanPath)
	if statError != nil || !fileInfo.IsDir() {
		return fmt.Errorf(invalidScanPathTemplateConstant, ErrInvalidScanPath, scanPath)
	}
	return nil
}

func (service *Service) collectOutdatedPackages(executionContext context.Context) ([]OutdatedPackage, error) {
	if service.outdatedChecker == nil {
		return []OutdatedPackage{}, nil
	}
	records, checkError := service.outdatedChecker.OutdatedPackages(executionContext)
	if checkError != nil {
		return nil, checkError
	}
	return toOutdatedPackages(records), nil
}

func (service *Service) writeReports(result AuditResult, options CommandOptions) error {
	document := report.AuditDocument{
		Used:     result.UsedPackages,
		Unused:   result.UnusedPackages,
		Outdated: toOutdatedEntries(result.OutdatedPackages),
	}

	if len(options.MarkdownReportPath) > 0 {
		markdown := report.RenderAuditMarkdown(document)
		if writeError := service.writeReport(markdownReportKindConstant, options.MarkdownReportPath, []byte(markdown)); writeError != nil {
			return writeError
		}
	}

	if len(options.JSONReportPath) > 0 {
		jsonContent, renderError := report.RenderAuditJSON(document)
		if renderError != nil {
			return fmt.Errorf(reportRenderErrorTemplateConstant, jsonReportKindConstant, renderError)
		}
		if writeError := service.writeReport(jsonReportKindConstant, options.JSONReportPath, jsonContent); writeError != nil {
			return writeError
		}
	}

	if len(options.YAMLReportPath) > 0 {
		yamlContent, renderError := report.RenderAuditYAML(document)
		if renderError != nil {
			return fmt.Errorf(reportRenderErrorTemplateConstant, yamlReportKindConstant, renderError)
		}
		if writeError := service.writeReport(yamlReportKindConstant, options.YAMLReportPath, yamlContent); writeError != nil {
			return writeError
		}
	}

	if len(options.OutdatedReportPath) > 0 {
		outdatedMarkdown := report.RenderOutdatedMarkdown(document.Outdated)
		if writeError := service.writeReport(outdatedReportKindConstant, options.OutdatedReportPath, []byte(outdatedMarkdown)); writeError != nil {
			return writeError
		}
	}

	return nil
}

func (service *Service) writeReport(reportKind string, reportPath string, content []byte) error {
	if service.reportWriter == nil {
		return nil
	}
	if writeError := service.reportWriter.WriteFile(reportPath, content); writeError != nil {
		return fmt.Errorf(reportWriteErrorTemplateConstant, reportKind, reportPath, writeError)
	}
	service.logger.Debug(reportWrittenLogMessage, zap.String(logFieldReportPathConstant, reportPath))
	return nil
}

func toOutdatedPackages(records []composer.OutdatedRecord) []OutdatedPackage {
	outdatedPackages := make([]OutdatedPackage, 0, len(records))
	for _, record := range records {
		outdatedPackages = append(outdatedPackages, OutdatedPackage{
			Name:           record.Name,
			CurrentVersion: record.Version,
			LatestVersion:  record.Latest,
			LatestStatus:   record.LatestStatus,
		})
	}
	return outdatedPackages
}

func toOutdatedEntries(outdatedPackages []OutdatedPackage) []report.OutdatedEntry {
	entries := make([]report.OutdatedEntry, 0, len(outdatedPackages))
	for _, outdatedPackage := range outdatedPackages {
		entries = append(entries, report.OutdatedEntry{
			Name:           outdatedPackage.Name,
			CurrentVersion: outdatedPackage.CurrentVersion,
			LatestVersion:  outdatedPackage.LatestVersion,
			LatestStatus:   outdatedPackage.LatestStatus,
		})
	}
	return entries
}
