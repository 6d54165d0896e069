package audit

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/selfphp/php-dependency-inspector/internal/execshell"
	"github.com/selfphp/php-dependency-inspector/internal/project"
	"github.com/selfphp/php-dependency-inspector/internal/usage"
	"github.com/selfphp/php-dependency-inspector/internal/utils/flags"
)

const (
	commandUseConstant                    = "audit"
	commandShortDescriptionConstant       = "Audit Composer dependencies for CI and cron jobs"
	commandLongDescriptionConstant        = "audit classifies the packages declared in composer.lock as used or unused by the project sources, lists outdated packages, writes optional reports, and exits non-zero when the configured policies are violated."
	unexpectedArgumentsErrorMessage       = "audit does not accept positional arguments"
	pathFlagNameConstant                  = "path"
	pathFlagDescriptionConstant           = "Source directory to scan"
	outputFlagNameConstant                = "output"
	outputFlagDescriptionConstant         = "Path to save a Markdown report to"
	outputJSONFlagNameConstant            = "output-json"
	outputJSONFlagDescriptionConstant     = "Path to save a JSON report to"
	outputYAMLFlagNameConstant            = "output-yaml"
	outputYAMLFlagDescriptionConstant     = "Path to save a YAML report to"
	outputOutdatedFlagNameConstant        = "output-outdated"
	outputOutdatedFlagDescription         = "Path to save a Markdown table of outdated packages to"
	thresholdFlagNameConstant             = "threshold"
	thresholdFlagDescriptionConstant      = "Number of unused packages tolerated before failing"
	exitOnUnusedFlagNameConstant          = "exit-on-unused"
	exitOnUnusedFlagDescriptionConstant   = "Exit with code 1 when unused packages exceed the threshold"
	exitOnOutdatedFlagNameConstant        = "exit-on-outdated"
	exitOnOutdatedFlagDescriptionConstant = "Exit with code 2 when outdated packages match the policy"
	maxOutdatedFlagNameConstant           = "max-outdated"
	maxOutdatedFlagDescriptionConstant    = "Maximum number of outdated packages allowed before failing with code 2 (-1 disables)"
	maxTotalFlagNameConstant              = "fail-if-total-packages-exceeds"
	maxTotalFlagDescriptionConstant       = "Fail with code 3 when the declared package count exceeds this number (-1 disables)"
	onReadErrorFlagNameConstant           = "on-read-error"
	onReadErrorFlagDescriptionConstant    = "How unreadable source files are handled"
	invalidOutdatedPolicyLogMessage       = "unsupported outdated policy, falling back to none"
	logFieldPolicyConstant                = "policy"
	commandExecutionErrorTemplateConstant = "audit failed: %w"
	dependencyResolutionErrorTemplate     = "unable to prepare audit dependencies: %w"
)

// LoggerProvider supplies a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider returns the current audit configuration.
type ConfigurationProvider func() CommandConfiguration

// ProjectConfigurationProvider returns the shared Composer and scan settings.
type ProjectConfigurationProvider func() project.Configuration

// CommandBuilder assembles the audit cobra command with configurable dependencies.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	ConfigurationProvider        ConfigurationProvider
	ProjectConfigurationProvider ProjectConfigurationProvider
	ManifestLoader               ManifestLoader
	UsageScanner                 UsageScanner
	OutdatedChecker              OutdatedChecker
	ReportWriter                 ReportWriter
	FileSystem                   FileSystem
	CommandEventsObserver        execshell.CommandEventObserver
}

// Build constructs the cobra command for dependency audits.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		RunE:  builder.run,
	}

	defaults := DefaultCommandConfiguration()
	command.Flags().String(pathFlagNameConstant, "", pathFlagDescriptionConstant)
	command.Flags().String(outputFlagNameConstant, "", outputFlagDescriptionConstant)
	command.Flags().String(outputJSONFlagNameConstant, "", outputJSONFlagDescriptionConstant)
	command.Flags().String(outputYAMLFlagNameConstant, "", outputYAMLFlagDescriptionConstant)
	command.Flags().String(outputOutdatedFlagNameConstant, "", outputOutdatedFlagDescription)
	command.Flags().Int(thresholdFlagNameConstant, defaults.Threshold, thresholdFlagDescriptionConstant)
	var exitOnUnused bool
	flags.AddToggleFlag(command.Flags(), &exitOnUnused, exitOnUnusedFlagNameConstant, "", defaults.ExitOnUnused, exitOnUnusedFlagDescriptionConstant)
	command.Flags().String(exitOnOutdatedFlagNameConstant, "", flags.FormatChoiceUsage(defaults.ExitOnOutdated, OutdatedPolicyChoices(), exitOnOutdatedFlagDescriptionConstant))
	command.Flags().Int(maxOutdatedFlagNameConstant, defaults.MaxOutdated, maxOutdatedFlagDescriptionConstant)
	command.Flags().Int(maxTotalFlagNameConstant, defaults.FailIfTotalPackagesExceeds, maxTotalFlagDescriptionConstant)
	var onReadError string
	flags.AddChoiceFlag(command.Flags(), &onReadError, onReadErrorFlagNameConstant, string(usage.ReadFailurePolicySkip), usage.ReadFailurePolicyChoices(), onReadErrorFlagDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errors.New(unexpectedArgumentsErrorMessage)
	}

	logger := builder.resolveLogger()
	options, optionsError := builder.parseOptions(command, logger)
	if optionsError != nil {
		return optionsError
	}

	service, serviceError := builder.resolveService(command, logger)
	if serviceError != nil {
		return fmt.Errorf(dependencyResolutionErrorTemplate, serviceError)
	}

	outcome, runError := service.Run(command.Context(), options)
	if runError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, runError)
	}

	if outcome.ExitCode != exitCodeSuccessConstant {
		return ExitError{Code: outcome.ExitCode}
	}
	return nil
}

func (builder *CommandBuilder) parseOptions(command *cobra.Command, logger *zap.Logger) (CommandOptions, error) {
	configuration := builder.resolveConfiguration()

	pathFlagValue, pathFlagError := command.Flags().GetString(pathFlagNameConstant)
	if pathFlagError != nil {
		return CommandOptions{}, pathFlagError
	}
	markdownFlagValue, markdownFlagError := command.Flags().GetString(outputFlagNameConstant)
	if markdownFlagError != nil {
		return CommandOptions{}, markdownFlagError
	}
	jsonFlagValue, jsonFlagError := command.Flags().GetString(outputJSONFlagNameConstant)
	if jsonFlagError != nil {
		return CommandOptions{}, jsonFlagError
	}
	yamlFlagValue, yamlFlagError := command.Flags().GetString(outputYAMLFlagNameConstant)
	if yamlFlagError != nil {
		return CommandOptions{}, yamlFlagError
	}

	outdatedReportFlagValue, outdatedReportFlagError := command.Flags().GetString(outputOutdatedFlagNameConstant)
	if outdatedReportFlagError != nil {
		return CommandOptions{}, outdatedReportFlagError
	}

	threshold := configuration.Threshold
	if command.Flags().Changed(thresholdFlagNameConstant) {
		flagThreshold, thresholdFlagError := command.Flags().GetInt(thresholdFlagNameConstant)
		if thresholdFlagError != nil {
			return CommandOptions{}, thresholdFlagError
		}
		threshold = max(flagThreshold, 0)
	}

	exitOnUnused := configuration.ExitOnUnused
	if command.Flags().Changed(exitOnUnusedFlagNameConstant) {
		flagExitOnUnused, exitOnUnusedFlagError := command.Flags().GetBool(exitOnUnusedFlagNameConstant)
		if exitOnUnusedFlagError != nil {
			return CommandOptions{}, exitOnUnusedFlagError
		}
		exitOnUnused = flagExitOnUnused
	}

	exitOnOutdatedFlagValue, exitOnOutdatedFlagError := command.Flags().GetString(exitOnOutdatedFlagNameConstant)
	if exitOnOutdatedFlagError != nil {
		return CommandOptions{}, exitOnOutdatedFlagError
	}
	outdatedPolicyValue := selectStringValue(exitOnOutdatedFlagValue, configuration.ExitOnOutdated)
	outdatedPolicy, policyError := ParseOutdatedPolicy(outdatedPolicyValue)
	if policyError != nil {
		logger.Warn(invalidOutdatedPolicyLogMessage, zap.String(logFieldPolicyConstant, outdatedPolicyValue), zap.Error(policyError))
	}

	limits := Limits{MaxOutdated: configuration.MaxOutdated, MaxTotalPackages: configuration.FailIfTotalPackagesExceeds}
	if command.Flags().Changed(maxOutdatedFlagNameConstant) {
		flagMaxOutdated, maxOutdatedFlagError := command.Flags().GetInt(maxOutdatedFlagNameConstant)
		if maxOutdatedFlagError != nil {
			return CommandOptions{}, maxOutdatedFlagError
		}
		limits.MaxOutdated = flagMaxOutdated
	}
	if command.Flags().Changed(maxTotalFlagNameConstant) {
		flagMaxTotal, maxTotalFlagError := command.Flags().GetInt(maxTotalFlagNameConstant)
		if maxTotalFlagError != nil {
			return CommandOptions{}, maxTotalFlagError
		}
		limits.MaxTotalPackages = flagMaxTotal
	}

	options := CommandOptions{
		ScanPath:           auditConfigurationHomeDirectoryExpander.ExpandConfigured(selectStringValue(pathFlagValue, configuration.Path)),
		MarkdownReportPath: auditConfigurationHomeDirectoryExpander.ExpandConfigured(selectStringValue(markdownFlagValue, configuration.MarkdownReport)),
		JSONReportPath:     auditConfigurationHomeDirectoryExpander.ExpandConfigured(selectStringValue(jsonFlagValue, configuration.JSONReport)),
		YAMLReportPath:     auditConfigurationHomeDirectoryExpander.ExpandConfigured(selectStringValue(yamlFlagValue, configuration.YAMLReport)),
		OutdatedReportPath: auditConfigurationHomeDirectoryExpander.ExpandConfigured(selectStringValue(outdatedReportFlagValue, configuration.OutdatedReport)),
		Verdict: VerdictPolicy{
			FailOnUnused:   exitOnUnused,
			FailOnOutdated: outdatedPolicy,
			Threshold:      threshold,
		},
		Limits: limits,
	}

	return options, nil
}

func (builder *CommandBuilder) resolveService(command *cobra.Command, logger *zap.Logger) (*Service, error) {
	projectConfiguration := builder.resolveProjectConfiguration()
	if command.Flags().Changed(onReadErrorFlagNameConstant) {
		onReadErrorFlagValue, onReadErrorFlagError := command.Flags().GetString(onReadErrorFlagNameConstant)
		if onReadErrorFlagError != nil {
			return nil, onReadErrorFlagError
		}
		projectConfiguration.Scan.OnReadError = usage.ReadFailurePolicy(onReadErrorFlagValue)
	}

	manifestLoader := builder.ManifestLoader
	if manifestLoader == nil {
		manifestLoader = project.ResolveManifestLoader(nil, projectConfiguration.Composer)
	}

	usageScanner := builder.UsageScanner
	if usageScanner == nil {
		resolvedScanner, scannerError := project.ResolveUsageScanner(nil, projectConfiguration.Scan, logger)
		if scannerError != nil {
			return nil, scannerError
		}
		usageScanner = resolvedScanner
	}

	outdatedChecker := builder.OutdatedChecker
	if outdatedChecker == nil {
		resolvedChecker, checkerError := project.ResolveOutdatedChecker(nil, projectConfiguration.Composer, logger, builder.CommandEventsObserver)
		if checkerError != nil {
			return nil, checkerError
		}
		outdatedChecker = resolvedChecker
	}

	var reportWriter ReportWriter = builder.ReportWriter
	if reportWriter == nil {
		reportWriter = project.ResolveReportWriter(nil)
	}

	fileSystem := builder.FileSystem
	if fileSystem == nil {
		fileSystem = project.ResolveFileSystem(nil)
	}

	return NewService(manifestLoader, usageScanner, outdatedChecker, reportWriter, fileSystem, logger, command.OutOrStdout(), command.ErrOrStderr()), nil
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider().Sanitize()
}

func (builder *CommandBuilder) resolveProjectConfiguration() project.Configuration {
	if builder.ProjectConfigurationProvider == nil {
		return project.DefaultConfiguration()
	}
	return builder.ProjectConfigurationProvider().Sanitize()
}

func selectStringValue(flagValue string, configurationValue string) string {
	trimmedFlagValue := strings.TrimSpace(flagValue)
	if len(trimmedFlagValue) > 0 {
		return trimmedFlagValue
	}
	return strings.TrimSpace(configurationValue)
}
