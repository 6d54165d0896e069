package analysis

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/selfphp/php-dependency-inspector/internal/project"
	"github.com/selfphp/php-dependency-inspector/internal/usage"
	"github.com/selfphp/php-dependency-inspector/internal/utils/flags"
)

const (
	commandUseConstant                    = "analyse"
	commandAliasConstant                  = "analyze"
	commandShortDescriptionConstant       = "List declared Composer packages as used or unused"
	commandLongDescriptionConstant        = "analyse scans the project sources and prints every package declared in composer.lock with its usage status. It always exits successfully when the analysis completes."
	unexpectedArgumentsErrorMessage       = "analyse does not accept positional arguments"
	pathFlagNameConstant                  = "path"
	pathFlagDescriptionConstant           = "Source directory to scan"
	onlyUnusedFlagNameConstant            = "only-unused"
	onlyUnusedFlagDescriptionConstant     = "Show only packages that are not used in the codebase"
	outputFlagNameConstant                = "output"
	outputFlagDescriptionConstant         = "Path to save a Markdown report to"
	onReadErrorFlagNameConstant           = "on-read-error"
	onReadErrorFlagDescriptionConstant    = "How unreadable source files are handled"
	commandExecutionErrorTemplateConstant = "analyse failed: %w"
	dependencyResolutionErrorTemplate     = "unable to prepare analysis dependencies: %w"
)

// LoggerProvider supplies a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider returns the current analyse configuration.
type ConfigurationProvider func() CommandConfiguration

// ProjectConfigurationProvider returns the shared Composer and scan settings.
type ProjectConfigurationProvider func() project.Configuration

// CommandBuilder assembles the analyse cobra command with configurable dependencies.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	ConfigurationProvider        ConfigurationProvider
	ProjectConfigurationProvider ProjectConfigurationProvider
	ManifestLoader               ManifestLoader
	UsageScanner                 UsageScanner
	ReportWriter                 ReportWriter
	FileSystem                   FileSystem
}

// Build constructs the cobra command for dependency analysis.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:     commandUseConstant,
		Aliases: []string{commandAliasConstant},
		Short:   commandShortDescriptionConstant,
		Long:    commandLongDescriptionConstant,
		RunE:    builder.run,
	}

	defaults := DefaultCommandConfiguration()
	command.Flags().String(pathFlagNameConstant, "", pathFlagDescriptionConstant)
	var onlyUnused bool
	flags.AddToggleFlag(command.Flags(), &onlyUnused, onlyUnusedFlagNameConstant, "", defaults.OnlyUnused, onlyUnusedFlagDescriptionConstant)
	command.Flags().String(outputFlagNameConstant, "", outputFlagDescriptionConstant)
	var onReadError string
	flags.AddChoiceFlag(command.Flags(), &onReadError, onReadErrorFlagNameConstant, string(usage.ReadFailurePolicySkip), usage.ReadFailurePolicyChoices(), onReadErrorFlagDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errors.New(unexpectedArgumentsErrorMessage)
	}

	options, optionsError := builder.parseOptions(command)
	if optionsError != nil {
		return optionsError
	}

	logger := builder.resolveLogger()
	service, serviceError := builder.resolveService(command, logger)
	if serviceError != nil {
		return fmt.Errorf(dependencyResolutionErrorTemplate, serviceError)
	}

	if _, runError := service.Run(command.Context(), options); runError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, runError)
	}
	return nil
}

func (builder *CommandBuilder) parseOptions(command *cobra.Command) (CommandOptions, error) {
	configuration := builder.resolveConfiguration()

	pathFlagValue, pathFlagError := command.Flags().GetString(pathFlagNameConstant)
	if pathFlagError != nil {
		return CommandOptions{}, pathFlagError
	}
	outputFlagValue, outputFlagError := command.Flags().GetString(outputFlagNameConstant)
	if outputFlagError != nil {
		return CommandOptions{}, outputFlagError
	}

	onlyUnused := configuration.OnlyUnused
	if command.Flags().Changed(onlyUnusedFlagNameConstant) {
		flagOnlyUnused, onlyUnusedFlagError := command.Flags().GetBool(onlyUnusedFlagNameConstant)
		if onlyUnusedFlagError != nil {
			return CommandOptions{}, onlyUnusedFlagError
		}
		onlyUnused = flagOnlyUnused
	}

	return CommandOptions{
		ScanPath:           analysisConfigurationHomeDirectoryExpander.ExpandConfigured(selectStringValue(pathFlagValue, configuration.Path)),
		OnlyUnused:         onlyUnused,
		MarkdownReportPath: analysisConfigurationHomeDirectoryExpander.ExpandConfigured(selectStringValue(outputFlagValue, configuration.MarkdownReport)),
	}, nil
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

	var reportWriter ReportWriter = builder.ReportWriter
	if reportWriter == nil {
		reportWriter = project.ResolveReportWriter(nil)
	}

	fileSystem := builder.FileSystem
	if fileSystem == nil {
		fileSystem = project.ResolveFileSystem(nil)
	}

	return NewService(manifestLoader, usageScanner, reportWriter, fileSystem, logger, command.OutOrStdout()), nil
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
