package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/selfphp/php-dependency-inspector/internal/analysis"
	"github.com/selfphp/php-dependency-inspector/internal/audit"
	"github.com/selfphp/php-dependency-inspector/internal/execshell"
	"github.com/selfphp/php-dependency-inspector/internal/project"
	"github.com/selfphp/php-dependency-inspector/internal/ui"
	"github.com/selfphp/php-dependency-inspector/internal/utils"
	"github.com/selfphp/php-dependency-inspector/internal/utils/flags"
)

const (
	applicationNameConstant                 = "php-dependency-inspector"
	applicationShortDescriptionConstant     = "Audit the Composer dependencies of a PHP project"
	applicationLongDescriptionConstant      = "php-dependency-inspector compares the packages locked in composer.lock with the namespaces referenced by the project sources, reports unused and outdated packages, and fails CI pipelines when dependency policies are violated."
	configFileFlagNameConstant              = "config"
	configFileFlagUsageConstant             = "Optional path to a configuration file (YAML or JSON)."
	logLevelFlagNameConstant                = "log-level"
	logLevelFlagUsageConstant               = "Override the configured log level."
	logFormatFlagNameConstant               = "log-format"
	logFormatFlagUsageConstant              = "Override the configured log format (structured or console)."
	commonConfigurationKeyConstant          = "common"
	commonLogLevelConfigKeyConstant         = commonConfigurationKeyConstant + ".log_level"
	commonLogFormatConfigKeyConstant        = commonConfigurationKeyConstant + ".log_format"
	commonLogFileConfigKeyConstant          = commonConfigurationKeyConstant + ".log_file"
	commonLogMaxSizeConfigKeyConstant       = commonConfigurationKeyConstant + ".log_max_size"
	commonLogMaxBackupsConfigKeyConstant    = commonConfigurationKeyConstant + ".log_max_backups"
	commonLogMaxAgeConfigKeyConstant        = commonConfigurationKeyConstant + ".log_max_age"
	commonLogCompressConfigKeyConstant      = commonConfigurationKeyConstant + ".log_compress"
	environmentPrefixConstant               = "PHPDI"
	configurationNameConstant               = "config"
	configurationTypeConstant               = "yaml"
	configurationInitializedMessageConstant = "configuration initialized"
	configurationLogLevelFieldConstant      = "log_level"
	configurationLogFormatFieldConstant     = "log_format"
	configurationFileFieldConstant          = "config_file"
	configurationLoadErrorTemplateConstant  = "unable to load configuration: %w"
	loggerCreationErrorTemplateConstant     = "unable to create logger: %w"
	loggerSyncErrorTemplateConstant         = "unable to flush logger: %w"
	rootCommandInfoMessageConstant          = "php-dependency-inspector CLI executed"
	rootCommandDebugMessageConstant         = "php-dependency-inspector CLI diagnostics"
	logFieldCommandNameConstant             = "command_name"
	logFieldArgumentCountConstant           = "argument_count"
	logFieldArgumentsConstant               = "arguments"
	loggerNotInitializedMessageConstant     = "logger not initialized"
	defaultConfigurationSearchPathConstant  = "."
	toolsConfigurationKeyConstant           = "tools"
	auditConfigurationKeyConstant           = toolsConfigurationKeyConstant + ".audit"
	analyseConfigurationKeyConstant         = toolsConfigurationKeyConstant + ".analyse"
	versionCommandUseConstant               = "version"
	versionCommandShortDescriptionConstant  = "Print the php-dependency-inspector version"
	versionOutputTemplateConstant           = "%s version: %s\n"
	developmentVersionConstant              = "dev"
	buildInfoDevelopmentVersionConstant     = "(devel)"
	defaultLogMaxSizeMegabytesConstant      = 10
	defaultLogMaxBackupsConstant            = 3
	defaultLogMaxAgeDaysConstant            = 28
)

// applicationVersion is overridden at build time with -ldflags "-X".
var applicationVersion = ""

// ApplicationConfiguration describes the persisted configuration for the CLI entrypoint.
type ApplicationConfiguration struct {
	Common   ApplicationCommonConfiguration `mapstructure:"common"`
	Composer project.ComposerConfiguration  `mapstructure:"composer"`
	Scan     project.ScanConfiguration      `mapstructure:"scan"`
	Tools    ApplicationToolsConfiguration  `mapstructure:"tools"`
}

// ApplicationCommonConfiguration stores logging configuration shared across commands.
type ApplicationCommonConfiguration struct {
	LogLevel      string `mapstructure:"log_level"`
	LogFormat     string `mapstructure:"log_format"`
	LogFile       string `mapstructure:"log_file"`
	LogMaxSize    int    `mapstructure:"log_max_size"`
	LogMaxBackups int    `mapstructure:"log_max_backups"`
	LogMaxAge     int    `mapstructure:"log_max_age"`
	LogCompress   bool   `mapstructure:"log_compress"`
}

// ApplicationToolsConfiguration holds configuration for CLI subcommands.
type ApplicationToolsConfiguration struct {
	Audit   audit.CommandConfiguration    `mapstructure:"audit"`
	Analyse analysis.CommandConfiguration `mapstructure:"analyse"`
}

// VersionResolver reports the version of the running binary.
type VersionResolver func(context.Context) string

// Application wires the Cobra root command, configuration loader, and structured logger.
type Application struct {
	rootCommand           *cobra.Command
	configurationLoader   *utils.ConfigurationLoader
	loggerFactory         *utils.LoggerFactory
	logger                *zap.Logger
	configuration         ApplicationConfiguration
	configurationMetadata utils.LoadedConfiguration
	configurationFilePath string
	logLevelFlagValue     string
	logFormatFlagValue    string
	versionResolver       VersionResolver
}

// NewApplication assembles a fully wired CLI application instance.
func NewApplication() *Application {
	configurationLoader := utils.NewConfigurationLoader(
		configurationNameConstant,
		configurationTypeConstant,
		environmentPrefixConstant,
		[]string{defaultConfigurationSearchPathConstant},
	)
	configurationLoader.SetEmbeddedConfiguration(EmbeddedDefaultConfiguration())

	application := &Application{
		configurationLoader: configurationLoader,
		loggerFactory:       utils.NewLoggerFactory(),
		logger:              zap.NewNop(),
		versionResolver:     resolveBuildVersion,
	}

	cobraCommand := &cobra.Command{
		Use:           applicationNameConstant,
		Short:         applicationShortDescriptionConstant,
		Long:          applicationLongDescriptionConstant,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			return application.initializeConfiguration(command)
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			return application.runRootCommand(command, arguments)
		},
	}

	cobraCommand.SetContext(context.Background())
	cobraCommand.PersistentFlags().StringVar(&application.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logLevelFlagValue, logLevelFlagNameConstant, "", logLevelFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logFormatFlagValue, logFormatFlagNameConstant, "", logFormatFlagUsageConstant)

	auditBuilder := audit.CommandBuilder{
		LoggerProvider: func() *zap.Logger {
			return application.logger
		},
		ConfigurationProvider: func() audit.CommandConfiguration {
			return application.configuration.Tools.Audit
		},
		ProjectConfigurationProvider: application.projectConfiguration,
		CommandEventsObserver:        application.commandEventsObserver(),
	}
	auditCommand, auditBuildError := auditBuilder.Build()
	if auditBuildError == nil {
		cobraCommand.AddCommand(auditCommand)
	}

	analyseBuilder := analysis.CommandBuilder{
		LoggerProvider: func() *zap.Logger {
			return application.logger
		},
		ConfigurationProvider: func() analysis.CommandConfiguration {
			return application.configuration.Tools.Analyse
		},
		ProjectConfigurationProvider: application.projectConfiguration,
	}
	analyseCommand, analyseBuildError := analyseBuilder.Build()
	if analyseBuildError == nil {
		cobraCommand.AddCommand(analyseCommand)
	}

	cobraCommand.AddCommand(&cobra.Command{
		Use:   versionCommandUseConstant,
		Short: versionCommandShortDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			_, printError := fmt.Fprintf(command.OutOrStdout(), versionOutputTemplateConstant, applicationNameConstant, application.versionResolver(command.Context()))
			return printError
		},
	})

	application.rootCommand = cobraCommand

	return application
}

// SetOutput redirects command output and error streams.
func (application *Application) SetOutput(outputWriter io.Writer, errorWriter io.Writer) {
	application.rootCommand.SetOut(outputWriter)
	application.rootCommand.SetErr(errorWriter)
}

// Execute runs the command hierarchy with the process arguments.
func (application *Application) Execute() error {
	return application.ExecuteWithArguments(os.Args[1:])
}

// ExecuteWithArguments runs the configured Cobra command hierarchy and ensures logger flushing.
// Toggle flags written as separate tokens ("--exit-on-unused yes") are normalized first.
func (application *Application) ExecuteWithArguments(arguments []string) error {
	normalizedArguments := flags.NormalizeToggleArguments(arguments)
	if normalizedArguments == nil {
		normalizedArguments = []string{}
	}
	application.rootCommand.SetArgs(normalizedArguments)

	executionError := application.rootCommand.Execute()
	if syncError := application.flushLogger(); syncError != nil && executionError == nil {
		return fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)
	}
	return executionError
}

// Execute builds a fresh application instance and executes the root command hierarchy.
func Execute() error {
	return NewApplication().Execute()
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	defaultValues := map[string]any{
		commonLogLevelConfigKeyConstant:      string(utils.LogLevelInfo),
		commonLogFormatConfigKeyConstant:     string(utils.LogFormatStructured),
		commonLogFileConfigKeyConstant:       "",
		commonLogMaxSizeConfigKeyConstant:    defaultLogMaxSizeMegabytesConstant,
		commonLogMaxBackupsConfigKeyConstant: defaultLogMaxBackupsConstant,
		commonLogMaxAgeConfigKeyConstant:     defaultLogMaxAgeDaysConstant,
		commonLogCompressConfigKeyConstant:   false,
	}
	for configurationKey, configurationValue := range project.DefaultConfigurationValues() {
		defaultValues[configurationKey] = configurationValue
	}
	for configurationKey, configurationValue := range audit.DefaultConfigurationValues(auditConfigurationKeyConstant) {
		defaultValues[configurationKey] = configurationValue
	}
	for configurationKey, configurationValue := range analysis.DefaultConfigurationValues(analyseConfigurationKeyConstant) {
		defaultValues[configurationKey] = configurationValue
	}

	loadedConfiguration, loadError := application.configurationLoader.LoadConfiguration(application.configurationFilePath, defaultValues, &application.configuration)
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, loadError)
	}

	application.configurationMetadata = loadedConfiguration

	if application.persistentFlagChanged(command, logLevelFlagNameConstant) {
		application.configuration.Common.LogLevel = application.logLevelFlagValue
	}

	if application.persistentFlagChanged(command, logFormatFlagNameConstant) {
		application.configuration.Common.LogFormat = application.logFormatFlagValue
	}

	commonConfiguration := application.configuration.Common
	logger, loggerCreationError := application.loggerFactory.CreateLogger(
		utils.LogLevel(strings.ToLower(strings.TrimSpace(commonConfiguration.LogLevel))),
		utils.LogFormat(strings.ToLower(strings.TrimSpace(commonConfiguration.LogFormat))),
		utils.LogFileOptions{
			Path:             commonConfiguration.LogFile,
			MaxSizeMegabytes: commonConfiguration.LogMaxSize,
			MaxBackups:       commonConfiguration.LogMaxBackups,
			MaxAgeDays:       commonConfiguration.LogMaxAge,
			Compress:         commonConfiguration.LogCompress,
		},
	)
	if loggerCreationError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, loggerCreationError)
	}

	application.logger = logger

	application.logger.Info(
		configurationInitializedMessageConstant,
		zap.String(configurationLogLevelFieldConstant, commonConfiguration.LogLevel),
		zap.String(configurationLogFormatFieldConstant, commonConfiguration.LogFormat),
		zap.String(configurationFileFieldConstant, application.configurationMetadata.ConfigFileUsed),
	)

	return nil
}

func (application *Application) projectConfiguration() project.Configuration {
	return project.Configuration{
		Composer: application.configuration.Composer,
		Scan:     application.configuration.Scan,
	}
}

// commandEventsObserver echoes Composer invocations only when console logging is selected.
func (application *Application) commandEventsObserver() execshell.CommandEventObserver {
	return consoleEventObserver{application: application}
}

func (application *Application) humanReadableLoggingEnabled() bool {
	logFormatValue := strings.TrimSpace(application.configuration.Common.LogFormat)
	return strings.EqualFold(logFormatValue, string(utils.LogFormatConsole))
}

func (application *Application) runRootCommand(command *cobra.Command, arguments []string) error {
	if application.logger == nil {
		return errors.New(loggerNotInitializedMessageConstant)
	}

	application.logger.Info(
		rootCommandInfoMessageConstant,
		zap.String(logFieldCommandNameConstant, command.Name()),
		zap.Int(logFieldArgumentCountConstant, len(arguments)),
	)

	application.logger.Debug(
		rootCommandDebugMessageConstant,
		zap.Strings(logFieldArgumentsConstant, arguments),
	)

	return command.Help()
}

func (application *Application) flushLogger() error {
	if application.logger == nil {
		return nil
	}

	syncError := application.logger.Sync()
	switch {
	case syncError == nil:
		return nil
	case errors.Is(syncError, syscall.ENOTSUP):
		return nil
	case errors.Is(syncError, syscall.EINVAL):
		return nil
	case errors.Is(syncError, syscall.ENOTTY):
		return nil
	default:
		return syncError
	}
}

func (application *Application) persistentFlagChanged(command *cobra.Command, flagName string) bool {
	if command == nil {
		return false
	}

	flagSetsToInspect := []*pflag.FlagSet{
		command.PersistentFlags(),
		command.InheritedFlags(),
	}

	rootCommand := command.Root()
	if rootCommand != nil {
		flagSetsToInspect = append(flagSetsToInspect, rootCommand.PersistentFlags())
	}

	for _, flagSet := range flagSetsToInspect {
		if flagSet == nil {
			continue
		}

		if flagSet.Changed(flagName) {
			return true
		}
	}

	return false
}

// consoleEventObserver forwards command events to a console logger once configuration is known.
type consoleEventObserver struct {
	application *Application
}

func (observer consoleEventObserver) delegate() execshell.CommandEventObserver {
	if observer.application == nil || !observer.application.humanReadableLoggingEnabled() {
		return nil
	}
	return ui.NewConsoleCommandEventLogger(observer.application.logger)
}

func (observer consoleEventObserver) CommandStarted(command execshell.ShellCommand) {
	if delegate := observer.delegate(); delegate != nil {
		delegate.CommandStarted(command)
	}
}

func (observer consoleEventObserver) CommandCompleted(command execshell.ShellCommand, result execshell.ExecutionResult) {
	if delegate := observer.delegate(); delegate != nil {
		delegate.CommandCompleted(command, result)
	}
}

func (observer consoleEventObserver) CommandExecutionFailed(command execshell.ShellCommand, failure error) {
	if delegate := observer.delegate(); delegate != nil {
		delegate.CommandExecutionFailed(command, failure)
	}
}

func resolveBuildVersion(context.Context) string {
	if len(strings.TrimSpace(applicationVersion)) > 0 {
		return strings.TrimSpace(applicationVersion)
	}
	buildInformation, available := debug.ReadBuildInfo()
	if !available {
		return developmentVersionConstant
	}
	mainVersion := strings.TrimSpace(buildInformation.Main.Version)
	if len(mainVersion) == 0 || mainVersion == buildInfoDevelopmentVersionConstant {
		return developmentVersionConstant
	}
	return mainVersion
}
