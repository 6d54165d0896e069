package execshell

import (
	"fmt"
	"path/filepath"
	"strings"
)

type messageStage int

const (
	messageStageStart messageStage = iota
	messageStageSuccess
	messageStageFailure
	messageStageExecutionFailure
)

const (
	genericStartTemplateConstant            = "Running %s"
	genericSuccessTemplateConstant          = "Completed %s"
	genericFailureTemplateConstant          = "%s failed with exit code %d%s"
	genericExecutionFailureTemplateConstant = "%s failed: %s"
	commandLabelTemplateConstant            = "%s%s"
	commandWithArgumentsTemplateConstant    = "%s %s"
	workingDirectorySuffixTemplateConstant  = " (in %s)"
	commandArgumentsJoinSeparatorConstant   = " "
	standardErrorSuffixTemplateConstant     = ": %s"
	unknownFailureMessageConstant           = "unknown error"
	emptyStringConstant                     = ""
	defaultWorkingDirectoryLabelConstant    = "current directory"
	windowsBatchExtensionConstant           = ".bat"
	composerArchiveSuffixConstant           = "composer.phar"
	commandLineFlagPrefixConstant           = "-"
)

const (
	composerOutdatedSubcommandNameConstant = "outdated"
	composerVersionLongFlagConstant        = "--version"
	composerVersionShortFlagConstant       = "-V"
)

const (
	composerOutdatedStartTemplateConstant            = "Checking outdated Composer packages in %s"
	composerOutdatedSuccessTemplateConstant          = "Retrieved outdated Composer packages for %s"
	composerOutdatedFailureTemplateConstant          = "Failed to check outdated Composer packages in %s (exit code %d%s)"
	composerOutdatedExecutionFailureTemplateConstant = "Unable to check outdated Composer packages in %s: %s"
	composerVersionStartTemplateConstant             = "Checking Composer version with %s"
	composerVersionSuccessTemplateConstant           = "Composer is available at %s"
	composerVersionFailureTemplateConstant           = "Composer at %s is not usable (exit code %d%s)"
	composerVersionExecutionFailureTemplateConstant  = "Unable to run Composer at %s: %s"
)

// CommandMessageFormatter builds human-readable messages for command lifecycle events.
type CommandMessageFormatter struct{}

// BuildStartedMessage formats the message describing a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageStart)
}

// BuildSuccessMessage formats the message describing a completed command with a zero exit code.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageSuccess)
}

// BuildFailureMessage formats the message describing a command that returned a non-zero exit code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageFailure)
}

// BuildExecutionFailureMessage formats the message describing an unexpected execution failure.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	return formatter.buildMessage(command, ExecutionResult{}, failure, messageStageExecutionFailure)
}

func (formatter CommandMessageFormatter) buildMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	composerArguments, isComposer := formatter.composerArguments(command)
	if !isComposer {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
	return formatter.describeComposerMessage(command, composerArguments, result, failure, stage)
}

// composerArguments strips the archive argument of "php composer.phar" invocations.
func (formatter CommandMessageFormatter) composerArguments(command ShellCommand) ([]string, bool) {
	executableName := strings.ToLower(filepath.Base(string(command.Name)))
	executableName = strings.TrimSuffix(executableName, windowsBatchExtensionConstant)

	switch executableName {
	case string(CommandComposer):
		return command.Details.Arguments, true
	case string(CommandPHP):
		if len(command.Details.Arguments) > 0 && strings.HasSuffix(strings.TrimSpace(command.Details.Arguments[0]), composerArchiveSuffixConstant) {
			return command.Details.Arguments[1:], true
		}
	}
	return nil, false
}

func (formatter CommandMessageFormatter) describeComposerMessage(command ShellCommand, arguments []string, result ExecutionResult, failure error, stage messageStage) string {
	switch {
	case formatter.extractFirstNonFlagArgument(arguments) == composerOutdatedSubcommandNameConstant:
		return formatter.describeComposerOutdatedMessage(command, result, failure, stage)
	case containsArgument(arguments, composerVersionLongFlagConstant) || containsArgument(arguments, composerVersionShortFlagConstant):
		return formatter.describeComposerVersionMessage(command, result, failure, stage)
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeComposerOutdatedMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	workingDirectory := formatter.describeWorkingDirectory(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(composerOutdatedStartTemplateConstant, workingDirectory)
	case messageStageSuccess:
		return fmt.Sprintf(composerOutdatedSuccessTemplateConstant, workingDirectory)
	case messageStageFailure:
		return fmt.Sprintf(composerOutdatedFailureTemplateConstant, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(composerOutdatedExecutionFailureTemplateConstant, workingDirectory, formatter.describeFailure(failure))
	default:
		return emptyStringConstant
	}
}

func (formatter CommandMessageFormatter) describeComposerVersionMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	executable := string(command.Name)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(composerVersionStartTemplateConstant, executable)
	case messageStageSuccess:
		return fmt.Sprintf(composerVersionSuccessTemplateConstant, executable)
	case messageStageFailure:
		return fmt.Sprintf(composerVersionFailureTemplateConstant, executable, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(composerVersionExecutionFailureTemplateConstant, executable, formatter.describeFailure(failure))
	default:
		return emptyStringConstant
	}
}

func (formatter CommandMessageFormatter) buildGenericMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	commandLabel := formatter.formatCommandLabel(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(genericStartTemplateConstant, commandLabel)
	case messageStageSuccess:
		return fmt.Sprintf(genericSuccessTemplateConstant, commandLabel)
	case messageStageFailure:
		return fmt.Sprintf(genericFailureTemplateConstant, commandLabel, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(genericExecutionFailureTemplateConstant, commandLabel, formatter.describeFailure(failure))
	default:
		return emptyStringConstant
	}
}

func (formatter CommandMessageFormatter) formatCommandLabel(command ShellCommand) string {
	commandLabel := string(command.Name)
	if len(command.Details.Arguments) > 0 {
		commandLabel = fmt.Sprintf(commandWithArgumentsTemplateConstant, commandLabel, strings.Join(command.Details.Arguments, commandArgumentsJoinSeparatorConstant))
	}
	workingDirectorySuffix := formatter.formatWorkingDirectorySuffix(command)
	return fmt.Sprintf(commandLabelTemplateConstant, commandLabel, workingDirectorySuffix)
}

func (formatter CommandMessageFormatter) formatWorkingDirectorySuffix(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(workingDirectorySuffixTemplateConstant, trimmedWorkingDirectory)
}

func (formatter CommandMessageFormatter) formatStandardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}

func (formatter CommandMessageFormatter) describeWorkingDirectory(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return defaultWorkingDirectoryLabelConstant
	}
	return trimmedWorkingDirectory
}

func (formatter CommandMessageFormatter) describeFailure(failure error) string {
	if failure == nil {
		return unknownFailureMessageConstant
	}
	return failure.Error()
}

func (formatter CommandMessageFormatter) extractFirstNonFlagArgument(arguments []string) string {
	for _, argument := range arguments {
		trimmedArgument := strings.TrimSpace(argument)
		if len(trimmedArgument) == 0 || strings.HasPrefix(trimmedArgument, commandLineFlagPrefixConstant) {
			continue
		}
		return trimmedArgument
	}
	return emptyStringConstant
}

func containsArgument(arguments []string, value string) bool {
	for _, argument := range arguments {
		if strings.TrimSpace(argument) == value {
			return true
		}
	}
	return false
}
