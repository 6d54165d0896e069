package composer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/selfphp/php-dependency-inspector/internal/execshell"
)

const (
	outdatedSubcommandConstant            = "outdated"
	jsonFormatFlagConstant                = "--format=json"
	executorNotConfiguredMessageConstant  = "composer command executor not configured"
	locatorNotConfiguredMessageConstant   = "composer binary locator not configured"
	outdatedOperationErrorTemplate        = "composer outdated failed: %w"
	outdatedDecodingErrorTemplateConstant = "composer outdated response decoding failed: %v"
)

var (
	// ErrExecutorNotConfigured indicates the checker was constructed without an executor.
	ErrExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)
	// ErrLocatorNotConfigured indicates the checker was constructed without a binary locator.
	ErrLocatorNotConfigured = errors.New(locatorNotConfiguredMessageConstant)
)

// OutdatedRecord is one entry of the "installed" list reported by composer outdated.
type OutdatedRecord struct {
	Name         string `json:"name"`
	Version      string `json:"version"`
	Latest       string `json:"latest"`
	LatestStatus string `json:"latest-status"`
}

// ResponseDecodingError indicates composer printed output that is not the expected JSON document.
type ResponseDecodingError struct {
	Cause error
}

// Error describes the decoding failure.
func (decodingError ResponseDecodingError) Error() string {
	return fmt.Sprintf(outdatedDecodingErrorTemplateConstant, decodingError.Cause)
}

// Unwrap exposes the underlying JSON error.
func (decodingError ResponseDecodingError) Unwrap() error {
	return decodingError.Cause
}

// CommandExecutor is the minimal interface required from execshell.ShellExecutor.
type CommandExecutor interface {
	Execute(executionContext context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error)
}

// InvocationResolver finds how Composer should be started.
type InvocationResolver interface {
	Locate() (Invocation, error)
}

// OutdatedChecker lists outdated dependencies by running composer outdated in the project root.
type OutdatedChecker struct {
	executor    CommandExecutor
	resolver    InvocationResolver
	projectRoot string
	timeout     time.Duration
}

// NewOutdatedChecker constructs an OutdatedChecker. A non-positive timeout disables the deadline.
func NewOutdatedChecker(executor CommandExecutor, resolver InvocationResolver, projectRoot string, timeout time.Duration) (*OutdatedChecker, error) {
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	if resolver == nil {
		return nil, ErrLocatorNotConfigured
	}
	return &OutdatedChecker{executor: executor, resolver: resolver, projectRoot: projectRoot, timeout: timeout}, nil
}

// OutdatedPackages runs composer outdated --format=json and returns the installed entries it reports.
func (checker *OutdatedChecker) OutdatedPackages(executionContext context.Context) ([]OutdatedRecord, error) {
	invocation, locateError := checker.resolver.Locate()
	if locateError != nil {
		return nil, fmt.Errorf(outdatedOperationErrorTemplate, locateError)
	}

	if checker.timeout > 0 {
		var cancel context.CancelFunc
		executionContext, cancel = context.WithTimeout(executionContext, checker.timeout)
		defer cancel()
	}

	command := invocation.Command(checker.projectRoot, outdatedSubcommandConstant, jsonFormatFlagConstant)
	executionResult, executionError := checker.executor.Execute(executionContext, command)
	if executionError != nil {
		return nil, fmt.Errorf(outdatedOperationErrorTemplate, executionError)
	}

	return parseOutdatedOutput(executionResult.StandardOutput)
}

func parseOutdatedOutput(standardOutput string) ([]OutdatedRecord, error) {
	trimmedOutput := strings.TrimSpace(standardOutput)
	if len(trimmedOutput) == 0 {
		return []OutdatedRecord{}, nil
	}

	var response struct {
		Installed []OutdatedRecord `json:"installed"`
	}
	if decodingError := json.Unmarshal([]byte(trimmedOutput), &response); decodingError != nil {
		return nil, ResponseDecodingError{Cause: decodingError}
	}

	if response.Installed == nil {
		return []OutdatedRecord{}, nil
	}
	return response.Installed, nil
}
