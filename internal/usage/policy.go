package usage

import (
	"fmt"
	"strings"
)

const (
	readFailurePolicySkipStringConstant          = "skip"
	readFailurePolicyAbortStringConstant         = "abort"
	unsupportedReadFailurePolicyTemplateConstant = "unsupported read failure policy: %q"
	unreadableSourceFileErrorTemplateConstant    = "unable to read source file %s: %v"
)

// ReadFailurePolicy decides what the scanner does with a file it cannot read.
type ReadFailurePolicy string

// Supported read failure policies.
const (
	ReadFailurePolicySkip  ReadFailurePolicy = ReadFailurePolicy(readFailurePolicySkipStringConstant)
	ReadFailurePolicyAbort ReadFailurePolicy = ReadFailurePolicy(readFailurePolicyAbortStringConstant)
)

// ReadFailurePolicyChoices lists the accepted policy names.
func ReadFailurePolicyChoices() []string {
	return []string{readFailurePolicySkipStringConstant, readFailurePolicyAbortStringConstant}
}

// ParseReadFailurePolicy converts user input into a ReadFailurePolicy. Empty input selects skip.
func ParseReadFailurePolicy(rawPolicy string) (ReadFailurePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(rawPolicy)) {
	case "", readFailurePolicySkipStringConstant:
		return ReadFailurePolicySkip, nil
	case readFailurePolicyAbortStringConstant:
		return ReadFailurePolicyAbort, nil
	default:
		return ReadFailurePolicySkip, fmt.Errorf(unsupportedReadFailurePolicyTemplateConstant, rawPolicy)
	}
}

// UnmarshalText implements encoding.TextUnmarshaler so configuration decoding validates the value.
func (policy *ReadFailurePolicy) UnmarshalText(text []byte) error {
	parsedPolicy, parseError := ParseReadFailurePolicy(string(text))
	if parseError != nil {
		return parseError
	}
	*policy = parsedPolicy
	return nil
}

// UnreadableSourceFileError reports a source file that could not be read during a scan.
type UnreadableSourceFileError struct {
	Path  string
	Cause error
}

// Error describes the unreadable file.
func (failure UnreadableSourceFileError) Error() string {
	return fmt.Sprintf(unreadableSourceFileErrorTemplateConstant, failure.Path, failure.Cause)
}

// Unwrap exposes the underlying read error.
func (failure UnreadableSourceFileError) Unwrap() error {
	return failure.Cause
}
