package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/selfphp/php-dependency-inspector/cmd/cli"
	"github.com/selfphp/php-dependency-inspector/internal/audit"
)

const (
	exitErrorTemplateConstant = "%v\n"
)

// main executes the php-dependency-inspector command-line application.
func main() {
	executionError := cli.Execute()
	if executionError == nil {
		return
	}

	var auditExitError audit.ExitError
	if errors.As(executionError, &auditExitError) {
		os.Exit(auditExitError.Code)
	}

	fmt.Fprintf(os.Stderr, exitErrorTemplateConstant, executionError)
	os.Exit(1)
}
