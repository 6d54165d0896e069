package composer

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/selfphp/php-dependency-inspector/internal/execshell"
)

const (
	// ComposerBinaryEnvironmentVariableConstant overrides binary discovery when it names an existing file.
	ComposerBinaryEnvironmentVariableConstant = "COMPOSER_BIN"

	composerNotFoundMessageConstant  = "composer could not be found; install it, set COMPOSER_BIN, or place composer.phar in the project root"
	composerExecutableNameConstant   = "composer"
	composerBatchExecutableConstant  = "composer.bat"
	composerArchiveFileNameConstant  = "composer.phar"
	composerArchiveExtensionConstant = ".phar"
	windowsOperatingSystemConstant   = "windows"
)

// ErrComposerNotFound indicates no Composer executable could be located.
var ErrComposerNotFound = errors.New(composerNotFoundMessageConstant)

// Invocation describes how to start Composer: the executable plus any arguments that precede
// the Composer subcommand.
type Invocation struct {
	Executable      execshell.CommandName
	PrefixArguments []string
}

// Command builds a ShellCommand running Composer with the supplied arguments.
func (invocation Invocation) Command(workingDirectory string, arguments ...string) execshell.ShellCommand {
	commandArguments := append(append([]string{}, invocation.PrefixArguments...), arguments...)
	return execshell.ShellCommand{
		Name: invocation.Executable,
		Details: execshell.CommandDetails{
			Arguments:        commandArguments,
			WorkingDirectory: workingDirectory,
		},
	}
}

// BinaryLocator resolves the Composer executable for a project.
type BinaryLocator struct {
	ConfiguredBinary  string
	ProjectRoot       string
	OperatingSystem   string
	LookupEnvironment func(key string) (string, bool)
	LookPath          func(file string) (string, error)
	FileExists        func(path string) bool
}

// NewBinaryLocator constructs a locator backed by the process environment and PATH.
func NewBinaryLocator(configuredBinary string, projectRoot string) *BinaryLocator {
	return &BinaryLocator{
		ConfiguredBinary:  configuredBinary,
		ProjectRoot:       projectRoot,
		OperatingSystem:   runtime.GOOS,
		LookupEnvironment: os.LookupEnv,
		LookPath:          exec.LookPath,
		FileExists:        regularFileExists,
	}
}

// Locate checks, in order, the configured binary, COMPOSER_BIN, composer on PATH (composer.bat on
// Windows), and composer.phar in the project root run through php.
func (locator *BinaryLocator) Locate() (Invocation, error) {
	if configuredBinary := strings.TrimSpace(locator.ConfiguredBinary); len(configuredBinary) > 0 {
		return invocationForExecutable(configuredBinary), nil
	}

	if locator.LookupEnvironment != nil {
		if environmentBinary, found := locator.LookupEnvironment(ComposerBinaryEnvironmentVariableConstant); found {
			trimmedEnvironmentBinary := strings.TrimSpace(environmentBinary)
			if len(trimmedEnvironmentBinary) > 0 && locator.fileExists(trimmedEnvironmentBinary) {
				return invocationForExecutable(trimmedEnvironmentBinary), nil
			}
		}
	}

	if locator.LookPath != nil {
		executableName := composerExecutableNameConstant
		if locator.OperatingSystem == windowsOperatingSystemConstant {
			executableName = composerBatchExecutableConstant
		}
		if resolvedPath, lookupError := locator.LookPath(executableName); lookupError == nil && len(resolvedPath) > 0 {
			return Invocation{Executable: execshell.CommandName(resolvedPath)}, nil
		}
	}

	localArchivePath := filepath.Join(locator.ProjectRoot, composerArchiveFileNameConstant)
	if locator.fileExists(localArchivePath) {
		return invocationForExecutable(localArchivePath), nil
	}

	return Invocation{}, ErrComposerNotFound
}

func (locator *BinaryLocator) fileExists(path string) bool {
	if locator.FileExists == nil {
		return regularFileExists(path)
	}
	return locator.FileExists(path)
}

func invocationForExecutable(executablePath string) Invocation {
	if strings.EqualFold(filepath.Ext(executablePath), composerArchiveExtensionConstant) {
		return Invocation{Executable: execshell.CommandPHP, PrefixArguments: []string{executablePath}}
	}
	return Invocation{Executable: execshell.CommandName(executablePath)}
}

func regularFileExists(path string) bool {
	fileInfo, statError := os.Stat(path)
	if statError != nil {
		return false
	}
	return fileInfo.Mode().IsRegular()
}
