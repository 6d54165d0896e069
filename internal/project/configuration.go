package project

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/selfphp/php-dependency-inspector/internal/composer"
	"github.com/selfphp/php-dependency-inspector/internal/usage"
	pathutils "github.com/selfphp/php-dependency-inspector/internal/utils/path"
)

const (
	// DefaultProjectRootConstant is the project root used when none is configured.
	DefaultProjectRootConstant = "."
	// DefaultComposerTimeoutConstant bounds a single Composer invocation.
	DefaultComposerTimeoutConstant = 2 * time.Minute
)

var projectConfigurationHomeDirectoryExpander = pathutils.NewHomeExpander()

// Configuration aggregates the Composer and scan settings.
type Configuration struct {
	Composer ComposerConfiguration `mapstructure:"composer"`
	Scan     ScanConfiguration     `mapstructure:"scan"`
}

// ComposerConfiguration describes where the Composer project lives and how Composer is invoked.
type ComposerConfiguration struct {
	ProjectRoot        string        `mapstructure:"project_root"`
	LockFile           string        `mapstructure:"lock_file"`
	Binary             string        `mapstructure:"binary"`
	IncludeDevelopment bool          `mapstructure:"include_dev"`
	Timeout            time.Duration `mapstructure:"timeout"`
}

// ScanConfiguration selects which source files are scanned and how unreadable files are handled.
type ScanConfiguration struct {
	Pattern     string                  `mapstructure:"pattern"`
	Exclude     []string                `mapstructure:"exclude"`
	OnReadError usage.ReadFailurePolicy `mapstructure:"on_read_error"`
}

// DefaultConfiguration returns baseline project settings.
func DefaultConfiguration() Configuration {
	return Configuration{
		Composer: ComposerConfiguration{
			ProjectRoot: DefaultProjectRootConstant,
			Timeout:     DefaultComposerTimeoutConstant,
		},
		Scan: ScanConfiguration{
			Pattern:     usage.DefaultSourcePatternConstant,
			OnReadError: usage.ReadFailurePolicySkip,
		},
	}
}

// DefaultConfigurationValues exposes the baseline settings keyed for configuration loading.
func DefaultConfigurationValues() map[string]any {
	defaults := DefaultConfiguration()
	return map[string]any{
		"composer.project_root": defaults.Composer.ProjectRoot,
		"composer.lock_file":    defaults.Composer.LockFile,
		"composer.binary":       defaults.Composer.Binary,
		"composer.include_dev":  defaults.Composer.IncludeDevelopment,
		"composer.timeout":      defaults.Composer.Timeout,
		"scan.pattern":          defaults.Scan.Pattern,
		"scan.exclude":          defaults.Scan.Exclude,
		"scan.on_read_error":    string(defaults.Scan.OnReadError),
	}
}

// Sanitize trims values, expands home shortcuts, and restores defaults for unset values.
func (configuration Configuration) Sanitize() Configuration {
	sanitized := configuration
	sanitized.Composer = configuration.Composer.Sanitize()
	sanitized.Scan = configuration.Scan.Sanitize()
	return sanitized
}

// Sanitize normalizes the Composer settings.
func (configuration ComposerConfiguration) Sanitize() ComposerConfiguration {
	sanitized := configuration
	sanitized.ProjectRoot = projectConfigurationHomeDirectoryExpander.ExpandConfigured(configuration.ProjectRoot)
	if len(sanitized.ProjectRoot) == 0 {
		sanitized.ProjectRoot = DefaultProjectRootConstant
	}
	sanitized.LockFile = projectConfigurationHomeDirectoryExpander.ExpandConfigured(configuration.LockFile)
	sanitized.Binary = projectConfigurationHomeDirectoryExpander.ExpandConfigured(configuration.Binary)
	if sanitized.Timeout < 0 {
		sanitized.Timeout = 0
	}
	return sanitized
}

// LockFilePath returns the lock file location. A relative lock file is resolved against the project root.
func (configuration ComposerConfiguration) LockFilePath() string {
	if len(configuration.LockFile) == 0 {
		return filepath.Join(configuration.ProjectRoot, composer.DefaultLockFileNameConstant)
	}
	if filepath.IsAbs(configuration.LockFile) {
		return configuration.LockFile
	}
	return filepath.Join(configuration.ProjectRoot, configuration.LockFile)
}

// Sanitize normalizes the scan settings.
func (configuration ScanConfiguration) Sanitize() ScanConfiguration {
	sanitized := configuration
	sanitized.Pattern = strings.TrimSpace(configuration.Pattern)
	if len(sanitized.Pattern) == 0 {
		sanitized.Pattern = usage.DefaultSourcePatternConstant
	}
	sanitized.Exclude = sanitizeExcludePatterns(configuration.Exclude)
	if len(sanitized.OnReadError) == 0 {
		sanitized.OnReadError = usage.ReadFailurePolicySkip
	}
	return sanitized
}

func sanitizeExcludePatterns(rawPatterns []string) []string {
	sanitizedPatterns := make([]string, 0, len(rawPatterns))
	for _, rawPattern := range rawPatterns {
		trimmedPattern := strings.TrimSpace(rawPattern)
		if len(trimmedPattern) == 0 {
			continue
		}
		sanitizedPatterns = append(sanitizedPatterns, trimmedPattern)
	}
	if len(sanitizedPatterns) == 0 {
		return nil
	}
	return sanitizedPatterns
}
