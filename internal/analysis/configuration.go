package analysis

import (
	pathutils "github.com/selfphp/php-dependency-inspector/internal/utils/path"
)

const (
	// DefaultScanPathConstant is the source root scanned when no path is configured.
	DefaultScanPathConstant = "."
)

var analysisConfigurationHomeDirectoryExpander = pathutils.NewHomeExpander()

// CommandConfiguration captures persistent settings for the analyse command.
type CommandConfiguration struct {
	Path           string `mapstructure:"path"`
	OnlyUnused     bool   `mapstructure:"only_unused"`
	MarkdownReport string `mapstructure:"output"`
}

// DefaultCommandConfiguration returns baseline configuration values for the analyse command.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{Path: DefaultScanPathConstant}
}

// DefaultConfigurationValues returns configuration defaults keyed under the provided prefix.
func DefaultConfigurationValues(keyPrefix string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		keyPrefix + ".path":        defaults.Path,
		keyPrefix + ".only_unused": defaults.OnlyUnused,
	}
}

// Sanitize trims whitespace and expands home shortcuts.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	sanitized := configuration
	sanitized.Path = analysisConfigurationHomeDirectoryExpander.ExpandConfigured(configuration.Path)
	if len(sanitized.Path) == 0 {
		sanitized.Path = DefaultScanPathConstant
	}
	sanitized.MarkdownReport = analysisConfigurationHomeDirectoryExpander.ExpandConfigured(configuration.MarkdownReport)
	return sanitized
}

