package audit

import (
	"strings"

	pathutils "github.com/selfphp/php-dependency-inspector/internal/utils/path"
)

const (
	// DefaultScanPathConstant is the source root scanned when no path is configured.
	DefaultScanPathConstant = "."
	// DisabledLimitConstant marks a package limit as not set.
	DisabledLimitConstant = -1
)

var auditConfigurationHomeDirectoryExpander = pathutils.NewHomeExpander()

// CommandConfiguration captures persistent settings for the audit command.
type CommandConfiguration struct {
	Path                       string `mapstructure:"path"`
	MarkdownReport             string `mapstructure:"output"`
	JSONReport                 string `mapstructure:"output_json"`
	YAMLReport                 string `mapstructure:"output_yaml"`
	OutdatedReport             string `mapstructure:"output_outdated"`
	Threshold                  int    `mapstructure:"threshold"`
	ExitOnUnused               bool   `mapstructure:"exit_on_unused"`
	ExitOnOutdated             string `mapstructure:"exit_on_outdated"`
	MaxOutdated                int    `mapstructure:"max_outdated"`
	FailIfTotalPackagesExceeds int    `mapstructure:"fail_if_total_packages_exceeds"`
}

// DefaultCommandConfiguration returns baseline configuration values for the audit command.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		Path:                       DefaultScanPathConstant,
		ExitOnOutdated:             string(OutdatedPolicyNone),
		MaxOutdated:                DisabledLimitConstant,
		FailIfTotalPackagesExceeds: DisabledLimitConstant,
	}
}

// DefaultConfigurationValues returns configuration defaults keyed under the provided prefix.
func DefaultConfigurationValues(keyPrefix string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		keyPrefix + ".path":                           defaults.Path,
		keyPrefix + ".threshold":                      defaults.Threshold,
		keyPrefix + ".exit_on_unused":                 defaults.ExitOnUnused,
		keyPrefix + ".exit_on_outdated":               defaults.ExitOnOutdated,
		keyPrefix + ".max_outdated":                   defaults.MaxOutdated,
		keyPrefix + ".fail_if_total_packages_exceeds": defaults.FailIfTotalPackagesExceeds,
	}
}

// Sanitize trims whitespace, expands home shortcuts, and applies defaults to unset values.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	sanitized := configuration

	sanitized.Path = auditConfigurationHomeDirectoryExpander.ExpandConfigured(configuration.Path)
	if len(sanitized.Path) == 0 {
		sanitized.Path = DefaultScanPathConstant
	}
	sanitized.MarkdownReport = auditConfigurationHomeDirectoryExpander.ExpandConfigured(configuration.MarkdownReport)
	sanitized.JSONReport = auditConfigurationHomeDirectoryExpander.ExpandConfigured(configuration.JSONReport)
	sanitized.YAMLReport = auditConfigurationHomeDirectoryExpander.ExpandConfigured(configuration.YAMLReport)
	sanitized.OutdatedReport = auditConfigurationHomeDirectoryExpander.ExpandConfigured(configuration.OutdatedReport)
	if sanitized.Threshold < 0 {
		sanitized.Threshold = 0
	}
	sanitized.ExitOnOutdated = strings.ToLower(strings.TrimSpace(configuration.ExitOnOutdated))
	if sanitized.MaxOutdated < 0 {
		sanitized.MaxOutdated = DisabledLimitConstant
	}
	if sanitized.FailIfTotalPackagesExceeds < 0 {
		sanitized.FailIfTotalPackagesExceeds = DisabledLimitConstant
	}

	return sanitized
}

