// Package utils exposes reusable helpers consumed by multiple commands.
//
// ConfigurationLoader layers embedded defaults, configuration files, and PHPDI_
// environment variables through Viper. LoggerFactory builds zap loggers that
// write to standard error or to a rotating log file.
package utils
