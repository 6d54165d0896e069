// Package ui renders Composer and PHP invocations as short console messages.
//
// ConsoleCommandEventLogger observes execshell lifecycle events and writes
// them through a human-readable zap logger, while the structured command
// telemetry stays with execshell.ShellExecutor.
package ui
