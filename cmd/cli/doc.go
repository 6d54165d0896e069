// Package cli constructs the php-dependency-inspector command-line interface,
// wiring the Cobra command hierarchy, the layered configuration loader, and
// structured logging. The audit and analyse subcommands are registered from
// their internal packages; version reports the build version.
package cli
