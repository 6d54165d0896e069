// Package audit implements the dependency audit: it classifies the packages declared in composer.lock
// as used or unused by the project sources, collects outdated packages from Composer, writes the
// requested reports, and maps the findings to a process exit code.
//
// It exposes CommandBuilder for wiring the audit Cobra command, Service for driving the workflow
// programmatically, and the pure Classify, ComputeExitCode, and EvaluateLimits functions.
package audit
