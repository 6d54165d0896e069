// Package analysis implements the interactive dependency listing: every package declared in
// composer.lock is printed as used or unused, optionally followed by a Markdown report with totals.
package analysis
