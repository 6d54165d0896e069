// Package project holds the Composer project settings shared by the audit and analyse commands and
// resolves the default collaborators (lock file loader, source scanner, outdated checker) from them.
package project
