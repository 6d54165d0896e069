// Package usage detects which PHP namespaces a codebase references.
//
// ExtractSymbols performs the lexical extraction for a single file, Scanner walks a
// source tree through a SourceFileCatalog and collapses every extracted token into a
// UsedNamespaceSet, and FilesystemCatalog provides the glob-filtered on-disk catalog.
package usage
