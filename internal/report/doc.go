// Package report renders dependency audit and analysis results.
//
// Documents are rendered as Markdown, JSON, or YAML files and as console
// listings; FileWriter persists rendered documents to disk.
package report
