// Package report implements persistence for release receipts.
//
// The FileRepository stores and loads the Receipt as YAML on disk and exposes
// a Repository interface that the packaging pipeline depends on.
package report
