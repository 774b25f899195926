// Package source resolves the release version from the project's Go source.
//
// The version lives in exactly one declaration; reading it from source rather
// than from a compiled binary means a stale build can never misreport what is
// about to be released. Resolved values must be strict semantic versions.
package source
