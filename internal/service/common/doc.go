// Package common holds helpers shared by several services.
//
// It provides the external tool runner every pipeline stage goes through
// (one invocation per call, combined output captured, an optional timeout,
// explicit environment threading instead of ambient mutation) and the
// builder identity helper stamped into release receipts.
//
//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common
