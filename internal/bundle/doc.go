// Package bundle probes metadata of built application bundles.
//
// Values come from the host metadata reader rather than a plist parser, so
// the check observes exactly what the operating system would report. Probes
// never modify the bundle.
package bundle
