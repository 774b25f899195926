// Package staging manages the transient directory holding the disk image
// layout before authoring.
//
// The area is acquired fresh at the start of packaging, populated with the
// built bundle and an Applications drop link, and released unconditionally
// when the run ends, whatever way it ends.
package staging
