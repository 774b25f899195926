// Package imaging authors, publishes, and verifies the release disk image.
//
// Two tools can author an image: create-dmg with the full drag-to-install
// cosmetics, and hdiutil as the plain fallback. Selection is by availability,
// and authoring success is always decided by the output file rather than by
// tool exit codes. Published artifacts go through a checksum-verified atomic
// replacement and are verified by mounting the image and probing the bundle
// inside it.
package imaging
