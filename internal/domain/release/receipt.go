package release

import "time"

// Receipt is the durable record of a successful packaging run.
type Receipt struct {
	// Version is the release version resolved from source.
	Version string `yaml:"version"`
	// Artifact is the path of the published disk image.
	Artifact string `yaml:"artifact"`
	// SizeBytes is the size of the published disk image.
	SizeBytes int64 `yaml:"size_bytes"`
	// ChecksumSHA512 is the base64-encoded SHA-512 checksum of the image.
	ChecksumSHA512 string `yaml:"checksum_sha512"`
	// BundleVersion is the version probed from the built bundle.
	BundleVersion string `yaml:"bundle_version"`
	// ImageVersion is the version probed after the image was published.
	ImageVersion string `yaml:"image_version"`
	// Stages lists the executed stages with their outcomes.
	Stages []StageReport `yaml:"stages"`
	// BuiltBy is the user and host that produced the release, as "user@host".
	BuiltBy string `yaml:"built_by"`
	// CreatedAt is when the receipt was written.
	CreatedAt time.Time `yaml:"created_at"`
}

// StageReport is one stage entry inside a receipt.
type StageReport struct {
	Name     string `yaml:"name"`
	Status   string `yaml:"status"`
	Duration string `yaml:"duration"`
}
