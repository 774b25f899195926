package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Point is a pair of pixel coordinates inside the disk image window.
type Point struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

// Size is a window size in pixels.
type Size struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// Config holds the packaging parameters for a release run.
type Config struct {
	// AppName is the bare application name. It names the bundle
	// (<AppName>.app), the disk image volume, and the final artifact.
	AppName string `yaml:"app_name"`
	// VersionSource is the Go source file holding the authoritative
	// version declaration, relative to the project root.
	VersionSource string `yaml:"version_source"`
	// VersionIdent is the identifier of the version declaration
	// inside VersionSource.
	VersionIdent string `yaml:"version_ident"`
	// BundleDir is the build output directory. The built bundle is
	// expected at <BundleDir>/<AppName>.app.
	BundleDir string `yaml:"bundle_dir"`
	// StagingDir is the transient pre-image layout directory. It is
	// removed and recreated on every run, so it must stay inside the
	// project and must not collide with other directories.
	StagingDir string `yaml:"staging_dir"`
	// OutputDir is the directory receiving the final disk image.
	OutputDir string `yaml:"output_dir"`
	// BuildCommand is the external command producing the bundle.
	BuildCommand []string `yaml:"build_command"`
	// VersionEnv is the environment variable carrying the resolved
	// version into BuildCommand.
	VersionEnv string `yaml:"version_env"`
	// VersionKey is the metadata key probed from bundle property lists.
	VersionKey string `yaml:"version_key"`
	// VolumeIcon is an optional .icns path shown as the mounted volume icon.
	VolumeIcon string `yaml:"volume_icon,omitempty"`
	// WindowPos is the top-left position of the disk image window.
	WindowPos Point `yaml:"window_pos"`
	// WindowSize is the size of the disk image window.
	WindowSize Size `yaml:"window_size"`
	// IconSize is the icon size inside the disk image window.
	IconSize int `yaml:"icon_size"`
	// IconPos is the position of the application icon in the window.
	IconPos Point `yaml:"icon_pos"`
	// DropLinkPos is the position of the Applications drop link in the window.
	DropLinkPos Point `yaml:"drop_link_pos"`
	// ReportFile is where the release receipt is written on success.
	ReportFile string `yaml:"report_file"`
	// CommandTimeout bounds each external tool invocation.
	// Zero disables timeouts, which is the default: builds and image
	// creation legitimately take as long as they take.
	CommandTimeout time.Duration `yaml:"command_timeout"`
}

const (
	// DefaultConfigFilename is the default filename for packaging settings.
	DefaultConfigFilename = "katrain-packager.yaml"

	// DefaultAppName is the application packaged when no name is configured.
	DefaultAppName = "KaTrain"

	// DefaultVersionSource is the default Go file holding the version declaration.
	DefaultVersionSource = "internal/version/version.go"

	// DefaultVersionIdent is the default identifier of the version declaration.
	DefaultVersionIdent = "Version"

	// DefaultBundleDir is the default build output directory.
	DefaultBundleDir = "dist"

	// DefaultStagingDir is the default transient pre-image layout directory.
	DefaultStagingDir = "dist/dmg"

	// DefaultOutputDir is the default final artifact directory.
	DefaultOutputDir = "."

	// DefaultVersionEnv is the default environment variable name for the
	// resolved version.
	DefaultVersionEnv = "KATRAIN_VERSION"

	// DefaultVersionKey is the default bundle metadata key holding the version.
	DefaultVersionKey = "CFBundleShortVersionString"

	// DefaultReportFile is the default release receipt location.
	DefaultReportFile = "dist/katrain-release-report.yaml"

	// DefaultIconSize is the default icon size inside the disk image window.
	DefaultIconSize = 100

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errAppNameInvalid is returned when the application name contains path separators.
	errAppNameInvalid = errors.New("application name must be a bare name without path separators")
	// errStagingDirIsProjectRoot is returned when the staging directory resolves
	// to the project root, which would be removed on every run.
	errStagingDirIsProjectRoot = errors.New("staging directory must not be the project root")
	// errStagingMatchesBundleDir is returned when staging and bundle directories collide.
	errStagingMatchesBundleDir = errors.New("staging directory must differ from bundle directory")
	// errStagingMatchesOutputDir is returned when staging and output directories collide.
	errStagingMatchesOutputDir = errors.New("staging directory must differ from output directory")
	// errNegativeCommandTimeout is returned when the command timeout is negative.
	errNegativeCommandTimeout = errors.New("command timeout must not be negative")
	// errBuildCommandEmpty is returned when the build command has no executable.
	errBuildCommandEmpty = errors.New("build command must start with an executable name")
)

// Load reads configuration from the provided path and validates essential fields.
// An empty path and the default filename both mean the default location; a
// missing file there is not an error and yields pure defaults. Any other path
// must exist.
func Load(path string) (*Config, error) {
	explicit := path != "" && path != DefaultConfigFilename
	if !explicit {
		path = DefaultConfigFilename
	}

	var cfg Config

	contents, err := os.ReadFile(filepath.Clean(path))
	switch {
	case err == nil:
		if err = yaml.Unmarshal(contents, &cfg); err != nil {
			return nil, fmt.Errorf("unmarshal settings: %w", err)
		}
	case !explicit && errors.Is(err, os.ErrNotExist):
		// Fall through to defaults.
	default:
		return nil, fmt.Errorf("read settings: %w", err)
	}

	if err = Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes settings to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the provided settings and fills in defaults for omitted fields.
func Validate(settings *Config) error {
	if settings == nil {
		return errConfigIsNotSet
	}

	fillDefaults(settings)

	if strings.ContainsAny(settings.AppName, `/\`) {
		return errAppNameInvalid
	}

	if err := validateProjectDir("bundle_dir", settings.BundleDir); err != nil {
		return err
	}

	if err := validateProjectDir("staging_dir", settings.StagingDir); err != nil {
		return err
	}

	if err := validateProjectDir("output_dir", settings.OutputDir); err != nil {
		return err
	}

	// The staging directory is removed unconditionally before each run,
	// so it must never alias a directory holding anything else.
	staging := filepath.Clean(settings.StagingDir)
	switch {
	case staging == ".":
		return errStagingDirIsProjectRoot
	case staging == filepath.Clean(settings.BundleDir):
		return errStagingMatchesBundleDir
	case staging == filepath.Clean(settings.OutputDir):
		return errStagingMatchesOutputDir
	}

	if settings.BuildCommand[0] == "" {
		return errBuildCommandEmpty
	}

	if settings.CommandTimeout < 0 {
		return errNegativeCommandTimeout
	}

	return nil
}

// fillDefaults replaces zero values with the documented defaults.
func fillDefaults(settings *Config) {
	if settings.AppName == "" {
		settings.AppName = DefaultAppName
	}

	if settings.VersionSource == "" {
		settings.VersionSource = DefaultVersionSource
	}

	if settings.VersionIdent == "" {
		settings.VersionIdent = DefaultVersionIdent
	}

	if settings.BundleDir == "" {
		settings.BundleDir = DefaultBundleDir
	}

	if settings.StagingDir == "" {
		settings.StagingDir = DefaultStagingDir
	}

	if settings.OutputDir == "" {
		settings.OutputDir = DefaultOutputDir
	}

	if len(settings.BuildCommand) == 0 {
		settings.BuildCommand = []string{"make", "bundle"}
	}

	if settings.VersionEnv == "" {
		settings.VersionEnv = DefaultVersionEnv
	}

	if settings.VersionKey == "" {
		settings.VersionKey = DefaultVersionKey
	}

	if settings.WindowPos == (Point{}) {
		settings.WindowPos = Point{X: 200, Y: 120}
	}

	if settings.WindowSize.Width <= 0 || settings.WindowSize.Height <= 0 {
		settings.WindowSize = Size{Width: 800, Height: 400}
	}

	if settings.IconSize <= 0 {
		settings.IconSize = DefaultIconSize
	}

	if settings.IconPos == (Point{}) {
		settings.IconPos = Point{X: 200, Y: 190}
	}

	if settings.DropLinkPos == (Point{}) {
		settings.DropLinkPos = Point{X: 600, Y: 185}
	}

	if settings.ReportFile == "" {
		settings.ReportFile = DefaultReportFile
	}
}

// validateProjectDir rejects directories that could escape the project root.
func validateProjectDir(field, dir string) error {
	if filepath.IsAbs(dir) {
		return fmt.Errorf("%s must be relative to the project root: %q", field, dir)
	}

	clean := filepath.Clean(dir)
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return fmt.Errorf("%s must not escape the project root: %q", field, dir)
	}

	return nil
}
