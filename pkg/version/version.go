package version

// version is set via ldflags during build.
var version = "dev"

// Get returns the build version.
func Get() string {
	return version
}
