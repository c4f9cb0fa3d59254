package version

import (
	"fmt"
	"runtime"
)

// Product is the name reported in version strings and outbound User-Agent headers.
const Product = "livedash"

// Build information, set at link time:
//
//	go build -ldflags "-X github.com/zsiec/livedash/pkg/version.Version=v1.2.0"
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
	OS        = runtime.GOOS
	Arch      = runtime.GOARCH
)

// Info contains version information.
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildTime string `json:"build_time"`
	GoVersion string `json:"go_version"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// GetInfo returns the version information.
func GetInfo() Info {
	return Info{
		Version:   Version,
		GitCommit: GitCommit,
		BuildTime: BuildTime,
		GoVersion: GoVersion,
		OS:        OS,
		Arch:      Arch,
	}
}

// String returns a one-line description of the build.
func (i Info) String() string {
	return fmt.Sprintf("%s %s (commit: %s, built: %s, go: %s, os/arch: %s/%s)",
		Product, i.Version, i.GitCommit, i.BuildTime, i.GoVersion, i.OS, i.Arch)
}

// Short returns the product name and version.
func (i Info) Short() string {
	return fmt.Sprintf("%s %s", Product, i.Version)
}

// UserAgent is sent on every request to the status API and upstream platforms.
func (i Info) UserAgent() string {
	return fmt.Sprintf("%s/%s (+%s/%s)", Product, i.Version, i.OS, i.Arch)
}
