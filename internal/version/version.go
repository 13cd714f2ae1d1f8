package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Set by ldflags at build time
var (
	Version   = "dev"
	GitCommit = ""
	BuildDate = ""
)

// Info describes the running tfvc build
type Info struct {
	Version   string `yaml:"version"`
	GitCommit string `yaml:"git_commit,omitempty"`
	BuildDate string `yaml:"build_date,omitempty"`
	GoVersion string `yaml:"go_version"`
	Platform  string `yaml:"platform"`
}

func Get() Info {
	return Info{
		Version:   resolve(),
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

func (i Info) String() string {
	s := fmt.Sprintf("tfvc %s (%s, %s)", i.Version, i.GoVersion, i.Platform)
	if i.GitCommit != "" {
		s += " commit " + i.GitCommit
	}
	if i.BuildDate != "" {
		s += " built " + i.BuildDate
	}
	return s
}

// resolve prefers the ldflags version and falls back to the module version of go install builds
func resolve() string {
	if Version != "" && Version != "dev" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return "dev"
}

// GetShortVersion is the version plus the abbreviated commit, as sent in the User-Agent
func GetShortVersion() string {
	v := resolve()
	if len(GitCommit) >= 7 {
		return v + "-" + GitCommit[:7]
	}
	return v
}
