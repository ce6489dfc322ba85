package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
	"time"
)

// Product names the binary in version strings and outbound User-Agent
// headers.
const Product = "smartsearch"

// Set at build time with -ldflags "-X github.com/kbukum/smartsearch/version.Version=...".
var (
	Version   = "dev"
	GitCommit = ""
	GitBranch = ""
	BuildTime = ""
)

// Info is the build information reported by /info and the CLI.
type Info struct {
	Version   string    `json:"version"`
	GitCommit string    `json:"git_commit"`
	GitBranch string    `json:"git_branch"`
	BuildTime string    `json:"build_time"`
	GoVersion string    `json:"go_version"`
	BuildDate time.Time `json:"build_date"`
	IsRelease bool      `json:"is_release"`
	IsDirty   bool      `json:"is_dirty"`
}

// GetVersionInfo merges the ldflags values with the VCS stamp the Go
// toolchain embeds. Ldflags win when both are present. BuildDate stays zero
// when neither source knows it.
func GetVersionInfo() *Info {
	info := &Info{
		Version:   Version,
		GitCommit: GitCommit,
		GitBranch: GitBranch,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		applyBuildSettings(info, bi.Settings)
	}
	if t, err := time.Parse(time.RFC3339, info.BuildTime); err == nil {
		info.BuildDate = t.UTC()
	}
	if len(info.GitCommit) > 7 {
		info.GitCommit = info.GitCommit[:7]
	}
	info.IsRelease = info.Version != "dev" && !info.IsDirty && !strings.HasSuffix(info.Version, "-dirty")
	return info
}

func applyBuildSettings(info *Info, settings []debug.BuildSetting) {
	for _, s := range settings {
		switch s.Key {
		case "vcs.revision":
			if info.GitCommit == "" {
				info.GitCommit = s.Value
			}
		case "vcs.modified":
			info.IsDirty = s.Value == "true"
		case "vcs.time":
			if info.BuildTime == "" {
				info.BuildTime = s.Value
			}
		}
	}
}

// Short renders version[-commit][-dirty].
func (i *Info) Short() string {
	parts := []string{i.Version}
	if i.GitCommit != "" {
		parts = append(parts, i.GitCommit)
	}
	if i.IsDirty {
		parts = append(parts, "dirty")
	}
	return strings.Join(parts, "-")
}

// Full adds a non-default branch and the build date to Short.
func (i *Info) Full() string {
	v := i.Short()
	if b := i.GitBranch; b != "" && b != "main" && b != "master" {
		v += " (" + b + ")"
	}
	if !i.BuildDate.IsZero() {
		v += fmt.Sprintf(" built %s", i.BuildDate.Format(time.RFC3339))
	}
	return v
}

// GetShortVersion is the version shown by --version.
func GetShortVersion() string { return GetVersionInfo().Short() }

// GetFullVersion is the version logged at startup.
func GetFullVersion() string { return GetVersionInfo().Full() }

// UserAgent identifies this build to the transcription, image search and
// search upstreams.
func UserAgent() string {
	return Product + "/" + GetShortVersion()
}
