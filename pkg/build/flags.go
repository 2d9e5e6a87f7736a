// SPDX-License-Identifier: MIT
//
// Package build exposes the version metadata injected at link time:
//
//	go build -ldflags "-X audiofx/pkg/build.buildVersion=0.3.0 \
//	    -X audiofx/pkg/build.buildCommit=$(git rev-parse --short HEAD) \
//	    -X audiofx/pkg/build.buildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
//
// Development builds run without the flags and report "unknown".
package build

import (
	"errors"
	"fmt"
	"strings"
)

// Info is the metadata reported by the version command.
type Info struct {
	Name    string
	Time    string
	Commit  string
	Version string
}

func (i Info) String() string {
	return fmt.Sprintf("%s %s (commit %s, built %s)", i.Name, i.Version, i.Commit, i.Time)
}

// Populated by -ldflags.
var (
	buildName    string
	buildTime    string
	buildCommit  string
	buildVersion string
)

var info = defaultInfo()

func defaultInfo() Info {
	return Info{
		Name:    "audiofx",
		Time:    "unknown",
		Commit:  "unknown",
		Version: "unknown",
	}
}

// ErrMissingFlags is wrapped by Initialize when link-time values are absent.
var ErrMissingFlags = errors.New("build flags missing")

// Initialize copies every link-time value that was set into the reported
// Info. Missing values keep their defaults and are listed in the returned
// error, which callers may treat as a warning.
func Initialize() error {
	info = defaultInfo()

	var missing []string
	for _, f := range []struct {
		name  string
		value string
		dst   *string
	}{
		{"buildName", buildName, &info.Name},
		{"buildTime", buildTime, &info.Time},
		{"buildCommit", buildCommit, &info.Commit},
		{"buildVersion", buildVersion, &info.Version},
	} {
		if f.value == "" {
			missing = append(missing, f.name)
			continue
		}
		*f.dst = f.value
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingFlags, strings.Join(missing, ", "))
	}
	return nil
}

// Get returns the build information recorded by Initialize.
func Get() Info {
	return info
}
