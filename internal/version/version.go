// Package version holds the fnsql build version.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
)

// Set with -ldflags "-X github.com/satishbabariya/fnsql-go/internal/version.Version=...".
var (
	// Version is the generator version, stamped into generated files.
	Version   = "0.3.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// drivers are the database/sql drivers generated tests open.
var drivers = []string{
	"github.com/mattn/go-sqlite3",
	"github.com/lib/pq",
	"github.com/go-sql-driver/mysql",
}

// Info describes the running fnsql binary.
type Info struct {
	Version   string
	BuildDate string
	GitCommit string
	GoVersion string
	Platform  string
	// Drivers maps driver module paths to the versions linked in, when the
	// binary carries build info.
	Drivers map[string]string
}

// Get returns the version information of the running binary.
func Get() Info {
	info := Info{
		Version:   Version,
		BuildDate: BuildDate,
		GitCommit: GitCommit,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
		Drivers:   make(map[string]string),
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, dep := range bi.Deps {
			for _, d := range drivers {
				if dep.Path == d {
					info.Drivers[d] = dep.Version
				}
			}
		}
	}
	return info
}

func (i Info) String() string {
	return fmt.Sprintf("fnsql v%s (%s %s)", i.Version, i.Platform, i.GoVersion)
}

// FullString adds the build and the linked drivers to String.
func (i Info) FullString() string {
	var sb strings.Builder
	sb.WriteString(i.String())
	fmt.Fprintf(&sb, "\ncommit %s, built %s", i.GitCommit, i.BuildDate)
	for _, d := range drivers {
		if v, ok := i.Drivers[d]; ok {
			fmt.Fprintf(&sb, "\n  %s %s", d, v)
		}
	}
	return sb.String()
}
