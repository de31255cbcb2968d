// Package version carries build metadata for the GroceryNana backend.
// The package variables are stamped at link time, for example:
//
//	go build -ldflags "-X grocerynana/internal/version.Version=v0.3.1 -X grocerynana/internal/version.GitCommit=$(git rev-parse --short HEAD)"
package version

import (
	"fmt"
	"os"
	"sync"

	"github.com/google/uuid"
)

var (
	// Version is the release tag or short commit hash.
	Version = "unknown"

	// BuildDate is the ISO 8601 UTC build timestamp.
	BuildDate = "unknown"

	// GitCommit is the source commit SHA.
	GitCommit = "unknown"
)

// Info holds build metadata and per-process identity.
type Info struct {
	Version    string `json:"version"`
	GitCommit  string `json:"git_commit"`
	BuildDate  string `json:"build_date"`
	InstanceID string `json:"instance_id"`
	Hostname   string `json:"hostname"`
}

var (
	once sync.Once
	info Info
)

// GetInfo returns build metadata and runtime information.
// Instance ID and hostname are computed once per process.
func GetInfo() Info {
	once.Do(func() {
		info = Info{
			Version:    Version,
			GitCommit:  GitCommit,
			BuildDate:  BuildDate,
			InstanceID: uuid.NewString(),
			Hostname:   getHostname(),
		}
	})
	return info
}

func getHostname() string {
	hostname, err := os.Hostname()
	if err != nil || hostname == "" {
		return "unknown"
	}
	return hostname
}

// String formats version info for startup logs.
func (i Info) String() string {
	return fmt.Sprintf("grocerynana version %s (commit: %s, built: %s)", i.Version, i.GitCommit, i.BuildDate)
}

// UserAgent is the User-Agent the bundled tools send.
func (i Info) UserAgent(tool string) string {
	return fmt.Sprintf("grocerynana-%s/%s", tool, i.Version)
}
