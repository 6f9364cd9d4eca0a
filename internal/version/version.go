package version

import "fmt"

// Build information set by ldflags
var (
	Version = "dev"     // -X github.com/arthur-debert/deftsilo/internal/version.Version={{.Version}}
	Commit  = "unknown" // -X github.com/arthur-debert/deftsilo/internal/version.Commit={{.Commit}}
	Date    = "unknown" // -X github.com/arthur-debert/deftsilo/internal/version.Date={{.Date}}
)

// Info is the multi-line build description printed by the version command
func Info() string {
	return fmt.Sprintf("deftsilo version %s\n  commit: %s\n  built:  %s\n", Version, Commit, Date)
}
