// Package buildinfo carries version stamps injected at link time:
//
//	go build -ldflags "-X 'github.com/jeanzhou31/slackattack/core/buildinfo.Version=v0.3.0' \
//	  -X 'github.com/jeanzhou31/slackattack/core/buildinfo.Commit=$(git rev-parse --short HEAD)' \
//	  -X 'github.com/jeanzhou31/slackattack/core/buildinfo.Date=$(date -u +%FT%TZ)'" ./cmd/slackattack
package buildinfo

var (
	Version = "dev"
	Commit  = "local"
	// Date is the build timestamp in RFC3339.
	Date = ""
)

// String renders the stamps for /stats and the startup banner.
func String() string {
	s := Version + " (" + Commit
	if Date != "" {
		s += ", " + Date
	}
	return s + ")"
}
