package buildinfo

// Set at link time:
//
//	-X 'github.com/m3rciful/vacancybot/core/buildinfo.Version=v0.3.0'
//	-X 'github.com/m3rciful/vacancybot/core/buildinfo.Commit=abcdef0'
//	-X 'github.com/m3rciful/vacancybot/core/buildinfo.Date=2026-10-01T09:00:00Z'
var (
	// Version is the release tag of the binary.
	Version = "dev"
	// Commit is the VCS revision the binary was built from.
	Commit = "local"
	// Date is the RFC3339 build timestamp.
	Date = ""
)
