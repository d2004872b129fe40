package fakeprovider

import "os"

// ShowHelp prints usage information for the fake provider tool.
func ShowHelp() {
	os.Stdout.WriteString(`Gridiron Fake Provider
======================

Serves deterministic scoreboard and team rankings fixtures over the
provider's URL shapes, and optionally checks a running gridiron instance
against them.

Usage:
  go run ./cmd/fakeprovider [options]

Options:
  -addr string
        Listen address (default ":8090")
  -key string
        API key clients must send (default "local-key")
  -seed uint
        Fixture seed (default 2020)
  -weeks int
        Number of weekly game days (default 4)
  -games int
        Games per game day (default 8)
  -unranked int
        Teams left out of the rankings (default 0)
  -check string
        Base URL of a gridiron instance to check, e.g. http://localhost:8000
  -verbose
        Enable debug logging
  -help
        Show this help message

Examples:
  # Serve fixtures and point gridiron at them
  go run ./cmd/fakeprovider -addr :8090
  GRIDIRON_PROVIDER_BASE_URL=http://localhost:8090 GRIDIRON_PROVIDER_API_KEY=local-key go run ./cmd

  # Check a running instance configured against this provider
  go run ./cmd/fakeprovider -check http://localhost:8000
`)
}
