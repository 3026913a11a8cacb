// ABOUTME: Version information for Shermbites
// ABOUTME: Single source of truth for product name and version strings
package version

import "fmt"

const (
	// Version is the release version
	Version = "0.3.0"

	// Product is the display name shown in the UI header
	Product = "Shermbites"
)

// UserAgent returns the HTTP User-Agent sent to the backend
func UserAgent() string {
	return fmt.Sprintf("%s/%s", Product, Version)
}
