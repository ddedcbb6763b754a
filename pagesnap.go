// Package pagesnap provides an HTTP service that renders a URL through a
// headless browser and returns normalized article metadata plus extracted
// content. Results are cached on disk with a TTL evaluated at read time.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., rod/, goquery/, fs/, sqlite/).
package pagesnap
