// Package version provides build and version information.
package version

// Version is the current application version.
const Version = "0.3.0"

// Milestones:
// 0.3.0 - Tile projections (Mercator, plate carrée), equatorial frame, JSON export
// 0.2.0 - Iterative SIN inverse with edge correction, ruler, view history
// 0.1.0 - Initial release: SIN sky chart TUI, headless project/unproject, mini sky
