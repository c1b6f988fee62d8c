// Package version holds the ctxgov build version.
package version

// Version is the current ctxgov version. Overridden at build time via
// -ldflags "-X ctxgov/internal/version.Version=...".
var Version = "0.3.0"
