// Package buildinfo exposes the version, commit and build time of the
// running binary, as printed by --version and served on /healthz.
package buildinfo
