// Package gallery implements the core of the image browser: the directory
// scanner, the sidecar caption loader, the on-disk thumbnail cache and the
// pagination engine.
//
// All components take their directories from explicit configuration passed
// at construction; nothing reads package-level state, so tests can run
// each component against its own temporary directories.
package gallery
