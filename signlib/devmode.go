//go:build !das_dev

package signlib

// DevMode skips signature verification entirely. It is only true in binaries
// built with the das_dev tag and must never ship to production.
const DevMode = false
