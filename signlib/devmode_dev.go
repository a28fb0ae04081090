//go:build das_dev

package signlib

const DevMode = true
