//go:build tools
// +build tools

// Package tools declares tool dependencies for this module.
// mockgen is run through go generate and is tracked here so go.mod keeps it.
package viewing

import (
	_ "go.uber.org/mock/mockgen"
)
