// Package unicycle holds the procedures generated from unicycle.toml for a
// kinematic unicycle with a quadratic cost. Its tests evaluate them against
// package math and finite differences, and fail when the checked-in source
// no longer matches what the generator produces.
//
// Regenerate with go generate, or go test -run Generated -update.
package unicycle

//go:generate go run ../../cmd/symgen generate unicycle.toml
