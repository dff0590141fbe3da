// Package ir provides the typed intermediate representation for Charta
// control-logic modules.
//
// This package contains type definitions, their JSON codecs and canonical
// hashing. All other internal packages import ir; ir imports nothing internal.
//
// Key design constraints:
//   - Guards and expressions are sealed interfaces; only the types declared
//     here implement them
//   - Optional collections use omitzero: nil means "absent", a non-nil empty
//     slice means "present and empty", and both survive a round-trip
//   - All JSON keys use snake_case and are part of the external contract
//   - Expression decoding resolves boolean, then number, then string
package ir
