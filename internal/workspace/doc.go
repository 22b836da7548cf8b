// Package workspace discovers the members of a Cargo workspace and keeps them
// in an ordered, name-unique Index. The index is built once per command:
// discovery reads the root manifest and every declared member manifest,
// members that cannot be parsed are recorded as skipped rather than failing
// the whole run, and only package versions change afterwards (through Writer).
//
// Consistency checking and the blake3 manifest fingerprint used by watch mode
// also live here because they only need the index.
package workspace
