// Package drift turns the events of many cycles into one drift profile and
// removes it from the cycles.
//
// 🚀 What it does
//
//	A Task detects the flat events of every cycle (or takes whole cycles),
//	collapses them into a collapse.Profile, stitches the holes of that
//	profile and anchors it so that the median of its last Zero values is 0.
//	Subtract removes a profile from a cycle in place.
//
// ⚙️ Aggregation
//
//	OnBeads true  → one profile per bead, built from that bead's cycles.
//	OnBeads false → one profile per cycle index, built across beads.
//
// 🧵 Concurrency
//
//	Task is immutable and safe for concurrent use. Runner schedules beads or
//	cycles on an errgroup and memoizes profiles through a Cache: each key
//	is computed at most once, concurrent requesters wait for that result.
//
// 📄 Configuration
//
//	Config loads from YAML (LoadConfig, LoadConfigFile). Absent keys keep
//	their defaults, unknown keys are errors, `events: null` uses whole
//	cycles and `zero: null` disables anchoring.
package drift
