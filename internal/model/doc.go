// Package model defines the core data structures shared across docpull:
// download records and their status lifecycle, link predicates used during
// harvesting, and the per-run report consumed by the report writers.
package model
