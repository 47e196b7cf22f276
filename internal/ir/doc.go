// Package ir provides the gear-train data model shared by every GearMatrix
// package.
//
// This package contains type definitions and static lookup data only. All
// other internal packages import ir; ir imports nothing internal.
//
// Key design constraints:
//   - Gear indices are positional (0-based); gear 0 is the root
//   - Computed values that may be unreached are pointers (nil = not reached)
//   - The type compatibility table is immutable package data
//   - All JSON tags use snake_case
package ir
