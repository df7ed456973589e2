// Package testutil provides common utility functions for testing.
package testutil

import (
	"github.com/planwise/retirecast/internal/projection"
)

// FindYear finds a snapshot by calendar year in the projection.
// Returns a pointer to the snapshot if found, nil otherwise.
func FindYear(snapshots []projection.Snapshot, year int) *projection.Snapshot {
	for i := range snapshots {
		if snapshots[i].Year == year {
			return &snapshots[i]
		}
	}
	return nil
}

// FindAge finds a snapshot by the profile holder's age in the projection.
// Returns a pointer to the snapshot if found, nil otherwise.
func FindAge(snapshots []projection.Snapshot, age int) *projection.Snapshot {
	for i := range snapshots {
		if snapshots[i].Age == age {
			return &snapshots[i]
		}
	}
	return nil
}
