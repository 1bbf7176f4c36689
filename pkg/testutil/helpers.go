// Package testutil provides common utility functions for testing.
package testutil

import (
	"github.com/lenderkit/covsim/pkg/amort"
)

// FindSchedule finds a tranche's schedule by name in the schedules slice.
// Returns a pointer to the schedule if found, nil otherwise.
func FindSchedule(schedules []amort.Schedule, trancheName string) *amort.Schedule {
	for i := range schedules {
		if schedules[i].TrancheName == trancheName {
			return &schedules[i]
		}
	}
	return nil
}
