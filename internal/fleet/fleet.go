// Package fleet holds the buses each dashboard starts from.
package fleet

import (
	"time"

	"github.com/ukydev/schoolbus-tracker/internal/models"
)

// ParentBusID is the bus a parent follows.
const ParentBusID = 123

// ParentBus returns the single bus shown on the parent dashboard.
func ParentBus(now time.Time) models.Bus {
	return models.Bus{
		ID:         ParentBusID,
		Driver:     "John Doe",
		Route:      "Morning Route A",
		Location:   models.Location{Lat: 40.7128, Lng: -74.0060},
		Status:     models.StatusOnRoute,
		LastUpdate: now,
	}
}

// AdminBuses returns the admin fleet in display order.
func AdminBuses(now time.Time) []models.Bus {
	return []models.Bus{
		{
			ID:         1,
			Driver:     "John Doe",
			Phone:      "555-0123",
			Route:      "Morning Route A",
			Location:   models.Location{Lat: 40.7128, Lng: -74.0060},
			Status:     models.StatusOnRoute,
			LastUpdate: now,
		},
		{
			ID:         2,
			Driver:     "Jane Smith",
			Phone:      "555-0124",
			Route:      "Morning Route B",
			Location:   models.Location{Lat: 40.7148, Lng: -74.0068},
			Status:     models.StatusAtStop,
			LastUpdate: now,
		},
		{
			ID:         3,
			Driver:     "Mike Johnson",
			Phone:      "555-0125",
			Route:      "Morning Route C",
			Location:   models.Location{Lat: 40.7138, Lng: -74.0050},
			Status:     models.StatusOnRoute,
			LastUpdate: now,
		},
	}
}
