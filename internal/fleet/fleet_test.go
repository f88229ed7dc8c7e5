package fleet

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/ukydev/schoolbus-tracker/internal/models"
)

func TestParentBus(t *testing.T) {
	now := time.Now()
	bus := ParentBus(now)

	assert.Equal(t, ParentBusID, bus.ID)
	assert.Equal(t, models.Location{Lat: 40.7128, Lng: -74.0060}, bus.Location)
	assert.Equal(t, models.StatusOnRoute, bus.Status)
	assert.Equal(t, now, bus.LastUpdate)
}

func TestAdminBuses(t *testing.T) {
	buses := AdminBuses(time.Now())

	ids := make([]int, 0, len(buses))
	for _, b := range buses {
		ids = append(ids, b.ID)
		assert.True(t, models.IsValidStatus(b.Status))
		assert.NotEmpty(t, b.Driver)
		assert.NotEmpty(t, b.Phone)
	}
	assert.Equal(t, []int{1, 2, 3}, ids)
	assert.Equal(t, models.StatusAtStop, buses[1].Status)
}

func TestAdminBuses_FreshSlice(t *testing.T) {
	first := AdminBuses(time.Now())
	first[0].Driver = "changed"

	assert.Equal(t, "John Doe", AdminBuses(time.Now())[0].Driver)
}
