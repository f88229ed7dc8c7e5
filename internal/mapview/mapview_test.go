package mapview

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/schoolbus-tracker/internal/fleet"
	"github.com/ukydev/schoolbus-tracker/internal/models"
)

var fixedNow = time.Date(2024, 9, 2, 7, 30, 15, 0, time.UTC)

func testBuilder() *Builder {
	b := NewBuilder(DefaultIcon())
	b.Now = func() time.Time { return fixedNow }
	return b
}

func TestParentView_RecentersOnBus(t *testing.T) {
	bus := fleet.ParentBus(fixedNow)
	bus.Location = models.Location{Lat: 40.7131, Lng: -74.0057}

	update := testBuilder().Parent(bus)

	assert.Equal(t, ViewParent, update.View)
	assert.Equal(t, bus.Location, update.Map.Center)
	assert.Equal(t, ParentZoom, update.Map.Zoom)
	assert.True(t, update.Map.Recenter)
	require.Len(t, update.Map.Markers, 1)
	assert.Equal(t, bus.Location, update.Map.Markers[0].Position)
	assert.Equal(t, []string{"Bus #123"}, update.Map.Markers[0].Popup)
	assert.Equal(t, fixedNow, update.Map.Markers[0].UpdatedAt)
	require.Len(t, update.Buses, 1)
	assert.Equal(t, "green", update.Buses[0].StatusColor)
	assert.Equal(t, fixedNow, update.SentAt)
}

func TestAdminView_FixedCenterAndSeedOrder(t *testing.T) {
	buses := fleet.AdminBuses(fixedNow)
	buses[0].Location = models.Location{Lat: 41, Lng: -75}
	buses[2].Status = models.StatusDelayed

	update := testBuilder().Admin(buses)

	assert.Equal(t, ViewAdmin, update.View)
	assert.Equal(t, AdminCenter, update.Map.Center)
	assert.Equal(t, AdminZoom, update.Map.Zoom)
	assert.False(t, update.Map.Recenter)
	require.Len(t, update.Map.Markers, 3)
	require.Len(t, update.Buses, 3)
	for i, id := range []int{1, 2, 3} {
		assert.Equal(t, id, update.Map.Markers[i].ID)
		assert.Equal(t, id, update.Buses[i].ID)
	}
	assert.Equal(t, "Driver: Jane Smith", update.Map.Markers[1].Popup[1])
	assert.Equal(t, "Status: At Stop", update.Map.Markers[1].Popup[2])
	assert.Equal(t, "Route: Morning Route B", update.Map.Markers[1].Popup[3])
	assert.Len(t, update.Map.Markers[1].Popup, 4)
	assert.Equal(t, fixedNow, update.Map.Markers[1].UpdatedAt)
	assert.Equal(t, []string{"green", "yellow", "red"}, []string{
		update.Buses[0].StatusColor, update.Buses[1].StatusColor, update.Buses[2].StatusColor,
	})
}

func TestIconTravelsWithView(t *testing.T) {
	custom := Icon{IconURL: "/static/bus.png", IconRetinaURL: "/static/bus@2x.png", ShadowURL: "/static/shadow.png"}
	b := NewBuilder(custom)

	assert.Equal(t, custom, b.Parent(fleet.ParentBus(fixedNow)).Map.Icon)
	assert.Equal(t, custom, b.Admin(fleet.AdminBuses(fixedNow)).Map.Icon)
	assert.Contains(t, DefaultIcon().IconURL, "marker-icon.png")
}

func TestStatusColor(t *testing.T) {
	tests := []struct {
		status   models.Status
		expected string
	}{
		{models.StatusOnRoute, "green"},
		{models.StatusAtStop, "yellow"},
		{models.StatusDelayed, "red"},
		{models.StatusArrivingSoon, "blue"},
		{"", "gray"},
		{"Out Of Service", "gray"},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.expected, StatusColor(tt.status))
		})
	}
}

func TestIndicatorColor(t *testing.T) {
	assert.Equal(t, "green", IndicatorColor(models.StatusOnRoute))
	assert.Equal(t, "yellow", IndicatorColor(models.StatusDelayed))
	assert.Equal(t, "yellow", IndicatorColor(models.StatusArrivingSoon))
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "-", FormatTime(time.Time{}))
	assert.Equal(t, "07:30:15", FormatTime(fixedNow))
	// first paint is always UTC; the browser relabels it in local time
	berlin := time.FixedZone("CEST", 2*60*60)
	assert.Equal(t, "07:30:15", FormatTime(fixedNow.In(berlin)))
	assert.Equal(t, "40.7128, -74.0060", FormatLocation(models.Location{Lat: 40.7128, Lng: -74.006}))
}

func TestUpdateWireShape(t *testing.T) {
	data, err := json.Marshal(testBuilder().Admin(fleet.AdminBuses(fixedNow)))
	require.NoError(t, err)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "admin", raw["view"])

	buses := raw["buses"].([]interface{})
	first := buses[0].(map[string]interface{})
	// the embedded bus is flattened next to the panel fields
	assert.Equal(t, float64(1), first["id"])
	assert.Equal(t, "green", first["status_color"])
	assert.Contains(t, first, "last_update")

	markers := raw["map"].(map[string]interface{})["markers"].([]interface{})
	marker := markers[0].(map[string]interface{})
	assert.Equal(t, "2024-09-02T07:30:15Z", marker["updated_at"])
}
