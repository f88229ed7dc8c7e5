package mapview

import (
	"fmt"
	"time"

	"github.com/ukydev/schoolbus-tracker/internal/models"
)

const (
	ParentZoom = 15
	AdminZoom  = 13

	timeLayout = "15:04:05"
)

// View names used on the wire and in mirror topics.
const (
	ViewParent = "parent"
	ViewAdmin  = "admin"
)

// AdminCenter is where the admin map stays put.
var AdminCenter = models.Location{Lat: 40.7128, Lng: -74.0060}

// Icon is the marker artwork handed to the map widget with every view.
type Icon struct {
	IconURL       string `json:"icon_url"`
	IconRetinaURL string `json:"icon_retina_url"`
	ShadowURL     string `json:"shadow_url"`
}

// DefaultIcon returns the stock Leaflet marker hosted on cdnjs.
func DefaultIcon() Icon {
	const base = "https://cdnjs.cloudflare.com/ajax/libs/leaflet/1.7.1/images/"
	return Icon{
		IconURL:       base + "marker-icon.png",
		IconRetinaURL: base + "marker-icon-2x.png",
		ShadowURL:     base + "marker-shadow.png",
	}
}

// Marker is one pin on the map with the lines shown in its popup. The
// browser appends the update time to the popup in its own time zone.
type Marker struct {
	ID        int             `json:"id"`
	Position  models.Location `json:"position"`
	Popup     []string        `json:"popup"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Map is everything the map widget needs to draw one frame.
type Map struct {
	Center   models.Location `json:"center"`
	Zoom     int             `json:"zoom"`
	Recenter bool            `json:"recenter"`
	Icon     Icon            `json:"icon"`
	Markers  []Marker        `json:"markers"`
}

// BusPanel is one row of the info/status panel next to the map.
type BusPanel struct {
	models.Bus
	StatusColor string `json:"status_color"`
}

// Update is the message pushed to a mounted dashboard.
type Update struct {
	View   string     `json:"view"`
	Map    Map        `json:"map"`
	Buses  []BusPanel `json:"buses"`
	SentAt time.Time  `json:"sent_at"`
}

// Builder turns bus snapshots into dashboard updates.
type Builder struct {
	Icon Icon
	Now  func() time.Time
}

// NewBuilder creates a builder with the given icon.
func NewBuilder(icon Icon) *Builder {
	return &Builder{Icon: icon, Now: time.Now}
}

// Parent builds the parent view: one marker, map follows the bus.
func (b *Builder) Parent(bus models.Bus) Update {
	return Update{
		View: ViewParent,
		Map: Map{
			Center:   bus.Location,
			Zoom:     ParentZoom,
			Recenter: true,
			Icon:     b.Icon,
			Markers: []Marker{{
				ID:        bus.ID,
				Position:  bus.Location,
				Popup:     []string{fmt.Sprintf("Bus #%d", bus.ID)},
				UpdatedAt: bus.LastUpdate,
			}},
		},
		Buses: []BusPanel{{
			Bus:         bus,
			StatusColor: IndicatorColor(bus.Status),
		}},
		SentAt: b.Now(),
	}
}

// Admin builds the admin view: fixed map, one marker per bus, list in the
// order the buses were given.
func (b *Builder) Admin(buses []models.Bus) Update {
	markers := make([]Marker, 0, len(buses))
	panels := make([]BusPanel, 0, len(buses))
	for _, bus := range buses {
		markers = append(markers, Marker{
			ID:       bus.ID,
			Position: bus.Location,
			Popup: []string{
				fmt.Sprintf("Bus #%d", bus.ID),
				"Driver: " + bus.Driver,
				"Status: " + string(bus.Status),
				"Route: " + bus.Route,
			},
			UpdatedAt: bus.LastUpdate,
		})
		panels = append(panels, BusPanel{
			Bus:         bus,
			StatusColor: StatusColor(bus.Status),
		})
	}

	return Update{
		View: ViewAdmin,
		Map: Map{
			Center:  AdminCenter,
			Zoom:    AdminZoom,
			Icon:    b.Icon,
			Markers: markers,
		},
		Buses:  panels,
		SentAt: b.Now(),
	}
}

// StatusColor is the dot colour used in the admin fleet list. Labels outside
// the known four are shown gray.
func StatusColor(status models.Status) string {
	if !models.IsValidStatus(status) {
		return "gray"
	}
	switch status {
	case models.StatusOnRoute:
		return "green"
	case models.StatusAtStop:
		return "yellow"
	case models.StatusDelayed:
		return "red"
	default:
		return "blue"
	}
}

// IndicatorColor is the pulsing dot on the parent dashboard.
func IndicatorColor(status models.Status) string {
	if status == models.StatusOnRoute {
		return "green"
	}
	return "yellow"
}

// FormatTime renders the server-side first paint of a panel time, in UTC.
// The page script replaces it with the browser's local time on load.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format(timeLayout)
}

// FormatLocation renders a coordinate pair to four decimals.
func FormatLocation(loc models.Location) string {
	return fmt.Sprintf("%.4f, %.4f", loc.Lat, loc.Lng)
}
