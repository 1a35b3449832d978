package domain

import (
	"math/rand"
	"time"
)

// DisplayNameMaxLength bounds member display names. Longer names are
// truncated, not rejected.
const DisplayNameMaxLength = 10

// MarkerPalette is the fixed set of marker colors members are assigned
// from. There is no per-trip uniqueness guarantee.
var MarkerPalette = []string{
	"#FF0000", "#00FF00", "#0000FF", "#FFFF00",
	"#FF00FF", "#00FFFF", "#FFA500", "#800080",
	"#FFC0CB", "#A52A2A", "#808080", "#000000",
}

type Member struct {
	ID          string     `db:"id" json:"id"`
	TripID      string     `db:"trip_id" json:"trip_id"`
	UserID      string     `db:"user_id" json:"user_id"`
	DisplayName string     `db:"display_name" json:"display_name"`
	MarkerColor string     `db:"marker_color" json:"marker_color"`
	Latitude    *float64   `db:"latitude" json:"latitude"`
	Longitude   *float64   `db:"longitude" json:"longitude"`
	LastUpdated *time.Time `db:"last_updated" json:"last_updated"`
	IsActive    bool       `db:"is_active" json:"is_active"`
}

func (m Member) HasLocation() bool {
	return m.Latitude != nil && m.Longitude != nil
}

func TruncateDisplayName(name string) string {
	runes := []rune(name)
	if len(runes) <= DisplayNameMaxLength {
		return name
	}
	return string(runes[:DisplayNameMaxLength])
}

func RandomMarkerColor() string {
	return MarkerPalette[rand.Intn(len(MarkerPalette))]
}
