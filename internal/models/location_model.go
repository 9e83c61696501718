package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Location is the canonical geographic point of a complaint.
//
// Older clients post GeoJSON points ({"type":"Point","coordinates":[lng,lat]});
// UnmarshalJSON converts those so storage and responses only ever carry lat/lng.
type Location struct {
	Lat float64 `json:"lat" firestore:"lat" bson:"lat"`
	Lng float64 `json:"lng" firestore:"lng" bson:"lng"`
}

var ErrInvalidLocation = errors.New("location must contain lat and lng")

func (l *Location) UnmarshalJSON(data []byte) error {
	var raw struct {
		Lat         *float64  `json:"lat"`
		Lng         *float64  `json:"lng"`
		Type        string    `json:"type"`
		Coordinates []float64 `json:"coordinates"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	switch {
	case strings.EqualFold(raw.Type, "Point"):
		if len(raw.Coordinates) != 2 {
			return fmt.Errorf("%w: GeoJSON point needs [lng, lat]", ErrInvalidLocation)
		}
		l.Lng, l.Lat = raw.Coordinates[0], raw.Coordinates[1]
	case raw.Lat != nil && raw.Lng != nil:
		l.Lat, l.Lng = *raw.Lat, *raw.Lng
	default:
		return ErrInvalidLocation
	}
	return l.Validate()
}

// Validate checks the coordinate ranges.
func (l Location) Validate() error {
	if l.Lat < -90 || l.Lat > 90 {
		return fmt.Errorf("%w: lat %v out of range", ErrInvalidLocation, l.Lat)
	}
	if l.Lng < -180 || l.Lng > 180 {
		return fmt.Errorf("%w: lng %v out of range", ErrInvalidLocation, l.Lng)
	}
	return nil
}

// BoundingBox is a map viewport.
type BoundingBox struct {
	South float64 `json:"south"`
	West  float64 `json:"west"`
	North float64 `json:"north"`
	East  float64 `json:"east"`
}

// ParseBoundingBox reads "south,west,north,east".
func ParseBoundingBox(s string) (BoundingBox, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return BoundingBox{}, fmt.Errorf("bounding box %q must be south,west,north,east", s)
	}
	var vals [4]float64
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return BoundingBox{}, fmt.Errorf("bounding box %q: %w", s, err)
		}
		vals[i] = v
	}
	box := BoundingBox{South: vals[0], West: vals[1], North: vals[2], East: vals[3]}
	if box.South > box.North || box.West > box.East {
		return BoundingBox{}, fmt.Errorf("bounding box %q has inverted edges", s)
	}
	return box, nil
}

// Contains reports whether l lies inside the box, edges included.
func (b BoundingBox) Contains(l Location) bool {
	return l.Lat >= b.South && l.Lat <= b.North && l.Lng >= b.West && l.Lng <= b.East
}
