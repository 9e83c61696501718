package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocationUnmarshal(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Location
		wantErr bool
	}{
		{name: "flat", input: `{"lat":17.385,"lng":78.4867}`, want: Location{Lat: 17.385, Lng: 78.4867}},
		{name: "geojson point", input: `{"type":"Point","coordinates":[78.4867,17.385]}`, want: Location{Lat: 17.385, Lng: 78.4867}},
		{name: "zero is a valid point", input: `{"lat":0,"lng":0}`, want: Location{}},
		{name: "missing lng", input: `{"lat":17.3}`, wantErr: true},
		{name: "short coordinates", input: `{"type":"Point","coordinates":[78.4]}`, wantErr: true},
		{name: "lat out of range", input: `{"lat":91,"lng":0}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Location
			err := json.Unmarshal([]byte(tt.input), &got)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidLocation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLocationMarshalsFlat(t *testing.T) {
	out, err := json.Marshal(Location{Lat: 1.5, Lng: 2.5})
	require.NoError(t, err)
	assert.JSONEq(t, `{"lat":1.5,"lng":2.5}`, string(out))
}

func TestBoundingBox(t *testing.T) {
	box, err := ParseBoundingBox("17.2, 78.3, 17.6, 78.6")
	require.NoError(t, err)

	assert.True(t, box.Contains(Location{Lat: 17.385, Lng: 78.4867}))
	assert.True(t, box.Contains(Location{Lat: 17.2, Lng: 78.3}), "edges are inside")
	assert.False(t, box.Contains(Location{Lat: 18, Lng: 78.4}))
	assert.False(t, box.Contains(Location{Lat: 17.4, Lng: 79}))

	_, err = ParseBoundingBox("1,2,3")
	assert.Error(t, err)
	_, err = ParseBoundingBox("17.6,78.3,17.2,78.6")
	assert.Error(t, err)
	_, err = ParseBoundingBox("a,b,c,d")
	assert.Error(t, err)
}

func TestParseEnums(t *testing.T) {
	c, ok := ParseCategory("Water Leak")
	assert.True(t, ok)
	assert.Equal(t, CategoryWaterLeak, c)

	c, ok = ParseCategory("street-light")
	assert.True(t, ok)
	assert.Equal(t, CategoryStreetLight, c)

	_, ok = ParseCategory("volcano")
	assert.False(t, ok)

	p, ok := ParsePriority(" HIGH ")
	assert.True(t, ok)
	assert.Equal(t, PriorityHigh, p)

	s, ok := ParseStatus("in_progress")
	assert.True(t, ok)
	assert.Equal(t, StatusInProgress, s)

	_, ok = ParseStatus("closed")
	assert.False(t, ok)
}

func TestStatusCanAdvanceTo(t *testing.T) {
	assert.True(t, StatusPending.CanAdvanceTo(StatusPending))
	assert.True(t, StatusPending.CanAdvanceTo(StatusInProgress))
	assert.True(t, StatusInProgress.CanAdvanceTo(StatusResolved))
	assert.False(t, StatusPending.CanAdvanceTo(StatusResolved))
	assert.False(t, StatusResolved.CanAdvanceTo(StatusPending))
	assert.False(t, Status("bogus").CanAdvanceTo(StatusPending))
}

func TestComplaintPatchApply(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := &Complaint{Title: "old", Status: StatusPending, Images: []string{"a"}, CreatedAt: created, UpdatedAt: created}

	status := StatusResolved
	images := []string{"b", "c"}
	later := created.Add(time.Hour)
	ComplaintPatch{Status: &status, Images: &images, UpdatedAt: later}.Apply(c)

	assert.Equal(t, "old", c.Title)
	assert.Equal(t, StatusResolved, c.Status)
	assert.Equal(t, []string{"b", "c"}, c.Images)
	assert.Equal(t, later, c.UpdatedAt)
	assert.Equal(t, created, c.CreatedAt)

	images[0] = "mutated"
	assert.Equal(t, "b", c.Images[0], "patch slices are copied")
}

func TestComplaintWithUserJSON(t *testing.T) {
	row := ComplaintWithUser{
		Complaint: &Complaint{ID: "c1", Title: "Pothole", Status: StatusPending},
		User:      &UserSummary{Name: "Asha"},
	}
	out, err := json.Marshal(row)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, "c1", decoded["id"])
	assert.Equal(t, map[string]interface{}{"name": "Asha"}, decoded["user"])
}

func TestComplaintStatsAdd(t *testing.T) {
	var s ComplaintStats
	s.Add(StatusPending, PriorityCritical)
	s.Add(StatusInProgress, PriorityLow)
	s.Add(StatusResolved, PriorityCritical)

	assert.Equal(t, ComplaintStats{Total: 3, Pending: 1, InProgress: 1, Resolved: 1, Critical: 2}, s)
}
