package geo_test

import (
	"math"
	"testing"

	"helphop/internal/geo"
)

var bengaluru = geo.Point{Lat: 12.9716, Lng: 77.5946}

func TestDistanceKm_SamePoint_Zero(t *testing.T) {
	t.Parallel()

	if d := geo.DistanceKm(bengaluru, bengaluru); d != 0 {
		t.Fatalf("expected 0 got %v", d)
	}
}

func TestDistanceKm_Symmetric(t *testing.T) {
	t.Parallel()

	a := geo.Point{Lat: 12.9716, Lng: 77.5946}
	b := geo.Point{Lat: 13.1986, Lng: 77.7066}

	ab := geo.DistanceKm(a, b)
	ba := geo.DistanceKm(b, a)

	if math.Abs(ab-ba) > 1e-9 {
		t.Fatalf("distance not symmetric: ab=%v ba=%v", ab, ba)
	}
	if ab <= 0 {
		t.Fatalf("expected positive distance got %v", ab)
	}
}

func TestDistanceKm_KnownValue(t *testing.T) {
	t.Parallel()

	// one degree of latitude is ~111.19 km on the 6371 km sphere
	a := geo.Point{Lat: 12.0, Lng: 77.5946}
	b := geo.Point{Lat: 13.0, Lng: 77.5946}

	got := geo.DistanceKm(a, b)
	want := 111.19

	if math.Abs(got-want) > 0.1 {
		t.Fatalf("expected ~%v got %v", want, got)
	}
}

func TestBearingDegrees_CardinalDirections(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		a, b geo.Point
		want float64
	}{
		{"due_north", geo.Point{Lat: 12, Lng: 77}, geo.Point{Lat: 13, Lng: 77}, 0},
		{"due_south", geo.Point{Lat: 13, Lng: 77}, geo.Point{Lat: 12, Lng: 77}, 180},
		{"due_east_on_equator", geo.Point{Lat: 0, Lng: 77}, geo.Point{Lat: 0, Lng: 78}, 90},
		{"due_west_on_equator", geo.Point{Lat: 0, Lng: 78}, geo.Point{Lat: 0, Lng: 77}, 270},
	}

	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			got := geo.BearingDegrees(c.a, c.b)
			if math.Abs(got-c.want) > 1e-6 {
				t.Fatalf("expected %v got %v", c.want, got)
			}
		})
	}
}

func TestBearingDegrees_SamePoint_Fallback(t *testing.T) {
	t.Parallel()

	if b := geo.BearingDegrees(bengaluru, bengaluru); b != 0 {
		t.Fatalf("expected deterministic 0 got %v", b)
	}
}

func TestBearingDegrees_Range(t *testing.T) {
	t.Parallel()

	points := []geo.Point{
		{Lat: -90, Lng: -180},
		{Lat: -45, Lng: 120},
		{Lat: 0, Lng: 0},
		{Lat: 51.5, Lng: -0.12},
		{Lat: 90, Lng: 180},
	}

	for _, a := range points {
		for _, b := range points {
			got := geo.BearingDegrees(a, b)
			if got < 0 || got >= 360 {
				t.Fatalf("bearing out of range for a=%+v b=%+v: %v", a, b, got)
			}
		}
	}
}

func TestDirectionLabel_Sectors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		bearing float64
		want    string
	}{
		{0, "N"},
		{22.4, "N"},
		{22.5, "NE"},
		{45, "NE"},
		{67.5, "E"},
		{90, "E"},
		{112.5, "SE"},
		{157.5, "S"},
		{180, "S"},
		{202.5, "SW"},
		{247.5, "W"},
		{270, "W"},
		{292.5, "NW"},
		{337.4, "NW"},
		{337.5, "N"},
		{359.99, "N"},
	}

	for _, c := range cases {
		if got := geo.DirectionLabel(c.bearing); got != c.want {
			t.Fatalf("bearing %v: expected %q got %q", c.bearing, c.want, got)
		}
	}
}

func TestDirectionLabel_TotalPartition(t *testing.T) {
	t.Parallel()

	valid := map[string]bool{
		"N": true, "NE": true, "E": true, "SE": true,
		"S": true, "SW": true, "W": true, "NW": true,
	}

	for b := 0.0; b < 360; b += 0.25 {
		label := geo.DirectionLabel(b)
		if !valid[label] {
			t.Fatalf("bearing %v: unexpected label %q", b, label)
		}
	}

	// normalization outside [0, 360)
	if got := geo.DirectionLabel(360); got != "N" {
		t.Fatalf("expected N for 360 got %q", got)
	}
	if got := geo.DirectionLabel(-45); got != "NW" {
		t.Fatalf("expected NW for -45 got %q", got)
	}
}
