package projection

import (
	"errors"
	"math"
	"testing"
)

func TestViewStateValidate(t *testing.T) {
	tests := []struct {
		name    string
		view    ViewState
		wantErr error
	}{
		{"valid", ViewState{FieldOfView: 90, Width: 800, Height: 600}, nil},
		{"full circle", ViewState{FieldOfView: 360, Width: 1, Height: 1}, nil},
		{"zero fov", ViewState{FieldOfView: 0, Width: 800, Height: 600}, ErrInvalidFieldOfView},
		{"negative fov", ViewState{FieldOfView: -10, Width: 800, Height: 600}, ErrInvalidFieldOfView},
		{"fov too wide", ViewState{FieldOfView: 361, Width: 800, Height: 600}, ErrInvalidFieldOfView},
		{"NaN fov", ViewState{FieldOfView: math.NaN(), Width: 800, Height: 600}, ErrInvalidFieldOfView},
		{"zero width", ViewState{FieldOfView: 90, Width: 0, Height: 600}, ErrInvalidViewport},
		{"negative height", ViewState{FieldOfView: 90, Width: 800, Height: -1}, ErrInvalidViewport},
		{"infinite width", ViewState{FieldOfView: 90, Width: math.Inf(1), Height: 600}, ErrInvalidViewport},
		{"NaN altitude", ViewState{Center: SphericalPoint{0, math.NaN()}, FieldOfView: 90, Width: 800, Height: 600}, ErrInvalidCenter},
		{"infinite azimuth", ViewState{Center: SphericalPoint{math.Inf(-1), 0}, FieldOfView: 90, Width: 800, Height: 600}, ErrInvalidCenter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.view.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNormalizeAzimuth(t *testing.T) {
	tests := []struct {
		input    float64
		expected float64
	}{
		{0, 0},
		{359, 359},
		{360, 0},
		{-1, 359},
		{-360, 0},
		{725, 5},
		{-725, 355},
		{-1e-15, 0},
	}

	for _, tt := range tests {
		got := NormalizeAzimuth(tt.input)
		if math.Abs(got-tt.expected) > 1e-9 {
			t.Errorf("NormalizeAzimuth(%v) = %v, want %v", tt.input, got, tt.expected)
		}
		if got < 0 || got >= 360 {
			t.Errorf("NormalizeAzimuth(%v) = %v, out of [0,360)", tt.input, got)
		}
	}
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		input   string
		want    Kind
		wantErr bool
	}{
		{"sin", KindSin, false},
		{"", KindSin, false},
		{"Orthographic", KindSin, false},
		{"mercator", KindMercator, false},
		{" web-mercator ", KindMercator, false},
		{"plate-carree", KindPlateCarree, false},
		{"wgs84", KindPlateCarree, false},
		{"stereographic", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseKind(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseKind(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseKind(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestKindRoundTripsThroughString(t *testing.T) {
	for _, k := range Kinds {
		got, err := ParseKind(k.String())
		if err != nil || got != k {
			t.Errorf("ParseKind(%q) = %v, %v; want %v", k.String(), got, err, k)
		}

		proj, err := New(k)
		if err != nil {
			t.Fatalf("New(%v) error = %v", k, err)
		}
		if proj.Kind() != k {
			t.Errorf("New(%v).Kind() = %v", k, proj.Kind())
		}
	}

	if _, err := New(Kind(42)); err == nil {
		t.Error("New(42) should fail")
	}
}

func TestKindNext(t *testing.T) {
	if KindSin.Next() != KindMercator || KindMercator.Next() != KindPlateCarree || KindPlateCarree.Next() != KindSin {
		t.Error("Next() should cycle sin -> mercator -> plate-carree -> sin")
	}
}

func TestSeparation(t *testing.T) {
	tests := []struct {
		name string
		a, b SphericalPoint
		want float64
	}{
		{"same point", SphericalPoint{10, 20}, SphericalPoint{10, 20}, 0},
		{"along horizon", SphericalPoint{0, 0}, SphericalPoint{90, 0}, 90},
		{"across north", SphericalPoint{0, 80}, SphericalPoint{180, 80}, 20},
		{"zenith to horizon", SphericalPoint{123, 90}, SphericalPoint{45, 0}, 90},
		{"antipodes", SphericalPoint{0, 0}, SphericalPoint{180, 0}, 180},
		{"wraps", SphericalPoint{359, 0}, SphericalPoint{1, 0}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Separation(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Separation() = %v, want %v", got, tt.want)
			}
		})
	}
}
