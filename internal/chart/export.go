package chart

import (
	"encoding/json"
	"io"
	"time"

	"github.com/Astrarium/Astrarium-sub009/internal/astro"
)

// SceneExport is the JSON-serializable representation of a projected scene.
type SceneExport struct {
	Time       time.Time      `json:"time"`
	Projection string         `json:"projection"`
	Frame      string         `json:"frame"`
	View       ViewExport     `json:"view"`
	Observer   ObserverExport `json:"observer"`
	Objects    []ObjectExport `json:"objects"`
}

// ViewExport describes the view the objects were projected with.
type ViewExport struct {
	CenterAzimuth  float64 `json:"center_azimuth"`
	CenterAltitude float64 `json:"center_altitude"`
	FieldOfView    float64 `json:"fov"`
	Width          float64 `json:"width"`
	Height         float64 `json:"height"`
}

// ObserverExport is a JSON-friendly observer.
type ObserverExport struct {
	Name      string  `json:"name,omitempty"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// ObjectExport is one object on the chart with both coordinate systems and
// its pixel position.
type ObjectExport struct {
	Name      string  `json:"name"`
	Kind      string  `json:"kind"`
	Magnitude float64 `json:"magnitude"`
	RA        float64 `json:"ra"`
	Dec       float64 `json:"dec"`
	Azimuth   float64 `json:"azimuth"`
	Altitude  float64 `json:"altitude"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
}

// Export projects the visible catalog stars and the Sun.
func Export(s Scene, cat astro.StarCatalog) *SceneExport {
	export := &SceneExport{
		Time:       s.Time,
		Projection: s.Projection.Kind().String(),
		Frame:      s.Frame.String(),
		View: ViewExport{
			CenterAzimuth:  s.View.Center.Azimuth,
			CenterAltitude: s.View.Center.Altitude,
			FieldOfView:    s.View.FieldOfView,
			Width:          s.View.Width,
			Height:         s.View.Height,
		},
		Observer: ObserverExport{
			Name:      s.Observer.Name,
			Latitude:  s.Observer.LatDeg,
			Longitude: s.Observer.LonDeg,
		},
		Objects: []ObjectExport{},
	}

	markers := s.Stars(cat)
	if sun, ok := s.Sun(); ok {
		markers = append(markers, sun)
	}

	site := s.Site()
	for _, m := range markers {
		both := s.fromFrame(site, m.Sky)
		export.Objects = append(export.Objects, ObjectExport{
			Name:      m.Name,
			Kind:      m.Kind.String(),
			Magnitude: m.Mag,
			RA:        both.RAdeg,
			Dec:       both.DecDeg,
			Azimuth:   both.AzDeg,
			Altitude:  both.ElDeg,
			X:         m.Pos.X,
			Y:         m.Pos.Y,
		})
	}

	return export
}

// WriteJSON writes the export as indented JSON.
func (e *SceneExport) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(e)
}
