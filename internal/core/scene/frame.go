package scene

import "github.com/samirrijal/flightglobe/internal/core/domain"

// Settings are the static parts of every frame.
type Settings struct {
	Globe    domain.Globe
	Lighting domain.Lighting
	Controls domain.OrbitControls
	Stars    domain.StarField
}

// DefaultSettings is the standard globe look: a 64x64 sphere,
// warm point light, gentle orbit controls and a faded star field.
func DefaultSettings(baseRadius float64) Settings {
	return Settings{
		Globe: domain.Globe{
			Radius:         baseRadius,
			WidthSegments:  64,
			HeightSegments: 64,
			BumpScale:      0.05,
		},
		Lighting: domain.Lighting{
			AmbientIntensity: 1.2,
			Point: domain.PointLight{
				Color:     "#f6f3ea",
				Position:  [3]float64{2, 0, 5},
				Intensity: 1.5,
			},
		},
		Controls: domain.OrbitControls{
			EnableZoom:   true,
			EnablePan:    true,
			EnableRotate: true,
			ZoomSpeed:    0.6,
			PanSpeed:     0.5,
			RotateSpeed:  0.4,
		},
		Stars: domain.StarField{
			Radius: 100,
			Depth:  50,
			Count:  5000,
			Factor: 4,
		},
	}
}
