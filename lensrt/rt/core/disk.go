package core

// Accretion disk geometry is fixed in units of the Schwarzschild radius.
const (
	DiskInnerRadiusFactor = 2.2
	DiskOuterRadiusFactor = 5.2
	DiskBandCount         = 2
)

// AccretionDisk is derived each frame from the black hole and the settings.
type AccretionDisk struct {
	InnerRadius float64
	OuterRadius float64
	BandCount   int
	Thickness   float64
	Density     float64
	Glow        float64
}

func NewAccretionDisk(hole *BlackHole, settings *SimulationSettings) AccretionDisk {
	rs := hole.SchwarzschildRadius()
	return AccretionDisk{
		InnerRadius: rs * DiskInnerRadiusFactor,
		OuterRadius: rs * DiskOuterRadiusFactor,
		BandCount:   DiskBandCount,
		Thickness:   rs * settings.DiskThickness(),
		Density:     settings.DiskDensity(),
		Glow:        settings.GlowIntensity(),
	}
}
