package core

// Physical constants in SI units.
const (
	SpeedOfLight          = 299792458.0
	GravitationalConstant = 6.67430e-11
)

// SchwarzschildRadius returns 2GM/c² for the given mass in kilograms.
func SchwarzschildRadius(mass float64) float64 {
	return 2.0 * GravitationalConstant * mass / (SpeedOfLight * SpeedOfLight)
}
