package shape

import (
	"math"
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl64"
)

// Sampler constants.
const (
	heartScale = 0.1

	flowerPetals  = 5
	flowerFlatten = 0.3

	saturnBodyRadius  = 1.5
	saturnBodyChance  = 0.4
	saturnRingInner   = 3.0
	saturnRingWidth   = 1.5
	saturnRingHeight  = 0.1
	saturnTiltX       = 0.4
	saturnTiltZ       = 0.4
	zenLoops          = 3
	zenKnotP          = 2.0
	zenKnotQ          = 3.0
	zenTube           = 0.6
	fireworksMaxRange = 4.0
)

// saturnTilt applies the XYZ Euler rotation (0.4, 0, 0.4): Z first, then X.
var saturnTilt = mgl64.QuatRotate(saturnTiltX, mgl64.Vec3{1, 0, 0}).
	Mul(mgl64.QuatRotate(saturnTiltZ, mgl64.Vec3{0, 0, 1}))

// Generate samples count points of the given shape and returns them as a flat
// slice of 3*count coordinates (x0, y0, z0, x1, ...). Every point is a single
// closed-form draw from rng. Unknown shapes are sampled as Heart.
func Generate(t Type, count int, rng *rand.Rand) []float64 {
	if count <= 0 {
		return []float64{}
	}

	sample := samplerFor(t)
	positions := make([]float64, count*3)
	for i := 0; i < count; i++ {
		p := sample(rng)
		positions[i*3] = p[0]
		positions[i*3+1] = p[1]
		positions[i*3+2] = p[2]
	}
	return positions
}

func samplerFor(t Type) func(*rand.Rand) mgl64.Vec3 {
	switch t {
	case Flower:
		return flowerPoint
	case Saturn:
		return saturnPoint
	case Zen:
		return zenPoint
	case Fireworks:
		return fireworksPoint
	default:
		return heartPoint
	}
}

func heartPoint(rng *rand.Rand) mgl64.Vec3 {
	t := rng.Float64() * 2 * math.Pi
	u := rng.Float64() * math.Pi

	sin := math.Sin(t)
	x := 16 * sin * sin * sin
	y := 13*math.Cos(t) - 5*math.Cos(2*t) - 2*math.Cos(3*t) - math.Cos(4*t)
	z := 4 * sin * math.Cos(u) * 2

	return mgl64.Vec3{x, y, z}.Mul(heartScale)
}

func flowerPoint(rng *rand.Rand) mgl64.Vec3 {
	theta := rng.Float64() * 2 * math.Pi
	phi := rng.Float64() * math.Pi
	r := 2 + math.Sin(flowerPetals*theta)

	return mgl64.Vec3{
		r * math.Sin(phi) * math.Cos(theta),
		r * math.Cos(phi) * flowerFlatten,
		r * math.Sin(phi) * math.Sin(theta),
	}
}

func saturnPoint(rng *rand.Rand) mgl64.Vec3 {
	var p mgl64.Vec3
	if rng.Float64() < saturnBodyChance {
		p = sphereDirection(rng).Mul(saturnBodyRadius)
	} else {
		angle := rng.Float64() * 2 * math.Pi
		dist := saturnRingInner + rng.Float64()*saturnRingWidth
		p = mgl64.Vec3{
			math.Cos(angle) * dist,
			(rng.Float64() - 0.5) * saturnRingHeight,
			math.Sin(angle) * dist,
		}
	}
	return saturnTilt.Rotate(p)
}

func zenPoint(rng *rand.Rand) mgl64.Vec3 {
	u := rng.Float64() * 2 * math.Pi * zenLoops
	r := 2 + math.Cos(zenKnotQ*u/zenKnotP)

	return mgl64.Vec3{
		r*math.Cos(u) + (rng.Float64()-0.5)*zenTube,
		r*math.Sin(u) + (rng.Float64()-0.5)*zenTube,
		math.Sin(zenKnotQ*u/zenKnotP) + (rng.Float64()-0.5)*zenTube,
	}
}

// fireworksPoint scales the radius linearly rather than by a cube root, so the
// ball is denser toward its center.
func fireworksPoint(rng *rand.Rand) mgl64.Vec3 {
	dir := sphereDirection(rng)
	return dir.Mul(rng.Float64() * fireworksMaxRange)
}

// sphereDirection returns a unit vector uniformly distributed on the sphere.
func sphereDirection(rng *rand.Rand) mgl64.Vec3 {
	theta := 2 * math.Pi * rng.Float64()
	phi := math.Acos(2*rng.Float64() - 1)
	return mgl64.Vec3{
		math.Sin(phi) * math.Cos(theta),
		math.Sin(phi) * math.Sin(theta),
		math.Cos(phi),
	}
}
