package geo

import (
	"errors"
	"math"
)

// ErrInsufficientSamples is returned when a strategy needs more location
// samples than were provided.
var ErrInsufficientSamples = errors.New("not enough location samples")

type Point struct {
	Latitude  float64
	Longitude float64
}

// Distance menghitung jarak antara dua titik koordinat dalam Meter.
func Distance(a, b Point) float64 {
	const earthRadius = 6371000 // Jari-jari bumi dalam Meter

	// Konversi ke Radian
	dLat := (b.Latitude - a.Latitude) * (math.Pi / 180.0)
	dLon := (b.Longitude - a.Longitude) * (math.Pi / 180.0)

	lat1Rad := a.Latitude * (math.Pi / 180.0)
	lat2Rad := b.Latitude * (math.Pi / 180.0)

	// Rumus Haversine
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLon/2)*math.Sin(dLon/2)*math.Cos(lat1Rad)*math.Cos(lat2Rad)

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadius * c
}

// MeanCenter returns the arithmetic mean of the sample coordinates. Good
// enough for classroom-scale clusters; no spherical averaging needed at
// these distances.
func MeanCenter(points []Point) (Point, error) {
	if len(points) == 0 {
		return Point{}, ErrInsufficientSamples
	}
	var lat, lon float64
	for _, p := range points {
		lat += p.Latitude
		lon += p.Longitude
	}
	n := float64(len(points))
	return Point{Latitude: lat / n, Longitude: lon / n}, nil
}

// PairwiseConsensus flags each sample by majority agreement: a sample is an
// outlier when fewer than minFraction of the other samples lie within
// threshold meters of it. With fewer than two samples no verdict is possible
// and ok is false.
func PairwiseConsensus(points []Point, threshold, minFraction float64) (outliers []bool, ok bool) {
	if len(points) < 2 {
		return nil, false
	}
	outliers = make([]bool, len(points))
	for i, p := range points {
		near := 0
		for j, q := range points {
			if i == j {
				continue
			}
			if Distance(p, q) <= threshold {
				near++
			}
		}
		frac := float64(near) / float64(len(points)-1)
		outliers[i] = frac < minFraction
	}
	return outliers, true
}

// DeviationResult holds the centroid analysis of one sample set.
type DeviationResult struct {
	Center       Point
	MeanDistance float64
	StdDev       float64
	Threshold    float64
	Distances    []float64
	Outliers     []bool
}

// CentroidDeviation computes each sample's distance from the mean center and
// flags samples beyond mean + sigmas * stddev (population stddev). Needs at
// least three samples.
func CentroidDeviation(points []Point, sigmas float64) (*DeviationResult, error) {
	if len(points) < 3 {
		return nil, ErrInsufficientSamples
	}

	center, err := MeanCenter(points)
	if err != nil {
		return nil, err
	}

	distances := make([]float64, len(points))
	var sum float64
	for i, p := range points {
		distances[i] = Distance(center, p)
		sum += distances[i]
	}
	mean := sum / float64(len(points))

	var variance float64
	for _, d := range distances {
		variance += (d - mean) * (d - mean)
	}
	variance /= float64(len(points))
	stddev := math.Sqrt(variance)

	threshold := mean + sigmas*stddev
	outliers := make([]bool, len(points))
	for i, d := range distances {
		outliers[i] = d > threshold
	}

	return &DeviationResult{
		Center:       center,
		MeanDistance: mean,
		StdDev:       stddev,
		Threshold:    threshold,
		Distances:    distances,
		Outliers:     outliers,
	}, nil
}
