package geo

import (
	"math"
	"testing"
)

func TestDistance(t *testing.T) {
	bangkok := Point{Latitude: 13.7563, Longitude: 100.5018}

	if d := Distance(bangkok, bangkok); d != 0 {
		t.Errorf("distance to self = %f, want 0", d)
	}

	chiangmai := Point{Latitude: 18.7883, Longitude: 98.9853}
	d1 := Distance(bangkok, chiangmai)
	d2 := Distance(chiangmai, bangkok)
	if d1 != d2 {
		t.Errorf("distance not symmetric: %f vs %f", d1, d2)
	}

	// Bangkok to Chiang Mai is roughly 580 km great-circle.
	if d1 < 550000 || d1 > 610000 {
		t.Errorf("Bangkok-Chiang Mai distance = %f m, want ~580 km", d1)
	}

	// One degree of latitude is ~111 km.
	north := Point{Latitude: bangkok.Latitude + 1, Longitude: bangkok.Longitude}
	d := Distance(bangkok, north)
	if math.Abs(d-111000) > 1500 {
		t.Errorf("one degree latitude = %f m, want ~111 km", d)
	}
}

// Five samples in a classroom-sized cluster plus one across town.
func classroomSamples() []Point {
	base := Point{Latitude: 13.75630, Longitude: 100.50180}
	return []Point{
		base,
		{Latitude: base.Latitude + 0.00010, Longitude: base.Longitude},           // ~11 m
		{Latitude: base.Latitude, Longitude: base.Longitude + 0.00015},           // ~16 m
		{Latitude: base.Latitude - 0.00008, Longitude: base.Longitude - 0.0001},  // ~14 m
		{Latitude: base.Latitude - 0.00005, Longitude: base.Longitude + 0.00005}, // ~8 m
		{Latitude: base.Latitude + 0.05, Longitude: base.Longitude + 0.05},       // ~7.7 km
	}
}

func TestPairwiseConsensus(t *testing.T) {
	points := classroomSamples()

	outliers, ok := PairwiseConsensus(points, 50, 0.5)
	if !ok {
		t.Fatal("PairwiseConsensus declined with 6 samples")
	}
	for i := 0; i < 5; i++ {
		if outliers[i] {
			t.Errorf("clustered sample %d flagged as outlier", i)
		}
	}
	if !outliers[5] {
		t.Error("distant sample not flagged as outlier")
	}

	if _, ok := PairwiseConsensus(points[:1], 50, 0.5); ok {
		t.Error("PairwiseConsensus with one sample should decline")
	}
}

func TestCentroidDeviation(t *testing.T) {
	points := classroomSamples()

	res, err := CentroidDeviation(points, 2)
	if err != nil {
		t.Fatalf("CentroidDeviation: %v", err)
	}
	if len(res.Outliers) != len(points) || len(res.Distances) != len(points) {
		t.Fatalf("result length mismatch: %d outliers, %d distances", len(res.Outliers), len(res.Distances))
	}
	for i := 0; i < 5; i++ {
		if res.Outliers[i] {
			t.Errorf("clustered sample %d flagged as outlier", i)
		}
	}
	if !res.Outliers[5] {
		t.Error("distant sample not flagged as outlier")
	}
	if res.Threshold <= res.MeanDistance {
		t.Errorf("threshold %f not above mean %f", res.Threshold, res.MeanDistance)
	}

	if _, err := CentroidDeviation(points[:2], 2); err != ErrInsufficientSamples {
		t.Errorf("CentroidDeviation with 2 samples = %v, want ErrInsufficientSamples", err)
	}
}

func TestCentroidDeviationUniformCluster(t *testing.T) {
	// All samples in a tight cluster: nothing should be flagged.
	points := classroomSamples()[:5]
	res, err := CentroidDeviation(points, 2)
	if err != nil {
		t.Fatalf("CentroidDeviation: %v", err)
	}
	for i, o := range res.Outliers {
		if o {
			t.Errorf("sample %d flagged in uniform cluster", i)
		}
	}
}

func TestMeanCenter(t *testing.T) {
	points := []Point{
		{Latitude: 10, Longitude: 20},
		{Latitude: 12, Longitude: 22},
	}
	center, err := MeanCenter(points)
	if err != nil {
		t.Fatalf("MeanCenter: %v", err)
	}
	if center.Latitude != 11 || center.Longitude != 21 {
		t.Errorf("MeanCenter = %+v, want {11 21}", center)
	}

	if _, err := MeanCenter(nil); err != ErrInsufficientSamples {
		t.Errorf("MeanCenter(nil) = %v, want ErrInsufficientSamples", err)
	}
}
