package calipso

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

const (
	// Number of single shots in one 5 km footprint.
	shotsPerFootprint = 15
	// Number of layers stored per single shot.
	layersPerShot = 5
	// Mean reported for footprints without cloudy single shots.
	noCloudyShots = -9.0
)

// Datasets of the single shot group.
const (
	ssNumberLayersFound = "ssNumber_Layers_Found"
	ssLayerBaseAltitude = "ssLayer_Base_Altitude"
	ssLayerTopPressure  = "ssLayer_Top_Pressure"
	ssLayerTopAltitude  = "ssLayer_Top_Altitude"
)

// SingleShotGroup holds the raw single shot detection arrays of a 5 km file.
// They are only needed to derive the per-footprint aggregates.
type SingleShotGroup struct {
	NumberLayersFound *Array
	LayerBaseAltitude *Array
	LayerTopPressure  *Array
	LayerTopAltitude  *Array
}

// ReduceSingleShots derives per-footprint cloud statistics from the single
// shot arrays and stores them on c:
//
//   - number_cloudy_single_shots: shots with at least one layer (int8)
//   - single_shot_data: layer counts grouped by footprint (int8, [n,15])
//   - average_cloud_base_single_shots, average_cloud_top_pressure_single_shots,
//     average_cloud_top_single_shots: mean of the first layer over the cloudy
//     shots, or -9 when no shot is cloudy (float32)
//
// Only the first of the five layers stored per shot is used, and
// non-positive values count as zero.
func ReduceSingleShots(c *Collection, ss SingleShotGroup) (*Collection, error) {
	if ss.NumberLayersFound == nil {
		return nil, &MissingFieldError{Field: ssNumberLayersFound}
	}
	layers, err := ss.NumberLayersFound.Reshape(shotsPerFootprint)
	if err != nil {
		return nil, withField(err, ssNumberLayersFound)
	}
	n := layers.Len()
	cloudy := make([]float64, n)
	for i := range cloudy {
		clearShots := 0
		for _, v := range layers.values[i*shotsPerFootprint : (i+1)*shotsPerFootprint] {
			if v == 0 {
				clearShots++
			}
		}
		cloudy[i] = float64(shotsPerFootprint - clearShots)
	}
	c.Set(NumberCloudySingleShots, NewArray(Int8, []int{n}, cloudy))
	c.Set(SingleShotData, layers.apply(Int8, func(v float64) float64 { return float64(int8(v)) }))

	for _, m := range []struct {
		name  Field
		field Field
		a     *Array
	}{
		{ssLayerBaseAltitude, AverageCloudBaseSingleShots, ss.LayerBaseAltitude},
		{ssLayerTopPressure, AverageCloudTopPressureSingleShots, ss.LayerTopPressure},
		{ssLayerTopAltitude, AverageCloudTopSingleShots, ss.LayerTopAltitude},
	} {
		if m.a == nil {
			return nil, &MissingFieldError{Field: m.name}
		}
		mean, err := footprintMeans(m.a, cloudy)
		if err != nil {
			return nil, withField(err, m.name)
		}
		c.Set(m.field, mean)
	}
	return c, nil
}

// footprintMeans averages the first layer of every shot over the cloudy
// shots of each footprint.
func footprintMeans(a *Array, cloudy []float64) (*Array, error) {
	perShot, err := a.Reshape(layersPerShot)
	if err != nil {
		return nil, err
	}
	first, err := perShot.Column(0)
	if err != nil {
		return nil, err
	}
	shots, err := first.Reshape(shotsPerFootprint)
	if err != nil {
		return nil, err
	}
	if shots.Len() != len(cloudy) {
		return nil, &ShapeError{
			Shape: a.Shape(),
			Want:  fmt.Sprintf("%d footprints", len(cloudy)),
		}
	}

	means := make([]float64, len(cloudy))
	row := make([]float64, shotsPerFootprint)
	for i := range means {
		if cloudy[i] == 0 {
			means[i] = noCloudyShots
			continue
		}
		for j, v := range shots.values[i*shotsPerFootprint : (i+1)*shotsPerFootprint] {
			if v > 0 {
				row[j] = v
			} else {
				row[j] = 0
			}
		}
		means[i] = float64(float32(floats.Sum(row) / cloudy[i]))
	}
	return NewArray(Float32, []int{len(means)}, means), nil
}
