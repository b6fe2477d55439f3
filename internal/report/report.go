package report

import (
	"fmt"
	"io"
	"math"
	"regexp"
	"strings"

	"github.com/rtm0/calipso/internal/calipso"
)

// Footprint is the per-footprint view of a CALIPSO collection.
type Footprint struct {
	Timestamp int64 // Unix milliseconds
	Latitude  float32
	Longitude float32

	CloudySingleShots int8
	CloudTop          float32
	CloudTopPressure  float32
	CloudBase         float32
}

// Footprints extracts the footprints of a collection read by
// calipso.Reader.Read. The collection must hold the single shot aggregates.
func Footprints(c *calipso.Collection) ([]Footprint, error) {
	fields := []calipso.Field{
		calipso.Sec1970,
		calipso.Latitude,
		calipso.Longitude,
		calipso.NumberCloudySingleShots,
		calipso.AverageCloudTopSingleShots,
		calipso.AverageCloudTopPressureSingleShots,
		calipso.AverageCloudBaseSingleShots,
	}
	n := c.Len()
	cols := make([][]float64, len(fields))
	for i, f := range fields {
		a, err := c.Get(f)
		if err != nil {
			return nil, err
		}
		if a.Rank() != 1 || a.Len() != n {
			return nil, &calipso.ShapeError{Field: f, Shape: a.Shape(), Want: fmt.Sprintf("[%d]", n)}
		}
		cols[i] = a.Float64s()
	}
	fps := make([]Footprint, n)
	for i := range fps {
		fps[i] = Footprint{
			Timestamp:         int64(math.Round(cols[0][i] * 1000)),
			Latitude:          float32(cols[1][i]),
			Longitude:         float32(cols[2][i]),
			CloudySingleShots: int8(cols[3][i]),
			CloudTop:          float32(cols[4][i]),
			CloudTopPressure:  float32(cols[5][i]),
			CloudBase:         float32(cols[6][i]),
		}
	}
	return fps, nil
}

// Writer writes footprints as text lines in one of the supported formats.
type Writer struct {
	w           io.Writer
	measurement string
	fpToText    fpToTextFunc
}

const measurementRE = "^[a-zA-Z0-9_]+$"

// NewWriter creates a new footprint writer. The measurement name is only
// used by the influx format.
func NewWriter(w io.Writer, format, measurement string) (*Writer, error) {
	matches, err := regexp.MatchString(measurementRE, measurement)
	if err != nil {
		return nil, err
	}
	if !matches {
		return nil, fmt.Errorf("measurement %q does not match %q regular expression", measurement, measurementRE)
	}
	fpToText := fpToTextFuncs[format]
	if fpToText == nil {
		return nil, fmt.Errorf("format %q is not supported", format)
	}
	return &Writer{
		w:           w,
		measurement: measurement,
		fpToText:    fpToText,
	}, nil
}

// Write writes one line per footprint.
func (w *Writer) Write(fps []Footprint) error {
	_, err := io.Copy(w.w, fpsToText(fps, w.measurement, w.fpToText))
	return err
}

type fpToTextFunc func(*strings.Builder, *Footprint, string)

// fpsToText converts multiple footprints to text.
func fpsToText(fps []Footprint, measurement string, fpToText fpToTextFunc) io.Reader {
	var sb strings.Builder
	for _, fp := range fps {
		fpToText(&sb, &fp, measurement)
		sb.WriteString("\n")
	}
	return strings.NewReader(sb.String())
}

var fpToTextFuncs = map[string]fpToTextFunc{
	"influx": fpToInfluxDB,
	"csv":    fpToCSV,
}

var influxDBFmt = "%s,la=%.2f,lo=%.2f cloudy=%di,top=%g,top_pressure=%g,base=%g %d"

// fpToInfluxDB converts a footprint into InfluxDB line protocol and appends
// it to the string builder. The timestamp precision is milliseconds.
func fpToInfluxDB(sb *strings.Builder, fp *Footprint, measurement string) {
	sb.WriteString(fmt.Sprintf(influxDBFmt, []any{
		measurement,
		fp.Latitude,
		fp.Longitude,
		fp.CloudySingleShots,
		fp.CloudTop,
		fp.CloudTopPressure,
		fp.CloudBase,
		fp.Timestamp,
	}...))
}

var csvFmt = "%d,%.2f,%.2f,%d,%g,%g,%g"

// fpToCSV converts a footprint into a CSV record and appends it to the
// string builder.
func fpToCSV(sb *strings.Builder, fp *Footprint, _ string) {
	sb.WriteString(fmt.Sprintf(csvFmt, []any{
		fp.Timestamp,
		fp.Latitude,
		fp.Longitude,
		fp.CloudySingleShots,
		fp.CloudTop,
		fp.CloudTopPressure,
		fp.CloudBase,
	}...))
}
