package calipso

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"
)

// TZ=UTC date --date="1993-01-01 00:00:00" +%s
const unixSecs1993 = 725846400

const singleShotGroup = "Single_Shot_Detection"

// Groups and metadata that are not read.
var skippedGroups = map[string]bool{
	"Lidar_Surface_Detection": true,
	"metadata_t":              true,
	"metadata":                true,
}

// Large datasets that are not read until some consumer needs them.
var skippedDatasets = map[string]bool{
	"Spacecraft_Position": true,
	// Second dimension larger than 40.
	"Attenuated_Backscatter_Statistics_1064":      true,
	"Attenuated_Backscatter_Statistics_532":       true,
	"Attenuated_Total_Color_Ratio_Statistics":     true,
	"Volume_Depolarization_Ratio_Statistics":      true,
	"Particulate_Depolarization_Ratio_Statistics": true,
	"Cirrus_Shape_Parameter":                      true,
	"Cirrus_Shape_Parameter_Invalid_Points":       true,
	"Cirrus_Shape_Parameter_Uncertainty":          true,
}

var renamedDatasets = map[string]Field{
	// The V3 name is kept for the sea/ice information.
	"Snow_Ice_Surface_Type": NSIDCSurfaceType,
	// Profile time is TAI time.
	"Profile_Time": ProfileTimeTAI,
}

// canonicalName returns the field a dataset is stored under.
func canonicalName(dataset string) Field {
	if f, ok := renamedDatasets[dataset]; ok {
		return f
	}
	return Field(strings.ToLower(dataset))
}

type openFunc func(path string) (api.Group, error)

// Reader reads CALIPSO layer files in HDF5 format.
type Reader struct {
	logger *slog.Logger
	open   openFunc
}

// NewReader creates a new CALIPSO file reader.
func NewReader(logger *slog.Logger) *Reader {
	return &Reader{logger: logger, open: netcdf.Open}
}

// Read reads the file at path and derives the fields the matching pipeline
// expects: latitude, longitude and profile_time_tai are reduced to their
// center column and sec_1970 holds the profile time in Unix seconds.
//
// An empty path yields an empty collection. A file without latitude,
// longitude or profile time fails with a *MissingFieldError.
func (r *Reader) Read(path string) (*Collection, error) {
	if path == "" {
		return NewCollection(), nil
	}
	r.logger.Info("Reading file", "file", path)
	c, err := r.ReadFile(path, NewCollection())
	if err != nil {
		return nil, err
	}
	for _, f := range []Field{Latitude, Longitude, ProfileTimeTAI} {
		if err := c.SelectColumn(f, 1); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	tai, err := c.Get(ProfileTimeTAI)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	c.Set(Sec1970, tai.apply(Float64, func(v float64) float64 { return v + unixSecs1993 }))
	return c, nil
}

// ReadFiles reads the given files and concatenates them in order.
func (r *Reader) ReadFiles(paths ...string) (*Collection, error) {
	all := NewCollection()
	for _, path := range paths {
		c, err := r.Read(path)
		if err != nil {
			return nil, err
		}
		all = all.Concat(c)
	}
	return all, nil
}

// ReadFile reads every top-level dataset of the file at path into c, except
// the skipped ones, and returns c. If the file has a single shot group the
// per-footprint single shot aggregates are added too. An empty path returns
// c unchanged, and so does any failure: fields are only stored on c once
// the whole file has been read.
func (r *Reader) ReadFile(path string, c *Collection) (*Collection, error) {
	if path == "" {
		return c, nil
	}
	read := NewCollection()
	f, err := r.open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open %s: %w", path, err)
	}
	defer f.Close()

	groups := f.ListSubgroups()
	if slices.Contains(groups, singleShotGroup) {
		r.logger.Info("Reading single shot information")
		ss, err := readSingleShotGroup(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if _, err := ReduceSingleShots(read, ss); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	for _, name := range groups {
		if name == singleShotGroup {
			continue
		}
		r.logger.Info("Not reading", "name", name)
	}

	for _, name := range f.ListVariables() {
		if skippedGroups[name] || skippedDatasets[name] {
			r.logger.Info("Not reading", "name", name)
			continue
		}
		a, err := readDataset(f, name)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		read.Set(canonicalName(name), a)
	}
	for name, a := range read.arrays {
		c.Set(name, a)
	}
	return c, nil
}

func readSingleShotGroup(f api.Group) (SingleShotGroup, error) {
	var ss SingleShotGroup
	g, err := f.GetGroup(singleShotGroup)
	if err != nil {
		return ss, fmt.Errorf("could not open group %s: %w", singleShotGroup, err)
	}
	defer g.Close()
	for _, d := range []struct {
		name string
		dst  **Array
	}{
		{ssNumberLayersFound, &ss.NumberLayersFound},
		{ssLayerBaseAltitude, &ss.LayerBaseAltitude},
		{ssLayerTopPressure, &ss.LayerTopPressure},
		{ssLayerTopAltitude, &ss.LayerTopAltitude},
	} {
		*d.dst, err = readDataset(g, d.name)
		if err != nil {
			return ss, fmt.Errorf("%s/%w", singleShotGroup, err)
		}
	}
	return ss, nil
}

func readDataset(g api.Group, name string) (*Array, error) {
	vg, err := g.GetVarGetter(name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	v, err := vg.Values()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	a, err := FromValues(v)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, withField(err, canonicalName(name)))
	}
	return a, nil
}
