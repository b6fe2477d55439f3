package calipso

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"testing"
	"time"

	"github.com/batchatco/go-native-netcdf/netcdf/api"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGroup is an in-memory api.Group. Only the methods used by Reader are
// implemented.
type fakeGroup struct {
	api.Group
	vars      map[string]any
	varOrder  []string
	groups    map[string]*fakeGroup
	failOn    string
	closeCnt  *int
	groupErrs map[string]error
}

func newFakeGroup(closeCnt *int) *fakeGroup {
	return &fakeGroup{
		vars:      make(map[string]any),
		groups:    make(map[string]*fakeGroup),
		groupErrs: make(map[string]error),
		closeCnt:  closeCnt,
	}
}

func (g *fakeGroup) add(name string, v any) *fakeGroup {
	g.vars[name] = v
	g.varOrder = append(g.varOrder, name)
	return g
}

func (g *fakeGroup) Close() { *g.closeCnt++ }

func (g *fakeGroup) ListVariables() []string { return g.varOrder }

func (g *fakeGroup) ListSubgroups() []string {
	var names []string
	for name := range g.groups {
		names = append(names, name)
	}
	return names
}

func (g *fakeGroup) GetGroup(name string) (api.Group, error) {
	if err := g.groupErrs[name]; err != nil {
		return nil, err
	}
	sub, ok := g.groups[name]
	if !ok {
		return nil, errors.New("not found")
	}
	return sub, nil
}

func (g *fakeGroup) GetVarGetter(name string) (api.VarGetter, error) {
	v, ok := g.vars[name]
	if !ok {
		return nil, errors.New("not found")
	}
	var err error
	if name == g.failOn {
		err = errors.New("corrupt chunk")
	}
	return &fakeVar{v: v, err: err}, nil
}

type fakeVar struct {
	api.VarGetter
	v   any
	err error
}

func (v *fakeVar) Values() (any, error) {
	if v.err != nil {
		return nil, v.err
	}
	return v.v, nil
}

// columns returns n rows of three columns where column j of row i is
// base+10*i+j.
func columns[T float32 | float64](n int, base T) [][]T {
	rows := make([][]T, n)
	for i := range rows {
		rows[i] = []T{base + T(10*i), base + T(10*i+1), base + T(10*i+2)}
	}
	return rows
}

// newFakeFile returns a 5 km layer file with n footprints, all of them with
// 15 cloudy single shots at 2 km.
func newFakeFile(n int, closeCnt *int) *fakeGroup {
	f := newFakeGroup(closeCnt)
	f.add("Profile_ID", make([][]int32, n))
	for i := 0; i < n; i++ {
		f.vars["Profile_ID"].([][]int32)[i] = []int32{int32(i), int32(i) + 1, int32(i) + 2}
	}
	f.add("Latitude", columns[float32](n, 0))
	f.add("Longitude", columns[float32](n, 100))
	f.add("Profile_Time", columns[float64](n, 8e8))
	f.add("Snow_Ice_Surface_Type", make([][]uint8, n))
	f.add("Layer_Top_Altitude", make([][]float32, n))
	for i := 0; i < n; i++ {
		f.vars["Snow_Ice_Surface_Type"].([][]uint8)[i] = []uint8{uint8(i)}
		f.vars["Layer_Top_Altitude"].([][]float32)[i] = make([]float32, 10)
	}
	f.add("Spacecraft_Position", columns[float64](n, 0))
	f.add("Cirrus_Shape_Parameter", columns[float32](n, 0))
	f.add("metadata", []string{"not numeric"})

	shots := n * shotsPerFootprint
	ss := newFakeGroup(closeCnt)
	layers := make([][]int8, shots)
	base := make([][]float32, shots)
	for i := 0; i < shots; i++ {
		layers[i] = []int8{1}
		base[i] = []float32{2, -9999, -9999, -9999, -9999}
	}
	ss.add(ssNumberLayersFound, layers)
	ss.add(ssLayerBaseAltitude, base)
	ss.add(ssLayerTopPressure, base)
	ss.add(ssLayerTopAltitude, base)
	f.groups[singleShotGroup] = ss
	f.groups["Lidar_Surface_Detection"] = newFakeGroup(closeCnt)
	return f
}

func newTestReader(logOut io.Writer, files map[string]*fakeGroup) *Reader {
	return &Reader{
		logger: slog.New(slog.NewTextHandler(logOut, nil)),
		open: func(path string) (api.Group, error) {
			f, ok := files[path]
			if !ok {
				return nil, &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
			}
			return f, nil
		},
	}
}

func TestEpochOffset(t *testing.T) {
	assert.EqualValues(t, 725846400, unixSecs1993)

	loc, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		loc = time.FixedZone("UTC+9", 9*3600)
	}
	epoch1993 := time.Date(1993, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.EqualValues(t, epoch1993.Unix(), unixSecs1993)
	assert.EqualValues(t, epoch1993.In(loc).Unix(), unixSecs1993)
}

func TestCanonicalName(t *testing.T) {
	assert.Equal(t, NSIDCSurfaceType, canonicalName("Snow_Ice_Surface_Type"))
	assert.Equal(t, ProfileTimeTAI, canonicalName("Profile_Time"))
	assert.Equal(t, LayerTopAltitude, canonicalName("Layer_Top_Altitude"))
	assert.Equal(t, Field("column_optical_depth_cloud_532"), canonicalName("Column_Optical_Depth_Cloud_532"))
}

func TestReadFile(t *testing.T) {
	var closeCnt int
	var logs bytes.Buffer
	r := newTestReader(&logs, map[string]*fakeGroup{"a.h5": newFakeFile(2, &closeCnt)})

	c, err := r.ReadFile("a.h5", NewCollection())
	require.NoError(t, err)
	assert.Equal(t, 2, closeCnt, "file and single shot group are closed")

	for _, f := range []Field{
		ProfileID, Latitude, Longitude, ProfileTimeTAI, NSIDCSurfaceType, LayerTopAltitude,
		NumberCloudySingleShots, SingleShotData,
		AverageCloudBaseSingleShots, AverageCloudTopPressureSingleShots, AverageCloudTopSingleShots,
	} {
		assert.True(t, c.Has(f), "%s is read", f)
	}
	for _, f := range []Field{
		SnowIceSurfaceType, "profile_time", "spacecraft_position", "cirrus_shape_parameter",
		"metadata", "single_shot_detection", "lidar_surface_detection",
	} {
		assert.False(t, c.Has(f), "%s is not read", f)
	}

	lat, err := c.Get(Latitude)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, lat.Shape(), "ReadFile does not post-process")
	surface, err := c.Get(NSIDCSurfaceType)
	require.NoError(t, err)
	assert.Equal(t, Uint8, surface.DType())

	for _, name := range []string{"Spacecraft_Position", "Cirrus_Shape_Parameter", "metadata", "Lidar_Surface_Detection"} {
		assert.Contains(t, logs.String(), "msg=\"Not reading\" name="+name)
	}
	assert.NotContains(t, logs.String(), "name="+singleShotGroup)
}

func TestReadFileEmptyPath(t *testing.T) {
	r := newTestReader(io.Discard, nil)
	r.open = func(string) (api.Group, error) {
		t.Fatal("no file must be opened")
		return nil, nil
	}
	c := NewCollection()
	c.Set(Latitude, vec(1))
	got, err := r.ReadFile("", c)
	require.NoError(t, err)
	assert.Same(t, c, got)
	assert.Equal(t, []Field{Latitude}, got.Names())
}

func TestReadFileWithoutSingleShots(t *testing.T) {
	var closeCnt int
	f := newFakeFile(1, &closeCnt)
	delete(f.groups, singleShotGroup)
	r := newTestReader(io.Discard, map[string]*fakeGroup{"a.h5": f})

	c, err := r.ReadFile("a.h5", NewCollection())
	require.NoError(t, err)
	assert.False(t, c.Has(NumberCloudySingleShots))
	assert.True(t, c.Has(Latitude))
	assert.Equal(t, 1, closeCnt)
}

func TestReadFileErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		r := newTestReader(io.Discard, nil)
		_, err := r.ReadFile("missing.h5", NewCollection())
		assert.ErrorIs(t, err, fs.ErrNotExist)
	})

	t.Run("dataset read failure", func(t *testing.T) {
		var closeCnt int
		f := newFakeFile(1, &closeCnt)
		f.failOn = "Longitude"
		r := newTestReader(io.Discard, map[string]*fakeGroup{"a.h5": f})
		_, err := r.ReadFile("a.h5", NewCollection())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Longitude")
		assert.Equal(t, 2, closeCnt, "handles are released on failure")
	})

	t.Run("single shot read failure", func(t *testing.T) {
		var closeCnt int
		f := newFakeFile(1, &closeCnt)
		f.groups[singleShotGroup].failOn = ssLayerTopAltitude
		r := newTestReader(io.Discard, map[string]*fakeGroup{"a.h5": f})
		_, err := r.ReadFile("a.h5", NewCollection())
		require.Error(t, err)
		assert.Contains(t, err.Error(), ssLayerTopAltitude)
		assert.Equal(t, 2, closeCnt)
	})

	t.Run("single shot group not readable", func(t *testing.T) {
		var closeCnt int
		f := newFakeFile(1, &closeCnt)
		groupErr := errors.New("bad link")
		f.groupErrs[singleShotGroup] = groupErr
		r := newTestReader(io.Discard, map[string]*fakeGroup{"a.h5": f})
		_, err := r.ReadFile("a.h5", NewCollection())
		assert.ErrorIs(t, err, groupErr)
		assert.Equal(t, 1, closeCnt)
	})

	t.Run("failed read leaves collection unchanged", func(t *testing.T) {
		var closeCnt int
		f := newFakeFile(1, &closeCnt)
		f.failOn = "Longitude"
		r := newTestReader(io.Discard, map[string]*fakeGroup{"a.h5": f})
		c := NewCollection()
		c.Set(Sec1970, vec(1))
		got, err := r.ReadFile("a.h5", c)
		require.Error(t, err)
		assert.Nil(t, got)
		assert.Equal(t, []Field{Sec1970}, c.Names())
	})

	t.Run("non-numeric dataset", func(t *testing.T) {
		var closeCnt int
		f := newFakeFile(1, &closeCnt)
		f.add("Product_Version", []string{"4.20"})
		r := newTestReader(io.Discard, map[string]*fakeGroup{"a.h5": f})
		_, err := r.ReadFile("a.h5", NewCollection())
		assert.ErrorIs(t, err, ErrUnsupportedType)
	})
}

func TestRead(t *testing.T) {
	var closeCnt int
	r := newTestReader(io.Discard, map[string]*fakeGroup{"a.h5": newFakeFile(3, &closeCnt)})

	c, err := r.Read("a.h5")
	require.NoError(t, err)
	assert.Equal(t, 3, c.Len())

	lat, err := c.Get(Latitude)
	require.NoError(t, err)
	assert.True(t, lat.Equal(NewArray(Float32, []int{3}, []float64{1, 11, 21})), lat)

	lon, err := c.Get(Longitude)
	require.NoError(t, err)
	assert.Equal(t, []float64{101, 111, 121}, lon.Float64s())

	tai, err := c.Get(ProfileTimeTAI)
	require.NoError(t, err)
	assert.Equal(t, []float64{8e8 + 1, 8e8 + 11, 8e8 + 21}, tai.Float64s())

	sec, err := c.Get(Sec1970)
	require.NoError(t, err)
	assert.Equal(t, Float64, sec.DType())
	want := []float64{8e8 + 1 + 725846400, 8e8 + 11 + 725846400, 8e8 + 21 + 725846400}
	if diff := cmp.Diff(want, sec.Float64s()); diff != "" {
		t.Errorf("sec_1970 mismatch (-want +got):\n%s", diff)
	}

	cloudy, err := c.Get(NumberCloudySingleShots)
	require.NoError(t, err)
	assert.Equal(t, []int8{15, 15, 15}, cloudy.Int8s())
	base, err := c.Get(AverageCloudBaseSingleShots)
	require.NoError(t, err)
	assert.Equal(t, []float32{2, 2, 2}, base.Float32s())
}

func TestReadEmptyPath(t *testing.T) {
	r := newTestReader(io.Discard, nil)
	c, err := r.Read("")
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())
}

func TestReadShapeErrors(t *testing.T) {
	var closeCnt int
	f := newFakeFile(2, &closeCnt)
	f.vars["Longitude"] = [][]float32{{1}, {2}}
	r := newTestReader(io.Discard, map[string]*fakeGroup{"a.h5": f})

	_, err := r.Read("a.h5")
	var se *ShapeError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, Longitude, se.Field)
	assert.Equal(t, []int{2, 1}, se.Shape)
}

func TestReadMissingLatitude(t *testing.T) {
	var closeCnt int
	f := newFakeFile(2, &closeCnt)
	delete(f.vars, "Latitude")
	f.varOrder = f.varOrder[:0]
	for name := range f.vars {
		f.varOrder = append(f.varOrder, name)
	}
	r := newTestReader(io.Discard, map[string]*fakeGroup{"a.h5": f})

	_, err := r.Read("a.h5")
	var mfe *MissingFieldError
	require.ErrorAs(t, err, &mfe)
	assert.Equal(t, Latitude, mfe.Field)
}

func TestReadWithoutGeolocation(t *testing.T) {
	var closeCnt int
	f := newFakeGroup(&closeCnt).add("Spacecraft_Position", columns[float64](2, 0))
	r := newTestReader(io.Discard, map[string]*fakeGroup{"a.h5": f})

	c, err := r.Read("a.h5")
	assert.Nil(t, c)
	var mfe *MissingFieldError
	require.ErrorAs(t, err, &mfe)
	assert.Equal(t, Latitude, mfe.Field)
	assert.Contains(t, err.Error(), "a.h5")
	assert.Equal(t, 1, closeCnt)
}

func TestConcatReadFileCollections(t *testing.T) {
	var closeCnt int
	r := newTestReader(io.Discard, map[string]*fakeGroup{
		"a.h5": newFakeFile(2, &closeCnt),
		"b.h5": newFakeFile(3, &closeCnt),
	})
	a, err := r.ReadFile("a.h5", NewCollection())
	require.NoError(t, err)
	b, err := r.ReadFile("b.h5", NewCollection())
	require.NoError(t, err)

	c := a.Concat(b)
	assert.Equal(t, 5, c.Len())
	for _, f := range []Field{ProfileID, Latitude, Longitude, ProfileTimeTAI} {
		got, err := c.Get(f)
		require.NoError(t, err)
		assert.Equal(t, []int{5, 3}, got.Shape(), f)
	}
	for f, want := range map[Field][]int{
		NSIDCSurfaceType:        {5, 1},
		LayerTopAltitude:        {5, 10},
		SingleShotData:          {5, 15},
		NumberCloudySingleShots: {5},
	} {
		got, err := c.Get(f)
		require.NoError(t, err)
		assert.Equal(t, want, got.Shape(), f)
	}

	lat, err := c.Get(Latitude)
	require.NoError(t, err)
	if diff := cmp.Diff([]float64{0, 1, 2, 10, 11, 12, 0, 1, 2, 10, 11, 12, 20, 21, 22}, lat.Float64s()); diff != "" {
		t.Errorf("latitude mismatch (-want +got):\n%s", diff)
	}
}

func TestReadFiles(t *testing.T) {
	var closeCnt int
	r := newTestReader(io.Discard, map[string]*fakeGroup{
		"a.h5": newFakeFile(2, &closeCnt),
		"b.h5": newFakeFile(3, &closeCnt),
	})

	c, err := r.ReadFiles("a.h5", "b.h5")
	require.NoError(t, err)
	assert.Equal(t, 5, c.Len())
	assert.Equal(t, 4, closeCnt)

	lat, err := c.Get(Latitude)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 11, 1, 11, 21}, lat.Float64s())

	top, err := c.Get(LayerTopAltitude)
	require.NoError(t, err)
	assert.Equal(t, []int{5, 10}, top.Shape())

	data, err := c.Get(SingleShotData)
	require.NoError(t, err)
	assert.Equal(t, []int{5, 15}, data.Shape())

	_, err = r.ReadFiles("a.h5", "missing.h5")
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func ExampleReader_Read() {
	r := NewReader(slog.New(slog.NewTextHandler(io.Discard, nil)))
	c, err := r.Read("")
	fmt.Println(c.IsEmpty(), err)
	// Output: true <nil>
}
