package calipso

// Field is the canonical name of a collection field: the lowercase dataset
// name, or its renamed form.
type Field string

// Fields read from a 5 km layer file or derived while reading it.
const (
	Longitude                 Field = "longitude"
	Latitude                  Field = "latitude"
	Elevation                 Field = "elevation"
	Sec1970                   Field = "sec_1970"
	ProfileTimeTAI            Field = "profile_time_tai"
	ProfileID                 Field = "profile_id"
	DayNightFlag              Field = "day_night_flag"
	MinimumLaserEnergy532     Field = "minimum_laser_energy_532"
	LayerTopAltitude          Field = "layer_top_altitude"
	LayerTopTemperature       Field = "layer_top_temperature"
	LayerTopPressure          Field = "layer_top_pressure"
	MidlayerTemperature       Field = "midlayer_temperature"
	LayerBaseAltitude         Field = "layer_base_altitude"
	LayerBasePressure         Field = "layer_base_pressure"
	NumberLayersFound         Field = "number_layers_found"
	IGBPSurfaceType           Field = "igbp_surface_type"
	NSIDCSurfaceType          Field = "nsidc_surface_type"
	SnowIceSurfaceType        Field = "snow_ice_surface_type"
	FeatureClassificationFlag Field = "feature_classification_flags"
	FeatureOpticalDepth532    Field = "feature_optical_depth_532"
	TropopauseHeight          Field = "tropopause_height"

	ColumnOpticalDepthTroposphericAerosols532_5km Field = "column_optical_depth_tropospheric_aerosols_532_5km"
	ColumnOpticalDepthTroposphericAerosols532     Field = "column_optical_depth_tropospheric_aerosols_532"
	ColumnOpticalDepthAerosols532_5km             Field = "column_optical_depth_aerosols_532_5km"
	ColumnOpticalDepthAerosols532                 Field = "column_optical_depth_aerosols_532"
	ColumnOpticalDepthCloud532_5km                Field = "column_optical_depth_cloud_532_5km"
	FeatureOpticalDepth532_5km                    Field = "feature_optical_depth_532_5km"
	LayerTopAltitude5km                           Field = "layer_top_altitude_5km"
	LayerTopPressure5km                           Field = "layer_top_pressure_5km"
	NumberLayersFound5km                          Field = "number_layers_found_5km"

	NumberCloudySingleShots            Field = "number_cloudy_single_shots"
	SingleShotData                     Field = "single_shot_data"
	AverageCloudBaseSingleShots        Field = "average_cloud_base_single_shots"
	AverageCloudTopPressureSingleShots Field = "average_cloud_top_pressure_single_shots"
	AverageCloudTopSingleShots         Field = "average_cloud_top_single_shots"
)

// Fields filled in by the matching pipeline after reading.
const (
	ImagerLinnum                          Field = "imager_linnum"
	ImagerPixnum                          Field = "imager_pixnum"
	CloudFraction                         Field = "cloud_fraction"
	ValidationHeight                      Field = "validation_height"
	DetectionHeight5km                    Field = "detection_height_5km"
	TotalOpticalDepth5km                  Field = "total_optical_depth_5km"
	FeatureOpticalDepth532TopLayer5km     Field = "feature_optical_depth_532_top_layer_5km"
	CFCSingleShots1kmFrom5kmFile          Field = "cfc_single_shots_1km_from_5km_file"
	AverageCloudTopPressureSingleShots5km Field = "average_cloud_top_pressure_single_shots_5km"
	AverageCloudTopSingleShots5km         Field = "average_cloud_top_single_shots_5km"
	AverageCloudBaseSingleShots5km        Field = "average_cloud_base_single_shots_5km"
	CalModisCflag                         Field = "cal_modis_cflag"
	CloudsatIndex                         Field = "cloudsat_index"
)

// FieldSpec declares a known field and the rank its array has once a file
// has been read by Reader.Read.
type FieldSpec struct {
	Name Field
	Rank int
}

// Per-profile datasets are stored as [profiles, columns] in the files; the
// columns of latitude, longitude and profile time are reduced while reading.
var schema = []FieldSpec{
	{Longitude, 1},
	{Latitude, 1},
	{ImagerLinnum, 1},
	{ImagerPixnum, 1},
	{Elevation, 1},
	{CloudFraction, 1},
	{ValidationHeight, 1},
	{Sec1970, 1},
	{MinimumLaserEnergy532, 2},
	{LayerTopAltitude, 2},
	{LayerTopTemperature, 2},
	{LayerTopPressure, 2},
	{MidlayerTemperature, 2},
	{LayerBaseAltitude, 2},
	{LayerBasePressure, 2},
	{NumberLayersFound, 2},
	{IGBPSurfaceType, 2},
	{NSIDCSurfaceType, 2},
	{SnowIceSurfaceType, 2},
	{ProfileTimeTAI, 1},
	{FeatureClassificationFlag, 2},
	{DayNightFlag, 2},
	{FeatureOpticalDepth532, 2},
	{TropopauseHeight, 2},
	{ProfileID, 2},
	{ColumnOpticalDepthTroposphericAerosols532_5km, 2},
	{ColumnOpticalDepthTroposphericAerosols532, 2},
	{ColumnOpticalDepthAerosols532_5km, 2},
	{ColumnOpticalDepthAerosols532, 2},
	{ColumnOpticalDepthCloud532_5km, 2},
	{FeatureOpticalDepth532_5km, 2},
	{LayerTopAltitude5km, 2},
	{LayerTopPressure5km, 2},
	{NumberLayersFound5km, 2},
	{DetectionHeight5km, 1},
	{TotalOpticalDepth5km, 1},
	{FeatureOpticalDepth532TopLayer5km, 1},
	{CFCSingleShots1kmFrom5kmFile, 1},
	{AverageCloudTopPressureSingleShots, 1},
	{AverageCloudTopPressureSingleShots5km, 1},
	{AverageCloudTopSingleShots, 1},
	{AverageCloudTopSingleShots5km, 1},
	{AverageCloudBaseSingleShots, 1},
	{AverageCloudBaseSingleShots5km, 1},
	{NumberCloudySingleShots, 1},
	{SingleShotData, 2},
	{CalModisCflag, 1},
	{CloudsatIndex, 1},
}

// Schema returns the known fields of a collection.
func Schema() []FieldSpec {
	return append([]FieldSpec(nil), schema...)
}
