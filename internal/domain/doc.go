// Package domain models NYC 311 elevator complaints and the spatial and
// temporal analyses run over them.
//
// # Data Source
//
// Complaints come from the NYC Open Data 311 Service Requests dataset
// (Socrata view erm2-nwe9). The ingest stage pulls a pre-encoded SoQL query
// as CSV; DuckDB infers the schema. Column headers are normalized by
// [NormalizeColumnName] before any downstream query names them.
//
// # Spatial Bins
//
// Coordinates are rounded to 3 decimal places (about 0.001°, roughly 110 m of
// latitude in NYC) and grouped. Bins are keyed by integer thousandths of a
// degree ([BinKey]) so grouping never compares floats. The rounding rule is
// half away from zero, matching DuckDB's ROUND.
//
// # Hotspot ("HQ")
//
// The bin with the highest count wins; ties go to the lowest latitude bin and
// then the lowest longitude bin. Its centroid is the mean of the unrounded
// member coordinates, so it always falls inside the bounding box of those
// members but rarely equals the bin label.
//
// # Distances
//
// Great-circle distances use the Haversine formula with R = 3958.7613 miles
// ([HaversineMiles]). The hosted aggregate evaluates the same formula in SQL.
// The heatmap overlay ([RadiusCircle]) uses a flat-earth approximation
// (69 mi per degree of latitude, 69·cos(lat) per degree of longitude), which is
// fine for a 1-mile radius at Manhattan's latitude.
//
// # Yearly Pivot
//
// [PivotYearly] turns (year, complaint type, count) rows into a dense table
// with years ascending as columns. Missing combinations are 0.
package domain
