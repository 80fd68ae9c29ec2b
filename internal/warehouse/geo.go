package warehouse

import (
	"context"
	"fmt"

	"github.com/timothyakintayo/nyc-elevator-elt/internal/domain"
)

// GeoPoints returns the coordinates of complaints of one type in one borough.
// The borough match is case-insensitive; rows without coordinates are skipped.
func (w *Warehouse) GeoPoints(ctx context.Context, table, borough, complaintType string) ([]domain.Point, error) {
	q := fmt.Sprintf(`SELECT lat AS latitude, lon AS longitude
FROM (
  SELECT TRY_CAST(%[2]s AS DOUBLE) AS lat, TRY_CAST(%[3]s AS DOUBLE) AS lon
  FROM %[1]s
  WHERE UPPER(%[4]s) = UPPER(CAST(? AS VARCHAR))
    AND %[5]s = CAST(? AS VARCHAR)
)
WHERE lat IS NOT NULL AND lon IS NOT NULL`,
		QuoteIdent(table), QuoteIdent(ColLatitude), QuoteIdent(ColLongitude),
		QuoteIdent(ColBorough), QuoteIdent(ColComplaintType))

	var pts []domain.Point
	if err := w.selectInto(ctx, "geo_points", &pts, q, borough, complaintType); err != nil {
		return nil, err
	}
	return pts, nil
}

// yearlyInRadiusSQL counts complaints per (year, type) whose Haversine
// distance from the center is within the radius. Parameters in order:
// earth radius, center lat, center lat, center lon, radius.
const yearlyInRadiusSQL = `WITH located AS (
  SELECT CAST(year(CAST(created_date AS TIMESTAMP)) AS VARCHAR) AS year,
         complaint_type,
         TRY_CAST(latitude AS DOUBLE) AS lat,
         TRY_CAST(longitude AS DOUBLE) AS lon
  FROM %s
  WHERE created_date IS NOT NULL AND complaint_type IS NOT NULL
), distances AS (
  SELECT year, complaint_type,
         2 * CAST(? AS DOUBLE) * ASIN(SQRT(
           POWER(SIN(RADIANS(lat - CAST(? AS DOUBLE)) / 2), 2) +
           COS(RADIANS(CAST(? AS DOUBLE))) * COS(RADIANS(lat)) *
           POWER(SIN(RADIANS(lon - CAST(? AS DOUBLE)) / 2), 2)
         )) AS distance_mi
  FROM located
  WHERE lat IS NOT NULL AND lon IS NOT NULL
)
SELECT year, complaint_type, COUNT(*) AS complaints
FROM distances
WHERE distance_mi <= CAST(? AS DOUBLE)
GROUP BY year, complaint_type
ORDER BY year, complaint_type`

// YearlyInRadius aggregates complaints within radiusMiles of center by year
// and complaint type. table may be a dotted catalog.schema.table name.
func (w *Warehouse) YearlyInRadius(ctx context.Context, table string, center domain.Point, radiusMiles float64) ([]domain.YearlyCount, error) {
	q := fmt.Sprintf(yearlyInRadiusSQL, QuoteQualified(table))

	var out []domain.YearlyCount
	err := w.selectInto(ctx, "yearly_in_radius", &out, q,
		domain.EarthRadiusMiles, center.Lat, center.Lat, center.Lon, radiusMiles)
	if err != nil {
		return nil, err
	}
	return out, nil
}
