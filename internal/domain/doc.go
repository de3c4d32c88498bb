// Package domain models flood-insurance claims and hydrologic gauge data.
//
// # Data Sources
//
// Claims originate from FEMA National Flood Insurance Program (NFIP)
// redacted-claims exports. The upstream extraction step keeps only rows with
// usable coordinates and a parsable date of loss; this package re-validates
// on construction so an invalid ClaimPoint can never enter the pipeline.
//
// Gauge footprints come from USGS streamgage watershed extractions. Each
// record carries the gauge identifier, an ordered set of boundary or
// bounding-box vertices (parallel longitude/latitude arrays), the peak
// discharge in cubic feet per second, and the drainage area in square miles.
// A footprint may have as few as two vertices (bounding-box corners) or many
// (a polygon boundary).
//
// # Coordinate Conventions
//
// All coordinates are WGS-84 decimal degrees, longitude in [-180, 180] and
// latitude in [-90, 90]. Two distance metrics coexist deliberately:
//
//   - Batch matching (claims within 50 km of a footprint vertex) uses
//     great-circle haversine distance on a sphere of Earth's mean radius,
//     because that is the metric the spatial index partitions on.
//   - Interactive ranking (nearest gauges to a user coordinate) uses the
//     ellipsoidal WGS-84 geodesic, the distance actually shown to users.
//
// They are not unified: the two phases answer different questions and the
// divergence between sphere and ellipsoid grows with separation.
//
// # Dates
//
// Claim loss dates are truncated to UTC calendar dates before any grouping;
// time-of-day in upstream exports is noise. A gauge's summary stores parallel
// dates/claimCounts arrays sorted ascending by date, and that ordering is
// load-bearing for timeline merging — a loaded summary whose arrays disagree
// in length is corrupt and is excluded rather than truncated.
package domain
