// Package domain holds the types shared by the fire-front engine and its
// transports: simulation requests, resolved run configuration, provider
// interfaces and the result envelope.
//
// # Request Conventions
//
// Perimeters are GeoJSON Polygon, MultiPolygon, or a Feature wrapping one,
// in WGS-84 lon/lat. Wind direction is meteorological: the bearing the wind
// blows FROM, clockwise from north. Slope is a dimensionless rise/run.
//
// Boolean flags accept JSON booleans, 0/1, and the strings "1", "true",
// "yes", "on", "0", "false", "no", "off" and "". Anything else is an input
// error.
//
// # Results
//
// A run yields one front per hour 1..Hours. The GeoJSON rendering is a
// FeatureCollection whose features carry an integer "hour" property, plus a
// top-level "meta" member with the resolved parameters and any provider
// fallback messages.
//
// # Kafka
//
// Requests consumed from the source topic use the same JSON body as the HTTP
// API. The message key, when present, becomes the run id unless the body sets
// one. Results are published keyed by run id.
package domain
