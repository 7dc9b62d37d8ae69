// Package lineament extracts straight linear features from a polarity mask.
//
// Extract runs a Hough line transform over the cells an overlay keeps and
// returns segments with their endpoints, length and orientation. Components
// groups the same cells into 8-connected regions for coarser summaries.
//
// # Coordinate System
//
// Positions are raster cells with (0, 0) at the top-left, X to the right and
// Y down. Orientation is undirected, in degrees within [0, 180) from the +X
// axis, so 90 is a north-south lineament and 45 runs from top-left to
// bottom-right.
package lineament
