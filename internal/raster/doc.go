// Package raster provides the 2-D numeric grid that every stage of the ridge
// detection pipeline consumes and produces.
//
// A Raster is a row-major grid of float64 samples. Missing measurements are
// represented either by NaN or by a caller-supplied nodata sentinel value; the
// package never invents a sentinel of its own.
//
// # Coordinate System
//
// Samples are addressed as (x, y) with (0,0) at the top-left corner:
//   - X: column index (0 = leftmost)
//   - Y: row index (0 = topmost)
//   - Data[y*Width+x] holds the sample at (x, y)
//
// # Ownership
//
// Functions in this package never modify their inputs. Every transformation
// (Scale, Standardize, MaskValue, Crop, ...) allocates and returns a new
// Raster, so the same source raster can be fed to repeated pipeline runs.
//
// # Loading
//
// Load decodes PNG, JPEG, GIF, BMP and TIFF files. Grey images keep their
// native sample values (0-255 for 8-bit, 0-65535 for 16-bit), which preserves
// Sentinel-2 digital numbers in 16-bit GeoTIFF exports. Colour images are
// reduced to BT.601 luma on a 0-255 scale.
//
// # Thread Safety
//
// Cache is safe for concurrent use. Rasters themselves carry no locks; share
// them read-only.
package raster
