// Package tiles downloads the Sentinel-2 L2A band files the pipeline runs on.
//
// The source is the public sentinel-s2-l2a bucket laid out by tile and date.
// Only the single example tile 36UUD of 2023-08-28 is wired in; a Downloader
// can be pointed at another tile by changing BaseURL and Prefix.
//
// Band files are JPEG 2000. They are stored unchanged and must be converted
// (for example with gdal_translate to GeoTIFF) before raster.Load can read
// them.
package tiles
