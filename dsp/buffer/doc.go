// Package buffer provides the channel-by-sample Matrix used throughout the
// phase conditioning pipeline. Rows are channels, columns are time samples,
// and storage is a single contiguous row-major float64 slice so that Row
// returns an aliasing view suitable for the per-channel DSP kernels.
package buffer
