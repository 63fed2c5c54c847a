// Package pipeline runs the seven-stage phase conditioning chain over a
// channels x samples matrix:
//
//  1. bad-point replacement
//  2. phase unwrap
//  3. cubic detrend
//  4. mean removal
//  5. outlier interpolation
//  6. mean removal (normalisation)
//  7. conversion from degrees to picoseconds
//
// Stages run strictly in order. Each stage clones the matrix it receives,
// so the snapshot handed to a [Sink] after every stage stays valid for the
// rest of the run. Rows may be spread over a bounded worker pool with
// [WithWorkers]; work inside a row is always sequential.
//
// The pipeline owns no I/O. Input arrives through a [Source] and every
// intermediate matrix is offered to a [Sink].
package pipeline
