// Package core holds the scalar helpers shared by the phase conditioning
// packages: the degree-to-picosecond conversion, finiteness checks and
// tolerant float comparison.
package core
