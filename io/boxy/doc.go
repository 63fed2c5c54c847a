// Package boxy reads Imagent BOXY text exports into a channel-by-sample
// matrix of one measurement type (AC, DC or phase).
//
// A BOXY file carries a free-form header with the detector, source and
// auxiliary channel counts, the cross-correlation (CCF) frequency and the
// update rate, followed by a tab-separated table between the "#DATA BEGINS"
// and "#DATA ENDS" markers. Two table layouts exist:
//
//   - parsed: one column per detector, type and source, named "A-Ph1",
//     "A-Ph2", ..., one table row per sample;
//   - non-parsed: one column per detector and type ("A-Ph") and an "exmux"
//     column, with consecutive table rows cycling through the sources.
//
// Channels are ordered detector-major: index = detector*sources + source-1.
// A recording may span several files, one per montage and block; blocks are
// joined along time and montages are stacked along channels.
package boxy
