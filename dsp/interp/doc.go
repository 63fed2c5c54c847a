// Package interp repairs isolated bad samples by neighbour interpolation.
//
// Outliers are located with a k-sigma rule whose spread estimate can exclude
// a leading block of samples ([FindOutliers]), edge samples without two
// neighbours are discarded ([TrimEdges]), and the survivors are replaced in
// ascending order by the midpoint of their current neighbours ([Bridge]).
// Because [Bridge] reads neighbours after earlier replacements, a run of
// adjacent outliers decays towards the left neighbour rather than being
// filled with independent midpoints.
package interp
