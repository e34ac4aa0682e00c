// Package threshold implements threshold-defined regions of interest.
//
// A threshold region is the set of lattice points of an n-dimensional image
// whose sample value lies inside a closed range [min, max]. The set is never
// stored. Membership is computed whenever it is asked for, by feeding every
// coordinate of the image's full extent through a sampling stage and a range
// test.
//
// # Building blocks
//
// The region is assembled from small pieces that can also be used on their own:
//
//   - RangeCondition: the mutable [min, max] test applied to a scalar.
//   - ImageFunction: samples an image at an integer position and converts the
//     sample to float64. The conversion is chosen once from a representative
//     element of the image.
//   - HyperVolume: every integer coordinate inside the image extent, produced
//     lazily with axis 0 varying fastest.
//   - ConditionalPointSet: the HyperVolume filtered by the condition applied to
//     the function. It carries a version counter that is bumped whenever the
//     condition changes.
//   - PointSetRegion: a stateless RegionOfInterest view over any PointSet, with
//     real-valued containment and bounds.
//   - Overlay: owns all of the above for one image and adds the mutation API
//     (SetRange, ResetThreshold), axis and calibration pass-through, and the
//     display attributes used by renderers.
//
// # Bounds
//
// Bounding-box queries always report the full image extent, whatever the
// current range. A narrow range produces a loose box; an empty region still
// reports min 0 and max dim-1 on every axis.
//
// # Concurrency
//
// Nothing in this package locks. Callers that share an Overlay between
// goroutines must serialize SetRange and ResetThreshold against iteration and
// containment queries. The image itself is only read and may be shared freely
// between overlays.
package threshold
