// Package navigator computes previous/next chapter targets for a chapter reader.
//
// A title may be translated by several groups that publish overlapping, partial runs of chapter numbers.
// Navigation therefore works on a single ordered [Sequence] of every chapter of a title and prefers neighbors
// published by the same group as the chapter being read.
//
// # Pipeline
//
//  1. [ParseLabel] : free-text chapter label to a numeric sort key, 0 when not numeric
//  2. [Build] : stable ascending sort of the records into a dense [Sequence]
//  3. [NewGroupIndex] : per-entry translation group membership
//  4. [Resolve] : directional scan for the nearest same-group neighbor, falling back to the adjacent entry
//  5. [Controller] : fetches records through a [Catalog] and publishes a [State] snapshot per request
//
// Steps 1-4 are pure functions. The [Controller] is the only stateful piece; a newer request always wins and
// results of older requests are discarded on arrival.
package navigator
