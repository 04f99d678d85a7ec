// Package graph defines the service graph shown on the canvas: nodes,
// directed connections between their numbered connection points, and the
// Store contract the canvas consumes.
//
// The canvas never owns graph data. It reads nodes and connections from a
// Store, submits new connections through it and reports position changes to
// it. Duplicate detection and cascade deletion are the store's concern.
package graph
