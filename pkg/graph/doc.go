// Package graph defines the tile design graph for Tessera.
// The design graph is an immutable DAG of primitives, booleans and
// transforms hanging off tile roots; each tile root becomes one entry of
// the tile catalogue.
package graph
