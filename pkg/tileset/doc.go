// Package tileset derives face compatibility for a catalogue of cube tiles.
//
// Every catalogue entry is a triangle mesh filling the tile volume. The open
// boundary of each mesh is cut into per-face loops, projected to a shared 2D
// lattice per axis and hashed so that a loop and its reverse traversal hash
// alike. Two faces may abut when one face's loops are the other's traversed
// backwards, which is what two consistently wound meshes produce along a
// shared seam.
//
// Entries come in groups of four: entry 4k+r is physical tile k turned r
// quarter turns counterclockwise about +Z.
package tileset
