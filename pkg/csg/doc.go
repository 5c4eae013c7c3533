// Package csg implements constructive solid geometry on triangle meshes
// using binary space partitioning trees.
//
// A CSG value is a flat list of oriented polygons describing the boundary
// of a solid. Union, Subtract and Intersect build two short-lived BSP
// trees, clip each against the other and read the surviving polygons back.
// Every polygon carries an opaque Shared tag (a material index in practice)
// which survives splitting, so per-face materials are preserved through any
// sequence of boolean operations.
package csg
