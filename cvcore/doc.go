// Package cvcore declares the core value types and the matrix surface that
// every other wrapped module builds on.
//
// Mats are owned opaque handles; the pixel data never crosses the boundary
// except through mat.from-bytes. Records (Point2f, Scalar, Vec4f) cross by
// value.
package cvcore
