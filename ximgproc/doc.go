// Package ximgproc covers the extended image processing surface:
// superpixel segmentation, edge-preserving filters, structured forest
// edge detection, graph segmentation and fast line detection.
//
// All constructors take a boundary.Dispatcher; the returned wrappers keep
// that dispatcher and route every call through it.
package ximgproc
