package cvcore

// Point2f is a 2D point crossing the boundary by value.
type Point2f struct {
	X float32
	Y float32
}

// Scalar is a 4-element value, used for colors and fill values.
type Scalar struct {
	V0 float64
	V1 float64
	V2 float64
	V3 float64
}

// Vec4f is a 4-element float vector; line segments travel as
// (x1, y1, x2, y2).
type Vec4f struct {
	V0 float32
	V1 float32
	V2 float32
	V3 float32
}

// Mat element types, encoded the native way: depth | (channels-1)<<3.
const (
	MatType8UC1  int32 = 0
	MatType8UC3  int32 = 16
	MatType32SC1 int32 = 4
	MatType32FC1 int32 = 5
	MatType32FC3 int32 = 21
	MatType64FC1 int32 = 6
)

// MatTypeDepth extracts the depth component of a mat type.
func MatTypeDepth(t int32) int32 { return t & 7 }

// MatTypeChannels extracts the channel count of a mat type.
func MatTypeChannels(t int32) int32 { return (t >> 3) + 1 }
