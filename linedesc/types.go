package linedesc

import "github.com/wippyai/cv-bridge/cvcore"

// KeyLine describes one extracted line, crossing the boundary by value.
// Field meanings follow the wrapped library: Pt is the midpoint, the
// *InOctave coordinates are relative to the octave the line was found in.
type KeyLine struct {
	Angle           float32
	ClassID         int32
	Octave          int32
	Pt              cvcore.Point2f
	Response        float32
	Size            float32
	StartPointX     float32
	StartPointY     float32
	EndPointX       float32
	EndPointY       float32
	SPointInOctaveX float32
	SPointInOctaveY float32
	EPointInOctaveX float32
	EPointInOctaveY float32
	LineLength      float32
	NumOfPixels     int32
}

// StartPoint returns the line's start in image coordinates.
func (k KeyLine) StartPoint() cvcore.Point2f {
	return cvcore.Point2f{X: k.StartPointX, Y: k.StartPointY}
}

// EndPoint returns the line's end in image coordinates.
func (k KeyLine) EndPoint() cvcore.Point2f {
	return cvcore.Point2f{X: k.EndPointX, Y: k.EndPointY}
}

// StartPointInOctave returns the start relative to the detection octave.
func (k KeyLine) StartPointInOctave() cvcore.Point2f {
	return cvcore.Point2f{X: k.SPointInOctaveX, Y: k.SPointInOctaveY}
}

// EndPointInOctave returns the end relative to the detection octave.
func (k KeyLine) EndPointInOctave() cvcore.Point2f {
	return cvcore.Point2f{X: k.EPointInOctaveX, Y: k.EPointInOctaveY}
}

// DMatch pairs a query descriptor with a trained one.
type DMatch struct {
	QueryIdx int32
	TrainIdx int32
	ImgIdx   int32
	Distance float32
}

// Drawing flags for DrawKeylines and DrawLineMatches.
const (
	DrawDefault         int32 = 0
	DrawOverOutImg      int32 = 1
	DrawNotDrawSingle   int32 = 2
)
