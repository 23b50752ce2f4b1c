package hostlib

import (
	"context"
	"image"
	"math/bits"
	"sort"

	xdraw "golang.org/x/image/draw"

	"github.com/wippyai/cv-bridge/cvcore"
	"github.com/wippyai/cv-bridge/handle"
	"github.com/wippyai/cv-bridge/linedesc"
	"github.com/wippyai/cv-bridge/result"
)

const (
	descriptorBytes = 32
	lineSpacing     = 16 // rows between extracted lines
	normHamming     = 6  // NORM_HAMMING
)

// bdParams mirrors the native parameter block, with its defaults.
type bdParams struct {
	numOfOctaves   int32
	widthOfBand    int32
	reductionRatio int32
	ksize          int32
}

func defaultBDParams() *bdParams {
	return &bdParams{numOfOctaves: 1, widthOfBand: 7, reductionRatio: 2, ksize: 5}
}

type binaryDescriptor struct {
	params bdParams
}

type lsdDetector struct{}

// matcher accumulates descriptor matrices added for trained matching.
type matcher struct {
	added   []*mat
	trained bool
}

func (h *Host) paramsAt(hd handle.Handle) *bdParams {
	return h.get(hd, typeParams).(*bdParams)
}

func (h *Host) bdAt(hd handle.Handle) *binaryDescriptor {
	return h.get(hd, typeBinaryDescriptor).(*binaryDescriptor)
}

func (h *Host) matcherAt(hd handle.Handle) *matcher {
	return h.get(hd, typeMatcher).(*matcher)
}

func argKeyLines(args []any, i int) []linedesc.KeyLine {
	if v, ok := args[i].([]linedesc.KeyLine); ok {
		return v
	}
	result.Raise(result.CodeBadArg, "argument %d: expected keyline list, got %T", i, args[i])
	return nil
}

func argDMatches(args []any, i int) []linedesc.DMatch {
	if v, ok := args[i].([]linedesc.DMatch); ok {
		return v
	}
	result.Raise(result.CodeBadArg, "argument %d: expected dmatch list, got %T", i, args[i])
	return nil
}

func argScalar(args []any, i int) cvcore.Scalar {
	if v, ok := args[i].(cvcore.Scalar); ok {
		return v
	}
	result.Raise(result.CodeBadArg, "argument %d: expected scalar, got %T", i, args[i])
	return cvcore.Scalar{}
}

// requireMask validates an optional detection mask against the image.
func requireMask(mask, img *mat) {
	if mask == nil {
		return
	}
	if mask.matType != cvcore.MatType8UC1 || mask.rows != img.rows || mask.cols != img.cols {
		result.Raise(result.CodeBadArg, "mask must be 8UC1 with image geometry")
	}
}

// gridLines extracts one horizontal line per band of lineSpacing rows per
// octave. The extraction itself is a stand-in; the geometry, octave scaling
// and field conventions match the native detector's output contract.
func gridLines(img *mat, mask *mat, numOctaves, reduction int32) []linedesc.KeyLine {
	var out []linedesc.KeyLine
	classID := int32(0)
	scale := int32(1)

	for o := int32(0); o < numOctaves; o++ {
		oh := img.rows / scale
		ow := img.cols / scale
		if oh < lineSpacing || ow < 2 {
			break
		}
		for y := int32(lineSpacing / 2); y < oh; y += lineSpacing {
			iy := y * scale
			if mask != nil && mask.data[int(iy)*int(img.cols)] == 0 {
				continue
			}
			length := float32(ow - 1)
			kl := linedesc.KeyLine{
				Angle:           0,
				ClassID:         classID,
				Octave:          o,
				Response:        length / float32(img.cols),
				Size:            length * float32(lineSpacing),
				StartPointX:     0,
				StartPointY:     float32(iy),
				EndPointX:       float32((ow - 1) * scale),
				EndPointY:       float32(iy),
				SPointInOctaveX: 0,
				SPointInOctaveY: float32(y),
				EPointInOctaveX: float32(ow - 1),
				EPointInOctaveY: float32(y),
				LineLength:      length,
				NumOfPixels:     ow,
			}
			kl.Pt = cvcore.Point2f{X: (kl.StartPointX + kl.EndPointX) / 2, Y: float32(iy)}
			out = append(out, kl)
			classID++
		}
		scale *= reduction
	}
	return out
}

// descriptorRow derives a deterministic 32-byte binary descriptor from a
// keyline's geometry.
func descriptorRow(kl linedesc.KeyLine, widthOfBand int32) [descriptorBytes]byte {
	var row [descriptorBytes]byte
	seed := uint32(kl.ClassID)*2654435761 + uint32(kl.Octave)*40503 +
		uint32(int32(kl.LineLength))*9973 + uint32(widthOfBand)
	for j := range row {
		seed = seed*1664525 + 1013904223
		row[j] = byte(seed >> 24)
	}
	return row
}

// hammingDistance compares descriptor rows i of q and j of t.
func hammingDistance(q, t *mat, i, j int32) float32 {
	qr := q.data[int(i)*descriptorBytes : int(i+1)*descriptorBytes]
	tr := t.data[int(j)*descriptorBytes : int(j+1)*descriptorBytes]
	n := 0
	for k := 0; k < descriptorBytes; k++ {
		n += bits.OnesCount8(qr[k] ^ tr[k])
	}
	return float32(n)
}

// requireDescriptors faults unless m is a descriptor matrix.
func requireDescriptors(m *mat) {
	if m.matType != cvcore.MatType8UC1 || m.cols != descriptorBytes {
		result.Raise(result.CodeUnsupportedFormat, "descriptor matrix must be 8UC1 with %d columns", descriptorBytes)
	}
}

// knnAgainst collects the k best matches for each query row over a set of
// train matrices. imgIdx tags which train matrix a match came from.
func knnAgainst(query *mat, trains []*mat, k int32, mask *mat, compact bool) [][]linedesc.DMatch {
	requireDescriptors(query)
	for _, t := range trains {
		requireDescriptors(t)
	}
	if mask != nil && (mask.matType != cvcore.MatType8UC1 || mask.rows != query.rows) {
		result.Raise(result.CodeBadArg, "mask must be 8UC1 with one row per query descriptor")
	}

	var out [][]linedesc.DMatch
	for i := int32(0); i < query.rows; i++ {
		if mask != nil && mask.data[i*mask.cols] == 0 {
			if !compact {
				out = append(out, nil)
			}
			continue
		}
		var row []linedesc.DMatch
		for ti, t := range trains {
			for j := int32(0); j < t.rows; j++ {
				row = append(row, linedesc.DMatch{
					QueryIdx: i,
					TrainIdx: j,
					ImgIdx:   int32(ti),
					Distance: hammingDistance(query, t, i, j),
				})
			}
		}
		sort.SliceStable(row, func(a, b int) bool { return row[a].Distance < row[b].Distance })
		if int32(len(row)) > k {
			row = row[:k]
		}
		if len(row) == 0 && compact {
			continue
		}
		out = append(out, row)
	}
	return out
}

// radiusAgainst collects all matches within maxDistance per query row.
func radiusAgainst(query *mat, trains []*mat, maxDistance float32, mask *mat, compact bool) [][]linedesc.DMatch {
	full := knnAgainst(query, trains, int32(1<<30), mask, false)
	var out [][]linedesc.DMatch
	for _, row := range full {
		var kept []linedesc.DMatch
		for _, m := range row {
			if m.Distance <= maxDistance {
				kept = append(kept, m)
			}
		}
		if len(kept) == 0 && compact {
			continue
		}
		out = append(out, kept)
	}
	return out
}

func bestMatches(rows [][]linedesc.DMatch) []linedesc.DMatch {
	var out []linedesc.DMatch
	for _, row := range rows {
		if len(row) > 0 {
			out = append(out, row[0])
		}
	}
	return out
}

func (mt *matcher) trainedSet() []*mat {
	if !mt.trained {
		result.Raise(result.CodeError, "matcher has not been trained")
	}
	return mt.added
}

// grayImage wraps an 8UC1 mat as an image.Gray sharing its pixel data.
func grayImage(m *mat) *image.Gray {
	return &image.Gray{
		Pix:    m.data,
		Stride: int(m.cols),
		Rect:   image.Rect(0, 0, int(m.cols), int(m.rows)),
	}
}

// downscaleGray resamples an 8UC1 mat by 1/factor.
func downscaleGray(m *mat, factor int32) *mat {
	rows := m.rows / factor
	cols := m.cols / factor
	out := newMat(rows, cols, cvcore.MatType8UC1)
	xdraw.ApproxBiLinear.Scale(grayImage(out), grayImage(out).Rect, grayImage(m), grayImage(m).Rect, xdraw.Src, nil)
	return out
}

// drawSegment writes color along the segment into every channel of an
// 8-bit mat, clipping to bounds.
func drawSegment(m *mat, x0, y0, x1, y1 float32, color cvcore.Scalar) {
	chans := cvcore.MatTypeChannels(m.matType)
	elems := []byte{byte(color.V0), byte(color.V1), byte(color.V2), byte(color.V3)}
	dx, dy := x1-x0, y1-y0
	steps := int(max32(abs32(dx), abs32(dy))) + 1
	for s := 0; s <= steps; s++ {
		t := float32(s) / float32(steps)
		x, y := int32(x0+dx*t), int32(y0+dy*t)
		if x < 0 || y < 0 || x >= m.cols || y >= m.rows {
			continue
		}
		base := (int(y)*int(m.cols) + int(x)) * int(m.elemSize())
		for c := int32(0); c < chans; c++ {
			m.data[base+int(c)] = elems[c&3]
		}
	}
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

func max32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

func (h *Host) lineDescFuncs() map[string]hostFunc {
	ns := "cv:line-descriptor#"
	return map[string]hostFunc{
		ns + "params.new": func(_ context.Context, _ []any) any {
			return h.mustInsert(h.table.Insert(typeParams, defaultBDParams()))
		},
		ns + "params.num-of-octaves": func(_ context.Context, args []any) any {
			return h.paramsAt(argHandle(args, 0)).numOfOctaves
		},
		ns + "params.set-num-of-octaves": func(_ context.Context, args []any) any {
			v := argI32(args, 1)
			if v < 1 {
				result.Raise(result.CodeBadArg, "numOfOctaves must be positive, got %d", v)
			}
			h.paramsAt(argHandle(args, 0)).numOfOctaves = v
			return nil
		},
		ns + "params.width-of-band": func(_ context.Context, args []any) any {
			return h.paramsAt(argHandle(args, 0)).widthOfBand
		},
		ns + "params.set-width-of-band": func(_ context.Context, args []any) any {
			v := argI32(args, 1)
			if v < 1 {
				result.Raise(result.CodeBadArg, "widthOfBand must be positive, got %d", v)
			}
			h.paramsAt(argHandle(args, 0)).widthOfBand = v
			return nil
		},
		ns + "params.reduction-ratio": func(_ context.Context, args []any) any {
			return h.paramsAt(argHandle(args, 0)).reductionRatio
		},
		ns + "params.set-reduction-ratio": func(_ context.Context, args []any) any {
			v := argI32(args, 1)
			if v < 2 {
				result.Raise(result.CodeBadArg, "reductionRatio must be at least 2, got %d", v)
			}
			h.paramsAt(argHandle(args, 0)).reductionRatio = v
			return nil
		},
		ns + "params.ksize": func(_ context.Context, args []any) any {
			return h.paramsAt(argHandle(args, 0)).ksize
		},
		ns + "params.set-ksize": func(_ context.Context, args []any) any {
			h.paramsAt(argHandle(args, 0)).ksize = argI32(args, 1)
			return nil
		},
		ns + "params.destroy": func(_ context.Context, args []any) any {
			h.remove(argHandle(args, 0))
			return nil
		},

		ns + "binary-descriptor.new": func(_ context.Context, args []any) any {
			p := *h.paramsAt(argHandle(args, 0))
			return h.mustInsert(h.table.Insert(typeBinaryDescriptor, &binaryDescriptor{params: p}))
		},
		ns + "binary-descriptor.create": func(_ context.Context, _ []any) any {
			return h.mustInsert(h.table.InsertShared(typeBinaryDescriptor, &binaryDescriptor{params: *defaultBDParams()}))
		},
		ns + "binary-descriptor.create-with-params": func(_ context.Context, args []any) any {
			p := *h.paramsAt(argHandle(args, 0))
			return h.mustInsert(h.table.InsertShared(typeBinaryDescriptor, &binaryDescriptor{params: p}))
		},
		ns + "binary-descriptor.num-of-octaves": func(_ context.Context, args []any) any {
			return h.bdAt(argHandle(args, 0)).params.numOfOctaves
		},
		ns + "binary-descriptor.set-num-of-octaves": func(_ context.Context, args []any) any {
			v := argI32(args, 1)
			if v < 1 {
				result.Raise(result.CodeBadArg, "numOfOctaves must be positive, got %d", v)
			}
			h.bdAt(argHandle(args, 0)).params.numOfOctaves = v
			return nil
		},
		ns + "binary-descriptor.width-of-band": func(_ context.Context, args []any) any {
			return h.bdAt(argHandle(args, 0)).params.widthOfBand
		},
		ns + "binary-descriptor.set-width-of-band": func(_ context.Context, args []any) any {
			v := argI32(args, 1)
			if v < 1 {
				result.Raise(result.CodeBadArg, "widthOfBand must be positive, got %d", v)
			}
			h.bdAt(argHandle(args, 0)).params.widthOfBand = v
			return nil
		},
		ns + "binary-descriptor.reduction-ratio": func(_ context.Context, args []any) any {
			return h.bdAt(argHandle(args, 0)).params.reductionRatio
		},
		ns + "binary-descriptor.set-reduction-ratio": func(_ context.Context, args []any) any {
			v := argI32(args, 1)
			if v < 2 {
				result.Raise(result.CodeBadArg, "reductionRatio must be at least 2, got %d", v)
			}
			h.bdAt(argHandle(args, 0)).params.reductionRatio = v
			return nil
		},
		ns + "binary-descriptor.detect": func(_ context.Context, args []any) any {
			bd := h.bdAt(argHandle(args, 0))
			img := h.matAt(argHandle(args, 1))
			mask := h.optMatAt(argHandle(args, 2))
			requireGray(img)
			requireMask(mask, img)
			return gridLines(img, mask, bd.params.numOfOctaves, bd.params.reductionRatio)
		},
		ns + "binary-descriptor.compute": func(_ context.Context, args []any) any {
			bd := h.bdAt(argHandle(args, 0))
			img := h.matAt(argHandle(args, 1))
			keylines := argKeyLines(args, 2)
			requireGray(img)
			out := newMat(int32(len(keylines)), descriptorBytes, cvcore.MatType8UC1)
			for i, kl := range keylines {
				row := descriptorRow(kl, bd.params.widthOfBand)
				copy(out.data[i*descriptorBytes:], row[:])
			}
			return h.insertMat(out)
		},
		ns + "binary-descriptor.descriptor-size": func(_ context.Context, args []any) any {
			h.bdAt(argHandle(args, 0))
			return int32(descriptorBytes)
		},
		ns + "binary-descriptor.descriptor-type": func(_ context.Context, args []any) any {
			h.bdAt(argHandle(args, 0))
			return cvcore.MatType8UC1
		},
		ns + "binary-descriptor.default-norm": func(_ context.Context, args []any) any {
			h.bdAt(argHandle(args, 0))
			return int32(normHamming)
		},
		ns + "binary-descriptor.destroy": func(_ context.Context, args []any) any {
			h.remove(argHandle(args, 0))
			return nil
		},

		ns + "matcher.new": func(_ context.Context, _ []any) any {
			return h.mustInsert(h.table.Insert(typeMatcher, &matcher{}))
		},
		ns + "matcher.create": func(_ context.Context, _ []any) any {
			return h.mustInsert(h.table.InsertShared(typeMatcher, &matcher{}))
		},
		ns + "matcher.match": func(_ context.Context, args []any) any {
			h.matcherAt(argHandle(args, 0))
			query := h.matAt(argHandle(args, 1))
			train := h.matAt(argHandle(args, 2))
			mask := h.optMatAt(argHandle(args, 3))
			return bestMatches(knnAgainst(query, []*mat{train}, 1, mask, false))
		},
		ns + "matcher.match-trained": func(_ context.Context, args []any) any {
			mt := h.matcherAt(argHandle(args, 0))
			query := h.matAt(argHandle(args, 1))
			return bestMatches(knnAgainst(query, mt.trainedSet(), 1, nil, false))
		},
		ns + "matcher.knn-match": func(_ context.Context, args []any) any {
			h.matcherAt(argHandle(args, 0))
			query := h.matAt(argHandle(args, 1))
			train := h.matAt(argHandle(args, 2))
			k := argI32(args, 3)
			mask := h.optMatAt(argHandle(args, 4))
			return knnAgainst(query, []*mat{train}, k, mask, argBool(args, 5))
		},
		ns + "matcher.knn-match-trained": func(_ context.Context, args []any) any {
			mt := h.matcherAt(argHandle(args, 0))
			query := h.matAt(argHandle(args, 1))
			return knnAgainst(query, mt.trainedSet(), argI32(args, 2), nil, argBool(args, 3))
		},
		ns + "matcher.radius-match": func(_ context.Context, args []any) any {
			h.matcherAt(argHandle(args, 0))
			query := h.matAt(argHandle(args, 1))
			train := h.matAt(argHandle(args, 2))
			radius := argF32(args, 3)
			mask := h.optMatAt(argHandle(args, 4))
			return radiusAgainst(query, []*mat{train}, radius, mask, argBool(args, 5))
		},
		ns + "matcher.radius-match-trained": func(_ context.Context, args []any) any {
			mt := h.matcherAt(argHandle(args, 0))
			query := h.matAt(argHandle(args, 1))
			return radiusAgainst(query, mt.trainedSet(), argF32(args, 2), nil, argBool(args, 3))
		},
		ns + "matcher.add": func(_ context.Context, args []any) any {
			mt := h.matcherAt(argHandle(args, 0))
			desc := h.matAt(argHandle(args, 1))
			requireDescriptors(desc)
			mt.added = append(mt.added, desc.clone())
			mt.trained = false
			return nil
		},
		ns + "matcher.train": func(_ context.Context, args []any) any {
			mt := h.matcherAt(argHandle(args, 0))
			mt.trained = true
			return nil
		},
		ns + "matcher.clear": func(_ context.Context, args []any) any {
			mt := h.matcherAt(argHandle(args, 0))
			mt.added = nil
			mt.trained = false
			return nil
		},
		ns + "matcher.destroy": func(_ context.Context, args []any) any {
			h.remove(argHandle(args, 0))
			return nil
		},

		ns + "lsd-detector.new": func(_ context.Context, _ []any) any {
			return h.mustInsert(h.table.Insert(typeLSDDetector, &lsdDetector{}))
		},
		ns + "lsd-detector.create": func(_ context.Context, _ []any) any {
			return h.mustInsert(h.table.InsertShared(typeLSDDetector, &lsdDetector{}))
		},
		ns + "lsd-detector.detect": func(_ context.Context, args []any) any {
			h.get(argHandle(args, 0), typeLSDDetector)
			img := h.matAt(argHandle(args, 1))
			scale := argI32(args, 2)
			numOctaves := argI32(args, 3)
			mask := h.optMatAt(argHandle(args, 4))
			requireGray(img)
			requireMask(mask, img)
			if scale < 1 || numOctaves < 1 {
				result.Raise(result.CodeBadArg, "scale and numOctaves must be positive")
			}

			// Resample the pyramid explicitly so detection sees real octave
			// images, then express results in base coordinates per octave.
			var out []linedesc.KeyLine
			classID := int32(0)
			level := img
			factor := int32(1)
			for o := int32(0); o < numOctaves; o++ {
				for _, kl := range gridLines(level, nil, 1, 2) {
					kl.Octave = o
					kl.ClassID = classID
					kl.StartPointX *= float32(factor)
					kl.StartPointY *= float32(factor)
					kl.EndPointX *= float32(factor)
					kl.EndPointY *= float32(factor)
					kl.Pt.X *= float32(factor)
					kl.Pt.Y *= float32(factor)
					kl.LineLength *= float32(factor)
					if mask != nil && mask.data[int(kl.Pt.Y)*int(img.cols)] == 0 {
						continue
					}
					out = append(out, kl)
					classID++
				}
				if o+1 < numOctaves {
					if level.rows/scale < 1 || level.cols/scale < 1 {
						break
					}
					level = downscaleGray(level, scale)
					factor *= scale
				}
			}
			return out
		},
		ns + "lsd-detector.destroy": func(_ context.Context, args []any) any {
			h.remove(argHandle(args, 0))
			return nil
		},

		ns + "draw-keylines": func(_ context.Context, args []any) any {
			img := h.matAt(argHandle(args, 0))
			keylines := argKeyLines(args, 1)
			out := h.matAt(argHandle(args, 2))
			color := argScalar(args, 3)
			flags := argI32(args, 4)
			requireImage(img)

			if flags&linedesc.DrawOverOutImg == 0 {
				*out = *img.clone()
			} else if out.rows != img.rows || out.cols != img.cols {
				result.Raise(result.CodeBadSize, "output image geometry mismatch")
			}
			for _, kl := range keylines {
				drawSegment(out, kl.StartPointX, kl.StartPointY, kl.EndPointX, kl.EndPointY, color)
			}
			return nil
		},
		ns + "draw-line-matches": func(_ context.Context, args []any) any {
			img1 := h.matAt(argHandle(args, 0))
			kl1 := argKeyLines(args, 1)
			img2 := h.matAt(argHandle(args, 2))
			kl2 := argKeyLines(args, 3)
			matches := argDMatches(args, 4)
			out := h.matAt(argHandle(args, 5))
			matchColor := argScalar(args, 6)
			singleColor := argScalar(args, 7)
			flags := argI32(args, 8)
			requireImage(img1)
			requireImage(img2)
			if img1.matType != img2.matType {
				result.Raise(result.CodeUnsupportedFormat, "input images must share a mat type")
			}

			rows := img1.rows
			if img2.rows > rows {
				rows = img2.rows
			}
			if flags&linedesc.DrawOverOutImg == 0 {
				composed := newMat(rows, img1.cols+img2.cols, img1.matType)
				blit(composed, img1, 0)
				blit(composed, img2, img1.cols)
				*out = *composed
			} else if out.rows != rows || out.cols != img1.cols+img2.cols {
				result.Raise(result.CodeBadSize, "output image geometry mismatch")
			}

			if flags&linedesc.DrawNotDrawSingle == 0 {
				for _, kl := range kl1 {
					drawSegment(out, kl.StartPointX, kl.StartPointY, kl.EndPointX, kl.EndPointY, singleColor)
				}
				for _, kl := range kl2 {
					off := float32(img1.cols)
					drawSegment(out, kl.StartPointX+off, kl.StartPointY, kl.EndPointX+off, kl.EndPointY, singleColor)
				}
			}
			for _, m := range matches {
				if int(m.QueryIdx) >= len(kl1) || int(m.TrainIdx) >= len(kl2) {
					result.Raise(result.CodeOutOfRange, "match indexes outside keyline lists")
				}
				a := kl1[m.QueryIdx]
				b := kl2[m.TrainIdx]
				drawSegment(out, a.Pt.X, a.Pt.Y, b.Pt.X+float32(img1.cols), b.Pt.Y, matchColor)
			}
			return nil
		},
	}
}

// blit copies src into dst at column offset colOff.
func blit(dst, src *mat, colOff int32) {
	es := int(dst.elemSize())
	for y := int32(0); y < src.rows; y++ {
		dstBase := (int(y)*int(dst.cols) + int(colOff)) * es
		srcBase := int(y) * int(src.cols) * es
		copy(dst.data[dstBase:dstBase+int(src.cols)*es], src.data[srcBase:srcBase+int(src.cols)*es])
	}
}

// mustInsert faults when the table rejected an insert (closed host).
func (h *Host) mustInsert(hd handle.Handle) handle.Handle {
	if hd == 0 {
		result.Raise(result.CodeError, "handle table closed")
	}
	return hd
}
