package hostlib

import (
	"context"
	"encoding/binary"
	"math"

	"github.com/wippyai/cv-bridge/cvcore"
	"github.com/wippyai/cv-bridge/result"
)

// Superpixel state shared by the three algorithms: a fixed block grid over
// the image. Iterate is accepted but the grid is already converged.
type superpixelState struct {
	rows, cols     int32
	blockH, blockW int32
	channels       int32
	iterations     int32
	minBlock       int32 // EnforceLabelConnectivity floor
}

func (s *superpixelState) gridRows() int32 { return (s.rows + s.blockH - 1) / s.blockH }
func (s *superpixelState) gridCols() int32 { return (s.cols + s.blockW - 1) / s.blockW }

func (s *superpixelState) count() int32 { return s.gridRows() * s.gridCols() }

func (s *superpixelState) labelAt(y, x int32) int32 {
	return (y/s.blockH)*s.gridCols() + x/s.blockW
}

// labels renders the grid as a 32SC1 mat.
func (s *superpixelState) labels() *mat {
	out := newMat(s.rows, s.cols, cvcore.MatType32SC1)
	for y := int32(0); y < s.rows; y++ {
		for x := int32(0); x < s.cols; x++ {
			off := (int(y)*int(s.cols) + int(x)) * 4
			binary.LittleEndian.PutUint32(out.data[off:], uint32(s.labelAt(y, x)))
		}
	}
	return out
}

// contourMask renders block boundaries as a 8UC1 mask.
func (s *superpixelState) contourMask(thick bool) *mat {
	out := newMat(s.rows, s.cols, cvcore.MatType8UC1)
	for y := int32(0); y < s.rows; y++ {
		for x := int32(0); x < s.cols; x++ {
			onEdge := (x+1 < s.cols && s.labelAt(y, x) != s.labelAt(y, x+1)) ||
				(y+1 < s.rows && s.labelAt(y, x) != s.labelAt(y+1, x))
			if thick && !onEdge {
				onEdge = (x > 0 && s.labelAt(y, x) != s.labelAt(y, x-1)) ||
					(y > 0 && s.labelAt(y, x) != s.labelAt(y-1, x))
			}
			if onEdge {
				out.data[int(y)*int(s.cols)+int(x)] = 255
			}
		}
	}
	return out
}

func (s *superpixelState) enforce(minElementSize int32) {
	if minElementSize < 0 {
		result.Raise(result.CodeBadArg, "minElementSize must be non-negative, got %d", minElementSize)
	}
	s.minBlock = minElementSize
	if s.blockH < minElementSize {
		s.blockH = minElementSize
	}
	if s.blockW < minElementSize {
		s.blockW = minElementSize
	}
}

type guidedFilterState struct {
	guide  *mat
	radius int32
	eps    float64
}

type dtFilterState struct {
	guide        *mat
	sigmaSpatial float64
	sigmaColor   float64
	mode         int32
	numIters     int32
}

type amFilterState struct {
	sigmaS         float64
	sigmaR         float64
	treeHeight     int32
	pcaIterations  int32
	adjustOutliers bool
	useRNG         bool
}

type rfFeatureGetter struct{}

type edgeDetection struct {
	modelPath string
}

type graphSegmentation struct {
	sigma   float64
	k       float32
	minSize int32
}

type fastLineDetector struct {
	lengthThreshold   int32
	distanceThreshold float32
	doMerge           bool
}

func argVec4fs(args []any, i int) []cvcore.Vec4f {
	if v, ok := args[i].([]cvcore.Vec4f); ok {
		return v
	}
	result.Raise(result.CodeBadArg, "argument %d: expected vec4f list, got %T", i, args[i])
	return nil
}

// boxBlur8u box-filters an 8-bit mat with a clamped square window. Other
// depths pass through unchanged; the geometry and type contract is what
// callers rely on.
func boxBlur8u(src *mat, radius int32) *mat {
	if cvcore.MatTypeDepth(src.matType) != 0 || radius < 1 {
		return src.clone()
	}
	chans := int32(cvcore.MatTypeChannels(src.matType))
	out := newMat(src.rows, src.cols, src.matType)
	for y := int32(0); y < src.rows; y++ {
		for x := int32(0); x < src.cols; x++ {
			for c := int32(0); c < chans; c++ {
				var sum, n int32
				for dy := -radius; dy <= radius; dy++ {
					for dx := -radius; dx <= radius; dx++ {
						yy, xx := y+dy, x+dx
						if yy < 0 || xx < 0 || yy >= src.rows || xx >= src.cols {
							continue
						}
						sum += int32(src.data[(int(yy)*int(src.cols)+int(xx))*int(chans)+int(c)])
						n++
					}
				}
				out.data[(int(y)*int(src.cols)+int(x))*int(chans)+int(c)] = byte(sum / n)
			}
		}
	}
	return out
}

func f32At(m *mat, y, x, c int32) float32 {
	chans := cvcore.MatTypeChannels(m.matType)
	off := ((int(y)*int(m.cols) + int(x)) * int(chans) + int(c)) * 4
	return math.Float32frombits(binary.LittleEndian.Uint32(m.data[off:]))
}

func setF32(m *mat, y, x, c int32, v float32) {
	chans := cvcore.MatTypeChannels(m.matType)
	off := ((int(y)*int(m.cols) + int(x)) * int(chans) + int(c)) * 4
	binary.LittleEndian.PutUint32(m.data[off:], math.Float32bits(v))
}

// gradientMagnitude computes a first-channel finite-difference edge map of
// a 32FC3 image, normalized to [0, 1].
func gradientMagnitude(src *mat) *mat {
	out := newMat(src.rows, src.cols, cvcore.MatType32FC1)
	var peak float32
	for y := int32(0); y < src.rows; y++ {
		for x := int32(0); x < src.cols; x++ {
			var gx, gy float32
			if x+1 < src.cols {
				gx = f32At(src, y, x+1, 0) - f32At(src, y, x, 0)
			}
			if y+1 < src.rows {
				gy = f32At(src, y+1, x, 0) - f32At(src, y, x, 0)
			}
			m := abs32(gx) + abs32(gy)
			setF32(out, y, x, 0, m)
			if m > peak {
				peak = m
			}
		}
	}
	if peak > 0 {
		for y := int32(0); y < out.rows; y++ {
			for x := int32(0); x < out.cols; x++ {
				setF32(out, y, x, 0, f32At(out, y, x, 0)/peak)
			}
		}
	}
	return out
}

// erodeOnce zeroes 8UC1 pixels whose full 3x3 neighborhood is set, which
// peels one layer off every stroke.
func erodeOnce(src *mat) *mat {
	out := src.clone()
	for y := int32(1); y+1 < src.rows; y++ {
		for x := int32(1); x+1 < src.cols; x++ {
			all := true
			for dy := int32(-1); dy <= 1 && all; dy++ {
				for dx := int32(-1); dx <= 1; dx++ {
					if src.data[int(y+dy)*int(src.cols)+int(x+dx)] == 0 {
						all = false
						break
					}
				}
			}
			if all {
				out.data[int(y)*int(src.cols)+int(x)] = 0
			}
		}
	}
	return out
}

// localMeanThreshold binarizes with a clamped-window mean threshold shifted
// by k times the window's standard deviation.
func localMeanThreshold(src *mat, maxValue float64, thresholdType, blockSize int32, k float64) *mat {
	requireGray(src)
	if blockSize < 3 || blockSize%2 == 0 {
		result.Raise(result.CodeBadArg, "blockSize must be odd and at least 3, got %d", blockSize)
	}
	if thresholdType != 0 && thresholdType != 1 {
		result.Raise(result.CodeBadArg, "thresholdType must be binary or binary-inverted")
	}
	r := blockSize / 2
	out := newMat(src.rows, src.cols, cvcore.MatType8UC1)
	for y := int32(0); y < src.rows; y++ {
		for x := int32(0); x < src.cols; x++ {
			var sum, sq, n float64
			for dy := -r; dy <= r; dy++ {
				for dx := -r; dx <= r; dx++ {
					yy, xx := y+dy, x+dx
					if yy < 0 || xx < 0 || yy >= src.rows || xx >= src.cols {
						continue
					}
					v := float64(src.data[int(yy)*int(src.cols)+int(xx)])
					sum += v
					sq += v * v
					n++
				}
			}
			mean := sum / n
			stddev := math.Sqrt(sq/n - mean*mean)
			thresh := mean + k*stddev
			v := float64(src.data[int(y)*int(src.cols)+int(x)])
			above := v > thresh
			if thresholdType == 1 {
				above = !above
			}
			if above {
				out.data[int(y)*int(src.cols)+int(x)] = byte(maxValue)
			}
		}
	}
	return out
}

func requireGeometryMatch(a, b *mat) {
	if a.rows != b.rows || a.cols != b.cols {
		result.Raise(result.CodeBadSize, "image geometry mismatch: %dx%d vs %dx%d", a.rows, a.cols, b.rows, b.cols)
	}
}

func newSuperpixelGrid(rows, cols, blockH, blockW, channels int32) *superpixelState {
	if rows < 1 || cols < 1 {
		result.Raise(result.CodeBadSize, "empty input image")
	}
	if blockH < 1 || blockW < 1 {
		result.Raise(result.CodeBadArg, "region size must be positive")
	}
	if blockH > rows {
		blockH = rows
	}
	if blockW > cols {
		blockW = cols
	}
	return &superpixelState{rows: rows, cols: cols, blockH: blockH, blockW: blockW, channels: channels}
}

func (h *Host) ximgprocFuncs() map[string]hostFunc {
	ns := "cv:ximgproc#"
	funcs := map[string]hostFunc{
		ns + "guided-filter.create": func(_ context.Context, args []any) any {
			guide := h.matAt(argHandle(args, 0))
			radius := argI32(args, 1)
			eps := argF64(args, 2)
			requireImage(guide)
			if radius < 1 {
				result.Raise(result.CodeBadArg, "radius must be positive, got %d", radius)
			}
			return h.mustInsert(h.table.InsertShared(typeGuidedFilter,
				&guidedFilterState{guide: guide.clone(), radius: radius, eps: eps}))
		},
		ns + "guided-filter.filter": func(_ context.Context, args []any) any {
			f := h.get(argHandle(args, 0), typeGuidedFilter).(*guidedFilterState)
			src := h.matAt(argHandle(args, 1))
			requireImage(src)
			requireGeometryMatch(src, f.guide)
			return h.insertMat(boxBlur8u(src, f.radius))
		},
		ns + "guided-filter.destroy": func(_ context.Context, args []any) any {
			h.remove(argHandle(args, 0))
			return nil
		},

		ns + "dt-filter.create": func(_ context.Context, args []any) any {
			guide := h.matAt(argHandle(args, 0))
			requireImage(guide)
			mode := argI32(args, 3)
			if mode < 0 || mode > 2 {
				result.Raise(result.CodeBadArg, "unknown domain transform mode %d", mode)
			}
			return h.mustInsert(h.table.InsertShared(typeDTFilter, &dtFilterState{
				guide:        guide.clone(),
				sigmaSpatial: argF64(args, 1),
				sigmaColor:   argF64(args, 2),
				mode:         mode,
				numIters:     argI32(args, 4),
			}))
		},
		ns + "dt-filter.filter": func(_ context.Context, args []any) any {
			f := h.get(argHandle(args, 0), typeDTFilter).(*dtFilterState)
			src := h.matAt(argHandle(args, 1))
			requireImage(src)
			requireGeometryMatch(src, f.guide)
			return h.insertMat(boxBlur8u(src, int32(f.sigmaSpatial/8)+1))
		},
		ns + "dt-filter.destroy": func(_ context.Context, args []any) any {
			h.remove(argHandle(args, 0))
			return nil
		},

		ns + "adaptive-manifold-filter.create": func(_ context.Context, args []any) any {
			sigmaS := argF64(args, 0)
			sigmaR := argF64(args, 1)
			if sigmaS <= 0 || sigmaR <= 0 {
				result.Raise(result.CodeBadArg, "sigmaS and sigmaR must be positive")
			}
			return h.mustInsert(h.table.InsertShared(typeAMFilter, &amFilterState{
				sigmaS: sigmaS, sigmaR: sigmaR, adjustOutliers: argBool(args, 2),
				treeHeight: -1, pcaIterations: 1, useRNG: true,
			}))
		},
		ns + "adaptive-manifold-filter.filter": func(_ context.Context, args []any) any {
			f := h.get(argHandle(args, 0), typeAMFilter).(*amFilterState)
			src := h.matAt(argHandle(args, 1))
			joint := h.optMatAt(argHandle(args, 2))
			requireImage(src)
			if joint != nil {
				requireGeometryMatch(src, joint)
			}
			return h.insertMat(boxBlur8u(src, int32(f.sigmaS/8)+1))
		},
		ns + "adaptive-manifold-filter.collect-garbage": func(_ context.Context, args []any) any {
			h.get(argHandle(args, 0), typeAMFilter)
			return nil
		},
		ns + "adaptive-manifold-filter.sigma-s": func(_ context.Context, args []any) any {
			return h.get(argHandle(args, 0), typeAMFilter).(*amFilterState).sigmaS
		},
		ns + "adaptive-manifold-filter.set-sigma-s": func(_ context.Context, args []any) any {
			h.get(argHandle(args, 0), typeAMFilter).(*amFilterState).sigmaS = argF64(args, 1)
			return nil
		},
		ns + "adaptive-manifold-filter.sigma-r": func(_ context.Context, args []any) any {
			return h.get(argHandle(args, 0), typeAMFilter).(*amFilterState).sigmaR
		},
		ns + "adaptive-manifold-filter.set-sigma-r": func(_ context.Context, args []any) any {
			h.get(argHandle(args, 0), typeAMFilter).(*amFilterState).sigmaR = argF64(args, 1)
			return nil
		},
		ns + "adaptive-manifold-filter.tree-height": func(_ context.Context, args []any) any {
			return h.get(argHandle(args, 0), typeAMFilter).(*amFilterState).treeHeight
		},
		ns + "adaptive-manifold-filter.set-tree-height": func(_ context.Context, args []any) any {
			h.get(argHandle(args, 0), typeAMFilter).(*amFilterState).treeHeight = argI32(args, 1)
			return nil
		},
		ns + "adaptive-manifold-filter.pca-iterations": func(_ context.Context, args []any) any {
			return h.get(argHandle(args, 0), typeAMFilter).(*amFilterState).pcaIterations
		},
		ns + "adaptive-manifold-filter.set-pca-iterations": func(_ context.Context, args []any) any {
			h.get(argHandle(args, 0), typeAMFilter).(*amFilterState).pcaIterations = argI32(args, 1)
			return nil
		},
		ns + "adaptive-manifold-filter.adjust-outliers": func(_ context.Context, args []any) any {
			return h.get(argHandle(args, 0), typeAMFilter).(*amFilterState).adjustOutliers
		},
		ns + "adaptive-manifold-filter.set-adjust-outliers": func(_ context.Context, args []any) any {
			h.get(argHandle(args, 0), typeAMFilter).(*amFilterState).adjustOutliers = argBool(args, 1)
			return nil
		},
		ns + "adaptive-manifold-filter.use-rng": func(_ context.Context, args []any) any {
			return h.get(argHandle(args, 0), typeAMFilter).(*amFilterState).useRNG
		},
		ns + "adaptive-manifold-filter.set-use-rng": func(_ context.Context, args []any) any {
			h.get(argHandle(args, 0), typeAMFilter).(*amFilterState).useRNG = argBool(args, 1)
			return nil
		},
		ns + "adaptive-manifold-filter.destroy": func(_ context.Context, args []any) any {
			h.remove(argHandle(args, 0))
			return nil
		},

		ns + "guided-filter-fn": func(_ context.Context, args []any) any {
			guide := h.matAt(argHandle(args, 0))
			src := h.matAt(argHandle(args, 1))
			radius := argI32(args, 2)
			requireImage(guide)
			requireImage(src)
			requireGeometryMatch(src, guide)
			if radius < 1 {
				result.Raise(result.CodeBadArg, "radius must be positive, got %d", radius)
			}
			return h.insertMat(boxBlur8u(src, radius))
		},
		ns + "dt-filter-fn": func(_ context.Context, args []any) any {
			guide := h.matAt(argHandle(args, 0))
			src := h.matAt(argHandle(args, 1))
			sigmaSpatial := argF64(args, 2)
			mode := argI32(args, 4)
			requireImage(guide)
			requireImage(src)
			requireGeometryMatch(src, guide)
			if mode < 0 || mode > 2 {
				result.Raise(result.CodeBadArg, "unknown domain transform mode %d", mode)
			}
			return h.insertMat(boxBlur8u(src, int32(sigmaSpatial/8)+1))
		},
		ns + "joint-bilateral-filter": func(_ context.Context, args []any) any {
			joint := h.matAt(argHandle(args, 0))
			src := h.matAt(argHandle(args, 1))
			diameter := argI32(args, 2)
			requireImage(joint)
			requireImage(src)
			requireGeometryMatch(src, joint)
			return h.insertMat(boxBlur8u(src, diameter/2))
		},
		ns + "bilateral-texture-filter": func(_ context.Context, args []any) any {
			src := h.matAt(argHandle(args, 0))
			fr := argI32(args, 1)
			numIter := argI32(args, 2)
			requireImage(src)
			if fr < 1 || numIter < 1 {
				result.Raise(result.CodeBadArg, "fr and numIter must be positive")
			}
			out := src.clone()
			for i := int32(0); i < numIter; i++ {
				out = boxBlur8u(out, fr)
			}
			return h.insertMat(out)
		},
		ns + "rolling-guidance-filter": func(_ context.Context, args []any) any {
			src := h.matAt(argHandle(args, 0))
			diameter := argI32(args, 1)
			numIter := argI32(args, 4)
			requireImage(src)
			if numIter < 1 {
				result.Raise(result.CodeBadArg, "numOfIter must be positive, got %d", numIter)
			}
			out := src.clone()
			for i := int32(0); i < numIter; i++ {
				out = boxBlur8u(out, diameter/2)
			}
			return h.insertMat(out)
		},
		ns + "l0-smooth": func(_ context.Context, args []any) any {
			src := h.matAt(argHandle(args, 0))
			lambda := argF64(args, 1)
			kappa := argF64(args, 2)
			requireImage(src)
			if lambda <= 0 || kappa <= 1 {
				result.Raise(result.CodeBadArg, "lambda must be positive and kappa greater than 1")
			}
			return h.insertMat(boxBlur8u(src, 1))
		},
		ns + "ni-black-threshold": func(_ context.Context, args []any) any {
			src := h.matAt(argHandle(args, 0))
			maxValue := argF64(args, 1)
			thresholdType := argI32(args, 2)
			blockSize := argI32(args, 3)
			k := argF64(args, 4)
			method := argI32(args, 5)
			if method < 0 || method > 3 {
				result.Raise(result.CodeBadArg, "unknown binarization method %d", method)
			}
			return h.insertMat(localMeanThreshold(src, maxValue, thresholdType, blockSize, k))
		},
		ns + "thinning": func(_ context.Context, args []any) any {
			src := h.matAt(argHandle(args, 0))
			tt := argI32(args, 1)
			requireGray(src)
			if tt != 0 && tt != 1 {
				result.Raise(result.CodeBadArg, "unknown thinning type %d", tt)
			}
			return h.insertMat(erodeOnce(src))
		},

		ns + "rf-feature-getter.create": func(_ context.Context, _ []any) any {
			return h.mustInsert(h.table.InsertShared(typeRFFeatureGetter, &rfFeatureGetter{}))
		},
		ns + "rf-feature-getter.features": func(_ context.Context, args []any) any {
			h.get(argHandle(args, 0), typeRFFeatureGetter)
			src := h.matAt(argHandle(args, 1))
			shrink := argI32(args, 4)
			outNum := argI32(args, 5)
			requireImage(src)
			if src.matType != cvcore.MatType32FC3 {
				result.Raise(result.CodeUnsupportedFormat, "features expect a 32FC3 image, got type %d", src.matType)
			}
			if shrink < 1 || outNum < 1 {
				result.Raise(result.CodeBadArg, "shrink and outNum must be positive")
			}
			return h.insertMat(newMat(src.rows/shrink*outNum, src.cols/shrink, cvcore.MatType32FC1))
		},
		ns + "rf-feature-getter.destroy": func(_ context.Context, args []any) any {
			h.remove(argHandle(args, 0))
			return nil
		},

		ns + "structured-edge-detection.create": func(_ context.Context, args []any) any {
			path := argString(args, 0)
			if getter := argHandle(args, 1); getter != 0 {
				h.get(getter, typeRFFeatureGetter)
			}
			if path == "" {
				result.Raise(result.CodeBadArg, "model path must not be empty")
			}
			return h.mustInsert(h.table.InsertShared(typeEdgeDetection, &edgeDetection{modelPath: path}))
		},
		ns + "structured-edge-detection.detect-edges": func(_ context.Context, args []any) any {
			h.get(argHandle(args, 0), typeEdgeDetection)
			src := h.matAt(argHandle(args, 1))
			requireImage(src)
			if src.matType != cvcore.MatType32FC3 {
				result.Raise(result.CodeUnsupportedFormat, "detect-edges expects a 32FC3 image, got type %d", src.matType)
			}
			return h.insertMat(gradientMagnitude(src))
		},
		ns + "structured-edge-detection.compute-orientation": func(_ context.Context, args []any) any {
			h.get(argHandle(args, 0), typeEdgeDetection)
			edges := h.matAt(argHandle(args, 1))
			requireImage(edges)
			if edges.matType != cvcore.MatType32FC1 {
				result.Raise(result.CodeUnsupportedFormat, "orientation expects a 32FC1 edge map, got type %d", edges.matType)
			}
			return h.insertMat(newMat(edges.rows, edges.cols, cvcore.MatType32FC1))
		},
		ns + "structured-edge-detection.edges-nms": func(_ context.Context, args []any) any {
			h.get(argHandle(args, 0), typeEdgeDetection)
			edges := h.matAt(argHandle(args, 1))
			orientation := h.matAt(argHandle(args, 2))
			requireImage(edges)
			requireGeometryMatch(edges, orientation)
			return h.insertMat(edges.clone())
		},
		ns + "structured-edge-detection.destroy": func(_ context.Context, args []any) any {
			h.remove(argHandle(args, 0))
			return nil
		},

		ns + "graph-segmentation.create": func(_ context.Context, args []any) any {
			minSize := argI32(args, 2)
			if minSize < 1 {
				result.Raise(result.CodeBadArg, "minSize must be positive, got %d", minSize)
			}
			return h.mustInsert(h.table.InsertShared(typeGraphSegmentation, &graphSegmentation{
				sigma:   argF64(args, 0),
				k:       argF32(args, 1),
				minSize: minSize,
			}))
		},
		ns + "graph-segmentation.process-image": func(_ context.Context, args []any) any {
			g := h.get(argHandle(args, 0), typeGraphSegmentation).(*graphSegmentation)
			src := h.matAt(argHandle(args, 1))
			requireImage(src)
			block := g.minSize
			if block < 1 {
				block = 1
			}
			return h.insertMat(newSuperpixelGrid(src.rows, src.cols, block, block, 1).labels())
		},
		ns + "graph-segmentation.sigma": func(_ context.Context, args []any) any {
			return h.get(argHandle(args, 0), typeGraphSegmentation).(*graphSegmentation).sigma
		},
		ns + "graph-segmentation.set-sigma": func(_ context.Context, args []any) any {
			h.get(argHandle(args, 0), typeGraphSegmentation).(*graphSegmentation).sigma = argF64(args, 1)
			return nil
		},
		ns + "graph-segmentation.k": func(_ context.Context, args []any) any {
			return h.get(argHandle(args, 0), typeGraphSegmentation).(*graphSegmentation).k
		},
		ns + "graph-segmentation.set-k": func(_ context.Context, args []any) any {
			h.get(argHandle(args, 0), typeGraphSegmentation).(*graphSegmentation).k = argF32(args, 1)
			return nil
		},
		ns + "graph-segmentation.min-size": func(_ context.Context, args []any) any {
			return h.get(argHandle(args, 0), typeGraphSegmentation).(*graphSegmentation).minSize
		},
		ns + "graph-segmentation.set-min-size": func(_ context.Context, args []any) any {
			v := argI32(args, 1)
			if v < 1 {
				result.Raise(result.CodeBadArg, "minSize must be positive, got %d", v)
			}
			h.get(argHandle(args, 0), typeGraphSegmentation).(*graphSegmentation).minSize = v
			return nil
		},
		ns + "graph-segmentation.destroy": func(_ context.Context, args []any) any {
			h.remove(argHandle(args, 0))
			return nil
		},

		ns + "fast-line-detector.create": func(_ context.Context, args []any) any {
			lengthThreshold := argI32(args, 0)
			distanceThreshold := argF32(args, 1)
			aperture := argI32(args, 4)
			if lengthThreshold < 1 || distanceThreshold <= 0 {
				result.Raise(result.CodeBadArg, "thresholds must be positive")
			}
			if aperture != 0 && (aperture%2 == 0 || aperture < 3 || aperture > 7) {
				result.Raise(result.CodeBadArg, "cannyApertureSize must be 0 or odd in [3, 7], got %d", aperture)
			}
			return h.mustInsert(h.table.InsertShared(typeFastLineDetector, &fastLineDetector{
				lengthThreshold:   lengthThreshold,
				distanceThreshold: distanceThreshold,
				doMerge:           argBool(args, 5),
			}))
		},
		ns + "fast-line-detector.detect": func(_ context.Context, args []any) any {
			f := h.get(argHandle(args, 0), typeFastLineDetector).(*fastLineDetector)
			img := h.matAt(argHandle(args, 1))
			requireGray(img)
			var out []cvcore.Vec4f
			for _, kl := range gridLines(img, nil, 1, 2) {
				if int32(kl.LineLength) < f.lengthThreshold {
					continue
				}
				out = append(out, cvcore.Vec4f{
					V0: kl.StartPointX, V1: kl.StartPointY,
					V2: kl.EndPointX, V3: kl.EndPointY,
				})
			}
			return out
		},
		ns + "fast-line-detector.draw-segments": func(_ context.Context, args []any) any {
			h.get(argHandle(args, 0), typeFastLineDetector)
			img := h.matAt(argHandle(args, 1))
			lines := argVec4fs(args, 2)
			requireImage(img)
			out := img.clone()
			for _, l := range lines {
				drawSegment(out, l.V0, l.V1, l.V2, l.V3, cvcore.Scalar{V0: 255, V1: 0, V2: 0})
			}
			return h.insertMat(out)
		},
		ns + "fast-line-detector.destroy": func(_ context.Context, args []any) any {
			h.remove(argHandle(args, 0))
			return nil
		},
	}

	h.registerSuperpixels(funcs, ns)
	return funcs
}

// registerSuperpixels wires the three superpixel families, which share the
// block-grid state behind different creation signatures.
func (h *Host) registerSuperpixels(funcs map[string]hostFunc, ns string) {
	type family struct {
		prefix  string
		typeID  uint32
		enforce bool
	}
	families := []family{
		{"superpixel-slic.", typeSLIC, true},
		{"superpixel-seeds.", typeSEEDS, false},
		{"superpixel-lsc.", typeLSC, true},
	}

	funcs[ns+"superpixel-slic.create"] = func(_ context.Context, args []any) any {
		img := h.matAt(argHandle(args, 0))
		algorithm := argI32(args, 1)
		regionSize := argI32(args, 2)
		requireImage(img)
		if algorithm < 100 || algorithm > 102 {
			result.Raise(result.CodeBadArg, "unknown SLIC algorithm %d", algorithm)
		}
		s := newSuperpixelGrid(img.rows, img.cols, regionSize, regionSize, cvcore.MatTypeChannels(img.matType))
		return h.mustInsert(h.table.InsertShared(typeSLIC, s))
	}
	funcs[ns+"superpixel-seeds.create"] = func(_ context.Context, args []any) any {
		width, height, channels := argI32(args, 0), argI32(args, 1), argI32(args, 2)
		numSuperpixels := argI32(args, 3)
		if numSuperpixels < 1 {
			result.Raise(result.CodeBadArg, "numSuperpixels must be positive, got %d", numSuperpixels)
		}
		side := int32(math.Ceil(math.Sqrt(float64(numSuperpixels))))
		s := newSuperpixelGrid(height, width, (height+side-1)/side, (width+side-1)/side, channels)
		return h.mustInsert(h.table.InsertShared(typeSEEDS, s))
	}
	funcs[ns+"superpixel-seeds.iterate"] = func(_ context.Context, args []any) any {
		s := h.get(argHandle(args, 0), typeSEEDS).(*superpixelState)
		img := h.matAt(argHandle(args, 1))
		requireImage(img)
		if img.rows != s.rows || img.cols != s.cols || cvcore.MatTypeChannels(img.matType) != s.channels {
			result.Raise(result.CodeBadSize, "image does not match the segmentation geometry")
		}
		s.iterations += argI32(args, 2)
		return nil
	}
	funcs[ns+"superpixel-lsc.create"] = func(_ context.Context, args []any) any {
		img := h.matAt(argHandle(args, 0))
		regionSize := argI32(args, 1)
		ratio := argF32(args, 2)
		requireImage(img)
		if ratio <= 0 {
			result.Raise(result.CodeBadArg, "ratio must be positive")
		}
		s := newSuperpixelGrid(img.rows, img.cols, regionSize, regionSize, cvcore.MatTypeChannels(img.matType))
		return h.mustInsert(h.table.InsertShared(typeLSC, s))
	}

	for _, fam := range families {
		fam := fam
		if fam.typeID != typeSEEDS {
			funcs[ns+fam.prefix+"iterate"] = func(_ context.Context, args []any) any {
				s := h.get(argHandle(args, 0), fam.typeID).(*superpixelState)
				s.iterations += argI32(args, 1)
				return nil
			}
		}
		funcs[ns+fam.prefix+"number-of-superpixels"] = func(_ context.Context, args []any) any {
			return h.get(argHandle(args, 0), fam.typeID).(*superpixelState).count()
		}
		funcs[ns+fam.prefix+"labels"] = func(_ context.Context, args []any) any {
			return h.insertMat(h.get(argHandle(args, 0), fam.typeID).(*superpixelState).labels())
		}
		funcs[ns+fam.prefix+"label-contour-mask"] = func(_ context.Context, args []any) any {
			return h.insertMat(h.get(argHandle(args, 0), fam.typeID).(*superpixelState).contourMask(argBool(args, 1)))
		}
		if fam.enforce {
			funcs[ns+fam.prefix+"enforce-label-connectivity"] = func(_ context.Context, args []any) any {
				h.get(argHandle(args, 0), fam.typeID).(*superpixelState).enforce(argI32(args, 1))
				return nil
			}
		}
		funcs[ns+fam.prefix+"destroy"] = func(_ context.Context, args []any) any {
			h.remove(argHandle(args, 0))
			return nil
		}
	}
}
