package linedesc_test

import (
	"context"
	"testing"

	"github.com/wippyai/cv-bridge/cvcore"
	"github.com/wippyai/cv-bridge/hostlib"
	"github.com/wippyai/cv-bridge/linedesc"
	"github.com/wippyai/cv-bridge/result"
)

func testImage(t *testing.T, ctx context.Context, host *hostlib.Host, rows, cols int32) *cvcore.Mat {
	t.Helper()
	data := make([]byte, rows*cols)
	for y := int32(0); y < rows; y++ {
		for x := int32(0); x < cols; x++ {
			data[y*cols+x] = byte(x)
		}
	}
	return cvcore.NewMatFromBytes(ctx, host, rows, cols, cvcore.MatType8UC1, data).Must()
}

func TestParams_RoundTrip(t *testing.T) {
	ctx := context.Background()
	host := hostlib.New()
	defer host.Close()

	p := linedesc.NewBinaryDescriptorParams(ctx, host).Must()
	defer p.Close(ctx)

	// Native defaults.
	if got := p.NumOfOctaves(ctx).Must(); got != 1 {
		t.Fatalf("default numOfOctaves == %d", got)
	}
	if got := p.WidthOfBand(ctx).Must(); got != 7 {
		t.Fatalf("default widthOfBand == %d", got)
	}
	if got := p.ReductionRatio(ctx).Must(); got != 2 {
		t.Fatalf("default reductionRatio == %d", got)
	}

	if r := p.SetNumOfOctaves(ctx, 3); r.IsErr() {
		t.Fatalf("SetNumOfOctaves: %v", r.Fault())
	}
	if got := p.NumOfOctaves(ctx).Must(); got != 3 {
		t.Fatalf("numOfOctaves after set == %d", got)
	}

	if r := p.SetWidthOfBand(ctx, 0); !r.IsErr() || r.Fault().Code != result.CodeBadArg {
		t.Fatal("zero widthOfBand should fault with bad_arg")
	}
	// A rejected set must not change observable state.
	if got := p.WidthOfBand(ctx).Must(); got != 7 {
		t.Fatalf("widthOfBand changed by failed set: %d", got)
	}
}

func TestParams_IndependentHandles(t *testing.T) {
	ctx := context.Background()
	host := hostlib.New()
	defer host.Close()

	p1 := linedesc.NewBinaryDescriptorParams(ctx, host).Must()
	defer p1.Close(ctx)
	p2 := linedesc.NewBinaryDescriptorParams(ctx, host).Must()
	defer p2.Close(ctx)

	// Mutations of distinct handles must not interfere, even concurrently.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			p1.SetNumOfOctaves(ctx, 1)
		}
	}()
	for i := 0; i < 100; i++ {
		p2.SetNumOfOctaves(ctx, 2)
	}
	<-done

	if got := p1.NumOfOctaves(ctx).Must(); got != 1 {
		t.Fatalf("p1 numOfOctaves == %d", got)
	}
	if got := p2.NumOfOctaves(ctx).Must(); got != 2 {
		t.Fatalf("p2 numOfOctaves == %d", got)
	}
}

func TestBinaryDescriptor_DetectAndCompute(t *testing.T) {
	ctx := context.Background()
	host := hostlib.New()
	defer host.Close()

	img := testImage(t, ctx, host, 64, 96)
	defer img.Close(ctx)

	bd := linedesc.CreateBinaryDescriptor(ctx, host).Must()
	defer bd.Close(ctx)

	keylines := bd.Detect(ctx, img, nil).Must()
	if len(keylines) == 0 {
		t.Fatal("no keylines detected")
	}
	for i, kl := range keylines {
		if kl.ClassID != int32(i) {
			t.Errorf("keyline %d has classID %d", i, kl.ClassID)
		}
		if kl.StartPointY != kl.EndPointY {
			t.Errorf("keyline %d is not horizontal", i)
		}
		if kl.LineLength <= 0 {
			t.Errorf("keyline %d has non-positive length", i)
		}
		mid := kl.StartPoint().X + (kl.EndPoint().X-kl.StartPoint().X)/2
		if kl.Pt.X != mid {
			t.Errorf("keyline %d midpoint off: %v vs %v", i, kl.Pt.X, mid)
		}
	}

	desc := bd.Compute(ctx, img, keylines, false).Must()
	defer desc.Close(ctx)
	if got := desc.Rows(ctx).Must(); got != int32(len(keylines)) {
		t.Fatalf("descriptor rows == %d, want %d", got, len(keylines))
	}
	if got := desc.Cols(ctx).Must(); got != bd.DescriptorSize(ctx).Must() {
		t.Fatalf("descriptor cols == %d", got)
	}
	if got := desc.Type(ctx).Must(); got != bd.DescriptorType(ctx).Must() {
		t.Fatalf("descriptor type == %d", got)
	}
}

func TestBinaryDescriptor_EmptyImageFaults(t *testing.T) {
	ctx := context.Background()
	host := hostlib.New()
	defer host.Close()

	empty := cvcore.NewMat(ctx, host).Must()
	defer empty.Close(ctx)

	bd := linedesc.CreateBinaryDescriptor(ctx, host).Must()
	defer bd.Close(ctx)

	r := bd.Detect(ctx, empty, nil)
	if !r.IsErr() {
		t.Fatal("detect on empty image should fault")
	}
	if r.Fault().Code != result.CodeBadSize {
		t.Fatalf("code %s", r.Fault().Code)
	}
}

func TestBinaryDescriptor_OctaveSetting(t *testing.T) {
	ctx := context.Background()
	host := hostlib.New()
	defer host.Close()

	img := testImage(t, ctx, host, 128, 128)
	defer img.Close(ctx)

	bd := linedesc.CreateBinaryDescriptor(ctx, host).Must()
	defer bd.Close(ctx)

	one := len(bd.Detect(ctx, img, nil).Must())
	if r := bd.SetNumOfOctaves(ctx, 2); r.IsErr() {
		t.Fatalf("SetNumOfOctaves: %v", r.Fault())
	}
	two := len(bd.Detect(ctx, img, nil).Must())
	if two <= one {
		t.Fatalf("expected more keylines with 2 octaves: %d vs %d", two, one)
	}
	for _, kl := range bd.Detect(ctx, img, nil).Must() {
		if kl.Octave != 0 && kl.Octave != 1 {
			t.Fatalf("unexpected octave %d", kl.Octave)
		}
	}
}

func TestMatcher_SelfMatch(t *testing.T) {
	ctx := context.Background()
	host := hostlib.New()
	defer host.Close()

	img := testImage(t, ctx, host, 64, 96)
	defer img.Close(ctx)

	bd := linedesc.CreateBinaryDescriptor(ctx, host).Must()
	defer bd.Close(ctx)
	keylines := bd.Detect(ctx, img, nil).Must()
	desc := bd.Compute(ctx, img, keylines, false).Must()
	defer desc.Close(ctx)

	m := linedesc.CreateBinaryDescriptorMatcher(ctx, host).Must()
	defer m.Close(ctx)

	matches := m.Match(ctx, desc, desc, nil).Must()
	if len(matches) != len(keylines) {
		t.Fatalf("%d matches for %d descriptors", len(matches), len(keylines))
	}
	for _, mt := range matches {
		if mt.QueryIdx != mt.TrainIdx {
			t.Errorf("self-match paired %d with %d", mt.QueryIdx, mt.TrainIdx)
		}
		if mt.Distance != 0 {
			t.Errorf("self-match distance %v", mt.Distance)
		}
	}
}

func TestMatcher_KnnLimit(t *testing.T) {
	ctx := context.Background()
	host := hostlib.New()
	defer host.Close()

	img := testImage(t, ctx, host, 96, 96)
	defer img.Close(ctx)

	bd := linedesc.CreateBinaryDescriptor(ctx, host).Must()
	defer bd.Close(ctx)
	desc := bd.Compute(ctx, img, bd.Detect(ctx, img, nil).Must(), false).Must()
	defer desc.Close(ctx)

	m := linedesc.CreateBinaryDescriptorMatcher(ctx, host).Must()
	defer m.Close(ctx)

	rows := m.KnnMatch(ctx, desc, desc, 2, nil, false).Must()
	if len(rows) != int(desc.Rows(ctx).Must()) {
		t.Fatalf("%d rows", len(rows))
	}
	for i, row := range rows {
		if len(row) != 2 {
			t.Fatalf("row %d has %d matches, want 2", i, len(row))
		}
		if row[0].Distance > row[1].Distance {
			t.Errorf("row %d not sorted by distance", i)
		}
	}
}

func TestMatcher_TrainedFlow(t *testing.T) {
	ctx := context.Background()
	host := hostlib.New()
	defer host.Close()

	img := testImage(t, ctx, host, 64, 96)
	defer img.Close(ctx)

	bd := linedesc.CreateBinaryDescriptor(ctx, host).Must()
	defer bd.Close(ctx)
	desc := bd.Compute(ctx, img, bd.Detect(ctx, img, nil).Must(), false).Must()
	defer desc.Close(ctx)

	m := linedesc.CreateBinaryDescriptorMatcher(ctx, host).Must()
	defer m.Close(ctx)

	// Matching before train faults.
	if r := m.MatchTrained(ctx, desc); !r.IsErr() {
		t.Fatal("match against untrained dataset should fault")
	}

	if r := m.Add(ctx, desc); r.IsErr() {
		t.Fatalf("Add: %v", r.Fault())
	}
	if r := m.Train(ctx); r.IsErr() {
		t.Fatalf("Train: %v", r.Fault())
	}

	matches := m.MatchTrained(ctx, desc).Must()
	if len(matches) == 0 {
		t.Fatal("no trained matches")
	}
	for _, mt := range matches {
		if mt.ImgIdx != 0 {
			t.Errorf("ImgIdx %d, want 0", mt.ImgIdx)
		}
	}

	if r := m.Clear(ctx); r.IsErr() {
		t.Fatalf("Clear: %v", r.Fault())
	}
	if r := m.MatchTrained(ctx, desc); !r.IsErr() {
		t.Fatal("match after Clear should fault")
	}
}

func TestLSDDetector_Octaves(t *testing.T) {
	ctx := context.Background()
	host := hostlib.New()
	defer host.Close()

	img := testImage(t, ctx, host, 128, 128)
	defer img.Close(ctx)

	lsd := linedesc.CreateLSDDetector(ctx, host).Must()
	defer lsd.Close(ctx)

	keylines := lsd.Detect(ctx, img, 2, 2, nil).Must()
	if len(keylines) == 0 {
		t.Fatal("no keylines")
	}
	sawOctave1 := false
	for _, kl := range keylines {
		if kl.Octave == 1 {
			sawOctave1 = true
			// Octave coordinates scale back to base image space.
			if kl.EndPointX != kl.EPointInOctaveX*2 {
				t.Errorf("octave 1 endpoint not rescaled: %v vs %v", kl.EndPointX, kl.EPointInOctaveX)
			}
		}
	}
	if !sawOctave1 {
		t.Fatal("no keylines from the second octave")
	}

	if r := lsd.Detect(ctx, img, 0, 1, nil); !r.IsErr() || r.Fault().Code != result.CodeBadArg {
		t.Fatal("zero scale should fault with bad_arg")
	}
}

func TestDrawKeylines(t *testing.T) {
	ctx := context.Background()
	host := hostlib.New()
	defer host.Close()

	img := testImage(t, ctx, host, 32, 32)
	defer img.Close(ctx)
	out := cvcore.NewMat(ctx, host).Must()
	defer out.Close(ctx)

	bd := linedesc.CreateBinaryDescriptor(ctx, host).Must()
	defer bd.Close(ctx)
	keylines := bd.Detect(ctx, img, nil).Must()

	r := linedesc.DrawKeylines(ctx, host, img, keylines, out, cvcore.Scalar{V0: 255}, linedesc.DrawDefault)
	if r.IsErr() {
		t.Fatalf("DrawKeylines: %v", r.Fault())
	}
	if out.Rows(ctx).Must() != 32 || out.Cols(ctx).Must() != 32 {
		t.Fatal("output did not adopt the input geometry")
	}
}

func TestDrawLineMatches(t *testing.T) {
	ctx := context.Background()
	host := hostlib.New()
	defer host.Close()

	img1 := testImage(t, ctx, host, 32, 40)
	defer img1.Close(ctx)
	img2 := testImage(t, ctx, host, 32, 24)
	defer img2.Close(ctx)
	out := cvcore.NewMat(ctx, host).Must()
	defer out.Close(ctx)

	bd := linedesc.CreateBinaryDescriptor(ctx, host).Must()
	defer bd.Close(ctx)
	kl1 := bd.Detect(ctx, img1, nil).Must()
	kl2 := bd.Detect(ctx, img2, nil).Must()

	matches := []linedesc.DMatch{{QueryIdx: 0, TrainIdx: 0}}
	r := linedesc.DrawLineMatches(ctx, host, img1, kl1, img2, kl2, matches, out,
		cvcore.Scalar{V0: 255}, cvcore.Scalar{V0: 128}, linedesc.DrawDefault)
	if r.IsErr() {
		t.Fatalf("DrawLineMatches: %v", r.Fault())
	}
	if out.Cols(ctx).Must() != 64 {
		t.Fatalf("composite width %d, want 64", out.Cols(ctx).Must())
	}

	// Out-of-range match indexes fault instead of crashing.
	bad := []linedesc.DMatch{{QueryIdx: 99, TrainIdx: 0}}
	if r := linedesc.DrawLineMatches(ctx, host, img1, kl1, img2, kl2, bad, out,
		cvcore.Scalar{}, cvcore.Scalar{}, linedesc.DrawOverOutImg); !r.IsErr() {
		t.Fatal("bad match indexes should fault")
	}
}

func TestHandles_NoLeaksAfterPipeline(t *testing.T) {
	ctx := context.Background()
	host := hostlib.New()

	img := testImage(t, ctx, host, 64, 64)
	bd := linedesc.CreateBinaryDescriptor(ctx, host).Must()
	desc := bd.Compute(ctx, img, bd.Detect(ctx, img, nil).Must(), false).Must()
	m := linedesc.CreateBinaryDescriptorMatcher(ctx, host).Must()
	m.Match(ctx, desc, desc, nil).Must()

	m.Close(ctx)
	desc.Close(ctx)
	bd.Close(ctx)
	img.Close(ctx)

	if n := host.Table().Len(); n != 0 {
		t.Fatalf("leaked %d handles", n)
	}
	host.Close()
}
