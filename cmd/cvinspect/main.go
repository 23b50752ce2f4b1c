package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/cv-bridge/boundary"
	"github.com/wippyai/cv-bridge/cvcore"
	"github.com/wippyai/cv-bridge/hostlib"
	"github.com/wippyai/cv-bridge/linedesc"
	"github.com/wippyai/cv-bridge/wasmhost"
	"github.com/wippyai/cv-bridge/ximgproc"
)

func main() {
	var (
		list        = flag.Bool("list", false, "List registered operations and exit")
		namespace   = flag.String("ns", "", "Restrict -list to one namespace")
		demo        = flag.Bool("demo", false, "Run a demonstration pipeline")
		wasmFile    = flag.String("wasm", "", "Dispatch against a wasm shim instead of the in-process host")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
		verbose     = flag.Bool("v", false, "Verbose logging")
	)
	flag.Parse()

	if *verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer logger.Sync()
		boundary.SetLogger(logger.Named("boundary"))
		hostlib.SetLogger(logger.Named("hostlib"))
		wasmhost.SetLogger(logger.Named("wasmhost"))
	}

	switch {
	case *list:
		listOps(*namespace)
	case *interactive:
		if err := runInteractive(*wasmFile); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case *demo:
		if err := runDemo(*wasmFile); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	default:
		fmt.Fprintln(os.Stderr, "Usage: cvinspect -list [-ns namespace]")
		fmt.Fprintln(os.Stderr, "       cvinspect -demo [-wasm file.wasm]")
		fmt.Fprintln(os.Stderr, "       cvinspect -i  (interactive mode)")
		os.Exit(1)
	}
}

func listOps(namespace string) {
	reg := boundary.Default()
	for _, ns := range reg.Namespaces() {
		if namespace != "" && ns != namespace {
			continue
		}
		fmt.Printf("%s\n", ns)
		for _, op := range reg.Ops(ns) {
			fmt.Printf("  %-55s %-11s %s\n", op.Name, op.Kind, signature(op))
		}
	}
	fmt.Printf("\n%d operations\n", reg.Len())
}

func signature(op *boundary.Op) string {
	params := make([]string, len(op.Params))
	for i, p := range op.Params {
		params[i] = p.String()
	}
	sig := "(" + strings.Join(params, ", ") + ")"
	if op.Result != boundary.ShapeUnit {
		sig += " -> " + op.Result.String()
	}
	return sig
}

// newDispatcher picks the backend: the in-process host, or a wasm shim when
// a guest binary is given.
func newDispatcher(ctx context.Context, wasmFile string) (boundary.Dispatcher, func(), error) {
	if wasmFile == "" {
		host := hostlib.New()
		return host, func() { host.Close() }, nil
	}
	guest, err := os.ReadFile(wasmFile)
	if err != nil {
		return nil, nil, fmt.Errorf("read guest: %w", err)
	}
	backend, err := wasmhost.New(ctx, guest)
	if err != nil {
		return nil, nil, err
	}
	return backend, func() { backend.Close(ctx) }, nil
}

// runDemo exercises the main extraction pipeline end to end and prints
// what each stage produced.
func runDemo(wasmFile string) error {
	ctx := context.Background()
	d, cleanup, err := newDispatcher(ctx, wasmFile)
	if err != nil {
		return err
	}
	defer cleanup()

	img, err := syntheticImage(ctx, d, 128, 192)
	if err != nil {
		return err
	}
	defer img.Close(ctx)
	fmt.Println("image: 128x192 8UC1 synthetic test pattern")

	bd, fault := linedesc.CreateBinaryDescriptor(ctx, d).Get()
	if fault != nil {
		return fault
	}
	defer bd.Close(ctx)

	keylines, fault := bd.Detect(ctx, img, nil).Get()
	if fault != nil {
		return fault
	}
	fmt.Printf("binary-descriptor.detect: %d keylines\n", len(keylines))

	descriptors, fault := bd.Compute(ctx, img, keylines, false).Get()
	if fault != nil {
		return fault
	}
	defer descriptors.Close(ctx)
	rows := descriptors.Rows(ctx).Must()
	cols := descriptors.Cols(ctx).Must()
	fmt.Printf("binary-descriptor.compute: %dx%d descriptor matrix\n", rows, cols)

	matcher, fault := linedesc.CreateBinaryDescriptorMatcher(ctx, d).Get()
	if fault != nil {
		return fault
	}
	defer matcher.Close(ctx)

	matches, fault := matcher.Match(ctx, descriptors, descriptors, nil).Get()
	if fault != nil {
		return fault
	}
	fmt.Printf("matcher.match: %d matches (self-match)\n", len(matches))

	lsd, fault := linedesc.CreateLSDDetector(ctx, d).Get()
	if fault != nil {
		return fault
	}
	defer lsd.Close(ctx)
	lsdLines, fault := lsd.Detect(ctx, img, 2, 2, nil).Get()
	if fault != nil {
		return fault
	}
	fmt.Printf("lsd-detector.detect: %d keylines over 2 octaves\n", len(lsdLines))

	slic, fault := ximgproc.CreateSuperpixelSLIC(ctx, d, img, ximgproc.SLICO, 16, 10).Get()
	if fault != nil {
		return fault
	}
	defer slic.Close(ctx)
	if r := slic.Iterate(ctx, 10); r.IsErr() {
		return r.Fault()
	}
	count := slic.NumberOfSuperpixels(ctx).Must()
	fmt.Printf("superpixel-slic: %d superpixels\n", count)

	fld, fault := ximgproc.CreateFastLineDetector(ctx, d, 10, 1.41, 50, 50, 3, false).Get()
	if fault != nil {
		return fault
	}
	defer fld.Close(ctx)
	segments, fault := fld.Detect(ctx, img).Get()
	if fault != nil {
		return fault
	}
	fmt.Printf("fast-line-detector.detect: %d segments\n", len(segments))

	return nil
}

// syntheticImage builds a gray gradient with horizontal strokes, enough
// structure for every detector in the demo.
func syntheticImage(ctx context.Context, d boundary.Dispatcher, rows, cols int32) (*cvcore.Mat, error) {
	data := make([]byte, rows*cols)
	for y := int32(0); y < rows; y++ {
		for x := int32(0); x < cols; x++ {
			v := byte((x * 255) / cols)
			if y%24 < 2 {
				v = 255
			}
			data[y*cols+x] = v
		}
	}
	res := cvcore.NewMatFromBytes(ctx, d, rows, cols, cvcore.MatType8UC1, data)
	if res.IsErr() {
		return nil, res.Fault()
	}
	return res.Value(), nil
}
