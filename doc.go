// Package cvbridge is a result-transport boundary over a native
// computer-vision library's line-descriptor and extended image-processing
// modules.
//
// Every wrapped native call goes through one generic helper that converts
// the native tagged ok/err convention into Result[T]; the calls themselves
// are described by declarative operation tables instead of per-method
// wrapper bodies.
//
// # Architecture Overview
//
//	cv-bridge/
//	├── result/      Result[T] tagged union and the native fault taxonomy
//	├── handle/      opaque handle table with owned and shared entries
//	├── boundary/    operation tables, registry, and the generic Invoke
//	├── cvcore/      Mat and the value records crossing the boundary
//	├── linedesc/    binary descriptors, matchers, LSD detection, drawing
//	├── ximgproc/    superpixels, edge-aware filters, structured edges
//	├── hostlib/     in-process reference dispatcher used by tests and the CLI
//	├── wasmhost/    wazero-backed dispatcher calling a wasm shim build
//	├── models/      trained-model download from the Hugging Face hub
//	├── imgio/       image file decoding into matrices
//	└── cmd/cvinspect/  operation browser and demo pipeline
//
// # Quick Start
//
// Detect and describe line segments against the in-process host:
//
//	ctx := context.Background()
//	host := hostlib.New()
//	defer host.Close()
//
//	img := cvcore.NewMatFromBytes(ctx, host, rows, cols, cvcore.MatType8UC1, pixels).Must()
//	defer img.Close(ctx)
//
//	bd := linedesc.CreateBinaryDescriptor(ctx, host).Must()
//	defer bd.Close(ctx)
//
//	keylines := bd.Detect(ctx, img, nil).Must()
//	descriptors := bd.Compute(ctx, img, keylines, false).Must()
//	defer descriptors.Close(ctx)
//
// Swap hostlib for a wasm build of the native shim without touching call
// sites:
//
//	backend, err := wasmhost.New(ctx, guestBytes)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer backend.Close(ctx)
//
// Every operation returns result.Result[T]; faults carry the native
// status code and a message owned by the Go side. Handles are explicit:
// constructors own, methods borrow, Close destroys exactly once.
package cvbridge
