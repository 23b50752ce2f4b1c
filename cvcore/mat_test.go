package cvcore_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/wippyai/cv-bridge/cvcore"
	"github.com/wippyai/cv-bridge/hostlib"
	"github.com/wippyai/cv-bridge/result"
)

func TestMat_Lifecycle(t *testing.T) {
	ctx := context.Background()
	host := hostlib.New()
	defer host.Close()

	m := cvcore.NewMatWithSize(ctx, host, 32, 48, cvcore.MatType8UC1).Must()
	if got := m.Rows(ctx).Must(); got != 32 {
		t.Fatalf("Rows() == %d", got)
	}
	if got := m.Cols(ctx).Must(); got != 48 {
		t.Fatalf("Cols() == %d", got)
	}
	if got := m.Type(ctx).Must(); got != cvcore.MatType8UC1 {
		t.Fatalf("Type() == %d", got)
	}
	if m.Empty(ctx).Must() {
		t.Fatal("sized mat should not be empty")
	}

	clone := m.Clone(ctx).Must()
	if clone.Handle() == m.Handle() {
		t.Fatal("Clone should own a fresh handle")
	}

	m.Close(ctx)
	clone.Close(ctx)
	if host.Table().Len() != 0 {
		t.Fatalf("leaked %d handles", host.Table().Len())
	}
}

func TestMat_EmptyDefault(t *testing.T) {
	ctx := context.Background()
	host := hostlib.New()
	defer host.Close()

	m := cvcore.NewMat(ctx, host).Must()
	defer m.Close(ctx)
	if !m.Empty(ctx).Must() {
		t.Fatal("default mat should be empty")
	}
}

func TestMat_FromBytes(t *testing.T) {
	ctx := context.Background()
	host := hostlib.New()
	defer host.Close()

	data := make([]byte, 4*6*3)
	for i := range data {
		data[i] = byte(i)
	}
	m := cvcore.NewMatFromBytes(ctx, host, 4, 6, cvcore.MatType8UC3, data).Must()
	defer m.Close(ctx)
	if m.Rows(ctx).Must() != 4 || m.Cols(ctx).Must() != 6 {
		t.Fatal("geometry mismatch")
	}

	got := m.Bytes(ctx).Must()
	if !bytes.Equal(got, data) {
		t.Fatal("pixel data did not round-trip")
	}
	// The copy is detached from the backing store.
	got[0] = 0xFF
	if m.Bytes(ctx).Must()[0] == 0xFF {
		t.Fatal("Bytes aliases the backend buffer")
	}
}

func TestMat_FromBytes_WrongLength(t *testing.T) {
	ctx := context.Background()
	host := hostlib.New()
	defer host.Close()

	r := cvcore.NewMatFromBytes(ctx, host, 4, 6, cvcore.MatType8UC1, make([]byte, 5))
	if !r.IsErr() {
		t.Fatal("short pixel buffer should fault")
	}
	if r.Fault().Code != result.CodeBadSize {
		t.Fatalf("code %s", r.Fault().Code)
	}
}

func TestMat_UseAfterClose(t *testing.T) {
	ctx := context.Background()
	host := hostlib.New()
	defer host.Close()

	m := cvcore.NewMatWithSize(ctx, host, 2, 2, cvcore.MatType8UC1).Must()
	m.Close(ctx)

	r := m.Rows(ctx)
	if !r.IsErr() {
		t.Fatal("call on a closed mat should fault, not crash")
	}
	if r.Fault().Code != result.CodeNullPtr {
		t.Fatalf("code %s", r.Fault().Code)
	}
}

func TestMatType_Helpers(t *testing.T) {
	if cvcore.MatTypeChannels(cvcore.MatType8UC3) != 3 {
		t.Fatal("8UC3 has 3 channels")
	}
	if cvcore.MatTypeDepth(cvcore.MatType32FC3) != cvcore.MatTypeDepth(cvcore.MatType32FC1) {
		t.Fatal("32FC3 and 32FC1 share a depth")
	}
}
