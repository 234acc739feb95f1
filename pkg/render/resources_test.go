package render

import (
	"math"
	"testing"
)

func TestTracker_CountsLiveResources(t *testing.T) {
	ctx := NewNullContext(100, 100)

	g := ctx.CreateGeometry([]float32{0, 0, 0}, nil)
	m := ctx.CreateMaterial(Color{R: 1}, 1)
	tex := ctx.CreateTexture("web-01")

	counts := ctx.Tracker().Counts()
	if counts.Geometries != 1 || counts.Materials != 1 || counts.Textures != 1 {
		t.Fatalf("counts = %+v, want 1 of each", counts)
	}
	if counts.Total() != 3 {
		t.Errorf("Total = %d, want 3", counts.Total())
	}

	g.Dispose()
	m.Dispose()
	tex.Dispose()

	if total := ctx.Tracker().Counts().Total(); total != 0 {
		t.Errorf("Total after dispose = %d, want 0", total)
	}
}

// TestDispose_Idempotent verifies repeated disposal only decrements the
// tracker once per resource.
func TestDispose_Idempotent(t *testing.T) {
	ctx := NewNullContext(100, 100)

	g := ctx.CreateGeometry(nil, nil)
	g.Dispose()
	g.Dispose()
	g.Dispose()

	if counts := ctx.Tracker().Counts(); counts.Geometries != 0 {
		t.Errorf("Geometries = %d, want 0 after repeated dispose", counts.Geometries)
	}
	if !g.Disposed() {
		t.Error("Disposed() = false after Dispose")
	}
}

// TestDispose_NilReceivers verifies disposal is safe on nil handles, so
// teardown can walk nodes without checking which slots are populated.
func TestDispose_NilReceivers(t *testing.T) {
	var g *Geometry
	var m *Material
	var tex *Texture
	g.Dispose()
	m.Dispose()
	tex.Dispose()

	if g.Disposed() || m.Disposed() || tex.Disposed() {
		t.Error("nil handles must report not disposed")
	}
}

func TestGeometry_VertexCount(t *testing.T) {
	ctx := NewNullContext(10, 10)
	g := ctx.CreateGeometry([]float32{0, 0, 0, 1, 1, 1, 2, 2, 2}, nil)
	if got := g.VertexCount(); got != 3 {
		t.Errorf("VertexCount = %d, want 3", got)
	}
}

func TestTexture_SizedToText(t *testing.T) {
	ctx := NewNullContext(10, 10)
	tex := ctx.CreateTexture("lobby-cam")
	if tex.Width != len("lobby-cam") {
		t.Errorf("Width = %d, want %d", tex.Width, len("lobby-cam"))
	}
	if tex.Text != "lobby-cam" {
		t.Errorf("Text = %q", tex.Text)
	}
}

func TestColor_Lerp(t *testing.T) {
	a := Color{R: 0, G: 0, B: 0}
	b := Color{R: 1, G: 0.5, B: 0.2}

	mid := a.Lerp(b, 0.5)
	if math.Abs(mid.R-0.5) > 1e-9 || math.Abs(mid.G-0.25) > 1e-9 || math.Abs(mid.B-0.1) > 1e-9 {
		t.Errorf("Lerp(0.5) = %+v", mid)
	}
	if got := a.Lerp(b, 0); got != a {
		t.Errorf("Lerp(0) = %+v, want %+v", got, a)
	}
	if got := a.Lerp(b, 1); got != b {
		t.Errorf("Lerp(1) = %+v, want %+v", got, b)
	}
}

func TestNullContext_RecordsFrames(t *testing.T) {
	ctx := NewNullContext(640, 480)

	w, h := ctx.Size()
	if w != 640 || h != 480 {
		t.Fatalf("Size = %dx%d", w, h)
	}

	frame := &Frame{Points: []Point{{X: 1, Y: 2}}}
	ctx.Render(frame)
	ctx.Render(&Frame{})

	if ctx.FrameCount != 2 {
		t.Errorf("FrameCount = %d, want 2", ctx.FrameCount)
	}
	if ctx.LastFrame == nil || len(ctx.LastFrame.Points) != 0 {
		t.Error("LastFrame should be the most recent (empty) frame")
	}
	if len(ctx.RenderCalls) != 2 || ctx.RenderCalls[0] != 1 {
		t.Errorf("RenderCalls = %v", ctx.RenderCalls)
	}

	if err := ctx.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if !ctx.Released() {
		t.Error("Released() = false after Release")
	}
}

func TestNullContext_SetSize(t *testing.T) {
	ctx := NewNullContext(10, 10)
	ctx.SetSize(0, 0)
	if w, h := ctx.Size(); w != 0 || h != 0 {
		t.Errorf("Size after SetSize(0,0) = %dx%d", w, h)
	}
}
