// Command gpumeterdemo demonstrates the gpumeter resource tracker.
//
// It registers a synthetic device with a handful of resources, abandons
// some of them without explicit destruction, and prints usage snapshots
// before and after garbage collection to show lazy reconciliation.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"github.com/gogpu/gpumeter"
	"github.com/gogpu/gputypes"
)

type demoDevice struct {
	name string
}

type demoBuffer struct {
	data []byte
}

type demoTexture struct {
	label string
}

type demoSurface struct {
	width  uint32
	height uint32
}

func main() {
	var (
		buffers = flag.Int("buffers", 8, "number of buffers to track")
		verbose = flag.Bool("v", false, "enable debug logging")
	)
	flag.Parse()

	if *verbose {
		gpumeter.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	tr := gpumeter.NewTracker()

	dev := &demoDevice{name: "demo-device"}
	gpumeter.DeviceCreated(tr, dev)

	// Track *buffers buffers but keep references to only half of them;
	// the rest are abandoned the way an application drops handles.
	held := make([]*demoBuffer, 0, *buffers)
	for i := range *buffers {
		buf := &demoBuffer{data: make([]byte, 4096)}
		gpumeter.BufferCreated(tr, dev, buf, 4096)
		if i%2 == 0 {
			held = append(held, buf)
		}
	}

	tex := &demoTexture{label: "color-target"}
	gpumeter.TextureCreated(tr, dev, tex, &gputypes.TextureDescriptor{
		Label: tex.label,
		Size: gputypes.Extent3D{
			Width:              1024,
			Height:             1024,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRGBA8Unorm,
	})

	surf := &demoSurface{width: 800, height: 600}
	gpumeter.SurfaceConfigured(tr, dev, surf, gputypes.TextureFormatBGRA8Unorm,
		func(s *demoSurface) (uint32, uint32) { return s.width, s.height })

	fmt.Println("before collection:", tr.Usage())

	runtime.GC()
	runtime.GC()

	fmt.Println("after collection: ", tr.Usage())

	// Surface footprint is late-bound: resizing shows up in the next
	// snapshot with no further tracker calls.
	surf.width, surf.height = 1920, 1080
	fmt.Println("after resize:     ", tr.Usage())

	fmt.Println()
	snap := tr.Usage()
	for _, c := range gpumeter.Categories() {
		if snap.Resources[c] == 0 {
			continue
		}
		fmt.Printf("  %-18s %4d objects %12d bytes\n", c, snap.Resources[c], snap.Memory[c])
	}

	runtime.KeepAlive(held)
	runtime.KeepAlive(tex)
	runtime.KeepAlive(surf)
	runtime.KeepAlive(dev)
}
