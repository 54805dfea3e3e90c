// Command composdemo runs the compositor scheduler headlessly against a
// software output surface and prints what it scheduled.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/gogpu/compositor"
	"github.com/gogpu/compositor/driver"
	"github.com/gogpu/compositor/surface"
)

func main() {
	var (
		width   = flag.Int("width", 320, "surface width")
		height  = flag.Int("height", 240, "surface height")
		frames  = flag.Int("frames", 5, "number of frame ticks to run")
		output  = flag.String("output", "", "write the last presented frame as PNG")
		verbose = flag.Bool("v", false, "log scheduler decisions")
	)
	flag.Parse()

	if *verbose {
		compositor.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	out, err := surface.NewBestAvailable(surface.Options{Width: *width, Height: *height})
	if err != nil {
		log.Fatalf("Failed to create output surface: %v", err)
	}
	defer out.Close()

	textures, err := surface.NewTextureSet(
		surface.NewSoftwareTexture,
		surface.DefaultTextureDescriptor(uint32(*width), uint32(*height)),
		2,
	)
	if err != nil {
		log.Fatalf("Failed to allocate layer textures: %v", err)
	}
	defer textures.Close()

	client := &demoClient{
		out:      out,
		textures: textures,
		frames:   surface.NewFramePool(*width, *height),
	}
	d := driver.New(client, compositor.WithFrameThrottling())
	client.driver = d

	// Bring the pipeline up: surface creation, visibility, drawability.
	d.SetCanStart()
	d.SetVisible(true)
	d.SetCanDraw(true)
	client.settle()

	// Scripted frame loop: the producer animates, so every frame has new
	// content to commit.
	interval := compositor.DefaultInterval
	now := time.Now()
	for i := 0; i < *frames; i++ {
		d.SetNeedsCommit()
		if !d.WantsTick() {
			fmt.Println("scheduler idle, stopping early")
			break
		}
		d.BeginTick(compositor.NewBeginFrameArgs(now, interval))
		d.EndTick()
		client.settle()
		now = now.Add(interval)

		// Halfway through, lose the surface to exercise recreation.
		if i == *frames/2 {
			fmt.Println("-- simulating surface loss --")
			d.DidLoseSurface()
			client.settle()
		}
	}

	fmt.Printf("commits applied: %d, frames presented: %d\n",
		d.Machine().CommitCount(), client.presented)
	fmt.Printf("final state: %s\n", d.Machine().CommitState())

	if *output != "" && client.lastFrame != nil {
		if err := savePNG(*output, client.lastFrame); err != nil {
			log.Fatalf("Failed to save: %v", err)
		}
		fmt.Printf("last frame saved to %s\n", *output)
	}
}

// demoClient is a minimal producer+drawer pair in one struct. Commit
// requests are answered immediately after the dispatch loop settles;
// draws render a solid color that shifts with each commit.
type demoClient struct {
	driver   *driver.Driver
	out      surface.OutputSurface
	textures *surface.TextureSet
	frames   *surface.FramePool

	commitRequested bool
	surfacePending  bool
	presented       int
	lastFrame       *image.RGBA
}

// settle answers the asynchronous requests recorded during dispatch.
func (c *demoClient) settle() {
	if c.surfacePending {
		c.surfacePending = false
		c.driver.DidInitializeSurface()
	}
	if c.commitRequested {
		c.commitRequested = false
		c.driver.DidFinishCommit()
	}
}

func (c *demoClient) ScheduledActionRequestCommit() {
	fmt.Println("scheduled: request commit")
	c.commitRequested = true
}

func (c *demoClient) ScheduledActionCommit() {
	fmt.Println("scheduled: commit")
	if err := c.textures.AcquireForDrawer(); err != nil {
		log.Fatalf("Texture hand-off failed: %v", err)
	}
}

func (c *demoClient) ScheduledActionUpdateVisibleTiles() {
	fmt.Println("scheduled: update visible tiles")
}

func (c *demoClient) ScheduledActionActivatePendingTree() {
	fmt.Println("scheduled: activate pending tree")
}

func (c *demoClient) ScheduledActionDrawIfPossible() driver.DrawResult {
	fmt.Println("scheduled: draw")
	return c.draw()
}

func (c *demoClient) ScheduledActionDrawForced() driver.DrawResult {
	fmt.Println("scheduled: forced draw")
	return c.draw()
}

func (c *demoClient) draw() driver.DrawResult {
	frame := c.frames.Get()
	shade := uint8(40 * (c.presented + 1))
	fill(frame, color.RGBA{R: shade, G: 80, B: 255 - shade, A: 255})

	if err := c.out.Present(frame); err != nil {
		fmt.Printf("present failed: %v\n", err)
		c.frames.Put(frame)
		return driver.DrawResult{}
	}
	if c.textures.Owner() == compositor.TextureAcquiredByDrawer {
		if err := c.textures.ReleaseFromDrawer(); err != nil {
			log.Fatalf("Texture release failed: %v", err)
		}
	}
	c.presented++
	if c.lastFrame != nil {
		c.frames.Put(c.lastFrame)
	}
	c.lastFrame = frame
	return driver.DrawResult{Success: true}
}

func (c *demoClient) ScheduledActionBeginSurfaceCreation() {
	fmt.Println("scheduled: begin surface creation")
	c.surfacePending = true
}

func (c *demoClient) ScheduledActionAcquireTexturesForProducer() {
	fmt.Println("scheduled: acquire textures for producer")
	if err := c.textures.AcquireForProducer(); err != nil {
		log.Fatalf("Texture hand-off failed: %v", err)
	}
}

func fill(img *image.RGBA, c color.RGBA) {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			img.SetRGBA(x, y, c)
		}
	}
}

func savePNG(path string, img *image.RGBA) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}
