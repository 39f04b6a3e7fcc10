package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"runtime"

	"github.com/frustak/disto/glfwcontext"
	"github.com/frustak/disto/inputs"
	"github.com/frustak/disto/options"
	"github.com/frustak/disto/planer"
	"github.com/frustak/disto/renderer"
	"github.com/frustak/disto/shader"
	glfw "github.com/go-gl/glfw/v3.3/glfw"
)

func init() {
	runtime.LockOSThread()
}

// nextAxis cycles x -> y -> xy -> x.
func nextAxis(a shader.Axis) shader.Axis {
	switch a {
	case shader.AxisX:
		return shader.AxisY
	case shader.AxisY:
		return shader.AxisXY
	default:
		return shader.AxisX
	}
}

func run(opts *options.PlaneOptions) error {
	img, err := inputs.LoadImage(*opts.Image)
	if err != nil {
		return err
	}

	if err := glfwcontext.InitGraphics(); err != nil {
		return fmt.Errorf("failed to initialize GLFW: %w", err)
	}
	defer glfwcontext.TerminateGraphics()

	// If recording, the window is hidden and only provides the GL context.
	ctx, err := glfwcontext.New(opts, !*opts.Record)
	if err != nil {
		return fmt.Errorf("failed to create window: %w", err)
	}
	defer ctx.Shutdown()

	r, err := renderer.NewRenderer(ctx)
	if err != nil {
		return fmt.Errorf("failed to create renderer: %w", err)
	}
	defer r.Shutdown()

	var planerOpts []planer.Option
	if *opts.Seed != 0 {
		planerOpts = append(planerOpts, planer.WithChooser(rand.New(rand.NewPCG(*opts.Seed, *opts.Seed))))
	}

	d := opts.Displacement()
	p, err := planer.New(r, img, d, planerOpts...)
	if err != nil {
		return err
	}

	if *opts.Record {
		return r.RunOffscreen(opts)
	}

	refresh := func() {
		log.Printf("Refreshing plane: axis=%s randomop=%v", d.Axis, d.RandomOp)
		if err := p.Refresh(d); err != nil {
			log.Printf("Refresh failed: %v", err)
		}
	}
	ctx.RegisterKeyCallback(glfw.KeyR, refresh)
	ctx.RegisterKeyCallback(glfw.KeyA, func() {
		d.Axis = nextAxis(d.Axis)
		refresh()
	})
	ctx.RegisterKeyCallback(glfw.KeyO, func() {
		d.RandomOp = !d.RandomOp
		refresh()
	})

	log.Println("Starting interactive render loop (R: refresh, A: cycle axis, O: toggle random operators, Esc: quit)...")
	r.Run()
	return nil
}

func main() {
	fs := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	opts := options.RegisterFlags(fs)
	fs.Parse(os.Args[1:])

	if *opts.Help {
		fmt.Println("Image displacement effect viewer/recorder")
		fs.PrintDefaults()
		return
	}

	if err := opts.Validate(); err != nil {
		log.Fatalf("Invalid options: %v", err)
	}

	if err := run(opts); err != nil {
		log.Fatalf("%v", err)
	}
	if *opts.Record {
		log.Printf("Successfully rendered to %s", *opts.OutputFile)
	}
}
