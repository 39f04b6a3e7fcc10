package options

import (
	"errors"
	"flag"

	"github.com/frustak/disto/shader"
)

type PlaneOptions struct {
	Image       *string
	Help        *bool
	Width       *int
	Height      *int
	Interval    *float64
	YMultiplier *float64
	XMultiplier *float64
	Div         *float64
	Axis        *string
	RandomOp    *bool
	Seed        *uint64 // 0 draws operators from the process-wide source

	// Recording options
	Record     *bool
	Duration   *float64
	FPS        *int
	OutputFile *string
	FFMPEGPath *string
	Codec      *string
}

// RegisterFlags defines the command line flags on fs and returns the
// options they populate.
func RegisterFlags(fs *flag.FlagSet) *PlaneOptions {
	return &PlaneOptions{
		Image:       fs.String("image", "", "Image file to displace (png, jpeg, gif, bmp, webp)"),
		Help:        fs.Bool("help", false, "Show help message"),
		Width:       fs.Int("width", 1280, "Width of the window or output"),
		Height:      fs.Int("height", 720, "Height of the window or output"),
		Interval:    fs.Float64("interval", 60, "Frames per radian of the time oscillation"),
		YMultiplier: fs.Float64("ymul", 10, "Multiplier applied to the y texture coordinate"),
		XMultiplier: fs.Float64("xmul", 10, "Multiplier applied to the x texture coordinate"),
		Div:         fs.Float64("div", 50, "Divisor of the displacement amplitude"),
		Axis:        fs.String("axis", "xy", "Displaced axes: x, y or xy"),
		RandomOp:    fs.Bool("randomop", false, "Replace formula operators with random ones"),
		Seed:        fs.Uint64("seed", 0, "Seed for random operators (0 for unseeded)"),

		Record:     fs.Bool("record", false, "Render offscreen to a video file"),
		Duration:   fs.Float64("duration", 10.0, "Duration to record in seconds"),
		FPS:        fs.Int("fps", 60, "Frames per second for recording"),
		OutputFile: fs.String("output", "output.mp4", "Output file name for recording"),
		FFMPEGPath: fs.String("ffmpeg", "", "Path to ffmpeg executable"),
		Codec:      fs.String("codec", "h264", "Video codec for recording: h264 or hevc"),
	}
}

// Displacement returns the effect configuration carried by the flags.
func (o *PlaneOptions) Displacement() shader.Displacement {
	return shader.Displacement{
		Interval:    *o.Interval,
		YMultiplier: *o.YMultiplier,
		XMultiplier: *o.XMultiplier,
		Div:         *o.Div,
		Axis:        shader.Axis(*o.Axis),
		RandomOp:    *o.RandomOp,
	}
}

var (
	ErrNoImage      = errors.New("an image file is required")
	ErrBadSize      = errors.New("width and height must be positive")
	ErrBadRecording = errors.New("fps and duration must be positive when recording")
)

// Validate checks the options the executable needs to open a window or
// start recording. The effect parameters are passed through unchecked.
func (o *PlaneOptions) Validate() error {
	if *o.Image == "" {
		return ErrNoImage
	}
	if *o.Width <= 0 || *o.Height <= 0 {
		return ErrBadSize
	}
	if *o.Record && (*o.FPS <= 0 || *o.Duration <= 0) {
		return ErrBadRecording
	}
	return nil
}
