package renderer

import (
	"fmt"
	"io"
	"log"
	"runtime"
	"strings"

	"github.com/frustak/disto/options"
	"github.com/go-gl/gl/v4.1-core/gl"
	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// Frame is a single rendered frame's RGBA pixels, bottom row first.
type Frame struct {
	Pixels []byte
	PTS    int64
}

type OffscreenRenderer struct {
	fbo       uint32
	textureID uint32
	width     int
	height    int
}

const numBuffers = 3

func NewOffscreenRenderer(width, height int) (*OffscreenRenderer, error) {
	or := &OffscreenRenderer{
		width:  width,
		height: height,
	}

	gl.GenFramebuffers(1, &or.fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, or.fbo)
	gl.GenTextures(1, &or.textureID)
	gl.BindTexture(gl.TEXTURE_2D, or.textureID)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(width), int32(height), 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, or.textureID, 0)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	if status != gl.FRAMEBUFFER_COMPLETE {
		or.Destroy()
		return nil, fmt.Errorf("offscreen fbo is not complete")
	}
	return or, nil
}

func (or *OffscreenRenderer) Destroy() {
	gl.DeleteFramebuffers(1, &or.fbo)
	gl.DeleteTextures(1, &or.textureID)
}

func (or *OffscreenRenderer) readPixels() []byte {
	pixels := make([]byte, or.width*or.height*4)
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, or.fbo)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(or.width), int32(or.height), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, 0)
	return pixels
}

// getArgs builds the ffmpeg arguments for raw RGBA frames piped on stdin.
func getArgs(options *options.PlaneOptions, goos string) (inputArgs ffmpeg.KwArgs, outputArgs ffmpeg.KwArgs) {
	inputArgs = ffmpeg.KwArgs{
		"f":         "rawvideo",
		"pix_fmt":   "rgba",
		"s":         fmt.Sprintf("%dx%d", *options.Width, *options.Height),
		"framerate": *options.FPS,
	}

	// frames are read back bottom row first
	outputArgs = ffmpeg.KwArgs{
		"vf":      "vflip",
		"pix_fmt": "yuv420p",
	}

	hevc := *options.Codec == "hevc"
	switch goos {
	case "darwin":
		if hevc {
			outputArgs["c:v"] = "hevc_videotoolbox"
		} else {
			outputArgs["c:v"] = "h264_videotoolbox"
		}
	default:
		if hevc {
			outputArgs["c:v"] = "libx265"
		} else {
			outputArgs["c:v"] = "libx264"
		}
	}

	if hevc && strings.HasSuffix(*options.OutputFile, ".mp4") {
		outputArgs["tag:v"] = "hvc1"
	}
	return
}

// runEncoder is the consumer. It pipes frames from frameChan into ffmpeg
// and reports ffmpeg's exit on doneChan once frameChan is closed.
func (r *Renderer) runEncoder(options *options.PlaneOptions, frameChan <-chan *Frame, doneChan chan<- error) {
	pipeReader, pipeWriter := io.Pipe()
	inputArgs, outputArgs := getArgs(options, runtime.GOOS)
	log.Printf("Encoding with %v", outputArgs["c:v"])

	ffmpegCmd := ffmpeg.Input("pipe:", inputArgs).
		Output(*options.OutputFile, outputArgs).
		OverWriteOutput().WithInput(pipeReader).ErrorToStdOut()

	if *options.FFMPEGPath != "" {
		ffmpegCmd = ffmpegCmd.SetFfmpegPath(*options.FFMPEGPath)
	}

	errc := make(chan error, 1)
	go func() {
		err := ffmpegCmd.Run()
		// unblock writes if ffmpeg exits early
		pipeReader.Close()
		errc <- err
	}()

	var writeErr error
	for frame := range frameChan {
		if writeErr != nil {
			continue
		}
		if _, err := pipeWriter.Write(frame.Pixels); err != nil {
			log.Printf("Error writing frame %d to FFmpeg: %v", frame.PTS, err)
			writeErr = err
		}
	}
	pipeWriter.Close()

	err := <-errc
	if err == nil && writeErr != nil {
		err = fmt.Errorf("ffmpeg stopped consuming frames: %w", writeErr)
	}
	doneChan <- err
}

// RunOffscreen is the producer. It renders Duration*FPS frames at a fixed
// time step into an offscreen framebuffer and records them to OutputFile.
func (r *Renderer) RunOffscreen(options *options.PlaneOptions) error {
	log.Println("Starting in record mode...")
	if r.offscreen == nil {
		or, err := NewOffscreenRenderer(*options.Width, *options.Height)
		if err != nil {
			return fmt.Errorf("failed to create offscreen renderer: %w", err)
		}
		r.offscreen = or
	}

	frameChan := make(chan *Frame, numBuffers)
	encoderDoneChan := make(chan error, 1)
	go r.runEncoder(options, frameChan, encoderDoneChan)

	totalFrames := int(*options.Duration * float64(*options.FPS))
	for i := 0; i < totalFrames; i++ {
		gl.BindFramebuffer(gl.FRAMEBUFFER, r.offscreen.fbo)
		r.RenderFrame(r.offscreen.width, r.offscreen.height)
		gl.BindFramebuffer(gl.FRAMEBUFFER, 0)

		frameChan <- &Frame{Pixels: r.offscreen.readPixels(), PTS: int64(i)}
	}
	close(frameChan)

	if err := <-encoderDoneChan; err != nil {
		return fmt.Errorf("encoding failed: %w", err)
	}
	log.Printf("Recorded %d frames to %s", totalFrames, *options.OutputFile)
	return nil
}
