// Package capture provides frame sources backed by GoCV (OpenCV): camera
// devices, recorded video files and an in-memory mock for tests.
package capture

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"gocv.io/x/gocv"
)

// Default camera settings
const (
	DefaultFPS    = 30
	DefaultWidth  = 640
	DefaultHeight = 480
)

var (
	// ErrCameraNotOpen is returned when trying to read from a camera that is not open.
	ErrCameraNotOpen = errors.New("camera is not open")
	// ErrSourceExhausted is returned when a source has no more frames: the
	// end of a video file or a device that stopped delivering.
	ErrSourceExhausted = errors.New("frame source exhausted")
)

// Camera defines the interface for frame source implementations.
type Camera interface {
	Open() error
	Close() error
	ReadFrame() (*gocv.Mat, error)
	SetFPS(fps int)
	FPS() int
	IsOpen() bool
}

// Source identifies where frames come from: a camera device or a video file.
type Source struct {
	Device int
	Path   string
}

// IsFile reports whether the source is a video file.
func (s Source) IsFile() bool {
	return s.Path != ""
}

func (s Source) String() string {
	if s.IsFile() {
		return s.Path
	}
	return strconv.Itoa(s.Device)
}

// ParseSource interprets s as a device index when it is an integer and as
// a video file path otherwise.
func ParseSource(s string) (Source, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Source{}, errors.New("empty source")
	}

	if id, err := strconv.Atoi(s); err == nil {
		if id < 0 {
			return Source{}, fmt.Errorf("invalid device id %d", id)
		}
		return Source{Device: id}, nil
	}

	return Source{Path: s}, nil
}

// cameraImpl manages video capture from a device or a file using GoCV.
type cameraImpl struct {
	source  Source
	capture *gocv.VideoCapture
	mu      sync.Mutex
	running bool
	fps     int
}

// NewCamera creates a new Camera reading from the given device ID.
func NewCamera(deviceID int) Camera {
	return NewSource(Source{Device: deviceID})
}

// NewFileSource creates a Camera that plays back a recorded video file.
func NewFileSource(path string) Camera {
	return NewSource(Source{Path: path})
}

// NewSource creates a Camera for src.
func NewSource(src Source) Camera {
	return &cameraImpl{
		source: src,
		fps:    DefaultFPS,
	}
}

// Open opens the source for capturing frames.
// Devices are asked for 640x480; files keep their recorded size.
func (c *cameraImpl) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return nil
	}

	var (
		capture *gocv.VideoCapture
		err     error
	)
	if c.source.IsFile() {
		capture, err = gocv.OpenVideoCapture(c.source.Path)
	} else {
		capture, err = gocv.OpenVideoCapture(c.source.Device)
	}
	if err != nil {
		return fmt.Errorf("open source %s: %w", c.source, err)
	}

	if !c.source.IsFile() {
		capture.Set(gocv.VideoCaptureFrameWidth, DefaultWidth)
		capture.Set(gocv.VideoCaptureFrameHeight, DefaultHeight)
		capture.Set(gocv.VideoCaptureFPS, float64(c.fps))
	}

	c.capture = capture
	c.running = true

	return nil
}

// Close closes the source and releases resources.
func (c *cameraImpl) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running || c.capture == nil {
		c.running = false
		return nil
	}

	err := c.capture.Close()
	c.capture = nil
	c.running = false

	return err
}

// ReadFrame reads a single frame from the source.
// The caller is responsible for closing the returned Mat.
func (c *cameraImpl) ReadFrame() (*gocv.Mat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running || c.capture == nil {
		return nil, ErrCameraNotOpen
	}

	mat := gocv.NewMat()
	if ok := c.capture.Read(&mat); !ok || mat.Empty() {
		mat.Close()
		return nil, fmt.Errorf("read from %s: %w", c.source, ErrSourceExhausted)
	}

	return &mat, nil
}

// SetFPS sets the frames per second for capture.
// Values less than or equal to 0 are ignored.
func (c *cameraImpl) SetFPS(fps int) {
	if fps <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.fps = fps

	if c.capture != nil && !c.source.IsFile() {
		c.capture.Set(gocv.VideoCaptureFPS, float64(fps))
	}
}

// FPS returns the current frames per second setting.
func (c *cameraImpl) FPS() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.fps
}

// IsOpen returns true if the source is currently open.
func (c *cameraImpl) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.running
}
