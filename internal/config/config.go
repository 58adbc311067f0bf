// Package config loads the finger counter settings from a .env file, the
// environment and command-line flags, in increasing order of precedence.
package config

import (
	"errors"
	"flag"
	"fmt"
	"image"
	"os"
	"strconv"
	"strings"

	"github.com/ayusman/fingercount/internal/capture"
	"github.com/ayusman/fingercount/internal/vision"
	"github.com/joho/godotenv"
)

// ErrInvalid is wrapped by every configuration error.
var ErrInvalid = errors.New("invalid configuration")

// Environment variables
const (
	EnvSource   = "FINGERCOUNT_SOURCE"
	EnvROI      = "FINGERCOUNT_ROI"
	EnvBlur     = "FINGERCOUNT_BLUR"
	EnvDB       = "FINGERCOUNT_DB"
	EnvAddr     = "FINGERCOUNT_ADDR"
	EnvWeb      = "FINGERCOUNT_WEB"
	EnvHeadless = "FINGERCOUNT_HEADLESS"
	EnvTray     = "FINGERCOUNT_TRAY"
	EnvShowMask = "FINGERCOUNT_SHOW_MASK"
)

// Config holds the settings of one run.
type Config struct {
	// Source is a camera index or a video file path.
	Source   string
	ROI      image.Rectangle
	BlurSize int
	// DBPath enables session recording when set.
	DBPath string
	// Addr enables the HTTP server when set, e.g. ":8080".
	Addr      string
	StaticDir string
	Headless  bool
	Tray      bool
	ShowMask  bool
}

// Default returns the settings the counter was tuned with: camera 0, the
// fixed ROI and a 35 pixel blur, with desktop windows only.
func Default() *Config {
	return &Config{
		Source:   "0",
		ROI:      vision.DefaultROI,
		BlurSize: vision.DefaultBlurSize,
	}
}

// Load reads .env (if present) and the environment on top of Default.
func Load() (*Config, error) {
	// A missing .env file is fine
	_ = godotenv.Load()

	cfg := Default()
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v, ok := os.LookupEnv(EnvSource); ok {
		c.Source = v
	}
	if v, ok := os.LookupEnv(EnvROI); ok {
		roi, err := ParseROI(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvROI, err)
		}
		c.ROI = roi
	}
	if v, ok := os.LookupEnv(EnvBlur); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s: %q is not a number: %w", EnvBlur, v, ErrInvalid)
		}
		c.BlurSize = n
	}
	if v, ok := os.LookupEnv(EnvDB); ok {
		c.DBPath = v
	}
	if v, ok := os.LookupEnv(EnvAddr); ok {
		c.Addr = v
	}
	if v, ok := os.LookupEnv(EnvWeb); ok {
		c.StaticDir = v
	}

	for name, dst := range map[string]*bool{
		EnvHeadless: &c.Headless,
		EnvTray:     &c.Tray,
		EnvShowMask: &c.ShowMask,
	} {
		v, ok := os.LookupEnv(name)
		if !ok {
			continue
		}
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s: %q is not a boolean: %w", name, v, ErrInvalid)
		}
		*dst = b
	}

	return nil
}

// BindFlags registers a flag for every setting on fs, using the current
// values as defaults so that flags override the environment.
func (c *Config) BindFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.Source, "source", c.Source, "camera index or video file path")
	fs.Var((*roiValue)(&c.ROI), "roi", "region of interest in the mirrored frame as x0,y0,x1,y1")
	fs.IntVar(&c.BlurSize, "blur", c.BlurSize, "Gaussian blur kernel size, odd")
	fs.StringVar(&c.DBPath, "db", c.DBPath, "SQLite file to record sessions to")
	fs.StringVar(&c.Addr, "addr", c.Addr, "HTTP listen address for streams and the API")
	fs.StringVar(&c.StaticDir, "web", c.StaticDir, "directory of static files served at /")
	fs.BoolVar(&c.Headless, "headless", c.Headless, "do not open windows")
	fs.BoolVar(&c.Tray, "tray", c.Tray, "show the count in the system tray")
	fs.BoolVar(&c.ShowMask, "mask", c.ShowMask, "also show the binary mask")
}

// Validate checks the settings. Errors wrap ErrInvalid.
func (c *Config) Validate() error {
	if _, err := capture.ParseSource(c.Source); err != nil {
		return fmt.Errorf("source: %v: %w", err, ErrInvalid)
	}
	if c.ROI.Empty() || c.ROI.Min.X < 0 || c.ROI.Min.Y < 0 {
		return fmt.Errorf("roi %v must be a non-empty rectangle with a non-negative origin: %w", c.ROI, ErrInvalid)
	}
	if c.BlurSize <= 0 || c.BlurSize%2 == 0 {
		return fmt.Errorf("blur size %d must be odd and positive: %w", c.BlurSize, ErrInvalid)
	}
	if c.StaticDir != "" && c.Addr == "" {
		return fmt.Errorf("web directory needs an HTTP address: %w", ErrInvalid)
	}
	return nil
}

// Windows reports whether desktop windows should be opened. The tray
// needs the main thread, so it rules windows out.
func (c *Config) Windows() bool {
	return !c.Headless && !c.Tray
}

// ParseROI parses "x0,y0,x1,y1" into a rectangle.
func ParseROI(s string) (image.Rectangle, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return image.Rectangle{}, fmt.Errorf("roi %q: want x0,y0,x1,y1: %w", s, ErrInvalid)
	}

	var v [4]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return image.Rectangle{}, fmt.Errorf("roi %q: %q is not a number: %w", s, p, ErrInvalid)
		}
		v[i] = n
	}

	r := image.Rect(v[0], v[1], v[2], v[3])
	if r.Empty() {
		return image.Rectangle{}, fmt.Errorf("roi %q is empty: %w", s, ErrInvalid)
	}
	return r, nil
}

// roiValue adapts an image.Rectangle to flag.Value.
type roiValue image.Rectangle

func (r *roiValue) String() string {
	if r == nil {
		return ""
	}
	rect := image.Rectangle(*r)
	return fmt.Sprintf("%d,%d,%d,%d", rect.Min.X, rect.Min.Y, rect.Max.X, rect.Max.Y)
}

func (r *roiValue) Set(s string) error {
	rect, err := ParseROI(s)
	if err != nil {
		return err
	}
	*r = roiValue(rect)
	return nil
}
