package internal

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"time"

	"github.com/kbinani/screenshot"
)

// jpegQuality balances file size against enough fidelity for the model to
// read on-screen text.
const jpegQuality = 85

// Capturer takes single screenshots of the primary display, writes them under
// a date-partitioned directory, and records them in the store.
type Capturer struct {
	recordingsDir string
	store         *Store
	notifier      Notifier
}

// NewCapturer creates a capturer writing under recordingsDir.
func NewCapturer(recordingsDir string, store *Store, notifier Notifier) *Capturer {
	return &Capturer{recordingsDir: recordingsDir, store: store, notifier: notifier}
}

// CaptureOnce grabs one frame from the primary display, encodes it as JPEG,
// writes it to disk, and persists a CaptureRecord. index is only used in the
// file name to keep same-second captures distinct.
func (c *Capturer) CaptureOnce(index uint64) (*CaptureRecord, error) {
	img, err := grabPrimaryDisplay()
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, &CaptureError{Stage: StageEncode, Err: err}
	}

	now := time.Now()
	dateDir := filepath.Join(c.recordingsDir, now.Format("2006-01-02"))
	if err := EnsureDir(dateDir); err != nil {
		return nil, &CaptureError{Stage: StageWrite, Err: err}
	}

	filename := fmt.Sprintf("%s_%s_%06d.jpg", now.Format("2006-01-02"), now.Format("15-04-05"), index)
	filePath := filepath.Join(dateDir, filename)
	if err := os.WriteFile(filePath, buf.Bytes(), 0o644); err != nil {
		return nil, &CaptureError{Stage: StageWrite, Err: err}
	}

	rec := &CaptureRecord{
		Timestamp: now,
		FilePath:  filePath,
		Width:     width,
		Height:    height,
		FileSize:  int64(buf.Len()),
	}
	id, err := c.store.InsertCapture(rec)
	if err != nil {
		// The file is already on disk; a failed insert orphans it, which is
		// acceptable.
		return nil, fmt.Errorf("record capture: %w", err)
	}
	rec.ID = id
	notify(c.notifier, ChangeCapture)
	return rec, nil
}

func grabPrimaryDisplay() (*image.RGBA, error) {
	if screenshot.NumActiveDisplays() == 0 {
		return nil, &CaptureError{Stage: StageDisplay, Err: errors.New("no displays found")}
	}

	// Display 0 is the primary display; multi-monitor capture is out of scope.
	bounds := screenshot.GetDisplayBounds(0)
	img, err := screenshot.CaptureRect(bounds)
	if err != nil {
		return nil, &CaptureError{
			Stage: StagePermission,
			Err:   fmt.Errorf("%w (on macOS, grant Screen Recording permission in System Settings > Privacy & Security)", err),
		}
	}

	if isBlankFrame(img) {
		return nil, &CaptureError{
			Stage: StagePermission,
			Err:   errors.New("captured frame is blank, screen recording permission is likely not granted"),
		}
	}
	return img, nil
}

// isBlankFrame samples the image and reports whether it is effectively all
// black, the usual symptom of a denied capture permission on macOS.
func isBlankFrame(img *image.RGBA) bool {
	bounds := img.Bounds()
	if bounds.Empty() {
		return true
	}

	step := bounds.Dy() / 64
	if step < 1 {
		step = 1
	}
	var sampled, nonZero int
	for y := bounds.Min.Y; y < bounds.Max.Y; y += step {
		for x := bounds.Min.X; x < bounds.Max.X; x += step {
			r, g, b, _ := img.At(x, y).RGBA()
			sampled++
			if r != 0 || g != 0 || b != 0 {
				nonZero++
			}
		}
	}
	return sampled > 0 && nonZero*100 < sampled
}
