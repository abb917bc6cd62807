package internal

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// Frames are downscaled and letterboxed to 640x360 to bound both the output
// size and the remote token cost. 960x540 would improve text legibility at
// roughly triple the tokens.
const scaleFilter = "scale=640:360:force_original_aspect_ratio=decrease,pad=640:360:(ow-iw)/2:(oh-ih)/2"

// encoderCandidates lists known ffmpeg install locations, probed in order.
var encoderCandidates = []string{"ffmpeg", "/usr/local/bin/ffmpeg", "/opt/homebrew/bin/ffmpeg"}

// Assembler turns an ordered set of still images into a compact H.264 video
// by driving an external ffmpeg process.
type Assembler struct {
	// candidates may be overridden in tests.
	candidates []string
	// resolved encoder path, cached after the first successful probe.
	encoderPath string
}

// NewAssembler returns an assembler probing the default install paths.
func NewAssembler() *Assembler {
	return &Assembler{candidates: encoderCandidates}
}

// FindEncoder probes the candidate paths with a version check and returns the
// first responsive binary.
func (a *Assembler) FindEncoder(ctx context.Context) (string, error) {
	if a.encoderPath != "" {
		return a.encoderPath, nil
	}
	for _, candidate := range a.candidates {
		cmd := exec.CommandContext(ctx, candidate, "-version")
		if err := cmd.Run(); err == nil {
			LogInfo("Found ffmpeg at: %s", candidate)
			a.encoderPath = candidate
			return candidate, nil
		}
	}
	return "", &EncoderNotFoundError{Tried: a.candidates}
}

// BuildConcatList renders the ffmpeg concat instruction list: each image
// shown for 1/fps seconds, with the final image repeated once (the concat
// demuxer drops the last duration otherwise).
func BuildConcatList(imagePaths []string, fps int) string {
	var b strings.Builder
	duration := strconv.FormatFloat(1.0/float64(fps), 'f', -1, 64)
	for _, path := range imagePaths {
		fmt.Fprintf(&b, "file '%s'\n", path)
		fmt.Fprintf(&b, "duration %s\n", duration)
	}
	if len(imagePaths) > 0 {
		fmt.Fprintf(&b, "file '%s'\n", imagePaths[len(imagePaths)-1])
	}
	return b.String()
}

// Assemble builds a video at outputPath from imagePaths in the given order.
// The temporary instruction list is removed whether encoding succeeds or not.
func (a *Assembler) Assemble(ctx context.Context, imagePaths []string, outputPath string, fps int) error {
	if len(imagePaths) == 0 {
		return fmt.Errorf("no images to assemble")
	}

	encoder, err := a.FindEncoder(ctx)
	if err != nil {
		return err
	}

	if err := EnsureDir(filepath.Dir(outputPath)); err != nil {
		return err
	}

	listPath := filepath.Join(filepath.Dir(outputPath), "ffmpeg_list.txt")
	if err := os.WriteFile(listPath, []byte(BuildConcatList(imagePaths, fps)), 0o644); err != nil {
		return fmt.Errorf("write concat list: %w", err)
	}
	defer os.Remove(listPath)

	args := []string{
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
		"-vf", scaleFilter,
		"-c:v", "libx264",
		"-preset", "fast",
		"-crf", "23",
		"-pix_fmt", "yuv420p",
		"-r", strconv.Itoa(fps),
		"-y",
		outputPath,
	}

	LogInfo("Running ffmpeg to assemble %d frames into %s", len(imagePaths), outputPath)
	cmd := exec.CommandContext(ctx, encoder, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return &EncodeError{Stderr: stderr.String(), Err: err}
	}
	return nil
}
