package internal

import (
	"image"
	"image/color"
	"testing"
)

func TestIsBlankFrame_AllBlack(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 200, 100))
	if !isBlankFrame(img) {
		t.Error("all-black frame should be blank")
	}
}

func TestIsBlankFrame_WithContent(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 200, 100))
	for y := 0; y < 100; y++ {
		for x := 0; x < 200; x++ {
			img.Set(x, y, color.RGBA{R: 40, G: 44, B: 52, A: 255})
		}
	}
	if isBlankFrame(img) {
		t.Error("frame with content reported blank")
	}
}

func TestIsBlankFrame_MostlyBlack(t *testing.T) {
	// A handful of lit pixels under the 1% threshold still counts as blank.
	img := image.NewRGBA(image.Rect(0, 0, 200, 100))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	if !isBlankFrame(img) {
		t.Error("nearly black frame should be blank")
	}
}

func TestIsBlankFrame_Empty(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 0, 0))
	if !isBlankFrame(img) {
		t.Error("empty frame should be blank")
	}
}
