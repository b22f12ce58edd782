package models

import (
	"math"
	"testing"
)

func TestLoadGLBInvalidPath(t *testing.T) {
	_, err := LoadGLB("/nonexistent/path.glb")
	if err == nil {
		t.Error("Expected error for nonexistent file")
	}

	if _, _, err := LoadGLBWithTexture("/nonexistent/path.glb", nil); err == nil {
		t.Error("Expected error for nonexistent file with texture")
	}
}

func TestGLTFLoaderCreation(t *testing.T) {
	loader := NewGLTFLoader()
	if loader == nil {
		t.Fatal("NewGLTFLoader returned nil")
	}
	if !loader.CalculateNormals {
		t.Error("CalculateNormals should default to true")
	}
	if !loader.SmoothNormals {
		t.Error("SmoothNormals should default to true")
	}
	if loader.Recenter || loader.FitRadius != 0 {
		t.Error("loader should keep model placement by default")
	}
}

func TestReadFloat32(t *testing.T) {
	tests := []float32{0, 1, -2.5, 1e-7, math.MaxFloat32}
	for _, want := range tests {
		bits := math.Float32bits(want)
		b := []byte{byte(bits), byte(bits >> 8), byte(bits >> 16), byte(bits >> 24)}
		if got := readFloat32(b); got != want {
			t.Errorf("readFloat32(%v) = %v", want, got)
		}
	}
}

func TestColorFactor(t *testing.T) {
	f32 := [4]float32{0.5, 0.25, 1, 1}
	if got := colorFactor(&f32); got != [4]float64{0.5, 0.25, 1, 1} {
		t.Errorf("colorFactor(float32) = %v", got)
	}
	f64 := [4]float64{0.1, 0.2, 0.3, 0.4}
	if got := colorFactor(&f64); got != f64 {
		t.Errorf("colorFactor(float64) = %v", got)
	}
}
