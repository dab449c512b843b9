package vkcomp

import (
	"errors"
	"testing"

	vk "github.com/goki/vulkan"

	"github.com/gogpu/vkcomp/device/devicetest"
)

func TestShmFormatsProbed(t *testing.T) {
	f := devicetest.New()
	r := newTestRenderer(t, f)
	defer r.Close()

	formats := r.ShmFormats()
	if len(formats) != 4 {
		t.Fatalf("supported shm formats: got %d, want 4", len(formats))
	}
	seen := make(map[ShmFormat]bool, len(formats))
	for _, format := range formats {
		seen[format] = true
	}
	for _, want := range []ShmFormat{ShmFormatArgb8888, ShmFormatXrgb8888, ShmFormatXbgr8888, ShmFormatAbgr8888} {
		if !seen[want] {
			t.Errorf("missing shm format %s", want)
		}
	}
}

func TestFormatInfoResolvesMapping(t *testing.T) {
	f := devicetest.New()
	r := newTestRenderer(t, f)
	defer r.Close()

	info, err := r.FormatInfo(ShmFormatArgb8888)
	if err != nil {
		t.Fatalf("FormatInfo: %v", err)
	}
	if info.Vk != vk.FormatB8g8r8a8Srgb {
		t.Errorf("argb8888 vulkan format: got %d, want FormatB8g8r8a8Srgb", info.Vk)
	}
	if info.MaxExtent.Width == 0 || info.MaxExtent.Height == 0 {
		t.Error("max extent not populated from format properties")
	}

	info, err = r.FormatInfo(ShmFormatXbgr8888)
	if err != nil {
		t.Fatalf("FormatInfo: %v", err)
	}
	if info.Vk != vk.FormatR8g8b8a8Srgb {
		t.Errorf("xbgr8888 vulkan format: got %d, want FormatR8g8b8a8Srgb", info.Vk)
	}
}

func TestMissingMandatoryFormats(t *testing.T) {
	f := devicetest.New()
	f.UnsupportedFormats[vk.FormatB8g8r8a8Srgb] = true

	// Construction still succeeds; only format-dependent lookups fail.
	r := newTestRenderer(t, f)
	defer r.Close()

	if _, err := r.FormatInfo(ShmFormatArgb8888); !errors.Is(err, ErrMissingMandatoryFormats) {
		t.Errorf("FormatInfo: got %v, want ErrMissingMandatoryFormats", err)
	}
	// Even formats the device does support are gated on the baseline.
	if _, err := r.FormatInfo(ShmFormatXbgr8888); !errors.Is(err, ErrMissingMandatoryFormats) {
		t.Errorf("FormatInfo: got %v, want ErrMissingMandatoryFormats", err)
	}
}

func TestUnsupportedOptionalFormat(t *testing.T) {
	f := devicetest.New()
	f.UnsupportedFormats[vk.FormatR8g8b8a8Srgb] = true
	r := newTestRenderer(t, f)
	defer r.Close()

	if len(r.ShmFormats()) != 2 {
		t.Fatalf("supported shm formats: got %d, want 2", len(r.ShmFormats()))
	}
	if _, err := r.FormatInfo(ShmFormatArgb8888); err != nil {
		t.Errorf("mandatory format lookup: %v", err)
	}
	_, err := r.FormatInfo(ShmFormatXbgr8888)
	if err == nil || errors.Is(err, ErrMissingMandatoryFormats) {
		t.Errorf("optional format lookup: got %v, want plain unsupported error", err)
	}
}

func TestShmFormatString(t *testing.T) {
	tests := []struct {
		format ShmFormat
		want   string
	}{
		{ShmFormatArgb8888, "argb8888"},
		{ShmFormatXrgb8888, "xrgb8888"},
		{ShmFormatXbgr8888, "xbgr8888"},
		{ShmFormatAbgr8888, "abgr8888"},
		{ShmFormat(0x34325258), "shm(0x34325258)"},
	}
	for _, tt := range tests {
		if got := tt.format.String(); got != tt.want {
			t.Errorf("ShmFormat(%#x).String() = %q, want %q", uint32(tt.format), got, tt.want)
		}
	}
}
