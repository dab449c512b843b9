package vkcomp

import (
	"fmt"

	vk "github.com/goki/vulkan"

	"github.com/gogpu/vkcomp/device"
)

// ShmFormat is a wl_shm pixel format code as carried on the wire by the
// display protocol. Argb8888 and Xrgb8888 use the reserved codes 0 and 1;
// every other format is its fourcc value.
type ShmFormat uint32

const (
	ShmFormatArgb8888 ShmFormat = 0
	ShmFormatXrgb8888 ShmFormat = 1
	ShmFormatXbgr8888 ShmFormat = 0x34324258
	ShmFormatAbgr8888 ShmFormat = 0x34324241
)

var shmFormatNames = map[ShmFormat]string{
	ShmFormatArgb8888: "argb8888",
	ShmFormatXrgb8888: "xrgb8888",
	ShmFormatXbgr8888: "xbgr8888",
	ShmFormatAbgr8888: "abgr8888",
}

func (f ShmFormat) String() string {
	if name, ok := shmFormatNames[f]; ok {
		return name
	}
	return fmt.Sprintf("shm(0x%08x)", uint32(f))
}

// FormatInfo describes one shm format the device supports: the
// byte-compatible Vulkan format used for its images, and the maximum
// image extent the device reports for that format.
type FormatInfo struct {
	Shm       ShmFormat
	Vk        vk.Format
	MaxExtent vk.Extent2D
}

// formatMappings pairs each candidate shm format with the Vulkan format
// whose memory layout matches it byte for byte on little-endian hosts.
// No conversion happens on upload; staging copies are raw.
var formatMappings = []struct {
	shm ShmFormat
	vk  vk.Format
}{
	{ShmFormatArgb8888, vk.FormatB8g8r8a8Srgb},
	{ShmFormatXrgb8888, vk.FormatB8g8r8a8Srgb},
	{ShmFormatXbgr8888, vk.FormatR8g8b8a8Srgb},
	{ShmFormatAbgr8888, vk.FormatR8g8b8a8Srgb},
}

// shmImageUsage is the usage shm-backed images are created with: sampled
// for compositing, transfer destination for staged uploads.
const shmImageUsage = vk.ImageUsageFlags(vk.ImageUsageSampledBit | vk.ImageUsageTransferDstBit)

// probeFormats asks the device which candidate shm formats it supports.
// The second return reports whether both mandatory formats, Argb8888 and
// Xrgb8888, are available.
func probeFormats(dev *device.Handle) ([]FormatInfo, bool, error) {
	api := dev.API()
	phy := dev.PhysicalDevice()

	var infos []FormatInfo
	supported := make(map[ShmFormat]bool)
	for _, mapping := range formatMappings {
		props, ok, err := api.ImageFormatProperties(phy, mapping.vk, vk.ImageTilingOptimal, shmImageUsage)
		if err != nil {
			return nil, false, err
		}
		if !ok {
			continue
		}
		supported[mapping.shm] = true
		infos = append(infos, FormatInfo{
			Shm: mapping.shm,
			Vk:  mapping.vk,
			MaxExtent: vk.Extent2D{
				Width:  props.MaxExtent.Width,
				Height: props.MaxExtent.Height,
			},
		})
	}

	mandatory := supported[ShmFormatArgb8888] && supported[ShmFormatXrgb8888]
	return infos, mandatory, nil
}

// ShmFormats returns the shm formats the device supports, in probing
// order.
func (r *Renderer) ShmFormats() []ShmFormat {
	formats := make([]ShmFormat, len(r.formats))
	for i, info := range r.formats {
		formats[i] = info.Shm
	}
	return formats
}

// FormatInfo resolves an shm format to its device mapping. It fails with
// ErrMissingMandatoryFormats when the device lacks the baseline formats,
// making every format-dependent feature unavailable.
func (r *Renderer) FormatInfo(format ShmFormat) (FormatInfo, error) {
	if !r.mandatoryFormats {
		return FormatInfo{}, ErrMissingMandatoryFormats
	}
	for _, info := range r.formats {
		if info.Shm == format {
			return info, nil
		}
	}
	return FormatInfo{}, fmt.Errorf("vkcomp: shm format %s is not supported by the device", format)
}
