package vkcomp

import (
	vk "github.com/goki/vulkan"
)

// Option configures a Renderer during creation.
//
// Example:
//
//	// Default construction
//	r, err := vkcomp.New(dev)
//
//	// Skip render pass prewarming for devices that never composite
//	// into the common format
//	r, err := vkcomp.New(dev, vkcomp.WithPrewarmedFormats())
type Option func(*rendererOptions)

// rendererOptions holds optional configuration for Renderer creation.
type rendererOptions struct {
	prewarmFormats []vk.Format
}

// defaultRendererOptions returns the default renderer options.
func defaultRendererOptions() rendererOptions {
	return rendererOptions{
		// argb8888 framebuffers are overwhelmingly the common case, so
		// the matching render pass is created eagerly.
		prewarmFormats: []vk.Format{vk.FormatB8g8r8a8Srgb},
	}
}

// WithPrewarmedFormats replaces the set of pixel formats whose render
// passes are created at construction instead of on first use. Pass no
// formats to disable prewarming entirely.
func WithPrewarmedFormats(formats ...vk.Format) Option {
	return func(o *rendererOptions) {
		o.prewarmFormats = formats
	}
}
