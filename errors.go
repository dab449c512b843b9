package vkcomp

import "errors"

// Renderer errors.
var (
	// ErrMissingRequiredExtensions is returned by New when the device was
	// created without the extensions in RequiredDeviceExtensions. This is
	// fatal: no renderer is constructed.
	ErrMissingRequiredExtensions = errors.New("vkcomp: required device extensions are not enabled")

	// ErrNoTarget is returned by Render when no render target is bound.
	// The caller must Bind a target before retrying; no device call is
	// made before this check.
	ErrNoTarget = errors.New("vkcomp: no rendering target set")

	// ErrMissingMandatoryFormats is returned by format lookups when the
	// mandatory shm formats, Argb8888 and Xrgb8888, are unsupported by the
	// device. Construction still succeeds; only format-dependent features
	// fail.
	ErrMissingMandatoryFormats = errors.New("vkcomp: the mandatory shm formats are not supported")

	// ErrEmptyUpload is returned by Frame.Stage for a zero-length
	// payload. Vulkan forbids zero-sized buffers, so the rejection
	// happens before any device call.
	ErrEmptyUpload = errors.New("vkcomp: staged upload is empty")

	// ErrClosed is returned by operations on a renderer after Close.
	ErrClosed = errors.New("vkcomp: renderer is closed")
)
