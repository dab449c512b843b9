package vkcomp

import (
	vk "github.com/goki/vulkan"
)

// Frame is the handle passed to the render callback for one composited
// frame. It is bound to the primary command buffer with an open render
// pass; the callback records draw commands through it and stages uploads
// with Stage.
//
// A Frame is only valid for the duration of the callback. The callback
// must not begin or end render passes itself.
type Frame struct {
	renderer *Renderer
	cmd      vk.CommandBuffer
	target   RenderTarget
}

// CommandBuffer returns the primary command buffer. The render pass is
// open; only commands legal inside a render pass may be recorded.
func (f *Frame) CommandBuffer() vk.CommandBuffer { return f.cmd }

// Target returns the render target this frame draws into.
func (f *Frame) Target() RenderTarget { return f.target }

// Stage uploads data into a transient staging buffer for use by copy
// commands this frame. The first Stage of a frame opens the staging
// command buffer's recording scope; the copy that consumes the staged
// bytes is recorded through [Frame.StagingCommandBuffer], and the
// renderer closes and submits the recording with the frame. The returned
// buffer stays valid until the renderer reclaims staging memory after
// the submission fence signals.
//
// Stage fails with ErrEmptyUpload for a zero-length payload, and with
// alloc.ErrTooManyAllocations when the device's allocation ceiling is
// reached; freeing existing allocations is the only recovery.
func (f *Frame) Stage(data []byte) (*StagingBuffer, error) {
	return f.renderer.staging.stage(data)
}

// StagingCommandBuffer returns the staging command buffer with its
// recording scope open, opening it on first use. Copy commands that read
// from staged buffers are recorded here, outside the frame's render
// pass; the renderer ends the recording and submits it ahead of the
// frame's own commands.
func (f *Frame) StagingCommandBuffer() (vk.CommandBuffer, error) {
	return f.renderer.staging.commandBuffer()
}
