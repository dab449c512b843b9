package vkcomp

import (
	vk "github.com/goki/vulkan"
)

// RenderTarget is the framebuffer a frame renders into, together with
// the render pass it was created against and its dimensions.
//
// The compositor creates the framebuffer (typically against a pass
// obtained from Renderer.RenderPass) and owns its lifetime; the renderer
// only records against it. Bind does not validate that Width and Height
// match the framebuffer's extents.
type RenderTarget struct {
	Framebuffer vk.Framebuffer
	RenderPass  vk.RenderPass
	Width       uint32
	Height      uint32
}

// Bind makes target the active render target, replacing and unbinding
// any previous one. Exactly zero or one target is active at a time.
func (r *Renderer) Bind(target RenderTarget) {
	if r.target != nil {
		r.Unbind()
	}
	r.target = &target
	Logger().Debug("vkcomp: bound render target",
		"width", target.Width, "height", target.Height)
}

// Unbind clears the active render target. The framebuffer itself belongs
// to the compositor, which may release it once unbound and proven idle
// via the renderer's submission fence.
func (r *Renderer) Unbind() {
	r.target = nil
}

// Target returns the active render target, if any.
func (r *Renderer) Target() (RenderTarget, bool) {
	if r.target == nil {
		return RenderTarget{}, false
	}
	return *r.target, true
}
