// Package vkcomp provides a per-frame Vulkan rendering backend for
// compositing display servers.
//
// # Overview
//
// vkcomp owns the command-submission pipeline of a compositor: a pair of
// command buffers shared by one command pool, a pool of transient staging
// buffers for CPU to GPU uploads, a cache of render passes keyed by pixel
// format, a bounded device-memory allocation tracker, and a single
// submission fence that orders GPU completion against CPU reuse of frame
// resources.
//
// Instance and device selection are the caller's responsibility. The
// compositor creates a logical device and queue, wraps them in a
// [device.Handle], and hands that to [New]. The renderer only verifies
// that the extensions returned by [RequiredDeviceExtensions] are enabled.
//
// # Quick Start
//
//	import (
//	    "github.com/gogpu/vkcomp"
//	    "github.com/gogpu/vkcomp/device"
//	)
//
//	dev := device.New(logical, queue, phy, queueFamily, enabledExts)
//	r, err := vkcomp.New(dev)
//	if err != nil {
//	    // construction errors are fatal; no partially usable renderer exists
//	}
//	defer r.Close()
//
//	r.Bind(vkcomp.RenderTarget{Framebuffer: fb, RenderPass: rp, Width: 256, Height: 256})
//	err = r.Render(vkcomp.Size{Width: 256, Height: 256}, vkcomp.TransformNormal,
//	    func(f *vkcomp.Frame) error {
//	        // record draws into f.CommandBuffer(), stage uploads with f.Stage
//	        return nil
//	    })
//
// # Threading
//
// A Renderer is driven by a single thread, the one running the
// compositor's event loop. No method is safe for concurrent use except
// [SetLogger] and [Logger]. Render returns once commands are submitted,
// not once they execute; the submission fence is the only ordering
// primitive between a frame's GPU execution and CPU reuse of its
// resources.
//
// # Architecture
//
// The library is organized into:
//   - Public API: Renderer, Frame, RenderTarget, StagingBuffer
//   - alloc: allocation-count bookkeeping against the device limit
//   - device: the device handle and the raw Vulkan call surface
//   - internal/cache: insert-only memoization used by the render pass cache
package vkcomp
