package vkcomp

import (
	vk "github.com/goki/vulkan"

	"github.com/gogpu/vkcomp/alloc"
	"github.com/gogpu/vkcomp/device"
)

// fenceWaitForever is the timeout for teardown fence waits. The wait is
// effectively unbounded: the fence either signals when submitted work
// completes, within driver-bounded time, or was never reset because no
// frame was ever submitted.
const fenceWaitForever = ^uint64(0)

// RequiredDeviceExtensions returns the device extensions that must be
// enabled to construct a Renderer. The list satisfies the rule that every
// enabled extension also enables its dependencies.
func RequiredDeviceExtensions() []string {
	return []string{
		"VK_EXT_image_drm_format_modifier",
		// Or Vulkan 1.2
		"VK_KHR_image_format_list",
	}
}

// OptimalDeviceExtensions returns the extensions a device should enable
// to use a Renderer most fully. Beyond the required set, these allow
// dmabuf import and export in the layers above this one.
func OptimalDeviceExtensions() []string {
	return []string{
		"VK_KHR_external_memory_fd",
		"VK_EXT_external_memory_dma_buf",
		"VK_EXT_image_drm_format_modifier",
		// Or Vulkan 1.2
		"VK_KHR_image_format_list",
	}
}

// RenderFunc records one frame's drawing through the Frame handle. Its
// error becomes the result of Render, surfaced after submission
// bookkeeping completes.
type RenderFunc func(*Frame) error

// Renderer owns the command-submission pipeline for one compositor
// output: a command pool with two long-lived primary command buffers,
// a per-format render pass cache, a staging buffer pool, an allocation
// tracker bounded by the device's limit, and the submission fence.
//
// All methods must be called from the single thread driving the
// compositor loop.
type Renderer struct {
	dev *device.Handle

	// commandPool backs both command buffers; buffers are reset per
	// frame, never reallocated.
	commandPool   vk.CommandPool
	commandBuffer vk.CommandBuffer

	tracker *alloc.Tracker
	staging *stagingPool

	// submitFence signals when a frame's queue submission has completed.
	// Created signaled: the first frame must not wait on a frame that
	// never happened, and immediate teardown must not block.
	submitFence vk.Fence

	// fencePending reports whether the fence will signal: true from the
	// signaled initial state and after a successful submission, false
	// after a reset with no submission attached. Waiting while false
	// would block forever.
	fencePending bool

	passes *renderPassCache

	formats          []FormatInfo
	mandatoryFormats bool

	// target is the currently bound render target. Rendering fails until
	// one is bound.
	target *RenderTarget

	closed bool
}

// New constructs a Renderer on an already-created logical device. It
// fails with ErrMissingRequiredExtensions unless every extension in
// RequiredDeviceExtensions was enabled at device creation.
//
// Construction errors are fatal: whatever was created before the failure
// is released and no partially usable renderer is returned.
//
// The device must outlive the Renderer; holding the Handle for the
// renderer's lifetime enforces that for the Go-side wrapper, and the
// compositor guarantees it for the underlying device.
func New(dev *device.Handle, opts ...Option) (*Renderer, error) {
	for _, ext := range RequiredDeviceExtensions() {
		if !dev.ExtensionEnabled(ext) {
			return nil, ErrMissingRequiredExtensions
		}
	}

	options := defaultRendererOptions()
	for _, opt := range opts {
		opt(&options)
	}

	// The struct starts with null handles and is populated fallibly;
	// destroy skips whatever was never created, so a failure at any step
	// releases exactly the handles acquired so far.
	r := &Renderer{
		dev:         dev,
		commandPool: vk.NullCommandPool,
		submitFence: vk.NullFence,
		tracker:     alloc.New(int(dev.Limits().MaxMemoryAllocationCount)),
	}
	r.passes = newRenderPassCache(dev)

	if err := r.initialize(options); err != nil {
		r.destroy()
		return nil, err
	}

	Logger().Info("vkcomp: renderer ready",
		"maxAllocations", r.tracker.Max(), "shmFormats", len(r.formats))
	return r, nil
}

func (r *Renderer) initialize(options rendererOptions) error {
	api := r.dev.API()
	dev := r.dev.Device()

	poolInfo := vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		Flags:            vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit),
		QueueFamilyIndex: r.dev.QueueFamilyIndex(),
	}
	pool, err := api.CreateCommandPool(dev, &poolInfo)
	if err != nil {
		return err
	}
	r.commandPool = pool

	// Two primary buffers for the renderer's lifetime: one records the
	// frame's draw commands, one records deferred staging uploads.
	allocInfo := vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        pool,
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: 2,
	}
	buffers, err := api.AllocateCommandBuffers(dev, &allocInfo)
	if err != nil {
		return err
	}
	r.commandBuffer = buffers[0]
	r.staging = newStagingPool(r.dev, r.tracker, buffers[1])

	fenceInfo := vk.FenceCreateInfo{
		SType: vk.StructureTypeFenceCreateInfo,
		Flags: vk.FenceCreateFlags(vk.FenceCreateSignaledBit),
	}
	fence, err := api.CreateFence(dev, &fenceInfo)
	if err != nil {
		return err
	}
	r.submitFence = fence
	r.fencePending = true

	formats, mandatory, err := probeFormats(r.dev)
	if err != nil {
		return err
	}
	r.formats = formats
	r.mandatoryFormats = mandatory
	if !mandatory {
		Logger().Warn("vkcomp: mandatory shm formats unsupported; format-dependent features disabled")
	}

	for _, format := range options.prewarmFormats {
		if _, err := r.passes.getOrCreate(format); err != nil {
			return err
		}
	}
	return nil
}

// Device returns the device handle the renderer was built on.
func (r *Renderer) Device() *device.Handle { return r.dev }

// RenderPass returns the cached render pass for a pixel format, creating
// it on first use. The compositor uses it to create framebuffers whose
// targets it later binds. The returned pass is valid until Close.
func (r *Renderer) RenderPass(format vk.Format) (vk.RenderPass, error) {
	if r.closed {
		return vk.NullRenderPass, ErrClosed
	}
	return r.passes.getOrCreate(format)
}

// PendingStagingBuffers reports how many staging buffers are awaiting
// reclamation. Unlike the mutating methods it stays callable after
// Close, reporting zero once teardown reclaimed everything.
func (r *Renderer) PendingStagingBuffers() int { return r.staging.pending() }

// Allocations reports the number of live device-memory allocations
// counted against the device's ceiling. Like PendingStagingBuffers it
// stays callable after Close.
func (r *Renderer) Allocations() int { return r.tracker.Live() }

// Render records, and submits to the device queue, one composited frame.
//
// The bound target is resolved first; without one, Render fails with
// ErrNoTarget before any device call. The primary command buffer is
// begun with one-time-submit usage, the target's render pass is begun
// over a render area clipped to size, and fn records the frame through
// its Frame handle. After fn returns, the render pass ends, the staging
// command buffer's recording ends if any upload opened it, both
// recordings are submitted in one batch, and the submission fence is
// reset then attached to the submission.
//
// Render returns once commands are submitted, not once they execute, so
// the next frame may begin immediately. At most one frame's GPU work is
// in flight relative to CPU recording; the fence bounds it to exactly
// one.
//
// A failure before the render pass opens leaves the renderer idle and
// retryable. A failure after recording began has no defined recovery
// short of Close: the frame was never submitted, so none of its partial
// work executes.
func (r *Renderer) Render(size Size, transform Transform, fn RenderFunc) error {
	if r.closed {
		return ErrClosed
	}
	if r.target == nil {
		return ErrNoTarget
	}
	target := *r.target

	api := r.dev.API()
	dev := r.dev.Device()

	beginInfo := vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit),
	}
	if err := api.BeginCommandBuffer(r.commandBuffer, &beginInfo); err != nil {
		return err
	}

	passInfo := vk.RenderPassBeginInfo{
		SType:       vk.StructureTypeRenderPassBeginInfo,
		RenderPass:  target.RenderPass,
		Framebuffer: target.Framebuffer,
		RenderArea: vk.Rect2D{
			Offset: vk.Offset2D{X: 0, Y: 0},
			Extent: vk.Extent2D{Width: uint32(size.Width), Height: uint32(size.Height)},
		},
	}
	api.CmdBeginRenderPass(r.commandBuffer, &passInfo, vk.SubpassContentsInline)

	frame := &Frame{renderer: r, cmd: r.commandBuffer, target: target}
	frameErr := fn(frame)

	api.CmdEndRenderPass(r.commandBuffer)

	stagingRecorded, err := r.staging.finishRecording()
	if err != nil {
		return err
	}
	if err := api.EndCommandBuffer(r.commandBuffer); err != nil {
		return err
	}

	// The fence must be unsignaled when attached to a submission.
	if err := api.ResetFences(dev, []vk.Fence{r.submitFence}); err != nil {
		return err
	}
	r.fencePending = false

	// Staged uploads execute before the frame that depends on them:
	// the staging buffer is ordered first within the one submission.
	buffers := make([]vk.CommandBuffer, 0, 2)
	if stagingRecorded {
		buffers = append(buffers, r.staging.cmd)
	}
	buffers = append(buffers, r.commandBuffer)

	submit := vk.SubmitInfo{
		SType:              vk.StructureTypeSubmitInfo,
		CommandBufferCount: uint32(len(buffers)),
		PCommandBuffers:    buffers,
	}
	if err := api.QueueSubmit(r.dev.Queue(), []vk.SubmitInfo{submit}, r.submitFence); err != nil {
		return err
	}
	r.fencePending = true

	Logger().Debug("vkcomp: frame submitted",
		"width", size.Width, "height", size.Height,
		"transform", transform.String(),
		"stagedBuffers", r.staging.pending())

	return frameErr
}

// WaitIdle blocks until the last submitted frame has completed on the
// GPU. Compositors call it before reusing or releasing resources the
// frame read, and before ReclaimStaging.
func (r *Renderer) WaitIdle() error {
	if r.closed {
		return ErrClosed
	}
	// A reset fence with no submission attached never signals. That
	// state only arises after a failed submit, which leaves no GPU work
	// to wait for.
	if !r.fencePending {
		return nil
	}
	return r.dev.API().WaitForFences(r.dev.Device(), []vk.Fence{r.submitFence}, true, fenceWaitForever)
}

// ReclaimStaging batch-frees every staging buffer staged since the last
// reclaim, returning the allocation count to its pre-staging value. The
// caller must first prove GPU completion, normally via WaitIdle.
// After Close it is a no-op; teardown already reclaimed everything.
func (r *Renderer) ReclaimStaging() {
	if r.closed {
		return
	}
	r.staging.reclaim()
}

// Close tears the renderer down. It waits on the submission fence so no
// in-flight command reads an object about to be freed, then releases
// everything in reverse order of acquisition. Failures of individual
// cleanup calls are logged, not surfaced; Close cannot propagate them
// further.
//
// Close is idempotent. The renderer is unusable afterwards.
func (r *Renderer) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	r.destroy()
	Logger().Info("vkcomp: renderer closed")
	return nil
}

// destroy releases every handle the renderer created, skipping those
// never acquired. Shared between Close and the construction error path.
func (r *Renderer) destroy() {
	api := r.dev.API()
	dev := r.dev.Device()

	// Proves all submitted work retired before anything is freed. A
	// fence reset but never attached to a successful submission would
	// never signal; nothing was submitted against it, so skip the wait.
	if r.submitFence != vk.NullFence && r.fencePending {
		if err := api.WaitForFences(dev, []vk.Fence{r.submitFence}, true, fenceWaitForever); err != nil {
			Logger().Warn("vkcomp: teardown fence wait failed", "error", err)
		}
	}

	if r.commandPool != vk.NullCommandPool {
		// Pool destruction frees its buffers implicitly; freeing first
		// keeps the teardown order explicit.
		buffers := make([]vk.CommandBuffer, 0, 2)
		if r.commandBuffer != nil {
			buffers = append(buffers, r.commandBuffer)
		}
		if r.staging != nil && r.staging.cmd != nil {
			buffers = append(buffers, r.staging.cmd)
		}
		if len(buffers) > 0 {
			api.FreeCommandBuffers(dev, r.commandPool, buffers)
		}
		api.DestroyCommandPool(dev, r.commandPool)
		r.commandPool = vk.NullCommandPool
		r.commandBuffer = nil
	}

	if r.submitFence != vk.NullFence {
		api.DestroyFence(dev, r.submitFence)
		r.submitFence = vk.NullFence
	}

	r.Unbind()
	r.passes.destroyAll()

	// Safe now: the fence wait above proved command execution completed.
	if r.staging != nil {
		r.staging.reclaim()
	}
}
