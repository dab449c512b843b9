// Package devicetest provides a fake implementation of device.API for
// driving the renderer in tests without a GPU.
//
// The fake mints opaque handles, tracks live objects, and records the
// call sequence so tests can assert on recording and submission behavior.
// Failures are injected per entry point via FailOps.
package devicetest

import (
	"unsafe"

	vk "github.com/goki/vulkan"

	"github.com/gogpu/vkcomp/device"
)

// Fake implements device.API in memory.
//
// The zero value is not usable; construct with New.
type Fake struct {
	// MaxAllocations is the reported maxMemoryAllocationCount limit.
	MaxAllocations uint32

	// MemoryTypes are the reported device memory types. New installs a
	// single host-visible, host-coherent type.
	MemoryTypes []vk.MemoryType

	// UnsupportedFormats marks formats that ImageFormatProperties reports
	// as unsupported.
	UnsupportedFormats map[vk.Format]bool

	// FailOps injects a failure result for a named entry point, e.g.
	// "vkCreateFence". The failure fires on every call to that entry
	// point until removed.
	FailOps map[string]vk.Result

	// Calls counts invocations per entry point name.
	Calls map[string]int

	// Begun and Ended count recording begins/ends per command buffer.
	Begun map[vk.CommandBuffer]int
	Ended map[vk.CommandBuffer]int

	// Submissions records the command buffers of each queue submission in
	// order.
	Submissions [][]vk.CommandBuffer

	// Live object tables, keyed by minted handle.
	LiveBuffers      map[vk.Buffer]bool
	LiveMemory       map[vk.DeviceMemory]bool
	LiveRenderPasses map[vk.RenderPass]bool
	LiveFences       map[vk.Fence]bool
	LivePools        map[vk.CommandPool]bool

	// Uploads collects every byte slice copied into mapped memory.
	Uploads [][]byte

	alive    []*byte
	mapped   map[unsafe.Pointer][]byte
	memSizes map[vk.DeviceMemory]vk.DeviceSize
}

// New creates a Fake with a generous allocation limit and one
// host-visible, host-coherent memory type.
func New() *Fake {
	return &Fake{
		MaxAllocations: 4096,
		MemoryTypes: []vk.MemoryType{{
			PropertyFlags: vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit | vk.MemoryPropertyHostCoherentBit),
			HeapIndex:     0,
		}},
		UnsupportedFormats: make(map[vk.Format]bool),
		FailOps:            make(map[string]vk.Result),
		Calls:              make(map[string]int),
		Begun:              make(map[vk.CommandBuffer]int),
		Ended:              make(map[vk.CommandBuffer]int),
		LiveBuffers:        make(map[vk.Buffer]bool),
		LiveMemory:         make(map[vk.DeviceMemory]bool),
		LiveRenderPasses:   make(map[vk.RenderPass]bool),
		LiveFences:         make(map[vk.Fence]bool),
		LivePools:          make(map[vk.CommandPool]bool),
		mapped:             make(map[unsafe.Pointer][]byte),
		memSizes:           make(map[vk.DeviceMemory]vk.DeviceSize),
	}
}

// call counts an entry point and returns an injected failure, if any.
func (f *Fake) call(op string) error {
	f.Calls[op]++
	if res, ok := f.FailOps[op]; ok {
		return &device.Error{Op: op, Result: res}
	}
	return nil
}

// CallCount reports how many times the named entry point was invoked.
func (f *Fake) CallCount(op string) int { return f.Calls[op] }

// TotalCalls reports the number of entry point invocations across all
// operations, including physical-device queries.
func (f *Fake) TotalCalls() int {
	n := 0
	for _, c := range f.Calls {
		n += c
	}
	return n
}

// handle mints a distinct opaque handle. goki/vulkan defines handle
// types as pointers on 64-bit platforms, so each handle is backed by its
// own allocation, kept alive for the Fake's lifetime.
func (f *Fake) handle() unsafe.Pointer {
	p := new(byte)
	f.alive = append(f.alive, p)
	return unsafe.Pointer(p)
}

func (f *Fake) newCommandBuffer() vk.CommandBuffer {
	return vk.CommandBuffer(f.handle())
}

// NewFramebuffer mints a framebuffer handle, standing in for the
// framebuffer the compositor creates against a render pass.
func (f *Fake) NewFramebuffer() vk.Framebuffer {
	return vk.Framebuffer(f.handle())
}

func (f *Fake) CreateCommandPool(dev vk.Device, info *vk.CommandPoolCreateInfo) (vk.CommandPool, error) {
	if err := f.call("vkCreateCommandPool"); err != nil {
		return vk.NullCommandPool, err
	}
	pool := vk.CommandPool(f.handle())
	f.LivePools[pool] = true
	return pool, nil
}

func (f *Fake) DestroyCommandPool(dev vk.Device, pool vk.CommandPool) {
	f.Calls["vkDestroyCommandPool"]++
	delete(f.LivePools, pool)
}

func (f *Fake) AllocateCommandBuffers(dev vk.Device, info *vk.CommandBufferAllocateInfo) ([]vk.CommandBuffer, error) {
	if err := f.call("vkAllocateCommandBuffers"); err != nil {
		return nil, err
	}
	buffers := make([]vk.CommandBuffer, info.CommandBufferCount)
	for i := range buffers {
		buffers[i] = f.newCommandBuffer()
	}
	return buffers, nil
}

func (f *Fake) FreeCommandBuffers(dev vk.Device, pool vk.CommandPool, buffers []vk.CommandBuffer) {
	f.Calls["vkFreeCommandBuffers"]++
}

func (f *Fake) CreateFence(dev vk.Device, info *vk.FenceCreateInfo) (vk.Fence, error) {
	if err := f.call("vkCreateFence"); err != nil {
		return vk.NullFence, err
	}
	fence := vk.Fence(f.handle())
	f.LiveFences[fence] = true
	return fence, nil
}

func (f *Fake) DestroyFence(dev vk.Device, fence vk.Fence) {
	f.Calls["vkDestroyFence"]++
	delete(f.LiveFences, fence)
}

func (f *Fake) WaitForFences(dev vk.Device, fences []vk.Fence, waitAll bool, timeout uint64) error {
	return f.call("vkWaitForFences")
}

func (f *Fake) ResetFences(dev vk.Device, fences []vk.Fence) error {
	return f.call("vkResetFences")
}

func (f *Fake) BeginCommandBuffer(cmd vk.CommandBuffer, info *vk.CommandBufferBeginInfo) error {
	if err := f.call("vkBeginCommandBuffer"); err != nil {
		return err
	}
	f.Begun[cmd]++
	return nil
}

func (f *Fake) EndCommandBuffer(cmd vk.CommandBuffer) error {
	if err := f.call("vkEndCommandBuffer"); err != nil {
		return err
	}
	f.Ended[cmd]++
	return nil
}

func (f *Fake) CmdBeginRenderPass(cmd vk.CommandBuffer, info *vk.RenderPassBeginInfo, contents vk.SubpassContents) {
	f.Calls["vkCmdBeginRenderPass"]++
}

func (f *Fake) CmdEndRenderPass(cmd vk.CommandBuffer) {
	f.Calls["vkCmdEndRenderPass"]++
}

func (f *Fake) QueueSubmit(queue vk.Queue, submits []vk.SubmitInfo, fence vk.Fence) error {
	if err := f.call("vkQueueSubmit"); err != nil {
		return err
	}
	for _, submit := range submits {
		buffers := make([]vk.CommandBuffer, len(submit.PCommandBuffers))
		copy(buffers, submit.PCommandBuffers)
		f.Submissions = append(f.Submissions, buffers)
	}
	return nil
}

func (f *Fake) CreateRenderPass(dev vk.Device, info *vk.RenderPassCreateInfo) (vk.RenderPass, error) {
	if err := f.call("vkCreateRenderPass"); err != nil {
		return vk.NullRenderPass, err
	}
	pass := vk.RenderPass(f.handle())
	f.LiveRenderPasses[pass] = true
	return pass, nil
}

func (f *Fake) DestroyRenderPass(dev vk.Device, pass vk.RenderPass) {
	f.Calls["vkDestroyRenderPass"]++
	delete(f.LiveRenderPasses, pass)
}

func (f *Fake) CreateBuffer(dev vk.Device, info *vk.BufferCreateInfo) (vk.Buffer, error) {
	if err := f.call("vkCreateBuffer"); err != nil {
		return vk.NullBuffer, err
	}
	buffer := vk.Buffer(f.handle())
	f.LiveBuffers[buffer] = true
	return buffer, nil
}

func (f *Fake) DestroyBuffer(dev vk.Device, buffer vk.Buffer) {
	f.Calls["vkDestroyBuffer"]++
	delete(f.LiveBuffers, buffer)
}

func (f *Fake) BufferMemoryRequirements(dev vk.Device, buffer vk.Buffer) vk.MemoryRequirements {
	f.Calls["vkGetBufferMemoryRequirements"]++
	return vk.MemoryRequirements{
		Size:           256, // fixed plausible aligned size
		Alignment:      256,
		MemoryTypeBits: ^uint32(0),
	}
}

func (f *Fake) AllocateMemory(dev vk.Device, info *vk.MemoryAllocateInfo) (vk.DeviceMemory, error) {
	if err := f.call("vkAllocateMemory"); err != nil {
		return vk.NullDeviceMemory, err
	}
	memory := vk.DeviceMemory(f.handle())
	f.LiveMemory[memory] = true
	f.memSizes[memory] = info.AllocationSize
	return memory, nil
}

func (f *Fake) FreeMemory(dev vk.Device, memory vk.DeviceMemory) {
	f.Calls["vkFreeMemory"]++
	delete(f.LiveMemory, memory)
}

func (f *Fake) BindBufferMemory(dev vk.Device, buffer vk.Buffer, memory vk.DeviceMemory, offset vk.DeviceSize) error {
	return f.call("vkBindBufferMemory")
}

func (f *Fake) MapMemory(dev vk.Device, memory vk.DeviceMemory, offset, size vk.DeviceSize) (unsafe.Pointer, error) {
	if err := f.call("vkMapMemory"); err != nil {
		return nil, err
	}
	n := size
	if n == vk.DeviceSize(vk.WholeSize) {
		n = f.memSizes[memory]
	}
	backing := make([]byte, n)
	ptr := unsafe.Pointer(&backing[0])
	f.mapped[ptr] = backing
	return ptr, nil
}

func (f *Fake) UnmapMemory(dev vk.Device, memory vk.DeviceMemory) {
	f.Calls["vkUnmapMemory"]++
}

func (f *Fake) CopyToMapped(dst unsafe.Pointer, src []byte) {
	f.Calls["memcopy"]++
	if backing, ok := f.mapped[dst]; ok {
		copy(backing, src)
	}
	f.Uploads = append(f.Uploads, append([]byte(nil), src...))
}

func (f *Fake) PhysicalDeviceMemoryProperties(phy vk.PhysicalDevice) vk.PhysicalDeviceMemoryProperties {
	f.Calls["vkGetPhysicalDeviceMemoryProperties"]++
	var props vk.PhysicalDeviceMemoryProperties
	props.MemoryTypeCount = uint32(len(f.MemoryTypes))
	copy(props.MemoryTypes[:], f.MemoryTypes)
	return props
}

func (f *Fake) PhysicalDeviceProperties(phy vk.PhysicalDevice) vk.PhysicalDeviceProperties {
	f.Calls["vkGetPhysicalDeviceProperties"]++
	return vk.PhysicalDeviceProperties{
		Limits: vk.PhysicalDeviceLimits{
			MaxMemoryAllocationCount: f.MaxAllocations,
		},
	}
}

func (f *Fake) ImageFormatProperties(phy vk.PhysicalDevice, format vk.Format, tiling vk.ImageTiling, usage vk.ImageUsageFlags) (vk.ImageFormatProperties, bool, error) {
	if err := f.call("vkGetPhysicalDeviceImageFormatProperties"); err != nil {
		return vk.ImageFormatProperties{}, false, err
	}
	if f.UnsupportedFormats[format] {
		return vk.ImageFormatProperties{}, false, nil
	}
	return vk.ImageFormatProperties{
		MaxExtent: vk.Extent3D{Width: 16384, Height: 16384, Depth: 1},
	}, true, nil
}
