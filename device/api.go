package device

import (
	"unsafe"

	vk "github.com/goki/vulkan"
)

// API is the raw Vulkan call surface the renderer depends on. It mirrors
// the subset of device-level entry points the renderer records and
// submits with, returning Go errors in place of result codes.
//
// The default implementation calls through github.com/goki/vulkan. Tests
// substitute a fake via WithAPI to drive the renderer without a device.
type API interface {
	// Command pool and buffer lifecycle.
	CreateCommandPool(dev vk.Device, info *vk.CommandPoolCreateInfo) (vk.CommandPool, error)
	DestroyCommandPool(dev vk.Device, pool vk.CommandPool)
	AllocateCommandBuffers(dev vk.Device, info *vk.CommandBufferAllocateInfo) ([]vk.CommandBuffer, error)
	FreeCommandBuffers(dev vk.Device, pool vk.CommandPool, buffers []vk.CommandBuffer)

	// Fences.
	CreateFence(dev vk.Device, info *vk.FenceCreateInfo) (vk.Fence, error)
	DestroyFence(dev vk.Device, fence vk.Fence)
	WaitForFences(dev vk.Device, fences []vk.Fence, waitAll bool, timeout uint64) error
	ResetFences(dev vk.Device, fences []vk.Fence) error

	// Recording and submission.
	BeginCommandBuffer(cmd vk.CommandBuffer, info *vk.CommandBufferBeginInfo) error
	EndCommandBuffer(cmd vk.CommandBuffer) error
	CmdBeginRenderPass(cmd vk.CommandBuffer, info *vk.RenderPassBeginInfo, contents vk.SubpassContents)
	CmdEndRenderPass(cmd vk.CommandBuffer)
	QueueSubmit(queue vk.Queue, submits []vk.SubmitInfo, fence vk.Fence) error

	// Render passes.
	CreateRenderPass(dev vk.Device, info *vk.RenderPassCreateInfo) (vk.RenderPass, error)
	DestroyRenderPass(dev vk.Device, pass vk.RenderPass)

	// Buffers and memory.
	CreateBuffer(dev vk.Device, info *vk.BufferCreateInfo) (vk.Buffer, error)
	DestroyBuffer(dev vk.Device, buffer vk.Buffer)
	BufferMemoryRequirements(dev vk.Device, buffer vk.Buffer) vk.MemoryRequirements
	AllocateMemory(dev vk.Device, info *vk.MemoryAllocateInfo) (vk.DeviceMemory, error)
	FreeMemory(dev vk.Device, memory vk.DeviceMemory)
	BindBufferMemory(dev vk.Device, buffer vk.Buffer, memory vk.DeviceMemory, offset vk.DeviceSize) error
	MapMemory(dev vk.Device, memory vk.DeviceMemory, offset, size vk.DeviceSize) (unsafe.Pointer, error)
	UnmapMemory(dev vk.Device, memory vk.DeviceMemory)
	CopyToMapped(dst unsafe.Pointer, src []byte)

	// Physical-device queries.
	PhysicalDeviceMemoryProperties(phy vk.PhysicalDevice) vk.PhysicalDeviceMemoryProperties
	PhysicalDeviceProperties(phy vk.PhysicalDevice) vk.PhysicalDeviceProperties
	ImageFormatProperties(phy vk.PhysicalDevice, format vk.Format, tiling vk.ImageTiling, usage vk.ImageUsageFlags) (vk.ImageFormatProperties, bool, error)
}
