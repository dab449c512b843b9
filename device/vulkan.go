package device

import (
	"unsafe"

	vk "github.com/goki/vulkan"
)

// vulkanAPI implements API by calling through github.com/goki/vulkan.
// It holds no state; every method takes the handles it operates on.
type vulkanAPI struct{}

func (vulkanAPI) CreateCommandPool(dev vk.Device, info *vk.CommandPoolCreateInfo) (vk.CommandPool, error) {
	var pool vk.CommandPool
	if err := result("vkCreateCommandPool", vk.CreateCommandPool(dev, info, nil, &pool)); err != nil {
		return vk.NullCommandPool, err
	}
	return pool, nil
}

func (vulkanAPI) DestroyCommandPool(dev vk.Device, pool vk.CommandPool) {
	vk.DestroyCommandPool(dev, pool, nil)
}

func (vulkanAPI) AllocateCommandBuffers(dev vk.Device, info *vk.CommandBufferAllocateInfo) ([]vk.CommandBuffer, error) {
	buffers := make([]vk.CommandBuffer, info.CommandBufferCount)
	if err := result("vkAllocateCommandBuffers", vk.AllocateCommandBuffers(dev, info, buffers)); err != nil {
		return nil, err
	}
	return buffers, nil
}

func (vulkanAPI) FreeCommandBuffers(dev vk.Device, pool vk.CommandPool, buffers []vk.CommandBuffer) {
	vk.FreeCommandBuffers(dev, pool, uint32(len(buffers)), buffers)
}

func (vulkanAPI) CreateFence(dev vk.Device, info *vk.FenceCreateInfo) (vk.Fence, error) {
	var fence vk.Fence
	if err := result("vkCreateFence", vk.CreateFence(dev, info, nil, &fence)); err != nil {
		return vk.NullFence, err
	}
	return fence, nil
}

func (vulkanAPI) DestroyFence(dev vk.Device, fence vk.Fence) {
	vk.DestroyFence(dev, fence, nil)
}

func (vulkanAPI) WaitForFences(dev vk.Device, fences []vk.Fence, waitAll bool, timeout uint64) error {
	all := vk.False
	if waitAll {
		all = vk.True
	}
	return result("vkWaitForFences", vk.WaitForFences(dev, uint32(len(fences)), fences, vk.Bool32(all), timeout))
}

func (vulkanAPI) ResetFences(dev vk.Device, fences []vk.Fence) error {
	return result("vkResetFences", vk.ResetFences(dev, uint32(len(fences)), fences))
}

func (vulkanAPI) BeginCommandBuffer(cmd vk.CommandBuffer, info *vk.CommandBufferBeginInfo) error {
	return result("vkBeginCommandBuffer", vk.BeginCommandBuffer(cmd, info))
}

func (vulkanAPI) EndCommandBuffer(cmd vk.CommandBuffer) error {
	return result("vkEndCommandBuffer", vk.EndCommandBuffer(cmd))
}

func (vulkanAPI) CmdBeginRenderPass(cmd vk.CommandBuffer, info *vk.RenderPassBeginInfo, contents vk.SubpassContents) {
	vk.CmdBeginRenderPass(cmd, info, contents)
}

func (vulkanAPI) CmdEndRenderPass(cmd vk.CommandBuffer) {
	vk.CmdEndRenderPass(cmd)
}

func (vulkanAPI) QueueSubmit(queue vk.Queue, submits []vk.SubmitInfo, fence vk.Fence) error {
	return result("vkQueueSubmit", vk.QueueSubmit(queue, uint32(len(submits)), submits, fence))
}

func (vulkanAPI) CreateRenderPass(dev vk.Device, info *vk.RenderPassCreateInfo) (vk.RenderPass, error) {
	var pass vk.RenderPass
	if err := result("vkCreateRenderPass", vk.CreateRenderPass(dev, info, nil, &pass)); err != nil {
		return vk.NullRenderPass, err
	}
	return pass, nil
}

func (vulkanAPI) DestroyRenderPass(dev vk.Device, pass vk.RenderPass) {
	vk.DestroyRenderPass(dev, pass, nil)
}

func (vulkanAPI) CreateBuffer(dev vk.Device, info *vk.BufferCreateInfo) (vk.Buffer, error) {
	var buffer vk.Buffer
	if err := result("vkCreateBuffer", vk.CreateBuffer(dev, info, nil, &buffer)); err != nil {
		return vk.NullBuffer, err
	}
	return buffer, nil
}

func (vulkanAPI) DestroyBuffer(dev vk.Device, buffer vk.Buffer) {
	vk.DestroyBuffer(dev, buffer, nil)
}

func (vulkanAPI) BufferMemoryRequirements(dev vk.Device, buffer vk.Buffer) vk.MemoryRequirements {
	var reqs vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(dev, buffer, &reqs)
	reqs.Deref()
	return reqs
}

func (vulkanAPI) AllocateMemory(dev vk.Device, info *vk.MemoryAllocateInfo) (vk.DeviceMemory, error) {
	var memory vk.DeviceMemory
	if err := result("vkAllocateMemory", vk.AllocateMemory(dev, info, nil, &memory)); err != nil {
		return vk.NullDeviceMemory, err
	}
	return memory, nil
}

func (vulkanAPI) FreeMemory(dev vk.Device, memory vk.DeviceMemory) {
	vk.FreeMemory(dev, memory, nil)
}

func (vulkanAPI) BindBufferMemory(dev vk.Device, buffer vk.Buffer, memory vk.DeviceMemory, offset vk.DeviceSize) error {
	return result("vkBindBufferMemory", vk.BindBufferMemory(dev, buffer, memory, offset))
}

func (vulkanAPI) MapMemory(dev vk.Device, memory vk.DeviceMemory, offset, size vk.DeviceSize) (unsafe.Pointer, error) {
	var ptr unsafe.Pointer
	if err := result("vkMapMemory", vk.MapMemory(dev, memory, offset, size, 0, &ptr)); err != nil {
		return nil, err
	}
	return ptr, nil
}

func (vulkanAPI) UnmapMemory(dev vk.Device, memory vk.DeviceMemory) {
	vk.UnmapMemory(dev, memory)
}

func (vulkanAPI) CopyToMapped(dst unsafe.Pointer, src []byte) {
	vk.Memcopy(dst, src)
}

func (vulkanAPI) PhysicalDeviceMemoryProperties(phy vk.PhysicalDevice) vk.PhysicalDeviceMemoryProperties {
	var props vk.PhysicalDeviceMemoryProperties
	vk.GetPhysicalDeviceMemoryProperties(phy, &props)
	props.Deref()
	for i := range props.MemoryTypes {
		props.MemoryTypes[i].Deref()
	}
	for i := range props.MemoryHeaps {
		props.MemoryHeaps[i].Deref()
	}
	return props
}

func (vulkanAPI) PhysicalDeviceProperties(phy vk.PhysicalDevice) vk.PhysicalDeviceProperties {
	var props vk.PhysicalDeviceProperties
	vk.GetPhysicalDeviceProperties(phy, &props)
	props.Deref()
	props.Limits.Deref()
	return props
}

func (vulkanAPI) ImageFormatProperties(phy vk.PhysicalDevice, format vk.Format, tiling vk.ImageTiling, usage vk.ImageUsageFlags) (vk.ImageFormatProperties, bool, error) {
	var props vk.ImageFormatProperties
	res := vk.GetPhysicalDeviceImageFormatProperties(phy, format, vk.ImageType2d, tiling, usage, 0, &props)
	if res == vk.ErrorFormatNotSupported {
		return props, false, nil
	}
	if err := result("vkGetPhysicalDeviceImageFormatProperties", res); err != nil {
		return props, false, err
	}
	props.Deref()
	props.MaxExtent.Deref()
	return props, true, nil
}
