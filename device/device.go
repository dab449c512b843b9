package device

import (
	vk "github.com/goki/vulkan"
)

// Option configures a Handle during creation.
type Option func(*Handle)

// WithAPI substitutes the raw Vulkan call surface. Production code never
// needs this; tests inject a fake so the renderer can run without a GPU.
func WithAPI(api API) Option {
	return func(h *Handle) {
		h.api = api
	}
}

// Handle carries the logical device the compositor created, along with
// the queue the renderer submits to and the physical-device capabilities
// it consults. The Handle does not own the device; the compositor must
// keep the device alive until every renderer built on the Handle has been
// closed.
type Handle struct {
	api API

	device      vk.Device
	queue       vk.Queue
	phy         vk.PhysicalDevice
	queueFamily uint32
	extensions  map[string]struct{}

	memory vk.PhysicalDeviceMemoryProperties
	limits vk.PhysicalDeviceLimits
}

// New wraps an already-created logical device. enabledExtensions is the
// extension list the device was created with; the renderer checks it
// against RequiredDeviceExtensions at construction. Physical-device
// memory properties and limits are queried once, here.
func New(dev vk.Device, queue vk.Queue, phy vk.PhysicalDevice, queueFamilyIndex uint32, enabledExtensions []string, opts ...Option) *Handle {
	h := &Handle{
		api:         vulkanAPI{},
		device:      dev,
		queue:       queue,
		phy:         phy,
		queueFamily: queueFamilyIndex,
		extensions:  make(map[string]struct{}, len(enabledExtensions)),
	}
	for _, ext := range enabledExtensions {
		h.extensions[ext] = struct{}{}
	}
	for _, opt := range opts {
		opt(h)
	}

	h.memory = h.api.PhysicalDeviceMemoryProperties(phy)
	h.limits = h.api.PhysicalDeviceProperties(phy).Limits
	return h
}

// API returns the raw Vulkan call surface.
func (h *Handle) API() API { return h.api }

// Device returns the logical device.
func (h *Handle) Device() vk.Device { return h.device }

// Queue returns the queue the renderer submits to. The renderer assumes
// serialized submission from a single thread.
func (h *Handle) Queue() vk.Queue { return h.queue }

// PhysicalDevice returns the physical device the logical device was
// created from.
func (h *Handle) PhysicalDevice() vk.PhysicalDevice { return h.phy }

// QueueFamilyIndex returns the queue family the command pool is created
// against.
func (h *Handle) QueueFamilyIndex() uint32 { return h.queueFamily }

// ExtensionEnabled reports whether the named device extension was enabled
// at device creation.
func (h *Handle) ExtensionEnabled(name string) bool {
	_, ok := h.extensions[name]
	return ok
}

// MemoryProperties returns the physical device's memory types and heaps.
func (h *Handle) MemoryProperties() vk.PhysicalDeviceMemoryProperties {
	return h.memory
}

// Limits returns the physical device's limits.
func (h *Handle) Limits() vk.PhysicalDeviceLimits {
	return h.limits
}

// FindMemoryType selects a memory type index satisfying both the
// requirement bits of an allocation and the requested property flags.
func (h *Handle) FindMemoryType(typeBits uint32, flags vk.MemoryPropertyFlags) (uint32, bool) {
	for i := uint32(0); i < h.memory.MemoryTypeCount; i++ {
		if typeBits&(1<<i) == 0 {
			continue
		}
		if h.memory.MemoryTypes[i].PropertyFlags&flags == flags {
			return i, true
		}
	}
	return 0, false
}
