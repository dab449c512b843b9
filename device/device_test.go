package device

import (
	"errors"
	"testing"

	vk "github.com/goki/vulkan"
)

// queryAPI implements API far enough for Handle construction. Embedding
// it and overriding methods keeps per-test fakes small.
type queryAPI struct {
	vulkanAPI

	memory vk.PhysicalDeviceMemoryProperties
	limits vk.PhysicalDeviceLimits
}

func (q *queryAPI) PhysicalDeviceMemoryProperties(phy vk.PhysicalDevice) vk.PhysicalDeviceMemoryProperties {
	return q.memory
}

func (q *queryAPI) PhysicalDeviceProperties(phy vk.PhysicalDevice) vk.PhysicalDeviceProperties {
	return vk.PhysicalDeviceProperties{Limits: q.limits}
}

func testHandle(t *testing.T, api *queryAPI, extensions ...string) *Handle {
	t.Helper()
	return New(nil, nil, nil, 3, extensions, WithAPI(api))
}

func TestHandleExtensions(t *testing.T) {
	h := testHandle(t, &queryAPI{}, "VK_KHR_image_format_list")

	if !h.ExtensionEnabled("VK_KHR_image_format_list") {
		t.Error("enabled extension reported as disabled")
	}
	if h.ExtensionEnabled("VK_EXT_image_drm_format_modifier") {
		t.Error("disabled extension reported as enabled")
	}
	if h.QueueFamilyIndex() != 3 {
		t.Errorf("QueueFamilyIndex = %d, want 3", h.QueueFamilyIndex())
	}
}

func TestHandleLimits(t *testing.T) {
	api := &queryAPI{limits: vk.PhysicalDeviceLimits{MaxMemoryAllocationCount: 17}}
	h := testHandle(t, api)

	if got := h.Limits().MaxMemoryAllocationCount; got != 17 {
		t.Errorf("MaxMemoryAllocationCount = %d, want 17", got)
	}
}

func TestFindMemoryType(t *testing.T) {
	hostFlags := vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit | vk.MemoryPropertyHostCoherentBit)
	deviceFlags := vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit)

	api := &queryAPI{}
	api.memory.MemoryTypeCount = 2
	api.memory.MemoryTypes[0] = vk.MemoryType{PropertyFlags: deviceFlags}
	api.memory.MemoryTypes[1] = vk.MemoryType{PropertyFlags: hostFlags}
	h := testHandle(t, api)

	tests := []struct {
		name     string
		typeBits uint32
		flags    vk.MemoryPropertyFlags
		want     uint32
		ok       bool
	}{
		{"host visible", ^uint32(0), hostFlags, 1, true},
		{"device local", ^uint32(0), deviceFlags, 0, true},
		{"excluded by type bits", 0b01, hostFlags, 0, false},
		{"no matching flags", ^uint32(0), vk.MemoryPropertyFlags(vk.MemoryPropertyLazilyAllocatedBit), 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := h.FindMemoryType(tt.typeBits, tt.flags)
			if ok != tt.ok || (ok && got != tt.want) {
				t.Errorf("FindMemoryType = (%d, %v), want (%d, %v)", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestErrorMessage(t *testing.T) {
	err := &Error{Op: "vkCreateFence", Result: vk.ErrorDeviceLost}
	msg := err.Error()
	if msg == "" {
		t.Fatal("empty error message")
	}
	var devErr *Error
	if !errors.As(error(err), &devErr) {
		t.Fatal("errors.As failed to match *Error")
	}
}

func TestResultSuccessIsNil(t *testing.T) {
	if err := result("vkAnything", vk.Success); err != nil {
		t.Fatalf("result(Success) = %v, want nil", err)
	}
	if err := result("vkAnything", vk.ErrorOutOfDeviceMemory); err == nil {
		t.Fatal("result(error) = nil, want error")
	}
}
