package vkcomp

import (
	"fmt"

	vk "github.com/goki/vulkan"

	"github.com/gogpu/vkcomp/alloc"
	"github.com/gogpu/vkcomp/device"
)

// StagingBuffer is a transient, host-visible buffer holding upload data
// until the GPU has consumed it. Buffers are created by Frame.Stage,
// appended to the pool's in-flight list, and destroyed in a single batch
// by reclaim once the submission fence proves completion. A staging
// buffer is never reused.
type StagingBuffer struct {
	buffer     vk.Buffer
	size       vk.DeviceSize
	memory     vk.DeviceMemory
	allocation alloc.ID
}

// Buffer returns the Vulkan buffer handle, for recording copy commands
// that read from the staged data.
func (b *StagingBuffer) Buffer() vk.Buffer { return b.buffer }

// Size returns the buffer size in bytes.
func (b *StagingBuffer) Size() vk.DeviceSize { return b.size }

// stagingPool owns the staging command buffer and the in-flight list of
// staging buffers for the current submission window.
//
// One fence covers the whole window: staged copies are ordered before the
// frame's submission, so a single submission-wide fence is enough to
// prove every in-flight buffer has retired. Per-buffer fences would cost
// one fence per upload for no gain.
type stagingPool struct {
	dev     *device.Handle
	tracker *alloc.Tracker

	// cmd is the dedicated staging command buffer, allocated once from
	// the renderer's command pool. recording tracks whether its recording
	// scope is open this frame.
	cmd       vk.CommandBuffer
	recording bool

	inFlight []*StagingBuffer
}

func newStagingPool(dev *device.Handle, tracker *alloc.Tracker, cmd vk.CommandBuffer) *stagingPool {
	return &stagingPool{
		dev:     dev,
		tracker: tracker,
		cmd:     cmd,
	}
}

// stage creates a host-visible, host-coherent buffer sized for data,
// copies the payload in, and opens the staging command buffer's recording
// scope if this is the first upload of the frame. The allocation is
// counted against the device ceiling before any device memory is
// allocated; a tracker failure surfaces as alloc.ErrTooManyAllocations
// with no device work done.
func (p *stagingPool) stage(data []byte) (*StagingBuffer, error) {
	if len(data) == 0 {
		return nil, ErrEmptyUpload
	}

	api := p.dev.API()
	dev := p.dev.Device()

	bufferInfo := vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        vk.DeviceSize(len(data)),
		Usage:       vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit),
		SharingMode: vk.SharingModeExclusive,
	}
	buffer, err := api.CreateBuffer(dev, &bufferInfo)
	if err != nil {
		return nil, err
	}

	reqs := api.BufferMemoryRequirements(dev, buffer)
	memoryType, ok := p.dev.FindMemoryType(reqs.MemoryTypeBits,
		vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit))
	if !ok {
		api.DestroyBuffer(dev, buffer)
		return nil, fmt.Errorf("vkcomp: no host-visible coherent memory type for staging buffer")
	}

	id, err := p.tracker.Allocate()
	if err != nil {
		api.DestroyBuffer(dev, buffer)
		return nil, err
	}

	allocInfo := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  reqs.Size,
		MemoryTypeIndex: memoryType,
	}
	memory, err := api.AllocateMemory(dev, &allocInfo)
	if err != nil {
		p.tracker.Free(id)
		api.DestroyBuffer(dev, buffer)
		return nil, err
	}

	release := func() {
		api.FreeMemory(dev, memory)
		p.tracker.Free(id)
		api.DestroyBuffer(dev, buffer)
	}

	if err := api.BindBufferMemory(dev, buffer, memory, 0); err != nil {
		release()
		return nil, err
	}

	ptr, err := api.MapMemory(dev, memory, 0, vk.DeviceSize(len(data)))
	if err != nil {
		release()
		return nil, err
	}
	api.CopyToMapped(ptr, data)
	// Host-coherent memory needs no explicit flush.
	api.UnmapMemory(dev, memory)

	if _, err := p.commandBuffer(); err != nil {
		release()
		return nil, err
	}

	staged := &StagingBuffer{
		buffer:     buffer,
		size:       vk.DeviceSize(len(data)),
		memory:     memory,
		allocation: id,
	}
	p.inFlight = append(p.inFlight, staged)

	Logger().Debug("vkcomp: staged upload",
		"bytes", len(data), "inflight", len(p.inFlight), "allocations", p.tracker.Live())
	return staged, nil
}

// commandBuffer returns the staging command buffer, opening its recording
// scope on first use within a frame.
func (p *stagingPool) commandBuffer() (vk.CommandBuffer, error) {
	if !p.recording {
		beginInfo := vk.CommandBufferBeginInfo{
			SType: vk.StructureTypeCommandBufferBeginInfo,
			Flags: vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit),
		}
		if err := p.dev.API().BeginCommandBuffer(p.cmd, &beginInfo); err != nil {
			return nil, err
		}
		p.recording = true
	}
	return p.cmd, nil
}

// finishRecording ends the staging command buffer's recording scope if it
// was opened this frame, reporting whether it was. Calling it when no
// upload happened is a no-op.
func (p *stagingPool) finishRecording() (bool, error) {
	if !p.recording {
		return false, nil
	}
	p.recording = false
	if err := p.dev.API().EndCommandBuffer(p.cmd); err != nil {
		return true, err
	}
	return true, nil
}

// reclaim destroys every in-flight staging buffer, frees its backing
// memory, retires its allocation ID, and clears the list.
//
// Callers must have proven, by waiting on the submission fence, that no
// submitted command still reads any buffer in the list.
func (p *stagingPool) reclaim() {
	if len(p.inFlight) == 0 {
		return
	}
	api := p.dev.API()
	dev := p.dev.Device()
	for _, staged := range p.inFlight {
		api.DestroyBuffer(dev, staged.buffer)
		api.FreeMemory(dev, staged.memory)
		p.tracker.Free(staged.allocation)
	}
	Logger().Debug("vkcomp: reclaimed staging buffers",
		"count", len(p.inFlight), "allocations", p.tracker.Live())
	p.inFlight = p.inFlight[:0]
}

// pending reports the number of in-flight staging buffers.
func (p *stagingPool) pending() int { return len(p.inFlight) }
