package vkcomp

import (
	vk "github.com/goki/vulkan"

	"github.com/gogpu/vkcomp/device"
	"github.com/gogpu/vkcomp/internal/cache"
)

// renderPassCache lazily creates one render pass per pixel format and
// memoizes it for the renderer's lifetime. Entries are immutable and
// identity-stable: framebuffers created against a cached pass stay
// compatible until teardown.
type renderPassCache struct {
	dev    *device.Handle
	passes *cache.Memo[vk.Format, vk.RenderPass]
}

func newRenderPassCache(dev *device.Handle) *renderPassCache {
	return &renderPassCache{
		dev:    dev,
		passes: cache.New[vk.Format, vk.RenderPass](),
	}
}

func (c *renderPassCache) getOrCreate(format vk.Format) (vk.RenderPass, error) {
	return c.passes.GetOrCreate(format, func() (vk.RenderPass, error) {
		pass, err := c.create(format)
		if err != nil {
			return vk.NullRenderPass, err
		}
		hits, misses := c.passes.Stats()
		Logger().Debug("vkcomp: created render pass",
			"format", int32(format), "hits", hits, "misses", misses)
		return pass, nil
	})
}

// create builds the load-op render pass for a format.
//
// The attachment loads instead of clearing and keeps the GENERAL layout
// at both ends, so partial redraws preserve existing framebuffer contents
// and reuse needs no layout transition barriers.
//
// Two subpass dependencies order the pass against outside work:
//
//  1. external -> subpass 0 waits on prior host, transfer, and
//     color-attachment writes, so staged uploads and the previous frame's
//     output are visible before drawing starts;
//  2. subpass 0 -> external makes the new color-attachment writes visible
//     to later transfer and host reads, so export or readback after the
//     frame observes a complete image.
func (c *renderPassCache) create(format vk.Format) (vk.RenderPass, error) {
	dependencies := []vk.SubpassDependency{
		{
			SrcSubpass: vk.SubpassExternal,
			DstSubpass: 0,
			SrcStageMask: vk.PipelineStageFlags(vk.PipelineStageHostBit |
				vk.PipelineStageTransferBit |
				vk.PipelineStageTopOfPipeBit |
				vk.PipelineStageColorAttachmentOutputBit),
			SrcAccessMask: vk.AccessFlags(vk.AccessHostWriteBit |
				vk.AccessTransferWriteBit |
				vk.AccessColorAttachmentWriteBit),
			DstStageMask: vk.PipelineStageFlags(vk.PipelineStageAllGraphicsBit),
		},
		{
			SrcSubpass:    0,
			DstSubpass:    vk.SubpassExternal,
			SrcStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
			SrcAccessMask: vk.AccessFlags(vk.AccessColorAttachmentWriteBit),
			DstStageMask: vk.PipelineStageFlags(vk.PipelineStageTransferBit |
				vk.PipelineStageHostBit |
				vk.PipelineStageBottomOfPipeBit),
			DstAccessMask: vk.AccessFlags(vk.AccessTransferReadBit | vk.AccessMemoryReadBit),
		},
	}

	attachments := []vk.AttachmentDescription{{
		Format:         format,
		Samples:        vk.SampleCount1Bit,
		LoadOp:         vk.AttachmentLoadOpLoad,
		StoreOp:        vk.AttachmentStoreOpStore,
		StencilLoadOp:  vk.AttachmentLoadOpDontCare,
		StencilStoreOp: vk.AttachmentStoreOpDontCare,
		InitialLayout:  vk.ImageLayoutGeneral,
		FinalLayout:    vk.ImageLayoutGeneral,
	}}

	colorRefs := []vk.AttachmentReference{{
		Attachment: 0,
		Layout:     vk.ImageLayoutColorAttachmentOptimal,
	}}

	subpasses := []vk.SubpassDescription{{
		PipelineBindPoint:    vk.PipelineBindPointGraphics,
		ColorAttachmentCount: uint32(len(colorRefs)),
		PColorAttachments:    colorRefs,
	}}

	info := vk.RenderPassCreateInfo{
		SType:           vk.StructureTypeRenderPassCreateInfo,
		AttachmentCount: uint32(len(attachments)),
		PAttachments:    attachments,
		SubpassCount:    uint32(len(subpasses)),
		PSubpasses:      subpasses,
		DependencyCount: uint32(len(dependencies)),
		PDependencies:   dependencies,
	}

	return c.dev.API().CreateRenderPass(c.dev.Device(), &info)
}

// destroyAll destroys every cached render pass and clears the cache.
// Only called at renderer teardown, after the submission fence proved the
// GPU no longer uses them.
func (c *renderPassCache) destroyAll() {
	api := c.dev.API()
	dev := c.dev.Device()
	c.passes.Drain(func(_ vk.Format, pass vk.RenderPass) {
		api.DestroyRenderPass(dev, pass)
	})
}
