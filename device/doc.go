// Package device wraps the Vulkan logical device the compositor created
// for the renderer.
//
// Instance creation, adapter enumeration, and logical-device setup belong
// to the compositor; this package only carries the resulting handles plus
// the physical-device capabilities the renderer needs (memory types and
// limits), and exposes the raw Vulkan call surface through the API
// interface.
//
// The API interface exists for dependency injection: production code uses
// the github.com/goki/vulkan implementation installed by default, while
// tests inject a fake (see the devicetest sub-package) so renderer
// behavior can be verified without a GPU.
//
// The Handle is non-owning. The compositor must keep the logical device
// alive for as long as any renderer built on the Handle exists.
package device
