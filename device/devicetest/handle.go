package devicetest

import "github.com/gogpu/vkcomp/device"

// NewHandle wraps a Fake in a device.Handle with the given enabled
// extensions. The raw device, queue, and physical-device handles are nil;
// the Fake never dereferences them.
func NewHandle(f *Fake, extensions ...string) *device.Handle {
	return device.New(nil, nil, nil, 0, extensions, device.WithAPI(f))
}
