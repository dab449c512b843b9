package device

import (
	"fmt"

	vk "github.com/goki/vulkan"
)

// Error reports a Vulkan call that returned a failure result. The result
// code is propagated verbatim and never retried: GPU API errors are not
// transient at this layer.
type Error struct {
	// Op is the Vulkan entry point that failed, e.g. "vkCreateFence".
	Op string

	// Result is the raw result code.
	Result vk.Result
}

func (e *Error) Error() string {
	if err := vk.Error(e.Result); err != nil {
		return fmt.Sprintf("device: %s: %v", e.Op, err)
	}
	return fmt.Sprintf("device: %s: result %d", e.Op, int32(e.Result))
}

// result converts a Vulkan result code into an error, or nil on success.
func result(op string, res vk.Result) error {
	if res != vk.Success {
		return &Error{Op: op, Result: res}
	}
	return nil
}
