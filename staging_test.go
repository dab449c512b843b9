package vkcomp

import (
	"errors"
	"testing"

	vk "github.com/goki/vulkan"

	"github.com/gogpu/vkcomp/alloc"
	"github.com/gogpu/vkcomp/device"
	"github.com/gogpu/vkcomp/device/devicetest"
)

func stageOneFrame(t *testing.T, r *Renderer, payloads ...[]byte) error {
	t.Helper()
	return r.Render(Size{Width: 64, Height: 64}, TransformNormal, func(frame *Frame) error {
		for _, data := range payloads {
			if _, err := frame.Stage(data); err != nil {
				return err
			}
		}
		return nil
	})
}

func TestStageAllocationCeiling(t *testing.T) {
	f := devicetest.New()
	f.MaxAllocations = 1
	r := newTestRenderer(t, f)
	defer r.Close()
	r.Bind(testTarget(f, r))

	if err := stageOneFrame(t, r, make([]byte, 16)); err != nil {
		t.Fatalf("first stage: %v", err)
	}

	err := stageOneFrame(t, r, make([]byte, 16))
	if !errors.Is(err, alloc.ErrTooManyAllocations) {
		t.Fatalf("stage over ceiling: got %v, want alloc.ErrTooManyAllocations", err)
	}
	// The rejected upload must not leak its partially created buffer.
	if len(f.LiveBuffers) != 1 {
		t.Errorf("live buffers after rejected stage: got %d, want 1", len(f.LiveBuffers))
	}
	if got := r.Allocations(); got != 1 {
		t.Errorf("allocations after rejected stage: got %d, want 1", got)
	}

	// Reclaiming the first upload makes room again.
	if err := r.WaitIdle(); err != nil {
		t.Fatalf("WaitIdle: %v", err)
	}
	r.ReclaimStaging()
	if err := stageOneFrame(t, r, make([]byte, 16)); err != nil {
		t.Fatalf("stage after reclaim: %v", err)
	}
}

func TestStageMemoryAllocationFailure(t *testing.T) {
	f := devicetest.New()
	r := newTestRenderer(t, f)
	defer r.Close()
	r.Bind(testTarget(f, r))

	f.FailOps["vkAllocateMemory"] = vk.ErrorOutOfDeviceMemory
	err := stageOneFrame(t, r, make([]byte, 16))
	var derr *device.Error
	if !errors.As(err, &derr) || derr.Op != "vkAllocateMemory" {
		t.Fatalf("stage: got %v, want vkAllocateMemory device error", err)
	}
	if len(f.LiveBuffers) != 0 {
		t.Errorf("buffer leaked on allocation failure: %d live", len(f.LiveBuffers))
	}
	if got := r.Allocations(); got != 0 {
		t.Errorf("tracker leaked on allocation failure: %d live", got)
	}
}

func TestStageBindFailureReleasesEverything(t *testing.T) {
	f := devicetest.New()
	r := newTestRenderer(t, f)
	defer r.Close()
	r.Bind(testTarget(f, r))

	f.FailOps["vkBindBufferMemory"] = vk.ErrorOutOfDeviceMemory
	err := stageOneFrame(t, r, make([]byte, 16))
	if err == nil {
		t.Fatal("stage: expected bind failure")
	}
	if len(f.LiveBuffers) != 0 || len(f.LiveMemory) != 0 {
		t.Errorf("objects leaked on bind failure: %d buffers, %d memory",
			len(f.LiveBuffers), len(f.LiveMemory))
	}
	if got := r.Allocations(); got != 0 {
		t.Errorf("tracker leaked on bind failure: %d live", got)
	}
}

func TestStageNoHostVisibleMemory(t *testing.T) {
	f := devicetest.New()
	f.MemoryTypes = []vk.MemoryType{{
		PropertyFlags: vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit),
	}}
	r := newTestRenderer(t, f)
	defer r.Close()
	r.Bind(testTarget(f, r))

	err := stageOneFrame(t, r, make([]byte, 16))
	if err == nil {
		t.Fatal("stage: expected failure without host-visible memory")
	}
	if len(f.LiveBuffers) != 0 {
		t.Errorf("buffer leaked: %d live", len(f.LiveBuffers))
	}
}

func TestStageEmptyPayload(t *testing.T) {
	f := devicetest.New()
	r := newTestRenderer(t, f)
	defer r.Close()
	r.Bind(testTarget(f, r))

	err := stageOneFrame(t, r, []byte{})
	if !errors.Is(err, ErrEmptyUpload) {
		t.Fatalf("stage of empty payload: got %v, want ErrEmptyUpload", err)
	}
	if got := f.CallCount("vkCreateBuffer"); got != 0 {
		t.Errorf("device calls for rejected empty payload: got %d vkCreateBuffer, want 0", got)
	}
	if got := r.Allocations(); got != 0 {
		t.Errorf("allocations after rejected empty payload: got %d, want 0", got)
	}
}

func TestStagingCommandBufferRecordsCopies(t *testing.T) {
	f := devicetest.New()
	r := newTestRenderer(t, f)
	defer r.Close()
	r.Bind(testTarget(f, r))

	var cmd vk.CommandBuffer
	err := r.Render(Size{Width: 64, Height: 64}, TransformNormal, func(frame *Frame) error {
		staged, err := frame.Stage(make([]byte, 16))
		if err != nil {
			return err
		}
		// The copy consuming the staged bytes goes into the staging
		// command buffer, already open from the upload.
		cmd, err = frame.StagingCommandBuffer()
		if err != nil {
			return err
		}
		if cmd == nil {
			t.Error("staging command buffer is nil")
		}
		if staged.Buffer() == vk.NullBuffer {
			t.Error("staged buffer has a null handle")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	if cmd != r.staging.cmd {
		t.Error("StagingCommandBuffer must return the pool's command buffer")
	}
	if f.Begun[cmd] != 1 || f.Ended[cmd] != 1 {
		t.Errorf("staging buffer begun/ended: got %d/%d, want 1/1", f.Begun[cmd], f.Ended[cmd])
	}
	if len(f.Submissions) != 1 || len(f.Submissions[0]) != 2 || f.Submissions[0][0] != cmd {
		t.Error("staging command buffer must be submitted ahead of the frame")
	}
}

func TestStagingCommandBufferWithoutUploads(t *testing.T) {
	f := devicetest.New()
	r := newTestRenderer(t, f)
	defer r.Close()
	r.Bind(testTarget(f, r))

	err := r.Render(Size{Width: 64, Height: 64}, TransformNormal, func(frame *Frame) error {
		// Opening the recording scope without staging anything still
		// submits the recording with the frame.
		_, err := frame.StagingCommandBuffer()
		return err
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if f.Begun[r.staging.cmd] != 1 || f.Ended[r.staging.cmd] != 1 {
		t.Errorf("staging buffer begun/ended: got %d/%d, want 1/1",
			f.Begun[r.staging.cmd], f.Ended[r.staging.cmd])
	}
	if len(f.Submissions) != 1 || len(f.Submissions[0]) != 2 {
		t.Error("opened staging recording must be submitted with the frame")
	}
}

func TestReclaimBatchesAcrossFrames(t *testing.T) {
	f := devicetest.New()
	r := newTestRenderer(t, f)
	defer r.Close()
	r.Bind(testTarget(f, r))

	if err := stageOneFrame(t, r, make([]byte, 16), make([]byte, 32)); err != nil {
		t.Fatalf("first frame: %v", err)
	}
	if err := stageOneFrame(t, r, make([]byte, 48)); err != nil {
		t.Fatalf("second frame: %v", err)
	}
	if got := r.PendingStagingBuffers(); got != 3 {
		t.Fatalf("pending before reclaim: got %d, want 3", got)
	}

	if err := r.WaitIdle(); err != nil {
		t.Fatalf("WaitIdle: %v", err)
	}
	r.ReclaimStaging()

	if got := r.PendingStagingBuffers(); got != 0 {
		t.Errorf("pending after reclaim: got %d, want 0", got)
	}
	if got := r.Allocations(); got != 0 {
		t.Errorf("allocations after reclaim: got %d, want 0", got)
	}
}

func TestReclaimWithNothingPendingIsNoop(t *testing.T) {
	f := devicetest.New()
	r := newTestRenderer(t, f)
	defer r.Close()

	before := f.TotalCalls()
	r.ReclaimStaging()
	if got := f.TotalCalls(); got != before {
		t.Errorf("device calls during empty reclaim: got %d, want 0", got-before)
	}
}
