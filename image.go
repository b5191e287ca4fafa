package vrm

import (
	"log/slog"
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/arsenal/vrm/internal/utils"
	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
)

type imageShared struct {
	id         uint64
	device     *Device
	image      core1_0.Image
	createInfo core1_0.ImageCreateInfo
	// Adopted images (swapchain images, mostly) are destroyed by whoever created them
	owned bool

	bindMutex    utils.OptionalMutex
	memory       core1_0.DeviceMemory
	memoryOffset int
	bound        bool

	refs *utils.RefCount
}

func newImageShared(device *Device, image core1_0.Image, createInfo core1_0.ImageCreateInfo, owned bool) *imageShared {
	synchronized := device.synchronized()

	shared := &imageShared{
		id:         device.nextId(),
		device:     device,
		image:      image,
		createInfo: createInfo,
		owned:      owned,
		bindMutex: utils.OptionalMutex{
			UseMutex: synchronized,
		},
		refs: utils.NewRefCount(synchronized),
	}
	device.registerImage(shared)

	return shared
}

func (i *imageShared) native() core1_0.Image {
	return i.image
}

func (i *imageShared) boundMemory() (core1_0.DeviceMemory, int, bool) {
	i.bindMutex.Lock()
	defer i.bindMutex.Unlock()

	return i.memory, i.memoryOffset, i.bound
}

func (i *imageShared) acquire() bool {
	return i.refs.Acquire()
}

func (i *imageShared) release() {
	if !i.refs.Release() {
		return
	}

	i.destroy()
}

func (i *imageShared) destroy() {
	i.device.logger.Debug("Image::destroy", slog.Uint64("Id", i.id), slog.Bool("Owned", i.owned))

	i.device.unregisterImage(i)
	if i.owned {
		i.device.driver.DestroyImage(i.image, i.device.allocationCallbacks)
	}

	i.device.release()
}

// Image is an application handle to a native image. The native image is destroyed once this
// handle, every handle produced by Clone, and every ImageView created from the image have been released.
type Image struct {
	shared   *imageShared
	released atomic.Bool
}

// NewImage creates a native image on the provided Device. Memory is not bound: use BindMemory
// with memory from an allocator before creating views that will be accessed.
func NewImage(device *Device, info core1_0.ImageCreateInfo) (*Image, common.VkResult, error) {
	if device == nil {
		return nil, core1_0.VKErrorUnknown, errors.New("attempted to create an image with a nil device")
	}
	if device.Released() || !device.acquire() {
		return nil, core1_0.VKErrorUnknown, ErrReleased
	}

	image, res, err := device.driver.CreateImage(device.allocationCallbacks, info)
	if err != nil {
		device.release()
		return nil, res, creationFailure(err, "image")
	}

	shared := newImageShared(device, image, info, true)
	device.logger.Debug("Image::New", slog.Uint64("Id", shared.id))

	return &Image{shared: shared}, res, nil
}

// AdoptImage wraps a native image that was not created by this package, such as a swapchain
// image, so that views can be created from it. info should describe the image as it was created.
// The native image is never destroyed by this package.
func AdoptImage(device *Device, image core1_0.Image, info core1_0.ImageCreateInfo) (*Image, error) {
	if device == nil {
		return nil, errors.New("attempted to adopt an image with a nil device")
	}
	if !image.Initialized() {
		return nil, errors.New("attempted to adopt an uninitialized image")
	}
	if device.Released() || !device.acquire() {
		return nil, ErrReleased
	}

	shared := newImageShared(device, image, info, false)
	device.logger.Debug("Image::Adopt", slog.Uint64("Id", shared.id))

	return &Image{shared: shared}, nil
}

// Handle returns the native image, or an uninitialized image if this handle has been released
func (i *Image) Handle() core1_0.Image {
	if i.released.Load() {
		return core1_0.Image{}
	}

	return i.shared.native()
}

// CreateInfo returns the parameters the image was created or adopted with, or an empty
// ImageCreateInfo if this handle has been released
func (i *Image) CreateInfo() core1_0.ImageCreateInfo {
	if i.released.Load() {
		return core1_0.ImageCreateInfo{}
	}

	return i.shared.createInfo
}

// Device returns the Device this image was created on, or nil if this handle has been released.
// It does not acquire a device reference.
func (i *Image) Device() *Device {
	if i.released.Load() {
		return nil
	}

	return i.shared.device
}

// MemoryRequirements queries the native image's memory requirements. Returns nil if this handle
// has been released.
func (i *Image) MemoryRequirements() *core1_0.MemoryRequirements {
	if i.released.Load() {
		return nil
	}

	return i.shared.device.driver.GetImageMemoryRequirements(i.shared.image)
}

// BindMemory binds the native image to device memory. The memory is not owned by the image and must
// outlive it. An image can only be bound once.
func (i *Image) BindMemory(memory core1_0.DeviceMemory, offset int) (common.VkResult, error) {
	if i.released.Load() {
		return core1_0.VKErrorUnknown, ErrReleased
	}

	shared := i.shared
	shared.bindMutex.Lock()
	defer shared.bindMutex.Unlock()

	if shared.bound {
		return core1_0.VKErrorUnknown, errors.Newf("image %d is already bound to memory", shared.id)
	}

	res, err := shared.device.driver.BindImageMemory(shared.image, memory, offset)
	if err != nil {
		return res, err
	}

	shared.memory = memory
	shared.memoryOffset = offset
	shared.bound = true

	return res, nil
}

// BoundMemory returns the memory and offset passed to BindMemory. ok is false if the image has
// not been bound or this handle has been released.
func (i *Image) BoundMemory() (memory core1_0.DeviceMemory, offset int, ok bool) {
	if i.released.Load() {
		return core1_0.DeviceMemory{}, 0, false
	}

	return i.shared.boundMemory()
}

// Clone returns a new handle to the same native image. Both handles must be released.
// Cloning a released handle returns nil.
func (i *Image) Clone() *Image {
	if i.released.Load() || !i.shared.acquire() {
		return nil
	}

	return &Image{shared: i.shared}
}

// Release drops this handle's reference to the image. Calling it more than once has no effect.
func (i *Image) Release() {
	if !i.released.CompareAndSwap(false, true) {
		return
	}

	i.shared.release()
}

// Released returns true if Release has been called on this handle
func (i *Image) Released() bool {
	return i.released.Load()
}
