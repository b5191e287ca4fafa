package vrm

import (
	"log/slog"
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/arsenal/vrm/internal/utils"
	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
)

type imageViewShared struct {
	id     uint64
	device *Device
	image  *imageShared
	view   core1_0.ImageView

	// Kept for statistics only
	viewType core1_0.ImageViewType
	format   core1_0.Format

	refs *utils.RefCount
}

// createImageViewShared issues the native create call. The image state and device each gain a
// reference only if the call succeeds; a failed call leaves nothing behind.
func createImageViewShared(image *imageShared, o ImageViewCreateInfo) (*imageViewShared, common.VkResult, error) {
	device := image.device

	if device.createFlags&DeviceCreateValidateViews != 0 {
		err := validateImageView(device.extensionData, image.createInfo, o)
		if err != nil {
			return nil, core1_0.VKErrorUnknown, errors.Mark(errors.Wrap(err, "failed to create image view"), ErrCreationFailed)
		}
	}

	createInfo, res, err := o.vulkanize(image.native(), device.extensionData)
	if err != nil {
		return nil, res, creationFailure(err, "image view")
	}

	// The caller's image handle keeps the image state alive for the duration of this call, so
	// this cannot fail unless the handle was released concurrently
	if !image.acquire() {
		return nil, core1_0.VKErrorUnknown, ErrReleased
	}

	view, res, err := device.driver.CreateImageView(device.allocationCallbacks, createInfo)
	if err != nil {
		image.release()
		return nil, res, creationFailure(err, "image view")
	}

	// The image state holds a device reference, so this cannot fail
	device.acquire()

	shared := &imageViewShared{
		id:       device.nextId(),
		device:   device,
		image:    image,
		view:     view,
		viewType: o.viewType,
		format:   o.format,
		refs:     utils.NewRefCount(device.synchronized()),
	}
	device.registerImageView(shared)

	return shared, res, nil
}

func (v *imageViewShared) native() core1_0.ImageView {
	return v.view
}

// owningImage returns another share of the image state
func (v *imageViewShared) owningImage() *imageShared {
	if !v.image.acquire() {
		return nil
	}

	return v.image
}

func (v *imageViewShared) acquire() bool {
	return v.refs.Acquire()
}

func (v *imageViewShared) release() {
	if !v.refs.Release() {
		return
	}

	v.destroy()
}

func (v *imageViewShared) destroy() {
	v.device.logger.Debug("ImageView::destroy", slog.Uint64("Id", v.id), slog.Uint64("Image", v.image.id))

	v.device.driver.DestroyImageView(v.view, v.device.allocationCallbacks)
	v.device.unregisterImageView(v)

	v.image.release()
	v.device.release()
}

// ImageView is a handle to a native image view. It keeps its image and device alive: the native
// image view is destroyed once this handle and every handle produced by Clone have been released,
// and only after that can the image and device be destroyed.
type ImageView struct {
	shared   *imageViewShared
	released atomic.Bool
}

// NewImageView creates a native image view of the provided image
//
// image - The image to view. It must not have been released.
//
// info - The view parameters. They are passed to Vulkan unchecked unless the image's Device was
// created with DeviceCreateValidateViews.
//
// Any failure is marked with ErrCreationFailed, except for a released image, which returns ErrReleased.
// No view exists after a failure and nothing needs to be cleaned up.
func NewImageView(image *Image, info ImageViewCreateInfo) (*ImageView, common.VkResult, error) {
	if image == nil {
		return nil, core1_0.VKErrorUnknown, errors.New("attempted to create an image view of a nil image")
	}
	if image.Released() {
		return nil, core1_0.VKErrorUnknown, ErrReleased
	}

	shared, res, err := createImageViewShared(image.shared, info)
	if err != nil {
		return nil, res, err
	}

	shared.device.logger.Debug("ImageView::New", slog.Uint64("Id", shared.id), slog.Uint64("Image", image.shared.id))

	return &ImageView{shared: shared}, res, nil
}

// Handle returns the native image view, or an uninitialized image view if this handle has been released
func (v *ImageView) Handle() core1_0.ImageView {
	if v.released.Load() {
		return core1_0.ImageView{}
	}

	return v.shared.native()
}

// ImageHandle returns the native image this view was created from, or an uninitialized image if
// this handle has been released
func (v *ImageView) ImageHandle() core1_0.Image {
	if v.released.Load() {
		return core1_0.Image{}
	}

	return v.shared.image.native()
}

// Image returns a new handle to the image this view was created from. The returned handle must be
// released independently of the view. Returns nil if this handle has been released.
func (v *ImageView) Image() *Image {
	if v.released.Load() {
		return nil
	}

	image := v.shared.owningImage()
	if image == nil {
		return nil
	}

	return &Image{shared: image}
}

// Clone returns a new handle to the same native image view without calling into Vulkan. Both
// handles must be released. Cloning a released handle returns nil.
func (v *ImageView) Clone() *ImageView {
	if v.released.Load() || !v.shared.acquire() {
		return nil
	}

	return &ImageView{shared: v.shared}
}

// Release drops this handle's reference to the image view. When the last handle is released,
// the native image view is destroyed. Calling it more than once has no effect.
func (v *ImageView) Release() {
	if !v.released.CompareAndSwap(false, true) {
		return
	}

	v.shared.release()
}

// Released returns true if Release has been called on this handle
func (v *ImageView) Released() bool {
	return v.released.Load()
}
