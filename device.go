// Package vrm manages the lifetimes of Vulkan images and image views. Image views hold shared
// references to their image and device, so that native handles are always destroyed in dependency
// order, exactly once, as soon as the last handle is released.
package vrm

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"github.com/dolthub/swiss"
	"github.com/vkngwrapper/arsenal/vrm/internal/utils"
	"github.com/vkngwrapper/arsenal/vrm/internal/vulkan"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/core/v3/loader"
)

// CreateOptions contains optional settings when creating a Device
type CreateOptions struct {
	// Flags indicates specific device behaviors to activate or deactivate
	Flags CreateFlags

	// AllocationCallbacks is an optional set of callbacks that will be passed to Vulkan whenever
	// an image or image view is created or destroyed through this Device
	AllocationCallbacks *loader.AllocationCallbacks
}

// Device is the shared root of every image and image view created through this package. It is
// reference counted: the value returned from NewDevice holds one reference, and every live image
// and image view holds another. The Device, and the native device if DeviceCreateOwnsDevice was
// specified, stays alive until all of them have been released.
type Device struct {
	logger              *slog.Logger
	driver              core1_0.DeviceDriver
	allocationCallbacks *loader.AllocationCallbacks

	createFlags   CreateFlags
	extensionData *vulkan.ExtensionData

	refs     *utils.RefCount
	released atomic.Bool

	nextObjectId  atomic.Uint64
	registryMutex sync.Mutex
	images        *swiss.Map[uint64, *imageShared]
	imageViews    *swiss.Map[uint64, *imageViewShared]
}

// NewDevice creates a new Device
//
// logger - The logger that lifecycle events will be written to at debug level
//
// driver - The driver for the native device that images and image views will be created on
//
// options - Optional parameters: it is valid to leave all the fields blank
func NewDevice(logger *slog.Logger, driver core1_0.DeviceDriver, options CreateOptions) (*Device, error) {
	if logger == nil {
		return nil, errors.New("attempted to create a device with a nil logger")
	}
	if driver == nil {
		return nil, errors.New("attempted to create a device with a nil driver")
	}

	device := &Device{
		logger:              logger,
		driver:              driver,
		allocationCallbacks: options.AllocationCallbacks,

		createFlags:   options.Flags,
		extensionData: vulkan.NewExtensionData(driver.Device()),

		refs:       utils.NewRefCount(true),
		images:     swiss.NewMap[uint64, *imageShared](8),
		imageViews: swiss.NewMap[uint64, *imageViewShared](8),
	}

	logger.Debug("Device::New", slog.String("Flags", options.Flags.String()))

	return device, nil
}

// Driver returns the driver this Device issues native calls through
func (d *Device) Driver() core1_0.DeviceDriver {
	return d.driver
}

// Release drops the reference acquired by NewDevice. Calling it more than once has no effect.
// The Device is torn down once every image and image view created from it has also been released.
func (d *Device) Release() {
	if !d.released.CompareAndSwap(false, true) {
		return
	}

	d.logger.Debug("Device::Release")
	d.release()
}

// Released returns true if Release has been called
func (d *Device) Released() bool {
	return d.released.Load()
}

func (d *Device) synchronized() bool {
	return d.createFlags&DeviceCreateExternallySynchronized == 0
}

func (d *Device) acquire() bool {
	return d.refs.Acquire()
}

func (d *Device) release() {
	if !d.refs.Release() {
		return
	}

	d.logger.Debug("Device::destroy")

	if d.createFlags&DeviceCreateOwnsDevice != 0 {
		d.driver.DestroyDevice(d.allocationCallbacks)
	}
}

func (d *Device) nextId() uint64 {
	return d.nextObjectId.Add(1)
}

func (d *Device) registerImage(image *imageShared) {
	d.registryMutex.Lock()
	defer d.registryMutex.Unlock()

	d.images.Put(image.id, image)
}

func (d *Device) unregisterImage(image *imageShared) {
	d.registryMutex.Lock()
	defer d.registryMutex.Unlock()

	d.images.Delete(image.id)
}

func (d *Device) registerImageView(view *imageViewShared) {
	d.registryMutex.Lock()
	defer d.registryMutex.Unlock()

	d.imageViews.Put(view.id, view)
}

func (d *Device) unregisterImageView(view *imageViewShared) {
	d.registryMutex.Lock()
	defer d.registryMutex.Unlock()

	d.imageViews.Delete(view.id)
}
