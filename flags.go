package vrm

import "github.com/vkngwrapper/core/v3/common"

// CreateFlags indicate specific device behaviors to activate or deactivate
type CreateFlags int32

var deviceCreateFlagsMapping = common.NewFlagStringMapping[CreateFlags]()

func (f CreateFlags) Register(str string) {
	deviceCreateFlagsMapping.Register(f, str)
}
func (f CreateFlags) String() string {
	return deviceCreateFlagsMapping.FlagsToString(f)
}

const (
	// DeviceCreateExternallySynchronized ensures that images and image views created from this device
	// will not be synchronized internally: their reference counts become plain integers. The consumer
	// must guarantee that each image, and every view created from it, is used from only one goroutine at
	// a time. The Device itself is always synchronized, since it is shared across every image.
	DeviceCreateExternallySynchronized CreateFlags = 1 << iota
	// DeviceCreateValidateViews checks image view create parameters against the parent image before
	// calling into Vulkan: subresource ranges, aspect masks, view types and formats. Without it,
	// validation is left entirely to the driver and its validation layers.
	DeviceCreateValidateViews
	// DeviceCreateOwnsDevice causes the native device to be destroyed when the last reference to
	// the Device is released. Without it, the consumer remains responsible for destroying the
	// native device after calling Device.Release and releasing all images and views.
	DeviceCreateOwnsDevice
)

func init() {
	DeviceCreateExternallySynchronized.Register("DeviceCreateExternallySynchronized")
	DeviceCreateValidateViews.Register("DeviceCreateValidateViews")
	DeviceCreateOwnsDevice.Register("DeviceCreateOwnsDevice")
}
