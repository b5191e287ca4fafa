package vulkan

import (
	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_maintenance1"
	"github.com/vkngwrapper/extensions/v3/khr_maintenance2"
)

type ExtensionData struct {
	// ImageViewUsage indicates that core1_1.ImageViewUsageCreateInfo may be chained onto
	// an image view's create info
	ImageViewUsage bool
	// ArrayViewsOf3DImages indicates that 2D and 2D array views may be created from 3D images
	ArrayViewsOf3DImages bool
}

func NewExtensionData(device core1_0.Device) *ExtensionData {
	data := &ExtensionData{}

	if device.APIVersion().IsAtLeast(common.Vulkan1_1) {
		// Core 1.1 active - that means we have khr_maintenance1 and khr_maintenance2
		data.ImageViewUsage = true
		data.ArrayViewsOf3DImages = true
	}

	// khr_maintenance1 if core 1.1 is not active
	if !data.ArrayViewsOf3DImages && device.IsDeviceExtensionActive(khr_maintenance1.ExtensionName) {
		data.ArrayViewsOf3DImages = true
	}

	// khr_maintenance2 if core 1.1 is not active
	if !data.ImageViewUsage && device.IsDeviceExtensionActive(khr_maintenance2.ExtensionName) {
		data.ImageViewUsage = true
	}

	return data
}
