package vrm

import (
	"github.com/vkngwrapper/arsenal/vrm/internal/vulkan"
	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/core/v3/core1_1"
)

// ImageViewCreateInfo describes how to create an ImageView. It is built by chaining setters
// from NewImageViewCreateInfo:
//
//	info := vrm.NewImageViewCreateInfo().
//		Format(core1_0.FormatR8G8B8A8SRGB).
//		ViewType(core1_0.ImageViewType2D).
//		AspectMask(core1_0.ImageAspectColor).
//		LayerCount(1).
//		LevelCount(1)
//
// Setters return an updated copy and never validate their arguments. Unset fields are zero and
// are passed to Vulkan as-is.
type ImageViewCreateInfo struct {
	format         core1_0.Format
	viewType       core1_0.ImageViewType
	aspectMask     core1_0.ImageAspectFlags
	layerCount     int
	levelCount     int
	baseArrayLayer int
	baseMipLevel   int
	components     core1_0.ComponentMapping
	usage          core1_0.ImageUsageFlags
}

// NewImageViewCreateInfo returns an ImageViewCreateInfo with every field unspecified
func NewImageViewCreateInfo() ImageViewCreateInfo {
	return ImageViewCreateInfo{}
}

// Format sets the format the image's texels are interpreted as
func (o ImageViewCreateInfo) Format(format core1_0.Format) ImageViewCreateInfo {
	o.format = format
	return o
}

// ViewType sets the dimensionality of the view
func (o ImageViewCreateInfo) ViewType(viewType core1_0.ImageViewType) ImageViewCreateInfo {
	o.viewType = viewType
	return o
}

// AspectMask sets which aspects of the image are visible through the view
func (o ImageViewCreateInfo) AspectMask(aspectMask core1_0.ImageAspectFlags) ImageViewCreateInfo {
	o.aspectMask = aspectMask
	return o
}

// LayerCount sets the number of array layers visible through the view
func (o ImageViewCreateInfo) LayerCount(layerCount int) ImageViewCreateInfo {
	o.layerCount = layerCount
	return o
}

// LevelCount sets the number of mip levels visible through the view
func (o ImageViewCreateInfo) LevelCount(levelCount int) ImageViewCreateInfo {
	o.levelCount = levelCount
	return o
}

// BaseArrayLayer sets the first array layer visible through the view
func (o ImageViewCreateInfo) BaseArrayLayer(baseArrayLayer int) ImageViewCreateInfo {
	o.baseArrayLayer = baseArrayLayer
	return o
}

// BaseMipLevel sets the first mip level visible through the view
func (o ImageViewCreateInfo) BaseMipLevel(baseMipLevel int) ImageViewCreateInfo {
	o.baseMipLevel = baseMipLevel
	return o
}

// Components sets the swizzle applied to the view's color components
func (o ImageViewCreateInfo) Components(components core1_0.ComponentMapping) ImageViewCreateInfo {
	o.components = components
	return o
}

// Usage restricts the view to a subset of the image's usage flags. It requires Vulkan 1.1 or
// VK_KHR_maintenance2; creating a view with a usage on a device that supports neither fails with
// VKErrorExtensionNotPresent.
func (o ImageViewCreateInfo) Usage(usage core1_0.ImageUsageFlags) ImageViewCreateInfo {
	o.usage = usage
	return o
}

func (o ImageViewCreateInfo) subresourceRange() core1_0.ImageSubresourceRange {
	return core1_0.ImageSubresourceRange{
		AspectMask:     o.aspectMask,
		BaseMipLevel:   o.baseMipLevel,
		LevelCount:     o.levelCount,
		BaseArrayLayer: o.baseArrayLayer,
		LayerCount:     o.layerCount,
	}
}

func (o ImageViewCreateInfo) vulkanize(image core1_0.Image, extensionData *vulkan.ExtensionData) (core1_0.ImageViewCreateInfo, common.VkResult, error) {
	createInfo := core1_0.ImageViewCreateInfo{
		Image:            image,
		ViewType:         o.viewType,
		Format:           o.format,
		Components:       o.components,
		SubresourceRange: o.subresourceRange(),
	}

	if o.usage != 0 {
		if !extensionData.ImageViewUsage {
			return createInfo, core1_0.VKErrorExtensionNotPresent, core1_0.VKErrorExtensionNotPresent.ToError()
		}

		createInfo.NextOptions = common.NextOptions{Next: core1_1.ImageViewUsageCreateInfo{
			Usage: o.usage,
		}}
	}

	return createInfo, core1_0.VKSuccess, nil
}
