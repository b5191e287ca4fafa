package vrm

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/arsenal/vrm/internal/vulkan"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/core/v3/core1_1"
)

type formatClass byte

const (
	formatClassColor formatClass = iota
	formatClassDepth
	formatClassStencil
	formatClassDepthStencil
)

func classifyFormat(format core1_0.Format) formatClass {
	switch format {
	case core1_0.FormatD16UnsignedNormalized, core1_0.FormatD32SignedFloat:
		return formatClassDepth
	case core1_0.FormatS8UnsignedInt:
		return formatClassStencil
	case core1_0.FormatD16UnsignedNormalizedS8UnsignedInt, core1_0.FormatD24UnsignedNormalizedS8UnsignedInt,
		core1_0.FormatD32SignedFloatS8UnsignedInt:
		return formatClassDepthStencil
	}

	return formatClassColor
}

func (c formatClass) aspects() core1_0.ImageAspectFlags {
	switch c {
	case formatClassDepth:
		return core1_0.ImageAspectDepth
	case formatClassStencil:
		return core1_0.ImageAspectStencil
	case formatClassDepthStencil:
		return core1_0.ImageAspectDepth | core1_0.ImageAspectStencil
	}

	return core1_0.ImageAspectColor
}

func validateImageView(extensionData *vulkan.ExtensionData, image core1_0.ImageCreateInfo, o ImageViewCreateInfo) error {
	if o.levelCount < 1 {
		return errors.Newf("image view level count must be at least 1, but was %d", o.levelCount)
	}
	if o.layerCount < 1 {
		return errors.Newf("image view layer count must be at least 1, but was %d", o.layerCount)
	}
	if o.baseMipLevel < 0 || o.baseMipLevel+o.levelCount > image.MipLevels {
		return errors.Newf("image view mip levels %d-%d are outside the image's %d mip levels",
			o.baseMipLevel, o.baseMipLevel+o.levelCount-1, image.MipLevels)
	}
	layers := availableLayers(image, o)
	if o.baseArrayLayer < 0 || o.baseArrayLayer+o.layerCount > layers {
		return errors.Newf("image view array layers %d-%d are outside the image's %d array layers",
			o.baseArrayLayer, o.baseArrayLayer+o.layerCount-1, layers)
	}

	if o.aspectMask == 0 {
		return errors.New("image view aspect mask must not be empty")
	}
	available := classifyFormat(image.Format).aspects()
	if o.aspectMask&^available != 0 {
		return errors.Newf("image view aspect mask %s is not present in image format %s", o.aspectMask, image.Format)
	}

	if o.format != image.Format && image.Flags&core1_0.ImageCreateMutableFormat == 0 {
		return errors.Newf("image view format %s differs from image format %s, but the image was not created with ImageCreateMutableFormat",
			o.format, image.Format)
	}

	return validateViewType(extensionData, image, o)
}

// availableLayers returns the number of layers a view can address. 2D views of a 3D image
// address the depth slices of the view's mip level.
func availableLayers(image core1_0.ImageCreateInfo, o ImageViewCreateInfo) int {
	if image.ImageType != core1_0.ImageType3D ||
		(o.viewType != core1_0.ImageViewType2D && o.viewType != core1_0.ImageViewType2DArray) {
		return image.ArrayLayers
	}

	depth := image.Extent.Depth >> o.baseMipLevel
	if depth < 1 {
		depth = 1
	}
	return depth
}

func validateViewType(extensionData *vulkan.ExtensionData, image core1_0.ImageCreateInfo, o ImageViewCreateInfo) error {
	switch o.viewType {
	case core1_0.ImageViewType1D, core1_0.ImageViewType2D, core1_0.ImageViewType3D:
		if o.layerCount != 1 {
			return errors.Newf("image view type %s must have exactly 1 layer, but had %d", o.viewType, o.layerCount)
		}
	case core1_0.ImageViewTypeCube:
		if o.layerCount != 6 {
			return errors.Newf("image view type %s must have exactly 6 layers, but had %d", o.viewType, o.layerCount)
		}
	case core1_0.ImageViewTypeCubeArray:
		if o.layerCount%6 != 0 {
			return errors.Newf("image view type %s must have a multiple of 6 layers, but had %d", o.viewType, o.layerCount)
		}
	}

	switch o.viewType {
	case core1_0.ImageViewType1D, core1_0.ImageViewType1DArray:
		if image.ImageType != core1_0.ImageType1D {
			return errors.Newf("image view type %s requires a 1D image, but the image was %s", o.viewType, image.ImageType)
		}
	case core1_0.ImageViewType2D, core1_0.ImageViewType2DArray:
		if image.ImageType == core1_0.ImageType3D {
			if !extensionData.ArrayViewsOf3DImages {
				return errors.Newf("image view type %s of a 3D image requires Vulkan 1.1 or VK_KHR_maintenance1", o.viewType)
			}
			if image.Flags&core1_1.ImageCreate2DArrayCompatible == 0 {
				return errors.Newf("image view type %s of a 3D image requires the image to be created with ImageCreate2DArrayCompatible", o.viewType)
			}
			if o.levelCount != 1 {
				return errors.Newf("image view type %s of a 3D image must have exactly 1 level, but had %d", o.viewType, o.levelCount)
			}
		} else if image.ImageType != core1_0.ImageType2D {
			return errors.Newf("image view type %s requires a 2D or 3D image, but the image was %s", o.viewType, image.ImageType)
		}
	case core1_0.ImageViewTypeCube, core1_0.ImageViewTypeCubeArray:
		if image.ImageType != core1_0.ImageType2D {
			return errors.Newf("image view type %s requires a 2D image, but the image was %s", o.viewType, image.ImageType)
		}
		if image.Flags&core1_0.ImageCreateCubeCompatible == 0 {
			return errors.Newf("image view type %s requires the image to be created with ImageCreateCubeCompatible", o.viewType)
		}
	case core1_0.ImageViewType3D:
		if image.ImageType != core1_0.ImageType3D {
			return errors.Newf("image view type %s requires a 3D image, but the image was %s", o.viewType, image.ImageType)
		}
	default:
		return errors.Newf("unknown image view type %s", o.viewType)
	}

	return nil
}
