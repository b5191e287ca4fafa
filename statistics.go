package vrm

import (
	"sort"

	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
)

// Statistics describes the objects currently kept alive by a Device
type Statistics struct {
	// ImageCount is the number of live images, including adopted images
	ImageCount int
	// AdoptedImageCount is the number of live images that were adopted rather than created
	AdoptedImageCount int
	// BoundImageCount is the number of live images that have been bound to memory
	BoundImageCount int
	// ImageViewCount is the number of live native image views
	ImageViewCount int
	// DeviceReferences is the number of references currently held on the Device
	DeviceReferences int
}

func (s *Statistics) Clear() {
	s.ImageCount = 0
	s.AdoptedImageCount = 0
	s.BoundImageCount = 0
	s.ImageViewCount = 0
	s.DeviceReferences = 0
}

// CalculateStatistics fills stats with a snapshot of the objects currently alive on this Device
func (d *Device) CalculateStatistics(stats *Statistics) {
	d.logger.Debug("Device::CalculateStatistics")

	stats.Clear()

	d.registryMutex.Lock()
	defer d.registryMutex.Unlock()

	d.images.Iter(func(id uint64, image *imageShared) bool {
		stats.ImageCount++
		if !image.owned {
			stats.AdoptedImageCount++
		}
		if _, _, bound := image.boundMemory(); bound {
			stats.BoundImageCount++
		}
		return false
	})
	stats.ImageViewCount = d.imageViews.Count()
	stats.DeviceReferences = d.refs.Count()
}

// BuildStatsString returns a JSON document describing the objects currently alive on this Device.
// When detailed is true, every image and image view is listed individually.
func (d *Device) BuildStatsString(detailed bool) string {
	d.logger.Debug("Device::BuildStatsString")

	var stats Statistics
	d.CalculateStatistics(&stats)

	writer := jwriter.NewWriter()
	objState := writer.Object()

	totalObj := objState.Name("Total").Object()
	totalObj.Name("Images").Int(stats.ImageCount)
	totalObj.Name("AdoptedImages").Int(stats.AdoptedImageCount)
	totalObj.Name("BoundImages").Int(stats.BoundImageCount)
	totalObj.Name("ImageViews").Int(stats.ImageViewCount)
	totalObj.Name("DeviceReferences").Int(stats.DeviceReferences)
	totalObj.End()

	if detailed {
		d.registryMutex.Lock()
		d.printDetailedImages(objState)
		d.printDetailedImageViews(objState)
		d.registryMutex.Unlock()
	}

	objState.End()

	return string(writer.Bytes())
}

func (d *Device) printDetailedImages(json jwriter.ObjectState) {
	images := make([]*imageShared, 0, d.images.Count())
	d.images.Iter(func(id uint64, image *imageShared) bool {
		images = append(images, image)
		return false
	})
	sort.Slice(images, func(i, j int) bool {
		return images[i].id < images[j].id
	})

	arrayState := json.Name("Images").Array()
	defer arrayState.End()

	for _, image := range images {
		obj := arrayState.Object()
		obj.Name("Id").Int(int(image.id))
		obj.Name("Type").String(image.createInfo.ImageType.String())
		obj.Name("Format").String(image.createInfo.Format.String())
		obj.Name("MipLevels").Int(image.createInfo.MipLevels)
		obj.Name("ArrayLayers").Int(image.createInfo.ArrayLayers)
		obj.Name("Owned").Bool(image.owned)
		_, offset, bound := image.boundMemory()
		obj.Name("Bound").Bool(bound)
		if bound {
			obj.Name("MemoryOffset").Int(offset)
		}
		obj.Name("References").Int(image.refs.Count())
		obj.End()
	}
}

func (d *Device) printDetailedImageViews(json jwriter.ObjectState) {
	views := make([]*imageViewShared, 0, d.imageViews.Count())
	d.imageViews.Iter(func(id uint64, view *imageViewShared) bool {
		views = append(views, view)
		return false
	})
	sort.Slice(views, func(i, j int) bool {
		return views[i].id < views[j].id
	})

	arrayState := json.Name("ImageViews").Array()
	defer arrayState.End()

	for _, view := range views {
		obj := arrayState.Object()
		obj.Name("Id").Int(int(view.id))
		obj.Name("Image").Int(int(view.image.id))
		obj.Name("ViewType").String(view.viewType.String())
		obj.Name("Format").String(view.format.String())
		obj.Name("References").Int(view.refs.Count())
		obj.End()
	}
}
