package vrm

import (
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/core/v3/mocks"
	"github.com/vkngwrapper/core/v3/mocks/mocks1_2"
	"go.uber.org/mock/gomock"
)

type DeviceSetup struct {
	DeviceVersion    common.APIVersion
	DeviceExtensions []string
	Options          CreateOptions
}

func readyDevice(t *testing.T, ctrl *gomock.Controller, setup DeviceSetup) (*mocks1_2.MockCoreDeviceDriver, *Device) {
	if setup.DeviceVersion == 0 {
		setup.DeviceVersion = common.Vulkan1_2
	}

	mockCore := mocks1_2.NewMockCoreDeviceDriver(ctrl)
	device := mocks.NewDummyDevice(setup.DeviceVersion, setup.DeviceExtensions)
	mockCore.EXPECT().Device().Return(device).AnyTimes()

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	vrmDevice, err := NewDevice(logger, mockCore, setup.Options)
	require.NoError(t, err)

	return mockCore, vrmDevice
}

func colorImageCreateInfo() core1_0.ImageCreateInfo {
	return core1_0.ImageCreateInfo{
		ImageType: core1_0.ImageType2D,
		Format:    core1_0.FormatR8G8B8A8SRGB,
		Extent: core1_0.Extent3D{
			Width:  512,
			Height: 512,
			Depth:  1,
		},
		MipLevels:   1,
		ArrayLayers: 1,
		Tiling:      core1_0.ImageTilingOptimal,
		Usage:       core1_0.ImageUsageTransferSrc | core1_0.ImageUsageTransferDst | core1_0.ImageUsageSampled,
	}
}

func readyImage(t *testing.T, driver *mocks1_2.MockCoreDeviceDriver, device *Device, info core1_0.ImageCreateInfo) (core1_0.Image, *Image) {
	mockImage := mocks.NewDummyImage(driver.Device())
	driver.EXPECT().CreateImage(gomock.Any(), info).Return(mockImage, core1_0.VKSuccess, nil)

	image, _, err := NewImage(device, info)
	require.NoError(t, err)

	return mockImage, image
}

func TestNewDevice_NilArguments(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockCore := mocks1_2.NewMockCoreDeviceDriver(ctrl)

	_, err := NewDevice(nil, mockCore, CreateOptions{})
	require.Error(t, err)

	_, err = NewDevice(slog.New(slog.NewJSONHandler(io.Discard, nil)), nil, CreateOptions{})
	require.Error(t, err)
}

func TestDeviceRelease_DoesNotDestroyBorrowedDevice(t *testing.T) {
	ctrl := gomock.NewController(t)

	// Any DestroyDevice call fails the test: no expectation is registered
	_, device := readyDevice(t, ctrl, DeviceSetup{})

	device.Release()
	require.True(t, device.Released())

	// Second release is a no-op
	device.Release()
}

func TestDeviceRelease_OwnedDeviceDestroyedAfterLastImage(t *testing.T) {
	ctrl := gomock.NewController(t)

	driver, device := readyDevice(t, ctrl, DeviceSetup{
		Options: CreateOptions{Flags: DeviceCreateOwnsDevice},
	})

	mockImage, image := readyImage(t, driver, device, colorImageCreateInfo())

	device.Release()

	gomock.InOrder(
		driver.EXPECT().DestroyImage(mockImage, nil),
		driver.EXPECT().DestroyDevice(nil),
	)

	image.Release()
}

func TestDeviceRelease_CreateAfterRelease(t *testing.T) {
	ctrl := gomock.NewController(t)

	_, device := readyDevice(t, ctrl, DeviceSetup{})
	device.Release()

	_, _, err := NewImage(device, colorImageCreateInfo())
	require.ErrorIs(t, err, ErrReleased)
}

func TestCalculateStatistics(t *testing.T) {
	ctrl := gomock.NewController(t)

	driver, device := readyDevice(t, ctrl, DeviceSetup{})

	mockImage, image := readyImage(t, driver, device, colorImageCreateInfo())

	memory := mocks.NewDummyDeviceMemory(driver.Device(), 1024*1024)
	driver.EXPECT().BindImageMemory(mockImage, memory, 0).Return(core1_0.VKSuccess, nil)
	_, err := image.BindMemory(memory, 0)
	require.NoError(t, err)

	adopted, err := AdoptImage(device, mocks.NewDummyImage(driver.Device()), colorImageCreateInfo())
	require.NoError(t, err)

	mockView := mocks.NewDummyImageView(driver.Device())
	driver.EXPECT().CreateImageView(gomock.Any(), gomock.Any()).Return(mockView, core1_0.VKSuccess, nil)
	view, _, err := NewImageView(image, colorViewCreateInfo())
	require.NoError(t, err)

	var stats Statistics
	device.CalculateStatistics(&stats)
	require.Equal(t, Statistics{
		ImageCount:        2,
		AdoptedImageCount: 1,
		BoundImageCount:   1,
		ImageViewCount:    1,
		// NewDevice, two images, one view
		DeviceReferences: 4,
	}, stats)

	driver.EXPECT().DestroyImageView(mockView, nil)
	driver.EXPECT().DestroyImage(mockImage, nil)

	view.Release()
	image.Release()
	adopted.Release()

	device.CalculateStatistics(&stats)
	require.Equal(t, Statistics{
		DeviceReferences: 1,
	}, stats)
}

func TestBuildStatsString(t *testing.T) {
	ctrl := gomock.NewController(t)

	driver, device := readyDevice(t, ctrl, DeviceSetup{})

	_, image := readyImage(t, driver, device, colorImageCreateInfo())

	mockView := mocks.NewDummyImageView(driver.Device())
	driver.EXPECT().CreateImageView(gomock.Any(), gomock.Any()).Return(mockView, core1_0.VKSuccess, nil)
	view, _, err := NewImageView(image, colorViewCreateInfo())
	require.NoError(t, err)

	var summary struct {
		Total struct {
			Images           int
			ImageViews       int
			DeviceReferences int
		}
		Images     []map[string]any
		ImageViews []map[string]any
	}
	require.NoError(t, json.Unmarshal([]byte(device.BuildStatsString(false)), &summary))
	require.Equal(t, 1, summary.Total.Images)
	require.Equal(t, 1, summary.Total.ImageViews)
	require.Equal(t, 3, summary.Total.DeviceReferences)
	require.Empty(t, summary.Images)
	require.Empty(t, summary.ImageViews)

	require.NoError(t, json.Unmarshal([]byte(device.BuildStatsString(true)), &summary))
	require.Len(t, summary.Images, 1)
	require.Len(t, summary.ImageViews, 1)
	require.Equal(t, summary.Images[0]["Id"], summary.ImageViews[0]["Image"])
	// The image handle plus the view
	require.Equal(t, float64(2), summary.Images[0]["References"])

	driver.EXPECT().DestroyImageView(mockView, nil)
	driver.EXPECT().DestroyImage(gomock.Any(), nil)
	view.Release()
	image.Release()
}

func TestCreateFlagsString(t *testing.T) {
	require.Equal(t, "DeviceCreateValidateViews", DeviceCreateValidateViews.String())
	require.Contains(t, (DeviceCreateOwnsDevice | DeviceCreateExternallySynchronized).String(), "DeviceCreateOwnsDevice")
}
