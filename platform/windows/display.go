//go:build windows

package windows

import (
	"unsafe"

	"github.com/bnema/inputhook/display"
	"github.com/bnema/inputhook/hook"
	"golang.org/x/sys/windows"
)

var (
	shcore = windows.NewLazySystemDLL("shcore.dll")

	procEnumDisplayMonitors   = user32.NewProc("EnumDisplayMonitors")
	procGetMonitorInfo        = user32.NewProc("GetMonitorInfoW")
	procEnumDisplaySettings   = user32.NewProc("EnumDisplaySettingsW")
	procSystemParametersInfo  = user32.NewProc("SystemParametersInfoW")
	procGetDoubleClickTime    = user32.NewProc("GetDoubleClickTime")
	procGetKeyboardLayoutName = user32.NewProc("GetKeyboardLayoutNameW")
	procGetDpiForMonitor      = shcore.NewProc("GetDpiForMonitor")

	enumMonitorCallback = windows.NewCallback(collectMonitor)
)

// ENUM_CURRENT_SETTINGS is (DWORD)-1.
const enumCurrentSettings = ^uintptr(0)

const (
	spiGetMouse         = 0x0003
	spiGetKeyboardSpeed = 0x000A
	spiGetKeyboardDelay = 0x0016
	spiGetMouseSpeed    = 0x0070

	mdtEffectiveDPI = 0

	monitorinfofPrimary = 0x1
)

type rect struct {
	Left, Top, Right, Bottom int32
}

type monitorInfoEx struct {
	CbSize    uint32
	RcMonitor rect
	RcWork    rect
	DwFlags   uint32
	SzDevice  [32]uint16
}

type devMode struct {
	DmDeviceName       [32]uint16
	DmSpecVersion      uint16
	DmDriverVersion    uint16
	DmSize             uint16
	DmDriverExtra      uint16
	DmFields           uint32
	DmPosition         [16]byte
	DmColor            int16
	DmDuplex           int16
	DmYResolution      int16
	DmTTOption         int16
	DmCollate          int16
	DmFormName         [32]uint16
	DmLogPixels        uint16
	DmBitsPerPel       uint32
	DmPelsWidth        uint32
	DmPelsHeight       uint32
	DmDisplayFlags     uint32
	DmDisplayFrequency uint32
	DmICMMethod        uint32
	DmICMIntent        uint32
	DmMediaType        uint32
	DmDitherType       uint32
	DmReserved1        uint32
	DmReserved2        uint32
	DmPanningWidth     uint32
	DmPanningHeight    uint32
}

func collectMonitor(hMonitor, hdc, clip, data uintptr) uintptr {
	list := (*[]uintptr)(unsafe.Pointer(data))
	*list = append(*list, hMonitor)
	return 1
}

func (a *Adapter) Displays() ([]display.Info, error) {
	var handles []uintptr
	ok, _, err := procEnumDisplayMonitors.Call(0, 0, enumMonitorCallback, uintptr(unsafe.Pointer(&handles)))
	if ok == 0 {
		return nil, hook.Platform("EnumDisplayMonitors", err)
	}

	displays := make([]display.Info, 0, len(handles))
	for i, h := range handles {
		mi := monitorInfoEx{CbSize: uint32(unsafe.Sizeof(monitorInfoEx{}))}
		if ok, _, _ := procGetMonitorInfo.Call(h, uintptr(unsafe.Pointer(&mi))); ok == 0 {
			continue
		}
		r := mi.RcMonitor
		info := display.Info{
			ID:   uint32(i),
			Name: windows.UTF16ToString(mi.SzDevice[:]),
			Bounds: display.Rect{
				X:      r.Left,
				Y:      r.Top,
				Width:  uint32(r.Right - r.Left),
				Height: uint32(r.Bottom - r.Top),
			},
			ScaleFactor: monitorScale(h),
			IsPrimary:   mi.DwFlags&monitorinfofPrimary != 0,
		}

		dm := devMode{DmSize: uint16(unsafe.Sizeof(devMode{}))}
		if ok, _, _ := procEnumDisplaySettings.Call(uintptr(unsafe.Pointer(&mi.SzDevice[0])), enumCurrentSettings, uintptr(unsafe.Pointer(&dm))); ok != 0 && dm.DmDisplayFrequency > 1 {
			info.RefreshRate = float64(dm.DmDisplayFrequency)
		}
		displays = append(displays, info)
	}
	display.MarkPrimary(displays)
	return displays, nil
}

func monitorScale(h uintptr) float64 {
	if shcore.Load() != nil {
		return 1
	}
	var dpiX, dpiY uint32
	hr, _, _ := procGetDpiForMonitor.Call(h, mdtEffectiveDPI, uintptr(unsafe.Pointer(&dpiX)), uintptr(unsafe.Pointer(&dpiY)))
	if hr != 0 || dpiX == 0 {
		return 1
	}
	return float64(dpiX) / 96
}

func spiUint32(action uintptr) (uint32, bool) {
	var v uint32
	ok, _, _ := procSystemParametersInfo.Call(action, 0, uintptr(unsafe.Pointer(&v)), 0)
	return v, ok != 0
}

func (a *Adapter) SystemSettings() (display.SystemSettings, error) {
	var s display.SystemSettings

	if v, ok := spiUint32(spiGetKeyboardSpeed); ok {
		s.KeyboardRepeatRate = display.Uint32(v)
	}
	// 0..3 in steps of 250 ms.
	if v, ok := spiUint32(spiGetKeyboardDelay); ok {
		s.KeyboardRepeatDelay = display.Uint32((v + 1) * 250)
	}
	if v, ok := spiUint32(spiGetMouseSpeed); ok {
		s.MouseSensitivity = display.Float64(float64(v))
	}

	var mouse [3]int32
	if ok, _, _ := procSystemParametersInfo.Call(spiGetMouse, 0, uintptr(unsafe.Pointer(&mouse[0])), 0); ok != 0 {
		s.MouseAcceleration = display.Bool(mouse[2] != 0)
		s.MouseAccelerationThreshold = display.Float64(float64(mouse[0]))
	}

	if ms, _, _ := procGetDoubleClickTime.Call(); ms != 0 {
		s.DoubleClickTime = display.Uint32(uint32(ms))
	}

	var klid [9]uint16
	if ok, _, _ := procGetKeyboardLayoutName.Call(uintptr(unsafe.Pointer(&klid[0]))); ok != 0 {
		s.KeyboardLayout = display.String(windows.UTF16ToString(klid[:]))
	}
	return s, nil
}

// DoubleClickTime returns the system multi-click interval in milliseconds.
func DoubleClickTime() uint32 {
	ms, _, _ := procGetDoubleClickTime.Call()
	return uint32(ms)
}
