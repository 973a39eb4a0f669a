package model

// SceneTimeFormat is the compact sensing-time form used in Sentinel-3 product folder names
const SceneTimeFormat = "20060102T150405"

// Platform letters as they appear after the mission prefix ("S3A_...")
const (
	PlatformA = "A"
	PlatformB = "B"
)

// Instrument codes from the product name
const (
	InstrumentOLCI  = "OL"
	InstrumentSLSTR = "SL"
)

// PlatformNumber returns the numeric platform code written to CSV outputs:
// 0 for Sentinel-3A, 1 for Sentinel-3B, -1 when unknown
func PlatformNumber(platform string) int {
	switch platform {
	case PlatformA:
		return 0
	case PlatformB:
		return 1
	}
	return -1
}
