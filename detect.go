package jsystem

import (
	"github.com/meigma/jsystem/bcsv"
	"github.com/meigma/jsystem/internal/endian"
	"github.com/meigma/jsystem/tag"
	"github.com/meigma/jsystem/yaz0"
)

// Format identifies a container format.
type Format uint8

// Recognised formats.
const (
	FormatUnknown Format = iota
	FormatYaz0
	FormatRARC
	FormatBCSV
)

func (f Format) String() string {
	switch f {
	case FormatYaz0:
		return "yaz0"
	case FormatRARC:
		return "rarc"
	case FormatBCSV:
		return "bcsv"
	default:
		return "unknown"
	}
}

// Detect identifies the format of data from its header.
//
// Yaz0 and RARC carry magic tags. BCSV has none, so a buffer is reported
// as BCSV only when its header describes field and row tables that fit the
// buffer with the field table directly after the header. Detect does not
// look inside a Yaz0 container.
func Detect(data []byte) Format {
	if yaz0.IsCompressed(data) {
		return FormatYaz0
	}
	if len(data) >= 4 && tag.Parse(data) == tag.RARC {
		return FormatRARC
	}
	if looksLikeBCSV(data) {
		return FormatBCSV
	}
	return FormatUnknown
}

func looksLikeBCSV(data []byte) bool {
	if len(data) < 16 {
		return false
	}
	rows := int64(endian.Int32(data[0:]))
	fields := int64(endian.Int32(data[4:]))
	rowsOffset := int64(endian.Int32(data[8:]))
	stride := int64(endian.Int32(data[12:]))
	if rows < 0 || fields < 0 || stride < 0 {
		return false
	}
	if rowsOffset != 16+12*fields || rowsOffset+rows*stride > int64(len(data)) {
		return false
	}
	for i := range fields {
		off := 16 + 12*i
		if !bcsv.FieldType(data[off+11]).Valid() {
			return false
		}
	}
	return true
}
