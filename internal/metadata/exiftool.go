package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"time"
)

// Date tag lookup order; first parseable match wins.
var dateTags = []string{
	"EXIF:DateTimeOriginal",
	"EXIF:CreateDate",
	"QuickTime:CreateDate",
	"QuickTime:MediaCreateDate",
	"XMP:DateTimeOriginal",
	"XMP:CreateDate",
}

const exifDateFormat = "2006:01:02 15:04:05"

// ExifToolExtractor extracts metadata by shelling out to exiftool with
// JSON output. One invocation handles a whole batch of paths.
type ExifToolExtractor struct {
	// Binary overrides the exiftool executable name. Empty means "exiftool".
	Binary string
}

func (e *ExifToolExtractor) binary() string {
	if e.Binary != "" {
		return e.Binary
	}
	return "exiftool"
}

// ExtractBatch runs exiftool once for all paths and parses the result.
// A failed invocation returns records with only SourcePath set, so the
// import still proceeds with unknown metadata.
func (e *ExifToolExtractor) ExtractBatch(ctx context.Context, paths []string) (map[string]*Record, error) {
	out := make(map[string]*Record, len(paths))
	for _, p := range paths {
		out[p] = &Record{SourcePath: p}
	}
	if len(paths) == 0 {
		return out, nil
	}

	// -n: numeric output (GPS stays signed decimal), -G: group-prefixed tags.
	args := append([]string{"-json", "-n", "-G"}, paths...)
	raw, err := exec.CommandContext(ctx, e.binary(), args...).Output()
	if err != nil {
		// exiftool exits non-zero if any file had no metadata; partial
		// output is still usable.
		if len(raw) == 0 {
			return out, fmt.Errorf("running exiftool: %w", err)
		}
	}

	var entries []map[string]any
	if err := json.Unmarshal(raw, &entries); err != nil {
		return out, fmt.Errorf("parsing exiftool output: %w", err)
	}

	for _, entry := range entries {
		source, _ := entry["SourceFile"].(string)
		if source == "" {
			continue
		}
		out[source] = ParseExifEntry(entry, source)
	}
	return out, nil
}

// ParseExifEntry converts one exiftool JSON object into a Record.
func ParseExifEntry(entry map[string]any, sourcePath string) *Record {
	rec := &Record{SourcePath: sourcePath}
	rec.DateTaken = parseDate(entry)
	rec.Latitude, rec.Longitude = parseGPS(entry)
	rec.Keywords = parseStringList(entry, "IPTC:Keywords", "XMP:Subject")
	rec.Subject = parseStringList(entry, "XMP:Subject")
	rec.Description = parseFirstString(entry, "EXIF:ImageDescription", "XMP:Description", "IPTC:Caption-Abstract")
	rec.UserComment = parseFirstString(entry, "EXIF:UserComment")
	return rec
}

func parseDate(entry map[string]any) *time.Time {
	for _, tag := range dateTags {
		value, ok := entry[tag].(string)
		if !ok || value == "" {
			continue
		}
		t, err := time.Parse(exifDateFormat, value)
		if err != nil {
			continue
		}
		// Reject placeholder dates like 0000:00:00.
		if t.Year() < 1900 {
			continue
		}
		return &t
	}
	return nil
}

func parseGPS(entry map[string]any) (*float64, *float64) {
	// Composite tags are pre-computed and already signed.
	if lat, ok := asFloat(entry["Composite:GPSLatitude"]); ok {
		if lon, ok := asFloat(entry["Composite:GPSLongitude"]); ok {
			return &lat, &lon
		}
	}

	lat, okLat := asFloat(entry["EXIF:GPSLatitude"])
	lon, okLon := asFloat(entry["EXIF:GPSLongitude"])
	if !okLat || !okLon {
		return nil, nil
	}
	if ref, _ := entry["EXIF:GPSLatitudeRef"].(string); ref == "S" {
		lat = -lat
	}
	if ref, _ := entry["EXIF:GPSLongitudeRef"].(string); ref == "W" {
		lon = -lon
	}
	return &lat, &lon
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}

func parseStringList(entry map[string]any, tags ...string) []string {
	for _, tag := range tags {
		switch v := entry[tag].(type) {
		case nil:
			continue
		case []any:
			out := make([]string, 0, len(v))
			for _, item := range v {
				out = append(out, fmt.Sprintf("%v", item))
			}
			return out
		default:
			return []string{fmt.Sprintf("%v", v)}
		}
	}
	return nil
}

func parseFirstString(entry map[string]any, tags ...string) string {
	for _, tag := range tags {
		if s, ok := entry[tag].(string); ok && s != "" {
			return s
		}
	}
	return ""
}
