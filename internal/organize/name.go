// Package organize maps media metadata to target-relative paths.
// Resolution is deterministic: the same inputs always produce the same
// output, with no filesystem or network access.
package organize

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"undisorder/internal/metadata"
)

// Directory names that carry no organizational meaning.
var genericNames = map[string]bool{
	"dcim": true, "camera": true, "img": true, "image": true, "images": true,
	"download": true, "downloads": true,
	"backup": true, "backups": true,
	"temp": true, "tmp": true,
	"pictures": true, "photos": true, "fotos": true, "bilder": true,
	"videos": true, "movies": true, "clips": true,
	"desktop": true, "documents": true,
	"misc": true, "miscellaneous": true, "various": true,
	"untitled": true, "new folder": true, "neuer ordner": true,
	"export": true, "output": true, "import": true,
	"sd card": true, "sdcard": true, "usb": true,
	"iphone": true, "android": true, "samsung": true,
	"whatsapp images": true, "whatsapp video": true,
}

// Camera subfolder patterns like 100APPLE, 101_PANA, 100CANON.
var cameraFolderPattern = regexp.MustCompile(`(?i)^\d{3}[A-Z_]`)

// IsMeaningfulDirname reports whether a directory name is worth keeping as
// an organizational topic.
func IsMeaningfulDirname(name string) bool {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return false
	}
	if genericNames[strings.ToLower(trimmed)] {
		return false
	}
	if cameraFolderPattern.MatchString(trimmed) {
		return false
	}
	return true
}

// TopicInput is everything the topic rules may draw on.
type TopicInput struct {
	Meta      *metadata.Record
	PlaceName string // resolved place name for the GPS coordinate, if any
}

// topicRule is one entry of the ordered fallback policy: the first rule
// whose extractor returns a non-empty topic wins.
type topicRule struct {
	name    string
	extract func(TopicInput) string
}

var topicRules = []topicRule{
	{name: "source-dir", extract: func(in TopicInput) string {
		parent := filepath.Base(filepath.Dir(in.Meta.SourcePath))
		if IsMeaningfulDirname(parent) {
			return Slugify(parent)
		}
		return ""
	}},
	{name: "keywords", extract: func(in TopicInput) string {
		kw := in.Meta.Keywords
		if len(kw) == 0 {
			kw = in.Meta.Subject
		}
		if len(kw) > 0 {
			return Slugify(kw[0])
		}
		return ""
	}},
	{name: "place", extract: func(in TopicInput) string {
		return Slugify(in.PlaceName)
	}},
	{name: "description", extract: func(in TopicInput) string {
		return TruncateDescription(in.Meta.Description)
	}},
	{name: "user-comment", extract: func(in TopicInput) string {
		return TruncateDescription(in.Meta.UserComment)
	}},
}

// SuggestDirname resolves the target-relative directory for a photo or
// video: "YYYY/YYYY-MM" from the capture date (falling back to fsTime, the
// file's modification time, when metadata has no date), suffixed with the
// first topic the rule chain yields. With no date at all the file routes
// to an "unknown_date" bucket, never an error.
func SuggestDirname(meta *metadata.Record, placeName string, fsTime time.Time) string {
	date := meta.DateTaken
	if date == nil && !fsTime.IsZero() {
		date = &fsTime
	}

	var datePrefix string
	if date != nil {
		datePrefix = fmt.Sprintf("%04d/%04d-%02d", date.Year(), date.Year(), date.Month())
	}

	var topic string
	for _, rule := range topicRules {
		if t := rule.extract(TopicInput{Meta: meta, PlaceName: placeName}); t != "" {
			topic = t
			break
		}
	}

	switch {
	case datePrefix != "" && topic != "":
		return datePrefix + "_" + topic
	case datePrefix != "":
		return datePrefix
	case topic != "":
		return "unknown_date/" + topic
	default:
		return "unknown_date"
	}
}

// TargetPath resolves the full target path for a photo or video file,
// keeping its original filename.
func TargetPath(meta *metadata.Record, targetRoot, placeName string, fsTime time.Time) string {
	return filepath.Join(targetRoot, SuggestDirname(meta, placeName, fsTime), filepath.Base(meta.SourcePath))
}
