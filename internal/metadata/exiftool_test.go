package metadata

import (
	"testing"
	"time"
)

func TestParseExifEntry(t *testing.T) {
	entry := map[string]any{
		"SourceFile":             "/src/IMG_0001.jpg",
		"EXIF:DateTimeOriginal":  "2023:07:14 18:22:05",
		"Composite:GPSLatitude":  43.5081,
		"Composite:GPSLongitude": 16.4402,
		"IPTC:Keywords":          []any{"Urlaub", "Kroatien"},
		"EXIF:ImageDescription":  "Abend am Hafen",
		"EXIF:UserComment":       "DSLR export",
	}

	rec := ParseExifEntry(entry, "/src/IMG_0001.jpg")

	want := time.Date(2023, 7, 14, 18, 22, 5, 0, time.UTC)
	if rec.DateTaken == nil || !rec.DateTaken.Equal(want) {
		t.Errorf("DateTaken = %v, want %v", rec.DateTaken, want)
	}
	if !rec.HasGPS() || *rec.Latitude != 43.5081 || *rec.Longitude != 16.4402 {
		t.Errorf("GPS = %v/%v", rec.Latitude, rec.Longitude)
	}
	if len(rec.Keywords) != 2 || rec.Keywords[0] != "Urlaub" {
		t.Errorf("Keywords = %v", rec.Keywords)
	}
	if rec.Description != "Abend am Hafen" {
		t.Errorf("Description = %q", rec.Description)
	}
	if rec.UserComment != "DSLR export" {
		t.Errorf("UserComment = %q", rec.UserComment)
	}
}

func TestParseExifEntryDatePriority(t *testing.T) {
	t.Run("original beats create date", func(t *testing.T) {
		rec := ParseExifEntry(map[string]any{
			"EXIF:DateTimeOriginal": "2023:07:14 18:22:05",
			"EXIF:CreateDate":       "2024:01:01 00:00:00",
		}, "x")
		if rec.DateTaken == nil || rec.DateTaken.Year() != 2023 {
			t.Errorf("DateTaken = %v", rec.DateTaken)
		}
	})

	t.Run("falls through unparseable values", func(t *testing.T) {
		rec := ParseExifEntry(map[string]any{
			"EXIF:DateTimeOriginal": "not a date",
			"QuickTime:CreateDate":  "2022:05:01 09:00:00",
		}, "x")
		if rec.DateTaken == nil || rec.DateTaken.Year() != 2022 {
			t.Errorf("DateTaken = %v", rec.DateTaken)
		}
	})

	t.Run("rejects placeholder dates", func(t *testing.T) {
		rec := ParseExifEntry(map[string]any{
			"EXIF:DateTimeOriginal": "0000:00:00 00:00:00",
		}, "x")
		if rec.DateTaken != nil {
			t.Errorf("DateTaken = %v, want nil", rec.DateTaken)
		}
	})

	t.Run("no date tags", func(t *testing.T) {
		rec := ParseExifEntry(map[string]any{}, "x")
		if rec.DateTaken != nil {
			t.Errorf("DateTaken = %v, want nil", rec.DateTaken)
		}
	})
}

func TestParseExifEntryGPSRefs(t *testing.T) {
	rec := ParseExifEntry(map[string]any{
		"EXIF:GPSLatitude":     33.8688,
		"EXIF:GPSLatitudeRef":  "S",
		"EXIF:GPSLongitude":    151.2093,
		"EXIF:GPSLongitudeRef": "E",
	}, "x")
	if !rec.HasGPS() {
		t.Fatal("expected GPS coordinates")
	}
	if *rec.Latitude != -33.8688 {
		t.Errorf("Latitude = %v, want -33.8688", *rec.Latitude)
	}
	if *rec.Longitude != 151.2093 {
		t.Errorf("Longitude = %v, want 151.2093", *rec.Longitude)
	}

	rec = ParseExifEntry(map[string]any{"EXIF:GPSLatitude": 10.0}, "x")
	if rec.HasGPS() {
		t.Error("latitude alone should not count as GPS")
	}
}

func TestParseExifEntryScalarKeyword(t *testing.T) {
	rec := ParseExifEntry(map[string]any{"IPTC:Keywords": "Hochzeit"}, "x")
	if len(rec.Keywords) != 1 || rec.Keywords[0] != "Hochzeit" {
		t.Errorf("Keywords = %v", rec.Keywords)
	}
}
