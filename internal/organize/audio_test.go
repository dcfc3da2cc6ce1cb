package organize

import (
	"os"
	"path/filepath"
	"testing"

	"undisorder/internal/metadata"
)

func TestAudioTargetPath(t *testing.T) {
	tests := []struct {
		name string
		rec  *metadata.AudioRecord
		want string
	}{
		{
			name: "full tags",
			rec: &metadata.AudioRecord{
				SourcePath:  "/src/track07.flac",
				Artist:      "Nina Simone",
				Album:       "Pastel Blues",
				Title:       "Sinnerman",
				TrackNumber: 7,
			},
			want: "/music/Nina Simone/Pastel Blues/07_Sinnerman.flac",
		},
		{
			name: "title without track number",
			rec: &metadata.AudioRecord{
				SourcePath: "/src/track.mp3",
				Artist:     "Nina Simone",
				Album:      "Pastel Blues",
				Title:      "Sinnerman",
			},
			want: "/music/Nina Simone/Pastel Blues/Sinnerman.mp3",
		},
		{
			name: "no tags keeps filename",
			rec: &metadata.AudioRecord{
				SourcePath: "/src/rip 04.mp3",
			},
			want: "/music/Unknown Artist/Unknown Album/rip 04.mp3",
		},
		{
			name: "reserved characters sanitized",
			rec: &metadata.AudioRecord{
				SourcePath:  "/src/x.mp3",
				Artist:      "AC/DC",
				Album:       "Back in Black",
				Title:       "What Do You Do for Money?",
				TrackNumber: 4,
			},
			want: "/music/AC_DC/Back in Black/04_What Do You Do for Money_.mp3",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AudioTargetPath(tt.rec, "/music"); got != tt.want {
				t.Errorf("AudioTargetPath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolveCollision(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "IMG_0001.jpg")

	if got := ResolveCollision(target); got != target {
		t.Errorf("ResolveCollision on free path = %q, want %q", got, target)
	}

	if err := os.WriteFile(target, []byte("a"), 0644); err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(dir, "IMG_0001_1.jpg")
	if got := ResolveCollision(target); got != want {
		t.Errorf("ResolveCollision() = %q, want %q", got, want)
	}

	if err := os.WriteFile(want, []byte("b"), 0644); err != nil {
		t.Fatal(err)
	}
	want2 := filepath.Join(dir, "IMG_0001_2.jpg")
	if got := ResolveCollision(target); got != want2 {
		t.Errorf("ResolveCollision() = %q, want %q", got, want2)
	}
}
