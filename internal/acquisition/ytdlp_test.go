package acquisition

import (
	"testing"
)

func TestTrackFromInfoJSON(t *testing.T) {
	infoJSON := `{
		"id": "dQw4w9WgXcQ",
		"title": "Never Gonna Give You Up",
		"filename": "inputs/Never Gonna Give You Up.webm"
	}`

	track, err := trackFromInfoJSON("inputs", infoJSON)
	if err != nil {
		t.Fatalf("trackFromInfoJSON failed: %v", err)
	}
	if track.Title != "Never Gonna Give You Up" {
		t.Errorf("unexpected title %q", track.Title)
	}
	if track.YouTubeID != "dQw4w9WgXcQ" {
		t.Errorf("unexpected id %q", track.YouTubeID)
	}
	// The extract-audio postprocessor rewrites the container to mp3.
	if track.Path != "inputs/Never Gonna Give You Up.mp3" {
		t.Errorf("unexpected path %q", track.Path)
	}
}

func TestTrackFromInfoJSONPrefersRequestedDownloads(t *testing.T) {
	infoJSON := `{
		"id": "abc123xyz00",
		"title": "Song",
		"filename": "inputs/Song.webm",
		"requested_downloads": [{"filepath": "inputs/Song.m4a"}]
	}`

	track, err := trackFromInfoJSON("inputs", infoJSON)
	if err != nil {
		t.Fatalf("trackFromInfoJSON failed: %v", err)
	}
	if track.Path != "inputs/Song.mp3" {
		t.Errorf("unexpected path %q", track.Path)
	}
}

func TestTrackFromInfoJSONMissingTitle(t *testing.T) {
	if _, err := trackFromInfoJSON("inputs", `{"id": "abc"}`); err == nil {
		t.Error("expected error for missing title")
	}
}

func TestTrackFromInfoJSONGarbage(t *testing.T) {
	if _, err := trackFromInfoJSON("inputs", "not json at all"); err == nil {
		t.Error("expected error for unparseable output")
	}
}

func TestMp3Path(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"inputs/a.webm", "inputs/a.mp3"},
		{"inputs/a.m4a", "inputs/a.mp3"},
		{"inputs/a.mp3", "inputs/a.mp3"},
		{"inputs/noext", "inputs/noext"},
	}
	for _, tc := range cases {
		if got := mp3Path(tc.in); got != tc.want {
			t.Errorf("mp3Path(%q): expected %q, got %q", tc.in, tc.want, got)
		}
	}
}
