package utils

import (
	"path/filepath"
	"testing"
)

func TestSanitizeFilename(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Song_D minor_128", "Song_D minor_128"},
		{"AC/DC: Back in Black", "AC_DC_ Back in Black"},
		{`a\b*c?d"e<f>g|h`, "a_b_c_d_e_f_g_h"},
		{"  trimmed  ", "trimmed"},
		{"trailing dots...", "trailing dots"},
		{"///", "untitled"},
	}
	for _, tc := range cases {
		if got := SanitizeFilename(tc.in); got != tc.want {
			t.Errorf("SanitizeFilename(%q): expected %q, got %q", tc.in, tc.want, got)
		}
	}
}

func TestExtractYouTubeID(t *testing.T) {
	cases := []struct {
		url  string
		want string
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/v/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
	}
	for _, tc := range cases {
		got, err := ExtractYouTubeID(tc.url)
		if err != nil {
			t.Errorf("ExtractYouTubeID(%q) failed: %v", tc.url, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ExtractYouTubeID(%q): expected %q, got %q", tc.url, tc.want, got)
		}
	}
}

func TestExtractYouTubeIDRejectsOthers(t *testing.T) {
	for _, url := range []string{"https://example.com/watch?v=x", "not a url at all ://"} {
		if _, err := ExtractYouTubeID(url); err == nil {
			t.Errorf("expected error for %q", url)
		}
	}
}

func TestIsYouTubeURL(t *testing.T) {
	if !IsYouTubeURL("https://www.youtube.com/watch?v=abc") {
		t.Error("youtube.com URL not recognized")
	}
	if !IsYouTubeURL("https://youtu.be/abc") {
		t.Error("youtu.be URL not recognized")
	}
	if IsYouTubeURL("https://vimeo.com/12345") {
		t.Error("non-YouTube URL recognized")
	}
}

func TestDirWritable(t *testing.T) {
	dir := t.TempDir()
	if !DirWritable(dir) {
		t.Error("temp dir should be writable")
	}
	if DirWritable(filepath.Join(dir, "does-not-exist")) {
		t.Error("missing dir should not report writable")
	}
}

func TestDirExists(t *testing.T) {
	dir := t.TempDir()
	if !DirExists(dir) {
		t.Error("temp dir should exist")
	}
	if DirExists(filepath.Join(dir, "absent")) {
		t.Error("missing path should not exist")
	}
}
