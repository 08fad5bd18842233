package internal

import "testing"

func TestSanitize(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{"Old Fashioned", "old_fashioned"},
		{"  Piña Colada  ", "pi_a_colada"},
		{"Lemon - Fine Cut", "lemon_fine_cut"},
		{"already_clean", "already_clean"},
		{"Mai--Tai!!", "mai_tai_"},
	}
	for _, tc := range cases {
		if got := Sanitize(tc.in); got != tc.want {
			t.Errorf("Sanitize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestTitleCase(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{"old_fashioned", "Old Fashioned"},
		{"blood orange spritz", "Blood Orange Spritz"},
		{"MARGARITA", "Margarita"},
	}
	for _, tc := range cases {
		if got := TitleCase(tc.in); got != tc.want {
			t.Errorf("TitleCase(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestContentTypeFor(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{"photo.JPG", "image/jpeg"},
		{"photo.png", "image/png"},
		{"clip.mp4", "video/mp4"},
		{"notes.txt", "application/octet-stream"},
	}
	for _, tc := range cases {
		if got := ContentTypeFor(tc.in); got != tc.want {
			t.Errorf("ContentTypeFor(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestIsImageAndVideoFile(t *testing.T) {
	t.Parallel()

	if !IsImageFile("a.JPeG") || IsImageFile("a.mp4") {
		t.Error("image extension detection wrong")
	}
	if !IsVideoFile("clip.MOV") || IsVideoFile("a.png") {
		t.Error("video extension detection wrong")
	}
}
