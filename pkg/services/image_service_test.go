package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"lunori/pkg/errors"
	"lunori/pkg/storage"
)

func newImageService(t *testing.T, captioner *stubCaptioner) *ImageService {
	t.Helper()

	images, err := storage.NewImageStore(filepath.Join(t.TempDir(), "images"))
	if err != nil {
		t.Fatal(err)
	}
	return NewImageService(images, captioner, slog.Default())
}

func TestImageUploadRejectsBadExtension(t *testing.T) {
	svc := newImageService(t, &stubCaptioner{})

	_, err := svc.Upload(context.Background(), "photo.gif", []byte("x"))
	appErr, ok := err.(*errors.AppError)
	if !ok || appErr.Type != errors.ErrTypeInvalidArgument {
		t.Errorf("error = %v, want invalid argument", err)
	}

	if _, err := svc.Upload(context.Background(), "photo.png", nil); err == nil {
		t.Error("empty image accepted")
	}
}

func TestImageUpload(t *testing.T) {
	svc := newImageService(t, &stubCaptioner{caption: " A cat sitting on a red mat "})

	result, err := svc.Upload(context.Background(), "photo.JPG", []byte("jpeg-bytes"))
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	if !strings.HasSuffix(result.Filename, ".jpg") {
		t.Errorf("Filename = %q, want lowered .jpg", result.Filename)
	}
	if result.URL != "/images/"+result.Filename {
		t.Errorf("URL = %q", result.URL)
	}
	if result.Caption != "A cat sitting on a red mat" {
		t.Errorf("Caption = %q", result.Caption)
	}
	if !reflect.DeepEqual(result.Tags, []string{"cat", "sitting", "red", "mat"}) {
		t.Errorf("Tags = %v", result.Tags)
	}

	if _, err := os.Stat(result.Path); err != nil {
		t.Errorf("stored image missing: %v", err)
	}
	if _, err := svc.Resolve(result.Filename); err != nil {
		t.Errorf("Resolve after upload failed: %v", err)
	}
}

func TestImageUploadCaptionFailureDegrades(t *testing.T) {
	svc := newImageService(t, &stubCaptioner{err: fmt.Errorf("model offline")})

	result, err := svc.Upload(context.Background(), "photo.png", []byte("png-bytes"))
	if err != nil {
		t.Fatalf("Upload must not fail on caption error, got %v", err)
	}
	if result.Caption != "" || len(result.Tags) != 0 {
		t.Errorf("degraded result = %+v, want empty caption and tags", result)
	}
	if _, err := svc.Resolve(result.Filename); err != nil {
		t.Errorf("image not stored despite caption failure: %v", err)
	}
}

func TestTagsFromCaption(t *testing.T) {
	tests := []struct {
		name    string
		caption string
		want    []string
	}{
		{"empty", "", nil},
		{"stopwords only", "the of and", nil},
		{"basic", "A cat sitting on a red mat", []string{"cat", "sitting", "red", "mat"}},
		{"dedupes first seen", "Dog dog DOG barking", []string{"dog", "barking"}},
		{"splits punctuation", "sunset, over the ocean; golden-hour light", []string{"sunset", "over", "ocean", "golden", "hour", "light"}},
		{"drops short tokens", "an ox on a hill", []string{"hill"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TagsFromCaption(tt.caption); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("TagsFromCaption(%q) = %v, want %v", tt.caption, got, tt.want)
			}
		})
	}
}

func TestTagsFromCaptionCap(t *testing.T) {
	var words []string
	for i := 0; i < 20; i++ {
		words = append(words, fmt.Sprintf("word%02d", i))
	}

	tags := TagsFromCaption(strings.Join(words, " "))
	if len(tags) != maxTags {
		t.Fatalf("len(tags) = %d, want %d", len(tags), maxTags)
	}
	if tags[0] != "word00" || tags[maxTags-1] != fmt.Sprintf("word%02d", maxTags-1) {
		t.Errorf("tags = %v, want first-seen order", tags)
	}
}
