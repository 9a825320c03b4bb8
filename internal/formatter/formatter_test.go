package formatter

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/igsync/internal/models"
)

func testExport() *AccountExport {
	captured := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return &AccountExport{
		Account: &models.Account{
			UserID:         "u1",
			Username:       "alice",
			Name:           "Alice",
			Biography:      "coffee and code",
			FollowersCount: 42,
			FollowingCount: 7,
			MediaCount:     2,
		},
		Media: []*models.Media{
			{MediaID: "m1", MediaType: "IMAGE", Permalink: "https://instagram.com/p/m1", Caption: "sunrise", LikeCount: 10, CommentCount: 2, CapturedAt: &captured},
			{MediaID: "m2", MediaType: "VIDEO", Permalink: "https://instagram.com/p/m2", LikeCount: 5, CommentCount: 1},
		},
	}
}

func TestExportFormats(t *testing.T) {
	t.Run("CSV", func(t *testing.T) {
		data, err := ExportToCSV(testExport())
		if err != nil {
			t.Fatalf("csv export failed: %v", err)
		}

		lines := strings.Split(strings.TrimSpace(string(data)), "\n")
		if len(lines) != 3 {
			t.Fatalf("expected header + 2 rows, got %d lines", len(lines))
		}
		if !strings.HasPrefix(lines[0], "MediaID,Type,Permalink") {
			t.Errorf("unexpected header: %s", lines[0])
		}
		if !strings.Contains(lines[1], "2024-03-01T12:00:00Z") {
			t.Errorf("expected captured timestamp in first row: %s", lines[1])
		}
		if !strings.HasSuffix(lines[2], ",") {
			t.Errorf("expected empty CapturedAt column for m2: %s", lines[2])
		}
	})

	t.Run("Markdown", func(t *testing.T) {
		data, err := ExportToMarkdown(testExport(), "profile.jpg")
		if err != nil {
			t.Fatalf("markdown export failed: %v", err)
		}

		content := string(data)
		if !strings.Contains(content, "# @alice") {
			t.Error("expected username heading")
		}
		if !strings.Contains(content, "![Profile](profile.jpg)") {
			t.Error("expected profile image reference")
		}
		if !strings.Contains(content, "**Followers**: 42") {
			t.Error("expected follower count")
		}
		if !strings.Contains(content, "sunrise") {
			t.Error("expected media caption")
		}
	})

	t.Run("Text", func(t *testing.T) {
		data, err := ExportToText(testExport())
		if err != nil {
			t.Fatalf("text export failed: %v", err)
		}
		if !strings.Contains(string(data), "Account: @alice") {
			t.Error("expected account line")
		}
	})
}

func TestWriteExports(t *testing.T) {
	t.Run("CSV Files", func(t *testing.T) {
		base := filepath.Join(t.TempDir(), "alice")
		result, err := WriteCSVExport(testExport(), base)
		if err != nil {
			t.Fatalf("write failed: %v", err)
		}

		for _, path := range []string{result.MediaFile, result.MetadataFile} {
			if _, err := os.Stat(path); err != nil {
				t.Errorf("expected file %s: %v", path, err)
			}
		}
	})

	t.Run("Markdown Directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "alice")
		result, err := WriteMarkdownExport(testExport(), dir, "")
		if err != nil {
			t.Fatalf("write failed: %v", err)
		}
		if result.Directory != dir {
			t.Errorf("expected directory %s, got %s", dir, result.Directory)
		}
		if _, err := os.Stat(filepath.Join(dir, "README.md")); err != nil {
			t.Errorf("expected README.md: %v", err)
		}
	})

	t.Run("Text File", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "alice.txt")
		got, err := WriteTextExport(testExport(), path)
		if err != nil {
			t.Fatalf("write failed: %v", err)
		}
		if got != path {
			t.Errorf("expected %s, got %s", path, got)
		}
	})
}
