// package formatter provides functions to export synced account data to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/desertthunder/igsync/internal/models"
)

// AccountExport bundles a linked account with its stored media for export.
type AccountExport struct {
	Account *models.Account  `json:"account"`
	Media   []*models.Media `json:"media"`
}

// ExportToCSV converts an AccountExport to CSV format with columns: MediaID, Type, Permalink, Caption, Likes, Comments, CapturedAt
func ExportToCSV(export *AccountExport) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"MediaID", "Type", "Permalink", "Caption", "Likes", "Comments", "CapturedAt"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, item := range export.Media {
		record := []string{
			item.MediaID,
			item.MediaType,
			item.Permalink,
			item.Caption,
			strconv.Itoa(item.LikeCount),
			strconv.Itoa(item.CommentCount),
			capturedAtString(item.CapturedAt),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts an AccountExport to Markdown format with optional profile picture
func ExportToMarkdown(export *AccountExport, imageFilename string) ([]byte, error) {
	var buf bytes.Buffer
	account := export.Account

	buf.WriteString(fmt.Sprintf("# @%s\n\n", account.Username))

	if imageFilename != "" {
		buf.WriteString(fmt.Sprintf("![Profile](%s)\n\n", imageFilename))
	}

	if account.Biography != "" {
		buf.WriteString(fmt.Sprintf("**Bio**: %s\n\n", account.Biography))
	}

	buf.WriteString(fmt.Sprintf("**Followers**: %d\n", account.FollowersCount))
	buf.WriteString(fmt.Sprintf("**Following**: %d\n", account.FollowingCount))
	buf.WriteString(fmt.Sprintf("**Media**: %d\n\n", account.MediaCount))

	buf.WriteString("## Media\n\n")
	for i, item := range export.Media {
		captionPart := ""
		if item.Caption != "" {
			captionPart = fmt.Sprintf(" %s", item.Caption)
		}
		buf.WriteString(fmt.Sprintf("%d. [%s](%s)%s (%d likes, %d comments)\n",
			i+1, item.MediaType, item.Permalink, captionPart, item.LikeCount, item.CommentCount))
	}

	return buf.Bytes(), nil
}

// ExportToText converts an AccountExport to plain text format
func ExportToText(export *AccountExport) ([]byte, error) {
	var buf bytes.Buffer
	account := export.Account

	buf.WriteString(fmt.Sprintf("Account: @%s\n", account.Username))
	if account.Name != "" {
		buf.WriteString(fmt.Sprintf("Name: %s\n", account.Name))
	}
	buf.WriteString(fmt.Sprintf("Media: %d\n\n", len(export.Media)))

	for i, item := range export.Media {
		buf.WriteString(fmt.Sprintf("%d. %s %s\n", i+1, item.MediaType, item.Permalink))
	}

	return buf.Bytes(), nil
}

// DownloadImage downloads an image from the given URL and returns the raw bytes
func DownloadImage(url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("empty URL provided")
	}

	client := &http.Client{
		Timeout: 30 * time.Second,
	}

	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	imageData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	return imageData, nil
}

// ToMetadataJSON generates a JSON representation of account metadata (without media)
func ToMetadataJSON(account *models.Account) ([]byte, error) {
	return json.MarshalIndent(account, "", "  ")
}

// CSVExportResult contains the paths of files created by WriteCSVExport
type CSVExportResult struct {
	MediaFile    string
	MetadataFile string
}

// WriteCSVExport exports an account to CSV format with an accompanying metadata JSON file.
//
// Defaults to the username as the base filename & creates {base}_media.csv and {base}_metadata.json
func WriteCSVExport(export *AccountExport, baseFilepath string) (*CSVExportResult, error) {
	if baseFilepath == "" {
		baseFilepath = export.Account.Username
	}

	csvData, err := ExportToCSV(export)
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSV: %w", err)
	}

	mediaFile := baseFilepath + "_media.csv"
	if err := os.WriteFile(mediaFile, csvData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write CSV file: %w", err)
	}

	metadataJSON, err := ToMetadataJSON(export.Account)
	if err != nil {
		return nil, fmt.Errorf("failed to generate metadata JSON: %w", err)
	}

	metadataFile := baseFilepath + "_metadata.json"
	if err := os.WriteFile(metadataFile, metadataJSON, 0644); err != nil {
		return nil, fmt.Errorf("failed to write metadata file: %w", err)
	}

	return &CSVExportResult{
		MediaFile:    mediaFile,
		MetadataFile: metadataFile,
	}, nil
}

// MarkdownExportResult contains information about files created by WriteMarkdownExport
type MarkdownExportResult struct {
	Directory    string
	Files        []string
	ProfileImage string
}

// WriteMarkdownExport exports an account to Markdown format in a dedicated directory.
//
// Directory name defaults to the username.
// The imageURL parameter is optional - if provided, attempts to download the profile picture.
// Creates a directory structure: {dir}/README.md and optionally {dir}/profile.jpg
func WriteMarkdownExport(export *AccountExport, outputDir string, imageURL string) (*MarkdownExportResult, error) {
	if outputDir == "" {
		outputDir = export.Account.Username
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	result := &MarkdownExportResult{
		Directory: outputDir,
		Files:     []string{},
	}

	var profileImageFilename string
	if imageURL != "" {
		imageData, err := DownloadImage(imageURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to download profile picture: %v\n", err)
		} else {
			profileImageFilename = "profile.jpg"
			profileImagePath := fmt.Sprintf("%s/%s", outputDir, profileImageFilename)
			if err := os.WriteFile(profileImagePath, imageData, 0644); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to save profile picture: %v\n", err)
				profileImageFilename = ""
			} else {
				result.ProfileImage = profileImagePath
				result.Files = append(result.Files, profileImagePath)
			}
		}
	}

	mdData, err := ExportToMarkdown(export, profileImageFilename)
	if err != nil {
		return nil, fmt.Errorf("failed to generate Markdown: %w", err)
	}

	mdFile := fmt.Sprintf("%s/README.md", outputDir)
	if err := os.WriteFile(mdFile, mdData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write Markdown file: %w", err)
	}

	result.Files = append(result.Files, mdFile)

	return result, nil
}

// WriteTextExport exports an account to plain text format.
//
// Defaults to {username}_media.txt as the filename.
func WriteTextExport(export *AccountExport, filepath string) (string, error) {
	if filepath == "" {
		filepath = fmt.Sprintf("%s_media.txt", export.Account.Username)
	}

	textData, err := ExportToText(export)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if err := os.WriteFile(filepath, textData, 0644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}

	return filepath, nil
}

func capturedAtString(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}
