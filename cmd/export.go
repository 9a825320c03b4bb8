package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/igsync/internal/formatter"
	"github.com/urfave/cli/v3"
)

func (r *Runner) exportCommand() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export stored profile and media to a file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "user",
				Aliases:  []string{"u"},
				Usage:    "Application user ID",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Export format: csv, markdown, or txt",
				Value:   "csv",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Base file path (csv, txt) or directory (markdown); defaults to the username",
			},
			&cli.BoolFlag{
				Name:  "image",
				Usage: "Download the profile picture alongside a markdown export",
			},
		},
		Action: r.Export,
	}
}

// Export writes the locally stored account data to disk without touching the
// Graph API, so it works on inactive or expired accounts too.
func (r *Runner) Export(ctx context.Context, cmd *cli.Command) error {
	engine, db, err := r.openEngine()
	if err != nil {
		return err
	}
	defer db.Close()

	account, items, err := engine.StoredMedia(cmd.String("user"))
	if err != nil {
		return err
	}

	export := &formatter.AccountExport{Account: account, Media: items}
	output := cmd.String("output")

	switch cmd.String("format") {
	case "csv":
		result, err := formatter.WriteCSVExport(export, output)
		if err != nil {
			return err
		}
		return r.writePlain("Wrote %s and %s.\n", result.MediaFile, result.MetadataFile)
	case "markdown", "md":
		imageURL := ""
		if cmd.Bool("image") {
			imageURL = account.ProfilePictureURL
		}
		result, err := formatter.WriteMarkdownExport(export, output, imageURL)
		if err != nil {
			return err
		}
		return r.writePlain("Wrote %d file(s) to %s.\n", len(result.Files), result.Directory)
	case "txt", "text":
		path, err := formatter.WriteTextExport(export, output)
		if err != nil {
			return err
		}
		return r.writePlain("Wrote %s.\n", path)
	default:
		return fmt.Errorf("unknown export format %q", cmd.String("format"))
	}
}
