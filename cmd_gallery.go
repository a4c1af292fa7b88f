package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/msomdec/gallery-admin/internal/domain"
	"github.com/msomdec/gallery-admin/internal/gallery"
)

var (
	applyYearsOutput    string
	applyYearsOverwrite bool
	applyYearsDryRun    bool
)

type photoJSON struct {
	ID          string   `json:"id"`
	Src         string   `json:"src"`
	Alt         string   `json:"alt"`
	Location    string   `json:"location"`
	Year        string   `json:"year"`
	Tags        []string `json:"tags"`
	Description string   `json:"description,omitempty"`
}

var decodeCmd = &cobra.Command{
	Use:   "decode <photos.html>",
	Short: "Print the photos of a local gallery page as JSON",
	Long:  "Decode reads a gallery page (\"-\" for stdin) and writes the photos of its single photos-grid container as a JSON array to stdout.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := readInput(args[0])
		if err != nil {
			return err
		}
		inner, err := gallery.Inner(string(doc))
		if err != nil {
			return err
		}
		photos := gallery.Decode(inner)
		out := make([]photoJSON, 0, len(photos))
		for _, p := range photos {
			tags := p.Tags
			if tags == nil {
				tags = []string{}
			}
			out = append(out, photoJSON{
				ID:          p.ID,
				Src:         p.Src,
				Alt:         p.Alt,
				Location:    p.Location,
				Year:        p.Year,
				Tags:        tags,
				Description: p.Description,
			})
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}

var applyYearsCmd = &cobra.Command{
	Use:   "apply-years <photos.html> <photo-metadata.json>",
	Short: "Fill in photo years from a metadata file",
	Long: `apply-years reads a metadata file mapping image file names to
{"year": ...} and sets the year of every matching photo that has none
(or the TBD placeholder). The page is rewritten in place unless --output
is given.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := readInput(args[0])
		if err != nil {
			return err
		}
		raw, err := readInput(args[1])
		if err != nil {
			return err
		}
		years, err := parseYears(raw)
		if err != nil {
			return err
		}

		inner, err := gallery.Inner(string(doc))
		if err != nil {
			return err
		}
		photos := gallery.Decode(inner)
		if len(photos) == 0 {
			return domain.ErrMalformedGallery
		}
		changed := gallery.ApplyYears(photos, years, applyYearsOverwrite)

		fmt.Fprintf(cmd.ErrOrStderr(), "%d of %d photos updated\n", changed, len(photos))
		if changed == 0 || applyYearsDryRun {
			return nil
		}

		updated, err := gallery.Splice(string(doc), gallery.Encode(photos, nil))
		if err != nil {
			return err
		}

		target := applyYearsOutput
		if target == "" {
			target = args[0]
		}
		if target == "-" {
			_, err := fmt.Fprint(cmd.OutOrStdout(), updated)
			return err
		}
		if err := os.WriteFile(target, []byte(updated), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", target, err)
		}
		return nil
	},
}

func init() {
	applyYearsCmd.Flags().StringVarP(&applyYearsOutput, "output", "o", "", "write the page here instead of in place (\"-\" for stdout)")
	applyYearsCmd.Flags().BoolVar(&applyYearsOverwrite, "overwrite", false, "replace years that are already set")
	applyYearsCmd.Flags().BoolVar(&applyYearsDryRun, "dry-run", false, "report the count without writing")
}

// parseYears reads {"<file>": {"year": 2019}, ...}. Years may be numbers
// or strings.
func parseYears(raw []byte) (map[string]string, error) {
	var entries map[string]struct {
		Year any `json:"year"`
	}
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("%w: metadata: %v", domain.ErrInvalidInput, err)
	}

	years := make(map[string]string, len(entries))
	for name, entry := range entries {
		switch y := entry.Year.(type) {
		case nil:
		case string:
			years[name] = y
		case float64:
			years[name] = fmt.Sprintf("%.0f", y)
		default:
			return nil, fmt.Errorf("%w: metadata: year of %s", domain.ErrInvalidInput, name)
		}
	}
	return years, nil
}
