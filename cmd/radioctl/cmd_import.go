package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/vyrodovalexey/radiodir/internal/model"
)

var importCmd = &cobra.Command{
	Use:   "import <file.yaml>",
	Short: "Add the stations listed in a YAML file",
	Long: `Add every station of a YAML file to the directory. The file holds a
"stations" list whose entries have name, stream_url and optional genre and country.
The whole file is validated before anything is sent.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

// importFile is the layout of an import document.
type importFile struct {
	Stations []model.StationInput `yaml:"stations"`
}

func runImport(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("opening import file: %w", err)
	}
	defer f.Close()

	stations, err := parseImport(f)
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}

	c := newClient()
	out := cmd.OutOrStdout()
	for i := range stations {
		id, err := c.AddStation(cmd.Context(), &stations[i])
		if err != nil {
			return fmt.Errorf("adding %q: %w", stations[i].Name, err)
		}
		fmt.Fprintf(out, "%s (id %d)\n", stations[i].Name, id)
	}

	fmt.Fprintf(out, "%d radios importadas.\n", len(stations))
	return nil
}

// parseImport decodes and validates an import document.
func parseImport(r io.Reader) ([]model.StationInput, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc importFile
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty import file")
		}
		return nil, fmt.Errorf("decoding yaml: %w", err)
	}

	for i := range doc.Stations {
		if err := doc.Stations[i].Validate(); err != nil {
			return nil, fmt.Errorf("station %d: %w", i+1, err)
		}
	}
	return doc.Stations, nil
}
