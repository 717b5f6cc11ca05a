package player

import (
	"fmt"
	"strings"

	"github.com/vyrodovalexey/radiodir/internal/model"
)

// RenderCard formats a station as a two line card: its name, then genre and
// country. Missing values render as empty text.
func RenderCard(station model.Station) string {
	return fmt.Sprintf("%s\n%s - %s\n", station.Name, station.GenreOrEmpty(), station.CountryOrEmpty())
}

// RenderList renders one numbered card per station, numbering from 1.
func RenderList(stations []model.Station) string {
	if len(stations) == 0 {
		return "No hay radios disponibles.\n"
	}

	var b strings.Builder
	for i, station := range stations {
		card := strings.TrimSuffix(RenderCard(station), "\n")
		lines := strings.Split(card, "\n")
		fmt.Fprintf(&b, "%2d. %s\n", i+1, lines[0])
		for _, line := range lines[1:] {
			fmt.Fprintf(&b, "    %s\n", line)
		}
	}
	return b.String()
}
