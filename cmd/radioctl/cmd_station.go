package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/vyrodovalexey/radiodir/internal/model"
	"github.com/vyrodovalexey/radiodir/internal/player"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all stations",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a station",
	Args:  cobra.NoArgs,
	RunE:  runAdd,
}

var updateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Replace every field of a station",
	Long: `Replace the name, stream URL, genre and country of a station.
Genre and country are cleared when their flags are omitted.`,
	Args: cobra.ExactArgs(1),
	RunE: runUpdate,
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a station",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

func init() {
	for _, cmd := range []*cobra.Command{addCmd, updateCmd} {
		cmd.Flags().String("name", "", "station name (required)")
		cmd.Flags().String("url", "", "stream URL (required)")
		cmd.Flags().String("genre", "", "genre")
		cmd.Flags().String("country", "", "country")
		_ = cmd.MarkFlagRequired("name")
		_ = cmd.MarkFlagRequired("url")
	}

	rootCmd.AddCommand(listCmd, addCmd, updateCmd, deleteCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	stations, err := newClient().ListStations(cmd.Context())
	if err != nil {
		return fmt.Errorf("listing stations: %w", err)
	}

	out := cmd.OutOrStdout()
	for _, s := range stations {
		fmt.Fprintf(out, "[%d] %s", s.ID, player.RenderCard(s))
		fmt.Fprintf(out, "    %s\n", s.StreamURL)
	}
	if len(stations) == 0 {
		fmt.Fprint(out, player.RenderList(nil))
	}
	return nil
}

func runAdd(cmd *cobra.Command, _ []string) error {
	in := stationInputFromFlags(cmd)

	id, err := newClient().AddStation(cmd.Context(), in)
	if err != nil {
		return fmt.Errorf("adding station: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s (id %d)\n", model.MsgCreated, id)
	return nil
}

func runUpdate(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	if err := newClient().UpdateStation(cmd.Context(), id, stationInputFromFlags(cmd)); err != nil {
		return fmt.Errorf("updating station %d: %w", id, err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), model.MsgUpdated)
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	if err := newClient().DeleteStation(cmd.Context(), id); err != nil {
		return fmt.Errorf("deleting station %d: %w", id, err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), model.MsgDeleted)
	return nil
}

func stationInputFromFlags(cmd *cobra.Command) *model.StationInput {
	name, _ := cmd.Flags().GetString("name")
	url, _ := cmd.Flags().GetString("url")
	genre, _ := cmd.Flags().GetString("genre")
	country, _ := cmd.Flags().GetString("country")

	return &model.StationInput{
		Name:      name,
		StreamURL: url,
		Genre:     model.StringPtr(genre),
		Country:   model.StringPtr(country),
	}
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid station id %q", arg)
	}
	return id, nil
}
