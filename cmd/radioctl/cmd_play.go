package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vyrodovalexey/radiodir/internal/player"
)

const playHelp = `Comandos: <número> elegir radio, p pausa/reproducir, n siguiente, b anterior, l listar, q salir`

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Browse the stations and play them",
	Long: `Fetch the station list once and play stations through an external player
(mpv by default). Commands are read from standard input.`,
	Args: cobra.NoArgs,
	RunE: runPlay,
}

func init() {
	playCmd.Flags().String("player", "", "external player command (default mpv)")
	playCmd.Flags().StringSlice("player-args", nil, "arguments passed to the player before the stream URL")
	rootCmd.AddCommand(playCmd)
}

func runPlay(cmd *cobra.Command, _ []string) error {
	logger, err := newLogger()
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	command, _ := cmd.Flags().GetString("player")
	args, _ := cmd.Flags().GetStringSlice("player-args")

	audio := player.NewExecAudio(logger, command, args...)
	defer func() {
		_ = audio.Stop()
	}()

	out := cmd.OutOrStdout()
	surface := player.NewSurface(audio, player.NewTextDisplay(out), player.NewHTTPProber(nil), logger)

	ctx := cmd.Context()
	stations, err := newClient().ListStations(ctx)
	if err != nil {
		logger.Error("loading stations", zap.String("server", serverURL), zap.Error(err))
	}
	surface.SetStations(stations)

	return runPlayLoop(ctx, surface, cmd.InOrStdin(), out)
}

// runPlayLoop drives the surface from line commands until q, end of input or
// cancellation.
func runPlayLoop(ctx context.Context, surface *player.Surface, in io.Reader, out io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	fmt.Fprint(out, player.RenderList(surface.Stations()))
	fmt.Fprintln(out, playHelp)

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if quit := handleCommand(ctx, surface, strings.TrimSpace(line), out); quit {
				return nil
			}
		}
	}
}

// handleCommand applies one command and reports whether the loop should end.
func handleCommand(ctx context.Context, surface *player.Surface, command string, out io.Writer) bool {
	switch command {
	case "":
	case "q":
		return true
	case "p":
		surface.Toggle(ctx)
	case "n":
		surface.Next(ctx)
	case "b":
		surface.Previous(ctx)
	case "l":
		fmt.Fprint(out, player.RenderList(surface.Stations()))
	case "h", "?":
		fmt.Fprintln(out, playHelp)
	default:
		n, err := strconv.Atoi(command)
		if err != nil {
			fmt.Fprintln(out, playHelp)
			return false
		}
		if err := surface.SelectIndex(ctx, n-1); err != nil {
			fmt.Fprintf(out, "No existe la radio %d.\n", n)
		}
	}
	return false
}
