// Package main is the entry point for the goamp terminal music player.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gopxl/beep/v2"
	"github.com/spf13/cobra"

	"goamp/engine"
	"goamp/player"
	"goamp/playlist"
	"goamp/spectrum"
	"goamp/ui"
)

var flags struct {
	shuffle  bool
	repeat   bool
	notify   bool
	volume   float64
	playlist string
	logFile  string
}

var rootCmd = &cobra.Command{
	Use:   "goamp [files, folders or playlists...]",
	Short: "Terminal audio player with live spectrum analysis",
	Args:  cobra.ArbitraryArgs,
	RunE:  run,
}

func init() {
	rootCmd.Flags().BoolVar(&flags.shuffle, "shuffle", false, "start with shuffle enabled")
	rootCmd.Flags().BoolVar(&flags.repeat, "repeat", false, "start with repeat enabled")
	rootCmd.Flags().BoolVar(&flags.notify, "notify", false, "desktop notification on track change")
	rootCmd.Flags().Float64Var(&flags.volume, "volume", 1.0, "initial volume (0..1)")
	rootCmd.Flags().StringVar(&flags.playlist, "playlist", "", "M3U playlist to load")
	rootCmd.Flags().StringVar(&flags.logFile, "log", "", "write logs to this file")
}

func run(cmd *cobra.Command, args []string) error {
	// The TUI owns the terminal, so logs go to a file or nowhere.
	logOut := io.Discard
	if flags.logFile != "" {
		f, err := os.OpenFile(flags.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		logOut = f
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(logOut, nil)))

	// Initialize the audio engine at CD-quality sample rate
	sr := beep.SampleRate(44100)
	analyzer := spectrum.New(float64(sr))
	p := player.New(sr, analyzer)
	if err := p.Open(); err != nil {
		return err
	}

	eng := engine.New(p, playlist.New(), analyzer, engine.Options{Notify: flags.notify})
	eng.Start()
	defer eng.Close()

	eng.SetVolume(flags.volume)
	if flags.shuffle {
		eng.ToggleShuffle()
	}
	if flags.repeat {
		eng.ToggleRepeat()
	}
	if flags.playlist != "" {
		eng.ImportPlaylist(flags.playlist, true)
	}

	// Expand shell globs that may not have been expanded by the shell
	var paths []string
	for _, arg := range args {
		matches, err := filepath.Glob(arg)
		if err != nil || len(matches) == 0 {
			paths = append(paths, arg)
		} else {
			paths = append(paths, matches...)
		}
	}

	var files []string
	for _, path := range paths {
		fi, err := os.Stat(path)
		switch {
		case err != nil:
			slog.Warn("skipping argument", "path", path, "error", err)
		case fi.IsDir():
			eng.AddFolder(path)
		case isPlaylistFile(path):
			eng.ImportPlaylist(path, false)
		default:
			files = append(files, path)
		}
	}
	eng.AddFiles(files)

	// Launch the TUI
	prog := tea.NewProgram(ui.NewModel(eng), tea.WithAltScreen())
	if _, err := prog.Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}

func isPlaylistFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".m3u", ".m3u8":
		return true
	}
	return false
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
