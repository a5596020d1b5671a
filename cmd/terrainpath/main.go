// seehuhn.de/go/terrain - path graphs and border rasterisation for terrain
// Copyright (C) 2026  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Command terrainpath runs path scenes through the terrain walkers.
//
// Scenes are given either as the name of a built-in scene or as the path
// of a YAML scene file.  The render command writes the resulting mask or
// height map as a PNG image, pdf draws the graph of a scene, export
// writes the built-in scenes as YAML files and graph summarises or saves
// the graph of a scene.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"seehuhn.de/go/terrain"
	"seehuhn.de/go/terrain/scenes"
)

func main() {
	var verbose bool

	rootCmd := &cobra.Command{
		Use:           "terrainpath",
		Short:         "Write path graphs into terrain masks and height maps",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
			terrain.SetLogger(slog.New(h))
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log per-region and per-connection details")

	rootCmd.AddCommand(renderCmd())
	rootCmd.AddCommand(pdfCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(graphCmd())
	rootCmd.AddCommand(listCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "terrainpath:", err)
		os.Exit(1)
	}
}

// loadScene returns the built-in scene called name, or else the scene
// stored in the file name.
func loadScene(name string) (*scenes.Scene, error) {
	if s, ok := scenes.Lookup(name); ok {
		return s, nil
	}
	return scenes.Load(name)
}

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the built-in scenes",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			for _, s := range scenes.Builtin() {
				fmt.Fprintf(cmd.OutOrStdout(), "%-10s %-10s %s\n", s.Name, s.Variant, s.Description)
			}
		},
	}
}

func exportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export DIR",
		Short: "Write the built-in scenes as YAML files",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runExport(args[0])
		},
	}
}

func runExport(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for _, s := range scenes.Builtin() {
		data, err := s.Marshal()
		if err != nil {
			return fmt.Errorf("%s: %w", s.Name, err)
		}
		name := filepath.Join(dir, s.Name+".yaml")
		if err := os.WriteFile(name, data, 0o644); err != nil {
			return err
		}
		terrain.Logger().Info("scene exported", "scene", s.Name, "file", name)
	}
	return nil
}
