package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"cinema-kiosk/kiosk"
	"cinema-kiosk/render"
)

var chartCmd = &cobra.Command{
	Use:   "chart",
	Short: "Draw the seat chart",
	Long: `Draw the seat chart of the configured hall to the terminal, or to a PNG
file with --out. With --film the sold seats stored for that film are shown.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		d, err := newDeps(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer d.Close()

		out, _ := cmd.Flags().GetString("out")
		film, _ := cmd.Flags().GetString("film")
		cols, _ := cmd.Flags().GetInt("cols")
		lines, _ := cmd.Flags().GetInt("lines")
		numbers, _ := cmd.Flags().GetBool("numbers")
		plain, _ := cmd.Flags().GetBool("plain")

		k := d.newKiosk(d.films(cmd.Context()))
		if film != "" {
			if err := chooseFilm(k, film); err != nil {
				return err
			}
		}
		if !numbers {
			if _, err := k.HandleInput(kiosk.ToggleNumbersEvent{}); err != nil {
				return err
			}
		}

		if out != "" {
			surface := render.NewRasterSurface(int(cfg.Width), int(cfg.Height))
			k.Render(surface)
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			if err := surface.WritePNG(f); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Chart written to %s (%dx%d)\n", out, int(cfg.Width), int(cfg.Height))
			return nil
		}

		w, h := render.CanvasSize(cols, lines)
		if _, err := k.HandleInput(kiosk.ResizeEvent{Width: w, Height: h}); err != nil {
			return err
		}
		surface := render.NewTermSurface(cols, lines)
		k.Render(surface)
		if plain {
			fmt.Fprintln(cmd.OutOrStdout(), surface.Plain())
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), surface.String())
		}
		return nil
	},
}

// chooseFilm walks the kiosk to the film step and picks id, which restores
// the seats sold for it.
func chooseFilm(k *kiosk.Kiosk, id string) error {
	for _, ev := range []kiosk.Event{kiosk.NextEvent{}, kiosk.ChooseFilmEvent{FilmID: id}} {
		if _, err := k.HandleInput(ev); err != nil {
			return err
		}
	}
	return nil
}

func init() {
	chartCmd.Flags().String("out", "", "write a PNG of --width x --height to this file")
	chartCmd.Flags().String("film", "", "show the seats sold for this film id")
	chartCmd.Flags().Int("cols", 80, "terminal columns")
	chartCmd.Flags().Int("lines", 24, "terminal lines")
	chartCmd.Flags().Bool("numbers", true, "draw seat numbers")
	chartCmd.Flags().Bool("plain", false, "print characters without colours")
}
