package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"golang.org/x/exp/maps"

	"cinema-kiosk/kiosk"
	"cinema-kiosk/model"
)

var errNoFilm = errors.New("no film selected")

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Book the best seats for a film without the UI",
	Long: `Run one booking from start to end: pick the film (prompted when --film is
not set), auto-select the best block of seats, pay and print the order.`,
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

		films := d.films(cmd.Context())
		film, _ := cmd.Flags().GetString("film")
		if film == "" {
			if film, err = promptSelectFilm(films); err != nil {
				return err
			}
		} else {
			films = d.withFilm(cmd.Context(), films, film)
		}

		k := d.newKiosk(films)
		order, err := simulate(cmd.Context(), k, film)
		if err != nil {
			return err
		}
		renderOrder(cmd.OutOrStdout(), order, k)
		return nil
	},
}

// simulate drives k through one booking of film and waits for the payment.
func simulate(ctx context.Context, k *kiosk.Kiosk, film string) (model.Order, error) {
	steps := []kiosk.Event{
		kiosk.NextEvent{},
		kiosk.ChooseFilmEvent{FilmID: film},
		kiosk.NextEvent{},
		kiosk.AutoSelectEvent{},
		kiosk.NextEvent{},
	}
	for _, ev := range steps {
		if _, err := k.HandleInput(ev); err != nil {
			return model.Order{}, err
		}
	}
	return k.Navigator().PayAndWait(ctx)
}

func renderOrder(out io.Writer, order model.Order, k *kiosk.Kiosk) {
	title := order.Film
	for _, film := range k.Films() {
		if film.Id == order.Film {
			title = film.Title
		}
	}
	price := k.Grid().Hall().Price

	rowConfigAutoMerge := table.RowConfig{AutoMerge: true}
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.AppendHeader(table.Row{"Order", "Film", "Seat", "Price"}, rowConfigAutoMerge)
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, AutoMerge: true},
		{Number: 2, AutoMerge: true, WidthMax: 24},
	})
	t.Style().Options.SeparateRows = true

	var items []table.Row
	for _, label := range order.SeatLabels() {
		items = append(items, table.Row{shortOrderID(order.ID), title, label, fmt.Sprintf("R$ %.2f", price)})
	}
	t.AppendRows(items, rowConfigAutoMerge)
	t.AppendFooter(table.Row{"", "", "Total", fmt.Sprintf("R$ %.2f", order.Total)})
	t.Render()
}

func shortOrderID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func promptSelectFilm(films []model.Film) (string, error) {
	filmIdByTitle := make(map[string]string, len(films))
	for _, film := range films {
		filmIdByTitle[film.Title] = film.Id
	}
	titles := maps.Keys(filmIdByTitle)
	sort.Strings(titles)

	searcher := func(input string, index int) bool {
		return strings.Contains(strings.ToLower(titles[index]), strings.ToLower(input))
	}

	selectFilm := promptui.Select{
		Label:    "Select Film",
		Items:    titles,
		Size:     10,
		Searcher: searcher,
	}
	_, title, err := selectFilm.Run()
	if err != nil {
		return "", fmt.Errorf("%w: %w", errNoFilm, err)
	}
	id, ok := filmIdByTitle[title]
	if !ok {
		return "", errNoFilm
	}
	return id, nil
}

func init() {
	simulateCmd.Flags().String("film", "", "film id to book (prompted when empty)")
}
