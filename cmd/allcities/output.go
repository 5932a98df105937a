package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/andreiashu/allcities"
	"github.com/cockroachdb/errors"
	json "github.com/goccy/go-json"
	"github.com/pterm/pterm"
)

const geohashPrecision = 7

// printCities renders up to limit cities as a table or a JSON array.
func printCities(w io.Writer, cities []allcities.City, limit int, asJSON bool) error {
	total := len(cities)
	if limit > 0 && total > limit {
		cities = cities[:limit]
	}

	if asJSON {
		dicts := make([]allcities.Dict, len(cities))
		for i, c := range cities {
			dicts[i] = c.Dict()
		}
		return writeJSON(w, dicts)
	}

	data := pterm.TableData{{"ID", "Name", "Country", "Admin1", "Population", "Lat", "Lng", "Timezone", "Geohash"}}
	for _, c := range cities {
		data = append(data, []string{
			strconv.FormatInt(c.GeonameID, 10),
			c.Name,
			c.CountryCode,
			c.Admin1Code,
			strconv.FormatInt(c.Population, 10),
			strconv.FormatFloat(c.Latitude, 'f', 4, 64),
			strconv.FormatFloat(c.Longitude, 'f', 4, 64),
			c.Timezone,
			c.Geohash(geohashPrecision),
		})
	}
	if err := renderTable(w, pterm.DefaultTable.WithHasHeader().WithData(data)); err != nil {
		return err
	}
	if len(cities) < total {
		fmt.Fprintf(w, "%d of %d cities shown\n", len(cities), total)
	} else {
		fmt.Fprintf(w, "%d cities\n", total)
	}
	return nil
}

// printCity renders every non-empty field of one city.
func printCity(w io.Writer, c allcities.City, asJSON bool) error {
	d := c.Dict()
	if asJSON {
		return writeJSON(w, d)
	}
	data := make(pterm.TableData, 0, len(d)+1)
	for _, e := range d {
		data = append(data, []string{e.Field, fmt.Sprint(e.Value)})
	}
	data = append(data, []string{"geohash", c.Geohash(geohashPrecision)})
	return renderTable(w, pterm.DefaultTable.WithData(data))
}

func renderTable(w io.Writer, table *pterm.TablePrinter) error {
	s, err := table.Srender()
	if err != nil {
		return errors.Wrap(err, "rendering table")
	}
	_, err = fmt.Fprintln(w, s)
	return err
}

func writeJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(err, "formatting JSON")
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

// printError prints err with any hints attached to it.
func printError(err error) {
	pterm.Error.Println(err.Error())
	for _, hint := range errors.GetAllHints(err) {
		pterm.Info.Println(hint)
	}
}
