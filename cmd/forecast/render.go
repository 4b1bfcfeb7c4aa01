package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"weather-viewer/models"
)

func unitSymbol(units string) string {
	switch units {
	case "imperial":
		return "°F"
	case "standard":
		return "K"
	}
	return "°C"
}

func windUnit(units string) string {
	if units == "imperial" {
		return "mph"
	}
	return "m/s"
}

// render writes the view model as plain text
func render(w io.Writer, view models.ViewModel, units string) error {
	unit := unitSymbol(units)
	if view.Location != "" {
		fmt.Fprintf(w, "%s\n\n", view.Location)
	}
	if !view.HasData() {
		_, err := fmt.Fprintln(w, "No forecast data yet")
		return err
	}

	cur := view.Current
	fmt.Fprintf(w, "%s  %d%s\n", cur.Description, cur.Temp, unit)
	fmt.Fprintf(w, "%s\n", cur.Timestamp)
	fmt.Fprintf(w, "Humidity %d%%  Wind %v %s  Pressure %d hPa\n\n",
		cur.Humidity, cur.WindSpeed, windUnit(units), cur.Pressure)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Today")
	for _, h := range view.Hourly {
		fmt.Fprintf(tw, "%s\t%d%s\n", h.Time, h.Temp, unit)
	}
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "Next 7")
	for _, d := range view.Daily {
		fmt.Fprintf(tw, "%s\t%s\t%d%s\n", d.Date, d.Description, d.Temp, unit)
	}
	return tw.Flush()
}
