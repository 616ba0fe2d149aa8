package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/vzahanych/nimbus/internal/dispatcher"
	"github.com/vzahanych/nimbus/internal/location"
)

// renderResult prints a lookup the way the weather card shows it.
func renderResult(w io.Writer, res dispatcher.Result) {
	if !res.OK() {
		fmt.Fprintf(w, "Error: %s\n", res.Failure.Reason)
		return
	}

	loc, wx := res.Location, res.Weather
	fmt.Fprintf(w, "Weather today in %s, %s, %s\n", text(loc.CityName), loc.StateName, text(loc.CountryName))
	fmt.Fprintf(w, "  %s°\n", number(wx.TemperatureF))
	fmt.Fprintf(w, "  %s\n", description(wx.Description))
	fmt.Fprintf(w, "  Feels like: %s°\n", number(wx.FeelsLikeF))
	fmt.Fprintf(w, "  Humidity: %s%%\n", number(wx.HumidityPct))
	fmt.Fprintf(w, "  Wind speed: %s mph\n", number(wx.WindSpeedMph))
	fmt.Fprintf(w, "  Chance of precipitation: %s\n", wx.PrecipitationChancePct)
}

func text(s *string) string {
	if s == nil {
		return location.NotAvailable
	}
	return *s
}

func number(n *int) string {
	if n == nil {
		return location.NotAvailable
	}
	return strconv.Itoa(*n)
}

func description(s *string) string {
	if s == nil {
		return location.NotAvailable
	}
	return capitalize(*s)
}

// capitalize upper-cases the first letter and lower-cases the rest.
func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}
