package tools

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sbrizzi/reagent/tool"
)

const (
	defaultGeocodingURL = "https://geocoding-api.open-meteo.com/v1/search"
	defaultForecastURL  = "https://api.open-meteo.com/v1/forecast"
	defaultArchiveURL   = "https://archive-api.open-meteo.com/v1/era5"

	// maxForecastDays is Open-Meteo's daily forecast horizon.
	maxForecastDays = 16
	// maxArchiveSpanDays caps one archive request, inclusive of endpoints.
	maxArchiveSpanDays = 31
)

var forecastSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"location":    map[string]any{"type": "string"},
		"target_date": map[string]any{"type": "string"},
		"units":       map[string]any{"type": "string", "enum": []string{"metric", "imperial"}, "default": "metric"},
		"days":        map[string]any{"type": "integer", "minimum": 1, "maximum": 16},
	},
	"required": []string{"location"},
}

var archiveSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"location":   map[string]any{"type": "string"},
		"start_date": map[string]any{"type": "string"},
		"end_date":   map[string]any{"type": "string"},
		"units":      map[string]any{"type": "string", "enum": []string{"metric", "imperial"}, "default": "metric"},
	},
	"required": []string{"location", "start_date", "end_date"},
}

// OpenMeteoOptions configure the weather tools.
type OpenMeteoOptions struct {
	// Endpoint overrides; used by tests.
	GeocodingURL string
	ForecastURL  string
	ArchiveURL   string
	// Timeout bounds each upstream request.
	Timeout time.Duration
	// RequestsPerSecond and Burst shape the client-side rate limit shared
	// by geocoding and data requests.
	RequestsPerSecond float64
	Burst             int
}

// openMeteo bundles the shared client state of the forecast and archive
// tools.
type openMeteo struct {
	client   *restClient
	resolver *DateResolver
	opts     OpenMeteoOptions
}

func newOpenMeteo(resolver *DateResolver, optFns ...func(o *OpenMeteoOptions)) *openMeteo {
	opts := OpenMeteoOptions{
		GeocodingURL:      defaultGeocodingURL,
		ForecastURL:       defaultForecastURL,
		ArchiveURL:        defaultArchiveURL,
		Timeout:           25 * time.Second,
		RequestsPerSecond: 2,
		Burst:             4,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &openMeteo{
		client:   newRESTClient(opts.Timeout, opts.RequestsPerSecond, opts.Burst),
		resolver: resolver,
		opts:     opts,
	}
}

// NewOpenMeteoForecast builds the openmeteo_forecast tool: a daily forecast
// for an exact target_date or a days window, capped at the provider's
// 16-day horizon.
func NewOpenMeteoForecast(resolver *DateResolver, optFns ...func(o *OpenMeteoOptions)) tool.Tool {
	om := newOpenMeteo(resolver, optFns...)
	return tool.NewFunctionTool(
		"openmeteo_forecast",
		"Weather forecast using Open-Meteo (exact target_date or days window, max 16 days).",
		forecastSchema,
		om.forecast,
	)
}

// NewOpenMeteoArchive builds the openmeteo_archive tool: historical daily
// weather from the ERA5 reanalysis, max 31 days per request.
func NewOpenMeteoArchive(resolver *DateResolver, optFns ...func(o *OpenMeteoOptions)) tool.Tool {
	om := newOpenMeteo(resolver, optFns...)
	return tool.NewFunctionTool(
		"openmeteo_archive",
		"Historical daily weather via Open-Meteo ERA5 (max 31 days).",
		archiveSchema,
		om.archive,
	)
}

type geoResult struct {
	Name      string
	Country   string
	Latitude  float64
	Longitude float64
}

// geocode resolves a location name to coordinates via the geocoding API.
func (om *openMeteo) geocode(ctx context.Context, location string) (*geoResult, error) {
	params := url.Values{}
	params.Set("name", location)
	params.Set("count", "1")
	params.Set("language", "en")
	params.Set("format", "json")

	var decoded struct {
		Results []struct {
			Name      string  `json:"name"`
			Country   string  `json:"country"`
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
		} `json:"results"`
	}
	status, body, err := om.client.getJSON(ctx, om.opts.GeocodingURL, params, &decoded)
	if err != nil {
		return nil, fmt.Errorf("Open-Meteo geocoding error: %w", err)
	}
	if status != 200 {
		return nil, fmt.Errorf("Open-Meteo geocoding error: HTTP %d - %s", status, body)
	}
	if len(decoded.Results) == 0 {
		return nil, fmt.Errorf("Location not found: %q", location)
	}

	r := decoded.Results[0]
	name := r.Name
	if name == "" {
		name = location
	}
	return &geoResult{Name: name, Country: r.Country, Latitude: r.Latitude, Longitude: r.Longitude}, nil
}

// unitParams maps the metric/imperial selector onto the provider's
// temperature, wind and precipitation unit parameters.
func unitParams(units string) (normalized, temp, wind, precip string) {
	u := strings.ToLower(strings.TrimSpace(units))
	if u != "imperial" {
		return "metric", "celsius", "kmh", "mm"
	}
	return "imperial", "fahrenheit", "mph", "inch"
}

type dailySeries struct {
	Time          []string  `json:"time"`
	TempMax       []float64 `json:"temperature_2m_max"`
	TempMin       []float64 `json:"temperature_2m_min"`
	PrecipSum     []float64 `json:"precipitation_sum"`
	PrecipProbMax []float64 `json:"precipitation_probability_max"`
	WindspeedMax  []float64 `json:"windspeed_10m_max"`
	Weathercode   []int     `json:"weathercode"`
	Sunrise       []string  `json:"sunrise"`
	Sunset        []string  `json:"sunset"`
}

func (d *dailySeries) record(i int, withSun bool) map[string]any {
	rec := map[string]any{
		"date":          d.Time[i],
		"temp_min":      floatAt(d.TempMin, i),
		"temp_max":      floatAt(d.TempMax, i),
		"precip_sum":    floatAt(d.PrecipSum, i),
		"windspeed_max": floatAt(d.WindspeedMax, i),
		"weathercode":   intAt(d.Weathercode, i),
	}
	if withSun {
		rec["precip_prob_max"] = floatAt(d.PrecipProbMax, i)
		rec["sunrise"] = stringAt(d.Sunrise, i)
		rec["sunset"] = stringAt(d.Sunset, i)
	}
	return rec
}

func (om *openMeteo) forecast(ctx context.Context, args map[string]any) (any, error) {
	location := stringArg(args, "location")
	if location == "" {
		return nil, fmt.Errorf("location is required")
	}

	days := 1
	if n, ok := intArg(args, "days"); ok {
		days = n
	}
	if days < 1 {
		days = 1
	}
	if days > maxForecastDays {
		return nil, fmt.Errorf(
			"Requested forecast horizon exceeds provider limits (max %d days). Please request %d days or fewer.",
			maxForecastDays, maxForecastDays)
	}

	units, tempUnit, windUnit, precipUnit := unitParams(stringArg(args, "units"))
	todayISO := om.resolver.Today()

	var targetISO string
	if td := strings.TrimSpace(stringArg(args, "target_date")); td != "" {
		iso, err := om.resolver.Resolve(ctx, td)
		if err != nil {
			return nil, err
		}
		within, maxISO, err := withinForecastWindow(todayISO, iso)
		if err != nil {
			return nil, err
		}
		if !within {
			return nil, fmt.Errorf(
				"Requested date %s is outside the forecast window (%s .. %s). "+
					"Pass a relative phrase like 'domani' or 'dopodomani', or choose a date within %d days.",
				iso, todayISO, maxISO, maxForecastDays)
		}
		targetISO = iso
	}

	city, err := om.geocode(ctx, location)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("latitude", formatCoord(city.Latitude))
	params.Set("longitude", formatCoord(city.Longitude))
	params.Set("timezone", "auto")
	params.Set("daily", "temperature_2m_max,temperature_2m_min,precipitation_sum,"+
		"precipitation_probability_max,windspeed_10m_max,weathercode,sunrise,sunset")
	params.Set("temperature_unit", tempUnit)
	params.Set("windspeed_unit", windUnit)
	params.Set("precipitation_unit", precipUnit)
	if targetISO != "" {
		params.Set("start_date", targetISO)
		params.Set("end_date", targetISO)
	} else {
		params.Set("forecast_days", strconv.Itoa(days))
	}

	var decoded struct {
		Daily dailySeries `json:"daily"`
	}
	status, body, err := om.client.getJSON(ctx, om.opts.ForecastURL, params, &decoded)
	if err != nil {
		return nil, fmt.Errorf("Open-Meteo forecast error: %w", err)
	}
	if status != 200 {
		return nil, fmt.Errorf("Open-Meteo forecast error: HTTP %d - %s", status, body)
	}

	daily := make([]any, 0, len(decoded.Daily.Time))
	for i := range decoded.Daily.Time {
		daily = append(daily, decoded.Daily.record(i, true))
	}
	if targetISO != "" && len(daily) != 1 {
		return nil, fmt.Errorf(
			"Provider did not return a single-day forecast for %s. It may be out of forecast range (max %d days).",
			targetISO, maxForecastDays)
	}

	return map[string]any{
		"location": map[string]any{
			"name": city.Name, "country": city.Country, "lat": city.Latitude, "lon": city.Longitude,
		},
		"units":         units,
		"daily":         daily,
		"provider_note": "Daily forecast limited to 16 days by Open-Meteo.",
	}, nil
}

func (om *openMeteo) archive(ctx context.Context, args map[string]any) (any, error) {
	location := stringArg(args, "location")
	if location == "" {
		return nil, fmt.Errorf("location is required")
	}
	startRaw := stringArg(args, "start_date")
	endRaw := stringArg(args, "end_date")
	if startRaw == "" || endRaw == "" {
		return nil, fmt.Errorf("start_date and end_date are required")
	}

	startISO, err := om.resolver.Resolve(ctx, startRaw)
	if err != nil {
		return nil, err
	}
	endISO, err := om.resolver.Resolve(ctx, endRaw)
	if err != nil {
		return nil, err
	}
	if startISO > endISO {
		return nil, fmt.Errorf("start_date %s must be <= end_date %s", startISO, endISO)
	}
	diff, err := daysBetween(startISO, endISO)
	if err != nil {
		return nil, err
	}
	if span := diff + 1; span > maxArchiveSpanDays {
		return nil, fmt.Errorf("Date range too large (%d days). Please request %d days or fewer.",
			span, maxArchiveSpanDays)
	}

	units, tempUnit, windUnit, precipUnit := unitParams(stringArg(args, "units"))

	city, err := om.geocode(ctx, location)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("latitude", formatCoord(city.Latitude))
	params.Set("longitude", formatCoord(city.Longitude))
	params.Set("start_date", startISO)
	params.Set("end_date", endISO)
	params.Set("timezone", "auto")
	params.Set("daily", "temperature_2m_max,temperature_2m_min,precipitation_sum,windspeed_10m_max,weathercode")
	params.Set("temperature_unit", tempUnit)
	params.Set("windspeed_unit", windUnit)
	params.Set("precipitation_unit", precipUnit)

	var decoded struct {
		Daily dailySeries `json:"daily"`
	}
	status, body, err := om.client.getJSON(ctx, om.opts.ArchiveURL, params, &decoded)
	if err != nil {
		return nil, fmt.Errorf("Open-Meteo ERA5 error: %w", err)
	}
	if status != 200 {
		return nil, fmt.Errorf("Open-Meteo ERA5 error: HTTP %d - %s", status, body)
	}
	if len(decoded.Daily.Time) == 0 {
		return nil, fmt.Errorf("Provider returned no daily records for the requested range.")
	}

	daily := make([]any, 0, len(decoded.Daily.Time))
	for i := range decoded.Daily.Time {
		daily = append(daily, decoded.Daily.record(i, false))
	}

	return map[string]any{
		"location": map[string]any{
			"name": city.Name, "country": city.Country, "lat": city.Latitude, "lon": city.Longitude,
		},
		"units":         units,
		"start_date":    startISO,
		"end_date":      endISO,
		"daily":         daily,
		"provider_note": "Historical daily data from ERA5 reanalysis.",
	}, nil
}

// withinForecastWindow checks today <= target <= today+16d and returns the
// window's upper bound for error reporting.
func withinForecastWindow(todayISO, targetISO string) (bool, string, error) {
	today, err := time.Parse("2006-01-02", todayISO)
	if err != nil {
		return false, "", err
	}
	target, err := time.Parse("2006-01-02", targetISO)
	if err != nil {
		return false, "", fmt.Errorf("invalid target date %q", targetISO)
	}
	max := today.AddDate(0, 0, maxForecastDays)
	return !target.Before(today) && !target.After(max), max.Format("2006-01-02"), nil
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func floatAt(s []float64, i int) any {
	if i < len(s) {
		return s[i]
	}
	return nil
}

func intAt(s []int, i int) any {
	if i < len(s) {
		return s[i]
	}
	return nil
}

func stringAt(s []string, i int) any {
	if i < len(s) {
		return s[i]
	}
	return nil
}
