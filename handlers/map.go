package handlers

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"net/http"
	"strconv"

	"github.com/Yash-SD99/Echoing-Hearts/pkg/geo"
	"github.com/Yash-SD99/Echoing-Hearts/pkg/i18n"
)

// Fallback center when the page is opened without ?lat&lng.
var defaultMapCenter = geo.Point{Lat: 37.78825, Lng: -122.4324}

type mapPage struct {
	Lat             float64
	Lng             float64
	HasUserLocation bool
	Radius          float64
	Dark            bool
	YourLocation    string
	SignInHint      string
	WhispersLabel   string
}

// MapHandler serves the Leaflet page that plots nearby whispers. The page
// itself is public; it calls /api/whispers/nearby with the user's token.
type MapHandler struct {
	tmpl    *template.Template
	catalog *i18n.Catalog
	radius  float64
}

func NewMapHandler(templates fs.FS, catalog *i18n.Catalog, radius float64) (*MapHandler, error) {
	tmpl, err := template.ParseFS(templates, "templates/map.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse map template: %w", err)
	}
	return &MapHandler{tmpl: tmpl, catalog: catalog, radius: radius}, nil
}

// Page godoc
// GET /map?lat&lng&mode=dark&lang
func (h *MapHandler) Page(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page := mapPage{
		Lat:    defaultMapCenter.Lat,
		Lng:    defaultMapCenter.Lng,
		Radius: h.radius,
		Dark:   q.Get("mode") == "dark",
	}

	lat, latErr := strconv.ParseFloat(q.Get("lat"), 64)
	lng, lngErr := strconv.ParseFloat(q.Get("lng"), 64)
	if latErr == nil && lngErr == nil {
		p := geo.Point{Lat: lat, Lng: lng}
		if p.Validate() == nil {
			page.Lat, page.Lng = p.Lat, p.Lng
			page.HasUserLocation = true
		}
	}

	lang := q.Get("lang")
	if lang == "" {
		lang = i18n.DetectLanguage(r.Header.Get("Accept-Language"))
	}
	loc := h.catalog.Localizer(lang)
	page.YourLocation = loc.T("map.yourLocation")
	page.SignInHint = loc.T("map.signInHint")
	page.WhispersLabel = loc.T("map.whispers")

	var buf bytes.Buffer
	if err := h.tmpl.Execute(&buf, page); err != nil {
		log.Printf("[map] render error: %v", err)
		http.Error(w, "failed to render map", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}
