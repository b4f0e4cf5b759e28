package kmlgen

import (
	"fmt"
	"image/color"
	"os"
	"strings"

	"github.com/bmizerany/perks/quantile"
	"github.com/mazznoer/colorgrad"
	kml "github.com/twpayne/go-kml"
	"github.com/twpayne/go-kml/icon"
	kmz "github.com/twpayne/go-kmz"

	"dji2gpx/pkg/geo"
	"dji2gpx/pkg/options"
	"dji2gpx/pkg/types"
)

const (
	GRAD_STEPS = 20
	KML_TIME   = "2006-01-02 15:04:05"
)

func gradient() colorgrad.Gradient {
	switch options.Gradset {
	case "rdylgn":
		return colorgrad.RdYlGn()
	case "ylorrd":
		return colorgrad.YlOrRd()
	default:
		return colorgrad.Reds()
	}
}

func balloon_style() *kml.CompoundElement {
	return kml.BalloonStyle(kml.BgColor(color.RGBA{R: 0xde, G: 0xde, B: 0xde, A: 0x40}),
		kml.Text(`$[description]`))
}

func generate_shared_styles() []kml.Element {
	grad := gradient()
	icons := []kml.Element{}
	for j := 0; j <= GRAD_STEPS; j++ {
		c := grad.At(float64(j) / GRAD_STEPS)
		r, g, b, a := c.RGBA()
		sname := fmt.Sprintf("styleGrad%03d", j*5)
		el := kml.SharedStyle(
			sname,
			kml.IconStyle(
				kml.Scale(0.5),
				kml.Color(color.RGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: uint8(a >> 8)}),
				kml.Icon(
					kml.Href(icon.PaletteHref(2, 18)),
				),
			),
		).Add(balloon_style())
		icons = append(icons, el)
	}
	return icons
}

// alt_bounds returns the 5% / 95% altitude quantiles used to normalise
// the gradient, so a few outlier points don't flatten the colouring.
func alt_bounds(rec types.TrackRec) (float64, float64, bool) {
	q := quantile.NewTargeted(0.05, 0.95)
	n := 0
	for _, b := range rec.Items {
		if b.HasAlt {
			q.Insert(b.Alt)
			n++
		}
	}
	if n == 0 {
		return 0, 0, false
	}
	return q.Query(0.05), q.Query(0.95), true
}

func style_url(alt, qval0, qval1 float64, graded bool) string {
	if !graded || qval1 <= qval0 {
		return "#styleGrad000"
	}
	qv := 100 * (alt - qval0) / (qval1 - qval0)
	if qv < 0 {
		qv = 0
	} else if qv > 100 {
		qv = 100
	}
	return fmt.Sprintf("#styleGrad%03d", 5*(int(qv)/5))
}

func get_points(rec types.TrackRec) []kml.Element {
	qval0, qval1, graded := alt_bounds(rec)

	var pt []kml.Element
	tpts := len(rec.Items)
	for np, b := range rec.Items {
		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("<h3>Track Point %d of %d</h3>", np+1, tpts))
		sb.WriteString(`<table border="1">`)
		sb.WriteString(fmt.Sprintf("<tr><td><b>%s</b></td><td>%s</td></tr>", "Time", b.Utc.Format(KML_TIME)))
		sb.WriteString(fmt.Sprintf("<tr><td><b>%s</b></td><td>%s</td></tr>", "Position", geo.PositionFormat(b.Lat, b.Lon, options.Dms)))
		if b.HasAlt {
			sb.WriteString(fmt.Sprintf("<tr><td><b>%s</b></td><td>%s m</td></tr>", "Elevation", b.Salt))
		}
		sb.WriteString(fmt.Sprintf("<tr><td><b>%s</b></td><td>%.0f m</td></tr>", "Range", b.Vrange))
		sb.WriteString(fmt.Sprintf("<tr><td><b>%s</b></td><td>%.0f m</td></tr>", "Cumulative Distance", b.Tdist))
		for _, e := range b.Ext {
			sb.WriteString(fmt.Sprintf("<tr><td><b>%s</b></td><td>%s</td></tr>", e.Name, e.Value))
		}
		sb.WriteString("</table>")

		po := kml.Point(
			kml.AltitudeMode(kml.AltitudeModeRelativeToGround),
			kml.Coordinates(kml.Coordinate{Lon: b.Lon, Lat: b.Lat, Alt: b.Alt}),
		)

		k := kml.Placemark(
			kml.Visibility(true),
			kml.Description(sb.String()),
			kml.TimeStamp(kml.When(b.Utc)),
			kml.StyleURL(style_url(b.Alt, qval0, qval1, graded && b.HasAlt)),
		)
		k.Add(po)
		pt = append(pt, k)
	}
	return pt
}

func get_home(rec types.TrackRec) []kml.Element {
	var hp []kml.Element
	b := rec.Items[0]
	if !b.HasHome {
		return hp
	}
	k := kml.Placemark(
		kml.Name("Home"),
		kml.Description(fmt.Sprintf("Location %s<br/>",
			geo.PositionFormat(b.Hlat, b.Hlon, options.Dms))),
		kml.Point(
			kml.Coordinates(kml.Coordinate{Lon: b.Hlon, Lat: b.Hlat}),
		),
		kml.Style(
			kml.IconStyle(
				kml.Icon(
					kml.Href(icon.PaletteHref(4, 29)),
				),
			),
		),
	)
	hp = append(hp, k)
	return hp
}

func add_ground_track(rec types.TrackRec) kml.Element {
	f := kml.Folder(kml.Name("Ground Track")).Add(kml.Visibility(true))
	var points []kml.Coordinate

	for _, b := range rec.Items {
		points = append(points, kml.Coordinate{Lon: b.Lon, Lat: b.Lat})
	}

	tk := kml.Placemark(
		kml.Style(
			kml.LineStyle(
				kml.Width(4.0),
				kml.Color(color.RGBA{R: 0xd0, G: 0xd0, B: 0xd0, A: 0x66}),
			),
		),
		kml.LineString(kml.Coordinates(points...)),
	)
	f.Add(tk)
	return f
}

func GenerateKML(seg types.LogSegment, outfn string) error {
	rec := seg.L
	ts0 := rec.Items[0].Utc
	ts1 := rec.Items[len(rec.Items)-1].Utc

	f0 := kml.Folder(kml.Name("Track points")).Add(kml.Visibility(true)).
		Add(generate_shared_styles()...).
		Add(get_points(rec)...)

	d := kml.Folder(kml.Name(seg.M.LogName())).Add(kml.Open(true))
	d.Add(add_ground_track(rec))

	e := kml.ExtendedData(kml.Data(kml.Name("Log"), kml.Value(seg.M.LogName())))
	for k, v := range seg.M.Summary() {
		e.Add(kml.Data(kml.Name(k), kml.Value(v)))
	}
	for k, v := range seg.S.Summary(uint64(ts1.Sub(ts0).Microseconds())) {
		e.Add(kml.Data(kml.Name(k), kml.Value(v)))
	}
	d.Add(e)

	d.Add(kml.TimeSpan(kml.Begin(ts0), kml.End(ts1)))
	d.Add(get_home(rec)...)
	d.Add(f0)

	var err error
	if strings.HasSuffix(outfn, ".kmz") {
		z := kmz.NewKMZ(d)
		var w *os.File
		w, err = os.Create(outfn)
		if err == nil {
			defer w.Close()
			err = z.WriteIndent(w, "", "  ")
		}
	} else {
		k := kml.KML(d)
		var w *os.File
		w, err = os.Create(outfn)
		if err == nil {
			defer w.Close()
			err = k.WriteIndent(w, "", "  ")
		}
	}
	return err
}
