package gpxgen

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"

	"dji2gpx/pkg/types"
)

const (
	GPX_VERSION        = "1.1"
	GPX_NS             = "http://www.topografix.com/GPX/1/1"
	DJI_NS             = "http://www.dji.com/gpx/extensions/1"
	GPX_UTC_DATETIME   = "2006-01-02T15:04:05Z"
	GPX_CREATOR        = "dji2gpx"
	MAX_DESCRIPTION    = 50
)

type Extensions struct {
	Items []types.ExtRec
}

func (e *Extensions) MarshalXML(enc *xml.Encoder, start xml.StartElement) error {
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	for _, it := range e.Items {
		el := xml.StartElement{Name: xml.Name{Local: "dji:" + it.Name}}
		if err := enc.EncodeElement(it.Value, el); err != nil {
			return err
		}
	}
	return enc.EncodeToken(start.End())
}

// Trkpt carries the raw coordinate lexemes so the emitted values match
// the source text digit for digit.
type Trkpt struct {
	Lat  string      `xml:"lat,attr"`
	Lon  string      `xml:"lon,attr"`
	Ele  string      `xml:"ele,omitempty"`
	Time string      `xml:"time"`
	Ext  *Extensions `xml:"extensions"`
}

type Trkseg struct {
	Points []Trkpt `xml:"trkpt"`
}

type Trk struct {
	Name   string `xml:"name,omitempty"`
	Desc   string `xml:"desc,omitempty"`
	Trkseg Trkseg `xml:"trkseg"`
}

type Gpx struct {
	XMLName  xml.Name `xml:"gpx"`
	Version  string   `xml:"version,attr"`
	Creator  string   `xml:"creator,attr"`
	Xmlns    string   `xml:"xmlns,attr"`
	DjiXmlns string   `xml:"xmlns:dji,attr,omitempty"`
	Trk      Trk      `xml:"trk"`
}

// Generate builds the GPX document. The dji namespace is declared only
// when extensions were requested and at least one record carries any.
func Generate(rec types.TrackRec, name string, desc string, withext bool) *Gpx {
	g := &Gpx{Version: GPX_VERSION, Creator: GPX_CREATOR, Xmlns: GPX_NS}
	g.Trk.Name = ascii_name(name)
	g.Trk.Desc = truncate_desc(desc)

	for _, b := range rec.Items {
		pt := Trkpt{
			Lat:  b.Slat,
			Lon:  b.Slon,
			Time: b.Utc.UTC().Format(GPX_UTC_DATETIME),
		}
		if b.HasAlt {
			pt.Ele = b.Salt
		}
		if withext && len(b.Ext) > 0 {
			pt.Ext = &Extensions{Items: b.Ext}
			g.DjiXmlns = DJI_NS
		}
		g.Trk.Trkseg.Points = append(g.Trk.Trkseg.Points, pt)
	}
	return g
}

func (g *Gpx) Write(w io.Writer) error {
	xs, err := xml.MarshalIndent(g, "", " ")
	if err != nil {
		return err
	}
	if _, err = fmt.Fprint(w, xml.Header); err != nil {
		return err
	}
	if _, err = w.Write(xs); err != nil {
		return err
	}
	_, err = fmt.Fprintln(w)
	return err
}

func GenerateGPX(rec types.TrackRec, outfn string, name string, desc string, withext bool) error {
	g := Generate(rec, name, desc, withext)
	fh, err := os.Create(outfn)
	if err != nil {
		return err
	}
	defer fh.Close()
	return g.Write(fh)
}

func ascii_name(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if r < 128 {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

func truncate_desc(s string) string {
	r := []rune(s)
	if len(r) > MAX_DESCRIPTION {
		return string(r[:MAX_DESCRIPTION-1]) + "…"
	}
	return s
}
