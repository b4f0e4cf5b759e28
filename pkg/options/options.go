package options

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	Dms        bool   = false
	Extensions bool   = false
	Strict     bool   = false
	Kml        bool   = false
	Kmz        bool   = false
	Gradset    string
	Outdir     string
	Sql        string
	Desc       string
)

func Usage() {
	flag.Usage()
}

func ParseCLI(gv func() string) []string {
	app := filepath.Base(os.Args[0])

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s [options] file...\n", app)
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\n")
		fmt.Fprintln(os.Stderr, gv())
	}

	defs := os.Getenv("DJI2GPX_OPTS")
	_parts := strings.Split(defs, " ")
	var parts []string
	for _, p := range _parts {
		if p != "" {
			parts = append(parts, p)
		}
	}

	envflags := flag.NewFlagSet("$DJI2GPX_OPTS", flag.ExitOnError)
	exts := envflags.Bool("e", false, "extensions")
	dms := envflags.Bool("dms", false, "dms")
	grad := envflags.String("gradient", "", "gradient")
	strict := envflags.Bool("strict", false, "strict")
	envflags.Parse(parts)
	Extensions = *exts
	Dms = *dms
	Gradset = *grad
	Strict = *strict

	flag.BoolVar(&Extensions, "e", Extensions, "Include DJI metadata (exposure, air pressure etc.) as GPX extensions")
	flag.BoolVar(&Strict, "strict", Strict, "Abort on first undecodable block (vice skip and warn)")
	flag.BoolVar(&Kml, "kml", Kml, "Also generate KML")
	flag.BoolVar(&Kmz, "kmz", Kmz, "Also generate KMZ")
	flag.StringVar(&Gradset, "gradient", Gradset, "KML colour gradient [red,rdylgn,ylorrd]")
	flag.BoolVar(&Dms, "dms", Dms, "Show positions as DD:MM:SS.s (vice decimal degrees)")
	flag.StringVar(&Outdir, "outdir", "", "Output directory for generated files")
	flag.StringVar(&Sql, "sql", "", "Also write telemetry to SQLite file")
	flag.StringVar(&Desc, "desc", "", "Track description")

	flag.Parse()

	files := flag.Args()
	return files
}
