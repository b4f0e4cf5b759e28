package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/yookoala/realpath"
)

import (
	"dji2gpx/pkg/flsql"
	"dji2gpx/pkg/gpxgen"
	"dji2gpx/pkg/kmlgen"
	"dji2gpx/pkg/options"
	"dji2gpx/pkg/srt"
	"dji2gpx/pkg/types"
)

var GitCommit = "local"
var GitTag = "0.0.0"

func GetVersion() string {
	return fmt.Sprintf("%s %s commit:%s", filepath.Base(os.Args[0]), GitTag, GitCommit)
}

func main() {
	os.Exit(run())
}

func run() int {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}).
		With().Timestamp().Logger()

	files := options.ParseCLI(GetVersion)
	if len(files) == 0 {
		options.Usage()
		return 1
	}

	var db flsql.DBL
	use_db := options.Sql != ""
	if use_db {
		db = flsql.NewSQLliteDB(options.Sql)
		defer db.Close()
	}

	rc := 0
	for _, fn := range files {
		if types.EvinceFileType(fn) != types.IS_SRT {
			log.Error().Str("file", fn).Msg("unknown log format")
			rc = 1
			continue
		}

		l := srt.NewSRTReader(fn)
		seg, err := l.Reader()
		if err != nil {
			log.Error().Str("file", fn).Err(err).Msg("conversion failed")
			rc = 1
			continue
		}

		for _, s := range seg.L.Skipped {
			log.Warn().Str("file", fn).Int("block", s.Idx).Err(s.Err).Msg("skipping block")
		}
		if len(seg.L.Items) == 0 {
			fmt.Fprintf(os.Stderr, "*** skipping output for log with no valid geospatial data\n")
			rc = 1
			continue
		}

		for k, v := range seg.M.Summary() {
			fmt.Printf("%-8.8s : %s\n", k, v)
		}
		np := len(seg.L.Items)
		dur := seg.L.Items[np-1].Utc.Sub(seg.L.Items[0].Utc)
		for k, v := range seg.S.Summary(uint64(dur.Microseconds())) {
			fmt.Printf("%-8.8s : %s\n", k, v)
		}
		fmt.Printf("%-8.8s : %d parsed, %d skipped\n", "Points", np, len(seg.L.Skipped))

		name := filepath.Base(fn)
		if ext := filepath.Ext(name); len(ext) < len(name) {
			name = name[0 : len(name)-len(ext)]
		}

		outfn := gpxgen.GenGpxName(fn)
		err = gpxgen.GenerateGPX(seg.L, outfn, name, options.Desc, options.Extensions)
		if err != nil {
			log.Error().Str("file", fn).Err(err).Msg("write failed")
			rc = 1
			continue
		}
		show_output(outfn)

		if options.Kml || options.Kmz {
			outk := kmlgen.GenKmlName(fn)
			if err = kmlgen.GenerateKML(seg, outk); err != nil {
				log.Error().Str("file", fn).Err(err).Msg("write failed")
				rc = 1
			} else {
				show_output(outk)
			}
		}

		if use_db {
			db.Begin()
			db.Writemeta(seg.M, np, len(seg.L.Skipped))
			db.Writetrack(seg.L)
			db.Commit()
		}
		fmt.Println()
	}
	return rc
}

func show_output(outfn string) {
	rp, err := realpath.Realpath(outfn)
	if err != nil || rp == "" {
		rp = outfn
	}
	fmt.Printf("%-8.8s : %s\n", "Output", rp)
}
