package kmlgen

import (
	"path/filepath"

	"dji2gpx/pkg/options"
)

func GenKmlName(inp string) string {
	outfn := filepath.Base(inp)
	ext := filepath.Ext(outfn)
	if len(ext) < len(outfn) {
		outfn = outfn[0 : len(outfn)-len(ext)]
	}
	if options.Kmz {
		outfn = outfn + ".kmz"
	} else {
		outfn = outfn + ".kml"
	}
	if options.Outdir != "" {
		return filepath.Join(options.Outdir, outfn)
	}
	return filepath.Join(filepath.Dir(inp), outfn)
}
