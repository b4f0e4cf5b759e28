package gpxgen

import (
	"path/filepath"

	"dji2gpx/pkg/options"
)

func GenGpxName(inp string) string {
	outfn := filepath.Base(inp)
	ext := filepath.Ext(outfn)
	if len(ext) < len(outfn) {
		outfn = outfn[0 : len(outfn)-len(ext)]
	}
	outfn = outfn + ".gpx"
	if options.Outdir != "" {
		return filepath.Join(options.Outdir, outfn)
	}
	return filepath.Join(filepath.Dir(inp), outfn)
}
