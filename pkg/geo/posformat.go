package geo

import (
	"fmt"
	"math"
)

// Positions print as decimal degrees by default; dms selects the
// DD:MM:SS.s form used in KML balloons.

func LatFormat(lat float64, dms bool) string {
	if !dms {
		return fmt.Sprintf("%.6f", lat)
	}
	d, m, s := dms_split(lat)
	return fmt.Sprintf("%02d:%02d:%04.1f%c", d, m, s, hemi(lat, "NS"))
}

func LonFormat(lon float64, dms bool) string {
	if !dms {
		return fmt.Sprintf("%.6f", lon)
	}
	d, m, s := dms_split(lon)
	return fmt.Sprintf("%03d:%02d:%04.1f%c", d, m, s, hemi(lon, "EW"))
}

func PositionFormat(lat float64, lon float64, dms bool) string {
	return LatFormat(lat, dms) + " " + LonFormat(lon, dms)
}

func hemi(coord float64, ind string) byte {
	if coord < 0.0 {
		return ind[1]
	}
	return ind[0]
}

// dms_split rounds seconds to the printed tenth first, so 59.96s
// carries into the minutes rather than rendering as 60.0.
func dms_split(coord float64) (int, int, float64) {
	ds := math.Abs(coord)
	d := int(ds)
	rem := (ds - float64(d)) * 3600.0
	m := int(rem / 60)
	s := rem - float64(m*60)
	if math.Round(s*10) >= 600 {
		m++
		s = 0
	}
	if m == 60 {
		m = 0
		d++
	}
	return d, m, s
}
