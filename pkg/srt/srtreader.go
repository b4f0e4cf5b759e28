package srt

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"dji2gpx/pkg/geo"
	"dji2gpx/pkg/options"
	"dji2gpx/pkg/types"
)

var dt_layouts = []string{
	"2006.01.02 15:04:05",
	"2006-01-02 15:04:05,000",
	"2006-01-02 15:04:05.000",
	"2006-01-02 15:04:05",
	"2006/01/02 15:04:05",
}

var (
	range_re = regexp.MustCompile(`^\s*(\d{2}:\d{2}:\d{2}[,.]\d{1,3})\s*-->\s*(\d{2}:\d{2}:\d{2}[,.]\d{1,3})`)
	dt_re    = regexp.MustCompile(`\d{4}[-./]\d{2}[-./]\d{2}\s+\d{2}:\d{2}:\d{2}(?:[,.]\d{1,3})?`)
	gps_re   = regexp.MustCompile(`(?i)\bGPS\s*\(([^)]*)\)`)
	home_re  = regexp.MustCompile(`(?i)\bHOME\s*\(([^)]*)\)`)
	ext_re   = regexp.MustCompile(`([A-Za-z]\w*)\s*[:=]\s?([^\s\])}]+)`)
	tag_re   = regexp.MustCompile(`[^a-z0-9]+`)
)

type SRTLOG struct {
	name string
}

func NewSRTReader(fn string) SRTLOG {
	var l SRTLOG
	l.name = fn
	return l
}

// Reader loads and decodes the whole log. Skip-and-warn is the default
// policy; options.Strict promotes the first RecordError to a failure.
func (o *SRTLOG) Reader() (types.LogSegment, error) {
	var seg types.LogSegment

	dat, err := os.ReadFile(o.name)
	if err != nil {
		return seg, err
	}
	for i := 0; i < len(dat); {
		r, sz := utf8.DecodeRune(dat[i:])
		if r == utf8.RuneError && sz == 1 {
			return seg, &types.EncodingError{Offset: i}
		}
		i += sz
	}

	rec, err := ParseText(string(dat), options.Extensions)
	if err != nil {
		return seg, err
	}
	if options.Strict && len(rec.Skipped) > 0 {
		return seg, rec.Skipped[0].Err
	}

	seg.L = rec
	seg.M = types.FlightMeta{
		Logname: filepath.Base(o.name),
		Size:    int64(len(dat)),
		Blocks:  len(rec.Items) + len(rec.Skipped),
		Flags:   types.Has_Size,
	}
	if len(rec.Items) > 0 {
		seg.M.Date = rec.Items[0].Utc
		seg.M.Flags |= types.Is_Valid
		seg.S = calc_stats(&seg.L)
	}
	return seg, nil
}

// ParseText decodes SRT source text into telemetry records, in block
// order. Undecodable blocks land in Skipped with their block index; a
// non-empty input with no recognisable block at all is a FormatError.
// Empty input yields an empty sequence.
func ParseText(src string, withext bool) (types.TrackRec, error) {
	var rec types.TrackRec

	if strings.TrimSpace(src) == "" {
		return rec, nil
	}

	blocks := scan_blocks(src)
	nblk := 0
	for _, lines := range blocks {
		idx, vs, ve, ok := block_header(lines)
		if !ok {
			continue
		}
		nblk++
		b, err := get_srt_block(idx, vs, ve, lines[2:], withext)
		if err != nil {
			rec.Skipped = append(rec.Skipped, types.SkipRec{Idx: idx, Err: err})
			continue
		}
		rec.Items = append(rec.Items, b)
	}
	if nblk == 0 {
		return rec, &types.FormatError{Reason: "no subtitle blocks found"}
	}
	return rec, nil
}

func scan_blocks(src string) [][]string {
	var blocks [][]string
	var cur []string
	for _, line := range strings.Split(src, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			if len(cur) > 0 {
				blocks = append(blocks, cur)
				cur = nil
			}
			continue
		}
		cur = append(cur, line)
	}
	if len(cur) > 0 {
		blocks = append(blocks, cur)
	}
	return blocks
}

// block_header validates the index and display-range lines. Anything
// that fails here is not a subtitle block, just stray text.
func block_header(lines []string) (int, time.Duration, time.Duration, bool) {
	if len(lines) < 2 {
		return 0, 0, 0, false
	}
	s := strings.TrimPrefix(strings.TrimSpace(lines[0]), "\uFEFF")
	idx, err := strconv.Atoi(s)
	if err != nil {
		return 0, 0, 0, false
	}
	m := range_re.FindStringSubmatch(lines[1])
	if m == nil {
		return 0, 0, 0, false
	}
	vs, ok0 := srt_stamp(m[1])
	ve, ok1 := srt_stamp(m[2])
	if !ok0 || !ok1 {
		return 0, 0, 0, false
	}
	return idx, vs, ve, true
}

func srt_stamp(s string) (time.Duration, bool) {
	s = strings.ReplaceAll(s, ",", ".")
	parts := strings.SplitN(s, ":", 3)
	if len(parts) != 3 {
		return 0, false
	}
	h, err0 := strconv.Atoi(parts[0])
	m, err1 := strconv.Atoi(parts[1])
	sec, err2 := strconv.ParseFloat(parts[2], 64)
	if err0 != nil || err1 != nil || err2 != nil {
		return 0, false
	}
	d := time.Duration(h)*time.Hour + time.Duration(m)*time.Minute +
		time.Duration(sec*float64(time.Second))
	return d, true
}

func get_srt_block(idx int, vs, ve time.Duration, text []string, withext bool) (types.TelemetryRecord, error) {
	b := types.TelemetryRecord{Idx: idx, VStart: vs, VEnd: ve}
	payload := strings.Join(text, "\n")

	// timestamp first; its digits would otherwise confuse the k:v scan
	loc := dt_re.FindStringIndex(payload)
	if loc == nil {
		return b, &types.RecordError{Block: idx, Reason: "no timestamp"}
	}
	ds := strings.Join(strings.Fields(payload[loc[0]:loc[1]]), " ")
	var terr error
	for _, l := range dt_layouts {
		var t time.Time
		if t, terr = time.Parse(l, ds); terr == nil {
			b.Utc = t.UTC()
			break
		}
	}
	if terr != nil {
		return b, &types.RecordError{Block: idx, Reason: fmt.Sprintf("bad timestamp %q", ds)}
	}
	payload = payload[:loc[0]] + payload[loc[1]:]

	if loc = home_re.FindStringIndex(payload); loc != nil {
		m := home_re.FindStringSubmatch(payload)
		// HOME(lon,lat) keeps the original field order
		hp := strings.Split(m[1], ",")
		if len(hp) >= 2 {
			hlon, e0 := strconv.ParseFloat(strings.TrimSpace(hp[0]), 64)
			hlat, e1 := strconv.ParseFloat(strings.TrimSpace(hp[1]), 64)
			if e0 == nil && e1 == nil {
				b.Hlat = hlat
				b.Hlon = hlon
				b.HasHome = true
			}
		}
		payload = payload[:loc[0]] + payload[loc[1]:]
	}

	var haslat, haslon bool
	if loc = gps_re.FindStringIndex(payload); loc != nil {
		m := gps_re.FindStringSubmatch(payload)
		gp := strings.Split(m[1], ",")
		if len(gp) < 2 {
			return b, &types.RecordError{Block: idx, Reason: fmt.Sprintf("bad GPS group %q", m[1])}
		}
		b.Slat = strings.TrimSpace(gp[0])
		b.Slon = strings.TrimSpace(gp[1])
		haslat, haslon = true, true
		if len(gp) > 2 {
			b.Salt = strings.TrimSpace(gp[2])
			b.HasAlt = true
		}
		payload = payload[:loc[0]] + payload[loc[1]:]
	}

	for _, r := range field_rules {
		if loc = r.Rx.FindStringIndex(payload); loc == nil {
			continue
		}
		v := r.Rx.FindStringSubmatch(payload)[1]
		switch r.Id {
		case F_LAT:
			if !haslat {
				b.Slat = v
				haslat = true
			}
		case F_LON:
			if !haslon {
				b.Slon = v
				haslon = true
			}
		case F_ALT:
			if b.HasAlt {
				continue // leave the label for the extension scan
			}
			b.Salt = v
			b.HasAlt = true
		}
		payload = payload[:loc[0]] + payload[loc[1]:]
	}

	if !haslat || !haslon {
		return b, &types.RecordError{Block: idx, Reason: "no decodable coordinates"}
	}

	var err error
	if b.Lat, err = strconv.ParseFloat(b.Slat, 64); err != nil {
		return b, &types.RecordError{Block: idx, Reason: fmt.Sprintf("bad latitude %q", b.Slat)}
	}
	if b.Lon, err = strconv.ParseFloat(b.Slon, 64); err != nil {
		return b, &types.RecordError{Block: idx, Reason: fmt.Sprintf("bad longitude %q", b.Slon)}
	}
	if b.Lat < -90 || b.Lat > 90 {
		return b, &types.RecordError{Block: idx, Reason: fmt.Sprintf("latitude %s out of range", b.Slat)}
	}
	if b.Lon < -180 || b.Lon > 180 {
		return b, &types.RecordError{Block: idx, Reason: fmt.Sprintf("longitude %s out of range", b.Slon)}
	}
	if b.HasAlt {
		if b.Alt, err = strconv.ParseFloat(b.Salt, 64); err != nil {
			return b, &types.RecordError{Block: idx, Reason: fmt.Sprintf("bad altitude %q", b.Salt)}
		}
	}

	if withext {
		for _, m := range ext_re.FindAllStringSubmatch(payload, -1) {
			name := normalise_tag(m[1])
			if name == "" {
				continue
			}
			b.Ext = add_ext(b.Ext, name, m[2])
		}
		b.Ext = add_ext(b.Ext, "video_begin", video_stamp(vs))
		b.Ext = add_ext(b.Ext, "video_end", video_stamp(ve))
		if b.HasHome {
			b.Ext = add_ext(b.Ext, "home_lat", strconv.FormatFloat(b.Hlat, 'f', -1, 64))
			b.Ext = add_ext(b.Ext, "home_lon", strconv.FormatFloat(b.Hlon, 'f', -1, 64))
		}
	}
	return b, nil
}

func normalise_tag(s string) string {
	s = tag_re.ReplaceAllString(strings.ToLower(s), "_")
	s = strings.Trim(s, "_")
	if s == "" {
		return ""
	}
	if s[0] >= '0' && s[0] <= '9' {
		s = "f" + s
	}
	return s
}

func add_ext(items []types.ExtRec, name, value string) []types.ExtRec {
	for j := range items {
		if items[j].Name == name {
			items[j].Value = value
			return items
		}
	}
	return append(items, types.ExtRec{Name: name, Value: value})
}

func video_stamp(d time.Duration) string {
	secs := int(d.Seconds())
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}

func calc_stats(rec *types.TrackRec) types.TrackStats {
	var stats types.TrackStats

	hlat := rec.Items[0].Lat
	hlon := rec.Items[0].Lon
	if rec.Items[0].HasHome {
		hlat = rec.Items[0].Hlat
		hlon = rec.Items[0].Hlon
	}
	st := rec.Items[0].Utc
	llat, llon := rec.Items[0].Lat, rec.Items[0].Lon

	for j := range rec.Items {
		b := &rec.Items[j]
		_, d := geo.Csedist(hlat, hlon, b.Lat, b.Lon)
		b.Vrange = d
		if d > stats.Max_range {
			stats.Max_range = d
			stats.Max_range_time = uint64(b.Utc.Sub(st).Microseconds())
		}
		if b.HasAlt && b.Alt > stats.Max_alt {
			stats.Max_alt = b.Alt
			stats.Max_alt_time = uint64(b.Utc.Sub(st).Microseconds())
		}
		if llat != b.Lat || llon != b.Lon {
			_, d = geo.Csedist(llat, llon, b.Lat, b.Lon)
			stats.Distance += d
		}
		b.Tdist = stats.Distance
		llat = b.Lat
		llon = b.Lon
	}
	return stats
}
