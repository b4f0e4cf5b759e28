package types

import (
	"fmt"
	"strings"
	"time"
)

// ExtRec is one vendor telemetry field captured from a subtitle block.
// Name is normalised for use as an XML tag; Value keeps the source
// lexeme so numeric formatting survives the round trip.
type ExtRec struct {
	Name  string
	Value string
}

// TelemetryRecord is one decoded subtitle block. The S-prefixed fields
// hold the raw coordinate lexemes as matched; the floats are parsed
// alongside for validation, stats and KML.
type TelemetryRecord struct {
	Utc     time.Time
	Lat     float64
	Lon     float64
	Alt     float64
	Slat    string
	Slon    string
	Salt    string
	HasAlt  bool
	Hlat    float64
	Hlon    float64
	HasHome bool
	Vrange  float64
	Tdist   float64
	Idx     int
	VStart  time.Duration
	VEnd    time.Duration
	Ext     []ExtRec
}

// SkipRec records a block rejected under the skip-and-warn policy.
type SkipRec struct {
	Idx int
	Err error
}

type TrackRec struct {
	Items   []TelemetryRecord
	Skipped []SkipRec
}

// LogSegment bundles one decoded flight: the records, the log
// metadata and the derived track statistics.
type LogSegment struct {
	L TrackRec
	M FlightMeta
	S TrackStats
}

type MapRec map[string]string

const (
	Is_Valid = 1 << iota
	Has_Size
)

type FlightMeta struct {
	Logname string
	Date    time.Time
	Size    int64
	Blocks  int
	Flags   uint8
}

func (b *FlightMeta) LogName() string {
	return b.Logname
}

func (b *FlightMeta) ShowSize() (string, bool) {
	if b.Flags&Has_Size == 0 || b.Size == 0 {
		return "", false
	} else {
		var s string
		switch {
		case b.Size > 1024*1024:
			s = fmt.Sprintf("%.2f MB", float64(b.Size)/(1024*1024))
		case b.Size > 10*1024:
			s = fmt.Sprintf("%.1f KB", float64(b.Size)/1024)
		default:
			s = fmt.Sprintf("%d B", b.Size)
		}
		return s, true
	}
}

func (b *FlightMeta) Flight() string {
	var sb strings.Builder
	sb.WriteString(b.Date.Format("2006-01-02 15:04:05"))
	return sb.String()
}

func (b *FlightMeta) Summary() MapRec {
	m := make(MapRec)
	m["Log"] = b.LogName()
	m["Flight"] = b.Flight()
	if s, ok := b.ShowSize(); ok {
		m["Size"] = s
	}
	return m
}

type TrackStats struct {
	Max_alt        float64
	Max_alt_time   uint64
	Max_range      float64
	Max_range_time uint64
	Distance       float64
	Duration       uint64
}

func (b *TrackStats) Show_time(t uint64) string {
	secs := t / 1000000
	m := secs / 60
	s := secs % 60
	return fmt.Sprintf("%02d:%02d", m, s)
}

func (b *TrackStats) Summary(t uint64) MapRec {
	m := make(MapRec)
	b.Duration = t
	m["Altitude"] = fmt.Sprintf("%.1f m at %s", b.Max_alt, b.Show_time(b.Max_alt_time))
	m["Range"] = fmt.Sprintf("%.0f m at %s", b.Max_range, b.Show_time(b.Max_range_time))
	m["Distance"] = fmt.Sprintf("%.0f m", b.Distance)
	m["Duration"] = b.Show_time(b.Duration)
	return m
}
