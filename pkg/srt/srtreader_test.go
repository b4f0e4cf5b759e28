package srt

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dji2gpx/pkg/options"
	"dji2gpx/pkg/types"
)

const classic_log = `1
00:00:00,000 --> 00:00:01,000
HOME(113.9508,22.5367) 2018.06.01 12:00:00
GPS(22.5368,113.9508,10.0) BAROMETER:1.5
ISO:100 Shutter:60 EV: 0 Fnum:2.2

2
00:00:01,000 --> 00:00:02,000
HOME(113.9508,22.5367) 2018.06.01 12:00:01
GPS(22.5370,113.9510,10.5) BAROMETER:1.6
ISO:100 Shutter:60 EV: 0 Fnum:2.2
`

const labelled_log = `1
00:00:00,000 --> 00:00:00,033
2019-07-14 09:30:00,123
[latitude: 22.5368] [longtitude: 113.9508] [rel_alt: 10.3 abs_alt: 34.1] [iso : 110]
`

func TestParseClassic(t *testing.T) {
	rec, err := ParseText(classic_log, false)
	require.NoError(t, err)
	require.Len(t, rec.Items, 2)
	assert.Empty(t, rec.Skipped)

	b := rec.Items[0]
	assert.Equal(t, "22.5368", b.Slat)
	assert.Equal(t, "113.9508", b.Slon)
	assert.Equal(t, "10.0", b.Salt)
	assert.True(t, b.HasAlt)
	assert.InDelta(t, 22.5368, b.Lat, 1e-9)
	assert.InDelta(t, 113.9508, b.Lon, 1e-9)
	assert.InDelta(t, 10.0, b.Alt, 1e-9)
	assert.True(t, b.HasHome)
	assert.InDelta(t, 22.5367, b.Hlat, 1e-9)
	assert.InDelta(t, 113.9508, b.Hlon, 1e-9)
	assert.Equal(t, time.Date(2018, 6, 1, 12, 0, 0, 0, time.UTC), b.Utc)
	assert.Nil(t, b.Ext)

	assert.Equal(t, 1, rec.Items[0].Idx)
	assert.Equal(t, 2, rec.Items[1].Idx)
	assert.True(t, rec.Items[1].Utc.After(rec.Items[0].Utc))
}

func TestParseSpecExample(t *testing.T) {
	src := "1\n00:00:00,000 --> 00:00:00,033\n2018-06-01 12:00:00 GPS(12.3456,65.4321,10.0)\n"
	rec, err := ParseText(src, false)
	require.NoError(t, err)
	require.Len(t, rec.Items, 1)

	b := rec.Items[0]
	assert.Equal(t, "12.3456", b.Slat)
	assert.Equal(t, "65.4321", b.Slon)
	assert.Equal(t, "10.0", b.Salt)
	assert.Equal(t, time.Date(2018, 6, 1, 12, 0, 0, 0, time.UTC), b.Utc)
}

func TestParseLabelled(t *testing.T) {
	rec, err := ParseText(labelled_log, true)
	require.NoError(t, err)
	require.Len(t, rec.Items, 1)

	b := rec.Items[0]
	assert.Equal(t, "22.5368", b.Slat)
	assert.Equal(t, "113.9508", b.Slon)
	assert.Equal(t, "10.3", b.Salt)
	assert.True(t, b.HasAlt)
	assert.Equal(t, time.Date(2019, 7, 14, 9, 30, 0, 123000000, time.UTC), b.Utc)

	names := ext_names(b.Ext)
	assert.Contains(t, names, "abs_alt")
	assert.Contains(t, names, "iso")
	assert.NotContains(t, names, "latitude")
	assert.NotContains(t, names, "rel_alt")
}

func TestParseEmpty(t *testing.T) {
	rec, err := ParseText("", false)
	require.NoError(t, err)
	assert.Empty(t, rec.Items)
	assert.Empty(t, rec.Skipped)

	rec, err = ParseText("\n  \n\n", true)
	require.NoError(t, err)
	assert.Empty(t, rec.Items)
}

func TestParseGarbage(t *testing.T) {
	_, err := ParseText("not a subtitle\njust some text\n\nmore text here\n", false)
	var fe *types.FormatError
	require.Error(t, err)
	assert.True(t, errors.As(err, &fe))
}

func TestMalformedBlockIsolation(t *testing.T) {
	src := `1
00:00:00,000 --> 00:00:01,000
2018.06.01 12:00:00 GPS(22.5368,113.9508,10.0)

2
00:00:01,000 --> 00:00:02,000
2018.06.01 12:00:01 SIGNAL LOST

3
00:00:02,000 --> 00:00:03,000
2018.06.01 12:00:02 GPS(22.5370,113.9510,10.5)
`
	rec, err := ParseText(src, false)
	require.NoError(t, err)
	assert.Len(t, rec.Items, 2)
	require.Len(t, rec.Skipped, 1)
	assert.Equal(t, 2, rec.Skipped[0].Idx)

	var re *types.RecordError
	require.True(t, errors.As(rec.Skipped[0].Err, &re))
	assert.Equal(t, 2, re.Block)
}

func TestCoordinateBounds(t *testing.T) {
	for _, src := range []string{
		"1\n00:00:00,000 --> 00:00:01,000\n2018.06.01 12:00:00 GPS(91.0,113.9508,10.0)\n",
		"1\n00:00:00,000 --> 00:00:01,000\n2018.06.01 12:00:00 GPS(-90.5,113.9508,10.0)\n",
		"1\n00:00:00,000 --> 00:00:01,000\n2018.06.01 12:00:00 GPS(22.5368,180.5,10.0)\n",
		"1\n00:00:00,000 --> 00:00:01,000\n2018.06.01 12:00:00 GPS(22.5368,-181.0,10.0)\n",
	} {
		rec, err := ParseText(src, false)
		require.NoError(t, err)
		assert.Empty(t, rec.Items, "out of range coordinate must be rejected, not clamped")
		assert.Len(t, rec.Skipped, 1)
	}
}

func TestMissingTimestamp(t *testing.T) {
	src := "1\n00:00:00,000 --> 00:00:01,000\nGPS(22.5368,113.9508,10.0)\n"
	rec, err := ParseText(src, false)
	require.NoError(t, err)
	assert.Empty(t, rec.Items)
	require.Len(t, rec.Skipped, 1)
	assert.Contains(t, rec.Skipped[0].Err.Error(), "timestamp")
}

func TestExtensionCapture(t *testing.T) {
	rec, err := ParseText(classic_log, true)
	require.NoError(t, err)
	require.Len(t, rec.Items, 2)

	names := ext_names(rec.Items[0].Ext)
	assert.Equal(t, []string{"barometer", "iso", "shutter", "ev", "fnum",
		"video_begin", "video_end", "home_lat", "home_lon"}, names)

	vals := map[string]string{}
	for _, e := range rec.Items[0].Ext {
		vals[e.Name] = e.Value
	}
	assert.Equal(t, "1.5", vals["barometer"])
	assert.Equal(t, "100", vals["iso"])
	assert.Equal(t, "0", vals["ev"])
	assert.Equal(t, "00:00", vals["video_begin"])
	assert.Equal(t, "22.5367", vals["home_lat"])
	assert.Equal(t, "113.9508", vals["home_lon"])
}

func TestExtensionToggle(t *testing.T) {
	on, err := ParseText(classic_log, true)
	require.NoError(t, err)
	off, err := ParseText(classic_log, false)
	require.NoError(t, err)

	require.Len(t, off.Items, len(on.Items))
	for j := range on.Items {
		assert.Equal(t, on.Items[j].Slat, off.Items[j].Slat)
		assert.Equal(t, on.Items[j].Slon, off.Items[j].Slon)
		assert.Equal(t, on.Items[j].Utc, off.Items[j].Utc)
		assert.NotEmpty(t, on.Items[j].Ext)
		assert.Empty(t, off.Items[j].Ext)
	}
}

func TestNormaliseTag(t *testing.T) {
	assert.Equal(t, "iso", normalise_tag("ISO"))
	assert.Equal(t, "f_num", normalise_tag("F/Num"))
	assert.Equal(t, "color_md", normalise_tag("color md"))
	assert.Equal(t, "f2x", normalise_tag("2x"))
	assert.Equal(t, "", normalise_tag("###"))
}

func TestBomPrefixedIndex(t *testing.T) {
	src := "\ufeff1\n00:00:00,000 --> 00:00:01,000\n2018.06.01 12:00:00 GPS(22.5368,113.9508,10.0)\n"
	rec, err := ParseText(src, false)
	require.NoError(t, err)
	require.Len(t, rec.Items, 1)
	assert.Equal(t, 1, rec.Items[0].Idx)
}

func TestShortFractionTimestamp(t *testing.T) {
	for _, src := range []string{
		"1\n00:00:00,000 --> 00:00:01,000\n2018-06-01 12:00:00,5 GPS(22.5368,113.9508,10.0)\n",
		"1\n00:00:00,000 --> 00:00:01,000\n2018.06.01 12:00:00.5 GPS(22.5368,113.9508,10.0)\n",
		"1\n00:00:00,000 --> 00:00:01,000\n2018/06/01 12:00:00,50 GPS(22.5368,113.9508,10.0)\n",
	} {
		rec, err := ParseText(src, false)
		require.NoError(t, err)
		require.Len(t, rec.Items, 1, src)
		assert.Empty(t, rec.Skipped)
		assert.Equal(t, time.Date(2018, 6, 1, 12, 0, 0, 500000000, time.UTC), rec.Items[0].Utc)
	}
}

func TestCrlfInput(t *testing.T) {
	src := "1\r\n00:00:00,000 --> 00:00:01,000\r\n2018.06.01 12:00:00 GPS(22.5368,113.9508,10.0)\r\n\r\n"
	rec, err := ParseText(src, false)
	require.NoError(t, err)
	assert.Len(t, rec.Items, 1)
}

func TestReaderStrict(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "strict.srt")
	src := `1
00:00:00,000 --> 00:00:01,000
2018.06.01 12:00:00 GPS(22.5368,113.9508,10.0)

2
00:00:01,000 --> 00:00:02,000
2018.06.01 12:00:01 SIGNAL LOST
`
	require.NoError(t, os.WriteFile(fn, []byte(src), 0644))

	options.Strict = true
	defer func() { options.Strict = false }()

	l := NewSRTReader(fn)
	_, err := l.Reader()
	var re *types.RecordError
	require.Error(t, err)
	assert.True(t, errors.As(err, &re))
	assert.Equal(t, 2, re.Block)
}

func TestReaderEncoding(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "latin1.srt")
	require.NoError(t, os.WriteFile(fn, []byte("1\n00:00:00,000 --> 00:00:01,000\n\xff\xfe bad\n"), 0644))

	l := NewSRTReader(fn)
	_, err := l.Reader()
	var ee *types.EncodingError
	require.Error(t, err)
	assert.True(t, errors.As(err, &ee))
}

func TestReaderStats(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "flight.srt")
	require.NoError(t, os.WriteFile(fn, []byte(classic_log), 0644))

	l := NewSRTReader(fn)
	seg, err := l.Reader()
	require.NoError(t, err)
	require.Len(t, seg.L.Items, 2)

	assert.Equal(t, "flight.srt", seg.M.Logname)
	assert.Equal(t, 2, seg.M.Blocks)
	assert.Equal(t, seg.L.Items[0].Utc, seg.M.Date)
	assert.Greater(t, seg.S.Distance, 0.0)
	assert.InDelta(t, 10.5, seg.S.Max_alt, 1e-9)
	assert.Greater(t, seg.L.Items[1].Tdist, seg.L.Items[0].Tdist)
}

func ext_names(ext []types.ExtRec) []string {
	var names []string
	for _, e := range ext {
		names = append(names, e.Name)
	}
	return names
}
