package flsql

import (
	"database/sql"
	"log"
	"os"

	_ "modernc.org/sqlite"

	"dji2gpx/pkg/types"
)

const SCHEMA = `CREATE TABLE IF NOT EXISTS meta (id integer NOT NULL PRIMARY KEY, logname text, dtg timestamp, points integer, skipped integer);
CREATE TABLE IF NOT EXISTS points (id integer, idx integer, utc timestamp, lat double precision, lon double precision, alt double precision, vrange double precision, tdist double precision);
CREATE TABLE IF NOT EXISTS exts (id integer, idx integer, name text, value text)`

const IMETA = `insert into meta (id, logname, dtg, points, skipped) values ($1,$2,$3,$4,$5)`
const IPOINT = `insert into points (id, idx, utc, lat, lon, alt, vrange, tdist) values ($1,$2,$3,$4,$5,$6,$7,$8)`
const IEXT = `insert into exts (id, idx, name, value) values ($1,$2,$3,$4)`

type DBL struct {
	db *sql.DB
	id int
}

func NewSQLliteDB(fn string) DBL {
	var d DBL
	var err error

	os.Remove(fn)

	d.db, err = sql.Open("sqlite", fn)
	if err != nil {
		log.Fatalf("db %+v\n", err)
	}

	if _, err = d.db.Exec(SCHEMA); err != nil {
		log.Fatalf("tables %+v\n", err)
	}
	return d
}

func (d *DBL) Begin() {
	if _, err := d.db.Exec(`BEGIN TRANSACTION`); err != nil {
		log.Fatalf("begin %+v\n", err)
	}
}

func (d *DBL) Commit() {
	if _, err := d.db.Exec(`COMMIT`); err != nil {
		log.Fatalf("commit %+v\n", err)
	}
}

func (d *DBL) Writemeta(m types.FlightMeta, npts, nskip int) {
	d.id++
	if _, err := d.db.Exec(IMETA, d.id, m.Logname, m.Date, npts, nskip); err != nil {
		log.Fatalf("meta %+v\n", err)
	}
}

func (d *DBL) Writetrack(rec types.TrackRec) {
	for _, b := range rec.Items {
		var alt interface{}
		if b.HasAlt {
			alt = b.Alt
		}
		if _, err := d.db.Exec(IPOINT, d.id, b.Idx, b.Utc, b.Lat, b.Lon, alt, b.Vrange, b.Tdist); err != nil {
			log.Fatalf("points %+v\n", err)
		}
		for _, e := range b.Ext {
			if _, err := d.db.Exec(IEXT, d.id, b.Idx, e.Name, e.Value); err != nil {
				log.Fatalf("exts %+v\n", err)
			}
		}
	}
}

func (d *DBL) Close() {
	d.db.Close()
}
