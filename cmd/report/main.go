package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/SmitBdangar/Morph1x/internal/db"
	"github.com/SmitBdangar/Morph1x/internal/detect"
	"github.com/SmitBdangar/Morph1x/internal/report"
	"github.com/SmitBdangar/Morph1x/internal/units"
)

func main() {
	var dbPath string
	var sessionID string
	var speedUnits string
	var asJSON bool
	var histogramPath string
	var listSessions int

	flag.StringVar(&dbPath, "db", "morph1x.db", "path to sqlite db")
	flag.StringVar(&sessionID, "session", "", "session id (default: most recent)")
	flag.StringVar(&speedUnits, "units", "", "speed units for output (default: as recorded)")
	flag.BoolVar(&asJSON, "json", false, "emit the report as JSON")
	flag.StringVar(&histogramPath, "out", "", "write a speed histogram PNG to this path")
	flag.IntVar(&listSessions, "list", 0, "list the N most recent sessions and exit")
	flag.Parse()

	if speedUnits != "" && !units.IsValid(speedUnits) {
		log.Fatalf("invalid units %q (valid: %s)", speedUnits, units.ValidUnitsString())
	}

	dbConn, err := db.OpenDB(dbPath)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer dbConn.Close()

	if listSessions > 0 {
		sessions, err := detect.RecentSessions(dbConn.DB, listSessions)
		if err != nil {
			log.Fatalf("list sessions: %v", err)
		}
		for _, s := range sessions {
			state := "open"
			if s.EndedUnixNanos > 0 {
				state = "closed"
			}
			fmt.Printf("%s  started=%s  %s\n",
				s.ID, time.Unix(0, s.StartedUnixNanos).UTC().Format(time.RFC3339), state)
		}
		return
	}

	if sessionID == "" {
		sessions, err := detect.RecentSessions(dbConn.DB, 1)
		if err != nil {
			log.Fatalf("find latest session: %v", err)
		}
		if len(sessions) == 0 {
			log.Fatalf("no sessions recorded in %s", dbPath)
		}
		sessionID = sessions[0].ID
	}

	rpt, err := report.BuildSessionReport(dbConn.DB, sessionID, speedUnits)
	if err != nil {
		log.Fatalf("build report: %v", err)
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rpt); err != nil {
			log.Fatalf("encode report: %v", err)
		}
	} else {
		rpt.WriteText(os.Stdout)
	}

	if histogramPath != "" {
		speeds, err := detect.SessionSpeeds(dbConn.DB, sessionID)
		if err != nil {
			log.Fatalf("load speeds: %v", err)
		}
		scale, label := report.SpeedScale(rpt.Session.MetersPerPixel, rpt.Units)
		for i := range speeds {
			speeds[i] *= scale
		}
		if err := report.SaveSpeedHistogram(speeds, label, histogramPath); err != nil {
			log.Fatalf("write histogram: %v", err)
		}
		fmt.Printf("histogram written to %s\n", histogramPath)
	}
}
