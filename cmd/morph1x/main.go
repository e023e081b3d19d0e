package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	_ "modernc.org/sqlite"

	"github.com/SmitBdangar/Morph1x/internal/api"
	"github.com/SmitBdangar/Morph1x/internal/config"
	"github.com/SmitBdangar/Morph1x/internal/db"
	"github.com/SmitBdangar/Morph1x/internal/detect"
	"github.com/SmitBdangar/Morph1x/internal/report"
	"github.com/SmitBdangar/Morph1x/internal/units"
	"github.com/SmitBdangar/Morph1x/internal/version"
)

var (
	listen         = flag.String("listen", ":8080", "HTTP listen address")
	dbFile         = flag.String("db", "", "Path to the SQLite database file (empty disables session recording)")
	exportDir      = flag.String("export-dir", "", "Directory for report exports (empty disables exports)")
	configFile     = flag.String("config", "", "Path to a deployment config JSON file")
	speedUnits     = flag.String("units", "", "Speed units for reported speeds (overrides config)")
	metersPerPixel = flag.Float64("meters-per-pixel", 0, "Scene scale in meters per pixel (overrides config)")
	replayFile     = flag.String("replay", "", "Replay detection frames from a JSONL file")
	replayFPS      = flag.Float64("fps", 30, "Replay frame rate")
	replayTarget   = flag.String("target", "", "Replay to a remote server instead of this one")
	showVersion    = flag.Bool("version", false, "Print version and exit")
)

// runMigrate handles `morph1x migrate [-db path] <action>`.
func runMigrate(args []string) {
	flags := flag.NewFlagSet("migrate", flag.ExitOnError)
	dbPath := flags.String("db", "morph1x.db", "Path to the SQLite database file")
	_ = flags.Parse(args)
	db.RunMigrateCommand(flags.Args(), *dbPath)
}

// parseFrameLine decodes one replay line: either a bare detection array or
// a {"detections": [...]} object, matching what /api/detect accepts.
func parseFrameLine(line string) ([]detect.Detection, error) {
	if strings.HasPrefix(line, "[") {
		var detections []detect.Detection
		if err := json.Unmarshal([]byte(line), &detections); err != nil {
			return nil, fmt.Errorf("failed to unmarshal detection array: %v", err)
		}
		return detections, nil
	}

	var frame api.DetectRequest
	if err := json.Unmarshal([]byte(line), &frame); err != nil {
		return nil, fmt.Errorf("failed to unmarshal frame object: %v", err)
	}
	return frame.Detections, nil
}

// waitForServer polls the target's health endpoint until it answers.
func waitForServer(ctx context.Context, client *api.Client) error {
	for i := 0; i < 50; i++ {
		if _, err := client.Health(); err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(100 * time.Millisecond):
		}
	}
	return fmt.Errorf("server did not become healthy")
}

// replayFrames feeds recorded frames to the server at the configured rate.
// Returns the number of frames submitted.
func replayFrames(ctx context.Context, client *api.Client, path string, fps float64) (int64, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	ticker := time.NewTicker(time.Duration(float64(time.Second) / fps))
	defer ticker.Stop()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var frames int64
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		detections, err := parseFrameLine(line)
		if err != nil {
			log.Printf("skipping frame %d: %v", frames+1, err)
			continue
		}

		result, err := client.PostFrame(detections)
		if err != nil {
			return frames, err
		}
		frames++

		for _, alert := range result.Alerts {
			log.Printf("alert: %s detected (track %d)", alert.Class, alert.Identity)
		}

		select {
		case <-ctx.Done():
			return frames, ctx.Err()
		case <-ticker.C:
		}
	}
	return frames, scanner.Err()
}

func main() {
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		runMigrate(os.Args[2:])
		return
	}

	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	if *listen == "" {
		log.Fatal("HTTP listen address is required")
	}
	if *speedUnits != "" && !units.IsValid(*speedUnits) {
		log.Fatalf("invalid units %q (valid: %s)", *speedUnits, units.ValidUnitsString())
	}
	if *replayFile != "" && *replayFPS <= 0 {
		log.Fatal("replay frame rate must be positive")
	}

	cfg := config.EmptyDeploymentConfig()
	if *configFile != "" {
		loaded, err := config.LoadDeploymentConfig(*configFile)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = loaded
		log.Printf("Loaded deployment config from %s", *configFile)
	}

	engineConfig := detect.EngineConfig{
		ConfidenceThreshold:  cfg.GetConfidenceThreshold(),
		IoUThreshold:         cfg.GetIoUThreshold(),
		MaxDetections:        cfg.GetMaxDetections(),
		ProcessEveryNFrames:  cfg.GetProcessEveryNFrames(),
		ResetIdentityCounter: cfg.GetResetIdentityCounter(),
		AllowedClasses:       cfg.GetAllowedClasses(),
	}

	// Flags override the config file for the reporting-side settings.
	reportUnits := *speedUnits
	if reportUnits == "" {
		reportUnits = cfg.GetSpeedUnits()
	}
	sceneScale := *metersPerPixel
	if sceneScale <= 0 {
		sceneScale = cfg.GetMetersPerPixel()
	}

	// Initialize database and session recording
	var database *db.DB
	var recorder *detect.Recorder
	if *dbFile != "" {
		var err error
		database, err = db.NewDB(*dbFile)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer database.Close()

		recorder, err = detect.NewRecorder(database.DB, engineConfig, reportUnits, sceneScale, nil)
		if err != nil {
			log.Fatalf("Failed to open recording session: %v", err)
		}
		log.Printf("Recording session %s to %s", recorder.SessionID(), *dbFile)
	}

	var exporter *report.Exporter
	if *exportDir != "" {
		var err error
		exporter, err = report.NewExporter(nil, *exportDir)
		if err != nil {
			log.Fatalf("Failed to configure exports: %v", err)
		}
		log.Printf("Report exports enabled in %s", exporter.Dir())
	}

	engine := detect.NewEngine(engineConfig, nil)
	server := api.NewServer(engine, database, recorder, api.ServerConfig{
		Units:          reportUnits,
		MetersPerPixel: sceneScale,
		AlertCooldown:  cfg.GetAlertCooldown(),
		Exporter:       exporter,
	})

	// Create a wait group for the HTTP server and replay routines
	var wg sync.WaitGroup
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Replay routine: feed recorded frames through the public API so they
	// follow the same path as live detector traffic
	if *replayFile != "" {
		target := *replayTarget
		if target == "" {
			addr := *listen
			if strings.HasPrefix(addr, ":") {
				addr = "localhost" + addr
			}
			target = "http://" + addr
		}

		wg.Add(1)
		go func() {
			defer wg.Done()

			client := api.NewClient(target, nil)
			if err := waitForServer(ctx, client); err != nil {
				log.Printf("replay aborted: %v", err)
				return
			}

			frames, err := replayFrames(ctx, client, *replayFile, *replayFPS)
			if err != nil && err != context.Canceled {
				log.Printf("replay error after %d frames: %v", frames, err)
			} else {
				log.Printf("replayed %d frames to %s", frames, target)
			}
			log.Print("replay routine terminated")
		}()
	}

	// HTTP server goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()

		mux := server.ServeMux()

		// Basic info endpoint
		mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/" {
				http.NotFound(w, r)
				return
			}
			w.Header().Set("Content-Type", "text/html")

			recordingStatus := "disabled"
			if *dbFile != "" {
				recordingStatus = fmt.Sprintf("enabled (%s)", *dbFile)
			}

			fmt.Fprintf(w, `
<!DOCTYPE html>
<html>
<head><title>Morph1x Tracking Server</title></head>
<body>
	<h1>Morph1x Tracking Server</h1>
	<p>Version %s</p>
	<p>Session recording: %s</p>
	<ul>
		<li><a href="/api/health">Health check</a></li>
		<li><a href="/api/objects">Active objects</a></li>
		<li><a href="/api/stats">Statistics</a></li>
		<li><a href="/api/config">Configuration</a></li>
		<li><a href="/api/exports">Report exports</a></li>
		<li><a href="/charts/activity">Activity chart</a></li>
		<li><a href="/charts/speeds">Speed chart</a></li>
	</ul>
</body>
</html>`, version.Version, recordingStatus)
		})

		httpServer := &http.Server{
			Addr:    *listen,
			Handler: api.LoggingMiddleware(mux),
		}

		// Start server in a goroutine so it doesn't block
		go func() {
			log.Printf("Starting HTTP server on %s", *listen)
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("failed to start server: %v", err)
			}
		}()

		// Wait for context cancellation to shut down server
		<-ctx.Done()
		log.Println("shutting down HTTP server...")

		// Create a shutdown context with a shorter timeout
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("HTTP server shutdown error: %v", err)
			// Force close the server if graceful shutdown fails
			if err := httpServer.Close(); err != nil {
				log.Printf("HTTP server force close error: %v", err)
			}
		}

		log.Printf("HTTP server routine stopped")
	}()

	// Wait for all goroutines to finish
	wg.Wait()

	if err := server.CloseRecording(); err != nil {
		log.Printf("failed to close recording session: %v", err)
	}

	log.Printf("Graceful shutdown complete")
}
