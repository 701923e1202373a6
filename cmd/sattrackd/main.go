package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/pkg/browser"
	"golang.org/x/sync/errgroup"

	"github.com/signalsfoundry/sattrack/internal/httpapi"
	"github.com/signalsfoundry/sattrack/internal/logging"
	"github.com/signalsfoundry/sattrack/internal/observability"
	"github.com/signalsfoundry/sattrack/internal/store"
	"github.com/signalsfoundry/sattrack/internal/track"
)

func main() {
	addr := flag.String("addr", ":8080", "TCP address the status/control server listens on")
	metricsAddr := flag.String("metrics-addr", ":9091", "HTTP address for Prometheus /metrics")
	tlePath := flag.String("tle", "", "Path to a TLE file (2 or 3 lines)")
	catnr := flag.String("catnr", "", "NORAD catalog number to fetch a TLE for when no file is given")
	tleSaveTo := flag.String("save-tle", "", "When fetching, also save the TLE to this path")
	satID := flag.String("sat-id", "", "Satellite id used in the page URL; defaults to the TLE name")
	interval := flag.Duration("interval", time.Second, "Compute interval")
	obsLat := flag.Float64("observer-lat", track.DefaultObserver.Latitude, "Observer latitude in degrees (+N)")
	obsLon := flag.Float64("observer-lon", track.DefaultObserver.Longitude, "Observer longitude in degrees (+E)")
	obsElev := flag.Float64("observer-elev", track.DefaultObserver.ElevationM, "Observer elevation in metres")
	dbPath := flag.String("db", "", "SQLite path for the observation recorder (disabled when empty)")
	autostart := flag.Bool("autostart", true, "Begin computing at startup")
	open := flag.Bool("open", false, "Open the satellite status URL in a browser")
	flag.Parse()

	log := logging.NewFromEnv()
	ctx := context.Background()

	collector, err := observability.NewTrackerCollector(nil)
	if err != nil {
		log.Error(ctx, "failed to initialise metrics collector", logging.String("error", err.Error()))
		os.Exit(1)
	}

	tracingShutdown, err := observability.InitTracing(ctx, observability.TracingConfigFromEnv(), log)
	if err != nil {
		log.Error(ctx, "failed to initialise tracing", logging.String("error", err.Error()))
		os.Exit(1)
	}
	defer observability.ShutdownWithTimeout(context.Background(), tracingShutdown, log)

	tle, err := loadTLE(ctx, *tlePath, *catnr, *tleSaveTo)
	if err != nil {
		log.Error(ctx, "failed to load TLE", logging.String("error", err.Error()))
		os.Exit(1)
	}
	id := *satID
	if id == "" {
		id = tle.Name
	}

	catalog := track.NewCatalog()
	catalog.Subscribe(func(track.Event) {
		collector.SetTrackedSatellites(catalog.Len())
	})

	tracker, err := track.NewTracker(track.TrackerConfig{
		ID:       id,
		TLE:      tle,
		Observer: track.Observer{Latitude: *obsLat, Longitude: *obsLon, ElevationM: *obsElev},
		Interval: *interval,
		Logger:   log,
		Rotor:    &track.LogRotor{Log: log},
	})
	if err != nil {
		log.Error(ctx, "failed to build tracker", logging.String("error", err.Error()))
		os.Exit(1)
	}
	tracker.Subscribe(func(o track.Observation) {
		collector.RecordObservation(id, o.Time, time.Now())
	})

	if *dbPath != "" {
		recorder, err := store.Open(*dbPath)
		if err != nil {
			log.Error(ctx, "failed to open observation store", logging.String("error", err.Error()))
			os.Exit(1)
		}
		defer recorder.Close()
		tracker.Subscribe(func(o track.Observation) {
			if err := recorder.Record(context.Background(), id, o); err != nil {
				log.Warn(ctx, "failed to record observation", logging.String("error", err.Error()))
			}
		})
	}

	if err := catalog.Add(tracker); err != nil {
		log.Error(ctx, "failed to register tracker", logging.String("error", err.Error()))
		os.Exit(1)
	}

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if *autostart {
		tracker.StartComputing(context.Background())
	}

	api := &http.Server{
		Addr:    *addr,
		Handler: httpapi.NewServer(catalog, collector, log).Handler(),
	}
	metricsSrv := &http.Server{Addr: *metricsAddr, Handler: metricsMux(collector)}

	g, gCtx := errgroup.WithContext(stopCtx)
	g.Go(func() error {
		log.Info(ctx, "starting status server",
			logging.String("addr", *addr),
			logging.String("satellite", id),
		)
		if err := api.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		log.Info(ctx, "serving Prometheus metrics", logging.String("addr", *metricsAddr))
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		log.Info(ctx, "shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = api.Shutdown(shutdownCtx)
		_ = metricsSrv.Shutdown(shutdownCtx)
		tracker.StopComputing()
		tracker.StopTracking()
		return nil
	})

	if *open {
		url := fmt.Sprintf("http://localhost%s/sat/%s?status", *addr, id)
		if err := browser.OpenURL(url); err != nil {
			log.Warn(ctx, "failed to open browser", logging.String("error", err.Error()))
		}
	}

	if err := g.Wait(); err != nil {
		log.Error(ctx, "server exited", logging.String("error", err.Error()))
		os.Exit(1)
	}
}

func loadTLE(ctx context.Context, path, catnr, saveTo string) (track.TLE, error) {
	switch {
	case path != "":
		return track.LoadTLEFile(path)
	case catnr != "":
		fetcher := &track.TLEFetcher{Client: &http.Client{Timeout: 30 * time.Second}}
		tle, err := fetcher.Fetch(ctx, catnr)
		if err != nil {
			return track.TLE{}, err
		}
		if saveTo != "" {
			if err := tle.Save(saveTo); err != nil {
				return track.TLE{}, err
			}
		}
		return tle, nil
	default:
		return track.TLE{}, fmt.Errorf("one of -tle or -catnr is required")
	}
}

func metricsMux(collector *observability.TrackerCollector) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())
	return mux
}
