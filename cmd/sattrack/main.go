package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/signalsfoundry/sattrack/internal/client"
	"github.com/signalsfoundry/sattrack/internal/logging"
	"github.com/signalsfoundry/sattrack/internal/view"
)

func main() {
	server := flag.String("server", "http://localhost:8080/sat/ISS", "Satellite page URL on the tracking daemon")
	atlasPath := flag.String("atlas", "world-110m.json", "Path to the world topology asset")
	flag.Parse()

	// The screen owns stdout, so logs only go to a file when configured.
	log := logging.Noop()
	if os.Getenv("LOG_FILE") != "" {
		log = logging.NewFromEnv()
	}

	// The map cannot render without geometry; fail loudly before touching
	// the terminal.
	atlas, err := view.LoadAtlas(*atlasPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sattrack: %v\n", err)
		os.Exit(1)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "sattrack: create screen: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "sattrack: init screen: %v\n", err)
		os.Exit(1)
	}
	defer screen.Fini()

	surface := view.NewTermSurface(screen, atlas)
	v := view.New(view.NewState(), surface)

	httpClient := &http.Client{Timeout: 10 * time.Second}
	poller := &client.Poller{
		BaseURL: *server,
		Client:  httpClient,
		Logger:  log,
		View:    v,
	}
	dispatcher := &client.Dispatcher{
		BaseURL: *server,
		Client:  httpClient,
		Logger:  log,
		View:    v,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pollDone := make(chan struct{})
	go func() {
		defer close(pollDone)
		_ = poller.Run(ctx)
	}()

	for {
		ev := screen.PollEvent()
		switch ev := ev.(type) {
		case *tcell.EventResize:
			screen.Sync()
			surface.Resize()
		case *tcell.EventKey:
			if done := handleKey(ctx, ev, dispatcher); done {
				cancel()
				<-pollDone
				return
			}
		case nil:
			// Screen finalised.
			cancel()
			<-pollDone
			return
		}
	}
}

// handleKey maps the four control buttons plus quit. Command failures are
// already surfaced on the view's log panel by the dispatcher.
func handleKey(ctx context.Context, ev *tcell.EventKey, d *client.Dispatcher) (done bool) {
	if ev.Key() == tcell.KeyCtrlC || ev.Key() == tcell.KeyEscape {
		return true
	}
	if ev.Key() != tcell.KeyRune {
		return false
	}
	switch ev.Rune() {
	case 'q', 'Q':
		return true
	case 'c':
		_ = d.StartComputing(ctx)
	case 'C':
		_ = d.StopComputing(ctx)
	case 't':
		_ = d.StartTracking(ctx)
	case 'T':
		_ = d.StopTracking(ctx)
	}
	return false
}
