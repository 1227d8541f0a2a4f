// internal/server/server.go
package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"postshare/internal/logfields"
)

const debounceDuration = 500 * time.Millisecond

// BuildFunc rebuilds the site. full is true for the initial build, which
// also cleans the output directory.
type BuildFunc func(ctx context.Context, full bool) error

// Options configures the preview server.
type Options struct {
	Port       int
	PublicDir  string
	WatchPaths []string
}

// Run builds the site, then serves PublicDir with live reload until ctx is
// cancelled. Changes under WatchPaths trigger a rebuild and a browser refresh.
func Run(ctx context.Context, logger *slog.Logger, opts Options, build BuildFunc) error {
	if err := build(ctx, true); err != nil {
		return fmt.Errorf("initial build failed: %w", err)
	}

	hub := newHub(logger)
	defer hub.closeAll()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("could not create file watcher: %w", err)
	}
	defer watcher.Close()

	if err := addWatches(logger, watcher, opts.WatchPaths); err != nil {
		return err
	}

	go watchForChanges(ctx, logger, watcher, hub, build)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", opts.Port),
		Handler: newMux(hub, opts.PublicDir),
	}

	servererr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			servererr <- err
		}
		close(servererr)
	}()

	fmt.Printf("Serving site on http://localhost%s\n", server.Addr)
	fmt.Println("Press Ctrl+C to stop")

	select {
	case <-ctx.Done():
		shutdownctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownctx); err != nil {
			return fmt.Errorf("failed to shutdown server: %w", err)
		}
		return nil
	case err := <-servererr:
		if err != nil {
			return fmt.Errorf("failed to serve: %w", err)
		}
		return nil
	}
}

func newMux(hub *Hub, publicDir string) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		serveWs(hub, w, r)
	})
	mux.Handle("/", liveReloadWrapper(http.FileServer(http.Dir(publicDir))))
	return mux
}

// addWatches registers every directory under the given paths. Files are
// watched through their parent directory so editors that save by rename
// still produce events.
func addWatches(logger *slog.Logger, watcher *fsnotify.Watcher, paths []string) error {
	watched := make(map[string]bool)
	addWatch := func(dir string) {
		dir = filepath.Clean(dir)
		if watched[dir] {
			return
		}
		if err := watcher.Add(dir); err != nil {
			logger.Warn("Error adding watch", logfields.Path(dir), logfields.Error(err))
			return
		}
		logger.Debug("Watching directory", logfields.Path(dir))
		watched[dir] = true
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return fmt.Errorf("could not stat path %s: %w", path, err)
		}

		if !info.IsDir() {
			addWatch(filepath.Dir(path))
			continue
		}
		if err := filepath.Walk(path, func(walkPath string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() {
				addWatch(walkPath)
			}
			return nil
		}); err != nil {
			return fmt.Errorf("failed to watch directory %s: %w", path, err)
		}
	}
	return nil
}

func watchForChanges(ctx context.Context, logger *slog.Logger, watcher *fsnotify.Watcher, hub *Hub, build BuildFunc) {
	var lastBuildTime time.Time
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !isRebuildEvent(event) || time.Since(lastBuildTime) <= debounceDuration {
				continue
			}
			// Let editors finish writing before reading the tree.
			time.Sleep(100 * time.Millisecond)

			logger.Info("Change detected, rebuilding", logfields.Path(event.Name))
			if err := build(ctx, false); err != nil {
				logger.Error("Error rebuilding site", logfields.Error(err))
			} else {
				hub.broadcastMessage(reloadMessage)
			}
			lastBuildTime = time.Now()
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("Watcher error", logfields.Error(err))
		}
	}
}

func isRebuildEvent(event fsnotify.Event) bool {
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)
}

// liveReloadWrapper injects the reload script before </body> of HTML
// responses and disables caching.
func liveReloadWrapper(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		w.Header().Set("Pragma", "no-cache")
		w.Header().Set("Expires", "0")

		isHTML := strings.HasSuffix(r.URL.Path, ".html") || strings.HasSuffix(r.URL.Path, "/")
		if !isHTML {
			next.ServeHTTP(w, r)
			return
		}

		iw := newInterceptingWriter(w)
		next.ServeHTTP(iw, r)

		for key, values := range iw.Header() {
			for _, value := range values {
				w.Header().Add(key, value)
			}
		}

		bodyBytes := iw.body.Bytes()
		if iw.statusCode != http.StatusOK {
			w.WriteHeader(iw.statusCode)
			w.Write(bodyBytes)
			return
		}

		injectedBody := bytes.Replace(bodyBytes, []byte("</body>"), []byte(liveReloadScript+"</body>"), 1)
		w.Header().Set("Content-Length", fmt.Sprint(len(injectedBody)))
		w.WriteHeader(iw.statusCode)
		w.Write(injectedBody)
	})
}

type interceptingWriter struct {
	http.ResponseWriter
	body       *bytes.Buffer
	statusCode int
	header     http.Header
}

func newInterceptingWriter(w http.ResponseWriter) *interceptingWriter {
	return &interceptingWriter{
		ResponseWriter: w,
		body:           new(bytes.Buffer),
		header:         make(http.Header),
		statusCode:     http.StatusOK,
	}
}

func (iw *interceptingWriter) Header() http.Header {
	return iw.header
}

func (iw *interceptingWriter) Write(b []byte) (int, error) {
	return iw.body.Write(b)
}

func (iw *interceptingWriter) WriteHeader(statusCode int) {
	iw.statusCode = statusCode
}

const liveReloadScript = `
<script>
  (function() {
    let socket = new WebSocket("ws://" + window.location.host + "/ws");
    socket.onmessage = function(event) {
      if (event.data === "reload") {
        window.location.reload();
      }
    };
    socket.onerror = function() {
      console.error("Live reload connection error. Please restart 'postshare serve'.");
    };
  })();
</script>
`
