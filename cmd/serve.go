package cmd

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jsphweid/midiops/chord"
	"github.com/jsphweid/midiops/constants"
	"github.com/jsphweid/midiops/midi"
	"github.com/jsphweid/midiops/model"
	"github.com/jsphweid/midiops/timeline"
)

var serveAddr string

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "listen address")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve [dataRoot]",
	Short: "Serves the extracted dataset over HTTP",
	Long: `Serves a read-only inspection API over the extraction output:
piece listings, chord annotations, and tick-to-beat lookups.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		dataRoot := constants.GetDatasetDir()
		if len(args) == 1 {
			dataRoot = args[0]
		}
		cobra.CheckErr(serve(dataRoot))
	},
}

// pieceCache memoizes parsed chord CSVs. Reload requests are debounced
// so a burst of POSTs after a re-extract flushes once.
type pieceCache struct {
	mu     sync.RWMutex
	chords map[string][]model.ChordEvent
}

func (c *pieceCache) get(name string) ([]model.ChordEvent, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	events, ok := c.chords[name]
	return events, ok
}

func (c *pieceCache) put(name string, events []model.ChordEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.chords[name] = events
}

func (c *pieceCache) flush() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.chords = make(map[string][]model.ChordEvent)
	logrus.Info("piece cache flushed")
}

type server struct {
	dataRoot string
	cache    pieceCache
	reload   func(f func())
}

func serve(dataRoot string) error {
	s := &server{
		dataRoot: dataRoot,
		cache:    pieceCache{chords: make(map[string][]model.ChordEvent)},
		reload:   debounce.New(500 * time.Millisecond),
	}

	r := mux.NewRouter()
	r.HandleFunc("/api/pieces", s.handlePieces).Methods(http.MethodGet)
	r.HandleFunc("/api/pieces/{name}/chords", s.handleChords).Methods(http.MethodGet)
	r.HandleFunc("/api/pieces/{name}/beats", s.handleBeats).Methods(http.MethodGet)
	r.HandleFunc("/api/reload", s.handleReload).Methods(http.MethodPost)

	logrus.Infof("serving %v on %v", dataRoot, serveAddr)
	return http.ListenAndServe(serveAddr, cors.Default().Handler(r))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, model.ErrorResponse{Error: detail})
}

func (s *server) handlePieces(w http.ResponseWriter, r *http.Request) {
	entries, err := os.ReadDir(s.dataRoot)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	pieces := []string{}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(s.dataRoot, e.Name(), chord.CSVName)); err == nil {
			pieces = append(pieces, e.Name())
		}
	}
	sort.Strings(pieces)
	writeJSON(w, http.StatusOK, pieces)
}

func (s *server) handleChords(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	events, ok := s.cache.get(name)
	if !ok {
		var err error
		events, err = chord.ReadCSV(filepath.Join(s.dataRoot, name, chord.CSVName))
		if err != nil {
			writeError(w, http.StatusNotFound, "unknown piece "+name)
			return
		}
		s.cache.put(name, events)
	}

	res := make([]model.ChordEventResponse, 0, len(events))
	for _, ev := range events {
		res = append(res, model.ChordEventResponse{
			OffsetQB: ev.OffsetQB,
			Root:     ev.Root,
			Quality:  ev.Quality,
			Bass:     ev.Bass,
			LocalKey: ev.LocalKey,
		})
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *server) handleBeats(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	tick, err := strconv.ParseInt(r.URL.Query().Get("tick"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "tick query parameter must be an integer")
		return
	}

	doc, err := midi.ReadDocument(filepath.Join(s.dataRoot, name, name+".mid"))
	if err != nil {
		writeError(w, http.StatusNotFound, "unknown piece "+name)
		return
	}

	segments := timeline.BuildMeterSegments(doc.TimeSignatures, doc.TicksPerBeat)
	beat, beatStart, offset := timeline.TickToGlobalBeat(tick, segments)
	writeJSON(w, http.StatusOK, model.BeatInfoResponse{
		Tick:       tick,
		GlobalBeat: beat,
		BeatStart:  beatStart,
		Offset:     offset,
	})
}

func (s *server) handleReload(w http.ResponseWriter, r *http.Request) {
	s.reload(s.cache.flush)
	w.WriteHeader(http.StatusAccepted)
}
