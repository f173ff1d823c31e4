package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/ethereum/go-ethereum/log"
	lru "github.com/hashicorp/golang-lru"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/cors"
	"golang.org/x/crypto/sha3"
)

const maxBodyBytes = 1 << 20 // 1 MiB

// Config holds the HTTP front end settings.
type Config struct {
	CacheSize   int      // cached tool responses, 0 disables the cache
	CorsOrigins []string // allowed origins, empty means any
}

// DefaultConfig is used by NewServer when no config is given.
var DefaultConfig = Config{CacheSize: 256}

// Server answers tool calls over HTTP and memoises deterministic responses.
type Server struct {
	cfg   Config
	cache *lru.Cache
}

// NewServer builds a server.
func NewServer(cfg Config) (*Server, error) {
	s := &Server{cfg: cfg}
	if cfg.CacheSize > 0 {
		c, err := lru.New(cfg.CacheSize)
		if err != nil {
			return nil, err
		}
		s.cache = c
	}
	return s, nil
}

// cacheKey digests the canonical encoding of req. encoding/json sorts map
// keys, so equal requests produce equal digests.
func cacheKey(req ToolRequest) ([32]byte, bool) {
	b, err := json.Marshal(req)
	if err != nil {
		return [32]byte{}, false
	}
	var key [32]byte
	h := sha3.New256()
	h.Write(b)
	h.Sum(key[:0])
	return key, true
}

// Call runs req through the cache. Only successful responses are cached.
func (s *Server) Call(req ToolRequest) (resp ToolResponse, cached bool) {
	if s.cache == nil || req.Tool == "tools" {
		return HandleToolCall(req), false
	}
	key, ok := cacheKey(req)
	if ok {
		if v, hit := s.cache.Get(key); hit {
			return v.(ToolResponse), true
		}
	}
	resp = HandleToolCall(req)
	if ok && resp.Error == "" {
		s.cache.Add(key, resp)
	}
	return resp, false
}

// Handler returns the routes POST /tool, GET /schema and GET /health wrapped
// in CORS handling.
func (s *Server) Handler() http.Handler {
	router := httprouter.New()
	router.POST("/tool", s.serveTool)
	router.GET("/schema", func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, ToolSpec())
	})
	router.GET("/health", func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status": "ok",
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	})
	router.PanicHandler = func(w http.ResponseWriter, r *http.Request, rec interface{}) {
		log.Error("Panic in tool handler", "path", r.URL.Path, "err", rec, "stack", string(debug.Stack()))
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}

	opts := cors.Options{
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"*"},
	}
	if len(s.cfg.CorsOrigins) > 0 {
		opts.AllowedOrigins = s.cfg.CorsOrigins
	}
	return cors.New(opts).Handler(router)
}

func (s *Server) serveTool(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var req ToolRequest
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	// Ensure there's no trailing junk.
	if dec.More() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: trailing data"})
		return
	}

	start := time.Now()
	resp, cached := s.Call(req)
	log.Debug("Served tool call", "tool", req.Tool, "cached", cached, "failed", resp.Error != "", "elapsed", time.Since(start))
	if cached {
		w.Header().Set("X-Cache", "hit")
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
