package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/incontrol-io/incontrol/core"
	"github.com/incontrol-io/incontrol/core/storage"
	"github.com/incontrol-io/incontrol/util"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var log = util.NewLogger("http")

type route struct {
	Methods     []string
	Pattern     string
	HandlerFunc http.HandlerFunc
}

// HTTPd wraps an http.Server and adds the root router
type HTTPd struct {
	*http.Server
}

// NewHTTPd creates the HTTP server with the api routes
func NewHTTPd(addr string, coord *core.Coordinator, cache *util.Cache) *HTTPd {
	router := mux.NewRouter().StrictSlash(true)

	router.Path("/metrics").Handler(promhttp.Handler())

	// api
	api := router.PathPrefix("/api").Subrouter()
	api.Use(jsonHandler)
	api.Use(handlers.CompressHandler)
	api.Use(handlers.CORS(
		handlers.AllowedHeaders([]string{
			"Accept", "Accept-Language", "Content-Language", "Content-Type", "Origin",
		}),
	))

	routes := map[string]route{
		"health":   {[]string{"GET"}, "/health", healthHandler},
		"state":    {[]string{"GET"}, "/state", stateHandler(cache)},
		"vehicles": {[]string{"GET"}, "/vehicles", vehiclesHandler(coord)},
	}

	for _, r := range routes {
		api.Methods(r.Methods...).Path(r.Pattern).Handler(r.HandlerFunc)
	}

	// vehicle api
	vapi := api.PathPrefix("/vehicles/{vin:[0-9A-Za-z]+}").Subrouter()

	vroutes := map[string]route{
		"status":  {[]string{"GET"}, "/status", vehicleStatusHandler(coord)},
		"trips":   {[]string{"GET"}, "/trips", vehicleTripsHandler(coord)},
		"command": {[]string{"POST", "OPTIONS"}, "/{service:[a-z_]+}", commandHandler(coord)},
	}

	for _, r := range vroutes {
		vapi.Methods(r.Methods...).Path(r.Pattern).Handler(r.HandlerFunc)
	}

	srv := &HTTPd{
		Server: &http.Server{
			Addr:         addr,
			Handler:      router,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 2 * time.Minute, // command execution blocks until terminal state
			IdleTimeout:  120 * time.Second,
			ErrorLog:     log.ERROR,
		},
	}
	srv.SetKeepAlivesEnabled(true)

	return srv
}

// Router returns the main router
func (s *HTTPd) Router() *mux.Router {
	return s.Handler.(*mux.Router)
}

// jsonHandler sets the application/json content type
func jsonHandler(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		h.ServeHTTP(w, r)
	})
}

func jsonResponse(w http.ResponseWriter, r *http.Request, content interface{}) {
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(content); err != nil {
		log.ERROR.Printf("httpd: failed to encode JSON: %v", err)
	}
}

// healthHandler returns the health status
func healthHandler(w http.ResponseWriter, r *http.Request) {
	res := struct {
		OK bool `json:"ok"`
	}{OK: true}
	jsonResponse(w, r, res)
}

// stateHandler returns the combined state of all vehicles
func stateHandler(cache *util.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res := cache.State()
		jsonResponse(w, r, res)
	}
}

// vehiclesHandler lists the registered vehicles
func vehiclesHandler(coord *core.Coordinator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		type vehicle struct {
			Vin        string `json:"vin"`
			Name       string `json:"name"`
			EngineType string `json:"engineType"`
		}

		var res []vehicle
		for _, v := range coord.Vehicles() {
			res = append(res, vehicle{
				Vin:        v.VIN(),
				Name:       v.Name(),
				EngineType: v.EngineType().String(),
			})
		}

		jsonResponse(w, r, res)
	}
}

// vehicleStatusHandler returns the tracked status of a single vehicle
func vehicleStatusHandler(coord *core.Coordinator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vin := mux.Vars(r)["vin"]

		v, ok := coord.Vehicle(vin)
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		res := struct {
			Name        string             `json:"name"`
			EngineType  string             `json:"engineType"`
			Tracked     core.TrackedStatus `json:"tracked"`
			LastUpdated time.Time          `json:"lastUpdated"`
			LastTrip    *storage.Trip      `json:"lastTrip,omitempty"`
		}{
			Name:        v.Name(),
			EngineType:  v.EngineType().String(),
			Tracked:     v.TrackedStatus(),
			LastUpdated: v.LastUpdated(),
		}

		if storage.Enabled() {
			if trip, err := storage.LastTrip(v.VIN()); err == nil {
				res.LastTrip = trip
			}
		}

		jsonResponse(w, r, res)
	}
}

// vehicleTripsHandler returns the stored trip history, newest first
func vehicleTripsHandler(coord *core.Coordinator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vin := mux.Vars(r)["vin"]

		v, ok := coord.Vehicle(vin)
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		if !storage.Enabled() {
			w.WriteHeader(http.StatusNotImplemented)
			return
		}

		count := 25
		if s := r.URL.Query().Get("count"); s != "" {
			c, err := strconv.Atoi(s)
			if err != nil || c < 1 {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			count = c
		}

		trips, err := storage.Trips(v.VIN(), count)
		if err != nil {
			log.ERROR.Printf("httpd: trip query failed: %v", err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		jsonResponse(w, r, trips)
	}
}

// commandHandler executes a remote service and reports the outcome
func commandHandler(coord *core.Coordinator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		vin := vars["vin"]
		service := vars["service"]

		var params core.Params
		if r.Body != nil && r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
		}

		ok := coord.Execute(vin, service, params)

		res := struct {
			Service string `json:"service"`
			Success bool   `json:"success"`
		}{Service: service, Success: ok}

		if !ok {
			w.WriteHeader(http.StatusBadGateway)
			_ = json.NewEncoder(w).Encode(res)
			return
		}

		jsonResponse(w, r, res)
	}
}
