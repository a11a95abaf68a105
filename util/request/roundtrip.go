package request

import (
	"net/http"
	"net/http/httputil"
	"strconv"
	"time"

	"github.com/incontrol-io/incontrol/util"
	"github.com/prometheus/client_golang/prometheus"
)

type roundTripper struct {
	log  *util.Logger
	base http.RoundTripper
}

var (
	reqMetric *prometheus.SummaryVec
	resMetric *prometheus.CounterVec
)

func init() {
	labels := []string{"host"}

	reqMetric = prometheus.NewSummaryVec(prometheus.SummaryOpts{
		Namespace:  "incontrol",
		Subsystem:  "http",
		Name:       "request_duration_seconds",
		Help:       "A summary of HTTP request durations",
		Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
	}, labels)

	resMetric = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "incontrol",
		Subsystem: "http",
		Name:      "request_total",
		Help:      "Total count of HTTP requests",
	}, append(labels, "status"))

	prometheus.MustRegister(reqMetric, resMetric)
}

// NewTripper creates a logging roundtrip handler
func NewTripper(log *util.Logger, base http.RoundTripper) http.RoundTripper {
	return &roundTripper{
		log:  log,
		base: base,
	}
}

// RoundTrip executes the request while logging the exchange and recording
// request metrics per target host
func (r *roundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if body, err := httputil.DumpRequestOut(req, true); err == nil {
		r.log.TRACE.Println(string(body))
	}

	startTime := time.Now()

	resp, err := r.base.RoundTrip(req)

	if err == nil {
		reqMetric.WithLabelValues(req.URL.Hostname()).Observe(time.Since(startTime).Seconds())
		resMetric.WithLabelValues(req.URL.Hostname(), strconv.Itoa(resp.StatusCode)).Add(1)

		if body, err := httputil.DumpResponse(resp, true); err == nil {
			r.log.TRACE.Println(string(body))
		}
	} else {
		resMetric.WithLabelValues(req.URL.Hostname(), "error").Add(1)
	}

	return resp, err
}
