package core

import "github.com/prometheus/client_golang/prometheus"

var (
	updateCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "incontrol_updates_total",
		Help: "Refresh cycles by result",
	}, []string{"result"})

	serviceCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "incontrol_service_calls_total",
		Help: "Remote service calls by service and result",
	}, []string{"service", "result"})
)

func init() {
	prometheus.MustRegister(updateCounter, serviceCounter)
}
