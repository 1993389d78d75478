package metrics

import (
	"fmt"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"net/http"
)

var (
	ErrorsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_errors_total",
			Help: "Total number of occurred errors.",
		},
		[]string{"type"},
	)
	OffersSavedCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_offers_saved_total",
			Help: "Total number of offers added, replaced or removed by users.",
		},
		[]string{"operation"},
	)
	RankingsComputedCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bot_rankings_computed_total",
			Help: "Total number of offer rankings computed.",
		},
	)
	RankedOffersHistogram = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bot_ranked_offers",
			Help:    "Number of offers in each computed ranking.",
			Buckets: []float64{0, 1, 2, 3, 5, 8, 13},
		},
	)
	AiRequestDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bot_ai_request_duration_seconds",
			Help:    "Duration of each advice request to the AI model in seconds.",
			Buckets: []float64{0.5, 1, 2, 5, 10, 30},
		},
	)
	AiFallbacksCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bot_ai_fallbacks_total",
			Help: "Total number of advice requests answered with the static fallback.",
		},
	)
	CleanedOffersCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bot_offers_expired_total",
			Help: "Total number of offers removed by the expiration job.",
		},
	)
)

func init() {
	prometheus.MustRegister(ErrorsCounter)
	prometheus.MustRegister(OffersSavedCounter)
	prometheus.MustRegister(RankingsComputedCounter)
	prometheus.MustRegister(RankedOffersHistogram)
	prometheus.MustRegister(AiRequestDuration)
	prometheus.MustRegister(AiFallbacksCounter)
	prometheus.MustRegister(CleanedOffersCounter)
}

func StartMetricsServer(port int) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	go func() {
		log.Fatal(http.ListenAndServe(fmt.Sprintf(":%d", port), mux))
	}()
}
