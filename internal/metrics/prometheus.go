package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "glas_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5},
		},
		[]string{"route", "status"},
	)

	IngestRows = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "glas_ingest_rows_total",
			Help: "Rows written by ingestion jobs",
		},
		[]string{"entity", "status"},
	)

	ScoreRecomputeDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "glas_score_recompute_duration_seconds",
			Help:    "Duration of TD score recomputation runs",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 60},
		},
	)

	TDsScored = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "glas_tds_scored_total",
			Help: "TDs rescored by the metrics job",
		},
	)

	PartiesAggregated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "glas_parties_aggregated_total",
			Help: "Party rows recomputed by the aggregation job",
		},
	)

	TopicsExtracted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "glas_debate_topics_extracted_total",
			Help: "Debate topics extracted, by method",
		},
		[]string{"method"},
	)

	ArticlesScored = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "glas_news_articles_scored_total",
			Help: "News articles scored by the aggregator",
		},
		[]string{"outcome"},
	)

	LLMTokensUsed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "glas_llm_tokens_used_total",
			Help: "LLM tokens consumed",
		},
		[]string{"type"},
	)

	CacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "glas_cache_hits_total",
			Help: "Cache hits by cache key type",
		},
		[]string{"cache_type"},
	)

	CacheMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "glas_cache_misses_total",
			Help: "Cache misses by cache key type",
		},
		[]string{"cache_type"},
	)

	ConstituencyLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "glas_constituency_lookups_total",
			Help: "Point-in-polygon lookups by result",
		},
		[]string{"result"},
	)
)

func Init() {
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(IngestRows)
	prometheus.MustRegister(ScoreRecomputeDuration)
	prometheus.MustRegister(TDsScored)
	prometheus.MustRegister(PartiesAggregated)
	prometheus.MustRegister(TopicsExtracted)
	prometheus.MustRegister(ArticlesScored)
	prometheus.MustRegister(LLMTokensUsed)
	prometheus.MustRegister(CacheHits)
	prometheus.MustRegister(CacheMisses)
	prometheus.MustRegister(ConstituencyLookups)
}

// RequestTimer records per-route request durations, labelled by the
// registered route pattern rather than the raw path so parameterized
// routes stay one series.
func RequestTimer() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		route := c.Route().Path
		status := strconv.Itoa(c.Response().StatusCode())
		RequestDuration.WithLabelValues(route, status).Observe(time.Since(start).Seconds())

		return err
	}
}

func MetricsHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
