package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "faqbot_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "faqbot_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	QuestionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "faqbot_questions_total",
			Help: "Total number of questions by terminal outcome.",
		},
		[]string{"outcome"},
	)

	RetrievedPassages = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "faqbot_retrieved_passages",
			Help:    "Number of passages clearing the similarity threshold per question.",
			Buckets: []float64{0, 1, 2, 3, 5, 10},
		},
	)

	GenerationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "faqbot_generation_duration_seconds",
			Help:    "Generation collaborator call duration in seconds by phase.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"phase"},
	)
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		QuestionsTotal,
		RetrievedPassages,
		GenerationDuration,
	)
}
