package metrics

import (
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "interview_sim_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2},
		},
		[]string{"route", "status"},
	)

	SessionsStarted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "interview_sim_sessions_started_total",
			Help: "Total interview sessions started",
		},
		[]string{"input_mode"},
	)

	SessionsCompleted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "interview_sim_sessions_completed_total",
			Help: "Total interview sessions that ran out of questions",
		},
	)

	ResumesIngested = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "interview_sim_resumes_ingested_total",
			Help: "Resumes accepted at session start by format",
		},
		[]string{"format"},
	)

	QuestionsGenerated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "interview_sim_questions_generated_total",
			Help: "Total questions generated",
		},
		[]string{"kind"},
	)

	AnswersSubmitted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "interview_sim_answers_submitted_total",
			Help: "Total answers evaluated",
		},
	)

	AnswerScore = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "interview_sim_answer_score",
			Help:    "Heuristic answer scores",
			Buckets: []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10},
		},
	)

	AnswerMistakes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "interview_sim_answer_mistakes_total",
			Help: "Mistakes recorded by heuristic check",
		},
		[]string{"check"},
	)

	ReportsGenerated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "interview_sim_reports_generated_total",
			Help: "Total feedback reports computed",
		},
	)

	CacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "interview_sim_cache_hits_total",
			Help: "Total cache hits",
		},
		[]string{"cache_type"},
	)

	CacheMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "interview_sim_cache_misses_total",
			Help: "Total cache misses",
		},
		[]string{"cache_type"},
	)

	BreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "interview_sim_circuit_breaker_state",
			Help: "Circuit breaker state (0 closed, 1 half-open, 2 open)",
		},
		[]string{"name"},
	)
)

var registerOnce sync.Once

func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(RequestDuration)
		prometheus.MustRegister(SessionsStarted)
		prometheus.MustRegister(SessionsCompleted)
		prometheus.MustRegister(ResumesIngested)
		prometheus.MustRegister(QuestionsGenerated)
		prometheus.MustRegister(AnswersSubmitted)
		prometheus.MustRegister(AnswerScore)
		prometheus.MustRegister(AnswerMistakes)
		prometheus.MustRegister(ReportsGenerated)
		prometheus.MustRegister(CacheHits)
		prometheus.MustRegister(CacheMisses)
		prometheus.MustRegister(BreakerState)
	})
}

func MetricsHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
