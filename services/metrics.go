package services

import "github.com/prometheus/client_golang/prometheus"

var (
	liftingLadTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lifting_lad_transitions_total",
			Help: "Lifting Lad request state transitions",
		},
		[]string{"transition"},
	)
	postsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "posts_created_total",
			Help: "Posts appended to user ledgers",
		},
		[]string{"type", "media"},
	)
	mediaUploads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_uploads_total",
			Help: "Media uploads by kind and result",
		},
		[]string{"kind", "result"},
	)
	usersCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "users_created_total",
			Help: "Users created on first sign-in",
		},
	)
)

// RegisterMetrics registers the service counters with reg.
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(liftingLadTransitions, postsCreated, mediaUploads, usersCreated)
}
