package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "buzdealz"

// Wishlist mutation outcomes.
const (
	OutcomeCreated  = "created"
	OutcomeExisting = "existing"
	OutcomeUpdated  = "updated"
	OutcomeRemoved  = "removed"
	OutcomeRejected = "rejected"
)

// WishlistMetrics counts wishlist mutations by operation and outcome.
type WishlistMetrics struct {
	mutations *prometheus.CounterVec
}

func NewWishlistMetrics(reg prometheus.Registerer) *WishlistMetrics {
	if reg == nil {
		return &WishlistMetrics{}
	}
	mutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "wishlist_mutations_total",
		Help:      "Wishlist mutations by operation and outcome.",
	}, []string{"op", "outcome"})
	reg.MustRegister(mutations)
	return &WishlistMetrics{mutations: mutations}
}

// Inc records a single mutation. Safe on a nil receiver.
func (m *WishlistMetrics) Inc(op, outcome string) {
	if m == nil || m.mutations == nil {
		return
	}
	m.mutations.WithLabelValues(normalizeLabel(op), normalizeLabel(outcome)).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
