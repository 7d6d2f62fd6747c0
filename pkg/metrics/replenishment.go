package metrics

import "github.com/prometheus/client_golang/prometheus"

// ReplenishmentMetrics counts engine outcomes. A nil receiver is a no-op.
type ReplenishmentMetrics struct {
	critical       prometheus.Counter
	listsCreated   prometheus.Counter
	listsFinalized prometheus.Counter
	stockAdditions prometheus.Counter
	spent          prometheus.Counter
}

func NewReplenishmentMetrics(reg prometheus.Registerer) *ReplenishmentMetrics {
	if reg == nil {
		return &ReplenishmentMetrics{}
	}
	m := &ReplenishmentMetrics{
		critical: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "smartlist_items_flagged_critical_total",
			Help: "Items newly queued on an active shopping list.",
		}),
		listsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "smartlist_shopping_lists_created_total",
			Help: "Active shopping lists created.",
		}),
		listsFinalized: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "smartlist_shopping_lists_finalized_total",
			Help: "Shopping lists finalized.",
		}),
		stockAdditions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "smartlist_stock_additions_total",
			Help: "Stock additions applied to items.",
		}),
		spent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "smartlist_purchases_spent_total",
			Help: "Money recorded by finalized purchases.",
		}),
	}
	reg.MustRegister(m.critical, m.listsCreated, m.listsFinalized, m.stockAdditions, m.spent)
	return m
}

func (m *ReplenishmentMetrics) ItemFlaggedCritical() {
	if m == nil || m.critical == nil {
		return
	}
	m.critical.Inc()
}

func (m *ReplenishmentMetrics) ListCreated() {
	if m == nil || m.listsCreated == nil {
		return
	}
	m.listsCreated.Inc()
}

// ListFinalized records a finalization and the amount spent on it.
func (m *ReplenishmentMetrics) ListFinalized(spent float64) {
	if m == nil || m.listsFinalized == nil {
		return
	}
	m.listsFinalized.Inc()
	if spent > 0 {
		m.spent.Add(spent)
	}
}

func (m *ReplenishmentMetrics) StockAdded() {
	if m == nil || m.stockAdditions == nil {
		return
	}
	m.stockAdditions.Inc()
}
