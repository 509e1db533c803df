package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"starpos-backend/internal/models"
)

// Collectors groups the service metrics. A nil *Collectors is a valid no-op.
type Collectors struct {
	sales         *prometheus.CounterVec
	salesAmount   *prometheus.CounterVec
	consumed      *prometheus.CounterVec
	lowStock      prometheus.Gauge
	storageErrors *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Collectors {
	c := &Collectors{
		sales: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "starpos_sales_total",
			Help: "Completed sales by payment method.",
		}, []string{"payment_method"}),
		salesAmount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "starpos_sales_amount_total",
			Help: "Sum of completed sale totals by payment method.",
		}, []string{"payment_method"}),
		consumed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "starpos_ingredient_consumed_total",
			Help: "Ingredient quantity deducted by sales, by unit.",
		}, []string{"unit"}),
		lowStock: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "starpos_low_stock_ingredients",
			Help: "Ingredients currently at or below the low-stock threshold.",
		}),
		storageErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "starpos_storage_errors_total",
			Help: "Failed key-value storage operations by key.",
		}, []string{"op", "key"}),
	}
	reg.MustRegister(c.sales, c.salesAmount, c.consumed, c.lowStock, c.storageErrors)
	return c
}

func (c *Collectors) ObserveSale(method models.PaymentMethod, amount float64) {
	if c == nil {
		return
	}
	c.sales.WithLabelValues(string(method)).Inc()
	c.salesAmount.WithLabelValues(string(method)).Add(amount)
}

func (c *Collectors) ObserveConsumption(unit models.Unit, amount float64) {
	if c == nil || amount <= 0 {
		return
	}
	c.consumed.WithLabelValues(string(unit)).Add(amount)
}

func (c *Collectors) SetLowStock(n int) {
	if c == nil {
		return
	}
	c.lowStock.Set(float64(n))
}

func (c *Collectors) StorageError(op, key string) {
	if c == nil {
		return
	}
	c.storageErrors.WithLabelValues(op, key).Inc()
}
