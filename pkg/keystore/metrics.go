package keystore

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricsNamespace = "keystore"

	outcomeSuccess         = "success"
	outcomeInvalidPassword = "invalid_password"
	outcomeFailure         = "failure"

	opLoad             = "load"
	opCreate           = "create"
	opImport           = "import"
	opExport           = "export"
	opUpdate           = "update"
	opDelete           = "delete"
	opSign             = "sign"
	opDerive           = "derive"
	opExportPrivateKey = "export_private_key"
	opExportMnemonic   = "export_mnemonic"
)

type metrics struct {
	accounts   prometheus.Gauge
	operations *prometheus.CounterVec
}

// newMetrics registers the keystore collectors with reg, if not nil.
func newMetrics(reg prometheus.Registerer) (*metrics, error) {
	m := &metrics{
		accounts: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "accounts",
			Help:      "Number of key files loaded in the keystore.",
		}),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "operations_total",
			Help:      "Keystore operations by type and outcome.",
		}, []string{"operation", "outcome"}),
	}
	if reg == nil {
		return m, nil
	}
	for _, c := range []prometheus.Collector{m.accounts, m.operations} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *metrics) observe(operation string, err error) {
	outcome := outcomeSuccess
	if err != nil {
		outcome = outcomeFailure
		if errors.Is(err, ErrInvalidPassword) {
			outcome = outcomeInvalidPassword
		}
	}
	m.operations.WithLabelValues(operation, outcome).Inc()
}

func (m *metrics) setAccounts(count int) {
	m.accounts.Set(float64(count))
}
