package metrics

import (
	"time"

	"github.com/ogurasousui/codex-grpc-workforce/internal/core/lifecycle"
	"github.com/prometheus/client_golang/prometheus"
)

const outcomeError = "error"

// CommandMetrics はライフサイクルコマンドの結果と所要時間を記録します。
type CommandMetrics struct {
	total    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewCommandMetrics はコマンドのメトリクスを reg に登録します。reg が nil の場合は何も記録しません。
func NewCommandMetrics(reg prometheus.Registerer) *CommandMetrics {
	if reg == nil {
		return &CommandMetrics{}
	}
	total := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "workforce_command_total",
		Help: "Lifecycle commands by outcome.",
	}, []string{"command", "outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "workforce_command_duration_seconds",
		Help:    "Duration of lifecycle commands in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"command"})
	reg.MustRegister(total, duration)
	return &CommandMetrics{total: total, duration: duration}
}

// ObserveCommand は lifecycle.Recorder を実装します。エラー終了は outcome="error" として数えます。
func (m *CommandMetrics) ObserveCommand(command string, kind lifecycle.OutcomeKind, err error, elapsed time.Duration) {
	if m == nil || m.total == nil {
		return
	}
	outcome := string(kind)
	if err != nil || outcome == "" {
		outcome = outcomeError
	}
	command = normalizeLabel(command)
	m.total.WithLabelValues(command, outcome).Inc()
	m.duration.WithLabelValues(command).Observe(elapsed.Seconds())
}

var _ lifecycle.Recorder = (*CommandMetrics)(nil)

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
