// Copyright 2025 Studyboard Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package bridge

import "github.com/prometheus/client_golang/prometheus"

// Operation labels.
const (
	opInitialize = "initialize"
	opText       = "optimize_text"
	opImage      = "optimize_image"
	opQuantize   = "quantize"
	opDequantize = "dequantize"
	opBlocks     = "quantize_blocks"
	opClearCache = "clear_cache"
)

type metrics struct {
	operations *prometheus.CounterVec
	errors     *prometheus.CounterVec
	elements   prometheus.Counter
	usage      prometheus.GaugeFunc
}

func newMetrics(namespace string, usage func() float64) *metrics {
	return &metrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Bridge operations by name.",
		}, []string{"op"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "Failed bridge operations by name.",
		}, []string{"op"}),
		elements: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quantized_elements_total",
			Help:      "Weights quantized to int8.",
		}),
		usage: prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "memory_usage_bytes",
			Help:      "Bytes handed out since the last cache clear.",
		}, usage),
	}
}

func (m *metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{m.operations, m.errors, m.elements, m.usage}
}

// register adds every collector to reg. On failure the collectors that were
// already added are removed again, so reg is left as it was.
func (m *metrics) register(reg prometheus.Registerer) error {
	var done []prometheus.Collector
	for _, c := range m.collectors() {
		if err := reg.Register(c); err != nil {
			for _, d := range done {
				reg.Unregister(d)
			}
			return err
		}
		done = append(done, c)
	}
	return nil
}

func (m *metrics) unregister(reg prometheus.Registerer) {
	for _, c := range m.collectors() {
		reg.Unregister(c)
	}
}

func (m *metrics) observe(op string, err error) {
	m.operations.WithLabelValues(op).Inc()
	if err != nil {
		m.errors.WithLabelValues(op).Inc()
	}
}
