package server

import "github.com/prometheus/client_golang/prometheus"

type collectors struct {
	parses        *prometheus.CounterVec
	parseDuration *prometheus.HistogramVec
	inputBytes    prometheus.Histogram
	compiles      *prometheus.CounterVec
	cacheLookups  *prometheus.CounterVec
}

func newCollectors() *collectors {
	return &collectors{
		parses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "peg_parse_total",
				Help: "Counter for parse requests by grammar and result.",
			},
			[]string{"grammar", "result"},
		),
		parseDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "peg_parse_duration_seconds",
			Help:    "Histogram for the time spent matching input.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
		}, []string{"grammar"}),
		inputBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "peg_parse_input_bytes",
			Help:    "Histogram for the size of parsed inputs.",
			Buckets: prometheus.ExponentialBuckets(64, 4, 10),
		}),
		compiles: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "peg_compile_total",
				Help: "Counter for grammar compilations by result.",
			},
			[]string{"result"},
		),
		cacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "peg_grammar_cache_lookups_total",
				Help: "Counter for compiled grammar cache lookups by outcome.",
			},
			[]string{"outcome"},
		),
	}
}

func (c *collectors) toList() []prometheus.Collector {
	return []prometheus.Collector{
		c.parses,
		c.parseDuration,
		c.inputBytes,
		c.compiles,
		c.cacheLookups,
	}
}

func (c *collectors) registerAll(register prometheus.Registerer) {
	for _, collector := range c.toList() {
		if err := register.Register(collector); err != nil {
			log.Errorf("metric failed to register on prometheus: %v", err)
		}
	}
}
