package bot

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// pipelineMetrics tracks per-stage counters for operator visibility.
type pipelineMetrics struct {
	messagesSeen      prometheus.Counter
	messagesIngested  prometheus.Counter
	ingestFailures    prometheus.Counter
	triggersDetected  prometheus.Counter
	retrievalFailures prometheus.Counter
	emptyRetrievals   prometheus.Counter
	answersGenerated  prometheus.Counter
	synthesisFailures prometheus.Counter
	repliesSent       prometheus.Counter
	sendFailures      prometheus.Counter
}

// metrics is the package-level registry-backed instance; counters register on
// the default Prometheus registry at init.
var metrics = &pipelineMetrics{
	messagesSeen: promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "recall",
		Name:      "messages_seen_total",
		Help:      "Messages observed on the chat stream.",
	}),
	messagesIngested: promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "recall",
		Name:      "messages_ingested_total",
		Help:      "Messages successfully indexed.",
	}),
	ingestFailures: promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "recall",
		Name:      "ingest_failures_total",
		Help:      "Messages that failed embedding or index insert.",
	}),
	triggersDetected: promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "recall",
		Name:      "triggers_detected_total",
		Help:      "Messages containing a trigger phrase.",
	}),
	retrievalFailures: promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "recall",
		Name:      "retrieval_failures_total",
		Help:      "Question embeddings or index searches that failed.",
	}),
	emptyRetrievals: promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "recall",
		Name:      "empty_retrievals_total",
		Help:      "Questions with no history above the confidence threshold.",
	}),
	answersGenerated: promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "recall",
		Name:      "answers_generated_total",
		Help:      "Grounded answers produced by the language model.",
	}),
	synthesisFailures: promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "recall",
		Name:      "synthesis_failures_total",
		Help:      "Model calls that failed or returned empty text.",
	}),
	repliesSent: promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "recall",
		Name:      "replies_sent_total",
		Help:      "Replies delivered to the chat platform.",
	}),
	sendFailures: promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "recall",
		Name:      "send_failures_total",
		Help:      "Replies that failed to deliver.",
	}),
}
