package metrics

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	initOnce sync.Once

	// Registry holds every emptydir metric. It is separate from the default
	// registry so a textfile export contains only prune metrics.
	Registry = prometheus.NewRegistry()
)

// Init initializes all metrics and registers them with Registry
// This function is safe to call multiple times (uses sync.Once)
func Init() {
	initOnce.Do(func() {
		initPruneMetrics()
		registerPruneMetrics()

		// Present before the first run so exports are never sparse
		LastRunTimestamp.Set(0)
		for _, reason := range []string{"none", "not_empty", "unreadable", "protected"} {
			DirsEvaluatedTotal.WithLabelValues(reason).Add(0)
		}
	})
}

// WriteTextfile writes the registry in the node_exporter textfile format.
// The write is atomic: a temp file is renamed over path.
func WriteTextfile(path string) error {
	Init()
	if err := prometheus.WriteToTextfile(path, Registry); err != nil {
		return fmt.Errorf("write metrics textfile %s: %w", path, err)
	}
	return nil
}
