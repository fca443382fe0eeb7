package monitoring

import (
	"fmt"
	"io"

	"github.com/prometheus/common/expfmt"
)

// WriteText writes all metrics in Prometheus text exposition format
func (m *Metrics) WriteText(w io.Writer) error {
	families, err := m.registry.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}

	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return fmt.Errorf("failed to encode metrics: %w", err)
		}
	}
	return nil
}
