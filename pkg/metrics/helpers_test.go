package metrics

import (
	"fmt"
	"slices"

	dto "github.com/prometheus/client_model/go"
)

// sampleFor returns the series of family name whose label equals value.
func sampleFor(mfs []*dto.MetricFamily, name, label, value string) (*dto.Metric, error) {
	i := slices.IndexFunc(mfs, func(mf *dto.MetricFamily) bool { return mf.GetName() == name })
	if i < 0 {
		return nil, fmt.Errorf("metric %q not found", name)
	}
	for _, m := range mfs[i].GetMetric() {
		hit := slices.ContainsFunc(m.GetLabel(), func(lp *dto.LabelPair) bool {
			return lp.GetName() == label && lp.GetValue() == value
		})
		if hit {
			return m, nil
		}
	}
	return nil, fmt.Errorf("metric %q has no series with %s=%s", name, label, value)
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	m, err := sampleFor(mfs, name, label, value)
	if err != nil {
		return 0, err
	}
	return m.GetCounter().GetValue(), nil
}
