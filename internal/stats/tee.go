package stats

// Tee forwards every update to each of its collectors in order.
type Tee []Collector

var _ Collector = Tee(nil)

func (t Tee) IncCounter(name string, delta int64) {
	for _, c := range t {
		c.IncCounter(name, delta)
	}
}

func (t Tee) SetGauge(name string, value int64) {
	for _, c := range t {
		c.SetGauge(name, value)
	}
}

func (t Tee) ObserveHistogram(name string, value float64) {
	for _, c := range t {
		c.ObserveHistogram(name, value)
	}
}
