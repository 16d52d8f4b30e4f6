package scorer

import (
	"math"
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Weights parameterizes the performance score. Component weights must sum
// to 1; the ceilings define where the delay and price components bottom out.
type Weights struct {
	Quality          float64 `yaml:"quality"`
	Delivery         float64 `yaml:"delivery"`
	Price            float64 `yaml:"price"`
	DelayCeilingDays float64 `yaml:"delay_ceiling_days"`
	PriceCeiling     float64 `yaml:"price_ceiling"`
}

// DefaultWeights returns the production scoring parameters.
func DefaultWeights() Weights {
	return Weights{
		Quality:          0.4,
		Delivery:         0.3,
		Price:            0.3,
		DelayCeilingDays: 30,
		PriceCeiling:     1000,
	}
}

// Validate checks that the weights are internally consistent.
func (w Weights) Validate() error {
	if math.Abs(w.Quality+w.Delivery+w.Price-1) > 1e-9 {
		return eris.Errorf("scorer: weights must sum to 1, got %g", w.Quality+w.Delivery+w.Price)
	}
	if w.Quality < 0 || w.Delivery < 0 || w.Price < 0 {
		return eris.New("scorer: weights must be non-negative")
	}
	if w.DelayCeilingDays <= 0 {
		return eris.New("scorer: delay ceiling must be positive")
	}
	if w.PriceCeiling <= 0 {
		return eris.New("scorer: price ceiling must be positive")
	}
	return nil
}

// LoadWeights reads scoring weights from a YAML file. Fields left unset in
// the file keep their defaults. An empty path returns the defaults.
func LoadWeights(path string) (Weights, error) {
	w := DefaultWeights()
	if path == "" {
		return w, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return w, eris.Wrapf(err, "scorer: read weights %s", path)
	}
	if err := yaml.Unmarshal(data, &w); err != nil {
		return w, eris.Wrap(err, "scorer: parse weights")
	}
	if err := w.Validate(); err != nil {
		return w, err
	}
	return w, nil
}
