package mc

import "fmt"

// SamplingFunction is a pure mapping from State to a fixed-dimension
// numeric vector, evaluated at each scheduled sample point and appended to
// the Sampler of the same name. ComponentNames label the vector components
// for convergence criteria and output ("0", "1", ... by default).
type SamplingFunction struct {
	Name           string
	Description    string
	ComponentNames []string
	Func           func(s *State) []float64
}

// NewSamplingFunction builds a SamplingFunction with default component
// names "0".."dim-1".
func NewSamplingFunction(name, description string, dim int, f func(s *State) []float64) SamplingFunction {
	names := make([]string, dim)
	for i := range names {
		names[i] = fmt.Sprintf("%d", i)
	}
	return SamplingFunction{
		Name:           name,
		Description:    description,
		ComponentNames: names,
		Func:           f,
	}
}

// Dim returns the dimension of the sampled vector.
func (f SamplingFunction) Dim() int { return len(f.ComponentNames) }

// Sampler is an append-only ordered series of fixed-dimension sample
// vectors for one named quantity. It never shrinks during a run.
type Sampler struct {
	dim     int
	samples [][]float64
}

// NewSampler creates an empty Sampler for vectors of the given dimension.
func NewSampler(dim int) *Sampler {
	return &Sampler{dim: dim}
}

// Dim returns the per-sample vector dimension.
func (s *Sampler) Dim() int { return s.dim }

// NSamples returns the number of samples appended so far.
func (s *Sampler) NSamples() int { return len(s.samples) }

// Append adds one sample vector. The slice is copied. Panics if the
// dimension does not match; a sampling function changing its dimension
// mid-run is a caller bug.
func (s *Sampler) Append(v []float64) {
	if len(v) != s.dim {
		panic(fmt.Sprintf("mc: sample of dimension %d appended to sampler of dimension %d", len(v), s.dim))
	}
	cp := make([]float64, len(v))
	copy(cp, v)
	s.samples = append(s.samples, cp)
}

// Sample returns the i-th sample vector (not a copy; callers must not
// mutate it).
func (s *Sampler) Sample(i int) []float64 { return s.samples[i] }

// Component returns the series of one vector component across all samples.
func (s *Sampler) Component(c int) []float64 {
	out := make([]float64, len(s.samples))
	for i, v := range s.samples {
		out[i] = v[c]
	}
	return out
}

// Samples returns the full series in insertion order (not a copy).
func (s *Sampler) Samples() [][]float64 { return s.samples }

// SamplerMap is an insertion-ordered collection of named Samplers. The key
// set is fixed at setup time; no new keys are added mid-run.
type SamplerMap struct {
	names    []string
	samplers map[string]*Sampler
}

// NewSamplerMap creates one Sampler per registered sampling function, in
// registration order.
func NewSamplerMap(functions []SamplingFunction) *SamplerMap {
	m := &SamplerMap{samplers: make(map[string]*Sampler, len(functions))}
	for _, f := range functions {
		m.names = append(m.names, f.Name)
		m.samplers[f.Name] = NewSampler(f.Dim())
	}
	return m
}

// Names returns the sampler names in registration order.
func (m *SamplerMap) Names() []string { return m.names }

// Get returns the named Sampler, or nil if the name was never registered.
func (m *SamplerMap) Get(name string) *Sampler { return m.samplers[name] }

// NSamples returns the number of samples taken so far. All samplers are
// appended to in lockstep, so any one of them answers for the map.
func (m *SamplerMap) NSamples() int {
	if len(m.names) == 0 {
		return 0
	}
	return m.samplers[m.names[0]].NSamples()
}

// Serializable renders the map as name -> ordered list of sample vectors,
// the exchange form of the results bundle.
func (m *SamplerMap) Serializable() map[string][][]float64 {
	out := make(map[string][][]float64, len(m.names))
	for _, name := range m.names {
		out[name] = m.samplers[name].Samples()
	}
	return out
}
