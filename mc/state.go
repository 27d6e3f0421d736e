package mc

// Configuration is the capability set a lattice occupation model must
// provide for its discrete configuration. Implementations are fixed-size
// ordered sequences of integer occupant labels; mutation happens only
// through the explicit set operations so that calculators and occupant
// tracking can stay consistent with incremental updates.
type Configuration interface {
	// NSites is the total number of sites.
	NSites() int

	// NVariableSites is the number of sites whose occupant may change.
	NVariableSites() int

	// NUnitCells is the number of unit cells; extensive properties divide
	// by this to become per-unitcell quantities.
	NUnitCells() int

	// Occ returns the occupant value at linear site index l.
	Occ(l int) int

	// SetOcc sets the occupant value at linear site index l.
	SetOcc(l int, value int)

	// SetMultiOcc sets several sites at once; index i of sites pairs with
	// index i of values. Site indices must be distinct.
	SetMultiOcc(sites []int, values []int)

	// Occupation returns a copy of the full occupation sequence.
	Occupation() []int

	// ToValueMap renders the configuration as its canonical nested-mapping
	// exchange form; FromValueMap on the same model type round-trips
	// exactly.
	ToValueMap() ValueMap
}

// Conditions is the capability set for the thermodynamic parameters of a
// run. Conditions are immutable during a run; replace the State between
// runs to change them.
type Conditions interface {
	// Temperature in K.
	Temperature() float64

	// Beta is 1/(kB * Temperature).
	Beta() float64

	// ToValueMap renders the conditions as the canonical named-value
	// exchange form.
	ToValueMap() ValueMap
}

// Boltzmann constant in eV/K, used by Conditions implementations to derive
// beta from temperature.
const KB = 8.617333262e-5

// State owns the configuration, conditions, and currently-known derived
// properties of one Monte Carlo run. A State is exclusively owned by one
// SimulationDriver while a run is in progress.
type State struct {
	Configuration Configuration
	Conditions    Conditions

	// Properties holds derived quantities the driver keeps current during
	// the run (e.g. the extensive potential energy), so sampling functions
	// can read them without recomputation.
	Properties ValueMap
}

// NewState creates a State with an empty properties map.
func NewState(configuration Configuration, conditions Conditions) *State {
	return &State{
		Configuration: configuration,
		Conditions:    conditions,
		Properties:    ValueMap{},
	}
}
