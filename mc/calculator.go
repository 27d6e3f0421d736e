package mc

// PropertyCalculator computes one property of a state: its full value, and
// the incremental change a proposed event would cause without applying it.
//
// Contract:
//   - SetState binds the calculator; no side effects beyond binding.
//   - PerSupercell returns the full current (extensive) value; PerUnitcell
//     equals PerSupercell scaled by 1/n_unitcells exactly.
//   - OccDeltaPerSupercell returns the change in the per-supercell value
//     that would result from setting sites[i] to newOcc[i], computed at a
//     cost proportional to the event size, not the system size.
//   - For any event, PerSupercell(after apply) - PerSupercell(before apply)
//     equals OccDeltaPerSupercell(event) within floating tolerance.
//
// Multiple calculators compose additively into the generalized potential
// that drives acceptance.
type PropertyCalculator interface {
	SetState(s *State) error
	PerSupercell() Value
	PerUnitcell() Value
	OccDeltaPerSupercell(sites []int, newOcc []int) Value
}
