// Package mc provides the core Monte Carlo engine for lattice occupation
// models.
//
// # Reading Guide
//
// Start with these three files to understand the engine kernel:
//   - event.go: occupation events and the propose/apply state machine
//   - driver.go: the Metropolis loop, sampling, and termination
//   - completion.go: equilibration/convergence checks and cutoff rules
//
// # Architecture
//
// The mc package defines capability interfaces and the generic engine;
// model implementations live in sub-packages:
//   - mc/ising/: square-lattice Ising model (spin configuration,
//     semi-grand canonical conditions, calculators, event generators)
//
// The engine is generic over the capability sets, never over a concrete
// model type.
//
// # Key Interfaces
//
// The extension points are small interfaces and function types:
//   - Configuration / Conditions: the model's state representation
//   - OccEventGenerator: propose and apply occupation events
//   - PropertyCalculator: full value plus O(event-size) incremental delta
//   - SamplingFunction: pure State -> vector mapping, sampled on schedule
//   - StatisticsCalculator / EquilibrationCheckFunc: pluggable statistical
//     policies behind the completion check
//
// The simulation loop is an inherently sequential Markov chain; one driver
// exclusively owns its State, RandomSource, and SamplerMap. Independent
// replicas are embarrassingly parallel when each owns its own seed (see
// PartitionedRandomSource).
package mc
