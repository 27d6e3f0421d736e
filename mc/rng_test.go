package mc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomSource_Deterministic(t *testing.T) {
	a := NewRandomSource(42)
	b := NewRandomSource(42)
	for i := 0; i < 1000; i++ {
		assert.Equal(t, a.UniformReal(), b.UniformReal())
		assert.Equal(t, a.UniformInt(625), b.UniformInt(625))
	}
}

func TestRandomSource_Ranges(t *testing.T) {
	r := NewRandomSource(7)
	for i := 0; i < 10000; i++ {
		x := r.UniformReal()
		require.GreaterOrEqual(t, x, 0.0)
		require.Less(t, x, 1.0)

		n := r.UniformInt(10)
		require.GreaterOrEqual(t, n, 0)
		require.Less(t, n, 10)
	}
}

func TestRandomSource_SeedsDiffer(t *testing.T) {
	a := NewRandomSource(1)
	b := NewRandomSource(2)
	same := true
	for i := 0; i < 100; i++ {
		if a.UniformReal() != b.UniformReal() {
			same = false
			break
		}
	}
	assert.False(t, same, "different seeds should produce different streams")
}

func TestPartitionedRandomSource_ProposalUsesMasterSeed(t *testing.T) {
	p := NewPartitionedRandomSource(NewRunKey(42))
	direct := NewRandomSource(42)
	proposal := p.ForSubsystem(SubsystemProposal)
	for i := 0; i < 100; i++ {
		assert.Equal(t, direct.UniformReal(), proposal.UniformReal())
	}
}

func TestPartitionedRandomSource_SubsystemsIsolated(t *testing.T) {
	p := NewPartitionedRandomSource(NewRunKey(42))
	proposal := p.ForSubsystem(SubsystemProposal)
	acceptance := p.ForSubsystem(SubsystemAcceptance)
	require.NotSame(t, proposal, acceptance)

	// Cached: same name returns the same instance.
	assert.Same(t, proposal, p.ForSubsystem(SubsystemProposal))

	// Replica streams are deterministic across constructions.
	q := NewPartitionedRandomSource(NewRunKey(42))
	a := p.ForSubsystem(SubsystemReplica(3))
	b := q.ForSubsystem(SubsystemReplica(3))
	for i := 0; i < 100; i++ {
		assert.Equal(t, a.UniformReal(), b.UniformReal())
	}
}
