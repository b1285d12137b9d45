package rhmap

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// requireInvariant checks slot bookkeeping against the Robin-Hood ordering.
func requireInvariant[K comparable, V any](t *testing.T, m *Map[K, V]) {
	t.Helper()

	n := uint64(len(m.slots))
	occupied := 0
	seen := make(map[K]uint64)

	for i := range m.slots {
		b := m.slots[i]
		if !b.occupied {
			continue
		}
		occupied++

		prev, dup := seen[b.key]
		require.False(t, dup, "key %v stored twice (slots %d and %d)", b.key, prev, i)
		seen[b.key] = uint64(i)

		require.Equal(t, m.natural(b.key), b.base, "slot %d has stale natural slot", i)
		require.Equal(t, (uint64(i)+n-b.base)%n, b.psl, "slot %d psl does not match displacement", i)

		for d := uint64(0); d < b.psl; d++ {
			k := (b.base + d) % n
			other := m.slots[k]
			require.True(t, other.occupied, "gap at slot %d inside probe run of slot %d", k, i)
			require.GreaterOrEqual(t, other.psl, d, "slot %d is richer than slot %d passing through it", k, i)
		}
	}

	require.Equal(t, m.count, occupied)
}

func TestNew_Validation(t *testing.T) {
	_, err := New[string, int](0, HashString)
	require.Error(t, err)

	_, err = New[string, int](4, nil)
	require.Error(t, err)

	m, err := NewString[int](4)
	require.NoError(t, err)
	assert.Equal(t, 4, m.Cap())
	assert.Equal(t, 0, m.Len())
}

func TestMap_SetGetFull(t *testing.T) {
	m, err := NewString[string](4)
	require.NoError(t, err)

	entries := map[string]string{
		"foo":           "bar",
		"fragile":       "tar",
		"Hello, World!": "How are you today?",
		"Hello, Again!": "I-am-well-and-you?",
	}
	for k, v := range entries {
		require.NoError(t, m.Set(k, v))
	}
	requireInvariant(t, m)
	assert.True(t, m.Full())

	for _, k := range []string{"toy", "boy", "coi", "ran"} {
		assert.ErrorIs(t, m.Set(k, "x"), ErrFull)
	}
	requireInvariant(t, m)

	for k, want := range entries {
		got, ok := m.Get(k)
		require.True(t, ok, "missing %q", k)
		assert.Equal(t, want, got)
	}
	for _, k := range []string{"toy", "boy", "coi", "ran"} {
		_, ok := m.Get(k)
		assert.False(t, ok)
	}
}

func TestMap_OverwriteWhenFull(t *testing.T) {
	m, err := NewString[int](2)
	require.NoError(t, err)

	require.NoError(t, m.Set("a", 1))
	require.NoError(t, m.Set("b", 2))
	require.NoError(t, m.Set("a", 10), "existing keys stay writable in a full table")

	got, ok := m.Get("a")
	require.True(t, ok)
	assert.Equal(t, 10, got)
	assert.Equal(t, 2, m.Len())
}

func TestMap_Delete(t *testing.T) {
	m, err := NewString[string](4)
	require.NoError(t, err)

	require.NoError(t, m.Set("foo", "bar"))
	require.NoError(t, m.Set("fragile", "tar"))
	require.NoError(t, m.Set("Hello, World!", "How are you today?"))
	require.NoError(t, m.Set("Hello, Again!", "I-am-well-and-you?"))

	assert.True(t, m.Delete("Hello, World!"))
	assert.False(t, m.Delete("Hello, World!"))
	requireInvariant(t, m)

	_, ok := m.Get("Hello, World!")
	assert.False(t, ok)
	for _, k := range []string{"foo", "fragile", "Hello, Again!"} {
		_, ok := m.Get(k)
		assert.True(t, ok, "lost %q after deleting a neighbour", k)
	}

	require.NoError(t, m.Set("toy", "car"), "deleted slot is reusable")
	requireInvariant(t, m)
}

// constantHash forces every key into the same natural slot.
func constantHash(int) uint64 { return 3 }

func TestMap_CollisionClusterBackwardShift(t *testing.T) {
	m, err := New[int, int](8, constantHash)
	require.NoError(t, err)

	for k := 0; k < 6; k++ {
		require.NoError(t, m.Set(k, k*k))
	}
	requireInvariant(t, m)

	// Slots 3..8 (wrapping) hold keys 0..5 with PSL 0..5.
	assert.Equal(t, uint64(5), m.slots[(3+5)%8].psl)

	require.True(t, m.Delete(0))
	requireInvariant(t, m)
	assert.Equal(t, uint64(0), m.slots[3].psl, "cluster should shift back into the natural slot")
	assert.False(t, m.slots[(3+5)%8].occupied)

	for k := 1; k < 6; k++ {
		got, ok := m.Get(k)
		require.True(t, ok)
		assert.Equal(t, k*k, got)
	}
}

func TestMap_WrapAroundProbe(t *testing.T) {
	hash := func(k int) uint64 { return uint64(k) }
	m, err := New[int, string](4, hash)
	require.NoError(t, err)

	// 3 lives in slot 3, 7 and 11 wrap to slots 0 and 1.
	require.NoError(t, m.Set(3, "a"))
	require.NoError(t, m.Set(7, "b"))
	require.NoError(t, m.Set(11, "c"))
	requireInvariant(t, m)
	assert.Equal(t, 7, m.slots[0].key)
	assert.Equal(t, 11, m.slots[1].key)

	// 0 belongs in slot 0 but every incumbent there is poorer, so it probes past the wrapped cluster.
	require.NoError(t, m.Set(0, "d"))
	requireInvariant(t, m)

	for k, want := range map[int]string{3: "a", 7: "b", 11: "c", 0: "d"} {
		got, ok := m.Get(k)
		require.True(t, ok)
		assert.Equal(t, want, got)
	}

	require.True(t, m.Delete(3))
	requireInvariant(t, m)
	_, ok := m.Get(0)
	assert.True(t, ok)
}

func TestMap_RandomOperations(t *testing.T) {
	const capacity = 32
	rng := rand.New(rand.NewSource(42))

	m, err := NewString[int](capacity)
	require.NoError(t, err)
	shadow := make(map[string]int)

	for step := 0; step < 5000; step++ {
		key := fmt.Sprintf("key-%d", rng.Intn(capacity*2))

		switch rng.Intn(3) {
		case 0, 1:
			err := m.Set(key, step)
			_, exists := shadow[key]
			if !exists && len(shadow) == capacity {
				require.ErrorIs(t, err, ErrFull)
				continue
			}
			require.NoError(t, err)
			shadow[key] = step
		case 2:
			_, exists := shadow[key]
			require.Equal(t, exists, m.Delete(key))
			delete(shadow, key)
		}

		if step%97 == 0 {
			requireInvariant(t, m)
		}
	}

	requireInvariant(t, m)
	require.Equal(t, len(shadow), m.Len())
	for k, want := range shadow {
		got, ok := m.Get(k)
		require.True(t, ok, "missing %q", k)
		require.Equal(t, want, got)
	}
}

func TestMap_Range(t *testing.T) {
	m, err := NewString[int](8)
	require.NoError(t, err)
	require.NoError(t, m.Set("a", 1))
	require.NoError(t, m.Set("b", 2))
	require.NoError(t, m.Set("c", 3))

	sum := 0
	m.Range(func(_ string, v int) bool {
		sum += v
		return true
	})
	assert.Equal(t, 6, sum)

	visited := 0
	m.Range(func(string, int) bool {
		visited++
		return false
	})
	assert.Equal(t, 1, visited)
}

func TestHash_Stable(t *testing.T) {
	assert.Equal(t, HashString("main.leaf"), HashBytes([]byte("main.leaf")))
	assert.NotEqual(t, HashString("a"), HashString("b"))
	assert.NotEqual(t, HashUint64(1), HashUint64(2))
}
