package trie

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_EmptyRoot(t *testing.T) {
	tr := New()

	require.NotNil(t, tr.root)
	assert.NotNil(t, tr.root.bucket, "root starts as a bucket node")
	assert.Nil(t, tr.root.children)
	assert.False(t, tr.root.isEnd)
	assert.Equal(t, 0, tr.Len())
	assert.False(t, tr.Contains(""))
	assert.False(t, tr.HasPrefix(""))

	_, err := NewWithBucketCapacity(0)
	require.Error(t, err)
}

func TestInsert_PromotionShape(t *testing.T) {
	tr, err := NewWithBucketCapacity(1)
	require.NoError(t, err)

	for _, k := range []string{"foo", "far", "bar", "car"} {
		tr.Insert(k)
	}

	root := tr.root
	require.Nil(t, root.bucket, "root must have been promoted")
	for _, c := range []byte{'b', 'c', 'f'} {
		assert.NotNil(t, root.children[c], "missing child %q", c)
	}
	assert.Nil(t, root.children['a'])

	f := root.children['f']
	require.Nil(t, f.bucket, "'f' subtree must have been promoted")
	assert.NotNil(t, f.children['a'])
	assert.NotNil(t, f.children['o'])

	b := root.children['b']
	require.NotNil(t, b.bucket)
	_, ok := b.bucket.Get("ar")
	assert.True(t, ok, "bucket stores the unconsumed suffix")
}

func TestInsert_PromotionIntoSingleFullChild(t *testing.T) {
	tests := []struct {
		name string
		keys []string
	}{
		// Every suffix lands in the same child, filling it exactly.
		{"shared first byte", []string{"xa", "xb", "xc", "xd", "xe"}},
		// The empty suffix becomes isEnd instead of a child entry.
		{"with empty key", []string{"", "xa", "xb", "xc", "xd"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, err := NewWithBucketCapacity(4)
			require.NoError(t, err)

			assert.NotPanics(t, func() {
				for _, k := range tt.keys {
					tr.Insert(k)
				}
			})

			assert.Equal(t, len(tt.keys), tr.Len())
			for _, k := range tt.keys {
				assert.True(t, tr.Contains(k), "lost %q in promotion", k)
			}
		})
	}
}

func TestContains(t *testing.T) {
	tr, err := NewWithBucketCapacity(2)
	require.NoError(t, err)

	keys := []string{"foo", "far", "bar", "car", "fo", ""}
	for _, k := range keys {
		tr.Insert(k)
	}
	assert.Equal(t, len(keys), tr.Len())

	for _, k := range keys {
		assert.True(t, tr.Contains(k), "Contains(%q)", k)
	}
	for _, k := range []string{"f", "ba", "fooo", "cars", "xyz"} {
		assert.False(t, tr.Contains(k), "Contains(%q)", k)
	}
}

func TestHasPrefix(t *testing.T) {
	tr, err := NewWithBucketCapacity(2)
	require.NoError(t, err)

	for _, k := range []string{"foo", "far", "bar", "car"} {
		tr.Insert(k)
	}

	for _, p := range []string{"", "f", "fo", "foo", "fa", "b", "ba", "bar", "c"} {
		assert.True(t, tr.HasPrefix(p), "HasPrefix(%q)", p)
	}
	for _, p := range []string{"x", "fooo", "fr", "bb", "card"} {
		assert.False(t, tr.HasPrefix(p), "HasPrefix(%q)", p)
	}
}

func TestInsert_Duplicates(t *testing.T) {
	tr, err := NewWithBucketCapacity(2)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		tr.Insert("a")
		tr.Insert("ab")
		tr.Insert("abc")
	}
	assert.Equal(t, 3, tr.Len())
}

func TestClear(t *testing.T) {
	tr, err := NewWithBucketCapacity(1)
	require.NoError(t, err)

	for _, k := range []string{"foo", "far", "bar", "car"} {
		tr.Insert(k)
	}
	tr.Clear()

	assert.NotNil(t, tr.root.bucket)
	assert.Equal(t, 0, tr.Len())
	for _, k := range []string{"foo", "far", "bar", "car"} {
		assert.False(t, tr.Contains(k))
		assert.False(t, tr.HasPrefix(k[:1]))
	}

	tr.Insert("foo")
	assert.True(t, tr.Contains("foo"))
}

func TestRepeatedPromotionOfSharedPrefix(t *testing.T) {
	const capacity = 4
	tr, err := NewWithBucketCapacity(capacity)
	require.NoError(t, err)

	// Every key shares "main." so the same path is promoted level after level.
	var keys []string
	for i := 0; i < capacity*6; i++ {
		keys = append(keys, fmt.Sprintf("main.frame%02d", i))
	}
	for _, k := range keys {
		tr.Insert(k)
	}

	promoted := 0
	n := tr.root
	for _, c := range []byte("main.frame") {
		require.Nil(t, n.bucket)
		promoted++
		n = n.children[c]
		require.NotNil(t, n)
	}
	assert.GreaterOrEqual(t, promoted, 2)

	assert.Equal(t, len(keys), tr.Len())
	for _, k := range keys {
		assert.True(t, tr.Contains(k), "lost %q across promotions", k)
	}
	assert.True(t, tr.HasPrefix("main.frame1"))
	assert.True(t, tr.HasPrefix("main.frame23"))
	assert.False(t, tr.HasPrefix("main.frame24"))
	assert.False(t, tr.Contains("main.frame"))
}

func TestMatchesPrefixAndSubstring(t *testing.T) {
	tr, err := NewWithBucketCapacity(2)
	require.NoError(t, err)

	for _, k := range []string{"runtime.", "sync.", "internal/"} {
		tr.Insert(k)
	}

	assert.True(t, tr.MatchesPrefix("runtime.goexit"))
	assert.True(t, tr.MatchesPrefix("sync.(*Mutex).Lock"))
	assert.False(t, tr.MatchesPrefix("main.main"))
	assert.False(t, tr.MatchesPrefix("sync"))

	assert.True(t, tr.MatchesSubstring("vendor/internal/poll.Wait"))
	assert.False(t, tr.MatchesSubstring("main.leaf"))
}

func TestRandomAgainstReference(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	tr, err := NewWithBucketCapacity(3)
	require.NoError(t, err)

	alphabet := "abc/"
	present := make(map[string]bool)
	for i := 0; i < 400; i++ {
		var sb strings.Builder
		for j := rng.Intn(7); j > 0; j-- {
			sb.WriteByte(alphabet[rng.Intn(len(alphabet))])
		}
		k := sb.String()
		tr.Insert(k)
		present[k] = true
	}
	require.Equal(t, len(present), tr.Len())

	hasPrefix := func(p string) bool {
		for k := range present {
			if strings.HasPrefix(k, p) {
				return true
			}
		}
		return false
	}

	for i := 0; i < 400; i++ {
		var sb strings.Builder
		for j := rng.Intn(8); j > 0; j-- {
			sb.WriteByte(alphabet[rng.Intn(len(alphabet))])
		}
		q := sb.String()
		require.Equal(t, present[q], tr.Contains(q), "Contains(%q)", q)
		require.Equal(t, hasPrefix(q), tr.HasPrefix(q), "HasPrefix(%q)", q)
	}
}

func TestConcurrentReaders(t *testing.T) {
	tr, err := NewWithBucketCapacity(2)
	require.NoError(t, err)
	for i := 0; i < 50; i++ {
		tr.Insert(fmt.Sprintf("k%d", i))
	}

	var wg sync.WaitGroup
	for r := 0; r < 8; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				assert.True(t, tr.Contains(fmt.Sprintf("k%d", i)))
			}
		}()
	}
	wg.Wait()
}
