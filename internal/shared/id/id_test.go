package id

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	gen := NewGenerator()

	assert.NotEqual(t, gen.Generate().String(), gen.Generate().String())
	assert.Len(t, gen.GenerateString(), 26)
}

func TestGenerateWithPrefix(t *testing.T) {
	gen := NewGenerator()

	for _, prefix := range []string{SessionPrefix, SuspendPrefix} {
		id := gen.GenerateWithPrefix(prefix)

		require.True(t, strings.HasPrefix(id, prefix+"_"), id)
		assert.True(t, IsValid(id))
	}
}

func TestTypedIDs(t *testing.T) {
	sess := NewSessionID()
	susp := NewSuspendID()

	assert.True(t, strings.HasPrefix(sess.String(), "sess_"))
	assert.True(t, strings.HasPrefix(susp.String(), "susp_"))
	assert.True(t, IsValid(sess.String()))
}

func TestTimestamp(t *testing.T) {
	before := time.Now().Add(-time.Second)
	ts, err := Timestamp(NewSessionID().String())
	require.NoError(t, err)
	assert.True(t, ts.After(before))

	_, err = Timestamp("sess_not-a-ulid")
	assert.Error(t, err)
}

func TestDeterministicEntropy(t *testing.T) {
	gen := NewGeneratorWithEntropy(bytes.NewReader(make([]byte, 64)))
	assert.True(t, IsValid(gen.GenerateString()))
}

func TestConcurrentGeneration(t *testing.T) {
	gen := NewGenerator()
	seen := sync.Map{}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := gen.GenerateString()
			_, dup := seen.LoadOrStore(id, true)
			assert.False(t, dup)
		}()
	}
	wg.Wait()
}
