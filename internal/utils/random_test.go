package utils

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateRequestID(t *testing.T) {
	id1 := GenerateRequestID()
	id2 := GenerateRequestID()

	assert.Regexp(t, "^[0-9a-f]{16}$", id1)
	assert.Regexp(t, "^[0-9a-f]{16}$", id2)
	assert.NotEqual(t, id1, id2)
}

func TestGenerateMessageID(t *testing.T) {
	id := GenerateMessageID()
	assert.True(t, strings.HasPrefix(id, "msg_"))
	assert.Regexp(t, "^[0-9a-f]{12}$", strings.TrimPrefix(id, "msg_"))
}

func TestGenerateRequestID_Concurrent(t *testing.T) {
	const workers = 50
	ids := make(chan string, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids <- GenerateRequestID()
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]bool)
	for id := range ids {
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
	assert.Len(t, seen, workers)
}
