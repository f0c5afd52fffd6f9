package registry

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/regulata/researchd/pkg/worklog"
)

func newWorkLog(t *testing.T, id string, ttl time.Duration) *worklog.WorkLog {
	t.Helper()
	w, err := worklog.New(id, worklog.KindResearchBasic, ttl)
	require.NoError(t, err)
	return w
}

func TestSetGetContainsDelete(t *testing.T) {
	r := New()

	assert.Nil(t, r.Get("exec-42"))
	assert.False(t, r.Contains("exec-42"))

	w := newWorkLog(t, "exec-42", 0)
	r.Set("exec-42", w)

	assert.True(t, r.Contains("exec-42"))
	assert.Same(t, w, r.Get("exec-42"))
	assert.Equal(t, 1, r.Len())

	assert.True(t, r.Delete("exec-42"))
	assert.False(t, r.Delete("exec-42"))
	assert.Nil(t, r.Get("exec-42"))
}

func TestUpdateStatus(t *testing.T) {
	r := New()
	w := newWorkLog(t, "exec-1", 0)
	r.Set("exec-1", w)

	assert.True(t, r.UpdateStatus("exec-1", worklog.StatusInProgress))
	assert.Equal(t, worklog.StatusInProgress, w.Status)

	assert.False(t, r.UpdateStatus("missing", worklog.StatusFailed))
}

func TestSharedReferenceVisibility(t *testing.T) {
	r := New()
	w := newWorkLog(t, "exec-1", 0)
	r.Set("exec-1", w)

	// The registry does not clone: writer mutations are visible through Get.
	w.FinalAnswer = "supplier X is compliant"
	assert.Equal(t, "supplier X is compliant", r.Get("exec-1").FinalAnswer)
}

func TestPurgeExpired(t *testing.T) {
	r := New()

	// No expiry set: never purged.
	r.Set("exec-42", newWorkLog(t, "exec-42", 0))
	assert.Equal(t, 0, r.PurgeExpired())
	assert.True(t, r.Contains("exec-42"))

	// Expiry one second in the past: removed.
	expired := newWorkLog(t, "exec-42", 0)
	past := time.Now().Add(-time.Second)
	expired.ExpiresAt = &past
	r.Set("exec-42", expired)

	assert.Equal(t, 1, r.PurgeExpired())
	assert.Nil(t, r.Get("exec-42"))
}

func TestPurgeExpiredCounts(t *testing.T) {
	r := New()
	past := time.Now().Add(-time.Minute)
	future := time.Now().Add(time.Hour)

	for i := 0; i < 3; i++ {
		w := newWorkLog(t, fmt.Sprintf("dead-%d", i), 0)
		w.ExpiresAt = &past
		r.Set(w.ID, w)
	}
	for i := 0; i < 2; i++ {
		w := newWorkLog(t, fmt.Sprintf("live-%d", i), 0)
		w.ExpiresAt = &future
		r.Set(w.ID, w)
	}
	r.Set("forever", newWorkLog(t, "forever", 0))

	assert.Equal(t, 3, r.PurgeExpired())
	assert.Equal(t, 3, r.Len())
	assert.True(t, r.Contains("forever"))
}

func TestPurgeDoesNotInvalidateHeldReference(t *testing.T) {
	r := New()
	w := newWorkLog(t, "exec-1", 0)
	past := time.Now().Add(-time.Second)
	w.ExpiresAt = &past
	r.Set("exec-1", w)

	held := r.Get("exec-1")
	require.NotNil(t, held)

	r.PurgeExpired()

	// The reader keeps its own reference after removal.
	assert.Equal(t, "exec-1", held.ID)
	assert.Nil(t, r.Get("exec-1"))
}

func TestConcurrentAccess(t *testing.T) {
	r := New()
	past := time.Now().Add(-time.Second)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				id := fmt.Sprintf("exec-%d-%d", n, j)
				w := &worklog.WorkLog{ID: id, Status: worklog.StatusPending}
				if j%2 == 0 {
					w.ExpiresAt = &past
				}
				r.Set(id, w)
				r.Get(id)
				r.Contains(id)
				r.UpdateStatus(id, worklog.StatusInProgress)
				if j%3 == 0 {
					r.PurgeExpired()
				}
			}
		}(i)
	}
	wg.Wait()

	// Everything still expired gets swept on the final pass.
	r.PurgeExpired()
	for _, id := range r.IDs() {
		assert.Nil(t, r.Get(id).ExpiresAt)
	}
}
