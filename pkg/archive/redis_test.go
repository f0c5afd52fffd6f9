package archive

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/regulata/researchd/pkg/worklog"
)

func TestKeySeparatesTurns(t *testing.T) {
	assert.Equal(t, "run:exec-1:turn:0", Key("exec-1", 0))
	assert.NotEqual(t, Key("exec-1", 0), Key("exec-1", 1))
}

func TestRecordCarriesExportedStore(t *testing.T) {
	w, err := worklog.New("exec-1", worklog.KindResearchBasic, time.Hour)
	require.NoError(t, err)
	require.NoError(t, w.DataStore.StoreToRepo(worklog.RepoFindings, "f1", "finding"))
	w.Status = worklog.StatusCompleted
	w.FinalAnswer = "done"

	storeJSON, err := w.DataStore.ToJSON()
	require.NoError(t, err)

	record := Record{
		ID:          w.ID,
		Kind:        w.Kind,
		Status:      w.Status,
		FinalAnswer: w.FinalAnswer,
		Tasks:       w.Snapshot().Tasks,
		Store:       json.RawMessage(storeJSON),
	}
	data, err := json.Marshal(record)
	require.NoError(t, err)

	var decoded Record
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, worklog.StatusCompleted, decoded.Status)
	assert.Len(t, decoded.Tasks, 3)

	// The embedded store re-imports into a fresh datastore.
	fresh, err := worklog.New("exec-2", worklog.KindResearchBasic, time.Hour)
	require.NoError(t, err)
	require.NoError(t, fresh.DataStore.FromJSON(string(decoded.Store)))
	n, err := fresh.DataStore.RepoLength(worklog.RepoFindings)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
