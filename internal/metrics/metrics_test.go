package metrics

import (
	"bytes"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_Mutations(t *testing.T) {
	c := New()

	c.ObserveMutation("create_task", OutcomeApplied)
	c.ObserveMutation("create_task", OutcomeApplied)
	c.ObserveMutation("create_task", OutcomeRejected)
	c.ObserveMutation("delete_project", OutcomeNotFound)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.mutations.WithLabelValues("create_task", OutcomeApplied)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.mutations.WithLabelValues("create_task", OutcomeRejected)))
	assert.Equal(t, 3, testutil.CollectAndCount(c.mutations))
}

func TestCollector_EntitiesAndPersist(t *testing.T) {
	c := New()
	c.SetEntities(2, 5)
	c.ObservePersist(3 * time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.entities.WithLabelValues("project")))
	assert.Equal(t, 5.0, testutil.ToFloat64(c.entities.WithLabelValues("task")))
	assert.Equal(t, 1, testutil.CollectAndCount(c.persist))
}

func TestCollector_WriteText(t *testing.T) {
	c := New()
	c.ObserveMutation("update_task", OutcomeFailed)
	c.SetEntities(1, 1)

	var buf bytes.Buffer
	require.NoError(t, c.WriteText(&buf))

	out := buf.String()
	assert.Contains(t, out, `taskdeck_store_mutations_total{op="update_task",outcome="failed"} 1`)
	assert.Contains(t, out, `taskdeck_store_entities{kind="task"} 1`)
	assert.Contains(t, out, "# TYPE taskdeck_store_persist_seconds histogram")
}

func TestCollector_IndependentRegistries(t *testing.T) {
	a, b := New(), New()
	a.ObserveMutation("x", OutcomeApplied)
	assert.Equal(t, 0, testutil.CollectAndCount(b.mutations))
}
