package jsonl_test

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/fsmgen/internal/testutils"
	"github.com/aretw0/fsmgen/pkg/adapters/jsonl"
	"github.com/aretw0/fsmgen/pkg/domain"
)

func TestLoadRequirements(t *testing.T) {
	path := testutils.WriteJSONL(t, "in.jsonl",
		map[string]string{"user_requirement": "An escrow."},
		map[string]string{"id": "custom", "user_requirement": "A vote.", "version": "0.8.19"},
	)

	reqs, err := jsonl.LoadRequirements(path)
	require.NoError(t, err)
	require.Len(t, reqs, 2)
	assert.Equal(t, "row-1", reqs[0].ID)
	assert.Equal(t, "An escrow.", reqs[0].UserRequirement)
	assert.Equal(t, "custom", reqs[1].ID)
	assert.Equal(t, "0.8.19", reqs[1].Version)
}

func TestRead(t *testing.T) {
	t.Run("SkipsBlankLines", func(t *testing.T) {
		rows, err := jsonl.Read[domain.Record](strings.NewReader("{\"model\":\"a\"}\n\n  \n{\"model\":\"b\"}\n"))
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "b", rows[1].Model)
	})

	t.Run("ReportsLineNumber", func(t *testing.T) {
		_, err := jsonl.Read[domain.Record](strings.NewReader("{}\n{oops\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "line 2")
	})

	t.Run("MissingFile", func(t *testing.T) {
		_, err := jsonl.LoadRequirements("does-not-exist.jsonl")
		assert.Error(t, err)
	})
}

func TestSink(t *testing.T) {
	var buf bytes.Buffer
	sink := jsonl.NewSink(&buf)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, sink.Append(ctx, domain.Record{ID: fmt.Sprint(i), Code: strings.Repeat("x", 500)}))
		}(i)
	}
	wg.Wait()
	require.NoError(t, sink.Close())

	rows, err := jsonl.Read[domain.Record](&buf)
	require.NoError(t, err)
	assert.Len(t, rows, 20)
}

func TestOpenSink_Appends(t *testing.T) {
	path := testutils.WriteJSONL(t, "out.jsonl", domain.Record{ID: "old"})

	sink, err := jsonl.OpenSink(path)
	require.NoError(t, err)
	require.NoError(t, sink.Append(context.Background(), domain.Record{
		ID: "new", FSMOutcome: domain.OutcomeAccepted, CodeOutcome: domain.OutcomeExhausted,
	}))
	require.NoError(t, sink.Close())

	rows, err := jsonl.ReadFile[domain.Record](path)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "old", rows[0].ID)
	assert.Equal(t, domain.OutcomeExhausted, rows[1].CodeOutcome)
}

func TestSink_CanceledContext(t *testing.T) {
	var buf bytes.Buffer
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, jsonl.NewSink(&buf).Append(ctx, domain.Record{}), context.Canceled)
	assert.Zero(t, buf.Len())
}
