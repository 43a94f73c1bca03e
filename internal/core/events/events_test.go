package events_test

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/LeJamon/goAMM/internal/core/events"
	"github.com/LeJamon/goAMM/internal/core/events/mock_events"
	"github.com/LeJamon/goAMM/internal/core/ledger"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func sampleEvents() []events.Event {
	alice := ledger.AccountFromName("alice")
	return []events.Event{
		events.PoolCreated{PoolID: 1, Asset0: 1, Asset1: 2, LiquidityAsset: 1 << 32, Creator: alice, FeeMultiplier: 997},
		events.Sync{PoolID: 1, Reserve0: 10, Reserve1: 20},
		events.SetFeeTo{Setter: alice, FeeTo: alice, Enabled: true},
	}
}

func TestRecorder(t *testing.T) {
	r := events.NewRecorder()
	require.NoError(t, r.Emit(context.Background(), sampleEvents()))
	assert.Equal(t, []events.Kind{events.KindPoolCreated, events.KindSync, events.KindSetFeeTo}, r.Kinds())
	assert.Len(t, r.Events(), 3)

	r.Reset()
	assert.Empty(t, r.Events())
}

func TestJSONLSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "events.jsonl")
	sink := events.NewJSONLSink(path)
	require.NoError(t, sink.Emit(context.Background(), sampleEvents()))
	require.NoError(t, sink.Emit(context.Background(), nil))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var kinds []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var rec struct {
			Kind    string          `json:"kind"`
			PoolID  uint32          `json:"pool_id"`
			Payload json.RawMessage `json:"payload"`
		}
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &rec))
		kinds = append(kinds, rec.Kind)
	}
	require.NoError(t, scanner.Err())
	assert.Equal(t, []string{"PoolCreated", "Sync", "SetFeeTo"}, kinds)
}

func TestLogSink(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	sink := events.NewLogSink(zap.New(core))

	require.NoError(t, sink.Emit(context.Background(), sampleEvents()))
	require.Equal(t, 3, logs.Len())
	assert.Equal(t, "Sync", logs.All()[1].ContextMap()["kind"])
}

func TestSQLSinkSQLite(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "events.db")

	sink, err := events.NewSQLSink(ctx, events.DriverSQLite, dsn)
	require.NoError(t, err)
	defer sink.Close()

	require.NoError(t, sink.Emit(ctx, sampleEvents()))

	all, err := sink.Recent(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, events.KindSetFeeTo, all[0].Kind)

	pool1, err := sink.Recent(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, pool1, 2)
	assert.Equal(t, events.KindSync, pool1[0].Kind)

	var sync events.Sync
	require.NoError(t, json.Unmarshal(pool1[0].Payload, &sync))
	assert.Equal(t, uint64(20), sync.Reserve1)
}

func TestSQLSinkUnknownDriver(t *testing.T) {
	_, err := events.NewSQLSink(context.Background(), "oracle", "")
	assert.Error(t, err)
}

func TestMultiPropagatesErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	failing := mock_events.NewMockSink(ctrl)
	boom := errors.New("boom")
	failing.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(boom)
	failing.EXPECT().Close().Return(nil)

	rec := events.NewRecorder()
	multi := events.NewMulti(rec, failing)

	err := multi.Emit(context.Background(), sampleEvents())
	assert.ErrorIs(t, err, boom)
	assert.Len(t, rec.Events(), 3)
	assert.NoError(t, multi.Close())
}
