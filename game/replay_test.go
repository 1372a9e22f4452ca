package game

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplayDeterminism(t *testing.T) {
	// P5：(seed, actions) 重放必须得到逐字节相同的终局
	cfg := DefaultConfig()
	for seed := int64(1); seed <= 10; seed++ {
		g := playout(t, seed, cfg)

		record, err := SealRecord(g)
		require.NoError(t, err)

		replayed, err := Replay(record)
		require.NoError(t, err, "seed=%d", seed)

		wantHands, err := json.Marshal(record.FinalHands)
		require.NoError(t, err)
		gotHands, err := json.Marshal(replayed.FinalHands)
		require.NoError(t, err)
		assert.Equal(t, string(wantHands), string(gotHands), "seed=%d", seed)

		wantSettle, err := json.Marshal(record.Settlement)
		require.NoError(t, err)
		gotSettle, err := json.Marshal(replayed.Settlement)
		require.NoError(t, err)
		assert.Equal(t, string(wantSettle), string(gotSettle), "seed=%d", seed)
	}
}

func TestReplayAllSuits(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Tiles = TilesAllSuits
	g := playout(t, 11, cfg)

	record, err := SealRecord(g)
	require.NoError(t, err)
	replayed, err := Replay(record)
	require.NoError(t, err)
	assert.Equal(t, record.FinalHands, replayed.FinalHands)
}

func TestSealRejectsUnfinishedGame(t *testing.T) {
	cfg := DefaultConfig()
	g := NewGameState("123456", "game-s", cfg, 3, 0, 0, [3]int64{101, 102, 103})
	require.NoError(t, g.Deal())
	_, err := SealRecord(g)
	require.Error(t, err)
}

func TestReplaySurvivesJSONRoundTrip(t *testing.T) {
	// 落库读回后的记录仍可重放
	cfg := DefaultConfig()
	g := playout(t, 5, cfg)
	record, err := SealRecord(g)
	require.NoError(t, err)

	data, err := json.Marshal(record)
	require.NoError(t, err)
	var restored GameRecord
	require.NoError(t, json.Unmarshal(data, &restored))

	replayed, err := Replay(&restored)
	require.NoError(t, err)
	assert.Equal(t, record.FinalHands, replayed.FinalHands)
}
