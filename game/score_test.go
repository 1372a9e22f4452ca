package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scenarioConfig 验收场景用的规则：万牌局，只开七对/碰碰胡/自摸/边张
func scenarioConfig() Config {
	cfg := DefaultConfig()
	cfg.Tiles = TilesWanOnly
	cfg.HuTypes = HuSevenPairs | HuAllPungs | HuSelfDraw | HuEdgeWait
	cfg.Score = ScoreConfig{
		BaseScore:      10,
		DealerMult:     2.0,
		SelfDrawBonus:  0.5,
		GangBonus:      5,
		MaxScore:       1000,
		MultiWinner:    true,
		DiscarderRatio: 1.0,
		BystanderRatio: 0.25,
	}
	return cfg
}

func scenarioPlayers() [3]*PlayerState {
	var players [3]*PlayerState
	for i := 0; i < 3; i++ {
		players[i] = NewPlayerState(i, int64(100+i))
	}
	return players
}

func TestScenarioBasicSelfDraw(t *testing.T) {
	// 庄家 A 自摸，基础 1 番 + 自摸 1 番 = 2 番
	// 10×2 = 20 → ×2 庄家 = 40 → ×1.5 自摸 = 60；B、C 各付 30
	cfg := scenarioConfig()
	players := scenarioPlayers()

	hand := tiles(t, "1W", "1W", "3W", "4W", "5W", "6W", "7W", "8W", "8W", "8W", "9W", "9W", "9W")
	analysis, err := AnalyzeWin(hand, nil, mustTile(t, "2W"), true, 4)
	require.NoError(t, err)

	fan := FanFor(analysis, &cfg)
	assert.Equal(t, 2, fan)

	st := SettleWin([]HuClaim{{Seat: 0, Analysis: analysis}}, -1, 0, players, &cfg)
	assert.Equal(t, [3]int{60, -30, -30}, st.Totals)
	assert.Equal(t, 60, st.Winners[0].Score)
	assertZeroSum(t, st)
}

func TestScenarioDiscardEdgeWait(t *testing.T) {
	// C 打出 3W，B 以 1W2W 边张和牌：1 + 1(边张) = 2 番，得分 20
	// C 付 20，A 付 5，B 收 25 → A -5, B +25, C -20
	cfg := scenarioConfig()
	players := scenarioPlayers()

	hand := tiles(t, "1W", "2W", "5W", "5W", "5W", "6W", "6W", "6W", "7W", "7W", "7W", "9W", "9W")
	analysis, err := AnalyzeWin(hand, nil, mustTile(t, "3W"), false, 4)
	require.NoError(t, err)
	assert.Equal(t, WaitEdge, analysis.Wait)

	fan := FanFor(analysis, &cfg)
	assert.Equal(t, 2, fan)

	st := SettleWin([]HuClaim{{Seat: 1, Analysis: analysis}}, 2, 0, players, &cfg)
	assert.Equal(t, [3]int{-5, 25, -20}, st.Totals)
	assertZeroSum(t, st)
}

func TestScenarioSevenPairsSelfDraw(t *testing.T) {
	// C 自摸七对：1 + 1(自摸) + 4(七对) = 6 番
	// 10×6 = 60 ×1.5 = 90；A、B 各付 45
	cfg := scenarioConfig()
	players := scenarioPlayers()

	hand := tiles(t, "1W", "1W", "2W", "2W", "3W", "3W", "4W", "4W", "5W", "5W", "6W", "6W", "7W")
	analysis, err := AnalyzeWin(hand, nil, mustTile(t, "7W"), true, 4)
	require.NoError(t, err)
	assert.True(t, analysis.SevenPairs)

	fan := FanFor(analysis, &cfg)
	assert.Equal(t, 6, fan)

	st := SettleWin([]HuClaim{{Seat: 2, Analysis: analysis}}, -1, 0, players, &cfg)
	assert.Equal(t, [3]int{-45, -45, 90}, st.Totals)
	assertZeroSum(t, st)
}

func TestFanCap(t *testing.T) {
	cfg := DefaultConfig()
	// 四暗刻 +13 封顶在 13
	hand := tiles(t, "1W", "1W", "1W", "3W", "3W", "3W", "5W", "5W", "5W", "7W", "7W", "7W", "9W")
	analysis, err := AnalyzeWin(hand, nil, mustTile(t, "9W"), true, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, analysis.ConcealedPungs)
	assert.Equal(t, FanCap, FanFor(analysis, &cfg))
}

func TestScoreCapClamp(t *testing.T) {
	cfg := scenarioConfig()
	cfg.Score.MaxScore = 50
	players := scenarioPlayers()

	hand := tiles(t, "1W", "1W", "2W", "2W", "3W", "3W", "4W", "4W", "5W", "5W", "6W", "6W", "7W")
	analysis, err := AnalyzeWin(hand, nil, mustTile(t, "7W"), true, 4)
	require.NoError(t, err)

	st := SettleWin([]HuClaim{{Seat: 2, Analysis: analysis}}, -1, 0, players, &cfg)
	assert.Equal(t, 50, st.Winners[0].Score)
	assertZeroSum(t, st)
}

func TestGangBonuses(t *testing.T) {
	cfg := scenarioConfig()
	players := scenarioPlayers()
	players[0].Melds = []Meld{
		{Kind: MeldGang, GangKind: GangAn, Tiles: tiles(t, "5W", "5W", "5W", "5W"), ClaimedFrom: -1, Concealed: true},
	}
	players[1].Melds = []Meld{
		{Kind: MeldGang, GangKind: GangMing, Tiles: tiles(t, "3W", "3W", "3W", "3W"), ClaimedFrom: 2},
	}

	deltas := GangBonuses(players, cfg.Score)
	// 座位 0 暗杠每家收 20；座位 1 明杠每家收 10
	assert.Equal(t, 40-10, deltas[0])
	assert.Equal(t, 20-20, deltas[1])
	assert.Equal(t, -10-20, deltas[2])
	assert.Zero(t, deltas[0]+deltas[1]+deltas[2])
}

func TestDrawOutSettlementKeepsGangBonus(t *testing.T) {
	cfg := scenarioConfig()
	players := scenarioPlayers()
	players[1].Melds = []Meld{
		{Kind: MeldGang, GangKind: GangBu, Tiles: tiles(t, "4W", "4W", "4W", "4W"), ClaimedFrom: 0},
	}

	st := SettleDraw(players, &cfg)
	assert.Equal(t, SettleDrawOut, st.Kind)
	assert.Equal(t, [3]int{-10, 20, -10}, st.Totals)
	assertZeroSum(t, st)
}

func TestMultiWinnerFanScaling(t *testing.T) {
	cfg := scenarioConfig()
	players := scenarioPlayers()

	handB := tiles(t, "1W", "2W", "5W", "5W", "5W", "6W", "6W", "6W", "7W", "7W", "7W", "9W", "9W")
	analysisB, err := AnalyzeWin(handB, nil, mustTile(t, "3W"), false, 4)
	require.NoError(t, err)
	handC := tiles(t, "3W", "3W", "4W", "5W", "8W", "8W", "8W", "1W", "1W", "1W", "2W", "2W", "2W")
	analysisC, err := AnalyzeWin(handC, nil, mustTile(t, "3W"), false, 4)
	require.NoError(t, err)

	claims := []HuClaim{{Seat: 1, Analysis: analysisB}, {Seat: 2, Analysis: analysisC}}
	st := SettleWin(claims, 0, 0, players, &cfg)
	require.Len(t, st.Winners, 2)
	for _, w := range st.Winners {
		assert.GreaterOrEqual(t, w.Fan, 1)
		assert.LessOrEqual(t, w.Fan, w.RawFan)
	}
	assertZeroSum(t, st)
}

func TestUniqueWinnerSelection(t *testing.T) {
	cfg := scenarioConfig()
	cfg.Score.MultiWinner = false
	players := scenarioPlayers()

	handB := tiles(t, "1W", "2W", "5W", "5W", "5W", "6W", "6W", "6W", "7W", "7W", "7W", "9W", "9W")
	analysisB, err := AnalyzeWin(handB, nil, mustTile(t, "3W"), false, 4)
	require.NoError(t, err)
	handC := tiles(t, "3W", "3W", "4W", "5W", "8W", "8W", "8W", "1W", "1W", "1W", "2W", "2W", "2W")
	analysisC, err := AnalyzeWin(handC, nil, mustTile(t, "3W"), false, 4)
	require.NoError(t, err)

	// B 有边张 2 番，C 只有 1 番 → B 胜出
	claims := []HuClaim{{Seat: 2, Analysis: analysisC}, {Seat: 1, Analysis: analysisB}}
	st := SettleWin(claims, 0, 0, players, &cfg)
	require.Len(t, st.Winners, 1)
	assert.Equal(t, 1, st.Winners[0].Seat)
	assertZeroSum(t, st)
}

func TestSelfDrawRemainderAbsorption(t *testing.T) {
	cfg := scenarioConfig()
	cfg.Score.BaseScore = 5 // 5×2番=10 ×2庄=20 ... 构造奇数分
	players := scenarioPlayers()

	hand := tiles(t, "1W", "1W", "3W", "4W", "5W", "6W", "7W", "8W", "8W", "8W", "9W", "9W", "9W")
	analysis, err := AnalyzeWin(hand, nil, mustTile(t, "2W"), true, 4)
	require.NoError(t, err)

	// 非庄家赢：5×2=10 ×1.5=15，均摊 7，庄家(座位0)补余数 1
	st := SettleWin([]HuClaim{{Seat: 1, Analysis: analysis}}, -1, 0, players, &cfg)
	assert.Equal(t, [3]int{-8, 15, -7}, st.Totals)
	assertZeroSum(t, st)
}

func assertZeroSum(t *testing.T, st *Settlement) {
	t.Helper()
	sum := 0
	for _, d := range st.Totals {
		sum += d
	}
	assert.Zero(t, sum, "结算必须零和: %+v", st.Totals)
}
