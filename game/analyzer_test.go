package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeBasicWin(t *testing.T) {
	// 1W1W 3W4W 5W6W7W 8W8W8W 9W9W9W 和 2W，两面听
	hand := tiles(t, "1W", "1W", "3W", "4W", "5W", "6W", "7W", "8W", "8W", "8W", "9W", "9W", "9W")
	a, err := AnalyzeWin(hand, nil, mustTile(t, "2W"), true, 4)
	require.NoError(t, err)
	assert.False(t, a.SevenPairs)
	assert.False(t, a.AllPungs)
	assert.True(t, a.AllSameSuit)
	assert.True(t, a.AllConcealed)
	assert.True(t, a.SelfDraw)
	assert.Equal(t, WaitTwoSided, a.Wait)
}

func TestAnalyzeInvalidWin(t *testing.T) {
	// 差一张成型
	hand := tiles(t, "1W", "1W", "3W", "4W", "5W", "6W", "7W", "8W", "8W", "8W", "9W", "9W", "2W")
	_, err := AnalyzeWin(hand, nil, mustTile(t, "5W"), false, 4)
	require.Error(t, err)
	assert.Equal(t, CodeInvalidWin, CodeOf(err))
}

func TestAnalyzeTileCountMismatch(t *testing.T) {
	hand := tiles(t, "1W", "1W", "2W")
	_, err := AnalyzeWin(hand, nil, mustTile(t, "1W"), false, 4)
	require.Error(t, err)
	assert.Equal(t, CodeInvalidWin, CodeOf(err))
}

func TestAnalyzeSevenPairs(t *testing.T) {
	hand := tiles(t, "1W", "1W", "2W", "2W", "3W", "3W", "4W", "4W", "5W", "5W", "6W", "6W", "7W")
	a, err := AnalyzeWin(hand, nil, mustTile(t, "7W"), true, 4)
	require.NoError(t, err)
	assert.True(t, a.SevenPairs)
	assert.True(t, a.AllConcealed)

	// 四张一样的不是两对：不计七对，按 11 123 123 456 456 标准型和牌
	bad := tiles(t, "1W", "1W", "1W", "1W", "2W", "2W", "3W", "3W", "4W", "4W", "5W", "5W", "6W")
	a, err = AnalyzeWin(bad, nil, mustTile(t, "6W"), true, 4)
	require.NoError(t, err)
	assert.False(t, a.SevenPairs)
}

func TestAnalyzeEdgeWait(t *testing.T) {
	// 1W2W 听 3W 是边张
	hand := tiles(t, "1W", "2W", "5W", "5W", "5W", "6W", "6W", "6W", "7W", "7W", "7W", "9W", "9W")
	a, err := AnalyzeWin(hand, nil, mustTile(t, "3W"), false, 4)
	require.NoError(t, err)
	assert.Equal(t, WaitEdge, a.Wait)

	// 8W9W 听 7W 也是边张
	hand = tiles(t, "8W", "9W", "1W", "1W", "1W", "2W", "2W", "2W", "3W", "3W", "3W", "5W", "5W")
	a, err = AnalyzeWin(hand, nil, mustTile(t, "7W"), false, 4)
	require.NoError(t, err)
	assert.Equal(t, WaitEdge, a.Wait)
}

func TestAnalyzeMiddleWait(t *testing.T) {
	// 3W5W 听 4W 嵌张
	hand := tiles(t, "3W", "5W", "6W", "6W", "6W", "7W", "7W", "7W", "8W", "8W", "8W", "9W", "9W")
	a, err := AnalyzeWin(hand, nil, mustTile(t, "4W"), false, 4)
	require.NoError(t, err)
	assert.Equal(t, WaitMiddle, a.Wait)
}

func TestAnalyzePairWait(t *testing.T) {
	// 单骑 9W
	hand := tiles(t, "1W", "2W", "3W", "4W", "5W", "6W", "7W", "8W", "9W", "1W", "2W", "3W", "9W")
	a, err := AnalyzeWin(hand, nil, mustTile(t, "9W"), true, 4)
	require.NoError(t, err)
	// 9W 也可能落进 789 顺子，听型不唯一
	assert.Contains(t, []WaitKind{WaitPair, WaitMultiple}, a.Wait)

	// 纯单骑
	hand = tiles(t, "1W", "1W", "1W", "3W", "3W", "3W", "5W", "5W", "5W", "7W", "7W", "7W", "9W")
	a, err = AnalyzeWin(hand, nil, mustTile(t, "9W"), true, 4)
	require.NoError(t, err)
	assert.Equal(t, WaitPair, a.Wait)
	assert.True(t, a.AllPungs)
	assert.Equal(t, 4, a.ConcealedPungs)
}

func TestAnalyzeAllPungsWithMelds(t *testing.T) {
	melds := []Meld{
		{Kind: MeldPeng, Tiles: tiles(t, "2W", "2W", "2W"), ClaimedFrom: 1},
	}
	hand := tiles(t, "1W", "1W", "1W", "3W", "3W", "3W", "5W", "5W", "5W", "9W")
	a, err := AnalyzeWin(hand, melds, mustTile(t, "9W"), false, 4)
	require.NoError(t, err)
	assert.True(t, a.AllPungs)
	assert.False(t, a.AllConcealed)
	// 碰出去的刻子不算暗刻
	assert.Equal(t, 3, a.ConcealedPungs)
}

func TestAnalyzeConcealedPungDiscardAdjustment(t *testing.T) {
	// 点炮完成的刻子不算暗刻
	hand := tiles(t, "1W", "1W", "3W", "3W", "3W", "5W", "5W", "5W", "7W", "7W", "7W", "9W", "9W")
	a, err := AnalyzeWin(hand, nil, mustTile(t, "9W"), false, 4)
	require.NoError(t, err)
	assert.Equal(t, 3, a.ConcealedPungs)

	// 自摸完成的算
	a, err = AnalyzeWin(hand, nil, mustTile(t, "9W"), true, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, a.ConcealedPungs)
}

func TestAnalyzeGangCount(t *testing.T) {
	melds := []Meld{
		{Kind: MeldGang, GangKind: GangAn, Tiles: tiles(t, "2W", "2W", "2W", "2W"), ClaimedFrom: -1, Concealed: true},
	}
	// 13-3=10 张手牌 + 和牌张
	hand := tiles(t, "1W", "1W", "1W", "3W", "3W", "3W", "5W", "5W", "5W", "9W")
	a, err := AnalyzeWin(hand, melds, mustTile(t, "9W"), true, 4)
	require.NoError(t, err)
	assert.Equal(t, 1, a.ConcealedGangs)
	assert.True(t, a.AllConcealed)
	assert.True(t, a.AllPungs)
}

func TestWinningTilesRoundTrip(t *testing.T) {
	// 往返律：t ∈ WinningTiles(h) ⇔ AnalyzeWin(h, t) 通过
	hands := [][]Tile{
		tiles(t, "1W", "1W", "3W", "4W", "5W", "6W", "7W", "8W", "8W", "8W", "9W", "9W", "9W"),
		tiles(t, "1W", "1W", "2W", "2W", "3W", "3W", "4W", "4W", "5W", "5W", "6W", "6W", "7W"),
		tiles(t, "1W", "2W", "3W", "4W", "5W", "6W", "7W", "8W", "9W", "2W", "3W", "4W", "5W"),
	}
	ht := DefaultConfig().HuTypes
	for _, hand := range hands {
		winning := WinningTiles(hand, nil, TilesWanOnly, ht, 4)
		winningSet := map[Tile]bool{}
		for _, w := range winning {
			winningSet[w] = true
		}
		for r := int8(1); r <= 9; r++ {
			tile := Tile{Suit: SuitWan, Rank: r}
			_, err := AnalyzeWin(hand, nil, tile, true, 4)
			if winningSet[tile] {
				assert.NoError(t, err, "WinningTiles 报 %v 可和但分析失败", tile)
			} else {
				assert.Error(t, err, "WinningTiles 漏掉 %v", tile)
			}
		}
	}
}
