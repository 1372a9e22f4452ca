package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// playout 用托管策略把一局确定性地打完，每步校验不变式
func playout(t *testing.T, seed int64, cfg Config) *GameState {
	t.Helper()
	g := NewGameState("123456", "game-test", cfg, seed, 0, 0, [3]int64{101, 102, 103})
	require.NoError(t, g.Deal())

	for steps := 0; g.Phase == PhasePlaying; steps++ {
		require.Less(t, steps, 2000, "对局未收敛")

		if w := g.Window; w != nil {
			seat := w.UndecidedSeats()[0]
			action, ok := TrusteeDecide(g, seat)
			require.True(t, ok)
			_, err := g.Decide(seat, action)
			require.NoError(t, err)
			continue
		}

		seat := g.CurrentSeat
		p := g.Players[seat]

		if g.pendingReplacement {
			if _, err := g.DrawReplacement(seat); err != nil {
				require.Equal(t, CodeWallExhausted, CodeOf(err))
				require.NoError(t, g.DrawOut())
			}
			continue
		}
		if p.HandSize() == g.concealedPreDraw(p) {
			if _, err := g.DrawFor(seat); err != nil {
				require.Equal(t, CodeWallExhausted, CodeOf(err))
				require.NoError(t, g.DrawOut())
			}
			continue
		}

		action, ok := TrusteeDecide(g, seat)
		require.True(t, ok)
		switch action.Kind {
		case ActionHu:
			require.NoError(t, g.SelfDrawHu(seat))
		case ActionPlay:
			_, err := g.Discard(seat, action.Tile)
			require.NoError(t, err)
		default:
			t.Fatalf("托管给出意外动作: %s", action.Kind)
		}
	}

	require.Equal(t, PhaseSettlement, g.Phase)
	require.NotNil(t, g.Settlement)
	return g
}

func TestPlayoutInvariantsAcrossSeeds(t *testing.T) {
	cfg := DefaultConfig()
	for seed := int64(1); seed <= 25; seed++ {
		g := playout(t, seed, cfg)

		// P4 日志序号从 1 起无空洞
		for i, entry := range g.Actions {
			assert.Equal(t, i+1, entry.Seq, "seed=%d", seed)
		}

		// P7 结算零和
		sum := 0
		for _, d := range g.Settlement.Totals {
			sum += d
		}
		assert.Zero(t, sum, "seed=%d", seed)

		// 终局手牌与牌墙守恒
		total := g.Wall.Remaining() + len(g.DiscardPile)
		for _, p := range g.Players {
			total += len(p.Hand)
			for _, m := range p.Melds {
				total += len(m.Tiles)
			}
		}
		assert.Equal(t, cfg.Tiles.DeckSize(), total, "seed=%d", seed)
	}
}

func TestPlayoutAllSuits(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Tiles = TilesAllSuits
	g := playout(t, 7, cfg)
	assert.NotNil(t, g.Settlement)
}

// riggedState 手工布局：指定三家手牌，其余牌按序进墙
func riggedState(t *testing.T, cfg Config, hands [3][]Tile, currentSeat int) *GameState {
	t.Helper()
	g := NewGameState("123456", "game-rig", cfg, 1, 0, 0, [3]int64{101, 102, 103})
	require.NoError(t, g.Deal())

	var used tileCounts
	for i := 0; i < 3; i++ {
		g.Players[i].Hand = append([]Tile{}, hands[i]...)
		for _, tile := range hands[i] {
			used.add(tile, 1)
		}
	}

	deck := BuildDeck(cfg.Tiles)
	wallTiles := make([]Tile, 0, len(deck))
	for _, tile := range deck {
		if used.get(tile) > 0 {
			used.add(tile, -1)
			continue
		}
		wallTiles = append(wallTiles, tile)
	}
	g.Wall = &Wall{tiles: wallTiles, head: 0, tail: len(wallTiles) - 1}
	g.DiscardPile = g.DiscardPile[:0]
	g.CurrentSeat = currentSeat
	g.Players[currentSeat].drewThisTurn = true
	require.NoError(t, g.CheckInvariants())
	return g
}

func TestClaimPriorityHuOverPeng(t *testing.T) {
	// A 打 5W；B 能碰，C 能胡。两家都在窗口内提交，胡必须赢
	cfg := DefaultConfig()
	cfg.Tiles = TilesAllSuits
	hands := [3][]Tile{
		// A：14 张，含 5W
		tiles(t, "5W", "1T", "1T", "2T", "2T", "3T", "3T", "4T", "4T", "6T", "6T", "7T", "7T", "8T"),
		// B：两张 5W 可碰
		tiles(t, "5W", "5W", "1C", "2C", "3C", "4C", "6C", "7C", "8C", "9C", "9C", "8C", "2C"),
		// C：3W4W 听 2W/5W
		tiles(t, "3W", "4W", "6W", "6W", "6W", "7W", "7W", "7W", "8W", "8W", "9W", "9W", "9W"),
	}
	g := riggedState(t, cfg, hands, 0)

	res, err := g.Discard(0, mustTile(t, "5W"))
	require.NoError(t, err)
	require.False(t, res.Closed)
	require.NotNil(t, g.Window)
	assert.True(t, g.Window.HasKind(1, ActionPeng))
	assert.True(t, g.Window.HasKind(2, ActionHu))

	// B 先碰
	res, err = g.Decide(1, PlayerAction{Kind: ActionPeng})
	require.NoError(t, err)
	assert.False(t, res.Closed, "窗口必须等 C 决定")

	// C 后到的胡抢占 B 的碰
	res, err = g.Decide(2, PlayerAction{Kind: ActionHu})
	require.NoError(t, err)
	assert.True(t, res.Closed)
	assert.True(t, res.Won)
	require.Equal(t, PhaseSettlement, g.Phase)
	require.Len(t, g.Settlement.Winners, 1)
	assert.Equal(t, 2, g.Settlement.Winners[0].Seat)

	// 窗口关闭后 B 再动作报 CLAIM_WINDOW_CLOSED
	_, err = g.Decide(1, PlayerAction{Kind: ActionPeng})
	require.Error(t, err)
	assert.Equal(t, CodeClaimWindowClosed, CodeOf(err))
}

func TestClaimAllPassAdvancesTurn(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Tiles = TilesAllSuits
	hands := [3][]Tile{
		tiles(t, "5W", "1T", "1T", "2T", "2T", "3T", "3T", "4T", "4T", "6T", "6T", "7T", "7T", "8T"),
		tiles(t, "5W", "5W", "1C", "2C", "3C", "4C", "6C", "7C", "8C", "9C", "9C", "8C", "2C"),
		tiles(t, "3W", "4W", "6W", "6W", "6W", "7W", "7W", "7W", "8W", "8W", "9W", "9W", "9W"),
	}
	g := riggedState(t, cfg, hands, 0)

	_, err := g.Discard(0, mustTile(t, "5W"))
	require.NoError(t, err)

	res, err := g.Decide(1, PlayerAction{Kind: ActionPass})
	require.NoError(t, err)
	assert.False(t, res.Closed)
	res, err = g.Decide(2, PlayerAction{Kind: ActionPass})
	require.NoError(t, err)
	assert.True(t, res.Closed)
	assert.Equal(t, 1, res.NextSeat)
	assert.True(t, res.NextNeedsDraw)
	assert.Nil(t, g.Window)
}

func TestPengThenDiscard(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Tiles = TilesAllSuits
	hands := [3][]Tile{
		tiles(t, "5W", "1T", "1T", "2T", "2T", "3T", "3T", "4T", "4T", "6T", "6T", "7T", "7T", "8T"),
		tiles(t, "5W", "5W", "1C", "2C", "3C", "4C", "6C", "7C", "8C", "9C", "9C", "8C", "2C"),
		tiles(t, "1W", "4W", "6W", "6W", "6W", "7W", "7W", "7W", "8W", "8W", "9W", "9W", "9W"),
	}
	g := riggedState(t, cfg, hands, 0)

	_, err := g.Discard(0, mustTile(t, "5W"))
	require.NoError(t, err)
	require.NotNil(t, g.Window)

	res, err := g.Decide(1, PlayerAction{Kind: ActionPeng})
	require.NoError(t, err)
	if !res.Closed {
		res, err = g.Decide(2, PlayerAction{Kind: ActionPass})
		require.NoError(t, err)
	}
	require.True(t, res.Closed)
	assert.Equal(t, 1, res.NextSeat)
	assert.False(t, res.NextNeedsDraw, "碰完不摸牌")

	p := g.Players[1]
	require.Len(t, p.Melds, 1)
	assert.Equal(t, MeldPeng, p.Melds[0].Kind)
	assert.Equal(t, 0, p.Melds[0].ClaimedFrom)
	// 碰完必须能直接出牌
	_, err = g.Discard(1, mustTile(t, "2C"))
	require.NoError(t, err)
}

func TestConcealedGangReplacementDraw(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Tiles = TilesAllSuits
	hands := [3][]Tile{
		tiles(t, "5W", "5W", "5W", "5W", "1W", "1W", "2W", "2W", "3W", "3W", "4W", "4W", "6W", "7W"),
		tiles(t, "1W", "2W", "3W", "4W", "6W", "7W", "8W", "9W", "9W", "8W", "2W", "6W", "8W"),
		tiles(t, "1T", "4T", "6T", "6T", "7T", "7T", "8T", "8T", "9T", "9T", "9T", "3T", "4T"),
	}
	g := riggedState(t, cfg, hands, 0)
	wallBefore := g.Wall.Remaining()

	require.NoError(t, g.ConcealedGang(0, mustTile(t, "5W")))
	assert.True(t, g.pendingReplacement)

	tile, err := g.DrawReplacement(0)
	require.NoError(t, err)
	assert.Equal(t, wallBefore-1, g.Wall.Remaining())
	assert.Equal(t, 11, g.Players[0].HandSize())

	p := g.Players[0]
	require.Len(t, p.Melds, 1)
	assert.Equal(t, MeldGang, p.Melds[0].Kind)
	assert.Equal(t, GangAn, p.Melds[0].GangKind)
	assert.True(t, p.Melds[0].Concealed)

	// 补牌后正常出牌
	_, err = g.Discard(0, tile)
	require.NoError(t, err)
}

func TestNotYourTurnRejected(t *testing.T) {
	cfg := DefaultConfig()
	g := NewGameState("123456", "game-x", cfg, 5, 0, 0, [3]int64{101, 102, 103})
	require.NoError(t, g.Deal())
	_, err := g.DrawFor(0)
	require.NoError(t, err)

	_, err = g.Discard(1, g.Players[1].Hand[0])
	require.Error(t, err)
	assert.Equal(t, CodeNotYourTurn, CodeOf(err))
}

func TestDiscardTileNotInHand(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Tiles = TilesAllSuits
	hands := [3][]Tile{
		tiles(t, "5W", "1T", "1T", "2T", "2T", "3T", "3T", "4T", "4T", "6T", "6T", "7T", "7T", "8T"),
		tiles(t, "5W", "5W", "1C", "2C", "3C", "4C", "6C", "7C", "8C", "9C", "9C", "8C", "2C"),
		tiles(t, "1W", "4W", "6W", "6W", "6W", "7W", "7W", "7W", "8W", "8W", "9W", "9W", "9W"),
	}
	g := riggedState(t, cfg, hands, 0)

	_, err := g.Discard(0, mustTile(t, "9W"))
	require.Error(t, err)
	assert.Equal(t, CodeTileNotInHand, CodeOf(err))
	// 拒绝不改状态
	assert.Equal(t, 14, g.Players[0].HandSize())
	assert.Empty(t, g.DiscardPile)
}
