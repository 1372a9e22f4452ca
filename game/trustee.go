package game

// TrusteeDecide 托管策略，完全确定：
//  1. 能胡就胡
//  2. 轮到自己出牌时打最新摸入的牌（没有就打最右一张）
//  3. 抢牌窗口内一律过
func TrusteeDecide(g *GameState, seat int) (PlayerAction, bool) {
	p := g.Players[seat]

	if w := g.Window; w != nil && w.IsCandidate(seat) && !w.Decided(seat) {
		if w.HasKind(seat, ActionHu) {
			return PlayerAction{Kind: ActionHu, Tile: w.DiscardedTile}, true
		}
		return PlayerAction{Kind: ActionPass}, true
	}

	if g.Window == nil && g.CurrentSeat == seat && p.HandSize() == g.concealedPostDraw(p) {
		if newest, ok := p.NewestTile(); ok {
			concealed := p.Hand[:len(p.Hand)-1]
			if _, err := AnalyzeWin(concealed, p.Melds, newest, true, g.Config.HandSets()); err == nil {
				return PlayerAction{Kind: ActionHu, Tile: newest, SelfDraw: true}, true
			}
			return PlayerAction{Kind: ActionPlay, Tile: newest}, true
		}
		// 鸣牌后的回合没有最新摸牌，打最右一张
		return PlayerAction{Kind: ActionPlay, Tile: p.Hand[len(p.Hand)-1]}, true
	}

	return PlayerAction{}, false
}
