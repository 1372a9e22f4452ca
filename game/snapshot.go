package game

import "time"

// PlayerSnapshot 座位快照；他人手牌只给张数
type PlayerSnapshot struct {
	SeatIndex        int          `json:"seatIndex"`
	UserID           int64        `json:"userId"`
	HandCount        int          `json:"handCount"`
	Hand             []Tile       `json:"hand,omitempty"` // 仅本人可见
	Melds            []Meld       `json:"melds"`
	Status           PlayerStatus `json:"status"`
	AvailableActions []ActionKind `json:"availableActions,omitempty"`
	TimeoutCount     int          `json:"timeoutCount"`
	Score            int          `json:"score"`
	IsDealer         bool         `json:"isDealer"`
}

// ClaimWindowSnapshot 抢牌窗口快照；决定在窗口关闭前不可见
type ClaimWindowSnapshot struct {
	DiscardedTile Tile         `json:"discardedTile"`
	DiscarderSeat int          `json:"discarderSeat"`
	MyActions     []ActionKind `json:"myActions,omitempty"`
	Deadline      time.Time    `json:"deadline"`
}

// GameSnapshot 发给单个玩家的完整局面快照（重连和对局恢复用）
type GameSnapshot struct {
	RoomID        string               `json:"roomId"`
	GameID        string               `json:"gameId"`
	Phase         GamePhase            `json:"phase"`
	RoundIndex    int                  `json:"roundIndex"`
	CurrentSeat   int                  `json:"currentSeat"`
	DealerSeat    int                  `json:"dealerSeat"`
	TurnDeadline  time.Time            `json:"turnDeadline"`
	WallRemaining int                  `json:"wallRemaining"`
	DiscardPile   []Tile               `json:"discardPile"`
	Players       [3]PlayerSnapshot    `json:"players"`
	Window        *ClaimWindowSnapshot `json:"claimWindow,omitempty"`
	Settlement    *Settlement          `json:"settlement,omitempty"`
}

// BuildSnapshot 生成按座位脱敏的快照
func BuildSnapshot(g *GameState, forSeat int) *GameSnapshot {
	snap := &GameSnapshot{
		RoomID:       g.RoomID,
		GameID:       g.GameID,
		Phase:        g.Phase,
		RoundIndex:   g.RoundIndex,
		CurrentSeat:  g.CurrentSeat,
		DealerSeat:   g.DealerSeat,
		TurnDeadline: g.TurnDeadline,
		DiscardPile:  append([]Tile{}, g.DiscardPile...),
		Settlement:   g.Settlement,
	}
	if g.Wall != nil {
		snap.WallRemaining = g.Wall.Remaining()
	}

	for i, p := range g.Players {
		ps := PlayerSnapshot{
			SeatIndex:    p.SeatIndex,
			UserID:       p.UserID,
			HandCount:    p.HandSize(),
			Melds:        append([]Meld{}, p.Melds...),
			Status:       p.Status,
			TimeoutCount: p.TimeoutCount,
			Score:        p.Score,
			IsDealer:     p.IsDealer,
		}
		if i == forSeat {
			hand := append([]Tile{}, p.Hand...)
			ps.Hand = hand
			ps.AvailableActions = append([]ActionKind{}, p.AvailableActions...)
		}
		snap.Players[i] = ps
	}

	if w := g.Window; w != nil {
		ws := &ClaimWindowSnapshot{
			DiscardedTile: w.DiscardedTile,
			DiscarderSeat: w.DiscarderSeat,
			Deadline:      w.Deadline,
		}
		if kinds, ok := w.Candidates[forSeat]; ok && !w.Decided(forSeat) {
			ws.MyActions = append(append([]ActionKind{}, kinds...), ActionPass)
		}
		snap.Window = ws
	}
	return snap
}
