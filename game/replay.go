package game

import (
	"time"
)

// GameRecord 终局封存的对局记录
// (seed, actions) 足以逐字节重建 finalHands 与 settlement
type GameRecord struct {
	GameID     string           `json:"gameId"`
	RoomID     string           `json:"roomId"`
	Seed       int64            `json:"seed"`
	Config     Config           `json:"config"`
	DealerSeat int              `json:"dealerSeat"`
	RoundIndex int              `json:"roundIndex"`
	UserIDs    [3]int64         `json:"userIds"`
	Actions    []ActionLogEntry `json:"actions"`
	FinalHands [3][]Tile        `json:"finalHands"`
	Settlement *Settlement      `json:"settlement"`
	CreatedAt  time.Time        `json:"createdAt"`
}

// SealRecord 在 SETTLEMENT 之后封存记录
func SealRecord(g *GameState) (*GameRecord, error) {
	if g.Phase != PhaseSettlement && g.Phase != PhaseFinished {
		return nil, NewGameError(CodeInvalidInput, "未结算的对局不能封存: %s", g.Phase)
	}
	record := &GameRecord{
		GameID:     g.GameID,
		RoomID:     g.RoomID,
		Seed:       g.Seed,
		Config:     g.Config,
		DealerSeat: g.DealerSeat,
		RoundIndex: g.RoundIndex,
		Actions:    append([]ActionLogEntry{}, g.Actions...),
		Settlement: g.Settlement,
		CreatedAt:  g.now(),
	}
	for i, p := range g.Players {
		record.UserIDs[i] = p.UserID
		record.FinalHands[i] = append([]Tile{}, g.FinalHands[i]...)
	}
	return record, nil
}

// Replay 由 (seed, actions) 确定性重建一局
// 重放完成后 FinalHands 与 Settlement 必须与记录一致
func Replay(record *GameRecord) (*GameState, error) {
	g := NewGameState(record.RoomID, record.GameID, record.Config, record.Seed,
		record.DealerSeat, record.RoundIndex, record.UserIDs)
	fixed := record.CreatedAt
	g.SetClock(func() time.Time { return fixed })

	if err := g.Deal(); err != nil {
		return nil, err
	}

	for _, entry := range record.Actions {
		if err := applyLogged(g, entry); err != nil {
			return nil, NewGameError(CodeInvalidInput, "重放第 %d 条动作失败: %v", entry.Seq, err)
		}
	}

	if record.Settlement != nil && record.Settlement.Kind == SettleDissolve && g.Phase == PhasePlaying {
		g.Dissolve()
	}
	return g, nil
}

// applyLogged 把一条日志重新作用到状态机上
func applyLogged(g *GameState, entry ActionLogEntry) error {
	switch entry.Kind {
	case LogKindDraw:
		var drawn Tile
		var err error
		if entry.Payload.Back {
			drawn, err = g.DrawReplacement(entry.Seat)
		} else {
			drawn, err = g.DrawFor(entry.Seat)
		}
		if err != nil {
			return err
		}
		if entry.Payload.Tile != nil && drawn != *entry.Payload.Tile {
			return NewGameError(CodeStateInvariantViolated,
				"重放摸牌不一致: got=%v want=%v", drawn, *entry.Payload.Tile)
		}
		return nil

	case LogKindDrawOut:
		return g.DrawOut()

	case string(ActionPlay):
		if entry.Payload.Tile == nil {
			return NewGameError(CodeInvalidInput, "出牌日志缺少牌面")
		}
		_, err := g.Discard(entry.Seat, *entry.Payload.Tile)
		return err

	case string(ActionHu):
		if entry.Payload.SelfDraw {
			return g.SelfDrawHu(entry.Seat)
		}
		_, err := g.Decide(entry.Seat, PlayerAction{Kind: ActionHu})
		return err

	case string(ActionGang):
		if g.Window == nil {
			if entry.Payload.Tile == nil {
				return NewGameError(CodeInvalidInput, "杠牌日志缺少牌面")
			}
			if entry.Payload.GangKind == GangBu {
				return g.UpgradeGang(entry.Seat, *entry.Payload.Tile)
			}
			return g.ConcealedGang(entry.Seat, *entry.Payload.Tile)
		}
		_, err := g.Decide(entry.Seat, PlayerAction{Kind: ActionGang})
		return err

	case string(ActionPeng):
		_, err := g.Decide(entry.Seat, PlayerAction{Kind: ActionPeng})
		return err

	case string(ActionChi):
		_, err := g.Decide(entry.Seat, PlayerAction{
			Kind:     ActionChi,
			Sequence: entry.Payload.Sequence,
		})
		return err

	case string(ActionPass):
		_, err := g.Decide(entry.Seat, PlayerAction{Kind: ActionPass})
		return err
	}
	return NewGameError(CodeInvalidInput, "未知日志类型: %s", entry.Kind)
}
