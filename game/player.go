package game

// MeldKind 副露类型
type MeldKind string

const (
	MeldPeng MeldKind = "PENG"
	MeldChi  MeldKind = "CHI"
	MeldGang MeldKind = "GANG"
)

// GangKind 杠的细分
type GangKind string

const (
	GangAn   GangKind = "AN"   // 暗杠
	GangMing GangKind = "MING" // 明杠
	GangBu   GangKind = "BU"   // 碰升级补杠
)

// Meld 副露
type Meld struct {
	Kind        MeldKind `json:"kind"`
	GangKind    GangKind `json:"gangKind,omitempty"`
	Tiles       []Tile   `json:"tiles"`
	ClaimedFrom int      `json:"claimedFrom"` // 来源座位，暗杠为 -1
	Concealed   bool     `json:"concealed"`
}

// ActionKind 玩家动作种类，与线上 cmd 一致
type ActionKind string

const (
	ActionPlay ActionKind = "play"
	ActionPeng ActionKind = "peng"
	ActionGang ActionKind = "gang"
	ActionChi  ActionKind = "chi"
	ActionHu   ActionKind = "hu"
	ActionPass ActionKind = "pass"
)

// claimPriority 抢牌优先级，胡 > 杠 > 碰 > 吃
func claimPriority(kind ActionKind) int {
	switch kind {
	case ActionHu:
		return 4
	case ActionGang:
		return 3
	case ActionPeng:
		return 2
	case ActionChi:
		return 1
	default:
		return 0
	}
}

// PlayerStatus 座位状态
type PlayerStatus string

const (
	StatusWaiting      PlayerStatus = "WAITING"
	StatusReady        PlayerStatus = "READY"
	StatusPlaying      PlayerStatus = "PLAYING"
	StatusWaitingTurn  PlayerStatus = "WAITING_TURN"
	StatusDisconnected PlayerStatus = "DISCONNECTED"
	StatusTrustee      PlayerStatus = "TRUSTEE"
	StatusFinished     PlayerStatus = "FINISHED"
)

// PlayerState 座位内的玩家状态
// 手牌保持摸入顺序，最新摸的牌固定在最右端，托管出牌依赖这一点
type PlayerState struct {
	SeatIndex        int          `json:"seatIndex"`
	UserID           int64        `json:"userId"`
	Hand             []Tile       `json:"hand"`
	Melds            []Meld       `json:"melds"`
	Status           PlayerStatus `json:"status"`
	AvailableActions []ActionKind `json:"availableActions"`
	TimeoutCount     int          `json:"timeoutCount"`
	Score            int          `json:"score"`
	IsDealer         bool         `json:"isDealer"`
	drewThisTurn     bool         // 本回合是否已摸牌（自摸判定用）
}

func NewPlayerState(seatIndex int, userID int64) *PlayerState {
	return &PlayerState{
		SeatIndex: seatIndex,
		UserID:    userID,
		Hand:      make([]Tile, 0, 14),
		Melds:     make([]Meld, 0, 4),
		Status:    StatusWaiting,
	}
}

// ResetForRound 新一局开始前清空牌面状态
func (p *PlayerState) ResetForRound() {
	p.Hand = p.Hand[:0]
	p.Melds = p.Melds[:0]
	p.AvailableActions = nil
	p.drewThisTurn = false
	if p.Status != StatusDisconnected && p.Status != StatusTrustee {
		p.Status = StatusPlaying
	}
}

func (p *PlayerState) AddTile(tile Tile) {
	p.Hand = append(p.Hand, tile)
}

// DrawTile 摸牌追加在最右
func (p *PlayerState) DrawTile(tile Tile) {
	p.Hand = append(p.Hand, tile)
	p.drewThisTurn = true
}

// NewestTile 最新摸入的牌
func (p *PlayerState) NewestTile() (Tile, bool) {
	if !p.drewThisTurn || len(p.Hand) == 0 {
		return Tile{}, false
	}
	return p.Hand[len(p.Hand)-1], true
}

// RemoveTile 移除一张指定牌面的牌
func (p *PlayerState) RemoveTile(tile Tile) bool {
	for i := len(p.Hand) - 1; i >= 0; i-- {
		if p.Hand[i] == tile {
			p.Hand = append(p.Hand[:i], p.Hand[i+1:]...)
			return true
		}
	}
	return false
}

// RemoveTiles 批量移除，失败时回滚
func (p *PlayerState) RemoveTiles(tiles []Tile) bool {
	removed := make([]Tile, 0, len(tiles))
	for _, t := range tiles {
		if !p.RemoveTile(t) {
			for _, r := range removed {
				p.Hand = append(p.Hand, r)
			}
			return false
		}
		removed = append(removed, t)
	}
	return true
}

// CountInHand 手中某牌面的张数
func (p *PlayerState) CountInHand(tile Tile) int {
	n := 0
	for _, t := range p.Hand {
		if t == tile {
			n++
		}
	}
	return n
}

// HandSize 物理手牌张数
func (p *PlayerState) HandSize() int {
	return len(p.Hand)
}

// GangCount 副露中杠的个数
func (p *PlayerState) GangCount() int {
	n := 0
	for _, m := range p.Melds {
		if m.Kind == MeldGang {
			n++
		}
	}
	return n
}

// CanPeng 手中至少两张同牌面
func (p *PlayerState) CanPeng(tile Tile) bool {
	return p.CountInHand(tile) >= 2
}

// CanChi 用 a、b 加弃牌构成同花色顺子；只校验牌面，位置限制由仲裁器负责
func (p *PlayerState) CanChi(tile Tile, a, b Tile) bool {
	if p.CountInHand(a) < 1 || p.CountInHand(b) < 1 {
		return false
	}
	if a == b {
		if p.CountInHand(a) < 2 {
			return false
		}
	}
	return isRun(tile, a, b)
}

// ChiOptions 可用的吃牌组合（使用手中的两张）
func (p *PlayerState) ChiOptions(tile Tile) [][2]Tile {
	var opts [][2]Tile
	for _, d := range [][2]int8{{-2, -1}, {-1, 1}, {1, 2}} {
		a := Tile{Suit: tile.Suit, Rank: tile.Rank + d[0]}
		b := Tile{Suit: tile.Suit, Rank: tile.Rank + d[1]}
		if !a.Valid() || !b.Valid() {
			continue
		}
		if p.CountInHand(a) >= 1 && p.CountInHand(b) >= 1 {
			opts = append(opts, [2]Tile{a, b})
		}
	}
	return opts
}

// CanMingGang 手中至少三张同牌面
func (p *PlayerState) CanMingGang(tile Tile) bool {
	return p.CountInHand(tile) >= 3
}

// ConcealedGangCandidates 手中凑满四张的牌面
func (p *PlayerState) ConcealedGangCandidates() []Tile {
	counts := countTiles(p.Hand)
	var out []Tile
	for s := 0; s < 3; s++ {
		for r := int8(1); r <= 9; r++ {
			if counts[s][r] >= 4 {
				out = append(out, Tile{Suit: suitByIndex(s), Rank: r})
			}
		}
	}
	return out
}

// CanUpgradeGang 已有该牌面的碰且手中有第四张
func (p *PlayerState) CanUpgradeGang(tile Tile) bool {
	if p.CountInHand(tile) < 1 {
		return false
	}
	for _, m := range p.Melds {
		if m.Kind == MeldPeng && m.Tiles[0] == tile {
			return true
		}
	}
	return false
}

// SetAvailableActions 发布可选动作集合（快照会带给客户端）
func (p *PlayerState) SetAvailableActions(actions []ActionKind) {
	p.AvailableActions = actions
}

// HasAction 动作是否在当前可选集合中
func (p *PlayerState) HasAction(kind ActionKind) bool {
	for _, a := range p.AvailableActions {
		if a == kind {
			return true
		}
	}
	return false
}

// isRun 三张牌是否构成同花色顺子
func isRun(a, b, c Tile) bool {
	if a.Suit != b.Suit || b.Suit != c.Suit {
		return false
	}
	ranks := []int8{a.Rank, b.Rank, c.Rank}
	if ranks[0] > ranks[1] {
		ranks[0], ranks[1] = ranks[1], ranks[0]
	}
	if ranks[1] > ranks[2] {
		ranks[1], ranks[2] = ranks[2], ranks[1]
	}
	if ranks[0] > ranks[1] {
		ranks[0], ranks[1] = ranks[1], ranks[0]
	}
	return ranks[1] == ranks[0]+1 && ranks[2] == ranks[1]+1
}
