package game

import (
	"fmt"
	"time"
)

// GamePhase 一局的阶段
type GamePhase string

const (
	PhaseWaiting    GamePhase = "WAITING"
	PhaseDealing    GamePhase = "DEALING"
	PhasePlaying    GamePhase = "PLAYING"
	PhaseSettlement GamePhase = "SETTLEMENT"
	PhaseFinished   GamePhase = "FINISHED"
)

// Resolution 抢牌窗口关闭后的处理指示，引擎据此安排后续动作
type Resolution struct {
	Closed        bool
	Taken         []claimTaken
	Won           bool
	NeedsDraw     bool // 杠成，等待墙尾补牌
	NextSeat      int
	NextNeedsDraw bool // 下家需要正常摸牌
}

// GameState 一局游戏的确定性核心
// 只做校验和状态迁移，不持有计时器和连接；同一动作序列必然得到同一终局
type GameState struct {
	RoomID       string           `json:"roomId"`
	GameID       string           `json:"gameId"`
	Config       Config           `json:"config"`
	Phase        GamePhase        `json:"phase"`
	Players      [3]*PlayerState  `json:"players"`
	Wall         *Wall            `json:"-"`
	DiscardPile  []Tile           `json:"discardPile"`
	CurrentSeat  int              `json:"currentSeat"`
	DealerSeat   int              `json:"dealerSeat"`
	TurnStart    time.Time        `json:"turnStart"`
	TurnDeadline time.Time        `json:"turnDeadline"`
	Window       *ClaimWindow     `json:"claimWindow,omitempty"`
	Seed         int64            `json:"seed"`
	RoundIndex   int              `json:"roundIndex"`
	Actions      []ActionLogEntry `json:"actions"`
	Settlement   *Settlement      `json:"settlement,omitempty"`
	FinalHands   [3][]Tile        `json:"finalHands,omitempty"`

	seq                int
	pendingReplacement bool
	clock              func() time.Time
}

func NewGameState(roomID, gameID string, cfg Config, seed int64, dealerSeat, roundIndex int, userIDs [3]int64) *GameState {
	g := &GameState{
		RoomID:      roomID,
		GameID:      gameID,
		Config:      cfg,
		Phase:       PhaseWaiting,
		DealerSeat:  dealerSeat,
		CurrentSeat: dealerSeat,
		Seed:        seed,
		RoundIndex:  roundIndex,
	}
	for i := 0; i < 3; i++ {
		g.Players[i] = NewPlayerState(i, userIDs[i])
	}
	return g
}

// SetClock 注入时钟，复盘时用固定时钟保证字节级一致
func (g *GameState) SetClock(clock func() time.Time) {
	g.clock = clock
}

// Deal 洗牌发牌：每家 13 张，庄家的第 14 张由之后的首次摸牌补上
// 发牌完全由种子决定，不产生日志条目
func (g *GameState) Deal() error {
	if g.Phase != PhaseWaiting && g.Phase != PhaseDealing {
		return NewGameError(CodeInvalidInput, "当前阶段不能发牌: %s", g.Phase)
	}
	g.Phase = PhaseDealing
	g.Wall = NewWall(g.Config.Tiles, g.Seed)
	g.DiscardPile = g.DiscardPile[:0]

	for i := 0; i < 3; i++ {
		p := g.Players[i]
		p.ResetForRound()
		p.IsDealer = i == g.DealerSeat
		p.Status = StatusWaitingTurn
	}
	for r := 0; r < g.Config.HandTiles(); r++ {
		for i := 0; i < 3; i++ {
			seat := (g.DealerSeat + i) % 3
			t, err := g.Wall.Draw()
			if err != nil {
				return err
			}
			g.Players[seat].AddTile(t)
		}
	}

	g.Phase = PhasePlaying
	g.CurrentSeat = g.DealerSeat
	return nil
}

// DrawFor 当前座位从墙头摸牌，牌墙摸空返回 ErrWallExhausted
func (g *GameState) DrawFor(seat int) (Tile, error) {
	if err := g.requireTurn(seat); err != nil {
		return Tile{}, err
	}
	p := g.Players[seat]
	if p.HandSize() != g.concealedPreDraw(p) {
		return Tile{}, NewGameError(CodeActionNotAvailable, "座位 %d 不在摸牌时机", seat)
	}

	t, err := g.Wall.Draw()
	if err != nil {
		return Tile{}, err
	}
	p.DrawTile(t)
	g.appendLog(seat, LogKindDraw, ActionPayload{Tile: &t})
	g.startTurn(seat)
	g.refreshTurnActions(seat)
	return t, g.CheckInvariants()
}

// DrawReplacement 杠后从墙尾补牌
func (g *GameState) DrawReplacement(seat int) (Tile, error) {
	if err := g.requireTurn(seat); err != nil {
		return Tile{}, err
	}
	if !g.pendingReplacement {
		return Tile{}, NewGameError(CodeActionNotAvailable, "座位 %d 没有待补的杠", seat)
	}

	t, err := g.Wall.DrawBack()
	if err != nil {
		return Tile{}, err
	}
	g.pendingReplacement = false
	g.Players[seat].DrawTile(t)
	g.appendLog(seat, LogKindDraw, ActionPayload{Tile: &t, Back: true})
	g.refreshTurnActions(seat)
	return t, g.CheckInvariants()
}

// Discard 出牌；若有人可抢则开抢牌窗口，否则行牌到下家
func (g *GameState) Discard(seat int, tile Tile) (*Resolution, error) {
	if err := g.requireTurn(seat); err != nil {
		return nil, err
	}
	p := g.Players[seat]
	if p.HandSize() != g.concealedPostDraw(p) {
		return nil, NewGameError(CodeActionNotAvailable, "座位 %d 不在出牌时机", seat)
	}
	if !p.RemoveTile(tile) {
		return nil, NewGameError(CodeTileNotInHand, "手中没有 %v", tile)
	}

	g.DiscardPile = append(g.DiscardPile, tile)
	p.drewThisTurn = false
	p.SetAvailableActions(nil)
	g.pendingReplacement = false
	g.appendLog(seat, string(ActionPlay), ActionPayload{Tile: &tile})

	candidates := g.claimCandidates(seat, tile)
	if len(candidates) > 0 {
		g.Window = newClaimWindow(tile, seat, candidates)
		g.Window.Deadline = g.now().Add(time.Duration(g.Config.Turn.ActionSeconds) * time.Second)
		for cs, kinds := range candidates {
			g.Players[cs].SetAvailableActions(append(append([]ActionKind{}, kinds...), ActionPass))
		}
		return &Resolution{}, g.CheckInvariants()
	}

	next := (seat + 1) % 3
	g.CurrentSeat = next
	return &Resolution{Closed: true, NextSeat: next, NextNeedsDraw: true}, g.CheckInvariants()
}

// claimCandidates 计算每个座位对该弃牌的候选动作
func (g *GameState) claimCandidates(discarder int, tile Tile) map[int][]ActionKind {
	candidates := make(map[int][]ActionKind)
	for i := 0; i < 3; i++ {
		if i == discarder {
			continue
		}
		p := g.Players[i]
		var kinds []ActionKind
		if CanWin(p.Hand, p.Melds, tile, g.Config.HuTypes, g.Config.HandSets()) {
			kinds = append(kinds, ActionHu)
		}
		if g.Config.AllowGang && p.CanMingGang(tile) {
			kinds = append(kinds, ActionGang)
		}
		if g.Config.AllowPeng && p.CanPeng(tile) {
			kinds = append(kinds, ActionPeng)
		}
		if g.Config.AllowChi && i == (discarder+1)%3 && len(p.ChiOptions(tile)) > 0 {
			kinds = append(kinds, ActionChi)
		}
		if len(kinds) > 0 {
			candidates[i] = kinds
		}
	}
	return candidates
}

// Decide 抢牌窗口内收集一个座位的决定；全员决定后立即仲裁
func (g *GameState) Decide(seat int, action PlayerAction) (*Resolution, error) {
	if g.Phase != PhasePlaying {
		return nil, NewGameError(CodeRoomClosed, "当前阶段: %s", g.Phase)
	}
	w := g.Window
	if w == nil {
		return nil, NewGameError(CodeClaimWindowClosed, "没有进行中的抢牌窗口")
	}
	if !w.IsCandidate(seat) {
		return nil, NewGameError(CodeActionNotAvailable, "座位 %d 不是候选者", seat)
	}
	if w.Decided(seat) {
		return nil, NewGameError(CodeClaimWindowClosed, "座位 %d 已决定", seat)
	}
	if action.Kind != ActionPass && !w.HasKind(seat, action.Kind) {
		return nil, NewGameError(CodeActionNotAvailable, "动作 %s 不在候选集中", action.Kind)
	}

	p := g.Players[seat]
	payload := ActionPayload{From: w.DiscarderSeat}
	switch action.Kind {
	case ActionPass:
	case ActionHu:
		if _, err := AnalyzeWin(p.Hand, p.Melds, w.DiscardedTile, false, g.Config.HandSets()); err != nil {
			return nil, NewGameError(CodeInvalidWin, "荣和校验失败: %v", err)
		}
		payload.Tile = &w.DiscardedTile
	case ActionPeng:
		if !p.CanPeng(w.DiscardedTile) {
			return nil, NewGameError(CodeTileNotInHand, "碰 %v 失败", w.DiscardedTile)
		}
		payload.Tile = &w.DiscardedTile
	case ActionGang:
		if !p.CanMingGang(w.DiscardedTile) {
			return nil, NewGameError(CodeTileNotInHand, "明杠 %v 失败", w.DiscardedTile)
		}
		action.GangKind = GangMing
		payload.Tile = &w.DiscardedTile
		payload.GangKind = GangMing
	case ActionChi:
		if len(action.Sequence) != 3 || !containsTile(action.Sequence, w.DiscardedTile) {
			return nil, NewGameError(CodeInvalidInput, "吃牌序列非法: %v", action.Sequence)
		}
		a, b := otherTwo(action.Sequence, w.DiscardedTile)
		if !p.CanChi(w.DiscardedTile, a, b) {
			return nil, NewGameError(CodeTileNotInHand, "吃 %v 失败", action.Sequence)
		}
		payload.Tile = &w.DiscardedTile
		payload.Sequence = action.Sequence
	default:
		return nil, NewGameError(CodeInvalidInput, "未知动作: %s", action.Kind)
	}

	g.appendLog(seat, string(action.Kind), payload)
	stored := action
	w.Decisions[seat] = &stored

	if !w.AllDecided() {
		return &Resolution{}, nil
	}
	return g.resolveWindow()
}

// TimeoutPass 超时座位按过处理（由引擎在窗口到期时调用）
func (g *GameState) TimeoutPass(seat int) (*Resolution, error) {
	return g.Decide(seat, PlayerAction{Kind: ActionPass})
}

// resolveWindow 仲裁并执行抢牌结果
func (g *GameState) resolveWindow() (*Resolution, error) {
	w := g.Window
	taken := w.winningDecisions()
	g.Window = nil
	for seat := range w.Candidates {
		g.Players[seat].SetAvailableActions(nil)
	}

	// 全过：行牌到下家
	if len(taken) == 0 {
		next := (w.DiscarderSeat + 1) % 3
		g.CurrentSeat = next
		return &Resolution{Closed: true, NextSeat: next, NextNeedsDraw: true}, g.CheckInvariants()
	}

	first := taken[0]
	switch first.Action.Kind {
	case ActionHu:
		claims := make([]HuClaim, 0, len(taken))
		for _, t := range taken {
			p := g.Players[t.Seat]
			analysis, err := AnalyzeWin(p.Hand, p.Melds, w.DiscardedTile, false, g.Config.HandSets())
			if err != nil {
				return nil, err
			}
			claims = append(claims, HuClaim{Seat: t.Seat, Analysis: analysis})
		}
		g.settle(SettleWin(claims, w.DiscarderSeat, g.DealerSeat, g.Players, &g.Config))
		return &Resolution{Closed: true, Taken: taken, Won: true}, nil

	case ActionGang:
		p := g.Players[first.Seat]
		if !p.RemoveTiles([]Tile{w.DiscardedTile, w.DiscardedTile, w.DiscardedTile}) {
			return nil, NewGameError(CodeStateInvariantViolated, "明杠移除手牌失败")
		}
		g.popDiscard()
		p.Melds = append(p.Melds, Meld{
			Kind:        MeldGang,
			GangKind:    GangMing,
			Tiles:       []Tile{w.DiscardedTile, w.DiscardedTile, w.DiscardedTile, w.DiscardedTile},
			ClaimedFrom: w.DiscarderSeat,
		})
		g.CurrentSeat = first.Seat
		g.pendingReplacement = true
		g.startTurn(first.Seat)
		return &Resolution{Closed: true, Taken: taken, NeedsDraw: true, NextSeat: first.Seat}, g.CheckInvariants()

	case ActionPeng:
		p := g.Players[first.Seat]
		if !p.RemoveTiles([]Tile{w.DiscardedTile, w.DiscardedTile}) {
			return nil, NewGameError(CodeStateInvariantViolated, "碰移除手牌失败")
		}
		g.popDiscard()
		p.Melds = append(p.Melds, Meld{
			Kind:        MeldPeng,
			Tiles:       []Tile{w.DiscardedTile, w.DiscardedTile, w.DiscardedTile},
			ClaimedFrom: w.DiscarderSeat,
		})
		g.CurrentSeat = first.Seat
		g.startTurn(first.Seat)
		g.refreshTurnActions(first.Seat)
		return &Resolution{Closed: true, Taken: taken, NextSeat: first.Seat}, g.CheckInvariants()

	case ActionChi:
		p := g.Players[first.Seat]
		a, b := otherTwo(first.Action.Sequence, w.DiscardedTile)
		if !p.RemoveTiles([]Tile{a, b}) {
			return nil, NewGameError(CodeStateInvariantViolated, "吃移除手牌失败")
		}
		g.popDiscard()
		seq := append([]Tile{}, first.Action.Sequence...)
		SortTiles(seq)
		p.Melds = append(p.Melds, Meld{
			Kind:        MeldChi,
			Tiles:       seq,
			ClaimedFrom: w.DiscarderSeat,
		})
		g.CurrentSeat = first.Seat
		g.startTurn(first.Seat)
		g.refreshTurnActions(first.Seat)
		return &Resolution{Closed: true, Taken: taken, NextSeat: first.Seat}, g.CheckInvariants()
	}
	return nil, NewGameError(CodeStateInvariantViolated, "未知仲裁结果: %s", first.Action.Kind)
}

// SelfDrawHu 自摸胡
func (g *GameState) SelfDrawHu(seat int) error {
	if err := g.requireTurn(seat); err != nil {
		return err
	}
	p := g.Players[seat]
	newest, ok := p.NewestTile()
	if !ok || p.HandSize() != g.concealedPostDraw(p) {
		return NewGameError(CodeActionNotAvailable, "座位 %d 不在自摸时机", seat)
	}

	concealed := append([]Tile{}, p.Hand[:len(p.Hand)-1]...)
	analysis, err := AnalyzeWin(concealed, p.Melds, newest, true, g.Config.HandSets())
	if err != nil {
		return NewGameError(CodeInvalidWin, "自摸校验失败: %v", err)
	}

	g.appendLog(seat, string(ActionHu), ActionPayload{Tile: &newest, SelfDraw: true})
	g.settle(SettleWin([]HuClaim{{Seat: seat, Analysis: analysis}}, -1, g.DealerSeat, g.Players, &g.Config))
	return nil
}

// ConcealedGang 暗杠，成功后需要补牌
func (g *GameState) ConcealedGang(seat int, tile Tile) error {
	if err := g.requireTurn(seat); err != nil {
		return err
	}
	if !g.Config.AllowGang {
		return NewGameError(CodeActionNotAvailable, "规则不允许杠")
	}
	p := g.Players[seat]
	if p.HandSize() != g.concealedPostDraw(p) {
		return NewGameError(CodeActionNotAvailable, "座位 %d 不在杠牌时机", seat)
	}
	if p.CountInHand(tile) < 4 {
		return NewGameError(CodeTileNotInHand, "手中不足四张 %v", tile)
	}
	if !p.RemoveTiles([]Tile{tile, tile, tile, tile}) {
		return NewGameError(CodeTileNotInHand, "暗杠移除手牌失败")
	}
	p.Melds = append(p.Melds, Meld{
		Kind:        MeldGang,
		GangKind:    GangAn,
		Tiles:       []Tile{tile, tile, tile, tile},
		ClaimedFrom: -1,
		Concealed:   true,
	})
	g.pendingReplacement = true
	g.appendLog(seat, string(ActionGang), ActionPayload{Tile: &tile, GangKind: GangAn})
	return g.CheckInvariants()
}

// UpgradeGang 补杠：已有的碰加第四张
func (g *GameState) UpgradeGang(seat int, tile Tile) error {
	if err := g.requireTurn(seat); err != nil {
		return err
	}
	if !g.Config.AllowGang {
		return NewGameError(CodeActionNotAvailable, "规则不允许杠")
	}
	p := g.Players[seat]
	if p.HandSize() != g.concealedPostDraw(p) {
		return NewGameError(CodeActionNotAvailable, "座位 %d 不在杠牌时机", seat)
	}
	if !p.CanUpgradeGang(tile) {
		return NewGameError(CodeActionNotAvailable, "没有可升级的碰: %v", tile)
	}
	if !p.RemoveTile(tile) {
		return NewGameError(CodeTileNotInHand, "手中没有 %v", tile)
	}
	for i := range p.Melds {
		if p.Melds[i].Kind == MeldPeng && p.Melds[i].Tiles[0] == tile {
			p.Melds[i].Kind = MeldGang
			p.Melds[i].GangKind = GangBu
			p.Melds[i].Tiles = append(p.Melds[i].Tiles, tile)
			break
		}
	}
	g.pendingReplacement = true
	g.appendLog(seat, string(ActionGang), ActionPayload{Tile: &tile, GangKind: GangBu})
	return g.CheckInvariants()
}

// DrawOut 荒牌流局
func (g *GameState) DrawOut() error {
	if g.Phase != PhasePlaying {
		return NewGameError(CodeInvalidInput, "当前阶段不能流局: %s", g.Phase)
	}
	g.appendLog(g.CurrentSeat, LogKindDrawOut, ActionPayload{})
	g.settle(SettleDraw(g.Players, &g.Config))
	return nil
}

// Dissolve 解散强制终局，不计胡牌分
func (g *GameState) Dissolve() {
	if g.Phase == PhaseSettlement || g.Phase == PhaseFinished {
		g.Phase = PhaseFinished
		return
	}
	g.Window = nil
	st := &Settlement{Kind: SettleDissolve, DiscarderSeat: -1}
	g.settle(st)
	g.Phase = PhaseFinished
}

// Finish SETTLEMENT → FINISHED，战绩落库成功后由引擎调用
func (g *GameState) Finish() {
	if g.Phase == PhaseSettlement {
		g.Phase = PhaseFinished
	}
}

// settle 统一结算入口
func (g *GameState) settle(st *Settlement) {
	for i := 0; i < 3; i++ {
		g.Players[i].Score += st.Totals[i]
		g.Players[i].SetAvailableActions(nil)
		g.Players[i].Status = StatusFinished
		hand := append([]Tile{}, g.Players[i].Hand...)
		SortTiles(hand)
		g.FinalHands[i] = hand
	}
	g.Settlement = st
	g.Window = nil
	g.Phase = PhaseSettlement
}

// startTurn 开始一个出牌回合并推进截止时间
func (g *GameState) startTurn(seat int) {
	g.CurrentSeat = seat
	g.TurnStart = g.now()
	g.TurnDeadline = g.TurnStart.Add(time.Duration(g.Config.Turn.TurnSeconds) * time.Second)
	for i := 0; i < 3; i++ {
		p := g.Players[i]
		if p.Status == StatusDisconnected || p.Status == StatusTrustee {
			continue
		}
		if i == seat {
			p.Status = StatusPlaying
		} else {
			p.Status = StatusWaitingTurn
		}
	}
}

// refreshTurnActions 重算当前座位的可选动作并发布
func (g *GameState) refreshTurnActions(seat int) {
	p := g.Players[seat]
	actions := []ActionKind{ActionPlay}
	if newest, ok := p.NewestTile(); ok {
		concealed := p.Hand[:len(p.Hand)-1]
		if _, err := AnalyzeWin(concealed, p.Melds, newest, true, g.Config.HandSets()); err == nil {
			actions = append(actions, ActionHu)
		}
	}
	if g.Config.AllowGang && p.HandSize() == g.concealedPostDraw(p) {
		if len(p.ConcealedGangCandidates()) > 0 {
			actions = append(actions, ActionGang)
		} else {
			for _, t := range p.Hand {
				if p.CanUpgradeGang(t) {
					actions = append(actions, ActionGang)
					break
				}
			}
		}
	}
	p.SetAvailableActions(actions)
}

// concealedPreDraw 摸牌前的标准手牌张数
func (g *GameState) concealedPreDraw(p *PlayerState) int {
	return g.Config.HandTiles() - 3*len(p.Melds)
}

// concealedPostDraw 摸牌（或鸣牌）后、出牌前的标准手牌张数
func (g *GameState) concealedPostDraw(p *PlayerState) int {
	return g.Config.HandTiles() + 1 - 3*len(p.Melds)
}

func (g *GameState) requireTurn(seat int) error {
	if g.Phase != PhasePlaying {
		return NewGameError(CodeRoomClosed, "当前阶段: %s", g.Phase)
	}
	if g.Window != nil {
		return NewGameError(CodeActionNotAvailable, "抢牌窗口未关闭")
	}
	if seat < 0 || seat >= 3 {
		return NewGameError(CodeInvalidInput, "非法座位: %d", seat)
	}
	if seat != g.CurrentSeat {
		return NewGameError(CodeNotYourTurn, "当前行牌座位是 %d", g.CurrentSeat)
	}
	return nil
}

func (g *GameState) popDiscard() {
	if len(g.DiscardPile) > 0 {
		g.DiscardPile = g.DiscardPile[:len(g.DiscardPile)-1]
	}
}

// CheckInvariants 跨实体不变式（§牌数守恒、张数上限、庄家唯一、手牌张数）
// 违反说明内部状态已损坏，房间应转入 DEGRADED
func (g *GameState) CheckInvariants() error {
	if g.Phase != PhasePlaying {
		return nil
	}

	var counts tileCounts
	total := 0
	addTile := func(t Tile) {
		counts.add(t, 1)
		total++
	}
	for _, p := range g.Players {
		for _, t := range p.Hand {
			addTile(t)
		}
		for _, m := range p.Melds {
			for _, t := range m.Tiles {
				addTile(t)
			}
		}
	}
	for _, t := range g.DiscardPile {
		addTile(t)
	}
	total += g.Wall.Remaining()

	if total != g.Config.Tiles.DeckSize() {
		return NewGameError(CodeStateInvariantViolated, "牌数守恒被破坏: %d != %d", total, g.Config.Tiles.DeckSize())
	}
	for s := 0; s < 3; s++ {
		for r := 1; r <= 9; r++ {
			if counts[s][r] > 4 {
				return NewGameError(CodeStateInvariantViolated, "牌 %d%c 出现 %d 次", r, byte(suitByIndex(s)), counts[s][r])
			}
		}
	}

	dealers := 0
	for i, p := range g.Players {
		if p.IsDealer {
			dealers++
			if i != g.DealerSeat {
				return NewGameError(CodeStateInvariantViolated, "庄家座位不一致: %d != %d", i, g.DealerSeat)
			}
		}
	}
	if dealers != 1 {
		return NewGameError(CodeStateInvariantViolated, "庄家数量异常: %d", dealers)
	}

	if g.CurrentSeat < 0 || g.CurrentSeat >= 3 {
		return NewGameError(CodeStateInvariantViolated, "行牌座位越界: %d", g.CurrentSeat)
	}

	for i, p := range g.Players {
		n := p.HandSize()
		if n != g.concealedPreDraw(p) && n != g.concealedPostDraw(p) {
			return NewGameError(CodeStateInvariantViolated,
				"座位 %d 手牌张数异常: %d (melds=%d)", i, n, len(p.Melds))
		}
	}

	if g.Window != nil && len(g.Window.Candidates) == 0 {
		return NewGameError(CodeStateInvariantViolated, "空候选的抢牌窗口")
	}
	return nil
}

func containsTile(tiles []Tile, t Tile) bool {
	for _, x := range tiles {
		if x == t {
			return true
		}
	}
	return false
}

// otherTwo 吃牌序列里除弃牌外的两张
func otherTwo(seq []Tile, discarded Tile) (Tile, Tile) {
	out := make([]Tile, 0, 2)
	skipped := false
	for _, t := range seq {
		if t == discarded && !skipped {
			skipped = true
			continue
		}
		out = append(out, t)
	}
	if len(out) != 2 {
		return Tile{}, Tile{}
	}
	return out[0], out[1]
}

// String 调试输出
func (g *GameState) String() string {
	return fmt.Sprintf("GameState{room=%s game=%s phase=%s seat=%d round=%d}",
		g.RoomID, g.GameID, g.Phase, g.CurrentSeat, g.RoundIndex)
}
