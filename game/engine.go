package game

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"sanma/common/log"

	"github.com/google/uuid"
)

const (
	engineQueueSize  = 256
	liveWriteRetries = 3
	recordRetries    = 5
	trusteeLoopLimit = 256
)

// engineEvent 投入房间队列的事件
type engineEvent struct {
	kind        string // action / timeout / disconnect / reconnect / dissolveVote / adminDissolve / startRound / snapshot
	userID      int64
	action      PlayerAction
	timeout     TimeoutEvent
	respondErr  func(error)
	respondSnap func(*GameSnapshot, error)
}

// Engine 房间对局执行器：单写者 actor
// 所有变更（玩家动作、定时器、断线重连、解散）都经同一队列串行处理
type Engine struct {
	roomID string
	cfg    Config
	users  [3]int64

	state *GameState
	sched *Scheduler

	bus       Broadcaster
	live      LiveStore
	records   RecordStore
	publisher EventPublisher

	events    chan engineEvent
	done      chan struct{}
	actorExit chan struct{}
	closed    atomic.Bool
	closeOnce sync.Once

	round            int
	dealerSeat       int
	scores           [3]int
	degraded         bool
	seedFn           func() int64
	grace            time.Duration
	disconnectedAt   map[int]time.Time
	trusteeAnnounced [3]bool
	dismissVotes     map[int64]bool

	// 房间层回调，游戏整场结束 / 解散时通知
	onGameOver  func(scores [3]int)
	onDissolved func(reason string)
}

// EngineDeps 引擎依赖注入
type EngineDeps struct {
	Bus         Broadcaster
	Live        LiveStore
	Records     RecordStore
	Publisher   EventPublisher
	SeedFn      func() int64
	GracePeriod time.Duration
	OnGameOver  func(scores [3]int)
	OnDissolved func(reason string)
}

func NewEngine(roomID string, cfg Config, users [3]int64, deps EngineDeps) *Engine {
	eg := &Engine{
		roomID:         roomID,
		cfg:            cfg,
		users:          users,
		bus:            deps.Bus,
		live:           deps.Live,
		records:        deps.Records,
		publisher:      deps.Publisher,
		seedFn:         deps.SeedFn,
		grace:          deps.GracePeriod,
		events:         make(chan engineEvent, engineQueueSize),
		done:           make(chan struct{}),
		actorExit:      make(chan struct{}),
		disconnectedAt: make(map[int]time.Time),
		dismissVotes:   make(map[int64]bool),
		onGameOver:     deps.OnGameOver,
		onDissolved:    deps.OnDissolved,
	}
	if eg.bus == nil {
		eg.bus = NopBroadcaster{}
	}
	if eg.live == nil {
		eg.live = NopLiveStore{}
	}
	if eg.records == nil {
		eg.records = NopRecordStore{}
	}
	if eg.publisher == nil {
		eg.publisher = NopPublisher{}
	}
	if eg.seedFn == nil {
		eg.seedFn = func() int64 { return time.Now().UnixNano() }
	}
	eg.sched = NewScheduler(roomID, func(ev TimeoutEvent) {
		eg.post(engineEvent{kind: "timeout", timeout: ev})
	})
	return eg
}

// Start 启动 actor 并开第一局
func (eg *Engine) Start() {
	go eg.actorLoop()
	eg.post(engineEvent{kind: "startRound"})
}

func (eg *Engine) actorLoop() {
	defer close(eg.actorExit)
	for {
		select {
		case <-eg.done:
			return
		case ev := <-eg.events:
			eg.processEvent(ev)
		}
	}
}

func (eg *Engine) post(ev engineEvent) {
	if eg.closed.Load() {
		if ev.respondErr != nil {
			ev.respondErr(NewGameError(CodeRoomClosed, "房间已关闭"))
		}
		if ev.respondSnap != nil {
			ev.respondSnap(nil, NewGameError(CodeRoomClosed, "房间已关闭"))
		}
		return
	}
	select {
	case <-eg.done:
	case eg.events <- ev:
	default:
		log.Warn("房间 %s 事件队列已满, kind=%s", eg.roomID, ev.kind)
		if ev.respondErr != nil {
			ev.respondErr(NewGameError(CodeStorageUnavailable, "房间繁忙"))
		}
	}
}

// SubmitAction 提交玩家动作
func (eg *Engine) SubmitAction(userID int64, action PlayerAction, respond func(error)) {
	eg.post(engineEvent{kind: "action", userID: userID, action: action, respondErr: respond})
}

// NotifyDisconnect 连接断开
func (eg *Engine) NotifyDisconnect(userID int64) {
	eg.post(engineEvent{kind: "disconnect", userID: userID})
}

// NotifyReconnect 重连成功，回以个人视角快照
func (eg *Engine) NotifyReconnect(userID int64, respond func(*GameSnapshot, error)) {
	eg.post(engineEvent{kind: "reconnect", userID: userID, respondSnap: respond})
}

// RequestSnapshot 主动拉取快照
func (eg *Engine) RequestSnapshot(userID int64, respond func(*GameSnapshot, error)) {
	eg.post(engineEvent{kind: "snapshot", userID: userID, respondSnap: respond})
}

// VoteDissolve 发起/附议解散投票
func (eg *Engine) VoteDissolve(userID int64, respond func(error)) {
	eg.post(engineEvent{kind: "dissolveVote", userID: userID, respondErr: respond})
}

// AdminDissolve 管理侧强制解散
func (eg *Engine) AdminDissolve() {
	eg.post(engineEvent{kind: "adminDissolve"})
}

func (eg *Engine) processEvent(ev engineEvent) {
	switch ev.kind {
	case "startRound":
		eg.handleStartRound()
	case "action":
		eg.handleAction(ev.userID, ev.action, ev.respondErr)
	case "timeout":
		eg.handleTimeout(ev.timeout)
	case "disconnect":
		eg.handleDisconnect(ev.userID)
	case "reconnect":
		eg.handleReconnect(ev.userID, ev.respondSnap)
	case "snapshot":
		eg.handleSnapshot(ev.userID, ev.respondSnap)
	case "dissolveVote":
		eg.handleDissolveVote(ev.userID, ev.respondErr)
	case "adminDissolve":
		eg.dissolve("admin")
	default:
		log.Warn("房间 %s 未知事件: %s", eg.roomID, ev.kind)
	}
}

func (eg *Engine) seatOf(userID int64) (int, bool) {
	for i, u := range eg.users {
		if u == userID {
			return i, true
		}
	}
	return -1, false
}

// handleStartRound 开一局：建状态机、发牌、庄家首摸
func (eg *Engine) handleStartRound() {
	seed := eg.seedFn()
	gameID := uuid.NewString()
	g := NewGameState(eg.roomID, gameID, eg.cfg, seed, eg.dealerSeat, eg.round, eg.users)
	for i := 0; i < 3; i++ {
		g.Players[i].Score = eg.scores[i]
	}
	if err := g.Deal(); err != nil {
		log.Error("房间 %s 发牌失败: %v", eg.roomID, err)
		eg.dissolve("deal_failed")
		return
	}
	eg.state = g

	// 断线中的座位保持原状态
	for seat := range eg.disconnectedAt {
		g.Players[seat].Status = StatusDisconnected
	}

	log.Info("房间 %s 第 %d 局开始, game=%s dealer=%d seed=%d",
		eg.roomID, eg.round, gameID, eg.dealerSeat, seed)

	for i := 0; i < 3; i++ {
		eg.bus.PushToUser(eg.users[i], EventGameStart, BuildSnapshot(g, i))
	}

	eg.advanceDraw(eg.dealerSeat)
}

// advanceDraw 让座位摸牌并进入其出牌回合；摸空直接流局
func (eg *Engine) advanceDraw(seat int) {
	g := eg.state
	t, err := g.DrawFor(seat)
	if err != nil {
		if CodeOf(err) == CodeWallExhausted {
			eg.drawOut()
			return
		}
		eg.damage("摸牌失败: %v", err)
		return
	}

	eg.bus.PushToUser(eg.users[seat], EventPlayerAction, DrawTileDTO{Tile: t})
	eg.announceTurn(seat)
	eg.persistLive()
	eg.runTrustee()
}

func (eg *Engine) announceTurn(seat int) {
	g := eg.state
	dto := TurnChangedDTO{Seat: seat, Deadline: g.TurnDeadline.UnixMilli(), GameID: g.GameID}
	eg.bus.PushToRoom(eg.roomID, EventTurnChanged, dto)
	eg.bus.PushToUser(eg.users[seat], EventYourTurn, dto)
	eg.sched.Arm(TimeoutTurn, seat, g.TurnDeadline)
}

// handleAction 校验并执行一条玩家动作
func (eg *Engine) handleAction(userID int64, action PlayerAction, respond func(error)) {
	reply := func(err error) {
		if respond != nil {
			respond(err)
		}
	}

	g := eg.state
	if g == nil || (g.Phase != PhasePlaying) {
		reply(NewGameError(CodeRoomClosed, "对局未在进行中"))
		return
	}
	seat, ok := eg.seatOf(userID)
	if !ok {
		reply(NewGameError(CodeRoomNotFound, "用户 %d 不在本房间", userID))
		return
	}

	res, err := eg.applyAction(seat, action)
	reply(err)
	if err != nil {
		return
	}

	eg.broadcastAction(seat, action)
	eg.persistLive()
	eg.afterResolution(res)
}

// applyAction 按窗口/回合语境分发到状态机
func (eg *Engine) applyAction(seat int, action PlayerAction) (*Resolution, error) {
	g := eg.state

	if w := g.Window; w != nil {
		if !w.IsCandidate(seat) {
			return nil, NewGameError(CodeActionNotAvailable, "座位 %d 不在抢牌窗口中", seat)
		}
		if eg.now().After(w.Deadline) {
			// 迟到决定按过处理，错误码向客户端说明原因
			res, _ := g.TimeoutPass(seat)
			eg.afterResolution(res)
			return nil, NewGameError(CodeClaimWindowClosed, "窗口已截止")
		}
		return g.Decide(seat, action)
	}

	switch action.Kind {
	case ActionPlay:
		res, err := g.Discard(seat, action.Tile)
		if err != nil {
			return nil, err
		}
		eg.sched.Cancel(TimeoutTurn, seat)
		return res, nil
	case ActionHu:
		if err := g.SelfDrawHu(seat); err != nil {
			return nil, err
		}
		eg.sched.Cancel(TimeoutTurn, seat)
		return &Resolution{Closed: true, Won: true}, nil
	case ActionGang:
		var err error
		if action.GangKind == GangBu {
			err = g.UpgradeGang(seat, action.Tile)
		} else if action.GangKind == GangAn || action.GangKind == "" {
			err = g.ConcealedGang(seat, action.Tile)
		} else {
			err = NewGameError(CodeActionNotAvailable, "回合内只能暗杠或补杠")
		}
		if err != nil {
			return nil, err
		}
		return &Resolution{Closed: true, NeedsDraw: true, NextSeat: seat}, nil
	default:
		return nil, NewGameError(CodeActionNotAvailable, "动作 %s 不在当前时机", action.Kind)
	}
}

func (eg *Engine) broadcastAction(seat int, action PlayerAction) {
	dto := PlayerActionDTO{Seat: seat, Kind: action.Kind, GangKind: action.GangKind}
	switch action.Kind {
	case ActionPlay, ActionPeng, ActionGang, ActionHu:
		t := action.Tile
		dto.Tile = &t
	case ActionChi:
		dto.Sequence = action.Sequence
	case ActionPass:
		// 决定在窗口关闭前不可见
		return
	}
	eg.bus.PushToRoom(eg.roomID, EventPlayerAction, dto)
}

// afterResolution 根据状态机的处理指示推进流程
func (eg *Engine) afterResolution(res *Resolution) {
	g := eg.state
	if g == nil {
		return
	}
	if g.Phase == PhaseSettlement {
		eg.finishRound()
		return
	}
	if res == nil {
		return
	}

	if !res.Closed {
		// 窗口刚开或仍在收集决定
		if w := g.Window; w != nil {
			eg.armClaimWindow(w)
		}
		return
	}

	if res.NeedsDraw {
		seat := g.CurrentSeat
		t, err := g.DrawReplacement(seat)
		if err != nil {
			if CodeOf(err) == CodeWallExhausted {
				eg.drawOut()
				return
			}
			eg.damage("补牌失败: %v", err)
			return
		}
		eg.bus.PushToUser(eg.users[seat], EventPlayerAction, DrawTileDTO{Tile: t, Back: true})
		eg.announceTurn(seat)
		eg.persistLive()
		eg.runTrustee()
		return
	}

	if res.NextNeedsDraw {
		eg.sched.Cancel(TimeoutClaim, -1)
		eg.advanceDraw(res.NextSeat)
		return
	}

	// 碰/吃成功：鸣牌者直接进入出牌回合
	if len(res.Taken) > 0 {
		eg.sched.Cancel(TimeoutClaim, -1)
		eg.announceTurn(res.NextSeat)
		eg.persistLive()
		eg.runTrustee()
	}
}

// armClaimWindow 窗口开启时广播候选并定一个窗口级定时器
func (eg *Engine) armClaimWindow(w *ClaimWindow) {
	for seat, kinds := range w.Candidates {
		if w.Decided(seat) {
			continue
		}
		eg.bus.PushToUser(eg.users[seat], EventGameStateUpdate, ClaimWindowSnapshot{
			DiscardedTile: w.DiscardedTile,
			DiscarderSeat: w.DiscarderSeat,
			MyActions:     append(append([]ActionKind{}, kinds...), ActionPass),
			Deadline:      w.Deadline,
		})
	}
	eg.sched.Arm(TimeoutClaim, -1, w.Deadline)
	eg.runTrustee()
}

// handleTimeout 过期定时器直接丢弃
func (eg *Engine) handleTimeout(ev TimeoutEvent) {
	g := eg.state
	if g == nil || g.Phase != PhasePlaying {
		return
	}

	switch ev.Kind {
	case TimeoutTurn:
		if g.Window != nil || !ev.AsOfDeadline.Equal(g.TurnDeadline) {
			return
		}
		seat := g.CurrentSeat
		p := g.Players[seat]
		p.TimeoutCount++
		log.Info("房间 %s 座位 %d 出牌超时, 累计 %d 次", eg.roomID, seat, p.TimeoutCount)
		eg.maybeTrustee(seat)
		eg.autoPlay(seat)

	case TimeoutClaim:
		w := g.Window
		if w == nil || !ev.AsOfDeadline.Equal(w.Deadline) {
			return
		}
		for _, seat := range w.UndecidedSeats() {
			g.Players[seat].TimeoutCount++
			eg.maybeTrustee(seat)
			res, err := g.TimeoutPass(seat)
			if err != nil {
				continue
			}
			if res != nil && res.Closed {
				eg.persistLive()
				eg.afterResolution(res)
				return
			}
		}
		eg.persistLive()

	case TimeoutGrace:
		at, ok := eg.disconnectedAt[ev.Seat]
		if !ok || !ev.AsOfDeadline.Equal(at.Add(eg.gracePeriod())) {
			return
		}
		log.Info("房间 %s 座位 %d 断线超过宽限期, 进入托管", eg.roomID, ev.Seat)
		eg.enterTrustee(ev.Seat)
		eg.runTrustee()
	}
}

// autoPlay 超时座位按托管策略代打一手
func (eg *Engine) autoPlay(seat int) {
	g := eg.state
	action, ok := TrusteeDecide(g, seat)
	if !ok {
		return
	}
	res, err := eg.applyAction(seat, action)
	if err != nil {
		eg.damage("代打失败: %v", err)
		return
	}
	eg.broadcastAction(seat, action)
	eg.persistLive()
	eg.afterResolution(res)
}

// maybeTrustee 超时次数达到阈值转入托管
func (eg *Engine) maybeTrustee(seat int) {
	if !eg.cfg.Turn.AutoTrustee {
		return
	}
	p := eg.state.Players[seat]
	if p.Status != StatusTrustee && p.TimeoutCount >= eg.cfg.Turn.TrusteeTimeoutCount {
		eg.enterTrustee(seat)
	}
}

func (eg *Engine) enterTrustee(seat int) {
	p := eg.state.Players[seat]
	if p.Status == StatusTrustee {
		return
	}
	p.Status = StatusTrustee
	if !eg.trusteeAnnounced[seat] {
		eg.trusteeAnnounced[seat] = true
		eg.bus.PushToRoom(eg.roomID, EventTrusteeActivated, TrusteeDTO{Seat: seat, UserID: eg.users[seat]})
	}
}

// runTrustee 托管座位有待决动作时连续代打，直到轮到真人
func (eg *Engine) runTrustee() {
	g := eg.state
	for i := 0; i < trusteeLoopLimit; i++ {
		if g == nil || g.Phase != PhasePlaying {
			return
		}
		acted := false
		for seat := 0; seat < 3; seat++ {
			if g.Players[seat].Status != StatusTrustee {
				continue
			}
			action, ok := TrusteeDecide(g, seat)
			if !ok {
				continue
			}
			res, err := eg.applyAction(seat, action)
			if err != nil {
				eg.damage("托管代打失败: %v", err)
				return
			}
			eg.broadcastAction(seat, action)
			eg.persistLive()
			eg.afterResolution(res)
			acted = true
			break
		}
		if !acted {
			return
		}
		g = eg.state
	}
	log.Warn("房间 %s 托管循环达到上限", eg.roomID)
}

func (eg *Engine) handleDisconnect(userID int64) {
	seat, ok := eg.seatOf(userID)
	if !ok {
		return
	}
	g := eg.state
	if g == nil || g.Phase != PhasePlaying {
		return
	}
	p := g.Players[seat]
	if p.Status != StatusTrustee {
		p.Status = StatusDisconnected
	}
	now := eg.now()
	eg.disconnectedAt[seat] = now
	deadline := now.Add(eg.gracePeriod())
	eg.sched.Arm(TimeoutGrace, seat, deadline)
	eg.bus.PushToRoom(eg.roomID, EventDisconnected, SeatUserDTO{Seat: seat, UserID: userID})
	log.Info("房间 %s 座位 %d 断线, 宽限到 %v", eg.roomID, seat, deadline)
}

func (eg *Engine) handleReconnect(userID int64, respond func(*GameSnapshot, error)) {
	reply := func(s *GameSnapshot, err error) {
		if respond != nil {
			respond(s, err)
		}
	}
	seat, ok := eg.seatOf(userID)
	if !ok {
		reply(nil, NewGameError(CodeRoomNotFound, "用户 %d 不在本房间", userID))
		return
	}
	g := eg.state
	if g == nil {
		reply(nil, NewGameError(CodeRoomClosed, "对局未在进行中"))
		return
	}

	delete(eg.disconnectedAt, seat)
	eg.sched.Cancel(TimeoutGrace, seat)

	p := g.Players[seat]
	p.TimeoutCount = 0
	eg.trusteeAnnounced[seat] = false
	if p.Status == StatusTrustee || p.Status == StatusDisconnected {
		if g.Phase == PhasePlaying {
			if g.CurrentSeat == seat {
				p.Status = StatusPlaying
			} else {
				p.Status = StatusWaitingTurn
			}
		} else {
			p.Status = StatusFinished
		}
	}

	eg.bus.PushToRoom(eg.roomID, EventReconnected, SeatUserDTO{Seat: seat, UserID: userID})
	log.Info("房间 %s 座位 %d 重连恢复", eg.roomID, seat)
	reply(BuildSnapshot(g, seat), nil)
}

func (eg *Engine) handleSnapshot(userID int64, respond func(*GameSnapshot, error)) {
	seat, ok := eg.seatOf(userID)
	if !ok {
		respond(nil, NewGameError(CodeRoomNotFound, "用户 %d 不在本房间", userID))
		return
	}
	if eg.state == nil {
		respond(nil, NewGameError(CodeRoomClosed, "对局未在进行中"))
		return
	}
	respond(BuildSnapshot(eg.state, seat), nil)
}

func (eg *Engine) handleDissolveVote(userID int64, respond func(error)) {
	if _, ok := eg.seatOf(userID); !ok {
		if respond != nil {
			respond(NewGameError(CodeRoomNotFound, "用户 %d 不在本房间", userID))
		}
		return
	}
	eg.dismissVotes[userID] = true
	if respond != nil {
		respond(nil)
	}

	votes := make([]int64, 0, len(eg.dismissVotes))
	for u := range eg.dismissVotes {
		votes = append(votes, u)
	}
	eg.bus.PushToRoom(eg.roomID, EventDismissVote, DismissVoteDTO{
		RoomID: eg.roomID, Votes: votes, Need: eg.cfg.DismissVotes,
	})
	if len(eg.dismissVotes) >= eg.cfg.DismissVotes {
		eg.dissolve("vote")
	}
}

// drawOut 荒牌流局
func (eg *Engine) drawOut() {
	if err := eg.state.DrawOut(); err != nil {
		eg.damage("流局失败: %v", err)
		return
	}
	eg.finishRound()
}

// finishRound 一局结束：广播结算、封存落库、续局或整场结束
func (eg *Engine) finishRound() {
	g := eg.state
	st := g.Settlement
	eg.sched.Cancel(TimeoutTurn, g.CurrentSeat)
	eg.sched.Cancel(TimeoutClaim, -1)

	for i := 0; i < 3; i++ {
		eg.scores[i] = g.Players[i].Score
	}
	lastRound := eg.round+1 >= eg.cfg.TotalRounds || st.Kind == SettleDissolve

	eg.bus.PushToRoom(eg.roomID, EventGameEnd, GameEndDTO{
		GameID:     g.GameID,
		RoundIndex: g.RoundIndex,
		Settlement: st,
		Scores:     eg.scores,
		LastRound:  lastRound,
	})

	record, err := SealRecord(g)
	if err != nil {
		eg.damage("封存对局失败: %v", err)
		return
	}
	// 战绩是一次性写；写不进去就停在 SETTLEMENT，不能丢局
	if !eg.persistRecord(record) {
		eg.markDegraded("record_persist_failed")
		return
	}
	g.Finish()
	eg.publisher.PublishGameEnd(record)
	log.Info("房间 %s 第 %d 局落库完成, game=%s", eg.roomID, eg.round, g.GameID)

	if lastRound {
		eg.gameOver()
		return
	}

	eg.rotateDealer(st)
	eg.round++
	eg.post(engineEvent{kind: "startRound"})
}

// rotateDealer 按连庄规则确定下一局庄家
func (eg *Engine) rotateDealer(st *Settlement) {
	switch eg.cfg.Dealer {
	case DealerRotateFixed:
		return
	case DealerRotateWinner:
		for _, w := range st.Winners {
			if w.Seat == eg.dealerSeat {
				return // 庄家胡牌连庄
			}
		}
	}
	eg.dealerSeat = (eg.dealerSeat + 1) % 3
}

func (eg *Engine) gameOver() {
	log.Info("房间 %s 整场结束, 总分 %v", eg.roomID, eg.scores)
	if eg.onGameOver != nil {
		eg.onGameOver(eg.scores)
	}
	eg.Close()
}

// dissolve 解散：强制终局并回收
func (eg *Engine) dissolve(reason string) {
	if eg.state != nil && eg.state.Phase == PhasePlaying {
		eg.state.Dissolve()
		if record, err := SealRecord(eg.state); err == nil {
			// 解散局的记录尽力落库
			eg.persistRecord(record)
		}
	}
	eg.bus.PushToRoom(eg.roomID, EventRoomDissolved, map[string]string{"roomId": eg.roomID, "reason": reason})
	eg.publisher.PublishRoomDissolved(eg.roomID)
	log.Info("房间 %s 解散: %s", eg.roomID, reason)
	if eg.onDissolved != nil {
		eg.onDissolved(reason)
	}
	eg.Close()
}

// persistLive 写通实时状态：指数退避重试，写不动转 DEGRADED 后继续内存运行
func (eg *Engine) persistLive() {
	g := eg.state
	if g == nil {
		return
	}
	backoff := 50 * time.Millisecond
	var err error
	for i := 0; i < liveWriteRetries; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		err = eg.live.SaveGameState(ctx, g)
		cancel()
		if err == nil {
			return
		}
		time.Sleep(backoff)
		backoff *= 2
	}
	log.Error("房间 %s 实时状态写入失败: %v", eg.roomID, err)
	eg.markDegraded("live_store_failed")
}

func (eg *Engine) persistRecord(record *GameRecord) bool {
	backoff := 100 * time.Millisecond
	var err error
	for i := 0; i < recordRetries; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err = eg.records.SaveGameRecord(ctx, record)
		cancel()
		if err == nil {
			return true
		}
		time.Sleep(backoff)
		backoff *= 2
	}
	log.Error("房间 %s 战绩落库失败: %v", eg.roomID, err)
	return false
}

func (eg *Engine) markDegraded(reason string) {
	if eg.degraded {
		return
	}
	eg.degraded = true
	eg.publisher.PublishRoomDegraded(eg.roomID, reason)
	log.Error("房间 %s 进入 DEGRADED: %s", eg.roomID, reason)
}

// Degraded 房间是否降级
func (eg *Engine) Degraded() bool {
	return eg.degraded
}

// damage 状态机损坏级错误，房间降级并解散
func (eg *Engine) damage(format string, args ...any) {
	log.Error("房间 %s 损坏: "+format, append([]any{eg.roomID}, args...)...)
	eg.markDegraded("state_damage")
	eg.dissolve("damaged")
}

func (eg *Engine) now() time.Time {
	return time.Now()
}

func (eg *Engine) gracePeriod() time.Duration {
	if eg.grace > 0 {
		return eg.grace
	}
	return 30 * time.Second
}

// Close 停 actor 与所有定时器，幂等
func (eg *Engine) Close() {
	eg.closeOnce.Do(func() {
		eg.closed.Store(true)
		close(eg.done)
		eg.sched.Close()
	})
}
