package game

import "time"

// ClaimWindow 弃牌后的抢牌窗口
// 所有候选者决定（或超时视为过）之前，任何决定都不可见
type ClaimWindow struct {
	DiscardedTile Tile                     `json:"discardedTile"`
	DiscarderSeat int                      `json:"discarderSeat"`
	Candidates    map[int][]ActionKind     `json:"candidates"`
	Decisions     map[int]*PlayerAction    `json:"-"`
	Deadline      time.Time                `json:"deadline"`
}

func newClaimWindow(tile Tile, discarder int, candidates map[int][]ActionKind) *ClaimWindow {
	return &ClaimWindow{
		DiscardedTile: tile,
		DiscarderSeat: discarder,
		Candidates:    candidates,
		Decisions:     make(map[int]*PlayerAction, len(candidates)),
	}
}

// IsCandidate 座位是否在候选之列
func (w *ClaimWindow) IsCandidate(seat int) bool {
	_, ok := w.Candidates[seat]
	return ok
}

// HasKind 座位的候选集是否包含该动作
func (w *ClaimWindow) HasKind(seat int, kind ActionKind) bool {
	for _, k := range w.Candidates[seat] {
		if k == kind {
			return true
		}
	}
	return false
}

// Decided 座位是否已决定
func (w *ClaimWindow) Decided(seat int) bool {
	_, ok := w.Decisions[seat]
	return ok
}

// AllDecided 所有候选者都已决定
func (w *ClaimWindow) AllDecided() bool {
	for seat := range w.Candidates {
		if !w.Decided(seat) {
			return false
		}
	}
	return true
}

// UndecidedSeats 尚未决定的候选座位
func (w *ClaimWindow) UndecidedSeats() []int {
	var out []int
	for seat := range w.Candidates {
		if !w.Decided(seat) {
			out = append(out, seat)
		}
	}
	return out
}

// winningDecisions 仲裁：非过的决定里取最高优先级
// 同优先级按离出牌者的行牌顺序近者优先；多家胡全部保留
func (w *ClaimWindow) winningDecisions() []claimTaken {
	best := 0
	for _, d := range w.Decisions {
		if d.Kind == ActionPass {
			continue
		}
		if p := claimPriority(d.Kind); p > best {
			best = p
		}
	}
	if best == 0 {
		return nil
	}

	var taken []claimTaken
	// 按离出牌者的距离扫描，保证平手顺序确定
	for dist := 1; dist < 3; dist++ {
		seat := (w.DiscarderSeat + dist) % 3
		d, ok := w.Decisions[seat]
		if !ok || d.Kind == ActionPass {
			continue
		}
		if claimPriority(d.Kind) == best {
			taken = append(taken, claimTaken{Seat: seat, Action: *d})
			if d.Kind != ActionHu {
				return taken // 非胡只取最近一家
			}
		}
	}
	return taken
}

type claimTaken struct {
	Seat   int
	Action PlayerAction
}
