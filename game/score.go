package game

// FanCap 番数上限
const FanCap = 13

// HuClaim 一次胡牌声明与其分析结果
type HuClaim struct {
	Seat     int
	Analysis *WinAnalysis
}

// WinnerDetail 单个赢家的结算明细
type WinnerDetail struct {
	Seat     int      `json:"seat"`
	UserID   int64    `json:"userId"`
	Fan      int      `json:"fan"`
	RawFan   int      `json:"rawFan"`
	Score    int      `json:"score"`
	SelfDraw bool     `json:"selfDraw"`
	Wait     WaitKind `json:"wait"`
}

// SettleKind 结算类型
type SettleKind string

const (
	SettleWinKind  SettleKind = "WIN"
	SettleDrawOut  SettleKind = "DRAW_OUT"
	SettleDissolve SettleKind = "DISSOLVED"
)

// Settlement 一局的结算结果，WinDeltas+GangDeltas=Totals 且三家之和为零
type Settlement struct {
	Kind          SettleKind     `json:"kind"`
	Winners       []WinnerDetail `json:"winners,omitempty"`
	DiscarderSeat int            `json:"discarderSeat"` // 自摸为 -1
	WinDeltas     [3]int         `json:"winDeltas"`
	GangDeltas    [3]int         `json:"gangDeltas"`
	Totals        [3]int         `json:"totals"`
}

// FanFor 按固定顺序累加番数，封顶 13
// 七对短路：计完自摸后直接加 4 番并跳过其余条目
func FanFor(a *WinAnalysis, cfg *Config) int {
	fan := 1
	ht := cfg.HuTypes
	if a.SelfDraw && ht.Has(HuSelfDraw) {
		fan++
	}
	if a.SevenPairs {
		if ht.Has(HuSevenPairs) {
			fan += 4
		}
		return capFan(fan)
	}
	if a.AllSameSuit && ht.Has(HuAllSameSuit) {
		fan += 8
	}
	if a.MixedOneSuit && ht.Has(HuMixedOneSuit) {
		fan += 3
	}
	if a.AllTerminals && ht.Has(HuAllTerminals) {
		fan += 10
	}
	if a.TerminalInEach && ht.Has(HuTerminalInEach) {
		if a.TerminalPure {
			fan += 4
		} else {
			fan += 2
		}
	}
	if a.NoTerminals && ht.Has(HuNoTerminals) {
		fan++
	}
	if a.AllPungs && ht.Has(HuAllPungs) {
		fan += 6
	}
	if a.AllConcealed && ht.Has(HuAllConcealed) {
		fan += 2
	}
	if a.Wait == WaitPair && ht.Has(HuPairWait) {
		fan++
	}
	if a.Wait == WaitEdge && ht.Has(HuEdgeWait) {
		fan++
	}
	if ht.Has(HuConcealedPungs) {
		switch a.ConcealedPungs {
		case 3:
			fan += 2
		case 4:
			fan += 13
		}
	}
	if a.ConcealedGangs >= 3 && ht.Has(HuConcealedGangs) {
		fan += 2
	}
	return capFan(fan)
}

func capFan(fan int) int {
	if fan > FanCap {
		return FanCap
	}
	return fan
}

// winnerScore 单个赢家的得分：基础分×番 → 庄家倍率 → 自摸加成 → 封顶
func winnerScore(fan int, isDealer, selfDraw bool, sc ScoreConfig) int {
	score := sc.BaseScore * fan
	if isDealer {
		score = int(float64(score) * sc.DealerMult)
	}
	if selfDraw {
		score = int(float64(score) * (1 + sc.SelfDrawBonus))
	}
	if score > sc.MaxScore {
		score = sc.MaxScore
	}
	return score
}

// scaledFan 多家胡时的番数折算：×max(0.5, 1/n) 向下取整，至少 1 番
func scaledFan(rawFan, winners int) int {
	if winners <= 1 {
		return rawFan
	}
	factor := 1.0 / float64(winners)
	if factor < 0.5 {
		factor = 0.5
	}
	fan := int(float64(rawFan) * factor)
	if fan < 1 {
		fan = 1
	}
	return fan
}

// SelectUniqueWinner 不允许一炮多响时挑唯一赢家
// 顺序：自摸优先 → 原始番高者 → 座位序更接近庄家
func SelectUniqueWinner(claims []HuClaim, dealerSeat int, cfg *Config) HuClaim {
	best := claims[0]
	bestFan := FanFor(best.Analysis, cfg)
	for _, c := range claims[1:] {
		fan := FanFor(c.Analysis, cfg)
		switch {
		case c.Analysis.SelfDraw != best.Analysis.SelfDraw:
			if c.Analysis.SelfDraw {
				best, bestFan = c, fan
			}
		case fan != bestFan:
			if fan > bestFan {
				best, bestFan = c, fan
			}
		default:
			if dealerDistance(c.Seat, dealerSeat) < dealerDistance(best.Seat, dealerSeat) {
				best, bestFan = c, fan
			}
		}
	}
	return best
}

func dealerDistance(seat, dealerSeat int) int {
	return (seat - dealerSeat + 3) % 3
}

// SettleWin 胡牌结算
// discarder 为 -1 表示自摸；多家胡时 claims 已按仲裁结果给定
func SettleWin(claims []HuClaim, discarder int, dealerSeat int, players [3]*PlayerState, cfg *Config) *Settlement {
	if !cfg.Score.MultiWinner && len(claims) > 1 {
		claims = []HuClaim{SelectUniqueWinner(claims, dealerSeat, cfg)}
	}

	st := &Settlement{Kind: SettleWinKind, DiscarderSeat: discarder}

	for _, c := range claims {
		rawFan := FanFor(c.Analysis, cfg)
		fan := scaledFan(rawFan, len(claims))
		score := winnerScore(fan, c.Seat == dealerSeat, c.Analysis.SelfDraw, cfg.Score)

		if c.Analysis.SelfDraw {
			settleSelfDraw(st, c.Seat, score, dealerSeat)
		} else {
			settleDiscardWin(st, c.Seat, discarder, score, cfg.Score)
		}

		st.Winners = append(st.Winners, WinnerDetail{
			Seat:     c.Seat,
			UserID:   players[c.Seat].UserID,
			Fan:      fan,
			RawFan:   rawFan,
			Score:    score,
			SelfDraw: c.Analysis.SelfDraw,
			Wait:     c.Analysis.Wait,
		})
	}

	st.GangDeltas = GangBonuses(players, cfg.Score)
	for i := 0; i < 3; i++ {
		st.Totals[i] = st.WinDeltas[i] + st.GangDeltas[i]
	}
	return st
}

// settleSelfDraw 自摸：两家均摊 score/2，整除余数由庄家承担，庄家是赢家则由最小座位输家承担
func settleSelfDraw(st *Settlement, winner, score, dealerSeat int) {
	each := score / 2
	remainder := score - each*2

	absorber := dealerSeat
	if absorber == winner {
		for i := 0; i < 3; i++ {
			if i != winner {
				absorber = i
				break
			}
		}
	}

	for i := 0; i < 3; i++ {
		if i == winner {
			continue
		}
		pay := each
		if i == absorber {
			pay += remainder
		}
		st.WinDeltas[i] -= pay
		st.WinDeltas[winner] += pay
	}
}

// settleDiscardWin 点炮：点炮者全付，旁家付四分之一，赢家收实付之和（三家净和恒为零）
func settleDiscardWin(st *Settlement, winner, discarder, score int, sc ScoreConfig) {
	for i := 0; i < 3; i++ {
		if i == winner {
			continue
		}
		var pay int
		if i == discarder {
			pay = int(float64(score) * sc.DiscarderRatio)
		} else {
			pay = int(float64(score) * sc.BystanderRatio)
		}
		st.WinDeltas[i] -= pay
		st.WinDeltas[winner] += pay
	}
}

// GangBonuses 杠分：与输赢无关，每个杠向其余两家各收
// 暗杠 gangBonus×4，明杠/补杠 gangBonus×2
func GangBonuses(players [3]*PlayerState, sc ScoreConfig) [3]int {
	var deltas [3]int
	for seat, p := range players {
		if p == nil {
			continue
		}
		for _, m := range p.Melds {
			if m.Kind != MeldGang {
				continue
			}
			per := sc.GangBonus * 2
			if m.GangKind == GangAn {
				per = sc.GangBonus * 4
			}
			for other := 0; other < 3; other++ {
				if other == seat {
					continue
				}
				deltas[other] -= per
				deltas[seat] += per
			}
		}
	}
	return deltas
}

// SettleDraw 荒牌流局：没有胡牌分，杠分照算
func SettleDraw(players [3]*PlayerState, cfg *Config) *Settlement {
	st := &Settlement{Kind: SettleDrawOut, DiscarderSeat: -1}
	st.GangDeltas = GangBonuses(players, cfg.Score)
	st.Totals = st.GangDeltas
	return st
}
