package game

// WaitKind 听牌形态
type WaitKind string

const (
	WaitNone     WaitKind = "NONE"
	WaitPair     WaitKind = "PAIR"      // 单骑
	WaitEdge     WaitKind = "EDGE"      // 边张（12 听 3、89 听 7）
	WaitMiddle   WaitKind = "MIDDLE"    // 嵌张
	WaitTwoSided WaitKind = "TWO_SIDED" // 两面
	WaitTriplet  WaitKind = "TRIPLET"   // 双碰刻子侧
	WaitMultiple WaitKind = "MULTIPLE"  // 多种听型并存
)

// WinAnalysis 和牌分析结果，作为番数计算的输入
type WinAnalysis struct {
	SevenPairs     bool
	AllPungs       bool
	AllSameSuit    bool
	MixedOneSuit   bool
	NoTerminals    bool
	AllTerminals   bool
	TerminalInEach bool // 每组都带 1/9
	TerminalPure   bool // TerminalInEach 下单一花色为纯
	AllConcealed   bool
	ConcealedPungs int
	ConcealedGangs int
	Wait           WaitKind
	SelfDraw       bool
}

// setKind 分解出的一组
type setKind int

const (
	setPair setKind = iota
	setTriplet
	setSequence
)

type decomposedSet struct {
	kind setKind
	suit Suit
	rank int8 // 顺子为最小点数
}

// AnalyzeWin 校验所声明的和牌并推导番种来源
// concealedHand 不含 winningTile；melds 为已副露的组
// totalSets 为整手的面子组数（全花色 4，万牌局 2，见 Config.HandSets）
func AnalyzeWin(concealedHand []Tile, melds []Meld, winningTile Tile, selfDraw bool, totalSets int) (*WinAnalysis, error) {
	if !winningTile.Valid() {
		return nil, NewGameError(CodeInvalidInput, "非法和牌张: %v", winningTile)
	}

	working := make([]Tile, 0, len(concealedHand)+1)
	working = append(working, concealedHand...)
	working = append(working, winningTile)

	// 牌数守恒：g 个杠的整手是 3×组数+2+g 张
	gangCount := 0
	meldTiles := 0
	for _, m := range melds {
		if m.Kind == MeldGang {
			gangCount++
			meldTiles += 4
		} else {
			meldTiles += 3
		}
	}
	fullHand := 3*totalSets + 2
	if len(working)+meldTiles != fullHand+gangCount {
		return nil, NewGameError(CodeInvalidWin, "牌数不符: hand=%d melds=%d", len(working), meldTiles)
	}

	counts := countTiles(working)

	analysis := &WinAnalysis{SelfDraw: selfDraw}

	// 七对：无副露且 14 张恰好是 7 种各一对（只在标准 14 张局存在）
	if totalSets == 4 && len(melds) == 0 && len(working) == 14 && isSevenPairs(&counts) {
		analysis.SevenPairs = true
		analysis.Wait = classifyWait(concealedHand, melds, winningTile, totalSets)
		fillSuitFlags(analysis, working, melds)
		analysis.AllConcealed = true
		return analysis, nil
	}

	setsNeeded := totalSets - len(melds)
	sets, ok := decomposeCanonical(counts, setsNeeded)
	if !ok {
		return nil, NewGameError(CodeInvalidWin, "手牌无法分解")
	}

	fillSuitFlags(analysis, working, melds)
	fillStructureFlags(analysis, sets, melds, winningTile, selfDraw)
	analysis.Wait = classifyWait(concealedHand, melds, winningTile, totalSets)
	return analysis, nil
}

// isSevenPairs 七种牌面各恰好一对
func isSevenPairs(c *tileCounts) bool {
	pairs := 0
	for s := 0; s < 3; s++ {
		for r := 1; r <= 9; r++ {
			switch c[s][r] {
			case 0:
			case 2:
				pairs++
			default:
				return false
			}
		}
	}
	return pairs == 7
}

// decomposeCanonical 规范分解：排序后从最小的牌起依次尝试 对子、刻子、顺子
// 返回第一个完整分解
func decomposeCanonical(c tileCounts, setsNeeded int) ([]decomposedSet, bool) {
	sets := make([]decomposedSet, 0, setsNeeded+1)
	ok := decomposeStep(&c, setsNeeded, false, &sets)
	if !ok {
		return nil, false
	}
	return sets, true
}

func decomposeStep(c *tileCounts, setsLeft int, pairTaken bool, acc *[]decomposedSet) bool {
	s, r := firstTile(c)
	if s < 0 {
		return setsLeft == 0 && pairTaken
	}

	// 对子
	if !pairTaken && c[s][r] >= 2 {
		c[s][r] -= 2
		*acc = append(*acc, decomposedSet{kind: setPair, suit: suitByIndex(s), rank: int8(r)})
		if decomposeStep(c, setsLeft, true, acc) {
			c[s][r] += 2
			return true
		}
		*acc = (*acc)[:len(*acc)-1]
		c[s][r] += 2
	}

	if setsLeft > 0 {
		// 刻子
		if c[s][r] >= 3 {
			c[s][r] -= 3
			*acc = append(*acc, decomposedSet{kind: setTriplet, suit: suitByIndex(s), rank: int8(r)})
			if decomposeStep(c, setsLeft-1, pairTaken, acc) {
				c[s][r] += 3
				return true
			}
			*acc = (*acc)[:len(*acc)-1]
			c[s][r] += 3
		}
		// 顺子
		if r+2 <= 9 && c[s][r+1] > 0 && c[s][r+2] > 0 {
			c[s][r]--
			c[s][r+1]--
			c[s][r+2]--
			*acc = append(*acc, decomposedSet{kind: setSequence, suit: suitByIndex(s), rank: int8(r)})
			if decomposeStep(c, setsLeft-1, pairTaken, acc) {
				c[s][r]++
				c[s][r+1]++
				c[s][r+2]++
				return true
			}
			*acc = (*acc)[:len(*acc)-1]
			c[s][r]++
			c[s][r+1]++
			c[s][r+2]++
		}
	}
	return false
}

func firstTile(c *tileCounts) (int, int) {
	for s := 0; s < 3; s++ {
		for r := 1; r <= 9; r++ {
			if c[s][r] > 0 {
				return s, r
			}
		}
	}
	return -1, -1
}

// fillSuitFlags 花色与幺九相关的整手判定（含副露）
func fillSuitFlags(a *WinAnalysis, working []Tile, melds []Meld) {
	suitSeen := map[Suit]bool{}
	noTerm := true
	allTerm := true
	scan := func(t Tile) {
		suitSeen[t.Suit] = true
		if t.IsTerminal() {
			noTerm = false
		} else {
			allTerm = false
		}
	}
	for _, t := range working {
		scan(t)
	}
	for _, m := range melds {
		for _, t := range m.Tiles {
			scan(t)
		}
	}
	a.AllSameSuit = len(suitSeen) == 1
	a.MixedOneSuit = len(suitSeen) == 2
	a.NoTerminals = noTerm
	a.AllTerminals = allTerm
}

// fillStructureFlags 基于规范分解推导结构性番种
func fillStructureFlags(a *WinAnalysis, sets []decomposedSet, melds []Meld, winningTile Tile, selfDraw bool) {
	allPungs := true
	terminalInEach := true
	concealedPungs := 0

	for _, s := range sets {
		switch s.kind {
		case setSequence:
			allPungs = false
			// 顺子带幺九：含 1 或 9
			if !(s.rank == 1 || s.rank+2 == 9) {
				terminalInEach = false
			}
		case setTriplet:
			concealedPungs++
			if !(s.rank == 1 || s.rank == 9) {
				terminalInEach = false
			}
		case setPair:
			if !(s.rank == 1 || s.rank == 9) {
				terminalInEach = false
			}
		}
	}

	// 点炮的那张如果落在刻子里，这组刻子不算暗刻
	if !selfDraw && concealedPungs > 0 {
		for _, s := range sets {
			if s.kind == setTriplet && s.suit == winningTile.Suit && s.rank == winningTile.Rank {
				concealedPungs--
				break
			}
		}
	}

	allConcealed := true
	concealedGangs := 0
	for _, m := range melds {
		switch m.Kind {
		case MeldChi:
			allPungs = false
			allConcealed = false
			low := m.Tiles[0].Rank
			for _, t := range m.Tiles {
				if t.Rank < low {
					low = t.Rank
				}
			}
			if !(low == 1 || low+2 == 9) {
				terminalInEach = false
			}
		case MeldPeng:
			allConcealed = false
			if !m.Tiles[0].IsTerminal() {
				terminalInEach = false
			}
		case MeldGang:
			if m.GangKind == GangAn {
				concealedGangs++
				concealedPungs++
			} else {
				allConcealed = false
			}
			if !m.Tiles[0].IsTerminal() {
				terminalInEach = false
			}
		}
	}

	a.AllPungs = allPungs
	a.AllConcealed = allConcealed
	a.ConcealedPungs = concealedPungs
	a.ConcealedGangs = concealedGangs
	a.TerminalInEach = terminalInEach && !a.AllTerminals
	a.TerminalPure = a.TerminalInEach && a.AllSameSuit
}

// classifyWait 听牌形态：枚举和牌张的所有合法落位，多种并存为 MULTIPLE
func classifyWait(concealedHand []Tile, melds []Meld, winningTile Tile, totalSets int) WaitKind {
	counts := countTiles(concealedHand)
	counts.add(winningTile, 1)
	setsNeeded := totalSets - len(melds)

	kinds := map[WaitKind]bool{}
	s := suitIndex(winningTile.Suit)
	r := int(winningTile.Rank)

	// 单骑：和牌张补成对子
	if counts[s][r] >= 2 {
		c := counts
		c[s][r] -= 2
		if decomposeNoPair(&c, setsNeeded) {
			if counts[s][r] == 2 {
				kinds[WaitPair] = true
			} else {
				// 手里还有多张同牌面，听型不唯一
				kinds[WaitTriplet] = true
			}
		}
	}
	// 刻子侧（双碰）
	if counts[s][r] >= 3 {
		c := counts
		c[s][r] -= 3
		if decomposeWithPair(&c, setsNeeded-1) {
			kinds[WaitTriplet] = true
		}
	}
	// 顺子三个落位
	for _, low := range []int{r - 2, r - 1, r} {
		if low < 1 || low+2 > 9 {
			continue
		}
		c := counts
		okTake := true
		for _, rr := range []int{low, low + 1, low + 2} {
			if c[s][rr] <= 0 {
				okTake = false
				break
			}
			c[s][rr]--
		}
		if !okTake {
			continue
		}
		if !decomposeWithPair(&c, setsNeeded-1) {
			continue
		}
		switch {
		case r == low+1:
			kinds[WaitMiddle] = true
		case r == low+2 && low == 1:
			kinds[WaitEdge] = true // 12 听 3
		case r == low && low+2 == 9:
			kinds[WaitEdge] = true // 89 听 7
		default:
			kinds[WaitTwoSided] = true
		}
	}

	if len(kinds) == 0 {
		// 七对等非面子型
		if counts[s][r] == 2 && len(melds) == 0 {
			return WaitPair
		}
		return WaitNone
	}
	if len(kinds) > 1 {
		return WaitMultiple
	}
	for k := range kinds {
		return k
	}
	return WaitNone
}

func decomposeWithPair(c *tileCounts, setsNeeded int) bool {
	if setsNeeded < 0 {
		return false
	}
	var acc []decomposedSet
	return decomposeStep(c, setsNeeded, false, &acc)
}

func decomposeNoPair(c *tileCounts, setsNeeded int) bool {
	var acc []decomposedSet
	return decomposeStep(c, setsNeeded, true, &acc)
}

// CanWin 仅判断 winningTile 能否完成和牌
func CanWin(concealedHand []Tile, melds []Meld, winningTile Tile, huTypes HuType, totalSets int) bool {
	working := make([]Tile, 0, len(concealedHand)+1)
	working = append(working, concealedHand...)
	working = append(working, winningTile)
	counts := countTiles(working)

	if totalSets == 4 && huTypes.Has(HuSevenPairs) && len(melds) == 0 && len(working) == 14 && isSevenPairs(&counts) {
		return true
	}
	setsNeeded := totalSets - len(melds)
	_, ok := decomposeCanonical(counts, setsNeeded)
	return ok
}

// WinningTiles 枚举能让该手牌和牌的所有牌面
// 与 AnalyzeWin 构成往返律：t ∈ WinningTiles(h) ⇔ AnalyzeWin(h, t) 通过
func WinningTiles(concealedHand []Tile, melds []Meld, mode TileMode, huTypes HuType, totalSets int) []Tile {
	suits := []Suit{SuitWan}
	if mode == TilesAllSuits {
		suits = allSuits
	}
	counts := countTiles(concealedHand)
	var out []Tile
	for _, s := range suits {
		for r := int8(1); r <= 9; r++ {
			t := Tile{Suit: s, Rank: r}
			if counts.get(t) >= 4 {
				continue
			}
			if CanWin(concealedHand, melds, t, huTypes, totalSets) {
				out = append(out, t)
			}
		}
	}
	return out
}
