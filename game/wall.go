package game

import (
	"math/rand"
)

// Wall 牌墙：洗好的整副牌加一个摸牌游标
// 杠的补牌从墙尾取（本规则没有独立的王牌区），头尾相遇即荒牌
type Wall struct {
	tiles []Tile
	head  int // 下一张正常摸牌
	tail  int // 最后一张未摸的牌（杠补牌位置）
}

// NewWall 用 64 位种子做 Fisher-Yates 洗牌
// 同一种子必然得到同一面墙，复盘依赖这一点
func NewWall(mode TileMode, seed int64) *Wall {
	tiles := BuildDeck(mode)
	rng := rand.New(rand.NewSource(seed))
	for i := len(tiles) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		tiles[i], tiles[j] = tiles[j], tiles[i]
	}
	return &Wall{
		tiles: tiles,
		head:  0,
		tail:  len(tiles) - 1,
	}
}

// Remaining 剩余可摸张数
func (w *Wall) Remaining() int {
	return w.tail - w.head + 1
}

// Draw 从墙头摸一张
func (w *Wall) Draw() (Tile, error) {
	if w.Remaining() <= 0 {
		return Tile{}, ErrWallExhausted
	}
	t := w.tiles[w.head]
	w.head++
	return t, nil
}

// DrawBack 从墙尾摸一张（杠后补牌）
func (w *Wall) DrawBack() (Tile, error) {
	if w.Remaining() <= 0 {
		return Tile{}, ErrWallExhausted
	}
	t := w.tiles[w.tail]
	w.tail--
	return t, nil
}

// DealtTiles 已经离开牌墙的张数
func (w *Wall) DealtTiles() int {
	return len(w.tiles) - w.Remaining()
}
