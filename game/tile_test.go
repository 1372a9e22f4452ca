package game

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustTile(t *testing.T, s string) Tile {
	tile, err := ParseTile(s)
	require.NoError(t, err)
	return tile
}

func tiles(t *testing.T, names ...string) []Tile {
	out := make([]Tile, 0, len(names))
	for _, n := range names {
		out = append(out, mustTile(t, n))
	}
	return out
}

func TestParseTile(t *testing.T) {
	tests := []struct {
		in   string
		suit Suit
		rank int8
		ok   bool
	}{
		{"5W", SuitWan, 5, true},
		{"1W", SuitWan, 1, true},
		{"9C", SuitTiao, 9, true},
		{"3T", SuitTong, 3, true},
		{"0W", 0, 0, false},
		{"10W", 0, 0, false},
		{"5X", 0, 0, false},
		{"", 0, 0, false},
	}
	for _, tc := range tests {
		tile, err := ParseTile(tc.in)
		if !tc.ok {
			assert.Error(t, err, tc.in)
			continue
		}
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.suit, tile.Suit)
		assert.Equal(t, tc.rank, tile.Rank)
		assert.Equal(t, tc.in, tile.String())
	}
}

func TestTileJSONRoundTrip(t *testing.T) {
	in := tiles(t, "1W", "9C", "5T")
	data, err := json.Marshal(in)
	require.NoError(t, err)
	assert.Equal(t, `["1W","9C","5T"]`, string(data))

	var out []Tile
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, in, out)
}

func TestBuildDeck(t *testing.T) {
	wan := BuildDeck(TilesWanOnly)
	assert.Len(t, wan, 36)
	counts := countTiles(wan)
	for r := 1; r <= 9; r++ {
		assert.Equal(t, 4, counts[0][r])
	}

	all := BuildDeck(TilesAllSuits)
	assert.Len(t, all, 108)
	counts = countTiles(all)
	for s := 0; s < 3; s++ {
		for r := 1; r <= 9; r++ {
			assert.Equal(t, 4, counts[s][r])
		}
	}
}
