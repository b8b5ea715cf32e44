package solver

import (
	"math/rand"
	"testing"

	"github.com/beka-birhanu/vinom-mines/field"
	"github.com/beka-birhanu/vinom-mines/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// parse builds a field from rows of symbols:
//
//	'.' hidden safe   'o' revealed safe   'F' flagged safe
//	'*' hidden mine   'x' revealed mine   'M' flagged mine
func parse(t *testing.T, rows ...string) field.Field {
	t.Helper()
	data := make([][]field.CellState, len(rows))
	for r, row := range rows {
		data[r] = make([]field.CellState, len(row))
		for c, ch := range row {
			data[r][c] = field.CellState{
				Position:   field.Position{Row: r, Col: c},
				IsMine:     ch == '*' || ch == 'x' || ch == 'M',
				IsRevealed: ch == 'o' || ch == 'x',
				IsFlagged:  ch == 'F' || ch == 'M',
			}
		}
	}
	for r := range data {
		for c := range data[r] {
			for dr := -1; dr <= 1; dr++ {
				for dc := -1; dc <= 1; dc++ {
					nr, nc := r+dr, c+dc
					if (dr != 0 || dc != 0) && nr >= 0 && nr < len(data) && nc >= 0 && nc < len(data[r]) && data[nr][nc].IsMine {
						data[r][c].AdjacentMines++
					}
				}
			}
		}
	}

	f, err := field.New(field.ShapeSquare, field.Config{Rows: len(rows), Cols: len(rows[0])}, field.WithData(data))
	require.NoError(t, err)
	require.NoError(t, f.Validate())
	return f
}

func probabilityAt(t *testing.T, probs []Probability, r, c int) float64 {
	t.Helper()
	for _, p := range probs {
		if p.Position == (field.Position{Row: r, Col: c}) {
			return p.Probability
		}
	}
	t.Fatalf("no probability reported for (%d,%d)", r, c)
	return -1
}

func TestSolveLocalInference(t *testing.T) {
	f := parse(t,
		"*.o",
		"ooo",
	)

	probs, err := New(f).Solve()
	require.NoError(t, err)

	assert.Len(t, probs, 2)
	assert.Equal(t, 1.0, probabilityAt(t, probs, 0, 0))
	assert.Equal(t, 0.0, probabilityAt(t, probs, 0, 1))

	guessing, err := New(f).IsGuessingState()
	require.NoError(t, err)
	assert.False(t, guessing)
}

func TestSolveRegionEnumeration(t *testing.T) {
	t.Run("Unique layout", func(t *testing.T) {
		f := parse(t,
			"ooo",
			".*.",
		)

		probs, err := New(f).Solve()
		require.NoError(t, err)
		assert.Equal(t, []Probability{
			{Position: field.Position{Row: 1, Col: 0}, Probability: 0},
			{Position: field.Position{Row: 1, Col: 1}, Probability: 1},
			{Position: field.Position{Row: 1, Col: 2}, Probability: 0},
		}, probs)
	})

	t.Run("Fifty fifty", func(t *testing.T) {
		f := parse(t,
			"oo",
			"*.",
		)

		probs, err := New(f).Solve()
		require.NoError(t, err)
		assert.Equal(t, 0.5, probabilityAt(t, probs, 1, 0))
		assert.Equal(t, 0.5, probabilityAt(t, probs, 1, 1))

		guessing, err := New(f).IsGuessingState()
		require.NoError(t, err)
		assert.True(t, guessing)
	})

	t.Run("Flags are not trusted", func(t *testing.T) {
		f := parse(t,
			"oo",
			"M.",
		)

		probs, err := New(f).Solve()
		require.NoError(t, err)
		assert.Equal(t, 0.5, probabilityAt(t, probs, 1, 0))
	})

	t.Run("Independent regions", func(t *testing.T) {
		f := parse(t,
			"oo..oo",
			"*....*",
		)

		probs, err := New(f).Solve()
		require.NoError(t, err)
		assert.Equal(t, 0.5, probabilityAt(t, probs, 1, 0))
		assert.Equal(t, 0.0, probabilityAt(t, probs, 0, 2))
		assert.Equal(t, 0.0, probabilityAt(t, probs, 1, 2))
		assert.Equal(t, 0.5, probabilityAt(t, probs, 1, 5))
	})
}

func TestSolveRevealedMineIsKnown(t *testing.T) {
	f := parse(t, "xo.")

	probs, err := New(f).Solve()
	require.NoError(t, err)
	assert.Equal(t, []Probability{
		{Position: field.Position{Row: 0, Col: 2}, Probability: 0},
	}, probs)
}

func TestSolveRegionCeiling(t *testing.T) {
	f := parse(t,
		"ooo",
		".*.",
	)

	_, err := New(f, WithMaxRegionVariables(2)).Solve()
	assert.ErrorIs(t, err, ErrRegionTooLarge)

	_, err = New(f, WithMaxRegionVariables(2)).IsGuessingState()
	assert.ErrorIs(t, err, ErrRegionTooLarge)
}

func TestSolveNoFrontier(t *testing.T) {
	f := parse(t,
		"..",
		".*",
	)

	probs, err := New(f).Solve()
	require.NoError(t, err)
	assert.Empty(t, probs)

	guessing, err := New(f).IsGuessingState()
	require.NoError(t, err)
	assert.True(t, guessing)
}

func TestSolveNilField(t *testing.T) {
	_, err := New(nil).Solve()
	assert.ErrorIs(t, err, ErrNilField)
}

func TestSolveIsSound(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	c := game.Config{Rows: 9, Cols: 9, Mines: 12}

	for round := 0; round < 30; round++ {
		e, err := game.NewEngine(c, game.WithRandSource(rng.Intn))
		require.NoError(t, err)

		for step := 0; step < 6 && !e.Status().IsTerminal(); step++ {
			_, err := e.Apply(game.Action{
				Kind:     game.ActionReveal,
				Position: field.Position{Row: rng.Intn(c.Rows), Col: rng.Intn(c.Cols)},
			})
			require.NoError(t, err)
		}

		_, truth := e.Export()
		view, err := field.New(field.ShapeSquare, field.Config{Rows: c.Rows, Cols: c.Cols}, field.WithData(field.Obscure(truth)))
		require.NoError(t, err)

		probs, err := New(view).Solve()
		if err != nil {
			require.ErrorIs(t, err, ErrRegionTooLarge)
			continue
		}

		for _, p := range probs {
			cell := truth[p.Position.Row][p.Position.Col]
			assert.False(t, cell.IsRevealed)
			assert.GreaterOrEqual(t, p.Probability, 0.0)
			assert.LessOrEqual(t, p.Probability, 1.0)
			if p.IsSafe() {
				assert.False(t, cell.IsMine, "cell %v reported safe", p.Position)
			}
			if p.IsMine() {
				assert.True(t, cell.IsMine, "cell %v reported mined", p.Position)
			}
		}
	}
}

func TestGuessing(t *testing.T) {
	at := func(r, c int, p float64) Probability {
		return Probability{Position: field.Position{Row: r, Col: c}, Probability: p}
	}

	assert.True(t, Guessing(nil))
	assert.True(t, Guessing([]Probability{at(0, 0, 0.5), at(0, 1, 1)}))
	assert.False(t, Guessing([]Probability{at(0, 0, 0.5), at(0, 1, 0)}))
}
