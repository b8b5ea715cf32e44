package field

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCellPredicates(t *testing.T) {
	tests := []struct {
		name string
		cell CellState
		want CellView
	}{
		{
			name: "Untouched empty",
			cell: CellState{},
			want: CellView{IsEmpty: true, IsUntouched: true},
		},
		{
			name: "Exploded mine",
			cell: CellState{IsMine: true, IsRevealed: true},
			want: CellView{IsMine: true, IsRevealed: true, IsExploded: true, NotFoundMine: true},
		},
		{
			name: "Wrong flag",
			cell: CellState{IsFlagged: true, AdjacentMines: 2},
			want: CellView{IsFlagged: true, AdjacentMines: 2, IsMissed: true},
		},
		{
			name: "Found mine",
			cell: CellState{IsMine: true, IsFlagged: true},
			want: CellView{IsMine: true, IsFlagged: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cell.View())
		})
	}
}
