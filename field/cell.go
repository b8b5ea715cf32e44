package field

// Position is a grid coordinate.
type Position struct {
	Row int `json:"row" bson:"row"`
	Col int `json:"col" bson:"col"`
}

// CellState is the stored record of a single cell. It is also the element of the
// save/restore data grid.
type CellState struct {
	Position      Position `json:"position" bson:"position"`
	IsMine        bool     `json:"isMine" bson:"isMine"`
	IsRevealed    bool     `json:"isRevealed" bson:"isRevealed"`
	IsFlagged     bool     `json:"isFlagged" bson:"isFlagged"`
	AdjacentMines int      `json:"adjacentMines" bson:"adjacentMines"`
}

// IsEmpty reports whether the cell is safe and has no mined neighbours.
func (c CellState) IsEmpty() bool {
	return !c.IsMine && c.AdjacentMines == 0
}

// IsExploded reports whether the cell is a revealed mine.
func (c CellState) IsExploded() bool {
	return c.IsMine && c.IsRevealed
}

// IsMissed reports whether the cell is flagged without holding a mine.
func (c CellState) IsMissed() bool {
	return c.IsFlagged && !c.IsMine
}

// NotFoundMine reports whether the cell is a mine nobody flagged.
func (c CellState) NotFoundMine() bool {
	return c.IsMine && !c.IsFlagged
}

// IsUntouched reports whether the cell is neither revealed nor flagged.
func (c CellState) IsUntouched() bool {
	return !c.IsRevealed && !c.IsFlagged
}

// View returns the outward copy of the cell.
func (c CellState) View() CellView {
	return CellView{
		Position:      c.Position,
		IsMine:        c.IsMine,
		IsRevealed:    c.IsRevealed,
		IsFlagged:     c.IsFlagged,
		AdjacentMines: c.AdjacentMines,
		IsEmpty:       c.IsEmpty(),
		IsExploded:    c.IsExploded(),
		IsMissed:      c.IsMissed(),
		NotFoundMine:  c.NotFoundMine(),
		IsUntouched:   c.IsUntouched(),
	}
}

// CellView is the value handed to callers outside the field. It carries the stored
// flags together with every derived predicate, so it never has to be recomputed.
type CellView struct {
	Position      Position `json:"position"`
	IsMine        bool     `json:"isMine"`
	IsRevealed    bool     `json:"isRevealed"`
	IsFlagged     bool     `json:"isFlagged"`
	AdjacentMines int      `json:"adjacentMines"`
	IsEmpty       bool     `json:"isEmpty"`
	IsExploded    bool     `json:"isExploded"`
	IsMissed      bool     `json:"isMissed"`
	NotFoundMine  bool     `json:"notFoundMine"`
	IsUntouched   bool     `json:"isUntouched"`
}
