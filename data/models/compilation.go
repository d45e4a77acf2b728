package models

// Compilation is a curated, optionally pinned set of events. Membership lives
// in the compilation_events join table, handled by the repository directly.
type Compilation struct {
	ID     int64  `json:"id" db:"id" readOnly:"true"`
	Title  string `validate:"required,min=1,max=50" json:"title" db:"title"`
	Pinned bool   `json:"pinned" db:"pinned"`
}

func (Compilation) TableName() string {
	return "compilations"
}

func (c Compilation) ColumnNames() []string {
	return GetColumnNames(c)
}

func (c Compilation) GetID() int64 {
	return c.ID
}
