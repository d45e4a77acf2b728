package models

type Category struct {
	ID   int64  `json:"id" db:"id" readOnly:"true"`
	Name string `validate:"required,min=1,max=50" json:"name" db:"name"`
}

func (Category) TableName() string {
	return "categories"
}

func (c Category) ColumnNames() []string {
	return GetColumnNames(c)
}

func (c Category) GetID() int64 {
	return c.ID
}
