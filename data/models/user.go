package models

import "time"

type User struct {
	ID        int64     `json:"id" db:"id" readOnly:"true"`
	Name      string    `validate:"required,min=2,max=250" json:"name" db:"name"`
	Email     string    `validate:"required,email" json:"email" db:"email"`
	CreatedAt time.Time `json:"createdAt" db:"created_at" readOnly:"true"`
}

func (User) TableName() string {
	return "users"
}

func (u User) ColumnNames() []string {
	return GetColumnNames(u)
}

func (u User) GetID() int64 {
	return u.ID
}
