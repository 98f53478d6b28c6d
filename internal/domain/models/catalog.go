package models

type Archetype struct {
	ID          int64   `db:"id" json:"id"`
	Name        string  `db:"name" json:"name"`
	Description *string `db:"description" json:"description"`
}

type Tier struct {
	ID          int64   `db:"id" json:"id"`
	Name        string  `db:"name" json:"name"`
	Level       int     `db:"level" json:"level"`
	Description *string `db:"description" json:"description"`
}
