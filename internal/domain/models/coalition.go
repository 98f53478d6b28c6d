package models

import "time"

type Coalition struct {
	ID          int64     `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description *string   `db:"description" json:"description"`
	Focus       *string   `db:"focus" json:"focus"`
	Location    *string   `db:"location" json:"location"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	Members     []Member  `json:"members"`
}

type Member struct {
	ID    int64  `db:"id" json:"id"`
	Email string `db:"email" json:"email"`
}

type CoalitionFilter struct {
	Search string
	Region string
}
