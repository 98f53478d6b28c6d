package models

import "time"

type Project struct {
	ID               int64     `db:"id" json:"id"`
	Title            string    `db:"title" json:"title"`
	Objective        string    `db:"objective" json:"objective"`
	ProjectType      string    `db:"project_type" json:"project_type"`
	NeededArchetypes []string  `db:"needed_archetypes" json:"needed_archetypes"`
	OpenRoles        *string   `db:"open_roles" json:"open_roles"`
	Timeline         *string   `db:"timeline" json:"timeline"`
	Region           *string   `db:"region" json:"region"`
	CoalitionTags    []string  `db:"coalition_tags" json:"coalition_tags"`
	PosterID         *int64    `db:"poster_id" json:"poster_id"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}

type ProjectFilter struct {
	Archetype string
	Region    string
}
