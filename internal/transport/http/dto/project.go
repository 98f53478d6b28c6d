package dto

import "breate/internal/domain/models"

// ProjectRequest omits the poster: it is always the authenticated user.
type ProjectRequest struct {
	Title            string   `json:"title" validate:"required,max=200"`
	Objective        string   `json:"objective" validate:"required"`
	ProjectType      string   `json:"project_type" validate:"required"`
	NeededArchetypes []string `json:"needed_archetypes" validate:"required,dive,required"`
	OpenRoles        *string  `json:"open_roles"`
	Timeline         *string  `json:"timeline"`
	Region           *string  `json:"region"`
	CoalitionTags    []string `json:"coalition_tags" validate:"omitempty,dive,required"`
}

func (r ProjectRequest) ToDomain() models.Project {
	tags := r.CoalitionTags
	if tags == nil {
		tags = []string{}
	}

	return models.Project{
		Title:            r.Title,
		Objective:        r.Objective,
		ProjectType:      r.ProjectType,
		NeededArchetypes: r.NeededArchetypes,
		OpenRoles:        r.OpenRoles,
		Timeline:         r.Timeline,
		Region:           r.Region,
		CoalitionTags:    tags,
	}
}
