package dto

import "breate/internal/domain/models"

type CoalitionRequest struct {
	Name        string  `json:"name" validate:"required,max=200"`
	Description *string `json:"description"`
	Focus       *string `json:"focus"`
	Location    *string `json:"location"`
}

func (r CoalitionRequest) ToDomain() models.Coalition {
	return models.Coalition{
		Name:        r.Name,
		Description: r.Description,
		Focus:       r.Focus,
		Location:    r.Location,
	}
}
