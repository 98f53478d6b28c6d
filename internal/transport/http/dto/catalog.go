package dto

import "breate/internal/domain/models"

type ArchetypeRequest struct {
	Name        string  `json:"name" validate:"required,max=100"`
	Description *string `json:"description"`
}

func (r ArchetypeRequest) ToDomain() models.Archetype {
	return models.Archetype{Name: r.Name, Description: r.Description}
}

type TierRequest struct {
	Name        string  `json:"name" validate:"required,max=100"`
	Level       int     `json:"level" validate:"gte=0"`
	Description *string `json:"description"`
}

func (r TierRequest) ToDomain() models.Tier {
	return models.Tier{Name: r.Name, Level: r.Level, Description: r.Description}
}
