package dto

import "breate/internal/domain/models"

type CollabCreateRequest struct {
	UserAUsername string  `json:"user_a_username" validate:"required"`
	UserBUsername string  `json:"user_b_username" validate:"required"`
	ProjectName   *string `json:"project_name"`
}

type CollabCreateResponse struct {
	Message string `json:"message"`
	LinkID  string `json:"link_id"`
}

type CollabCircleResponse struct {
	CollabCircle []models.CollabEntry `json:"collab_circle"`
}
