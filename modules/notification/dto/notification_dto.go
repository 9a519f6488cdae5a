package dto

import (
	"github.com/google/uuid"
)

// MarkAsReadRequest marks the listed notifications, or all of them when All is set.
type MarkAsReadRequest struct {
	IDs []uuid.UUID `json:"ids" validate:"required_without=All,max=100"`
	All bool        `json:"all"`
}

type MarkAsReadResponse struct {
	Unread int `json:"unread"`
}
