package model

type ChatRequest struct {
	Message   string `json:"message" binding:"required"`
	SessionID string `json:"session_id"`
}

type CreateSessionRequest struct {
	Title string `json:"title"`
}
