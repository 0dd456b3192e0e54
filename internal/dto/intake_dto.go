package dto

type ChatRequest struct {
	SessionId string `json:"session_id" validate:"required"`
	Message   string `json:"message" validate:"required"`
}

type ChatResponse struct {
	Reply    string                 `json:"reply"`
	Stage    string                 `json:"stage"`
	UIAction string                 `json:"ui_action,omitempty"`
	Data     map[string]interface{} `json:"data,omitempty"`
}
