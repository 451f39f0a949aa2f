package dto

type FeedbackRequest struct {
	ProductId string `json:"product_id" validate:"required"`
	Action    string `json:"action" validate:"required,oneof=like dislike save"`
	SessionId string `json:"session_id,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

type FeedbackResponse struct {
	Success              bool          `json:"success"`
	Message              string        `json:"message"`
	FreshRecommendations []ProductItem `json:"fresh_recommendations,omitempty"`
}
