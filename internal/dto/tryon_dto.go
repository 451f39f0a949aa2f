package dto

type TryOnRequest struct {
	UserImage   string `json:"user_image" validate:"required"`
	ProductId   string `json:"product_id" validate:"required"`
	StylePrompt string `json:"style_prompt,omitempty"`
}

type TryOnResponse struct {
	GeneratedImageURL string `json:"generated_image_url"`
	ProductId         string `json:"product_id"`
	GenerationPrompt  string `json:"generation_prompt"`
	Success           bool   `json:"success"`
}
