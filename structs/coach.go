package structs

type MessageRequest struct {
	Message string `json:"message" binding:"required"`
}

// DraftRequest allows an empty message, which clears the draft.
type DraftRequest struct {
	Message string `json:"message"`
}

type TopicRequest struct {
	Topic string `json:"topic" binding:"required"`
}

type SideRequest struct {
	Side string `json:"side" binding:"required,oneof=for against"`
}
