package handler

// --- Request/Response Structs ---

type githubAuthRequest struct {
	Code string `json:"code" binding:"required"`
}

type createStoryRequest struct {
	World             string `json:"world" binding:"required"`
	CharacterName     string `json:"character_name" binding:"required"`
	Origin            string `json:"origin"`
	Backstory         string `json:"backstory"`
	GenerateBackstory bool   `json:"generate_backstory"`
}

type appendActionRequest struct {
	Text    string `json:"text" binding:"required"`
	Narrate bool   `json:"narrate"`
}

type generateBackstoryRequest struct {
	World         string `json:"world" binding:"required"`
	CharacterName string `json:"character_name" binding:"required"`
	Origin        string `json:"origin" binding:"required"`
}
