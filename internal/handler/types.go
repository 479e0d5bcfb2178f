package handler

type createTaskRequest struct {
	Topic        string `json:"topic"`
	SourceURL    string `json:"sourceUrl"`
	SourceFile   string `json:"sourceFile"`
	SourceText   string `json:"sourceText"`
	Comparison   string `json:"comparison"`
	Requirements string `json:"requirements"`
	Provider     string `json:"provider"`
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type approveContentRequest struct {
	Content string `json:"content"`
}

// updateContentRequest - частичное обновление; отсутствующие поля не меняются.
type updateContentRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

type saveKeyRequest struct {
	Provider string `json:"provider" binding:"required"`
	APIKey   string `json:"apiKey" binding:"required"`
}

type messageResponse struct {
	Message string `json:"message"`
}
