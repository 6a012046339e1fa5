package models

type StartCallRequest struct {
	Phone string `json:"phone"`
}

type StartCallResponse struct {
	CandidateID string `json:"candidate_id"`
	CallSID     string `json:"call_sid"`
	Status      string `json:"status"`
}

type ResultResponse struct {
	ID             string           `json:"id"`
	Phone          string           `json:"phone"`
	Status         string           `json:"status"`
	QuestionsAsked int              `json:"questions_asked"`
	EndReason      string           `json:"end_reason,omitempty"`
	Result         *InterviewResult `json:"result,omitempty"`
	ErrorMessage   *string          `json:"error_message,omitempty"`
}

type KnowledgeUploadResponse struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	DocType  string `json:"doc_type"`
	Chunks   int    `json:"chunks"`
}
