package models

// SearchRequest is the caller-facing contract of the text2sql endpoint.
type SearchRequest struct {
	Question                 string `json:"question"`
	QuestionHashed           string `json:"question_hashed"`
	Page                     int    `json:"page"`
	RowsPerPage              int    `json:"rows_per_page"`
	RetrieveFromCache        bool   `json:"retrieve_from_cache"`
	StoreToCache             bool   `json:"store_to_cache"`
	LLMModelEntityExtraction string `json:"llm_model_entity_extraction"`
	LLMModelText2SQL         string `json:"llm_model_text2sql"`
}

// ResultRow wraps one row of the executed query, preserving result order.
type ResultRow struct {
	Index int            `json:"index"`
	Data  map[string]any `json:"data"`
}

// Timings records per-stage durations in float seconds, as reported to the
// caller and persisted with cache rows.
type Timings struct {
	EntityExtraction   float64 `json:"time_entity_extraction"`
	SQLGeneration      float64 `json:"time_sql_generation"`
	EntitySubstitution float64 `json:"time_entity_substitution"`
	QueryExecution     float64 `json:"time_query_execution"`
	Total              float64 `json:"processing_time"`
}

// SearchResponse is everything the pipeline reports back for one question.
type SearchResponse struct {
	Question           string `json:"question"`
	QuestionHashed     string `json:"question_hashed"`
	QuestionAnonymized string `json:"question_anonymized"`

	SQLQuery           string `json:"sql_query"`
	SQLQueryAnonymized string `json:"sql_query_anonymized"`
	Justification      string `json:"justification"`
	Error              string `json:"error"`
	Ambiguous          bool   `json:"ambiguous"`

	EntityExtraction map[string]string `json:"entity_extraction"`

	// Echoes so callers can detect blue/green configuration mismatches.
	APIVersion               string `json:"api_version"`
	LLMModelEntityExtraction string `json:"llm_model_entity_extraction"`
	LLMModelText2SQL         string `json:"llm_model_text2sql"`

	Page        int  `json:"page"`
	RowsPerPage int  `json:"rows_per_page"`
	ModelLimit  *int `json:"model_limit,omitempty"`
	ModelOffset *int `json:"model_offset,omitempty"`

	CachedExactQuestion      bool `json:"cached_exact_question"`
	CachedAnonymizedQuestion bool `json:"cached_anonymized_question"`
	CachedEmbedding          bool `json:"cached_embedding"`

	Timings Timings     `json:"timings"`
	Result  []ResultRow `json:"result"`
	Trace   []string    `json:"trace"`
}
