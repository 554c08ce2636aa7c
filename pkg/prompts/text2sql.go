// Package prompts builds the collaborator prompts for entity extraction and
// SQL generation over the media catalog schema.
package prompts

import (
	"fmt"
	"strings"
)

// catalogSchema describes the queryable media catalog tables. It is included
// verbatim in the text2sql prompt so the model only references real columns.
const catalogSchema = `Tables:
- T_MOVIE(ID_MOVIE, MOVIE_TITLE, MOVIE_TITLE_FR, MOVIE_TITLE_ORIGINAL, RELEASE_YEAR, POPULARITY, RUNTIME_MINUTES)
- T_SERIES(ID_SERIES, SERIES_TITLE, SERIES_TITLE_FR, SERIES_TITLE_ORIGINAL, FIRST_AIR_YEAR, POPULARITY, SEASONS)
- T_PERSON(ID_PERSON, PERSON_NAME, KNOWN_FOR, POPULARITY)
- T_COMPANY(ID_COMPANY, COMPANY_NAME, COUNTRY)
- T_NETWORK(ID_NETWORK, NETWORK_NAME, COUNTRY)
- T_TOPIC(ID_TOPIC, TOPIC_NAME)
- T_ITEM(ID_ITEM, ITEM_NAME)
- T_MOVIE_CAST(ID_MOVIE, ID_PERSON, CHARACTER_NAME, CAST_ORDER)
- T_SERIES_CAST(ID_SERIES, ID_PERSON, CHARACTER_NAME, CAST_ORDER)
- T_MOVIE_TOPIC(ID_MOVIE, ID_TOPIC)
- T_SERIES_NETWORK(ID_SERIES, ID_NETWORK)`

// ExtractionSystemMessage instructs the model to anonymize questions.
const ExtractionSystemMessage = "You are an entity extraction assistant. Respond only with JSON, no explanations."

// Text2SQLSystemMessage instructs the model to generate SQL.
const Text2SQLSystemMessage = "You are a SQL query generator. Respond only with JSON, no explanations."

// EntityExtraction builds the prompt asking the model to pull named entities
// out of a question and replace each with a {{variable}} placeholder.
func EntityExtraction(question string) string {
	var b strings.Builder
	b.WriteString("Extract every named entity (person, movie title, series title, company, network, topic, place) from the question below.\n")
	b.WriteString("Return a JSON object where each entity gets a key like Person_name1, Movie_title1, Series_title1, Company_name1, Network_name1, Topic_name1 or Item_name1, ")
	b.WriteString("and a \"question\" key containing the question with each entity literal replaced by {{key}}.\n")
	b.WriteString("If extraction is impossible, return {\"error\": \"<reason>\"}.\n\n")
	fmt.Fprintf(&b, "Question: %s\n", question)
	return b.String()
}

// Text2SQL builds the prompt asking the model for an SQL template over the
// catalog schema. Entity placeholders from extraction stay as {{variable}}.
func Text2SQL(question string) string {
	var b strings.Builder
	b.WriteString("Generate a single SELECT statement for the question below, using only this schema:\n\n")
	b.WriteString(catalogSchema)
	b.WriteString("\n\nRules:\n")
	b.WriteString("- Keep {{variable}} placeholders exactly as written; never expand them.\n")
	b.WriteString("- Compare entity columns with FIELD = 'value' equality, never LIKE.\n")
	b.WriteString("- No INSERT/UPDATE/DELETE, no multiple statements.\n")
	b.WriteString("- Return JSON: {\"sql_query\": \"...\", \"justification\": \"...\", \"error\": \"\"}.\n")
	b.WriteString("- If the question cannot be answered from the schema, set sql_query to \"\" and explain in error.\n\n")
	fmt.Fprintf(&b, "Question: %s\n", question)
	return b.String()
}
