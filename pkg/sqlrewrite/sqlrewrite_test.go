package sqlrewrite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEscapeLiteral(t *testing.T) {
	assert.Equal(t, "Tom Hanks", EscapeLiteral("Tom Hanks"))
	assert.Equal(t, "L''Arnacoeur", EscapeLiteral("L'Arnacoeur"))
	assert.Equal(t, "L'Arnacoeur", UnescapeLiteral("L''Arnacoeur"))
}

func TestFindFieldLiterals(t *testing.T) {
	sql := `SELECT * FROM T_MOVIE m
JOIN T_MOVIE_CAST c ON c.ID_MOVIE = m.ID_MOVIE
JOIN T_PERSON p ON p.ID_PERSON = c.ID_PERSON
WHERE PERSON_NAME = 'Tom Hanks' OR PERSON_NAME = 'Meg Ryan'`

	matches := FindFieldLiterals(sql, "PERSON_NAME")
	require.Len(t, matches, 2)
	assert.Equal(t, "Tom Hanks", matches[0].Literal)
	assert.Equal(t, "PERSON_NAME = 'Tom Hanks'", matches[0].Fragment)
	assert.Equal(t, "Meg Ryan", matches[1].Literal)
}

func TestFindFieldLiterals_EscapedQuote(t *testing.T) {
	sql := `SELECT * FROM T_MOVIE WHERE MOVIE_TITLE = 'L''Arnacoeur'`

	matches := FindFieldLiterals(sql, "MOVIE_TITLE")
	require.Len(t, matches, 1)
	assert.Equal(t, "L'Arnacoeur", matches[0].Literal)
	assert.Equal(t, "MOVIE_TITLE = 'L''Arnacoeur'", matches[0].Fragment)
}

func TestFindFieldLiterals_NoMatchForOtherFields(t *testing.T) {
	sql := `SELECT * FROM T_MOVIE WHERE MOVIE_TITLE = 'Cast Away'`
	assert.Empty(t, FindFieldLiterals(sql, "PERSON_NAME"))
	assert.Empty(t, FindFieldLiterals(`WHERE MOVIE_TITLE = 42`, "MOVIE_TITLE"))
}

func TestPaginate_FirstPage(t *testing.T) {
	got := Paginate("SELECT * FROM T_MOVIE", 1, 50)
	assert.Equal(t, "SELECT * FROM T_MOVIE LIMIT 50", got.SQL)
	assert.Nil(t, got.ModelLimit)
	assert.Nil(t, got.ModelOffset)
}

func TestPaginate_LaterPage(t *testing.T) {
	got := Paginate("SELECT * FROM T_MOVIE", 3, 50)
	assert.Equal(t, "SELECT * FROM T_MOVIE LIMIT 50 OFFSET 100", got.SQL)
}

func TestPaginate_StripsModelLimit(t *testing.T) {
	got := Paginate("SELECT * FROM T_MOVIE LIMIT 10", 1, 50)
	assert.Equal(t, "SELECT * FROM T_MOVIE LIMIT 50", got.SQL)
	require.NotNil(t, got.ModelLimit)
	assert.Equal(t, 10, *got.ModelLimit)
	assert.Nil(t, got.ModelOffset)
}

func TestPaginate_StripsModelLimitOffset(t *testing.T) {
	got := Paginate("SELECT * FROM T_MOVIE limit 10 offset 30", 2, 50)
	assert.Equal(t, "SELECT * FROM T_MOVIE LIMIT 50 OFFSET 50", got.SQL)
	require.NotNil(t, got.ModelLimit)
	assert.Equal(t, 10, *got.ModelLimit)
	require.NotNil(t, got.ModelOffset)
	assert.Equal(t, 30, *got.ModelOffset)
}

func TestPaginate_StripsCommaForm(t *testing.T) {
	got := Paginate("SELECT * FROM T_MOVIE LIMIT 10, 20", 1, 50)
	assert.Equal(t, "SELECT * FROM T_MOVIE LIMIT 50", got.SQL)
	require.NotNil(t, got.ModelLimit)
	assert.Equal(t, 10, *got.ModelLimit)
	require.NotNil(t, got.ModelOffset)
	assert.Equal(t, 20, *got.ModelOffset)
}

func TestPaginate_PageBelowOneClamps(t *testing.T) {
	got := Paginate("SELECT 1", 0, 50)
	assert.Equal(t, "SELECT 1 LIMIT 50", got.SQL)
}

func TestValidateAndNormalize(t *testing.T) {
	normalized, err := ValidateAndNormalize("SELECT * FROM T_MOVIE;")
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM T_MOVIE", normalized)

	_, err = ValidateAndNormalize("SELECT 1; DROP TABLE T_MOVIE")
	assert.ErrorIs(t, err, ErrMultipleStatements)

	normalized, err = ValidateAndNormalize("SELECT * FROM T_MOVIE WHERE MOVIE_TITLE = 'a;b'")
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM T_MOVIE WHERE MOVIE_TITLE = 'a;b'", normalized)
}

func TestCheckResolvedValue(t *testing.T) {
	assert.Nil(t, CheckResolvedValue("PERSON_NAME", "Tom Hanks"))

	check := CheckResolvedValue("PERSON_NAME", "' OR 1=1 --")
	require.NotNil(t, check)
	assert.Equal(t, "PERSON_NAME", check.Field)
	assert.NotEmpty(t, check.Fingerprint)
}
