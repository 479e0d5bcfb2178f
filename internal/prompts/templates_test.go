package prompts

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTemplate_RenderReplacesAllOccurrences(t *testing.T) {
	tpl := Template{System: "{{topic}}", User: "A {{topic}} B {{ topic }} C"}

	system, user := tpl.Render(map[string]string{"topic": "EV"})

	assert.Equal(t, "EV", system)
	assert.Equal(t, "A EV B EV C", user)
}

func TestTemplate_RenderMissingValuesAreEmpty(t *testing.T) {
	tpl := Template{User: "[{{present}}][{{absent}}]"}

	_, user := tpl.Render(map[string]string{"present": "x"})

	assert.Equal(t, "[x][]", user)
}

func TestMaster_NoReferenceSectionWhenSourcesAbsent(t *testing.T) {
	_, user := Master.Render(MasterVars("EV market trends", "", "", "", "cover pricing"))

	assert.NotContains(t, user, "Reference")
	assert.NotContains(t, user, "Compare against")
	assert.NotContains(t, user, "{{")
	assert.NotContains(t, user, "undefined")
	assert.Equal(t, 3, strings.Count(user, "EV market trends"))
	assert.Contains(t, user, "Requirements: cover pricing")
}

func TestMaster_ReferenceSectionOnlyForPresentFields(t *testing.T) {
	_, withURL := Master.Render(MasterVars("t", "https://example.com", "", "", "r"))
	assert.Contains(t, withURL, "Reference URL: https://example.com\n")
	assert.NotContains(t, withURL, "Reference material")

	_, withBoth := Master.Render(MasterVars("t", "https://example.com", "body text", "Brand B", "r"))
	assert.Contains(t, withBoth, "Reference URL: https://example.com\nReference material:\nbody text\n")
	assert.Contains(t, withBoth, "Compare against: Brand B")
}

func TestDerivative_CountsAndLimit(t *testing.T) {
	_, user := Derivative.Render(DerivativeVars("T", "<p>C</p>"))

	assert.Contains(t, user, "Title: T")
	assert.Contains(t, user, "Content: <p>C</p>")
	assert.Contains(t, user, "into 4 sequential posts")
	assert.Contains(t, user, "write 4 independent posts")
	assert.Contains(t, user, "at most 280 characters")
	assert.NotContains(t, user, "{{")
}

func TestTemplate_Placeholders(t *testing.T) {
	assert.ElementsMatch(t, []string{"topic", "language", "reference", "comparison", "requirements"}, Master.Placeholders())
	assert.ElementsMatch(t, []string{"title", "content", "source_language", "target_language", "audience", "thread_count", "micro_count", "char_limit"}, Derivative.Placeholders())
}

func TestTranslationTargetsSecondLanguage(t *testing.T) {
	assert.NotEqual(t, SourceLanguage, TranslationLanguage)

	_, master := Master.Render(MasterVars("t", "", "", "", "r"))
	assert.Contains(t, master, "in "+SourceLanguage)
	assert.NotContains(t, master, TranslationLanguage)

	_, derivative := Derivative.Render(DerivativeVars("T", "<p>C</p>"))
	assert.Contains(t, derivative, "from "+SourceLanguage+" into "+TranslationLanguage)
	assert.Contains(t, derivative, "posts in "+SourceLanguage)
}
