package llm

import (
	"encoding/json"
	"fmt"

	"github.com/sashabaranov/go-openai/jsonschema"
)

var documentDefinition = jsonschema.Definition{
	Type: jsonschema.Object,
	Properties: map[string]jsonschema.Definition{
		"title":   {Type: jsonschema.String, Description: "Article title"},
		"content": {Type: jsonschema.String, Description: "Article body as HTML"},
	},
	Required:             []string{"title", "content"},
	AdditionalProperties: false,
}

var postsDefinition = jsonschema.Definition{
	Type:  jsonschema.Array,
	Items: &jsonschema.Definition{Type: jsonschema.String},
}

var masterSchema = Schema{
	Name:       "master_document",
	Definition: documentDefinition,
}

var derivativeSchema = Schema{
	Name: "derivative_content",
	Definition: jsonschema.Definition{
		Type: jsonschema.Object,
		Properties: map[string]jsonschema.Definition{
			"translatedDocument": documentDefinition,
			"threadPosts":        postsDefinition,
			"microPosts":         postsDefinition,
		},
		Required:             []string{"translatedDocument", "threadPosts", "microPosts"},
		AdditionalProperties: false,
	},
}

// Текст контракта добавляется к запросу провайдером, а не шаблоном,
// чтобы правка формулировок шаблона не ломала разбор ответа.
const masterContract = `

Respond with JSON only, in this exact shape: {"title": "...", "content": "HTML body"}`

const derivativeContract = `

Respond with JSON only, in this exact shape:
{
  "translatedDocument": {"title": "...", "content": "HTML body"},
  "threadPosts": ["post 1", "post 2", "post 3", "post 4"],
  "microPosts": ["post 1", "post 2", "post 3", "post 4"]
}`

// schemaJSON сериализует схему для вендоров, принимающих ее как текст или map.
func schemaJSON(s Schema) ([]byte, error) {
	data, err := json.Marshal(&s.Definition)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema %s: %w", s.Name, err)
	}
	return data, nil
}

func schemaMap(s Schema) (map[string]any, error) {
	data, err := schemaJSON(s)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to convert schema %s: %w", s.Name, err)
	}
	return m, nil
}
