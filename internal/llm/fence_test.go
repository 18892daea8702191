package llm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"frigo/internal/llm"
)

func TestStripCodeFence(t *testing.T) {
	assert.Equal(t, `{"a":1}`, llm.StripCodeFence("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, llm.StripCodeFence("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, llm.StripCodeFence(`{"a":1}`))
	assert.Equal(t, `{"a":1}`, llm.StripCodeFence("  \n```json\n{\"a\":1}\n```\n  "))
}

func TestStripCodeFence_PreservesInnerBackticks(t *testing.T) {
	in := "```json\n{\"note\":\"use `` marks\"}\n```"
	assert.Equal(t, "{\"note\":\"use `` marks\"}", llm.StripCodeFence(in))
}
