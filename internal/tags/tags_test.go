package tags

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtract(t *testing.T) {
	assert.Equal(t, []string{"work", "urgent"}, Extract("ship the #work build #urgent"))
	assert.Nil(t, Extract("no tags here"))
}

func TestExtractDedupesAndLowercases(t *testing.T) {
	got := Extract("#Home #home #HOME #garden")
	assert.Equal(t, []string{"home", "garden"}, got)
}

func TestExtractCap(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 30; i++ {
		b.WriteString("#t")
		b.WriteByte(byte('a' + i%26))
		b.WriteByte(byte('a' + i/26))
		b.WriteString(" ")
	}
	got := Extract(b.String())
	assert.Len(t, got, 20)
}

func TestExtractIgnoresInvalidRunes(t *testing.T) {
	got := Extract("#valid_1 #-bad #")
	assert.Equal(t, []string{"valid_1"}, got)
}
