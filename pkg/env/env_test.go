package env

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFirstOf(t *testing.T) {
	t.Setenv("SMARTLIST_TEST_A", "  ")
	t.Setenv("SMARTLIST_TEST_B", " pod-7 ")

	assert.Equal(t, "pod-7", FirstOf("local", "SMARTLIST_TEST_A", "SMARTLIST_TEST_B"))
	assert.Equal(t, "local", FirstOf("local", "SMARTLIST_TEST_A", "SMARTLIST_TEST_MISSING"))
	assert.Equal(t, "json", Get("SMARTLIST_TEST_A", "json"))
}
