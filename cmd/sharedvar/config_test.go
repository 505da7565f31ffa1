package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitAndTrim(t *testing.T) {
	assert.Nil(t, splitAndTrim("", ","))
	assert.Equal(t, []string{"a:1", "b:2"}, splitAndTrim(" a:1 , ,b:2 ", ","))
}

func TestPick_Env(t *testing.T) {
	t.Setenv(envListen, "127.0.0.1:7000")
	assert.Equal(t, "127.0.0.1:7000", pick("listen", "", envListen))
}
