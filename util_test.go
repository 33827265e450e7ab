package parhelion

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrimChannelString(t *testing.T) {
	assert.Equal(t, "1234", TrimChannelString("<#1234>"))
	assert.Equal(t, "1234", TrimChannelString("1234"))
}

func TestTrimUserString(t *testing.T) {
	assert.Equal(t, "1234", TrimUserString("<@1234>"))
	assert.Equal(t, "1234", TrimUserString("<@!1234>"))
	assert.Equal(t, "1234", TrimUserString("1234"))
}

func TestTrimRoleString(t *testing.T) {
	assert.Equal(t, "1234", TrimRoleString("<@&1234>"))
	assert.Equal(t, "1234", TrimRoleString("1234"))
}

func TestParseSnowflake(t *testing.T) {
	ts, err := ParseSnowflake("175925504043679744")
	require.NoError(t, err)
	assert.Equal(t, time.Unix(1462014308, 0), ts)

	_, err = ParseSnowflake("not a snowflake")
	assert.Error(t, err)
}
