package chat

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ilkoid/poncho-bot/pkg/llm"
)

func TestFormatUserQuery(t *testing.T) {
	prefixes := []string{"<@BOT> ", "<@!BOT> "}

	t.Run("strips prefix and appends instructions", func(t *testing.T) {
		msg, err := FormatUserQuery("<@BOT> hello", prefixes)
		require.NoError(t, err)

		assert.Equal(t, llm.RoleUser, msg.Role)
		assert.True(t, strings.HasPrefix(msg.Content, "hello"), "content must begin with the query")
		assert.True(t, strings.HasSuffix(msg.Content, formatInstructions), "content must end with the instruction suffix")
	})

	t.Run("nickname prefix form", func(t *testing.T) {
		msg, err := FormatUserQuery("<@!BOT> how are you", prefixes)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(msg.Content, "how are you"))
	})

	t.Run("no mention is a contract violation", func(t *testing.T) {
		_, err := FormatUserQuery("just a message", prefixes)
		assert.ErrorIs(t, err, ErrNoMention)
	})

	t.Run("double mention is a contract violation", func(t *testing.T) {
		_, err := FormatUserQuery("<@BOT> hi <@BOT> again", prefixes)
		assert.ErrorIs(t, err, ErrNoMention)
	})

	t.Run("empty query after prefix still formats", func(t *testing.T) {
		msg, err := FormatUserQuery("<@BOT> ", prefixes)
		require.NoError(t, err)
		assert.Equal(t, formatInstructions, msg.Content)
	})
}
