package bot

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
)

func TestMentionPrefixes(t *testing.T) {
	prefixes := MentionPrefixes("12345")

	assert.Equal(t, []string{"<@12345> ", "<@!12345> "}, prefixes)
}

func TestMentionsUser(t *testing.T) {
	mentions := []*discordgo.User{{ID: "1"}, {ID: "2"}}

	assert.True(t, mentionsUser(mentions, "2"))
	assert.False(t, mentionsUser(mentions, "3"))
	assert.False(t, mentionsUser(nil, "1"))
}

func TestIsThread(t *testing.T) {
	assert.True(t, isThread(discordgo.ChannelTypeGuildPublicThread))
	assert.True(t, isThread(discordgo.ChannelTypeGuildPrivateThread))
	assert.False(t, isThread(discordgo.ChannelTypeGuildText))
	assert.False(t, isThread(discordgo.ChannelTypeDM))
}
