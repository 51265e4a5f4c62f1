package domain

import "github.com/disgoorg/snowflake/v2"

// NowPlayingMessage locates a delivered status display. Both IDs are kept so
// the message can be re-fetched, edited or deleted after the fact.
type NowPlayingMessage struct {
	ChannelID snowflake.ID
	MessageID snowflake.ID
}

func NewNowPlayingMessage(channelID snowflake.ID, messageID snowflake.ID) *NowPlayingMessage {
	return &NowPlayingMessage{
		ChannelID: channelID,
		MessageID: messageID,
	}
}
