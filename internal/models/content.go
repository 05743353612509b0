package models

import (
	"time"

	"github.com/google/uuid"
)

type Platform string

const (
	PlatformInstagram Platform = "Instagram"
	PlatformYouTube   Platform = "YouTube"
	PlatformTikTok    Platform = "TikTok"
	PlatformTwitch    Platform = "Twitch"
	PlatformKick      Platform = "Kick"
)

// DateLayout is the wire format for publish dates and date-range
// filters (inclusive on both ends).
const DateLayout = "2006-01-02"

// platformColors is the fixed chart color per platform. Unknown
// platforms fall back to DefaultPlatformColor.
var platformColors = map[Platform]string{
	PlatformInstagram: "#E1306C",
	PlatformYouTube:   "#FF0000",
	PlatformTikTok:    "#000000",
	PlatformTwitch:    "#6441A4",
	PlatformKick:      "#5EAC24",
}

const DefaultPlatformColor = "#888888"

// PlatformColor returns the chart color assigned to a platform.
func PlatformColor(p Platform) string {
	if c, ok := platformColors[p]; ok {
		return c
	}
	return DefaultPlatformColor
}

// ContentItem is a single published post, video or stream. Items are
// created out-of-band by the ingestion pipeline; this service treats
// them as immutable.
type ContentItem struct {
	ID          uuid.UUID  `json:"id"`
	ClientID    uuid.UUID  `json:"client_id"`
	Name        string     `json:"content_name"`
	Platform    Platform   `json:"platform"`
	ContentType string     `json:"content_type"`
	URL         string     `json:"content_url"`
	PostDate    time.Time  `json:"post_date"`
	CampaignID  *uuid.UUID `json:"campaign_id,omitempty"`
}
