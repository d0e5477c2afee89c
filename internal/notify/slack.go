package notify

import (
	"encoding/json"
	"fmt"
	"sort"
)

// SlackFormatter formats notifications for Slack webhooks.
type SlackFormatter struct{}

type slackPayload struct {
	Text        string        `json:"text,omitempty"`
	Blocks      []slackBlock  `json:"blocks,omitempty"`
	Attachments []slackAttach `json:"attachments,omitempty"`
}

type slackBlock struct {
	Type   string           `json:"type"`
	Text   *slackBlockText  `json:"text,omitempty"`
	Fields []slackBlockText `json:"fields,omitempty"`
}

type slackBlockText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type slackAttach struct {
	Color    string `json:"color,omitempty"`
	Fallback string `json:"fallback,omitempty"`
}

// Format converts a notification to Slack webhook format.
func (f *SlackFormatter) Format(n *Notification) ([]byte, error) {
	blocks := []slackBlock{
		{Type: "header", Text: &slackBlockText{Type: "plain_text", Text: n.Title}},
		{Type: "section", Text: &slackBlockText{Type: "mrkdwn", Text: n.Message}},
	}

	if len(n.Fields) > 0 {
		var fields []slackBlockText
		for _, key := range sortedKeys(n.Fields) {
			fields = append(fields, slackBlockText{
				Type: "mrkdwn",
				Text: fmt.Sprintf("*%s*\n%s", key, n.Fields[key]),
			})
		}
		blocks = append(blocks, slackBlock{Type: "section", Fields: fields})
	}

	return json.Marshal(slackPayload{
		Text:   n.Title,
		Blocks: blocks,
		Attachments: []slackAttach{
			{Color: colorToHex(n.Color), Fallback: n.Message},
		},
	})
}

// ContentType returns the content type for Slack webhooks.
func (f *SlackFormatter) ContentType() string {
	return "application/json"
}

// colorToHex converts an RGB integer to "#RRGGBB".
func colorToHex(color int) string {
	return fmt.Sprintf("#%06X", color&0xFFFFFF)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
