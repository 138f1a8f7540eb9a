// Package catalog is the static endpoint descriptor table: every tool the
// gateway exposes, its upstream endpoint, argument schema, minimum token
// kind, and result shape.
package catalog

import (
	"net/http"
	"sort"

	"slackmcp/internal/domain"
)

const nextCursorPath = "response_metadata.next_cursor"

var descriptors = buildDescriptors()

// Resolve returns the descriptor for a tool name.
func Resolve(name string) (domain.Descriptor, error) {
	desc, ok := descriptors[name]
	if !ok {
		return domain.Descriptor{}, domain.E(domain.KindNotFound, "catalog.resolve", "unknown tool "+name, nil)
	}
	return desc, nil
}

// All returns every descriptor sorted by tool name.
func All() []domain.Descriptor {
	out := make([]domain.Descriptor, 0, len(descriptors))
	for _, desc := range descriptors {
		out = append(out, desc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func buildDescriptors() map[string]domain.Descriptor {
	str := func(desc string) domain.ArgSpec {
		return domain.ArgSpec{Type: domain.ArgString, Description: desc}
	}
	reqStr := func(desc string) domain.ArgSpec {
		return domain.ArgSpec{Type: domain.ArgString, Required: true, Description: desc}
	}
	strDef := func(def, desc string) domain.ArgSpec {
		return domain.ArgSpec{Type: domain.ArgString, Default: def, Description: desc}
	}
	intDef := func(def int, desc string) domain.ArgSpec {
		return domain.ArgSpec{Type: domain.ArgInteger, Default: def, Description: desc}
	}
	boolDef := func(def bool, desc string) domain.ArgSpec {
		return domain.ArgSpec{Type: domain.ArgBoolean, Default: def, Description: desc}
	}
	cursorArg := str("Pagination cursor from a previous response")

	table := []domain.Descriptor{
		{
			Name:        "slack_list_conversations",
			Description: "List channels and direct messages visible to the token",
			Endpoint:    "conversations.list",
			Args: map[string]domain.ArgSpec{
				"types":            strDef("public_channel,private_channel", "Comma-separated conversation types"),
				"limit":            intDef(100, "Maximum conversations per page"),
				"cursor":           cursorArg,
				"exclude_archived": boolDef(true, "Skip archived conversations"),
			},
			Result: domain.ResultShape{Fields: []string{"channels"}, CursorField: nextCursorPath},
		},
		{
			Name:        "slack_get_conversation_info",
			Description: "Fetch metadata for one conversation",
			Endpoint:    "conversations.info",
			Args: map[string]domain.ArgSpec{
				"channel":             reqStr("Conversation ID"),
				"include_num_members": boolDef(true, "Include the member count"),
			},
			Result: domain.ResultShape{Fields: []string{"channel"}},
		},
		{
			Name:        "slack_conversations_history",
			Description: "Fetch messages from a conversation, newest first",
			Endpoint:    "conversations.history",
			Args: map[string]domain.ArgSpec{
				"channel":   reqStr("Conversation ID"),
				"limit":     intDef(100, "Maximum messages per page"),
				"cursor":    cursorArg,
				"oldest":    str("Only messages after this timestamp"),
				"latest":    str("Only messages before this timestamp"),
				"inclusive": boolDef(true, "Include messages at the boundary timestamps"),
			},
			Result: domain.ResultShape{Fields: []string{"messages", "has_more"}, CursorField: nextCursorPath},
		},
		{
			Name:        "slack_conversations_replies",
			Description: "Fetch a message thread",
			Endpoint:    "conversations.replies",
			Args: map[string]domain.ArgSpec{
				"channel":   reqStr("Conversation ID"),
				"ts":        reqStr("Timestamp of the thread parent message"),
				"limit":     intDef(100, "Maximum messages per page"),
				"cursor":    cursorArg,
				"oldest":    str("Only messages after this timestamp"),
				"latest":    str("Only messages before this timestamp"),
				"inclusive": boolDef(true, "Include messages at the boundary timestamps"),
			},
			Result: domain.ResultShape{Fields: []string{"messages", "has_more"}, CursorField: nextCursorPath},
		},
		{
			Name:        "slack_conversations_members",
			Description: "List members of a conversation",
			Endpoint:    "conversations.members",
			Args: map[string]domain.ArgSpec{
				"channel": reqStr("Conversation ID"),
				"limit":   intDef(100, "Maximum members per page"),
				"cursor":  cursorArg,
			},
			Result: domain.ResultShape{Fields: []string{"members"}, CursorField: nextCursorPath},
		},
		{
			Name:        "slack_conversations_join",
			Description: "Join a public channel",
			Endpoint:    "conversations.join",
			Mutating:    true,
			Args: map[string]domain.ArgSpec{
				"channel": reqStr("Channel ID to join"),
			},
			Result: domain.ResultShape{Fields: []string{"channel"}},
		},
		{
			Name:        "slack_conversations_leave",
			Description: "Leave a conversation",
			Endpoint:    "conversations.leave",
			Mutating:    true,
			Args: map[string]domain.ArgSpec{
				"channel": reqStr("Conversation ID to leave"),
			},
		},
		{
			Name:        "slack_conversations_open",
			Description: "Open or resume a direct or group message",
			Endpoint:    "conversations.open",
			Mutating:    true,
			Args: map[string]domain.ArgSpec{
				"users":     str("Comma-separated user IDs to open a conversation with"),
				"channel":   str("Existing conversation ID to resume"),
				"return_im": boolDef(true, "Return the full conversation object"),
			},
			Result: domain.ResultShape{Fields: []string{"channel"}},
		},
		{
			Name:        "slack_chat_post_message",
			Description: "Post a message to a conversation",
			Endpoint:    "chat.postMessage",
			Mutating:    true,
			Args: map[string]domain.ArgSpec{
				"channel":         reqStr("Conversation ID to post into"),
				"text":            reqStr("Message text"),
				"thread_ts":       str("Parent message timestamp to reply in thread"),
				"reply_broadcast": boolDef(false, "Also post a thread reply to the channel"),
				"unfurl_links":    boolDef(true, "Unfurl link previews"),
				"unfurl_media":    boolDef(true, "Unfurl media previews"),
			},
			Result: domain.ResultShape{Fields: []string{"channel", "ts", "message"}},
		},
		{
			Name:        "slack_chat_update",
			Description: "Edit a previously posted message",
			Endpoint:    "chat.update",
			Mutating:    true,
			Args: map[string]domain.ArgSpec{
				"channel": reqStr("Conversation ID of the message"),
				"ts":      reqStr("Timestamp of the message to edit"),
				"text":    reqStr("Replacement text"),
			},
			Result: domain.ResultShape{Fields: []string{"channel", "ts", "text"}},
		},
		{
			Name:        "slack_chat_delete",
			Description: "Delete a message",
			Endpoint:    "chat.delete",
			Mutating:    true,
			Args: map[string]domain.ArgSpec{
				"channel": reqStr("Conversation ID of the message"),
				"ts":      reqStr("Timestamp of the message to delete"),
			},
			Result: domain.ResultShape{Fields: []string{"channel", "ts"}},
		},
		{
			Name:        "slack_reactions_add",
			Description: "Add an emoji reaction to a message",
			Endpoint:    "reactions.add",
			Mutating:    true,
			Args: map[string]domain.ArgSpec{
				"channel":   reqStr("Conversation ID of the message"),
				"timestamp": reqStr("Timestamp of the message"),
				"name":      reqStr("Emoji name without colons"),
			},
		},
		{
			Name:        "slack_reactions_remove",
			Description: "Remove an emoji reaction from a message",
			Endpoint:    "reactions.remove",
			Mutating:    true,
			Args: map[string]domain.ArgSpec{
				"channel":   reqStr("Conversation ID of the message"),
				"timestamp": reqStr("Timestamp of the message"),
				"name":      reqStr("Emoji name without colons"),
			},
		},
		{
			Name:        "slack_search_messages",
			Description: "Search messages across the workspace",
			Endpoint:    "search.messages",
			MinKind:     domain.TokenKindUser,
			Args: map[string]domain.ArgSpec{
				"query":    reqStr("Search query, supports Slack search modifiers"),
				"count":    intDef(20, "Results per page"),
				"cursor":   cursorArg,
				"sort":     strDef("timestamp", "Sort field: score or timestamp"),
				"sort_dir": strDef("desc", "Sort direction: asc or desc"),
			},
			Result: domain.ResultShape{Fields: []string{"messages"}, CursorField: nextCursorPath},
		},
		{
			Name:        "slack_users_list",
			Description: "List workspace members",
			Endpoint:    "users.list",
			Args: map[string]domain.ArgSpec{
				"limit":          intDef(100, "Maximum members per page"),
				"cursor":         cursorArg,
				"include_locale": boolDef(false, "Include each member's locale"),
			},
			Result: domain.ResultShape{Fields: []string{"members"}, CursorField: nextCursorPath},
		},
		{
			Name:        "slack_users_info",
			Description: "Fetch a user's profile",
			Endpoint:    "users.info",
			Args: map[string]domain.ArgSpec{
				"user": reqStr("User ID"),
			},
			Result: domain.ResultShape{Fields: []string{"user"}},
		},
		{
			Name:        "slack_users_lookup_by_email",
			Description: "Find a user by email address",
			Endpoint:    "users.lookupByEmail",
			Args: map[string]domain.ArgSpec{
				"email": reqStr("Email address to look up"),
			},
			Result: domain.ResultShape{Fields: []string{"user"}},
		},
		{
			Name:        "slack_auth_test",
			Description: "Check the current token and report its identity",
			Endpoint:    "auth.test",
			Args:        map[string]domain.ArgSpec{},
		},
		{
			Name:        "slack_team_info",
			Description: "Fetch workspace metadata",
			Endpoint:    "team.info",
			Args:        map[string]domain.ArgSpec{},
			Result:      domain.ResultShape{Fields: []string{"team"}},
		},
		{
			Name:        "slack_bookmarks_list",
			Description: "List bookmarks in a channel",
			Endpoint:    "bookmarks.list",
			Args: map[string]domain.ArgSpec{
				"channel_id": reqStr("Channel ID"),
			},
			Result: domain.ResultShape{Fields: []string{"bookmarks"}},
		},
		{
			Name:        "slack_pins_list",
			Description: "List pinned items in a conversation",
			Endpoint:    "pins.list",
			Args: map[string]domain.ArgSpec{
				"channel": reqStr("Conversation ID"),
			},
			Result: domain.ResultShape{Fields: []string{"items"}},
		},
		{
			Name:        "slack_pins_add",
			Description: "Pin a message to a conversation",
			Endpoint:    "pins.add",
			Mutating:    true,
			Args: map[string]domain.ArgSpec{
				"channel":   reqStr("Conversation ID"),
				"timestamp": reqStr("Timestamp of the message to pin"),
			},
		},
		{
			Name:        "slack_pins_remove",
			Description: "Unpin a message from a conversation",
			Endpoint:    "pins.remove",
			Mutating:    true,
			Args: map[string]domain.ArgSpec{
				"channel":   reqStr("Conversation ID"),
				"timestamp": reqStr("Timestamp of the message to unpin"),
			},
		},
		{
			Name:        "slack_reminders_list",
			Description: "List reminders set by the token's identity",
			Endpoint:    "reminders.list",
			Args:        map[string]domain.ArgSpec{},
			Result:      domain.ResultShape{Fields: []string{"reminders"}},
		},
		{
			Name:        "slack_reminders_add",
			Description: "Create a reminder",
			Endpoint:    "reminders.add",
			Mutating:    true,
			Args: map[string]domain.ArgSpec{
				"text": reqStr("Reminder text"),
				"time": reqStr("When to remind, as a timestamp or natural language"),
				"user": str("User to remind, defaults to the token's identity"),
			},
			Result: domain.ResultShape{Fields: []string{"reminder"}},
		},
		{
			Name:        "slack_reminders_delete",
			Description: "Delete a reminder",
			Endpoint:    "reminders.delete",
			Mutating:    true,
			Args: map[string]domain.ArgSpec{
				"reminder": reqStr("Reminder ID to delete"),
			},
		},
		{
			Name:        "slack_files_list",
			Description: "List files visible to the token",
			Endpoint:    "files.list",
			Args: map[string]domain.ArgSpec{
				"channel": str("Only files shared in this conversation"),
				"user":    str("Only files uploaded by this user"),
				"types":   str("Comma-separated file types"),
				"count":   intDef(20, "Files per page"),
				"page":    intDef(1, "Page number"),
			},
			Result: domain.ResultShape{Fields: []string{"files", "paging"}},
		},
		{
			Name:        "slack_files_info",
			Description: "Fetch metadata for one file",
			Endpoint:    "files.info",
			Args: map[string]domain.ArgSpec{
				"file": reqStr("File ID"),
			},
			Result: domain.ResultShape{Fields: []string{"file"}},
		},
	}

	out := make(map[string]domain.Descriptor, len(table))
	for _, desc := range table {
		if desc.HTTPMethod == "" {
			desc.HTTPMethod = http.MethodPost
		}
		if desc.MinKind == "" {
			desc.MinKind = domain.TokenKindBot
		}
		out[desc.Name] = desc
	}
	return out
}
