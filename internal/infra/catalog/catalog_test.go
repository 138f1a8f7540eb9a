package catalog

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"slackmcp/internal/domain"
)

func TestResolveKnownTool(t *testing.T) {
	desc, err := Resolve("slack_chat_post_message")
	require.NoError(t, err)
	require.Equal(t, "chat.postMessage", desc.Endpoint)
	require.True(t, desc.Mutating)
	require.True(t, desc.Args["channel"].Required)
	require.True(t, desc.Args["text"].Required)
}

func TestResolveUnknownTool(t *testing.T) {
	_, err := Resolve("slack_no_such_tool")
	require.Error(t, err)
	kind, ok := domain.KindFrom(err)
	require.True(t, ok)
	require.Equal(t, domain.KindNotFound, kind)
}

func TestAllDescriptorsAreComplete(t *testing.T) {
	all := All()
	require.Len(t, all, 28)

	seen := map[string]bool{}
	for _, desc := range all {
		require.NotEmpty(t, desc.Name)
		require.NotEmpty(t, desc.Description, desc.Name)
		require.NotEmpty(t, desc.Endpoint, desc.Name)
		require.Equal(t, http.MethodPost, desc.HTTPMethod, desc.Name)
		require.NotEmpty(t, desc.MinKind, desc.Name)
		require.False(t, seen[desc.Name], "duplicate tool %s", desc.Name)
		seen[desc.Name] = true
	}
}

func TestAllIsSortedByName(t *testing.T) {
	all := All()
	for i := 1; i < len(all); i++ {
		require.Less(t, all[i-1].Name, all[i].Name)
	}
}

func TestSearchRequiresUserToken(t *testing.T) {
	desc, err := Resolve("slack_search_messages")
	require.NoError(t, err)
	require.Equal(t, domain.TokenKindUser, desc.MinKind)

	for _, other := range All() {
		if other.Name == "slack_search_messages" {
			continue
		}
		require.Equal(t, domain.TokenKindBot, other.MinKind, other.Name)
	}
}

func TestPaginatedToolsDeclareCursor(t *testing.T) {
	paginated := []string{
		"slack_list_conversations",
		"slack_conversations_history",
		"slack_conversations_replies",
		"slack_conversations_members",
		"slack_search_messages",
		"slack_users_list",
	}
	for _, name := range paginated {
		desc, err := Resolve(name)
		require.NoError(t, err)
		require.Equal(t, nextCursorPath, desc.Result.CursorField, name)
		_, hasCursorArg := desc.Args["cursor"]
		require.True(t, hasCursorArg, name)
	}
}

func TestInputSchemaShape(t *testing.T) {
	desc, err := Resolve("slack_conversations_history")
	require.NoError(t, err)

	schema := InputSchema(desc)
	require.Equal(t, "object", schema.Type)
	require.Equal(t, []string{"channel"}, schema.Required)
	require.Contains(t, schema.Properties, "limit")
	require.Equal(t, "integer", schema.Properties["limit"].Type)
	require.Equal(t, "boolean", schema.Properties["inclusive"].Type)
	require.NotNil(t, schema.AdditionalProperties)
}
