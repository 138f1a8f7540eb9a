package slack

import (
	"testing"

	"github.com/stretchr/testify/require"

	"slackmcp/internal/domain"
)

func historyDescriptor() domain.Descriptor {
	return domain.Descriptor{
		Name:     "slack_conversations_history",
		Endpoint: "conversations.history",
		Args: map[string]domain.ArgSpec{
			"channel":   {Type: domain.ArgString, Required: true},
			"limit":     {Type: domain.ArgInteger, Default: 100},
			"cursor":    {Type: domain.ArgString},
			"inclusive": {Type: domain.ArgBoolean, Default: true},
		},
	}
}

func TestValidateArgsAppliesDefaults(t *testing.T) {
	params, err := validateArgs(historyDescriptor(), map[string]any{
		"channel": "C123",
	})
	require.NoError(t, err)
	require.Equal(t, map[string]any{
		"channel":   "C123",
		"limit":     100,
		"inclusive": true,
	}, params)
}

func TestValidateArgsSuppliedOverridesDefault(t *testing.T) {
	params, err := validateArgs(historyDescriptor(), map[string]any{
		"channel":   "C123",
		"limit":     float64(25),
		"inclusive": false,
	})
	require.NoError(t, err)
	require.Equal(t, int64(25), params["limit"])
	require.Equal(t, false, params["inclusive"])
}

func TestValidateArgsReportsAllProblemsAtOnce(t *testing.T) {
	_, err := validateArgs(historyDescriptor(), map[string]any{
		"bogus": "x",
		"limit": "not a number",
	})
	require.Error(t, err)
	kind, ok := domain.KindFrom(err)
	require.True(t, ok)
	require.Equal(t, domain.KindValidation, kind)
	require.Contains(t, err.Error(), `missing required argument "channel"`)
	require.Contains(t, err.Error(), `unknown argument "bogus"`)
	require.Contains(t, err.Error(), `argument "limit" must be an integer`)
}

func TestCoerceRejectsFractionalInteger(t *testing.T) {
	_, err := coerce("limit", domain.ArgInteger, 2.5)
	require.Error(t, err)

	value, err := coerce("limit", domain.ArgInteger, float64(3))
	require.NoError(t, err)
	require.Equal(t, int64(3), value)
}

func TestCoerceStrictStringAndBool(t *testing.T) {
	_, err := coerce("channel", domain.ArgString, 42)
	require.Error(t, err)

	_, err = coerce("inclusive", domain.ArgBoolean, "true")
	require.Error(t, err)
}
