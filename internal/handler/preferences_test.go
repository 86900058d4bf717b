package handler

import (
	"context"
	"encoding/json"
	"testing"

	"voyago/internal/worker"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreferencesHandlerFiltersUnknownKeys(t *testing.T) {
	env := newTestEnv(t)
	h := NewPreferencesHandler(env.db, &env.logger)
	ctx := context.Background()
	user := env.seedUser(t, "Anna", 0)

	payload, err := json.Marshal(PreferencesPayload{
		UserID: user.ID,
		Preferences: map[string]string{
			"language":        "de",
			"theme":           "dark",
			"notify_email":    "true",
			"results_per_page": "50",
			"injected_script": "<script>",
			"admin":           "true",
		},
	})
	require.NoError(t, err)

	outcome := h.Apply(ctx, payload)
	require.True(t, outcome.OK, outcome.Reason)
	assert.Contains(t, outcome.Summary, "4 preferences applied, 2 dropped")

	stored, err := env.db.GetPreferences(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"language":        "de",
		"theme":           "dark",
		"notify_email":    "true",
		"results_per_page": "50",
	}, stored)
}

func TestPreferencesHandlerAllUnknownKeys(t *testing.T) {
	env := newTestEnv(t)
	h := NewPreferencesHandler(env.db, &env.logger)
	user := env.seedUser(t, "Boris", 0)

	payload, _ := json.Marshal(PreferencesPayload{
		UserID:      user.ID,
		Preferences: map[string]string{"a": "1", "b": "2"},
	})
	outcome := h.Apply(context.Background(), payload)
	require.True(t, outcome.OK)

	stored, err := env.db.GetPreferences(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestPreferencesHandlerFailures(t *testing.T) {
	env := newTestEnv(t)
	h := NewPreferencesHandler(env.db, &env.logger)
	ctx := context.Background()

	t.Run("UnknownUser", func(t *testing.T) {
		payload, _ := json.Marshal(PreferencesPayload{
			UserID:      777,
			Preferences: map[string]string{"language": "en"},
		})
		outcome := h.Apply(ctx, payload)
		assert.False(t, outcome.OK)
		assert.Equal(t, worker.FailureFatal, outcome.Kind)
	})

	t.Run("InvalidUserID", func(t *testing.T) {
		outcome := h.Apply(ctx, json.RawMessage(`{"user_id":0,"preferences":{"theme":"dark"}}`))
		assert.False(t, outcome.OK)
		assert.Equal(t, worker.FailureValidation, outcome.Kind)
	})

	t.Run("MalformedJSON", func(t *testing.T) {
		outcome := h.Apply(ctx, json.RawMessage(`{"user_id":`))
		assert.False(t, outcome.OK)
		assert.Equal(t, worker.FailureValidation, outcome.Kind)
	})
}
