package events

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChangeEvent_EncodeDecode(t *testing.T) {
	id := uuid.New()
	e := NewChangeEvent(EntityService, id, ActionUpdated)
	require.NotEmpty(t, e.ID)

	data, err := e.Encode()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"entity":"service"`)
	assert.Contains(t, string(data), `"action":"updated"`)

	got, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, e.ID, got.ID)
	assert.Equal(t, id, got.EntityID)
	assert.True(t, e.At.Equal(got.At))
}

func TestNewChangeEvent_UniqueIDs(t *testing.T) {
	a := NewChangeEvent(EntityCategory, uuid.New(), ActionCreated)
	b := NewChangeEvent(EntityCategory, uuid.New(), ActionCreated)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestDecode_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"not json", `catalog changed`},
		{"missing id", `{"entity":"category","action":"created"}`},
		{"unknown entity", `{"id":"e1","entity":"coupon","action":"created"}`},
		{"unknown action", `{"id":"e1","entity":"category","action":"archived"}`},
		{"bad entity id", `{"id":"e1","entity":"category","entity_id":"nope","action":"created"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.payload))
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestDecode_MinimalPayload(t *testing.T) {
	e, err := Decode([]byte(`{"id":"e1","entity":"geography","action":"deleted"}`))
	require.NoError(t, err)
	assert.Equal(t, EntityGeography, e.Entity)
	assert.Equal(t, uuid.Nil, e.EntityID)
}

func TestPublisherFunc(t *testing.T) {
	var got ChangeEvent
	var p Publisher = PublisherFunc(func(_ context.Context, e ChangeEvent) error {
		got = e
		return nil
	})
	e := NewChangeEvent(EntityGeography, uuid.New(), ActionDeleted)
	require.NoError(t, p.Publish(context.Background(), e))
	assert.Equal(t, e, got)
}
