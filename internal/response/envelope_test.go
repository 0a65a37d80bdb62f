package response

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name string
		env  Envelope
		code int
		tag  string
		err  string
	}{
		{"ok", OK("x"), 200, TagOK, ""},
		{"created", Created("x"), 201, TagCreated, ""},
		{"accepted", Accepted(), 202, TagAccepted, ""},
		{"badRequest", BadRequest(nil), 400, TagBadRequest, DefaultBadRequest},
		{"unauthorized", Unauthorized("nope"), 401, TagUnauthorized, "nope"},
		{"forbidden", Forbidden(), 403, TagForbidden, DefaultForbidden},
		{"notFound", NotFound(), 404, TagNotFound, DefaultNotFound},
		{"conflict", Conflict(), 409, TagConflict, DefaultConflict},
		{"tooManyRequests", TooManyRequests(), 429, TagTooManyRequests, DefaultTooManyRequests},
		{"unprocessable", UnprocessableEntity(""), 422, TagUnprocessableEntity, DefaultUnprocessableEntity},
		{"internal", InternalServerError(), 500, TagInternalServerError, DefaultInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.env.StatusCode)
			assert.Equal(t, tt.tag, tt.env.Message)
			assert.Equal(t, tt.err, tt.env.Error())
			assert.NotNil(t, tt.env.Fields)
		})
	}
}

func TestCustomMessagesAndFields(t *testing.T) {
	e := Conflict("bob is a member of this forum already")
	assert.Equal(t, "bob is a member of this forum already", e.Error())

	e = BadRequest([]string{"a", "b"})
	assert.Equal(t, []string{"a", "b"}, e.Fields)
	assert.Nil(t, e.Payload)

	e = UnprocessableEntity("Invalid forum", "f1")
	assert.Equal(t, []string{"f1"}, e.Fields)
}

func TestEnvelopeDoesNotAliasFields(t *testing.T) {
	fields := []string{"a"}
	e := BadRequest(fields)
	fields[0] = "changed"
	assert.Equal(t, "a", e.Fields[0])
}

func TestEnvelopeJSONShape(t *testing.T) {
	b, err := json.Marshal(OK(map[string]int{"n": 1}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"statusCode":200,"message":"Ok","errorMessage":null,"fields":[],"payload":{"n":1}}`, string(b))

	b, err = json.Marshal(NotFound())
	require.NoError(t, err)
	assert.JSONEq(t, `{"statusCode":404,"message":"Not_Found","errorMessage":"Resource is not found","fields":[],"payload":null}`, string(b))
}

func TestSuccess(t *testing.T) {
	assert.True(t, Created(nil).Success())
	assert.False(t, Forbidden().Success())
}
