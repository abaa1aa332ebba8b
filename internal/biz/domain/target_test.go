package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeID(t *testing.T) {
	cases := map[string]string{
		"":        "",
		"None":    "",
		" null ":  "",
		"123":     "123",
		" 456  ":  "456",
		"NoneXYZ": "NoneXYZ",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeID(in), "NormalizeID(%q)", in)
	}
}

func TestIsDigits(t *testing.T) {
	assert.True(t, IsDigits("42"))
	assert.True(t, IsDigits("0001"))
	assert.False(t, IsDigits(""))
	assert.False(t, IsDigits("12a"))
	assert.False(t, IsDigits("１２")) // full-width digits are not ASCII
	assert.False(t, IsDigits("-1"))
}

func TestInvocationContext_SessionKey(t *testing.T) {
	assert.Equal(t, "stream-1", InvocationContext{ChatID: "stream-1", SessionGroupID: "9"}.SessionKey())
	assert.Equal(t, "group:9", InvocationContext{SessionGroupID: "9", SenderID: "1"}.SessionKey())
	assert.Equal(t, "group:8", InvocationContext{MessageGroupID: "8", SenderID: "1"}.SessionKey())
	assert.Equal(t, "private:1", InvocationContext{SenderID: "1", SessionGroupID: "None"}.SessionKey())
	assert.Equal(t, "global", InvocationContext{}.SessionKey())
}

func TestInvocationContext_ChatTarget(t *testing.T) {
	group := InvocationContext{SenderID: "1", MessageGroupID: "77"}.ChatTarget()
	assert.True(t, group.IsGroup())
	assert.Equal(t, "77", group.GroupID)

	private := InvocationContext{SenderID: "1"}.ChatTarget()
	assert.False(t, private.IsGroup())
	assert.Equal(t, "1", private.UserID)
}

func TestDispatchErrorsMatchSentinel(t *testing.T) {
	var err error = &TransportError{Path: "/send_poke", Err: errors.New("timeout")}
	assert.True(t, errors.Is(err, ErrDispatchFailed))

	err = &AdapterRejectedError{Path: "/send_poke", Status: "failed", RetCode: 100}
	assert.True(t, errors.Is(err, ErrDispatchFailed))
	assert.Contains(t, err.Error(), "no message")
}

func TestMemberAndContactMatches(t *testing.T) {
	m := Member{UserID: "1", Nickname: "AliceInWonderland", Card: "组长"}
	assert.True(t, m.Matches("alice"))
	assert.True(t, m.Matches("组长"))
	assert.False(t, m.Matches("bob"))
	assert.False(t, m.Matches(""))

	c := Contact{UserID: "2", Nickname: "bob", Remark: "Robert"}
	assert.True(t, c.Matches("ROBERT"))
	assert.False(t, c.Matches("alice"))
}
