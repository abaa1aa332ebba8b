package onebot

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_BaseURL(t *testing.T) {
	assert.Equal(t, "http://127.0.0.1:3000", NewClient("", "127.0.0.1", 3000, 0).BaseURL())
	assert.Equal(t, "https://bot.example", NewClient("https", "bot.example", 0, 0).BaseURL())
	assert.Equal(t, "http://x:1", NewClientWithBaseURL("http://x:1/", time.Second).BaseURL())
}

func TestCall_PostsJSON(t *testing.T) {
	var gotPath, gotType string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotType = r.Header.Get("Content-Type")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = w.Write([]byte(`{"status":"ok","retcode":0,"data":null}`))
	}))
	defer srv.Close()

	c := NewClientWithBaseURL(srv.URL, time.Second)
	resp, err := c.Call(context.Background(), "send_poke", map[string]any{"qq_id": "42"})

	require.NoError(t, err)
	assert.True(t, resp.OK())
	assert.Equal(t, "/send_poke", gotPath)
	assert.Equal(t, "application/json", gotType)
	assert.Equal(t, map[string]any{"qq_id": "42"}, gotBody)
	assert.JSONEq(t, `{"status":"ok","retcode":0,"data":null}`, string(resp.Raw))
}

func TestCall_RejectedReplyIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"failed","retcode":1404,"msg":"API不存在"}`))
	}))
	defer srv.Close()

	resp, err := NewClientWithBaseURL(srv.URL, time.Second).Call(context.Background(), "/send_poke", nil)

	require.NoError(t, err)
	assert.False(t, resp.OK())
	require.NotNil(t, resp.RetCode)
	assert.Equal(t, 1404, *resp.RetCode)
	assert.Equal(t, "API不存在", resp.Msg)
}

func TestCall_Non2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewClientWithBaseURL(srv.URL, time.Second).Call(context.Background(), "/send_poke", nil)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusBadGateway, statusErr.StatusCode)
	assert.Contains(t, statusErr.Error(), "502")
}

func TestCall_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>`))
	}))
	defer srv.Close()

	_, err := NewClientWithBaseURL(srv.URL, time.Second).Call(context.Background(), "/send_poke", nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")
}

func TestCall_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	_, err := NewClientWithBaseURL(srv.URL, 50*time.Millisecond).Call(context.Background(), "/send_poke", nil)

	require.Error(t, err)
}

func TestResponse_OK(t *testing.T) {
	zero, one := 0, 1
	assert.True(t, (&Response{Status: "ok"}).OK())
	assert.True(t, (&Response{Status: "async"}).OK())
	assert.True(t, (&Response{RetCode: &zero}).OK())
	assert.False(t, (&Response{RetCode: &one}).OK())
	assert.False(t, (&Response{}).OK())
	assert.False(t, (&Response{Status: "failed", RetCode: &zero}).OK())
}

func TestGetGroupMemberList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/get_group_member_list", r.URL.Path)
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		assert.Equal(t, "99", body["group_id"])
		_, _ = w.Write([]byte(`{"status":"ok","retcode":0,"data":[
			{"user_id":10001,"nickname":"Alice","card":"小爱"},
			{"user_id":10002,"nickname":"Bob","card":""}
		]}`))
	}))
	defer srv.Close()

	members, err := NewClientWithBaseURL(srv.URL, time.Second).GetGroupMemberList(context.Background(), "99")

	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, "10001", members[0].UserID.String())
	assert.Equal(t, "小爱", members[0].Card)
}

func TestGetFriendList_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"failed","retcode":100,"wording":"not logged in"}`))
	}))
	defer srv.Close()

	_, err := NewClientWithBaseURL(srv.URL, time.Second).GetFriendList(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not logged in")
}

func TestSendText(t *testing.T) {
	var bodies []map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		bodies = append(bodies, body)
		_, _ = w.Write([]byte(`{"status":"ok","retcode":0,"data":{"message_id":1}}`))
	}))
	defer srv.Close()

	c := NewClientWithBaseURL(srv.URL, time.Second)
	require.NoError(t, c.SendGroupText(context.Background(), "99", "hi"))
	require.NoError(t, c.SendPrivateText(context.Background(), "42", "hey"))

	require.Len(t, bodies, 2)
	assert.Equal(t, "group", bodies[0]["message_type"])
	assert.Equal(t, "99", bodies[0]["group_id"])
	assert.Equal(t, "private", bodies[1]["message_type"])
	assert.Equal(t, "hey", bodies[1]["message"])
}
