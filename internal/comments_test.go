package internal

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

// sliceStream yields the given comments, then err (io.EOF when nil)
type sliceStream struct {
	comments []Comment
	err      error
	calls    int
}

func (s *sliceStream) Next(ctx context.Context) (Comment, error) {
	s.calls++
	if len(s.comments) == 0 {
		if s.err != nil {
			return Comment{}, s.err
		}
		return Comment{}, io.EOF
	}
	c := s.comments[0]
	s.comments = s.comments[1:]
	return c, nil
}

type fakeCommentSource struct {
	stream *sliceStream
	limit  int
}

func (f *fakeCommentSource) Open(videoURL string, limit int) CommentStream {
	f.limit = limit
	return f.stream
}

func testComments(texts ...string) []Comment {
	out := make([]Comment, 0, len(texts))
	for i, text := range texts {
		out = append(out, Comment{ID: strconv.Itoa(i), Text: text})
	}
	return out
}

func TestFetchCommentsCapCountsEveryItem(t *testing.T) {
	src := &fakeCommentSource{stream: &sliceStream{comments: testComments("a", "", "b", "c", "d")}}

	texts := FetchComments(context.Background(), src, "u", 3)

	assert.Equal(t, []string{"a", "b"}, texts)
	assert.Equal(t, 3, src.stream.calls)
	assert.Equal(t, 3, src.limit)
}

func TestFetchCommentsStopsAtEOF(t *testing.T) {
	src := &fakeCommentSource{stream: &sliceStream{comments: testComments("a", "b")}}

	assert.Equal(t, []string{"a", "b"}, FetchComments(context.Background(), src, "u", 10))
}

func TestFetchCommentsKeepsPartialOnError(t *testing.T) {
	src := &fakeCommentSource{stream: &sliceStream{
		comments: testComments("first"),
		err:      errors.New("comments disabled"),
	}}

	assert.Equal(t, []string{"first"}, FetchComments(context.Background(), src, "u", 10))
}

func TestFetchCommentsZeroLimit(t *testing.T) {
	src := &fakeCommentSource{stream: &sliceStream{comments: testComments("a")}}

	assert.Empty(t, FetchComments(context.Background(), src, "u", 0))
	assert.Equal(t, 0, src.stream.calls)
}

// commentPage is the subset of a commentThreads.list response the stream reads
func commentPage(next string, texts ...string) map[string]any {
	items := make([]any, 0, len(texts))
	for i, text := range texts {
		items = append(items, map[string]any{
			"snippet": map[string]any{
				"topLevelComment": map[string]any{
					"id": next + strconv.Itoa(i),
					"snippet": map[string]any{
						"authorDisplayName": "viewer",
						"textDisplay":       text,
					},
				},
			},
		})
	}
	return map[string]any{"items": items, "nextPageToken": next}
}

func TestAPICommentSourcePages(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		q := r.URL.Query()
		assert.Equal(t, "abc123", q.Get("videoId"))
		assert.Equal(t, "relevance", q.Get("order"))

		w.Header().Set("Content-Type", "application/json")
		if q.Get("pageToken") == "" {
			assert.Equal(t, "3", q.Get("maxResults"))
			_ = json.NewEncoder(w).Encode(commentPage("page2", "one", "two"))
			return
		}
		_ = json.NewEncoder(w).Encode(commentPage("", "three", "four"))
	}))
	defer srv.Close()

	src, err := NewAPICommentSource(context.Background(),
		option.WithEndpoint(srv.URL+"/"),
		option.WithoutAuthentication(),
		option.WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	texts := FetchComments(context.Background(), src, "https://www.youtube.com/watch?v=abc123", 3)

	assert.Equal(t, []string{"one", "two", "three"}, texts)
	assert.Equal(t, int32(2), requests.Load())
}

func TestAPICommentSourceBadURL(t *testing.T) {
	src, err := NewAPICommentSource(context.Background(),
		option.WithEndpoint("http://127.0.0.1:0/"),
		option.WithoutAuthentication())
	require.NoError(t, err)

	stream := src.Open("https://example.com/not-youtube", 5)
	_, err = stream.Next(context.Background())
	assert.Error(t, err)
}

func TestYtdlpCommentStreamKeepsReplies(t *testing.T) {
	stream := &ytdlpCommentStream{
		fetched: true,
		comments: []VideoComment{
			{ID: "a", Text: "top one", Parent: "root"},
			{ID: "a.1", Text: "reply", Parent: "a"},
			{ID: "b", Text: "top two"},
		},
	}

	var got []Comment
	for {
		c, err := stream.Next(context.Background())
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		got = append(got, c)
	}

	require.Len(t, got, 3)
	assert.Equal(t, Comment{ID: "a", Text: "top one"}, got[0])
	assert.Equal(t, Comment{ID: "a.1", ParentID: "a", Text: "reply"}, got[1])
	assert.Equal(t, Comment{ID: "b", Text: "top two"}, got[2])
}

func TestAPICommentSourceKeepsReplies(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, strings.Join(r.URL.Query()["part"], ","), "replies")

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"items": []any{
				map[string]any{
					"snippet": map[string]any{
						"topLevelComment": map[string]any{
							"id":      "t1",
							"snippet": map[string]any{"textDisplay": "link in the first reply"},
						},
					},
					"replies": map[string]any{
						"comments": []any{
							map[string]any{
								"id":      "t1.r1",
								"snippet": map[string]any{"textDisplay": "https://drive.google.com/file/d/abc/view"},
							},
						},
					},
				},
				map[string]any{
					"snippet": map[string]any{
						"topLevelComment": map[string]any{
							"id":      "t2",
							"snippet": map[string]any{"textDisplay": "second thread"},
						},
					},
				},
			},
		})
	}))
	defer srv.Close()

	src, err := NewAPICommentSource(context.Background(),
		option.WithEndpoint(srv.URL+"/"),
		option.WithoutAuthentication(),
		option.WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	stream := src.Open("https://www.youtube.com/watch?v=abc123", 10)
	var got []Comment
	for {
		c, err := stream.Next(context.Background())
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		got = append(got, c)
	}

	require.Len(t, got, 3)
	assert.Equal(t, "t1", got[0].ID)
	assert.Equal(t, "t1.r1", got[1].ID)
	assert.Equal(t, "t1", got[1].ParentID)
	assert.Equal(t, "https://drive.google.com/file/d/abc/view", got[1].Text)
	assert.Equal(t, "t2", got[2].ID)
}
