package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"google.golang.org/api/option"
	ytapi "google.golang.org/api/youtube/v3"
)

// apiMaxPageSize is the largest page commentThreads.list accepts
const apiMaxPageSize = 100

// Comment is a single video comment. Replies carry their thread's ID in
// ParentID and follow the comment they answer.
type Comment struct {
	ID       string
	ParentID string
	Author   string
	Text     string
}

// CommentStream yields comments one at a time, returning io.EOF when exhausted
type CommentStream interface {
	Next(ctx context.Context) (Comment, error)
}

// CommentSource opens a fresh stream of top comments and their replies for a video.
// limit is a hint used to bound the work done by the underlying service.
type CommentSource interface {
	Open(videoURL string, limit int) CommentStream
}

// FetchComments collects up to maxComments comment texts from a fresh stream,
// skipping empty ones. A stream error ends collection with what was gathered.
func FetchComments(ctx context.Context, src CommentSource, videoURL string, maxComments int) []string {
	var texts []string
	if maxComments <= 0 {
		return texts
	}

	stream := src.Open(videoURL, maxComments)
	for count := 0; count < maxComments; count++ {
		comment, err := stream.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			slog.Warn("comment fetch stopped early", "url", videoURL, "collected", len(texts), "error", err)
			break
		}
		if comment.Text != "" {
			texts = append(texts, comment.Text)
		}
	}
	return texts
}

// APICommentSource reads comments through the YouTube Data API
type APICommentSource struct {
	service *ytapi.Service
}

// NewAPICommentSource creates a Data API backed source
func NewAPICommentSource(ctx context.Context, opts ...option.ClientOption) (*APICommentSource, error) {
	service, err := ytapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating YouTube API client: %w", err)
	}
	return &APICommentSource{service: service}, nil
}

func (s *APICommentSource) Open(videoURL string, limit int) CommentStream {
	videoID, err := getVideoID(videoURL)
	return &apiCommentStream{
		service:   s.service,
		videoID:   videoID,
		openErr:   err,
		remaining: limit,
	}
}

// apiCommentStream pages through commentThreads.list lazily
type apiCommentStream struct {
	service   *ytapi.Service
	videoID   string
	openErr   error
	pageToken string
	buffer    []Comment
	remaining int
	done      bool
}

func (s *apiCommentStream) Next(ctx context.Context) (Comment, error) {
	if s.openErr != nil {
		return Comment{}, s.openErr
	}

	for len(s.buffer) == 0 {
		if s.done {
			return Comment{}, io.EOF
		}
		if err := s.fetchPage(ctx); err != nil {
			return Comment{}, err
		}
	}

	c := s.buffer[0]
	s.buffer = s.buffer[1:]
	return c, nil
}

func (s *apiCommentStream) fetchPage(ctx context.Context) error {
	pageSize := min(max(s.remaining, 1), apiMaxPageSize)

	call := s.service.CommentThreads.List([]string{"snippet", "replies"}).
		VideoId(s.videoID).
		Order("relevance").
		TextFormat("plainText").
		MaxResults(int64(pageSize)).
		Context(ctx)
	if s.pageToken != "" {
		call = call.PageToken(s.pageToken)
	}

	resp, err := call.Do()
	if err != nil {
		return fmt.Errorf("listing comment threads: %w", err)
	}

	added := len(s.buffer)
	for _, item := range resp.Items {
		if item.Snippet == nil || item.Snippet.TopLevelComment == nil || item.Snippet.TopLevelComment.Snippet == nil {
			continue
		}
		top := item.Snippet.TopLevelComment
		s.buffer = append(s.buffer, Comment{
			ID:     top.Id,
			Author: top.Snippet.AuthorDisplayName,
			Text:   top.Snippet.TextDisplay,
		})
		if item.Replies == nil {
			continue
		}
		for _, reply := range item.Replies.Comments {
			if reply == nil || reply.Snippet == nil {
				continue
			}
			s.buffer = append(s.buffer, Comment{
				ID:       reply.Id,
				ParentID: top.Id,
				Author:   reply.Snippet.AuthorDisplayName,
				Text:     reply.Snippet.TextDisplay,
			})
		}
	}

	s.remaining -= len(s.buffer) - added
	s.pageToken = resp.NextPageToken
	if s.pageToken == "" || len(resp.Items) == 0 {
		s.done = true
	}
	return nil
}

// YtdlpCommentSource reads comments through yt-dlp's comment extractor
type YtdlpCommentSource struct {
	yt *YouTube
}

// NewYtdlpCommentSource creates a yt-dlp backed source
func NewYtdlpCommentSource(yt *YouTube) *YtdlpCommentSource {
	return &YtdlpCommentSource{yt: yt}
}

func (s *YtdlpCommentSource) Open(videoURL string, limit int) CommentStream {
	return &ytdlpCommentStream{yt: s.yt, videoURL: videoURL, limit: limit}
}

// ytdlpCommentStream runs yt-dlp on the first Next and then drains the result
type ytdlpCommentStream struct {
	yt       *YouTube
	videoURL string
	limit    int
	fetched  bool
	comments []VideoComment
}

func (s *ytdlpCommentStream) Next(ctx context.Context) (Comment, error) {
	if !s.fetched {
		s.fetched = true
		comments, err := s.yt.Comments(ctx, s.videoURL, s.limit)
		if err != nil {
			return Comment{}, err
		}
		s.comments = comments
	}

	if len(s.comments) == 0 {
		return Comment{}, io.EOF
	}
	c := s.comments[0]
	s.comments = s.comments[1:]

	comment := Comment{ID: c.ID, Author: c.Author, Text: c.Text}
	if c.Parent != "root" {
		comment.ParentID = c.Parent
	}
	return comment, nil
}

// NewCommentSource picks the Data API when an API key is configured and
// falls back to yt-dlp otherwise
func NewCommentSource(ctx context.Context, config *Config, yt *YouTube) CommentSource {
	if config.YouTubeAPIKey != "" {
		src, err := NewAPICommentSource(ctx, option.WithAPIKey(config.YouTubeAPIKey))
		if err == nil {
			return src
		}
		slog.Warn("falling back to yt-dlp for comments", "error", err)
	}
	return NewYtdlpCommentSource(yt)
}
